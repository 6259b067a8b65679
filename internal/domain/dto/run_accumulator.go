package dto

import (
	"sync"

	"github.com/kisanshaktiai/market-ingestor/internal/domain"
)

// RunAccumulator collects per-source reports from concurrently running source
// workers and folds them into a RunSummary.
type RunAccumulator struct {
	reports   []*domain.SourceReport
	reportsMx sync.Mutex
}

func (a *RunAccumulator) Put(report *domain.SourceReport) {
	a.reportsMx.Lock()
	defer a.reportsMx.Unlock()

	a.reports = append(a.reports, report)
}

// Summarize totals the collected reports into summary. Reports are attached
// in arrival order; workers finish in no particular order.
func (a *RunAccumulator) Summarize(summary *domain.RunSummary) {
	a.reportsMx.Lock()
	defer a.reportsMx.Unlock()

	for _, report := range a.reports {
		summary.Scraped += report.Scraped
		summary.Upserted += report.Upserted
	}
	summary.Sources = len(a.reports)
	summary.Reports = a.reports
}
