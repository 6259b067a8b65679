package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kisanshaktiai/market-ingestor/internal/domain"
	"github.com/kisanshaktiai/market-ingestor/internal/pkg/store/xpgx"
)

var runSelectColumns = []string{
	"id::text as id",
	"run_time",
	"sources_count",
	"fetched_count",
	"upserted_count",
	"duration_seconds",
	"detail",
}

// InsertRun records the run summary for audit. Losing one is annoying, not
// fatal; callers log and move on.
func (s *store) InsertRun(ctx context.Context, summary *domain.RunSummary) error {
	detail, err := json.Marshal(summary.Reports)
	if err != nil {
		return fmt.Errorf("insertRun: marshal detail: %w", err)
	}

	query := builder().Insert(tableIngestRuns).
		Columns("id", "run_time", "sources_count", "fetched_count", "upserted_count", "duration_seconds", "detail").
		Values(summary.ID, summary.RunTime, summary.Sources, summary.Scraped, summary.Upserted, summary.Duration, detail)

	if _, err := s.pool.Execx(ctx, query); err != nil {
		return fmt.Errorf("insertRun: %w", wrapErr(err))
	}

	return nil
}

func (s *store) ListRecentRuns(ctx context.Context, limit int) ([]*domain.IngestRun, error) {
	if limit <= 0 {
		limit = 20
	}

	query := builder().Select(runSelectColumns...).
		From(tableIngestRuns).
		OrderBy("run_time desc").
		Limit(uint64(limit))

	selected, err := xpgx.Selectx[domain.IngestRun](ctx, s.pool, query)
	if err != nil {
		return nil, fmt.Errorf("listRecentRuns: %w", wrapErr(err))
	}

	return selected, nil
}
