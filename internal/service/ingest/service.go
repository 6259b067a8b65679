package ingest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kisanshaktiai/market-ingestor/internal/domain"
	"github.com/kisanshaktiai/market-ingestor/internal/domain/dto"
	"github.com/kisanshaktiai/market-ingestor/internal/pkg/constants"
	"github.com/kisanshaktiai/market-ingestor/internal/pkg/fetch"
	"github.com/kisanshaktiai/market-ingestor/internal/pkg/logger"
	"github.com/kisanshaktiai/market-ingestor/internal/pkg/metrics"
	"github.com/kisanshaktiai/market-ingestor/internal/pkg/normalize"
	"github.com/kisanshaktiai/market-ingestor/internal/pkg/store"
)

type Service struct {
	store   store.Store
	metrics *metrics.Metrics

	// newAdapter is swappable so tests can run the pipeline against canned
	// boards.
	newAdapter func(cfg *domain.SourceConfig) BoardAdapter
}

func NewIngestService(store store.Store, m *metrics.Metrics) *Service {
	s := &Service{store: store, metrics: m}
	s.newAdapter = s.defaultAdapter
	return s
}

func (s *Service) defaultAdapter(cfg *domain.SourceConfig) BoardAdapter {
	client := fetch.NewClient(fetch.Options{
		Timeout:    viper.GetDuration(constants.ViperRequestTimeoutKey),
		UserAgent:  viper.GetString(constants.ViperUserAgentKey),
		MaxRetries: uint64(viper.GetInt(constants.ViperMaxRetriesKey)),
	})

	return NewAdapter(cfg, client, viper.GetString(constants.ViperHTMLDirKey))
}

// RunAll ingests every active source, each with its own adapter and session,
// in parallel. A source failing never fails its siblings; per-source outcomes
// land in the summary reports.
func (s *Service) RunAll(ctx context.Context) (*domain.RunSummary, error) {
	start := time.Now()

	sources, err := s.store.ListActiveSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("store.ListActiveSources: %w", err)
	}

	summary := &domain.RunSummary{ID: uuid.NewString(), RunTime: start.UTC()}
	if len(sources) == 0 {
		logger.Warnf(ctx, "no active sources configured, nothing to ingest")
		return summary, nil
	}

	parallelism := viper.GetInt(constants.ViperParallelismKey)
	if parallelism <= 0 {
		parallelism = 4
	}

	acc := &dto.RunAccumulator{}
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(parallelism)

	for _, cfg := range sources {
		cfg := cfg
		eg.Go(func() error {
			acc.Put(s.RunSource(egCtx, cfg))
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("err in goroutine: %w", err)
	}

	s.finishRun(ctx, summary, acc, start)
	return summary, nil
}

// RunOne ingests a single source by id, for targeted re-runs from the API.
func (s *Service) RunOne(ctx context.Context, sourceID string) (*domain.RunSummary, error) {
	cfg, err := s.store.GetSource(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("store.GetSource: %w", err)
	}

	start := time.Now()
	summary := &domain.RunSummary{ID: uuid.NewString(), RunTime: start.UTC()}

	acc := &dto.RunAccumulator{}
	acc.Put(s.RunSource(ctx, cfg))

	s.finishRun(ctx, summary, acc, start)
	return summary, nil
}

func (s *Service) finishRun(ctx context.Context, summary *domain.RunSummary, acc *dto.RunAccumulator, start time.Time) {
	acc.Summarize(summary)
	summary.Duration = time.Since(start).Seconds()

	s.metrics.LastRunUpserted.Set(float64(summary.Upserted))

	if err := s.store.InsertRun(ctx, summary); err != nil {
		logger.Warnf(ctx, "store.InsertRun: %s", err.Error())
	}

	logger.Infof(ctx, "run %s: %d sources, %d scraped, %d upserted in %.1fs",
		summary.ID, summary.Sources, summary.Scraped, summary.Upserted, summary.Duration)
}

// RunSource walks one board: commodities, per-commodity tables, normalize,
// watermark filter, dedup, batched upsert, watermark advance. Commodity-level
// failures count and continue; the source succeeds iff something committed.
func (s *Service) RunSource(ctx context.Context, cfg *domain.SourceConfig) *domain.SourceReport {
	start := time.Now()
	ctx = logger.With(ctx, zap.String("organization", cfg.Organization))

	report := &domain.SourceReport{SourceID: cfg.ID, Organization: cfg.Organization}

	touch := false
	defer func() {
		report.Duration = time.Since(start).Seconds()
		s.metrics.SourceDuration.WithLabelValues(cfg.Organization).Observe(report.Duration)

		if touch {
			if err := s.store.TouchSource(ctx, cfg.ID, report); err != nil {
				logger.Warnf(ctx, "store.TouchSource: %s", err.Error())
			}
		}
	}()

	adapter := s.newAdapter(cfg)

	commodities, err := adapter.LoadCommodities(ctx)
	if err != nil {
		logger.Errorf(ctx, "loadCommodities: %s", err.Error())
		report.Errors++
		return report
	}
	if len(commodities) == 0 {
		logger.Warnf(ctx, "commodity list came back empty, nothing to ingest")
		return report
	}
	report.Commodities = len(commodities)
	touch = true

	if err := s.store.SaveCommodities(ctx, cfg.ID, commodities); err != nil {
		logger.Warnf(ctx, "store.SaveCommodities: %s", err.Error())
	}

	aliasTable, err := s.store.LoadAliases(ctx, cfg.OrgKey())
	if err != nil {
		logger.Warnf(ctx, "store.LoadAliases: %s", err.Error())
		aliasTable = map[string]string{}
	}

	marks, err := s.store.GetWatermarks(ctx, cfg.ID)
	if err != nil {
		logger.Warnf(ctx, "store.GetWatermarks: %s", err.Error())
		marks = domain.Watermarks{}
	}

	recordBuilder := &normalize.Builder{
		SourceID: cfg.ID,
		Org:      cfg.Organization,
		State:    cfg.StateCode,
		Aliases:  normalize.NewAliasResolver(cfg.Organization, aliasTable),
	}

	codes := make([]string, 0, len(commodities))
	for code := range commodities {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	delay := time.Duration(cfg.RateLimitDelay * float64(time.Second))

	var fresh []*domain.PriceRecord
	for i, code := range codes {
		if i > 0 && delay > 0 && !sleepCtx(ctx, delay) {
			break
		}
		if ctx.Err() != nil {
			break
		}

		rows, err := adapter.FetchPrices(ctx, code, commodities[code])
		if err != nil {
			logger.Errorf(ctx, "fetchPrices %s: %s", code, err.Error())
			report.Errors++
			s.metrics.CommodityErrors.WithLabelValues(cfg.Organization).Inc()
			continue
		}
		if len(rows) == 0 {
			logger.Debugf(ctx, "commodity %s published no rows", code)
			continue
		}

		report.Scraped += len(rows)
		s.metrics.RowsScraped.WithLabelValues(cfg.Organization).Add(float64(len(rows)))

		for _, row := range rows {
			rec, ok := recordBuilder.Build(row)
			if !ok {
				report.Rejected++
				continue
			}
			fresh = append(fresh, rec)
		}
	}

	if report.Rejected > 0 {
		s.metrics.RowsRejected.WithLabelValues(cfg.Organization).Add(float64(report.Rejected))
	}

	fresh = FilterStale(fresh, marks)
	if len(fresh) == 0 {
		logger.Infof(ctx, "nothing new after watermark filter, %d scraped", report.Scraped)
		return report
	}

	engine := NewUpsertEngine(s.store, viper.GetInt(constants.ViperBatchSizeKey))
	accepted, committed, failedBatches := engine.Upsert(ctx, Dedup(fresh))
	if failedBatches > 0 {
		s.metrics.BatchFailures.Add(float64(failedBatches))
	}

	report.Upserted = accepted
	report.Success = accepted > 0
	s.metrics.RowsUpserted.WithLabelValues(cfg.Organization).Add(float64(accepted))

	if len(committed) > 0 {
		if err := s.store.PutWatermarks(ctx, cfg.ID, Advance(marks, committed)); err != nil {
			// Worst case the next run refetches rows it already has; the
			// upsert makes that harmless.
			logger.Errorf(ctx, "store.PutWatermarks: %s", err.Error())
		}
	}

	logger.Infof(ctx, "source done: %d commodities, %d scraped, %d upserted, %d rejected, %d errors",
		report.Commodities, report.Scraped, report.Upserted, report.Rejected, report.Errors)

	return report
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (s *Service) ListPrices(ctx context.Context, opts store.ListPricesOpts) ([]*domain.PriceRecord, error) {
	prices, err := s.store.ListPrices(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("store.ListPrices: %w", err)
	}

	return prices, nil
}

func (s *Service) ListSources(ctx context.Context) ([]*domain.SourceConfig, error) {
	sources, err := s.store.ListActiveSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("store.ListActiveSources: %w", err)
	}

	return sources, nil
}

func (s *Service) ListRecentRuns(ctx context.Context, limit int) ([]*domain.IngestRun, error) {
	runs, err := s.store.ListRecentRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("store.ListRecentRuns: %w", err)
	}

	return runs, nil
}
