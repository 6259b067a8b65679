package store

import (
	"context"

	"github.com/kisanshaktiai/market-ingestor/internal/domain"
	"github.com/kisanshaktiai/market-ingestor/internal/pkg/store/xpgx"
)

type Pool = xpgx.Pool

type Store interface {
	ListActiveSources(ctx context.Context) ([]*domain.SourceConfig, error)
	GetSource(ctx context.Context, id string) (*domain.SourceConfig, error)
	TouchSource(ctx context.Context, id string, report *domain.SourceReport) error

	LoadAliases(ctx context.Context, orgKey string) (map[string]string, error)
	SaveCommodities(ctx context.Context, sourceID string, commodities map[string]string) error

	UpsertPriceBatch(ctx context.Context, records []*domain.PriceRecord) (int, error)
	ListPrices(ctx context.Context, opts ListPricesOpts) ([]*domain.PriceRecord, error)

	GetWatermarks(ctx context.Context, sourceID string) (domain.Watermarks, error)
	PutWatermarks(ctx context.Context, sourceID string, marks domain.Watermarks) error

	InsertRun(ctx context.Context, summary *domain.RunSummary) error
	ListRecentRuns(ctx context.Context, limit int) ([]*domain.IngestRun, error)
}

type store struct {
	pool *Pool
}

func NewStore(pool *Pool) Store {
	return &store{pool}
}
