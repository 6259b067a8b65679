package ingest

import (
	"context"

	"github.com/kisanshaktiai/market-ingestor/internal/domain"
	"github.com/kisanshaktiai/market-ingestor/internal/pkg/logger"
)

const DefaultBatchSize = 100

// PriceStore is the single store capability the upsert engine needs.
type PriceStore interface {
	UpsertPriceBatch(ctx context.Context, records []*domain.PriceRecord) (int, error)
}

// UpsertEngine writes records in fixed-size batches. One failed batch is
// logged and skipped, later batches still run; the records of a failed batch
// simply miss this run and reappear on the next one because the watermark
// only advances over committed rows.
type UpsertEngine struct {
	store     PriceStore
	batchSize int
}

func NewUpsertEngine(store PriceStore, batchSize int) *UpsertEngine {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &UpsertEngine{store: store, batchSize: batchSize}
}

// Upsert returns the count of rows in committed batches, the committed
// records themselves and how many batches failed.
func (e *UpsertEngine) Upsert(ctx context.Context, records []*domain.PriceRecord) (int, []*domain.PriceRecord, int) {
	var (
		accepted  int
		failed    int
		committed []*domain.PriceRecord
	)

	for start := 0; start < len(records); start += e.batchSize {
		end := min(start+e.batchSize, len(records))
		batch := records[start:end]

		n, err := e.store.UpsertPriceBatch(ctx, batch)
		if err != nil {
			logger.Errorf(ctx, "upsert batch %d-%d: %s", start, end, err.Error())
			failed++
			continue
		}

		accepted += n
		committed = append(committed, batch...)
	}

	return accepted, committed, failed
}
