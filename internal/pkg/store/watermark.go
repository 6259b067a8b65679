package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/kisanshaktiai/market-ingestor/internal/domain"
	"github.com/kisanshaktiai/market-ingestor/internal/pkg/store/xpgx"
)

type watermarkRow struct {
	CommodityCode string `db:"commodity_code"`
	LastDate      string `db:"last_date"`
}

// GetWatermarks loads the committed high-water dates for one source, keyed by
// commodity code.
func (s *store) GetWatermarks(ctx context.Context, sourceID string) (domain.Watermarks, error) {
	query := builder().Select("commodity_code", "last_date::text as last_date").
		From(tableWatermarks).
		Where(sq.Eq{"source_id": sourceID})

	rows, err := xpgx.Selectx[watermarkRow](ctx, s.pool, query)
	if err != nil {
		return nil, fmt.Errorf("getWatermarks: %w", wrapErr(err))
	}

	marks := make(domain.Watermarks, len(rows))
	for _, row := range rows {
		marks[row.CommodityCode] = row.LastDate
	}

	return marks, nil
}

// PutWatermarks upserts the given marks. Existing commodities not present in
// marks are left untouched; the tracker only ever moves marks forward.
func (s *store) PutWatermarks(ctx context.Context, sourceID string, marks domain.Watermarks) error {
	if len(marks) == 0 {
		return nil
	}

	query := builder().Insert(tableWatermarks).
		Columns("source_id", "commodity_code", "last_date")

	for code, date := range marks {
		query = query.Values(sourceID, code, date)
	}

	query = query.Suffix(`
on conflict (source_id, commodity_code)
do update
set
	last_date = excluded.last_date,
	updated_at = now()`)

	if _, err := s.pool.Execx(ctx, query); err != nil {
		return fmt.Errorf("putWatermarks: %w", wrapErr(err))
	}

	return nil
}
