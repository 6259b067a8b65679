package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/kisanshaktiai/market-ingestor/internal/domain"
	"github.com/kisanshaktiai/market-ingestor/internal/pkg/logger"
	"github.com/kisanshaktiai/market-ingestor/internal/pkg/store/xpgx"
)

var priceColumns = []string{
	"source_id",
	"commodity_code",
	"global_commodity_code",
	"crop_name",
	"variety",
	"unit",
	"market_location",
	"district",
	"state",
	"price_date",
	"arrival",
	"min_price",
	"max_price",
	"modal_price",
	"price_per_unit",
	"spread",
	"price_type",
	"metadata",
	"source",
	"status",
	"fetched_at",
}

// priceSelectColumns casts price_date back to its ISO text form; the rest of
// the pipeline never treats dates as time values.
var priceSelectColumns = []string{
	"source_id",
	"commodity_code",
	"global_commodity_code",
	"crop_name",
	"variety",
	"unit",
	"market_location",
	"district",
	"state",
	"price_date::text as price_date",
	"arrival",
	"min_price",
	"max_price",
	"modal_price",
	"price_per_unit",
	"spread",
	"price_type",
	"metadata",
	"source",
	"status",
	"fetched_at",
}

// UpsertPriceBatch writes one batch in a single statement. Conflicts on the
// natural key replace the stored row wholesale, which is what makes
// re-ingestion idempotent.
func (s *store) UpsertPriceBatch(ctx context.Context, records []*domain.PriceRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	query := builder().Insert(tableMarketPrices).Columns(priceColumns...)

	for _, r := range records {
		query = query.Values(
			r.SourceID,
			r.CommodityCode,
			r.GlobalCommodityCode,
			r.CropName,
			r.Variety,
			r.Unit,
			r.MarketLocation,
			r.District,
			r.State,
			r.PriceDate,
			r.Arrival,
			r.MinPrice,
			r.MaxPrice,
			r.ModalPrice,
			r.PricePerUnit,
			r.Spread,
			r.PriceType,
			r.Metadata,
			r.Source,
			r.Status,
			r.FetchedAt,
		)
	}

	query = query.Suffix(`
on conflict (source_id, commodity_code, price_date, market_location)
do update
set
	global_commodity_code = excluded.global_commodity_code,
	crop_name = excluded.crop_name,
	variety = excluded.variety,
	unit = excluded.unit,
	district = excluded.district,
	state = excluded.state,
	arrival = excluded.arrival,
	min_price = excluded.min_price,
	max_price = excluded.max_price,
	modal_price = excluded.modal_price,
	price_per_unit = excluded.price_per_unit,
	spread = excluded.spread,
	price_type = excluded.price_type,
	metadata = excluded.metadata,
	source = excluded.source,
	status = excluded.status,
	fetched_at = excluded.fetched_at`)

	affected, err := s.pool.Execx(ctx, query)
	if err != nil {
		logger.Errorf(ctx, "upsertPriceBatch: %s", err.Error())
		return 0, fmt.Errorf("upsertPriceBatch: %w", wrapErr(err))
	}

	return int(affected), nil
}

type ListPricesOpts struct {
	GlobalCode string
	Commodity  string
	Market     string
	SourceID   string
	From       string
	To         string
	Limit      int
}

func (s *store) ListPrices(ctx context.Context, opts ListPricesOpts) ([]*domain.PriceRecord, error) {
	query := builder().Select(priceSelectColumns...).
		From(tableMarketPrices).
		OrderBy("price_date desc, market_location")

	if opts.GlobalCode != "" {
		query = query.Where(sq.Eq{"global_commodity_code": opts.GlobalCode})
	}
	if opts.Commodity != "" {
		query = query.Where(sq.Eq{"commodity_code": opts.Commodity})
	}
	if opts.Market != "" {
		query = query.Where(sq.Eq{"market_location": opts.Market})
	}
	if opts.SourceID != "" {
		query = query.Where(sq.Eq{"source_id": opts.SourceID})
	}
	if opts.From != "" {
		query = query.Where(sq.GtOrEq{"price_date": opts.From})
	}
	if opts.To != "" {
		query = query.Where(sq.LtOrEq{"price_date": opts.To})
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	query = query.Limit(uint64(limit))

	selected, err := xpgx.Selectx[domain.PriceRecord](ctx, s.pool, query)
	if err != nil {
		logger.Error(ctx, err.Error())
		return nil, wrapErr(err)
	}

	return selected, nil
}
