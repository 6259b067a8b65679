package store

import (
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/kisanshaktiai/market-ingestor/internal/pkg/constants"
)

const (
	tableSources         = "agri_market_sources"
	tableMarketPrices    = "market_prices"
	tableCommodityMaster = "commodity_master"
	tableCommodities     = "commodities"
	tableWatermarks      = "ingest_watermarks"
	tableIngestRuns      = "ingest_runs"
)

var mapping = map[error]error{pgx.ErrNoRows: constants.ErrDBNotFound}

func wrapErr(err error) error {
	for k, v := range mapping {
		if errors.Is(err, k) {
			return v
		}
	}
	return err
}

// builder returns a squirrel builder with postgres placeholders.
func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}
