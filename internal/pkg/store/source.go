package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/kisanshaktiai/market-ingestor/internal/domain"
	"github.com/kisanshaktiai/market-ingestor/internal/pkg/logger"
	"github.com/kisanshaktiai/market-ingestor/internal/pkg/store/xpgx"
)

var sourceColumns = []string{
	"id",
	"organization",
	"board_name",
	"state_code",
	"base_url",
	"main_page",
	"data_endpoint",
	"data_request_method",
	"data_request_params",
	"commodity_source",
	"commodity_html_path",
	"commodity_selector",
	"column_mapping",
	"row_selector",
	"date_selector",
	"requires_session",
	"rate_limit_delay",
	"active",
	"last_checked_at",
}

func (s *store) ListActiveSources(ctx context.Context) ([]*domain.SourceConfig, error) {
	query := builder().Select(sourceColumns...).
		From(tableSources).
		Where(sq.Eq{"active": true}).
		OrderBy("organization")

	selected, err := xpgx.Selectx[domain.SourceConfig](ctx, s.pool, query)
	if err != nil {
		logger.Error(ctx, err.Error())
		return nil, wrapErr(err)
	}

	return selected, nil
}

func (s *store) GetSource(ctx context.Context, id string) (*domain.SourceConfig, error) {
	query := builder().Select(sourceColumns...).
		From(tableSources).
		Where(sq.Eq{"id": id})

	selected, err := xpgx.Getx[domain.SourceConfig](ctx, s.pool, query)
	if err != nil {
		return nil, fmt.Errorf("getSource: %w", wrapErr(err))
	}

	return selected, nil
}

// TouchSource records that a run visited the source, stashing the last report
// where operators can see it. Callers treat failures as non-fatal.
func (s *store) TouchSource(ctx context.Context, id string, report *domain.SourceReport) error {
	query := builder().Update(tableSources).
		Set("last_checked_at", sq.Expr("now()")).
		Set("last_report", report).
		Where(sq.Eq{"id": id})

	if _, err := s.pool.Execx(ctx, query); err != nil {
		return fmt.Errorf("touchSource: %w", wrapErr(err))
	}

	return nil
}
