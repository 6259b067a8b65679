package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/kisanshaktiai/market-ingestor/internal/domain"
	"github.com/kisanshaktiai/market-ingestor/internal/pkg/htmltable"
	"github.com/kisanshaktiai/market-ingestor/internal/pkg/logger"
)

// MappedAdapter handles boards whose table shape is described by the source's
// column mapping instead of code. Selectors and cell positions all come from
// configuration, so a new board of this family is a database row.
type MappedAdapter struct {
	boardBase
}

// layoutFromMapping translates the configured field positions. Fields the
// board does not publish stay negative.
func layoutFromMapping(mapping map[string]int) htmltable.Layout {
	layout := htmltable.Layout{
		Market:     -1,
		Variety:    -1,
		Unit:       -1,
		Arrival:    -1,
		MinPrice:   -1,
		MaxPrice:   -1,
		ModalPrice: -1,
	}

	set := func(dst *int, key string) {
		if idx, ok := mapping[key]; ok {
			*dst = idx
		}
	}
	set(&layout.Market, "market")
	set(&layout.Variety, "variety")
	set(&layout.Unit, "unit")
	set(&layout.Arrival, "arrival")
	set(&layout.MinPrice, "min_price")
	set(&layout.MaxPrice, "max_price")
	set(&layout.ModalPrice, "modal_price")

	return layout
}

func (a *MappedAdapter) FetchPrices(ctx context.Context, code, name string) ([]domain.ParsedPriceRow, error) {
	html, err := a.fetchTable(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", code, err)
	}

	opts := htmltable.Options{
		Layout:       layoutFromMapping(a.cfg.ColumnMapping),
		RowSelector:  a.cfg.RowSelector,
		DateSelector: a.cfg.DateSelector,
		CellSelector: "td,th",
	}

	rows, stats, err := htmltable.New(opts).Parse(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", code, err)
	}

	if stats.OrphanRows > 0 || stats.BadDateRows > 0 {
		logger.Debugf(ctx, "commodity %s: %d orphan rows, %d unparsable date markers", code, stats.OrphanRows, stats.BadDateRows)
	}

	for i := range rows {
		rows[i].CommodityCode = code
		rows[i].CommodityName = name
	}

	return rows, nil
}
