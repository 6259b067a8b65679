package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/kisanshaktiai/market-ingestor/internal/domain"
	"github.com/kisanshaktiai/market-ingestor/internal/pkg/htmltable"
	"github.com/kisanshaktiai/market-ingestor/internal/pkg/logger"
)

// MSAMBAdapter handles boards publishing the MSAMB commodity-wise table: a
// fixed seven-column layout with date-marker rows spanning the table width.
type MSAMBAdapter struct {
	boardBase
}

func (a *MSAMBAdapter) FetchPrices(ctx context.Context, code, name string) ([]domain.ParsedPriceRow, error) {
	html, err := a.fetchTable(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", code, err)
	}

	// The endpoint answers 200 with a framing page when a commodity has no
	// data; only a response carrying table rows is worth parsing.
	if !strings.Contains(html, "<tr") {
		return nil, nil
	}

	rows, stats, err := htmltable.New(htmltable.Options{}).Parse(strings.NewReader(html))
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
