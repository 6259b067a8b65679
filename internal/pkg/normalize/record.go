package normalize

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kisanshaktiai/market-ingestor/internal/domain"
	"github.com/kisanshaktiai/market-ingestor/internal/pkg/constants"
)

// Builder assembles canonical price records from parsed table rows for one
// source. Zero value is not usable; fill the identity fields.
type Builder struct {
	SourceID string
	Org      string
	State    string
	Aliases  *AliasResolver

	// Now is injectable for tests; nil means time.Now.
	Now func() time.Time
}

// Build normalizes one parsed row. ok=false means the row carries no usable
// price and is dropped; callers count drops but do not log them row by row.
func (b *Builder) Build(row domain.ParsedPriceRow) (*domain.PriceRecord, bool) {
	market := strings.TrimSpace(row.Market)
	if row.PriceDate == "" || market == "" {
		return nil, false
	}

	arrival := CleanNumber(row.ArrivalRaw)
	minPrice := CleanNumber(row.MinPriceRaw)
	maxPrice := CleanNumber(row.MaxPriceRaw)
	modal := CleanNumber(row.ModalPriceRaw)

	// An inverted band (max below min) is board noise. The band is dropped,
	// the record survives if a modal price still yields a usable value.
	var spread *float64
	if minPrice != nil && maxPrice != nil {
		diff := decimal.NewFromFloat(*maxPrice).Sub(decimal.NewFromFloat(*minPrice))
		if diff.IsNegative() {
			minPrice, maxPrice = nil, nil
		} else {
			v := diff.InexactFloat64()
			spread = &v
		}
	}

	pricePerUnit := derivePricePerUnit(modal, minPrice, maxPrice)
	if pricePerUnit == nil || *pricePerUnit <= 0 {
		return nil, false
	}

	unit := strings.TrimSpace(row.Unit)
	if unit == "" {
		unit = constants.DefaultUnit
	}

	var variety *string
	if v := strings.TrimSpace(row.Variety); v != "" {
		variety = &v
	}

	var state *string
	if b.State != "" {
		s := b.State
		state = &s
	}

	now := time.Now
	if b.Now != nil {
		now = b.Now
	}

	return &domain.PriceRecord{
		SourceID:            b.SourceID,
		CommodityCode:       row.CommodityCode,
		GlobalCommodityCode: b.Aliases.Resolve(row.CommodityCode, row.CommodityName),
		CropName:            strings.TrimSpace(row.CommodityName),
		Variety:             variety,
		Unit:                unit,
		MarketLocation:      market,
		State:               state,
		PriceDate:           row.PriceDate,
		Arrival:             arrival,
		MinPrice:            minPrice,
		MaxPrice:            maxPrice,
		ModalPrice:          modal,
		PricePerUnit:        *pricePerUnit,
		Spread:              spread,
		PriceType:           constants.PriceTypeWholesale,
		Metadata: domain.Metadata{
			"commodity_display_name": row.CommodityName,
			"raw_row":                row.RawHTML,
		},
		Source:    strings.ToLower(b.Org) + "_scraper",
		Status:    constants.PriceStatusReady,
		FetchedAt: now().UTC(),
	}, true
}

// derivePricePerUnit picks the representative price: modal if published, else
// the min/max midpoint, else whichever bound exists.
func derivePricePerUnit(modal, minPrice, maxPrice *float64) *float64 {
	switch {
	case modal != nil:
		return modal
	case minPrice != nil && maxPrice != nil:
		mid := decimal.Avg(decimal.NewFromFloat(*minPrice), decimal.NewFromFloat(*maxPrice)).InexactFloat64()
		return &mid
	case minPrice != nil:
		return minPrice
	case maxPrice != nil:
		return maxPrice
	}

	return nil
}
