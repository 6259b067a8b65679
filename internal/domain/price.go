package domain

import "time"

// Metadata is the free-form jsonb payload stored next to structured columns.
type Metadata = map[string]interface{}

// Watermarks maps a source commodity code to the newest price date (ISO
// yyyy-mm-dd) already committed for it. ISO strings compare correctly with
// plain string ordering, so no time parsing happens on the resume path.
type Watermarks = map[string]string

// ParsedPriceRow is one data row lifted out of a board's price table before
// normalization. Price cells keep the text exactly as published.
type ParsedPriceRow struct {
	CommodityCode string
	CommodityName string
	Market        string
	Variety       string
	Unit          string
	ArrivalRaw    string
	MinPriceRaw   string
	MaxPriceRaw   string
	ModalPriceRaw string

	// PriceDate is the ISO date resolved from the nearest preceding
	// date-marker row.
	PriceDate string

	RawHTML string
}

// PriceRecord is the canonical market price row. The natural key is
// (source_id, commodity_code, price_date, market_location); re-ingesting the
// same key replaces the stored row.
type PriceRecord struct {
	SourceID            string    `db:"source_id" json:"source_id"`
	CommodityCode       string    `db:"commodity_code" json:"commodity_code"`
	GlobalCommodityCode string    `db:"global_commodity_code" json:"global_commodity_code"`
	CropName            string    `db:"crop_name" json:"crop_name"`
	Variety             *string   `db:"variety" json:"variety,omitempty"`
	Unit                string    `db:"unit" json:"unit"`
	MarketLocation      string    `db:"market_location" json:"market_location"`
	District            *string   `db:"district" json:"district,omitempty"`
	State               *string   `db:"state" json:"state,omitempty"`
	PriceDate           string    `db:"price_date" json:"price_date"`
	Arrival             *float64  `db:"arrival" json:"arrival,omitempty"`
	MinPrice            *float64  `db:"min_price" json:"min_price,omitempty"`
	MaxPrice            *float64  `db:"max_price" json:"max_price,omitempty"`
	ModalPrice          *float64  `db:"modal_price" json:"modal_price,omitempty"`
	PricePerUnit        float64   `db:"price_per_unit" json:"price_per_unit"`
	Spread              *float64  `db:"spread" json:"spread,omitempty"`
	PriceType           string    `db:"price_type" json:"price_type"`
	Metadata            Metadata  `db:"metadata" json:"metadata,omitempty"`
	Source              string    `db:"source" json:"source"`
	Status              string    `db:"status" json:"status"`
	FetchedAt           time.Time `db:"fetched_at" json:"fetched_at"`
}

// NaturalKey joins the identity columns with a separator that cannot occur in
// an ISO date. Market names with pipes would collide, none of the boards use
// them.
func (r *PriceRecord) NaturalKey() string {
	return r.SourceID + "|" + r.CommodityCode + "|" + r.PriceDate + "|" + r.MarketLocation
}
