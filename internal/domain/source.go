package domain

import (
	"strings"
	"time"
)

// Commodity source kinds for SourceConfig.CommoditySource.
const (
	CommoditySourceDropdownHTML = "dropdown_html"
	CommoditySourceMainPage     = "main_page"
)

// SourceConfig is one agri_market_sources row: everything needed to scrape a
// single market board. Request params and column mapping live in jsonb so new
// boards ship as data, not code.
type SourceConfig struct {
	ID                string            `db:"id" json:"id"`
	Organization      string            `db:"organization" json:"organization"`
	BoardName         string            `db:"board_name" json:"board_name"`
	StateCode         string            `db:"state_code" json:"state_code"`
	BaseURL           string            `db:"base_url" json:"base_url"`
	MainPage          string            `db:"main_page" json:"main_page"`
	DataEndpoint      string            `db:"data_endpoint" json:"data_endpoint"`
	DataRequestMethod string            `db:"data_request_method" json:"data_request_method"`
	DataRequestParams map[string]string `db:"data_request_params" json:"data_request_params"`

	CommoditySource   string `db:"commodity_source" json:"commodity_source"`
	CommodityHTMLPath string `db:"commodity_html_path" json:"commodity_html_path"`
	CommoditySelector string `db:"commodity_selector" json:"commodity_selector"`

	// ColumnMapping positions the logical price fields inside a data row.
	// Nil selects the fixed MSAMB seven-column layout.
	ColumnMapping   map[string]int `db:"column_mapping" json:"column_mapping"`
	RowSelector     string         `db:"row_selector" json:"row_selector"`
	DateSelector    string         `db:"date_selector" json:"date_selector"`
	RequiresSession bool           `db:"requires_session" json:"requires_session"`
	RateLimitDelay  float64        `db:"rate_limit_delay" json:"rate_limit_delay"`

	Active        bool       `db:"active" json:"active"`
	LastCheckedAt *time.Time `db:"last_checked_at" json:"last_checked_at,omitempty"`
}

// OrgKey is the lower-cased organization tag used to key commodity aliases.
func (c *SourceConfig) OrgKey() string {
	return strings.ToLower(c.Organization)
}
