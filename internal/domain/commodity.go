package domain

// Commodity is one entry of a board's commodity dropdown, cached per source so
// a run can be replayed without refetching the main page.
type Commodity struct {
	SourceID string `db:"source_id" json:"source_id"`
	Code     string `db:"code" json:"code"`
	Name     string `db:"name" json:"name"`
}

// CommodityMasterRow is the cross-board commodity registry. Aliases is keyed
// by the lower-cased organization tag; each value is either a single alias or
// a list of aliases (board codes or display names).
type CommodityMasterRow struct {
	GlobalCode string   `db:"global_code" json:"global_code"`
	Name       string   `db:"name" json:"name"`
	Aliases    Metadata `db:"aliases" json:"aliases"`
}
