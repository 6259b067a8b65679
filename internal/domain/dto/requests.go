package dto

// ListPricesRequest filters the stored price rows. Dates are ISO yyyy-mm-dd
// and bound both ends inclusively.
type ListPricesRequest struct {
	GlobalCode string `query:"global_code"`
	Commodity  string `query:"commodity"`
	Market     string `query:"market"`
	SourceID   string `query:"source_id"`
	From       string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To         string `query:"to" validate:"omitempty,datetime=2006-01-02"`
	Limit      int    `query:"limit" validate:"omitempty,min=1,max=1000"`
}

// TriggerIngestRequest optionally narrows a triggered run to one source.
type TriggerIngestRequest struct {
	SourceID string `json:"source_id"`
}

// ListRunsRequest pages through recorded ingest runs, newest first.
type ListRunsRequest struct {
	Limit int `query:"limit" validate:"omitempty,min=1,max=100"`
}
