package domain

import (
	"encoding/json"
	"time"
)

// SourceReport is the per-source outcome of one ingest run. Success means at
// least one record reached the store; a source that fetched fine but found
// nothing new is still reported unsuccessful so operators can tell silence
// from progress.
type SourceReport struct {
	SourceID     string  `json:"source_id"`
	Organization string  `json:"organization"`
	Commodities  int     `json:"commodities"`
	Scraped      int     `json:"records_scraped"`
	Upserted     int     `json:"records_upserted"`
	Rejected     int     `json:"records_rejected"`
	Errors       int     `json:"errors"`
	Success      bool    `json:"success"`
	Duration     float64 `json:"duration_seconds"`
}

// RunSummary aggregates one full ingest run across all sources.
type RunSummary struct {
	ID        string          `json:"id"`
	RunTime   time.Time       `json:"run_time"`
	Sources   int             `json:"sources_count"`
	Scraped   int             `json:"fetched_count"`
	Upserted  int             `json:"upserted_count"`
	Duration  float64         `json:"duration_seconds"`
	Reports   []*SourceReport `json:"detail"`
}

// AnySucceeded reports whether at least one source upserted something. The
// process exit code keys off this: a run where every source failed is broken,
// a run that merely found nothing new is not.
func (s *RunSummary) AnySucceeded() bool {
	for _, r := range s.Reports {
		if r.Success {
			return true
		}
	}
	return false
}

// IngestRun is the stored shape of a run summary, read back for the API.
type IngestRun struct {
	ID       string          `db:"id" json:"id"`
	RunTime  time.Time       `db:"run_time" json:"run_time"`
	Sources  int             `db:"sources_count" json:"sources_count"`
	Scraped  int             `db:"fetched_count" json:"fetched_count"`
	Upserted int             `db:"upserted_count" json:"upserted_count"`
	Duration float64         `db:"duration_seconds" json:"duration_seconds"`
	Detail   json.RawMessage `db:"detail" json:"detail"`
}
