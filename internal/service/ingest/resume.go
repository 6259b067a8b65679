package ingest

import (
	"time"

	"github.com/kisanshaktiai/market-ingestor/internal/domain"
)

// Resume logic: watermarks are ISO dates, compared as strings. A malformed
// mark is treated as absent rather than letting a junk string filter
// everything behind it; at-least-once beats silent data loss.

func validMark(mark string) bool {
	if len(mark) != 10 {
		return false
	}
	_, err := time.Parse("2006-01-02", mark)
	return err == nil
}

// FilterStale drops records at or before their commodity's watermark.
// Commodities without a mark pass through untouched.
func FilterStale(records []*domain.PriceRecord, marks domain.Watermarks) []*domain.PriceRecord {
	if len(marks) == 0 {
		return records
	}

	kept := make([]*domain.PriceRecord, 0, len(records))
	for _, rec := range records {
		if mark, ok := marks[rec.CommodityCode]; ok && validMark(mark) && rec.PriceDate <= mark {
			continue
		}
		kept = append(kept, rec)
	}

	return kept
}

// Advance folds the committed records' dates into the prior marks, per
// commodity, never moving a valid mark backwards.
func Advance(prior domain.Watermarks, committed []*domain.PriceRecord) domain.Watermarks {
	next := make(domain.Watermarks, len(prior))
	for code, mark := range prior {
		if validMark(mark) {
			next[code] = mark
		}
	}

	for _, rec := range committed {
		if rec.PriceDate > next[rec.CommodityCode] {
			next[rec.CommodityCode] = rec.PriceDate
		}
	}

	return next
}
