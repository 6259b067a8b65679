package ingest

import "github.com/kisanshaktiai/market-ingestor/internal/domain"

// Dedup collapses records sharing a natural key before they reach the store.
// Boards repeat rows across table blocks; without this, one batch would fight
// itself inside a single upsert statement.
//
// The higher modal price wins; on a tie the later record wins, so a corrected
// reprint lower in the page replaces the first sighting. Relative order of
// first sightings is preserved.
func Dedup(records []*domain.PriceRecord) []*domain.PriceRecord {
	out := make([]*domain.PriceRecord, 0, len(records))
	index := make(map[string]int, len(records))

	for _, rec := range records {
		key := rec.NaturalKey()
		at, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, rec)
			continue
		}
		if modalOrZero(rec) >= modalOrZero(out[at]) {
			out[at] = rec
		}
	}

	return out
}

func modalOrZero(rec *domain.PriceRecord) float64 {
	if rec.ModalPrice == nil {
		return 0
	}
	return *rec.ModalPrice
}
