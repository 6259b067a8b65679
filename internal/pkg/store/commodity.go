package store

import (
	"context"
	"fmt"

	"github.com/kisanshaktiai/market-ingestor/internal/domain"
	"github.com/kisanshaktiai/market-ingestor/internal/pkg/store/xpgx"
)

// LoadAliases inverts the commodity master for one organization: every alias
// the org uses, code or display name, maps to the global code. Aliases is
// jsonb keyed by org tag with either a single alias or a list.
func (s *store) LoadAliases(ctx context.Context, orgKey string) (map[string]string, error) {
	query := builder().Select("global_code", "name", "aliases").
		From(tableCommodityMaster)

	rows, err := xpgx.Selectx[domain.CommodityMasterRow](ctx, s.pool, query)
	if err != nil {
		return nil, fmt.Errorf("loadAliases: %w", wrapErr(err))
	}

	aliases := make(map[string]string)
	for _, row := range rows {
		switch v := row.Aliases[orgKey].(type) {
		case string:
			aliases[v] = row.GlobalCode
		case []interface{}:
			for _, item := range v {
				if alias, ok := item.(string); ok {
					aliases[alias] = row.GlobalCode
				}
			}
		}
	}

	return aliases, nil
}

// SaveCommodities caches the board's dropdown so a run can be inspected and
// replayed without refetching the main page.
func (s *store) SaveCommodities(ctx context.Context, sourceID string, commodities map[string]string) error {
	if len(commodities) == 0 {
		return nil
	}

	query := builder().Insert(tableCommodities).
		Columns("source_id", "code", "name")

	for code, name := range commodities {
		query = query.Values(sourceID, code, name)
	}

	query = query.Suffix(`
on conflict (source_id, code)
do update
set
	name = excluded.name`)

	if _, err := s.pool.Execx(ctx, query); err != nil {
		return fmt.Errorf("saveCommodities: %w", wrapErr(err))
	}

	return nil
}
