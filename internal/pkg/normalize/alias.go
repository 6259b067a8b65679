package normalize

import "strings"

// AliasResolver maps one board's commodity identifiers to global commodity
// codes. The alias table is loaded once per source run; resolution never
// fails because unknown commodities get a deterministic synthetic code, which
// keeps their rows queryable until someone registers a proper alias.
type AliasResolver struct {
	orgTag  string
	aliases map[string]string
}

// NewAliasResolver builds a resolver for one organization. Keys of aliases
// are board commodity codes or display names; lookups by display name are
// case-insensitive.
func NewAliasResolver(org string, aliases map[string]string) *AliasResolver {
	m := make(map[string]string, len(aliases)*2)
	for alias, global := range aliases {
		m[alias] = global
		m[strings.ToLower(alias)] = global
	}

	return &AliasResolver{
		orgTag:  strings.ToUpper(org),
		aliases: m,
	}
}

// Resolve tries the board code first, then the lower-cased display name, then
// falls back to ORG_code.
func (r *AliasResolver) Resolve(code, displayName string) string {
	if global, ok := r.aliases[code]; ok {
		return global
	}
	if global, ok := r.aliases[strings.ToLower(strings.TrimSpace(displayName))]; ok {
		return global
	}

	return r.orgTag + "_" + code
}
