package normalize

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Boards publish "no data" many ways; all of them normalize to nil.
var numericSentinels = map[string]struct{}{
	"-":   {},
	"--":  {},
	"—":   {},
	"–":   {},
	"NA":  {},
	"N/A": {},
}

var (
	numericJunk = strings.NewReplacer("\u00a0", "", ",", "", " ", "")
	nonNumeric  = regexp.MustCompile(`[^0-9.\-]`)
)

// CleanNumber turns a raw price or arrival cell into a number. Sentinels,
// unparsable text and negative values all come back nil; callers treat nil as
// "board did not publish this figure".
func CleanNumber(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	if _, ok := numericSentinels[strings.ToUpper(s)]; ok {
		return nil
	}

	s = nonNumeric.ReplaceAllString(numericJunk.Replace(s), "")
	switch s {
	case "", ".", "-":
		return nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	if d.IsNegative() {
		return nil
	}

	f := d.InexactFloat64()
	return &f
}
