// Package htmltable lifts price rows out of the table markup the market
// boards publish. The tables interleave date-marker rows ("Prices as on
// 07/11/2025" on a spanned cell) with plain data rows; every data row belongs
// to the nearest preceding date marker.
package htmltable

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/kisanshaktiai/market-ingestor/internal/domain"
	"github.com/kisanshaktiai/market-ingestor/internal/pkg/normalize"
)

// Layout positions the logical price fields inside a data row, zero-based.
// Negative means the board does not publish that column.
type Layout struct {
	Market     int
	Variety    int
	Unit       int
	Arrival    int
	MinPrice   int
	MaxPrice   int
	ModalPrice int
}

// MSAMBLayout is the fixed seven-column layout of the MSAMB price table.
var MSAMBLayout = Layout{
	Market:     0,
	Variety:    1,
	Unit:       2,
	Arrival:    3,
	MinPrice:   4,
	MaxPrice:   5,
	ModalPrice: 6,
}

// minCells is the smallest cell count that can satisfy the layout.
func (l Layout) minCells() int {
	n := 0
	for _, idx := range []int{l.Market, l.Variety, l.Unit, l.Arrival, l.MinPrice, l.MaxPrice, l.ModalPrice} {
		if idx >= n {
			n = idx + 1
		}
	}
	return n
}

// Options tunes the walk for one board. Zero values select the MSAMB
// defaults.
type Options struct {
	Layout Layout

	// RowSelector picks candidate rows, CellSelector picks cells within a
	// row. Some boards emit data cells as th.
	RowSelector  string
	CellSelector string

	// DateSelector optionally points at an element outside the rows that
	// carries the date for the whole table.
	DateSelector string
}

// Stats counts what the walk saw. Orphan and bad-date rows are data quality
// signals, not errors; the caller logs them in aggregate.
type Stats struct {
	DataRows    int
	OrphanRows  int
	BadDateRows int
	ShortRows   int
}

type Parser struct {
	opts Options
}

func New(opts Options) *Parser {
	if opts.RowSelector == "" {
		opts.RowSelector = "tr"
	}
	if opts.CellSelector == "" {
		opts.CellSelector = "td"
	}
	if opts.Layout == (Layout{}) {
		opts.Layout = MSAMBLayout
	}
	return &Parser{opts: opts}
}

// Parse walks the document top to bottom. A row is a date marker iff its
// first cell carries a colspan attribute, or it is the row's only cell and
// has non-empty text. A date marker that fails to parse keeps the previous
// date in effect; data rows seen before any date resolve are dropped as
// orphans.
func (p *Parser) Parse(r io.Reader) ([]domain.ParsedPriceRow, Stats, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, Stats{}, err
	}

	var (
		rows    []domain.ParsedPriceRow
		stats   Stats
		current string
	)

	if p.opts.DateSelector != "" {
		if iso, ok := extractDate(doc.Find(p.opts.DateSelector).First().Text()); ok {
			current = iso
		}
	}

	minCells := p.opts.Layout.minCells()

	doc.Find(p.opts.RowSelector).Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find(p.opts.CellSelector)
		if cells.Length() == 0 {
			return
		}

		first := cells.Eq(0)
		_, spanned := first.Attr("colspan")
		solo := cells.Length() == 1 && strings.TrimSpace(first.Text()) != ""

		if spanned || solo {
			if iso, ok := extractDate(first.Text()); ok {
				current = iso
			} else {
				stats.BadDateRows++
			}
			return
		}

		if cells.Length() < minCells {
			stats.ShortRows++
			return
		}
		if current == "" {
			stats.OrphanRows++
			return
		}

		raw, _ := goquery.OuterHtml(tr)
		rows = append(rows, domain.ParsedPriceRow{
			Market:        cellText(cells, p.opts.Layout.Market),
			Variety:       cellText(cells, p.opts.Layout.Variety),
			Unit:          cellText(cells, p.opts.Layout.Unit),
			ArrivalRaw:    cellText(cells, p.opts.Layout.Arrival),
			MinPriceRaw:   cellText(cells, p.opts.Layout.MinPrice),
			MaxPriceRaw:   cellText(cells, p.opts.Layout.MaxPrice),
			ModalPriceRaw: cellText(cells, p.opts.Layout.ModalPrice),
			PriceDate:     current,
			RawHTML:       raw,
		})
		stats.DataRows++
	})

	return rows, stats, nil
}

// extractDate tries the text as a date, then falls back to the first
// date-looking fragment inside it. Board headers bury the date in label text
// in two scripts.
func extractDate(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if iso, ok := normalize.ParseDate(text); ok {
		return iso, true
	}
	if frag := normalize.DateFragment.FindString(text); frag != "" {
		return normalize.ParseDate(frag)
	}
	return "", false
}

func cellText(cells *goquery.Selection, idx int) string {
	if idx < 0 || idx >= cells.Length() {
		return ""
	}
	return strings.TrimSpace(cells.Eq(idx).Text())
}
