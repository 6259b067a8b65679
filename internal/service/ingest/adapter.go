package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/kisanshaktiai/market-ingestor/internal/domain"
	"github.com/kisanshaktiai/market-ingestor/internal/pkg/fetch"
	"github.com/kisanshaktiai/market-ingestor/internal/pkg/logger"
)

// BoardAdapter is what one market board must provide: its commodity list and
// a fetch of one commodity's price table, already parsed. Everything after
// that, normalization, resume, dedup, upsert, is board-independent.
type BoardAdapter interface {
	Organization() string
	LoadCommodities(ctx context.Context) (map[string]string, error)
	FetchPrices(ctx context.Context, code, name string) ([]domain.ParsedPriceRow, error)
}

const defaultCommoditySelector = "select#drpCommodities"

// NewAdapter picks the adapter for a source. Boards with a column mapping get
// the mapped walker; the rest are assumed to publish the MSAMB table shape.
func NewAdapter(cfg *domain.SourceConfig, client *fetch.Client, htmlDir string) BoardAdapter {
	base := boardBase{cfg: cfg, client: client, htmlDir: htmlDir}

	if len(cfg.ColumnMapping) > 0 {
		return &MappedAdapter{boardBase: base}
	}
	return &MSAMBAdapter{boardBase: base}
}

// boardBase carries the behavior both adapter kinds share: session setup,
// commodity discovery and the parameterized data request.
type boardBase struct {
	cfg     *domain.SourceConfig
	client  *fetch.Client
	htmlDir string

	sessionReady bool
}

func (b *boardBase) Organization() string {
	return b.cfg.Organization
}

// LoadCommodities reads the board's commodity dropdown, preferring a local
// HTML snapshot when the source configures one. A missing snapshot falls back
// to the live main page.
func (b *boardBase) LoadCommodities(ctx context.Context) (map[string]string, error) {
	if b.cfg.CommoditySource == domain.CommoditySourceDropdownHTML && b.cfg.CommodityHTMLPath != "" {
		path := b.cfg.CommodityHTMLPath
		if !filepath.IsAbs(path) {
			path = filepath.Join(b.htmlDir, path)
		}

		data, err := os.ReadFile(path)
		if err == nil {
			return parseDropdown(bytes.NewReader(data), b.cfg.CommoditySelector)
		}
		logger.Warnf(ctx, "commodity snapshot %s unreadable, falling back to main page: %s", path, err.Error())
	}

	html, err := b.mainPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("load commodities: %w", err)
	}

	return parseDropdown(strings.NewReader(html), b.cfg.CommoditySelector)
}

// mainPage fetches the board's entry page, which both primes the session
// cookie jar and carries the dropdown.
func (b *boardBase) mainPage(ctx context.Context) (string, error) {
	pageURL, err := fetch.BuildURL(b.cfg.BaseURL, b.cfg.MainPage)
	if err != nil {
		return "", err
	}

	html, err := b.client.EstablishSession(ctx, pageURL)
	if err != nil {
		return "", err
	}
	b.sessionReady = true

	return html, nil
}

// fetchTable requests one commodity's price table. The {commodity_code}
// placeholder in configured params is replaced before dispatch.
func (b *boardBase) fetchTable(ctx context.Context, code string) (string, error) {
	if b.cfg.RequiresSession && !b.sessionReady {
		if _, err := b.mainPage(ctx); err != nil {
			return "", fmt.Errorf("establish session: %w", err)
		}
	}

	dataURL, err := fetch.BuildURL(b.cfg.BaseURL, b.cfg.DataEndpoint)
	if err != nil {
		return "", err
	}

	params := make(map[string]string, len(b.cfg.DataRequestParams))
	for k, v := range b.cfg.DataRequestParams {
		params[k] = strings.ReplaceAll(v, "{commodity_code}", code)
	}
	if len(params) == 0 {
		params = map[string]string{"commodityCode": code, "apmcCode": "null"}
	}

	return b.client.Do(ctx, b.cfg.DataRequestMethod, dataURL, params)
}

// parseDropdown extracts code -> display name pairs from a commodity select.
// Placeholder entries and non-numeric codes are dropped; boards pad their
// dropdowns with "--Select--" and section headers.
func parseDropdown(r io.Reader, selector string) (map[string]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse dropdown: %w", err)
	}

	if selector == "" {
		selector = defaultCommoditySelector
	}

	sel := doc.Find(selector)
	if sel.Length() == 0 {
		sel = doc.Find("select").First()
	}

	commodities := make(map[string]string)
	sel.Find("option").Each(func(_ int, opt *goquery.Selection) {
		code, _ := opt.Attr("value")
		code = strings.TrimSpace(code)
		name := strings.TrimSpace(opt.Text())

		if code == "" || code == "0" || strings.EqualFold(name, "select") || strings.EqualFold(code, "select") {
			return
		}
		if !digitsOnly(code) {
			return
		}

		commodities[code] = name
	})

	return commodities, nil
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
