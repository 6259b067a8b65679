package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/kisanshaktiai/market-ingestor/internal/domain"
	"github.com/kisanshaktiai/market-ingestor/internal/pkg/constants"
	"github.com/kisanshaktiai/market-ingestor/internal/pkg/metrics"
	"github.com/kisanshaktiai/market-ingestor/internal/pkg/store"
)

// fakeStore implements store.Store in memory. Everything is mutex-guarded
// because RunAll drives sources concurrently.
type fakeStore struct {
	mu sync.Mutex

	sources    []*domain.SourceConfig
	aliases    map[string]string
	aliasErr   error
	marks      map[string]domain.Watermarks
	upsertErr  error
	rows       map[string]*domain.PriceRecord
	putMarks   map[string]domain.Watermarks
	touched    map[string]int
	commodity  map[string]map[string]string
	insertedRn []*domain.RunSummary
}

func newFakeStore(sources ...*domain.SourceConfig) *fakeStore {
	return &fakeStore{
		sources:   sources,
		aliases:   map[string]string{},
		marks:     map[string]domain.Watermarks{},
		rows:      map[string]*domain.PriceRecord{},
		putMarks:  map[string]domain.Watermarks{},
		touched:   map[string]int{},
		commodity: map[string]map[string]string{},
	}
}

func (f *fakeStore) ListActiveSources(context.Context) ([]*domain.SourceConfig, error) {
	return f.sources, nil
}

func (f *fakeStore) GetSource(_ context.Context, id string) (*domain.SourceConfig, error) {
	for _, cfg := range f.sources {
		if cfg.ID == id {
			return cfg, nil
		}
	}
	return nil, constants.ErrDBNotFound
}

func (f *fakeStore) TouchSource(_ context.Context, id string, _ *domain.SourceReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched[id]++
	return nil
}

func (f *fakeStore) LoadAliases(context.Context, string) (map[string]string, error) {
	if f.aliasErr != nil {
		return nil, f.aliasErr
	}
	return f.aliases, nil
}

func (f *fakeStore) SaveCommodities(_ context.Context, sourceID string, commodities map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commodity[sourceID] = commodities
	return nil
}

func (f *fakeStore) UpsertPriceBatch(_ context.Context, records []*domain.PriceRecord) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return 0, f.upsertErr
	}
	for _, r := range records {
		f.rows[r.NaturalKey()] = r
	}
	return len(records), nil
}

func (f *fakeStore) ListPrices(context.Context, store.ListPricesOpts) ([]*domain.PriceRecord, error) {
	return nil, nil
}

func (f *fakeStore) GetWatermarks(_ context.Context, sourceID string) (domain.Watermarks, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.marks[sourceID], nil
}

func (f *fakeStore) PutWatermarks(_ context.Context, sourceID string, marks domain.Watermarks) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.putMarks[sourceID] = marks
	return nil
}

func (f *fakeStore) InsertRun(_ context.Context, summary *domain.RunSummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertedRn = append(f.insertedRn, summary)
	return nil
}

func (f *fakeStore) ListRecentRuns(context.Context, int) ([]*domain.IngestRun, error) {
	return nil, nil
}

// fakeAdapter serves canned commodity lists and parsed rows.
type fakeAdapter struct {
	org         string
	commodities map[string]string
	loadErr     error
	rows        map[string][]domain.ParsedPriceRow
	errs        map[string]error
}

func (a *fakeAdapter) Organization() string { return a.org }

func (a *fakeAdapter) LoadCommodities(context.Context) (map[string]string, error) {
	if a.loadErr != nil {
		return nil, a.loadErr
	}
	return a.commodities, nil
}

func (a *fakeAdapter) FetchPrices(_ context.Context, code, _ string) ([]domain.ParsedPriceRow, error) {
	if err := a.errs[code]; err != nil {
		return nil, err
	}
	return a.rows[code], nil
}

func prow(code, name, market, date, modal string) domain.ParsedPriceRow {
	return domain.ParsedPriceRow{
		CommodityCode: code,
		CommodityName: name,
		Market:        market,
		Unit:          "Quintal",
		ArrivalRaw:    "10",
		MinPriceRaw:   "900",
		MaxPriceRaw:   "1100",
		ModalPriceRaw: modal,
		PriceDate:     date,
	}
}

func sourceCfg(id, org string) *domain.SourceConfig {
	return &domain.SourceConfig{ID: id, Organization: org, StateCode: "MH", Active: true}
}

func newTestService(st *fakeStore, adapters map[string]*fakeAdapter) *Service {
	s := NewIngestService(st, metrics.New())
	s.newAdapter = func(cfg *domain.SourceConfig) BoardAdapter {
		return adapters[cfg.ID]
	}
	return s
}

func TestRunSourcePartialFetchFailure(t *testing.T) {
	st := newFakeStore(sourceCfg("msamb-mh", "MSAMB"))
	adapter := &fakeAdapter{
		org:         "MSAMB",
		commodities: map[string]string{"08035": "Onion", "10011": "Tomato"},
		rows: map[string][]domain.ParsedPriceRow{
			"08035": {
				prow("08035", "Onion", "Lasalgaon", "2025-11-07", "1500"),
				prow("08035", "Onion", "Pimpalgaon", "2025-11-07", "1450"),
				prow("08035", "Onion", "Lasalgaon", "2025-11-06", "1400"),
			},
		},
		errs: map[string]error{"10011": errors.New("status code error: 500")},
	}
	svc := newTestService(st, map[string]*fakeAdapter{"msamb-mh": adapter})

	report := svc.RunSource(context.Background(), st.sources[0])

	if report.Scraped != 3 {
		t.Errorf("scraped = %d, want 3", report.Scraped)
	}
	if report.Errors != 1 {
		t.Errorf("errors = %d, want 1", report.Errors)
	}
	if !report.Success {
		t.Error("success = false, want true: one commodity committed")
	}
	if report.Upserted != 3 {
		t.Errorf("upserted = %d, want 3", report.Upserted)
	}

	marks := st.putMarks["msamb-mh"]
	if marks == nil {
		t.Fatal("watermarks never written")
	}
	if marks["08035"] != "2025-11-07" {
		t.Errorf("08035 mark = %q, want 2025-11-07", marks["08035"])
	}
	if _, ok := marks["10011"]; ok {
		t.Error("failed commodity must not gain a watermark")
	}
	if st.touched["msamb-mh"] != 1 {
		t.Errorf("touched %d times, want 1", st.touched["msamb-mh"])
	}
	if len(st.commodity["msamb-mh"]) != 2 {
		t.Errorf("commodity cache = %v", st.commodity["msamb-mh"])
	}
}

func TestRunSourceResumeFilter(t *testing.T) {
	st := newFakeStore(sourceCfg("msamb-mh", "MSAMB"))
	st.marks["msamb-mh"] = domain.Watermarks{"08035": "2025-12-10"}
	adapter := &fakeAdapter{
		org:         "MSAMB",
		commodities: map[string]string{"08035": "Onion"},
		rows: map[string][]domain.ParsedPriceRow{
			"08035": {
				prow("08035", "Onion", "Lasalgaon", "2025-12-09", "1500"),
				prow("08035", "Onion", "Lasalgaon", "2025-12-10", "1500"),
				prow("08035", "Onion", "Lasalgaon", "2025-12-11", "1500"),
			},
		},
	}
	svc := newTestService(st, map[string]*fakeAdapter{"msamb-mh": adapter})

	report := svc.RunSource(context.Background(), st.sources[0])

	if report.Scraped != 3 || report.Upserted != 1 {
		t.Errorf("scraped=%d upserted=%d, want 3/1", report.Scraped, report.Upserted)
	}
	if len(st.rows) != 1 {
		t.Fatalf("stored %d rows, want only the post-mark one", len(st.rows))
	}
	if st.putMarks["msamb-mh"]["08035"] != "2025-12-11" {
		t.Errorf("mark = %q, want 2025-12-11", st.putMarks["msamb-mh"]["08035"])
	}
}

func TestRunSourceAllStale(t *testing.T) {
	st := newFakeStore(sourceCfg("msamb-mh", "MSAMB"))
	st.marks["msamb-mh"] = domain.Watermarks{"08035": "2025-12-10"}
	adapter := &fakeAdapter{
		org:         "MSAMB",
		commodities: map[string]string{"08035": "Onion"},
		rows: map[string][]domain.ParsedPriceRow{
			"08035": {prow("08035", "Onion", "Lasalgaon", "2025-12-01", "1500")},
		},
	}
	svc := newTestService(st, map[string]*fakeAdapter{"msamb-mh": adapter})

	report := svc.RunSource(context.Background(), st.sources[0])

	if report.Success {
		t.Error("success = true on an all-stale run")
	}
	if report.Upserted != 0 || len(st.rows) != 0 {
		t.Errorf("upserted=%d stored=%d, want 0/0", report.Upserted, len(st.rows))
	}
	if _, ok := st.putMarks["msamb-mh"]; ok {
		t.Error("watermarks written although nothing committed")
	}
	if st.touched["msamb-mh"] != 1 {
		t.Errorf("touched %d times, want 1 (source was visited)", st.touched["msamb-mh"])
	}
}

func TestRunSourceCommodityLoadFailure(t *testing.T) {
	st := newFakeStore(sourceCfg("msamb-mh", "MSAMB"))
	adapter := &fakeAdapter{org: "MSAMB", loadErr: errors.New("status code error: 503")}
	svc := newTestService(st, map[string]*fakeAdapter{"msamb-mh": adapter})

	report := svc.RunSource(context.Background(), st.sources[0])

	if report.Success || report.Errors != 1 {
		t.Errorf("success=%v errors=%d, want false/1", report.Success, report.Errors)
	}
	if st.touched["msamb-mh"] != 0 {
		t.Error("source touched although commodities never loaded")
	}
}

func TestRunSourceCountsRejects(t *testing.T) {
	st := newFakeStore(sourceCfg("msamb-mh", "MSAMB"))
	junk := prow("08035", "Onion", "Lasalgaon", "2025-11-07", "-")
	junk.MinPriceRaw, junk.MaxPriceRaw = "--", "NA"
	adapter := &fakeAdapter{
		org:         "MSAMB",
		commodities: map[string]string{"08035": "Onion"},
		rows: map[string][]domain.ParsedPriceRow{
			"08035": {
				prow("08035", "Onion", "Lasalgaon", "2025-11-07", "1500"),
				junk,
			},
		},
	}
	svc := newTestService(st, map[string]*fakeAdapter{"msamb-mh": adapter})

	report := svc.RunSource(context.Background(), st.sources[0])

	if report.Scraped != 2 || report.Rejected != 1 || report.Upserted != 1 {
		t.Errorf("scraped=%d rejected=%d upserted=%d, want 2/1/1", report.Scraped, report.Rejected, report.Upserted)
	}
	if report.Errors != 0 {
		t.Errorf("errors = %d, rejects are not errors", report.Errors)
	}
}

func TestRunSourceAppliesAliases(t *testing.T) {
	st := newFakeStore(sourceCfg("msamb-mh", "MSAMB"))
	st.aliases = map[string]string{"08035": "ONION"}
	adapter := &fakeAdapter{
		org:         "MSAMB",
		commodities: map[string]string{"08035": "Onion", "77777": "Mystery"},
		rows: map[string][]domain.ParsedPriceRow{
			"08035": {prow("08035", "Onion", "Lasalgaon", "2025-11-07", "1500")},
			"77777": {prow("77777", "Mystery", "Pune", "2025-11-07", "900")},
		},
	}
	svc := newTestService(st, map[string]*fakeAdapter{"msamb-mh": adapter})

	svc.RunSource(context.Background(), st.sources[0])

	if got := st.rows["msamb-mh|08035|2025-11-07|Lasalgaon"].GlobalCommodityCode; got != "ONION" {
		t.Errorf("aliased global code = %q, want ONION", got)
	}
	if got := st.rows["msamb-mh|77777|2025-11-07|Pune"].GlobalCommodityCode; got != "MSAMB_77777" {
		t.Errorf("fallback global code = %q, want MSAMB_77777", got)
	}
}

func TestRunAll(t *testing.T) {
	good := sourceCfg("msamb-mh", "MSAMB")
	bad := sourceCfg("apmc-ka", "APMC_KA")
	st := newFakeStore(good, bad)
	adapters := map[string]*fakeAdapter{
		"msamb-mh": {
			org:         "MSAMB",
			commodities: map[string]string{"08035": "Onion"},
			rows: map[string][]domain.ParsedPriceRow{
				"08035": {prow("08035", "Onion", "Lasalgaon", "2025-11-07", "1500")},
			},
		},
		"apmc-ka": {org: "APMC_KA", loadErr: errors.New("dns failure")},
	}
	svc := newTestService(st, adapters)

	summary, err := svc.RunAll(context.Background())
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}

	if summary.Sources != 2 {
		t.Errorf("sources = %d, want 2", summary.Sources)
	}
	if summary.Scraped != 1 || summary.Upserted != 1 {
		t.Errorf("scraped=%d upserted=%d, want 1/1", summary.Scraped, summary.Upserted)
	}
	if !summary.AnySucceeded() {
		t.Error("AnySucceeded = false, one source committed")
	}
	if len(st.insertedRn) != 1 {
		t.Fatalf("recorded %d runs, want 1", len(st.insertedRn))
	}
	if st.insertedRn[0].ID == "" {
		t.Error("run recorded without id")
	}
}

func TestRunAllNoSources(t *testing.T) {
	st := newFakeStore()
	svc := newTestService(st, nil)

	summary, err := svc.RunAll(context.Background())
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	if summary.Sources != 0 || summary.AnySucceeded() {
		t.Errorf("summary = %+v, want empty", summary)
	}
	if len(st.insertedRn) != 0 {
		t.Error("empty run recorded")
	}
}

func TestRunOne(t *testing.T) {
	st := newFakeStore(sourceCfg("msamb-mh", "MSAMB"))
	adapter := &fakeAdapter{
		org:         "MSAMB",
		commodities: map[string]string{"08035": "Onion"},
		rows: map[string][]domain.ParsedPriceRow{
			"08035": {prow("08035", "Onion", "Lasalgaon", "2025-11-07", "1500")},
		},
	}
	svc := newTestService(st, map[string]*fakeAdapter{"msamb-mh": adapter})

	summary, err := svc.RunOne(context.Background(), "msamb-mh")
	if err != nil {
		t.Fatalf("RunOne: %v", err)
	}
	if summary.Sources != 1 || summary.Upserted != 1 {
		t.Errorf("sources=%d upserted=%d, want 1/1", summary.Sources, summary.Upserted)
	}

	if _, err := svc.RunOne(context.Background(), "nope"); err == nil {
		t.Error("RunOne on unknown source succeeded")
	}
}
