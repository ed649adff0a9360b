package service

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// fakeSearchService returns canned result URLs per query prefix
type fakeSearchService struct {
	results map[string][]string // query prefix → urls
	err     error
	calls   []string
}

func (f *fakeSearchService) Search(ctx context.Context, query string, num int64) ([]string, error) {
	f.calls = append(f.calls, query)
	if f.err != nil {
		return nil, f.err
	}
	for prefix, urls := range f.results {
		if strings.HasPrefix(query, prefix) {
			return urls, nil
		}
	}
	return nil, nil
}

// fakeScrapeService maps candidate URLs to picked assets
type fakeScrapeService struct {
	assets map[string]*PageAssets
}

func (f *fakeScrapeService) PickAssets(ctx context.Context, pageURL string) (*PageAssets, error) {
	if a, ok := f.assets[pageURL]; ok {
		return a, nil
	}
	return &PageAssets{}, nil
}

func enrichFixture(t *testing.T, rows [][]interface{}) (EnrichOptions, string) {
	t.Helper()
	dir := t.TempDir()
	header := []string{"Cód. Articulo Naves", "Referencia Proveedor", "Artículo", "Proveedor", "Cód. Proveedor"}
	src := writeTestSheet(t, header, rows)
	out := filepath.Join(dir, "READY.xlsx")
	report := filepath.Join(dir, "ENRICHMENT_REPORT.csv")
	return EnrichOptions{ExcelPath: src, OutPath: out, ReportPath: report}, dir
}

func TestEnrichFillsEmptyURLCells(t *testing.T) {
	opts, _ := enrichFixture(t, [][]interface{}{
		{"A1", "S-405", "Sifón", "JIMTEN, S.A.", "010"},
	})

	page := "https://www.jimten.com/producto/s-405"
	search := &fakeSearchService{results: map[string][]string{"site:jimten.com": {page}}}
	scrape := &fakeScrapeService{assets: map[string]*PageAssets{
		page: {PDFURL: page + "/ficha.pdf", ImageURL: page + "/foto.jpg"},
	}}

	svc := NewEnrichService(NewExcelService(), search, scrape, nil)
	stats, err := svc.Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.Filled != 1 {
		t.Errorf("stats = %+v, want 1 filled", stats)
	}

	rows, err := NewExcelService().ReadCatalog(opts.OutPath)
	if err != nil {
		t.Fatalf("enriched workbook unreadable: %v", err)
	}
	if rows[0].URLImagen != page+"/foto.jpg" || rows[0].URLFicha != page+"/ficha.pdf" {
		t.Errorf("URL cells not filled: %+v", rows[0])
	}

	// Official-domain queries must run before webwide ones
	if len(search.calls) == 0 || !strings.HasPrefix(search.calls[0], "site:jimten.com ") {
		t.Errorf("expected site: hint queries first, calls: %v", search.calls)
	}

	f, err := os.Open(opts.ReportPath)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("report unreadable: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("report rows = %d, want header + 1", len(records))
	}
	if got := records[1][len(records[1])-1]; got != "filled" {
		t.Errorf("report status = %q, want filled", got)
	}
}

func TestEnrichSkipsRowsWithBothURLs(t *testing.T) {
	dir := t.TempDir()
	src := writeTestSheet(t, exactHeader, [][]interface{}{
		{"A1", "R1", "Bomba", "JIMTEN", "010", "http://img", "http://pdf"},
	})
	opts := EnrichOptions{
		ExcelPath:  src,
		OutPath:    filepath.Join(dir, "READY.xlsx"),
		ReportPath: filepath.Join(dir, "report.csv"),
	}

	search := &fakeSearchService{}
	svc := NewEnrichService(NewExcelService(), search, &fakeScrapeService{}, nil)
	stats, err := svc.Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.Filled != 0 || len(search.calls) != 0 {
		t.Errorf("no search expected for complete rows, stats %+v calls %v", stats, search.calls)
	}
}

func TestEnrichStopsCleanlyOnQuota(t *testing.T) {
	opts, _ := enrichFixture(t, [][]interface{}{
		{"A1", "S-405", "Sifón", "JIMTEN", "010"},
		{"A2", "S-406", "Sifón doble", "JIMTEN", "010"},
	})

	search := &fakeSearchService{err: ErrQuotaExceeded}
	svc := NewEnrichService(NewExcelService(), search, &fakeScrapeService{}, nil)
	stats, err := svc.Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("quota stop must not be an error: %v", err)
	}
	if !stats.QuotaStop {
		t.Errorf("stats = %+v, want quota stop", stats)
	}
	// Partial outputs still land on disk
	if _, err := os.Stat(opts.OutPath); err != nil {
		t.Errorf("partial workbook not saved: %v", err)
	}
}

func TestEnrichHonorsOffsetAndLimit(t *testing.T) {
	opts, _ := enrichFixture(t, [][]interface{}{
		{"A1", "R1", "Uno", "ACME", "001"},
		{"A2", "R2", "Dos", "ACME", "001"},
		{"A3", "R3", "Tres", "ACME", "001"},
	})
	opts.Offset = 1
	opts.Limit = 1

	svc := NewEnrichService(NewExcelService(), &fakeSearchService{}, &fakeScrapeService{}, nil)
	stats, err := svc.Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.Rows != 1 {
		t.Errorf("stats.Rows = %d, want 1", stats.Rows)
	}
}

func TestEnrichExcludedProviderRecorded(t *testing.T) {
	opts, _ := enrichFixture(t, [][]interface{}{
		{"A1", "R1", "Bomba", "FAMARA S.L.", "002"},
	})

	search := &fakeSearchService{}
	svc := NewEnrichService(NewExcelService(), search, &fakeScrapeService{}, nil)
	if _, err := svc.Run(context.Background(), opts); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(search.calls) != 0 {
		t.Errorf("excluded provider must not be searched: %v", search.calls)
	}

	f, _ := os.Open(opts.ReportPath)
	defer f.Close()
	records, _ := csv.NewReader(f).ReadAll()
	if got := records[1][len(records[1])-1]; got != "skipped_by_rule" {
		t.Errorf("report status = %q, want skipped_by_rule", got)
	}
}

func TestBuildQueries(t *testing.T) {
	got := buildQueries("JIMTEN", "S-405", "Sifón")
	want := []string{
		"S-405", "S-405 Sifón", "JIMTEN S-405", "JIMTEN S-405 Sifón",
		"S405", "S405 Sifón", "JIMTEN S405", "JIMTEN S405 Sifón",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("buildQueries = %v, want %v", got, want)
	}

	// No reference: article-based fallback
	got = buildQueries("ESPA", "", "Bomba Silen")
	want = []string{"Bomba Silen", "ESPA Bomba Silen"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("buildQueries without ref = %v, want %v", got, want)
	}
}

func TestBuildSiteQueries(t *testing.T) {
	got := buildSiteQueries([]string{"jimten.com"}, "", "X1", "")
	if len(got) != 1 || got[0] != "site:jimten.com X1" {
		t.Errorf("buildSiteQueries = %v", got)
	}
}

func TestCanonicalBrand(t *testing.T) {
	cases := map[string]string{
		"JIMTEN, S.A.":                "JIMTEN",
		"Espa Pumps Ibérica":          "ESPA",
		"ASTRALPOOL":                  "FLUIDRA",
		"Fluidra Commercial, S.A.U.":  "FLUIDRA",
		"CTX PROFESSIONAL":            "FLUIDRA",
		"LAS NAVES":                   "",
		"Proveedor Genérico del Este": "",
		"":                            "",
	}
	for in, want := range cases {
		if got := canonicalBrand(in); got != want {
			t.Errorf("canonicalBrand(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHostFilters(t *testing.T) {
	if !isBlacklistedHost("www.amazon.es") {
		t.Error("marketplace host must be blacklisted")
	}
	if isBlacklistedHost("www.jimten.com") {
		t.Error("official host must not be blacklisted")
	}

	if !looksLikeBrandSite("www.jimten.com", "JIMTEN") {
		t.Error("brand-in-host must match")
	}
	if !looksLikeBrandSite("shop.astralpool.com", "FLUIDRA") {
		t.Error("hint domain must match")
	}
	if looksLikeBrandSite("www.randomshop.es", "JIMTEN") {
		t.Error("unrelated host must not match")
	}
	if looksLikeBrandSite("anything.com", "") {
		t.Error("empty brand never matches")
	}
}

func TestEnrichWebPassRequiresBrandHost(t *testing.T) {
	opts, _ := enrichFixture(t, [][]interface{}{
		{"A1", "G-100", "Válvula de bola", "GENEBRE, S.A.", "020"},
	})

	// Webwide search returns a marketplace, a random shop and the brand site
	search := &fakeSearchService{results: map[string][]string{
		"G-100": {"https://www.amazon.es/dp/x", "https://www.randomshop.es/p/1", "https://www.genebre.es/valvula-g100"},
	}}
	scrape := &fakeScrapeService{assets: map[string]*PageAssets{
		"https://www.amazon.es/dp/x":          {ImageURL: "https://www.amazon.es/img.jpg"},
		"https://www.randomshop.es/p/1":       {ImageURL: "https://www.randomshop.es/img.jpg"},
		"https://www.genebre.es/valvula-g100": {ImageURL: "https://www.genebre.es/img.jpg"},
	}}

	svc := NewEnrichService(NewExcelService(), search, scrape, nil)
	if _, err := svc.Run(context.Background(), opts); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	rows, err := NewExcelService().LoadWorkbook(opts.OutPath)
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()
	parsed, err := rows.Rows()
	if err != nil {
		t.Fatal(err)
	}
	if parsed[0].URLImagen != "https://www.genebre.es/img.jpg" {
		t.Errorf("expected the brand-site image, got %q", parsed[0].URLImagen)
	}
}
