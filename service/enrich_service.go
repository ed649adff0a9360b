package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"catalogo-naves/models"
	"catalogo-naves/repository"
	"catalogo-naves/utils"
)

// searchResults is how many hits are requested per query
const searchResults = 8

// Aliases map provider spellings to a canonical brand. The empty canon
// collects in-house labels that must never be treated as a brand.
var brandAliases = map[string][]string{
	"JIMTEN":  {"JIMTEN", "JIMTEN SA", "JIMTEN, S.A.", "JIMTEN S.A", "JIMTEN S A"},
	"ESPA":    {"ESPA", "ESPA 2020", "ESPA PUMPS", "ESPA PUMPS IBERICA", "ESPA PUMPS IBÉRICA"},
	"GENEBRE": {"GENEBRE", "GENEBRE SA", "GENEBRE, S.A.", "GENEBRE S.A", "GENEBRE S A"},
	"FLUIDRA": {"FLUIDRA", "FLUIDRA SA", "FLUIDRA S.A", "ZODIAC", "ZODIAC FLUIDRA",
		"ASTRALPOOL", "CTX", "CTX PROFESSIONAL", "CEPEX"},
	"": {"LAS NAVES", "ALMACENES", "DISTRIBUIDOR", "PROVEEDOR"},
}

// Official domains to prioritize with site: queries, per brand
var brandHints = map[string][]string{
	"FLUIDRA": {"fluidra.com", "astralpool.com", "cepex.com",
		"ctxprofessional.com", "zodiacpoolcare.com", "zodiac.com"},
	"JIMTEN":  {"jimten.com"},
	"ESPA":    {"espa.com", "espa.es"},
	"GENEBRE": {"genebre.es", "genebre.com"},
}

// Marketplaces and social hosts that never serve official assets
var hostBlacklist = []string{
	"amazon.", "ebay.", "aliexpress.", "alibaba.", "leroymerlin.", "manomano.",
	"pinterest.", "facebook.", "instagram.", "youtube.", "issuu.", "scribd.",
	"mercadolibre.", "wikipedia.", "reddit.", "x.com", "tiktok.", "linkedin.",
}

// EnrichOptions configures one URL-enrichment run
type EnrichOptions struct {
	ExcelPath        string
	OutPath          string
	ReportPath       string
	Limit            int // max rows to process, 0 = all
	Offset           int // first row to process, 0-based
	ProviderContains string
}

// EnrichService fills the empty image/ficha URL columns of the spreadsheet
// using web search plus product-page scraping
// Implements EnrichServiceInterface
type EnrichService struct {
	excelService  ExcelServiceInterface
	searchService SearchServiceInterface
	scrapeService ScrapeServiceInterface
	reportRepo    repository.ReportRepositoryInterface // nil when no database is configured
}

// NewEnrichService creates a new EnrichService instance
func NewEnrichService(
	excelService ExcelServiceInterface,
	searchService SearchServiceInterface,
	scrapeService ScrapeServiceInterface,
	reportRepo repository.ReportRepositoryInterface,
) *EnrichService {
	return &EnrichService{
		excelService:  excelService,
		searchService: searchService,
		scrapeService: scrapeService,
		reportRepo:    reportRepo,
	}
}

// Ensure EnrichService implements EnrichServiceInterface
var _ EnrichServiceInterface = (*EnrichService)(nil)

// Run walks the configured row window, filling only empty URL cells. A quota
// stop saves partial progress and exits cleanly; other search failures also
// save partials but propagate the error.
func (s *EnrichService) Run(ctx context.Context, opts EnrichOptions) (*models.EnrichmentStats, error) {
	wb, err := s.excelService.LoadWorkbook(opts.ExcelPath)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	rows, err := wb.Rows()
	if err != nil {
		return nil, err
	}

	start := opts.Offset
	if start < 0 {
		start = 0
	}
	end := len(rows)
	if opts.Limit > 0 && start+opts.Limit < end {
		end = start + opts.Limit
	}
	if start > end {
		start = end
	}

	provFilter := utils.NormText(opts.ProviderContains)
	log.Printf("🔍 Enriching rows %d..%d of %d (provider filter: %q)", start, end-1, len(rows), opts.ProviderContains)

	stats := &models.EnrichmentStats{Rows: end - start}
	var records []models.EnrichmentRecord
	var runErr error

loop:
	for i := start; i < end; i++ {
		row := rows[i]
		brand := canonicalBrand(row.Proveedor)

		rec := models.EnrichmentRecord{
			Row:                 row.Index,
			CodigoArticulo:      row.CodigoArticulo,
			ReferenciaProveedor: row.ReferenciaProveedor,
			ProveedorRaw:        row.Proveedor,
			BrandDetected:       brand,
		}

		switch {
		case isExcludedProvider(row.Proveedor):
			rec.Status = models.EnrichStatusSkippedByRule
			rec.SearchPass = "proveedor_excluido"
		case provFilter != "" && !strings.Contains(utils.NormText(row.Proveedor), provFilter):
			rec.Status = models.EnrichStatusSkippedProvider
			rec.SearchPass = "skipped_provider_filter"
		case row.URLImagen != "" && row.URLFicha != "":
			rec.Status = models.EnrichStatusAlreadyHadURLs
		default:
			// Provider filter can name a brand the alias table missed
			// (e.g. "Fluidra Commercial S.A.U."); force its hints on.
			if brand == "" && strings.Contains(provFilter, "FLUIDRA") {
				brand = "FLUIDRA"
				rec.BrandDetected = brand
			}

			found, err := s.enrichRow(ctx, brand, row)
			if err != nil {
				if errors.Is(err, ErrQuotaExceeded) {
					log.Printf("⚠️  %v. Saving partial progress", err)
					stats.QuotaStop = true
				} else {
					runErr = err
				}
				break loop
			}

			rec.ChosenHost = found.host
			rec.SearchPass = found.pass
			rec.ProductPage = found.page
			if found.image != "" || found.pdf != "" {
				if row.URLImagen == "" && found.image != "" {
					if err := wb.SetImageURL(row, found.image); err != nil {
						runErr = err
						break loop
					}
					rec.FoundImage = found.image
				}
				if row.URLFicha == "" && found.pdf != "" {
					if err := wb.SetFichaURL(row, found.pdf); err != nil {
						runErr = err
						break loop
					}
					rec.FoundPDF = found.pdf
				}
				stats.Filled++
				rec.Status = models.EnrichStatusFilled
			} else {
				rec.Status = models.EnrichStatusNoMatch
			}
		}

		records = append(records, rec)
	}

	// Partial progress is always worth keeping, quota stop or not
	if err := wb.SaveAs(opts.OutPath); err != nil {
		return stats, err
	}
	if err := s.writeReport(opts.ReportPath, records); err != nil {
		return stats, err
	}
	s.persistReport(ctx, records, stats)

	log.Printf("🎉 Enrichment finished: %d rows filled, outputs %s and %s", stats.Filled, opts.OutPath, opts.ReportPath)
	return stats, runErr
}

// rowAssets is what one enriched row resolved to
type rowAssets struct {
	image string
	pdf   string
	page  string
	host  string
	pass  string
}

// enrichRow searches official domains first (site: hints), then the open web,
// and scrapes candidate pages until one yields an asset
func (s *EnrichService) enrichRow(ctx context.Context, brand string, row models.CatalogRow) (rowAssets, error) {
	type candidate struct {
		pass string
		url  string
	}

	seen := make(map[string]bool)
	var candidates []candidate

	collect := func(pass string, queries []string) error {
		for _, q := range queries {
			urls, err := s.searchService.Search(ctx, q, searchResults)
			if err != nil {
				return err
			}
			for _, u := range urls {
				if !seen[u] {
					seen[u] = true
					candidates = append(candidates, candidate{pass: pass, url: u})
				}
			}
		}
		return nil
	}

	if domains := brandHints[brand]; len(domains) > 0 {
		if err := collect("hint", buildSiteQueries(domains, brand, row.ReferenciaProveedor, row.Articulo)); err != nil {
			return rowAssets{}, err
		}
	}
	if err := collect("web", buildQueries(brand, row.ReferenciaProveedor, row.Articulo)); err != nil {
		return rowAssets{}, err
	}

	for _, c := range candidates {
		host := utils.HostOf(c.url)
		if isBlacklistedHost(host) {
			continue
		}
		// The hint pass is already scoped by site:, so only webwide hits
		// must look like the brand's own site.
		if c.pass == "web" && brand != "" && !looksLikeBrandSite(host, brand) {
			continue
		}

		assets, err := s.scrapeService.PickAssets(ctx, c.url)
		if err != nil {
			log.Printf("⚠️  Failed to inspect %s: %v", c.url, err)
			continue
		}
		if assets.HasAny() {
			return rowAssets{image: assets.ImageURL, pdf: assets.PDFURL, page: c.url, host: host, pass: c.pass}, nil
		}
	}

	return rowAssets{}, nil
}

// buildQueries creates the ordered, deduplicated query list for one row
func buildQueries(brand, ref, articulo string) []string {
	articulo = strings.TrimSpace(articulo)
	brand = strings.TrimSpace(brand)

	var queries []string
	for _, rv := range utils.RefVariants(ref) {
		queries = append(queries, rv)
		if articulo != "" {
			queries = append(queries, rv+" "+articulo)
		}
		if brand != "" {
			queries = append(queries, brand+" "+rv)
		}
		if brand != "" && articulo != "" {
			queries = append(queries, brand+" "+rv+" "+articulo)
		}
	}
	// No reference at all: fall back to the article name
	if strings.TrimSpace(ref) == "" && articulo != "" {
		queries = append(queries, articulo)
		if brand != "" {
			queries = append(queries, brand+" "+articulo)
		}
	}

	seen := make(map[string]bool, len(queries))
	var ordered []string
	for _, q := range queries {
		if !seen[q] {
			seen[q] = true
			ordered = append(ordered, q)
		}
	}
	return ordered
}

// buildSiteQueries prefixes every base query with site:<domain> for the
// official domains, keeping domain-major order
func buildSiteQueries(domains []string, brand, ref, articulo string) []string {
	base := buildQueries(brand, ref, articulo)
	var queries []string
	for _, dom := range domains {
		for _, q := range base {
			queries = append(queries, "site:"+dom+" "+q)
		}
	}
	return queries
}

// canonicalBrand maps a raw Proveedor value to a canonical brand, "" when none
func canonicalBrand(raw string) string {
	n := utils.NormText(raw)
	if n == "" {
		return ""
	}
	for canon, variants := range brandAliases {
		for _, v := range variants {
			if utils.NormText(v) == n {
				return canon
			}
		}
	}
	for _, canon := range []string{"JIMTEN", "ESPA", "GENEBRE", "FLUIDRA"} {
		if strings.Contains(n, canon) {
			return canon
		}
	}
	return ""
}

func isBlacklistedHost(host string) bool {
	for _, bad := range hostBlacklist {
		if strings.Contains(host, bad) {
			return true
		}
	}
	return false
}

// looksLikeBrandSite accepts hosts containing the brand name or ending in one
// of the brand's official domains
func looksLikeBrandSite(host, brand string) bool {
	if brand == "" {
		return false
	}
	if strings.Contains(host, strings.ToLower(brand)) {
		return true
	}
	for _, dom := range brandHints[strings.ToUpper(brand)] {
		d := strings.ToLower(dom)
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// writeReport emits the per-row enrichment report as CSV
func (s *EnrichService) writeReport(path string, records []models.EnrichmentRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"row", "cod_articulo_naves", "ref_proveedor", "proveedor_raw", "brand_detected",
		"chosen_host", "search_pass", "product_page", "found_image", "found_pdf", "status"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}
	for _, rec := range records {
		line := []string{strconv.Itoa(rec.Row), rec.CodigoArticulo, rec.ReferenciaProveedor, rec.ProveedorRaw,
			rec.BrandDetected, rec.ChosenHost, rec.SearchPass, rec.ProductPage, rec.FoundImage, rec.FoundPDF, rec.Status}
		if err := w.Write(line); err != nil {
			return fmt.Errorf("failed to write report row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush report %s: %w", path, err)
	}
	return nil
}

// persistReport stores the records in the database when one is configured.
// Persistence is diagnostics only and must never break a CI run.
func (s *EnrichService) persistReport(ctx context.Context, records []models.EnrichmentRecord, stats *models.EnrichmentStats) {
	if s.reportRepo == nil {
		return
	}
	for i := range records {
		if err := s.reportRepo.InsertRecord(ctx, &records[i]); err != nil {
			log.Printf("❌ Failed to persist enrichment record for row %d: %v", records[i].Row, err)
		}
	}
	if err := s.reportRepo.InsertRunSummary(ctx, time.Now(), stats); err != nil {
		log.Printf("❌ Failed to persist enrichment run summary: %v", err)
	}
}
