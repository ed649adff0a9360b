package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"catalogo-naves/models"
	"catalogo-naves/utils"
)

const (
	fetchTimeout = 30 * time.Second
	userAgent    = "Mozilla/5.0"

	// DefaultConcurrency caps simultaneous fetches so remote hosts are not hammered
	DefaultConcurrency = 4
)

// Providers whose rows are never processed, matched on normalized substrings
var excludedProviders = []string{"FAMARA"}

// pdfSignature must appear within the leading bytes of a real PDF body.
// Validation is by content, never by URL suffix or Content-Type header.
var pdfSignature = []byte("%PDF-")

const pdfSignatureWindow = 1024

// IsPDF reports whether the downloaded bytes carry a PDF content signature
func IsPDF(data []byte) bool {
	window := data
	if len(window) > pdfSignatureWindow {
		window = window[:pdfSignatureWindow]
	}
	return bytes.Contains(window, pdfSignature)
}

func isExcludedProvider(proveedor string) bool {
	n := utils.NormText(proveedor)
	if n == "" {
		return false
	}
	for _, ex := range excludedProviders {
		if strings.Contains(n, utils.NormText(ex)) {
			return true
		}
	}
	return false
}

// DownloadOptions configures one catalog download run
type DownloadOptions struct {
	ExcelPath        string
	OutDir           string
	ZipName          string
	ProviderContains string // keep only rows whose normalized Proveedor contains this text
	SkipExisting     bool   // resume behavior: leave files already on disk untouched
	Concurrency      int
}

// DownloadService drives the spreadsheet → fetch → catalog tree → zip pipeline
// Implements DownloadServiceInterface
type DownloadService struct {
	excelService   ExcelServiceInterface
	catalogService CatalogServiceInterface
	client         *http.Client
}

// NewDownloadService creates a new DownloadService instance
func NewDownloadService(excelService ExcelServiceInterface, catalogService CatalogServiceInterface) *DownloadService {
	return &DownloadService{
		excelService:   excelService,
		catalogService: catalogService,
		client:         &http.Client{Timeout: fetchTimeout},
	}
}

// Ensure DownloadService implements DownloadServiceInterface
var _ DownloadServiceInterface = (*DownloadService)(nil)

// Run executes the full download pipeline. Per-asset fetch and validation
// failures are logged and skipped; spreadsheet and output errors are fatal.
func (ds *DownloadService) Run(ctx context.Context, opts DownloadOptions) (*models.DownloadStats, error) {
	if opts.OutDir == "" {
		opts.OutDir = DefaultOutDir
	}
	if opts.ZipName == "" {
		opts.ZipName = DefaultZipName
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}

	log.Printf("📥 Starting catalog download from %s", opts.ExcelPath)

	// Spreadsheet and output problems must surface before any network call
	rows, err := ds.excelService.ReadCatalog(opts.ExcelPath)
	if err != nil {
		return nil, err
	}
	if err := ds.catalogService.PrepareTree(opts.OutDir); err != nil {
		return nil, err
	}

	provFilter := utils.NormText(opts.ProviderContains)
	stats := &models.DownloadStats{Rows: len(rows)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for _, row := range rows {
		if isExcludedProvider(row.Proveedor) {
			stats.SkippedExcluded++
			continue
		}
		if provFilter != "" && !strings.Contains(utils.NormText(row.Proveedor), provFilter) {
			stats.SkippedProvider++
			continue
		}
		if !row.HasAssetURLs() {
			continue
		}

		row := row
		g.Go(func() error {
			return ds.processRow(gctx, row, opts, stats, &mu)
		})
	}

	if err := g.Wait(); err != nil {
		return stats, err
	}

	if err := ds.catalogService.Zip(opts.OutDir, opts.ZipName); err != nil {
		return stats, err
	}

	log.Printf("🎉 Download completed: %d imágenes, %d fichas (skipped: %d imágenes, %d fichas) out of %d rows",
		stats.ImgOK, stats.PdfOK, stats.ImgSkip, stats.PdfSkip, stats.Rows)
	return stats, nil
}

// processRow fetches both assets of one row. Returns an error only for output
// failures, which abort the whole run.
func (ds *DownloadService) processRow(ctx context.Context, row models.CatalogRow, opts DownloadOptions, stats *models.DownloadStats, mu *sync.Mutex) error {
	count := func(field *int) {
		mu.Lock()
		*field++
		mu.Unlock()
	}

	if row.URLImagen != "" {
		dest := ds.catalogService.ImagePath(opts.OutDir, row)
		switch res := ds.fetchImage(ctx, row, dest, opts.SkipExisting); res.Status {
		case models.FetchStatusFetched, models.FetchStatusSkipped:
			if res.Status == models.FetchStatusFetched {
				count(&stats.ImgOK)
			} else {
				count(&stats.ImgSkip)
			}
		case models.FetchStatusFailed:
			return fmt.Errorf("failed to store image for row %d: %s", row.Index, res.Reason)
		}
	}

	if row.URLFicha != "" {
		dest := ds.catalogService.FichaPath(opts.OutDir, row)
		switch res := ds.fetchFicha(ctx, row, dest, opts.SkipExisting); res.Status {
		case models.FetchStatusFetched:
			count(&stats.PdfOK)
		case models.FetchStatusSkipped:
			count(&stats.PdfSkip)
		case models.FetchStatusFailed:
			return fmt.Errorf("failed to store ficha for row %d: %s", row.Index, res.Reason)
		}
	}

	return nil
}

// fetchImage downloads the row's image. Any 2xx body is accepted; decodable
// images are normalized to JPEG, anything else is written raw under .jpg.
func (ds *DownloadService) fetchImage(ctx context.Context, row models.CatalogRow, dest string, skipExisting bool) models.FetchResult {
	if skipExisting && fileExists(dest) {
		log.Printf("⏭️  Skipping image for row %d (already exists): %s", row.Index, dest)
		return models.FetchResult{Status: models.FetchStatusSkipped, Reason: "already exists", Path: dest}
	}

	data, err := ds.fetch(ctx, row.URLImagen)
	if err != nil {
		log.Printf("❌ Image fetch failed for row %d (%s): %v", row.Index, row.URLImagen, err)
		return models.FetchResult{Status: models.FetchStatusSkipped, Reason: err.Error()}
	}

	if jpg, err := NormalizeImage(data); err == nil {
		data = jpg
	} else {
		// Asymmetry kept on purpose: image bytes are trusted, fichas are not
		log.Printf("⚠️  Image for row %d is not decodable, writing raw bytes: %v", row.Index, err)
	}

	if err := ds.catalogService.WriteAsset(dest, data); err != nil {
		return models.FetchResult{Status: models.FetchStatusFailed, Reason: err.Error()}
	}
	log.Printf("✓ Image saved: %s", dest)
	return models.FetchResult{Status: models.FetchStatusFetched, Path: dest}
}

// fetchFicha downloads the row's technical sheet and writes it only when the
// body carries a real PDF signature. An HTML error page behind a ".pdf" URL
// must never land in the tree.
func (ds *DownloadService) fetchFicha(ctx context.Context, row models.CatalogRow, dest string, skipExisting bool) models.FetchResult {
	if skipExisting && fileExists(dest) {
		log.Printf("⏭️  Skipping ficha for row %d (already exists): %s", row.Index, dest)
		return models.FetchResult{Status: models.FetchStatusSkipped, Reason: "already exists", Path: dest}
	}

	data, err := ds.fetch(ctx, row.URLFicha)
	if err != nil {
		log.Printf("❌ Ficha fetch failed for row %d (%s): %v", row.Index, row.URLFicha, err)
		return models.FetchResult{Status: models.FetchStatusSkipped, Reason: err.Error()}
	}

	if !IsPDF(data) {
		log.Printf("⚠️  Ficha for row %d is not a PDF, discarding (%s)", row.Index, row.URLFicha)
		return models.FetchResult{Status: models.FetchStatusSkipped, Reason: "content is not a PDF"}
	}

	if err := ds.catalogService.WriteAsset(dest, data); err != nil {
		return models.FetchResult{Status: models.FetchStatusFailed, Reason: err.Error()}
	}
	log.Printf("✓ Ficha saved: %s", dest)
	return models.FetchResult{Status: models.FetchStatusFetched, Path: dest}
}

// fetch issues a single GET for one asset. One attempt per asset per run.
func (ds *DownloadService) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := ds.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return data, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
