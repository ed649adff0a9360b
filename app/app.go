package app

import (
	"context"
	"log"
	"os"
	"time"

	"catalogo-naves/db"
	"catalogo-naves/repository"
	"catalogo-naves/service"
)

// RunDownload wires the services and executes the catalog download pipeline
func RunDownload(ctx context.Context, opts service.DownloadOptions) error {
	excelService := service.NewExcelService()
	catalogService := service.NewCatalogService()
	downloadService := service.NewDownloadService(excelService, catalogService)

	stats, err := downloadService.Run(ctx, opts)
	if err != nil {
		return err
	}

	log.Printf("✓ Stats: rows=%d excluded=%d filtered=%d img_ok=%d img_skip=%d pdf_ok=%d pdf_skip=%d",
		stats.Rows, stats.SkippedExcluded, stats.SkippedProvider,
		stats.ImgOK, stats.ImgSkip, stats.PdfOK, stats.PdfSkip)
	return nil
}

// RunEnrich wires the services and executes the URL-enrichment pipeline.
// sleep is the pause between search queries.
func RunEnrich(ctx context.Context, opts service.EnrichOptions, sleep time.Duration) error {
	searchService, err := service.NewSearchService(ctx, os.Getenv("GOOGLE_CSE_KEY"), os.Getenv("GOOGLE_CSE_CX"), sleep)
	if err != nil {
		return err
	}

	// Report persistence is optional: only when database variables are set
	var reportRepo repository.ReportRepositoryInterface
	if db.Configured() {
		if err := db.InitDB(); err != nil {
			log.Printf("⚠️  Database unavailable, continuing without report persistence: %v", err)
		} else {
			defer db.CloseDB()
			reportRepo = repository.NewReportRepository()
		}
	}

	enrichService := service.NewEnrichService(
		service.NewExcelService(),
		searchService,
		service.NewScrapeService(),
		reportRepo,
	)

	stats, err := enrichService.Run(ctx, opts)
	if err != nil {
		return err
	}
	if stats.QuotaStop {
		log.Printf("⚠️  Stopped early on search quota: %d of %d rows processed", stats.Filled, stats.Rows)
	}
	return nil
}
