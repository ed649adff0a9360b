package main

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"catalogo-naves/app"
	"catalogo-naves/service"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "catalogo",
		Short:         "Builds the supplier catalog tree and archive from the master spreadsheet",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env in development; in CI the secrets come from the environment
			if os.Getenv("ENV") != "production" {
				if err := godotenv.Overload(".env"); err == nil {
					log.Printf("✓ Loaded environment variables from .env")
				}
			}
		},
	}

	root.AddCommand(newDownloadCommand(), newEnrichCommand())
	return root
}

func newDownloadCommand() *cobra.Command {
	var opts service.DownloadOptions

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download images and fichas técnicas into CATALOGO/ and produce CATALOGO.zip",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunDownload(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.ExcelPath, "excel", "data/RESUMEN_CATALOGO_READY.xlsx", "path of the enriched spreadsheet")
	cmd.Flags().StringVar(&opts.OutDir, "out-dir", service.DefaultOutDir, "output root directory")
	cmd.Flags().StringVar(&opts.ZipName, "zip-name", service.DefaultZipName, "name of the archive to generate")
	cmd.Flags().StringVar(&opts.ProviderContains, "provider-contains", "", "process only rows whose Proveedor contains this text (normalized); empty = all")
	cmd.Flags().BoolVar(&opts.SkipExisting, "skip-existing", false, "leave files already on disk untouched (resume behavior)")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", service.DefaultConcurrency, "max simultaneous asset downloads")

	return cmd
}

func newEnrichCommand() *cobra.Command {
	var opts service.EnrichOptions
	var sleepMS int

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Fill the image and ficha técnica URL columns via Google Custom Search",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunEnrich(cmd.Context(), opts, time.Duration(sleepMS)*time.Millisecond)
		},
	}

	cmd.Flags().StringVar(&opts.ExcelPath, "excel", "data/RESUMEN_CATALOGO.xlsx", "path of the source spreadsheet")
	cmd.Flags().StringVar(&opts.OutPath, "out", "data/RESUMEN_CATALOGO_READY.xlsx", "path of the enriched spreadsheet to write")
	cmd.Flags().StringVar(&opts.ReportPath, "report", "data/ENRICHMENT_REPORT.csv", "path of the enrichment report")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "max rows to process (0 = all)")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "first row to process (0-based)")
	cmd.Flags().IntVar(&sleepMS, "sleep-ms", 1100, "pause between search queries in milliseconds")
	cmd.Flags().StringVar(&opts.ProviderContains, "provider-contains", "", "process only rows whose Proveedor contains this text (normalized); empty = all")

	return cmd
}
