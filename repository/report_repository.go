package repository

import (
	"context"
	"fmt"
	"time"

	"catalogo-naves/db"
	"catalogo-naves/models"
)

// ReportRepository handles database operations for enrichment reports
// Implements ReportRepositoryInterface
type ReportRepository struct{}

// NewReportRepository creates a new ReportRepository
func NewReportRepository() *ReportRepository {
	return &ReportRepository{}
}

// Ensure ReportRepository implements ReportRepositoryInterface
var _ ReportRepositoryInterface = (*ReportRepository)(nil)

// InsertRecord inserts one enrichment report row
func (r *ReportRepository) InsertRecord(ctx context.Context, rec *models.EnrichmentRecord) error {
	query := `INSERT INTO enrichment_records
		(spreadsheet_row, codigo_articulo, referencia_proveedor, proveedor, brand,
		 chosen_host, search_pass, product_page, found_image, found_pdf, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())`

	_, err := db.DB.ExecContext(ctx, query,
		rec.Row, rec.CodigoArticulo, rec.ReferenciaProveedor, rec.ProveedorRaw, rec.BrandDetected,
		rec.ChosenHost, rec.SearchPass, rec.ProductPage, rec.FoundImage, rec.FoundPDF, rec.Status)
	if err != nil {
		return fmt.Errorf("failed to insert enrichment record: %w", err)
	}
	return nil
}

// InsertRunSummary inserts the aggregate outcome of one enrichment run
func (r *ReportRepository) InsertRunSummary(ctx context.Context, runAt time.Time, stats *models.EnrichmentStats) error {
	query := `INSERT INTO enrichment_runs (run_at, total_rows, filled, quota_stop)
		VALUES ($1, $2, $3, $4)`

	_, err := db.DB.ExecContext(ctx, query, runAt, stats.Rows, stats.Filled, stats.QuotaStop)
	if err != nil {
		return fmt.Errorf("failed to insert enrichment run summary: %w", err)
	}
	return nil
}
