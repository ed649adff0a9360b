package repository

import (
	"context"
	"time"

	"catalogo-naves/models"
)

// ReportRepositoryInterface defines the contract for enrichment report persistence
type ReportRepositoryInterface interface {
	InsertRecord(ctx context.Context, rec *models.EnrichmentRecord) error
	InsertRunSummary(ctx context.Context, runAt time.Time, stats *models.EnrichmentStats) error
}
