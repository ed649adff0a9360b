package service

import (
	"context"

	"catalogo-naves/models"
)

// EnrichServiceInterface defines the contract for the URL-enrichment pipeline
type EnrichServiceInterface interface {
	Run(ctx context.Context, opts EnrichOptions) (*models.EnrichmentStats, error)
}
