package service

import (
	"context"

	"catalogo-naves/models"
)

// DownloadServiceInterface defines the contract for the catalog download pipeline
type DownloadServiceInterface interface {
	Run(ctx context.Context, opts DownloadOptions) (*models.DownloadStats, error)
}
