package service

import "context"

// ScrapeServiceInterface defines the contract for product-page asset picking
type ScrapeServiceInterface interface {
	PickAssets(ctx context.Context, pageURL string) (*PageAssets, error)
}
