package service

import "context"

// SearchServiceInterface defines the contract for web search operations
type SearchServiceInterface interface {
	Search(ctx context.Context, query string, num int64) ([]string, error)
}
