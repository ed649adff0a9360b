package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// ErrQuotaExceeded signals the Google Custom Search quota was hit; the run
// stops cleanly and partial results are persisted.
var ErrQuotaExceeded = errors.New("google custom search quota exceeded")

// DefaultSearchSleep keeps query volume under the CSE rate limit
const DefaultSearchSleep = 1100 * time.Millisecond

// SearchService queries Google Custom Search (webwide engine)
// Implements SearchServiceInterface
type SearchService struct {
	svc   *customsearch.Service
	cx    string
	sleep time.Duration
}

// NewSearchService creates a SearchService from the GOOGLE_CSE_KEY / GOOGLE_CSE_CX pair
func NewSearchService(ctx context.Context, apiKey, cx string, sleep time.Duration) (*SearchService, error) {
	if apiKey == "" || cx == "" {
		return nil, fmt.Errorf("GOOGLE_CSE_KEY and GOOGLE_CSE_CX must be set")
	}

	svc, err := customsearch.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create custom search service: %w", err)
	}

	if sleep <= 0 {
		sleep = DefaultSearchSleep
	}
	return &SearchService{svc: svc, cx: cx, sleep: sleep}, nil
}

// Ensure SearchService implements SearchServiceInterface
var _ SearchServiceInterface = (*SearchService)(nil)

// Search returns result URLs for one query. A 429 from the API surfaces as
// ErrQuotaExceeded so callers can stop and save progress.
func (s *SearchService) Search(ctx context.Context, query string, num int64) ([]string, error) {
	resp, err := s.svc.Cse.List().Q(query).Cx(s.cx).Num(num).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusTooManyRequests {
			return nil, ErrQuotaExceeded
		}
		return nil, fmt.Errorf("search %q failed: %w", query, err)
	}

	// Pause between queries to stay under the per-second quota
	time.Sleep(s.sleep)

	var urls []string
	for _, item := range resp.Items {
		if item.Link != "" {
			urls = append(urls, item.Link)
		}
	}
	return urls, nil
}
