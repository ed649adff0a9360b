package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

const scrapeTimeout = 60 * time.Second

// PageAssets holds the asset URLs picked from a candidate product page
type PageAssets struct {
	PDFURL   string
	ImageURL string
}

// HasAny reports whether at least one asset was found
func (a PageAssets) HasAny() bool {
	return a.PDFURL != "" || a.ImageURL != ""
}

// ScrapeService renders candidate product pages with headless Chrome and picks
// the technical-sheet PDF and the main product image
// Implements ScrapeServiceInterface
type ScrapeService struct {
	client *http.Client
}

// NewScrapeService creates a new ScrapeService instance
func NewScrapeService() *ScrapeService {
	return &ScrapeService{client: &http.Client{Timeout: fetchTimeout}}
}

// Ensure ScrapeService implements ScrapeServiceInterface
var _ ScrapeServiceInterface = (*ScrapeService)(nil)

// detectChromePath detects the path to Chrome/Chromium executable.
// Checks CHROME_PATH env var first, then common installation paths.
func detectChromePath() string {
	if chromePath := os.Getenv("CHROME_PATH"); chromePath != "" {
		if _, err := os.Stat(chromePath); err == nil {
			return chromePath
		}
	}

	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

type imgCandidate struct {
	Src    string `json:"src"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// PickAssets inspects one candidate URL. A URL that already serves a PDF or an
// image wins directly; otherwise the page is rendered and mined for a PDF link
// (verified by Content-Type), the og:image, or the largest image on the page.
func (s *ScrapeService) PickAssets(ctx context.Context, pageURL string) (*PageAssets, error) {
	if ct, err := s.contentType(ctx, pageURL); err == nil {
		if strings.Contains(ct, "application/pdf") {
			return &PageAssets{PDFURL: pageURL}, nil
		}
		if strings.HasPrefix(ct, "image/") {
			return &PageAssets{ImageURL: pageURL}, nil
		}
	}

	links, ogImage, imgs, err := s.renderAndExtract(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	assets := &PageAssets{}

	for _, href := range links {
		if !strings.Contains(strings.ToLower(href), ".pdf") {
			continue
		}
		abs := resolveURL(pageURL, href)
		if ct, err := s.contentType(ctx, abs); err == nil && strings.Contains(ct, "application/pdf") {
			assets.PDFURL = abs
			break
		}
	}

	// og:image first, largest <img> as fallback
	if ogImage != "" {
		abs := resolveURL(pageURL, ogImage)
		if ct, err := s.contentType(ctx, abs); err == nil && strings.HasPrefix(ct, "image/") {
			assets.ImageURL = abs
		}
	}
	if assets.ImageURL == "" {
		bestArea := 0
		for _, img := range imgs {
			if strings.Contains(strings.ToLower(img.Src), ".svg") {
				continue
			}
			area := img.Width * img.Height
			if area <= bestArea {
				continue
			}
			abs := resolveURL(pageURL, img.Src)
			if ct, err := s.contentType(ctx, abs); err == nil && strings.HasPrefix(ct, "image/") {
				assets.ImageURL = abs
				bestArea = area
			}
		}
	}

	return assets, nil
}

// renderAndExtract loads the page in headless Chrome and pulls anchors,
// og:image and image candidates out of the rendered DOM
func (s *ScrapeService) renderAndExtract(ctx context.Context, pageURL string) (links []string, ogImage string, imgs []imgCandidate, err error) {
	ctx, cancel := context.WithTimeout(ctx, scrapeTimeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox, // required for running in CI containers
	)
	if chromePath := detectChromePath(); chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	chromedpCtx, chromedpCancel := chromedp.NewContext(allocCtx)
	defer chromedpCancel()

	err = chromedp.Run(chromedpCtx,
		chromedp.Navigate(pageURL),
		chromedp.Evaluate(`Array.from(document.querySelectorAll('a[href]')).map(a => a.href)`, &links),
		chromedp.Evaluate(`(() => {
			const m = document.querySelector('meta[property="og:image"], meta[name="og:image"]');
			return m && m.content ? m.content : '';
		})()`, &ogImage),
		chromedp.Evaluate(`Array.from(document.querySelectorAll('img[src]')).map(i => ({
			src: i.src, width: i.width|0, height: i.height|0
		}))`, &imgs),
	)
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to render %s: %w", pageURL, err)
	}
	return links, ogImage, imgs, nil
}

// contentType fetches only far enough to learn the declared Content-Type
func (s *ScrapeService) contentType(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status: %s", resp.Status)
	}
	return strings.ToLower(resp.Header.Get("Content-Type")), nil
}

// resolveURL resolves a possibly relative reference against the page URL
func resolveURL(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
