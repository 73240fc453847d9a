package source

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// HTTPFetcher fetches the listing over HTTP(S), always bypassing caches
type HTTPFetcher struct {
	client    *http.Client
	url       string
	userAgent string
}

// NewHTTP creates an HTTPFetcher. Zero timeout and empty user agent use the defaults.
func NewHTTP(url string, timeout time.Duration, userAgent string) *HTTPFetcher {
	if timeout <= 0 {
		timeout = Timeout
	}
	if userAgent == "" {
		userAgent = UserAgent
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: timeout,
		},
		url:       url,
		userAgent: userAgent,
	}
}

// Fetch downloads the listing
func (f *HTTPFetcher) Fetch(ctx context.Context) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json, application/ld+json;q=0.9, text/html;q=0.8")
	req.Header.Set("Cache-Control", "no-cache, no-store")
	req.Header.Set("Pragma", "no-cache")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := readDocument(resp.Body, maxDocumentSize)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return &Document{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		Location:    f.url,
	}, nil
}

func (f *HTTPFetcher) String() string {
	return f.url
}
