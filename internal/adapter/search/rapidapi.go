// internal/adapter/search/rapidapi.go

package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"playerpulse/internal/domain/sentiment"
)

// maxPageSize bounds how much of a response body is read
const maxPageSize = 8 << 20

// RapidAPIClient searches posts through the twitter-api45 RapidAPI endpoint
type RapidAPIClient struct {
	APIKey     string
	Host       string
	BaseURL    string
	HTTPClient *http.Client
}

// NewRapidAPIClient creates a new twitter-api45 client
func NewRapidAPIClient(apiKey, host string, timeout time.Duration) *RapidAPIClient {
	return &RapidAPIClient{
		APIKey:  apiKey,
		Host:    host,
		BaseURL: fmt.Sprintf("https://%s", host),
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Search fetches one page of results. The body is returned undecoded.
func (c *RapidAPIClient) Search(ctx context.Context, q sentiment.SearchQuery) ([]byte, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("%w: RapidAPI key not configured", sentiment.ErrTransport)
	}

	params := url.Values{}
	params.Set("query", q.Query)
	params.Set("search_type", q.Mode)
	if q.Cursor != "" {
		params.Set("cursor", q.Cursor)
	}

	endpoint := fmt.Sprintf("%s/search.php?%s", c.BaseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", sentiment.ErrTransport, err)
	}

	req.Header.Add("X-RapidAPI-Key", c.APIKey)
	req.Header.Add("X-RapidAPI-Host", c.Host)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", sentiment.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: RapidAPI returned status code %d", sentiment.ErrTransport, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, fmt.Errorf("%w: error reading response: %w", sentiment.ErrTransport, err)
	}

	return body, nil
}
