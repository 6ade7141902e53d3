// internal/adapter/search/xapi.go

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/g8rswimmer/go-twitter/v2"

	"playerpulse/internal/domain/sentiment"
)

const xAPIHost = "https://api.twitter.com"

type bearerAuthorizer struct {
	token string
}

func (a bearerAuthorizer) Add(req *http.Request) {
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", a.token))
}

// XClient searches recent posts through the X API v2
type XClient struct {
	client     *twitter.Client
	maxResults int
}

// xPage is the page shape handed to the pager: tweets under "data" and the
// next_token under "meta.next_cursor"
type xPage struct {
	Data []*twitter.TweetObj `json:"data"`
	Meta xPageMeta           `json:"meta"`
}

type xPageMeta struct {
	NextCursor string `json:"next_cursor,omitempty"`
}

// NewXClient creates a new X API v2 client. An empty host uses the public API.
func NewXClient(bearerToken, host string, maxResults int, timeout time.Duration) *XClient {
	if host == "" {
		host = xAPIHost
	}
	if maxResults < 10 || maxResults > 100 {
		maxResults = 100
	}

	return &XClient{
		client: &twitter.Client{
			Authorizer: bearerAuthorizer{token: bearerToken},
			Client: &http.Client{
				Timeout: timeout,
			},
			Host: host,
		},
		maxResults: maxResults,
	}
}

// Search fetches one page of recent posts. The X API has no "Top" ordering
// for recent search, so the mode is not forwarded.
func (c *XClient) Search(ctx context.Context, q sentiment.SearchQuery) ([]byte, error) {
	opts := twitter.TweetRecentSearchOpts{
		MaxResults:  c.maxResults,
		NextToken:   q.Cursor,
		TweetFields: []twitter.TweetField{twitter.TweetFieldCreatedAt, twitter.TweetFieldText},
	}

	resp, err := c.client.TweetRecentSearch(ctx, q.Query, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", sentiment.ErrTransport, err)
	}

	page := xPage{Data: []*twitter.TweetObj{}}
	if resp.Raw != nil && resp.Raw.Tweets != nil {
		page.Data = resp.Raw.Tweets
	}
	if resp.Meta != nil {
		page.Meta.NextCursor = resp.Meta.NextToken
	}

	body, err := json.Marshal(page)
	if err != nil {
		return nil, fmt.Errorf("error encoding page: %w", err)
	}
	return body, nil
}
