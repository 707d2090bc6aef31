package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	defaultTimeout = 3 * time.Second
	userAgent      = "shiftspace/1.0"
)

// Client talks to the external search index over HTTP.
type Client struct {
	client   *http.Client
	cache    *cache.Cache
	endpoint string
}

func New(endpoint string) *Client {
	httpClient := http.Client{
		Timeout: defaultTimeout,
	}

	c := &Client{
		client:   &httpClient,
		cache:    cache.New(30*time.Second, time.Minute),
		endpoint: endpoint,
	}
	httpClient.Transport = c
	return c
}

func (c *Client) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", userAgent)
	return http.DefaultTransport.RoundTrip(req)
}

// SearchResult is one page of matching document ids.
type SearchResult struct {
	IDs   []string `json:"ids"`
	Total int      `json:"total"`
}

// Search runs query against the index. Pages are cached briefly so that
// repeated listings of the same page do not hit the index.
func (c *Client) Search(ctx context.Context, query string, start, limit int) (SearchResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("start", strconv.Itoa(start))
	params.Set("limit", strconv.Itoa(limit))

	cacheKey := "search:" + params.Encode()
	if x, found := c.cache.Get(cacheKey); found {
		return x.(SearchResult), nil
	}

	var result SearchResult
	err := c.HttpRequest(ctx, http.MethodGet, "/search?"+params.Encode(), &result)
	if err != nil {
		return SearchResult{}, fmt.Errorf("failed to search: %v", err)
	}

	c.cache.Set(cacheKey, result, cache.DefaultExpiration)
	return result, nil
}

func (c *Client) HttpRequest(ctx context.Context, method, path string, response any) error {
	if c.endpoint == "" {
		return fmt.Errorf("search endpoint is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to perform request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	err = json.NewDecoder(resp.Body).Decode(response)
	if err != nil {
		return fmt.Errorf("failed to decode response: %v", err)
	}

	return nil
}
