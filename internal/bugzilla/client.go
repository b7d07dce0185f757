package bugzilla

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Searcher is the capability used by the query runner.
type Searcher interface {
	SearchBugs(ctx context.Context, params url.Values) ([]Bug, error)
}

// MetadataSource is the capability used by the search-options cache.
type MetadataSource interface {
	Products(ctx context.Context) ([]Product, error)
	BugFields(ctx context.Context) ([]Field, error)
}

// Client handles communication with the Bugzilla REST API.
type Client struct {
	BaseURL *url.URL     // Instance base URL (without /rest)
	Client  *http.Client // Underlying HTTP client
	auth    AuthFunc

	maxRetries uint64
	retryWait  time.Duration
}

// NewClient returns a Bugzilla client for the given base URL and
// authentication function. Transport failures and 5xx responses are
// retried up to maxRetries times with exponential backoff.
func NewClient(baseURL *url.URL, auth AuthFunc, skipVerify bool, timeout time.Duration, maxRetries int) *Client {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: skipVerify,
		},
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Client{
		BaseURL: baseURL,
		Client: &http.Client{
			Transport: tr,
			Timeout:   timeout,
		},
		auth:       auth,
		maxRetries: uint64(maxRetries),
		retryWait:  500 * time.Millisecond,
	}
}

// GetBug fetches a single bug by id.
func (c *Client) GetBug(ctx context.Context, id int) (*Bug, error) {
	body, _, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("rest/bug/%d", id), nil)
	if err != nil {
		return nil, err
	}

	var resp bugsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode bug response: %w", err)
	}
	if len(resp.Bugs) == 0 {
		return nil, fmt.Errorf("bug %d not found", id)
	}
	return &resp.Bugs[0], nil
}

// SearchBugs runs a bug search with the given canonical parameters.
func (c *Client) SearchBugs(ctx context.Context, params url.Values) ([]Bug, error) {
	body, _, err := c.doRequest(ctx, http.MethodGet, "rest/bug", params)
	if err != nil {
		return nil, err
	}

	var resp bugsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return resp.Bugs, nil
}

// Products lists the names of all accessible products.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	params := url.Values{}
	params.Set("type", "accessible")
	params.Set("include_fields", "name")

	body, _, err := c.doRequest(ctx, http.MethodGet, "rest/product", params)
	if err != nil {
		return nil, err
	}

	var resp productsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode product response: %w", err)
	}
	return resp.Products, nil
}

// BugFields lists the bug field metadata, including legal values.
func (c *Client) BugFields(ctx context.Context) ([]Field, error) {
	body, _, err := c.doRequest(ctx, http.MethodGet, "rest/field/bug", nil)
	if err != nil {
		return nil, err
	}

	var resp fieldsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode field response: %w", err)
	}
	return resp.Fields, nil
}

// Timezone returns the raw timezone endpoint response, unvalidated.
func (c *Client) Timezone(ctx context.Context) (json.RawMessage, error) {
	body, _, err := c.doRequest(ctx, http.MethodGet, "rest/timezone", nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// WebURL returns the browser URL for a bug id.
func (c *Client) WebURL(id int) string {
	return fmt.Sprintf("%s/show_bug.cgi?id=%d", strings.TrimRight(c.BaseURL.String(), "/"), id)
}

// doRequest performs an authenticated HTTP request and returns response
// body, status, and error. 4xx responses fail immediately; network errors
// and 5xx responses are retried within the configured budget.
func (c *Client) doRequest(ctx context.Context, method, path string, params url.Values) (response []byte, statusCode int, err error) {
	fullURL := c.BaseURL.JoinPath(path)
	if params != nil {
		fullURL.RawQuery = params.Encode()
	}

	var body []byte
	var status int

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, method, fullURL.String(), nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("create request: %w", err))
		}

		c.auth(req) // apply authentication

		req.Header.Set("Accept", "application/json")

		resp, err := c.Client.Do(req)
		if err != nil {
			return fmt.Errorf("do request: %w", err)
		}
		defer resp.Body.Close() // nolint:errcheck

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		body, status = respBody, resp.StatusCode

		switch {
		case resp.StatusCode >= 500:
			return fmt.Errorf("bugzilla error: status %d: %s", resp.StatusCode, string(respBody))
		case resp.StatusCode >= 400:
			return backoff.Permanent(fmt.Errorf("bugzilla error: %s", string(respBody)))
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryWait
	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, c.maxRetries), ctx)); err != nil {
		return body, status, err
	}
	return body, status, nil
}
