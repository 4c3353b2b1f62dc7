// Package rest is the HTTP client for the cloud transaction store. The
// endpoint is a plain keyed collection: PUT by id for upserts (idempotent
// by construction) and a delta listing filtered by updated_since.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"trackrise/internal/remote"
)

const defaultTimeout = 15 * time.Second

type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: defaultTimeout},
	}
}

func (c *Client) Upsert(ctx context.Context, rec remote.Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	endpoint := fmt.Sprintf("%s/transactions/%s", c.baseURL, url.PathEscape(rec.ID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build upsert request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("upsert transaction %s: %w", rec.ID, err)
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("upsert transaction %s: unexpected status %d", rec.ID, resp.StatusCode)
	}
	return nil
}

func (c *Client) FetchDelta(ctx context.Context, since time.Time) ([]remote.Record, error) {
	endpoint := fmt.Sprintf("%s/transactions?updated_since=%s", c.baseURL, url.QueryEscape(since.UTC().Format(time.RFC3339Nano)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build delta request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch delta: %w", err)
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch delta: unexpected status %d", resp.StatusCode)
	}

	var records []remote.Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode delta response: %w", err)
	}
	return records, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
