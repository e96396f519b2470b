// Package client holds the synchronous HTTP calls between services: existence
// checks gating writes, count queries feeding read aggregates, and the
// child-listing/deletion calls the cascade depends on.
//
// Failure policy is split per call type: existence checks and cascade calls
// hard-fail (the caller propagates), count queries are expected to be
// soft-failed by the caller (degrade to zero rather than erroring).
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"socialnet/internal/apperr"
)

type Client struct {
	http    *http.Client
	baseURL string
}

func New(baseURL string) *Client {
	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
	}
}

func (c *Client) exists(ctx context.Context, path string) (bool, error) {
	var out struct {
		Exists bool `json:"exists"`
	}
	if err := c.getJSON(ctx, path, &out); err != nil {
		return false, err
	}
	return out.Exists, nil
}

func (c *Client) count(ctx context.Context, path string) (int64, error) {
	var out struct {
		Count int64 `json:"count"`
	}
	if err := c.getJSON(ctx, path, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (c *Client) listIDs(ctx context.Context, path string) ([]int64, error) {
	var out struct {
		IDs []int64 `json:"ids"`
	}
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.IDs, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w: %w", path, apperr.ErrTransientDependency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("get %s: %w", path, apperr.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get %s: status %d: %w", path, resp.StatusCode, apperr.ErrTransientDependency)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}

	return nil
}

func (c *Client) delete(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("delete %s: %w: %w", path, apperr.ErrTransientDependency, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("delete %s: %w", path, apperr.ErrNotFound)
	case resp.StatusCode >= 300:
		return fmt.Errorf("delete %s: status %d: %w", path, resp.StatusCode, apperr.ErrTransientDependency)
	}

	return nil
}
