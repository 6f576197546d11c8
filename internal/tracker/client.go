package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"geotrack-console/internal/observability/metrics"
)

// Client is a minimal REST client for the tracking server. All authenticated
// calls run through do, the single chokepoint that attaches the session token
// and classifies outcomes. Exactly one network attempt per call: recovery
// policy belongs to the caller.
type Client struct {
	baseURL string
	store   *Store
	client  *http.Client
}

// NewClient constructs a tracking server client. baseURL must point at the
// server's /api root.
func NewClient(baseURL string, store *Store) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("tracker: empty base url")
	}
	if store == nil {
		return nil, errors.New("tracker: nil session store")
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		store:   store,
		client:  &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Store exposes the session store the client mutates on 401.
func (c *Client) Store() *Store {
	return c.store
}

// do performs one JSON request against the tracking server.
//
// 401 clears the session store and returns ErrUnauthorized. 204 returns with
// out untouched. Any other non-2xx returns *APIError with the raw body.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.store.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.ObserveRequest(method, metrics.ResultError, time.Since(start))
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		metrics.ObserveRequest(method, metrics.ResultUnauthorized, time.Since(start))
		if err := c.store.Clear(); err != nil {
			return errors.Join(ErrUnauthorized, err)
		}
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNoContent:
		metrics.ObserveRequest(method, metrics.ResultSuccess, time.Since(start))
		return nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		raw, _ := io.ReadAll(resp.Body)
		metrics.ObserveRequest(method, metrics.ResultError, time.Since(start))
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	metrics.ObserveRequest(method, metrics.ResultSuccess, time.Since(start))
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
