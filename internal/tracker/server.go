package tracker

import (
	"context"
	"net/http"
)

// Stats fetches aggregate server health. Not every tracking server ships the
// stats endpoint; callers that can live with synthetic numbers should treat
// an *APIError here as a degradation signal, not a hard failure.
func (c *Client) Stats(ctx context.Context) (*ServerStats, error) {
	var stats ServerStats
	if err := c.do(ctx, http.MethodGet, "/server/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
