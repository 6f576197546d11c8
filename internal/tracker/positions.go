package tracker

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// LatestPositions returns the most recent known position of every device.
func (c *Client) LatestPositions(ctx context.Context) ([]Position, error) {
	var positions []Position
	if err := c.do(ctx, http.MethodGet, "/positions", nil, &positions); err != nil {
		return nil, err
	}
	return positions, nil
}

// PositionHistory returns the positions recorded for one device inside the
// given time range. Timestamps go over the wire as RFC 3339.
func (c *Client) PositionHistory(ctx context.Context, deviceID uint, from, to time.Time) ([]Position, error) {
	params := url.Values{}
	params.Set("deviceId", strconv.FormatUint(uint64(deviceID), 10))
	params.Set("from", from.UTC().Format(time.RFC3339))
	params.Set("to", to.UTC().Format(time.RFC3339))

	var positions []Position
	if err := c.do(ctx, http.MethodGet, "/positions?"+params.Encode(), nil, &positions); err != nil {
		return nil, err
	}
	return positions, nil
}
