package tracker

import (
	"context"
	"fmt"
	"net/http"
)

// Devices lists every device visible to the current session.
func (c *Client) Devices(ctx context.Context) ([]Device, error) {
	var devices []Device
	if err := c.do(ctx, http.MethodGet, "/devices", nil, &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// Device fetches a single device by id.
func (c *Client) Device(ctx context.Context, id uint) (*Device, error) {
	var device Device
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/devices/%d", id), nil, &device); err != nil {
		return nil, err
	}
	return &device, nil
}

// CreateDevice registers a new device. Field validation is the caller's
// responsibility; this binding only marshals shapes.
func (c *Client) CreateDevice(ctx context.Context, device Device) (*Device, error) {
	var created Device
	if err := c.do(ctx, http.MethodPost, "/devices", device, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateDevice replaces a device record.
func (c *Client) UpdateDevice(ctx context.Context, id uint, device Device) (*Device, error) {
	var updated Device
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/devices/%d", id), device, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteDevice removes a device.
func (c *Client) DeleteDevice(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/devices/%d", id), nil, nil)
}
