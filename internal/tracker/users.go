package tracker

import (
	"context"
	"fmt"
	"net/http"
)

// Users lists every operator account.
func (c *Client) Users(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.do(ctx, http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// User fetches a single account by id.
func (c *Client) User(ctx context.Context, id uint) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d", id), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser registers a new operator account.
func (c *Client) CreateUser(ctx context.Context, user User) (*User, error) {
	var created User
	if err := c.do(ctx, http.MethodPost, "/users", user, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateUser replaces an account record.
func (c *Client) UpdateUser(ctx context.Context, id uint, user User) (*User, error) {
	var updated User
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/users/%d", id), user, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/users/%d", id), nil, nil)
}
