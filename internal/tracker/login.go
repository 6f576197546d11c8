package tracker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"geotrack-console/internal/observability/metrics"
)

// The tracking server delivers its session token in a cookie rather than a
// structured response field. This pattern is preserved exactly; any trailing
// cookie attributes are cut at the first semicolon.
var sessionCookiePattern = regexp.MustCompile(`JSESSIONID=([^;]+)`)

// Login authenticates the operator with a form-encoded POST to /session.
//
// A 2xx response without an extractable cookie token is not a successful
// login: it returns ErrNoToken and leaves the store unauthenticated. On
// success the store is updated and the operator profile is returned. This is
// the only path that ever writes a token.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	form := url.Values{}
	form.Set("email", email)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/session",
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.IncLogin(metrics.ResultError)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.IncLogin(metrics.ResultError)
		return nil, ErrLoginFailed
	}

	var profile User
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, err
	}

	token := extractToken(resp.Header.Get("Set-Cookie"))
	if token == "" {
		metrics.IncLogin(metrics.ResultError)
		return nil, ErrNoToken
	}
	if err := c.store.SetSession(email, token); err != nil {
		return nil, err
	}
	metrics.IncLogin(metrics.ResultSuccess)
	return &profile, nil
}

// Logout ends the session server-side and always clears the local store,
// even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodDelete, "/session", nil, nil)
	if clearErr := c.store.Clear(); clearErr != nil && err == nil {
		err = clearErr
	}
	return err
}

func extractToken(setCookie string) string {
	match := sessionCookiePattern.FindStringSubmatch(setCookie)
	if len(match) < 2 {
		return ""
	}
	return match[1]
}
