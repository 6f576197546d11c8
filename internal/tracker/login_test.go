package tracker

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginExtractsCookieToken(t *testing.T) {
	var gotContentType, gotBody string
	client, store, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseForm())
		gotBody = r.PostForm.Encode()
		w.Header().Set("Set-Cookie", "JSESSIONID=abc123def; Path=/; HttpOnly")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1,"name":"Admin","email":"admin@example.com","administrator":true}`))
	}))

	profile, err := client.Login(context.Background(), "admin@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	assert.Contains(t, gotBody, "email=admin%40example.com")
	assert.Contains(t, gotBody, "password=secret")
	assert.Equal(t, "Admin", profile.Name)
	assert.True(t, profile.Administrator)
	assert.Equal(t, "abc123def", store.Token())
	assert.Equal(t, "admin@example.com", store.Identity())
}

func TestLoginWithoutTokenFails(t *testing.T) {
	// A 2xx response without an extractable cookie token is not a login.
	client, store, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1,"name":"Admin","email":"admin@example.com"}`))
	}))

	_, err := client.Login(context.Background(), "admin@example.com", "secret")
	assert.ErrorIs(t, err, ErrNoToken)
	assert.Empty(t, store.Token())
	assert.Empty(t, store.Identity())
}

func TestLoginRejectedCredentials(t *testing.T) {
	client, store, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.Login(context.Background(), "admin@example.com", "wrong")
	assert.ErrorIs(t, err, ErrLoginFailed)
	assert.NotErrorIs(t, err, ErrUnauthorized, "login rejection is distinct from a stale session")
	assert.Empty(t, store.Token())
}

func TestLoginIgnoresForeignCookies(t *testing.T) {
	client, store, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Set-Cookie", "tracking_consent=yes; Path=/")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1,"name":"Admin","email":"a@b.c"}`))
	}))

	_, err := client.Login(context.Background(), "a@b.c", "secret")
	assert.ErrorIs(t, err, ErrNoToken)
	assert.Empty(t, store.Token())
}

func TestLoginTransportFailure(t *testing.T) {
	store := newTestStore(t)
	client, err := NewClient("http://127.0.0.1:1", store)
	require.NoError(t, err)

	_, err = client.Login(context.Background(), "admin@example.com", "secret")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrLoginFailed, "a network failure is not a credential rejection")
	assert.Empty(t, store.Token())
}

func TestLogoutClearsSessionEvenOnServerError(t *testing.T) {
	client, store, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	require.NoError(t, store.SetSession("admin@example.com", "tok123"))

	err := client.Logout(context.Background())
	require.Error(t, err)
	assert.Empty(t, store.Token())
	assert.Empty(t, store.Identity())
}

func TestLogoutHappyPath(t *testing.T) {
	var gotMethod, gotPath string
	client, store, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	require.NoError(t, store.SetSession("admin@example.com", "tok123"))

	require.NoError(t, client.Logout(context.Background()))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/session", gotPath)
	assert.Empty(t, store.Token())
}

func TestExtractToken(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   string
	}{
		{"plain", "JSESSIONID=node01abc", "node01abc"},
		{"with attributes", "JSESSIONID=node01abc; Path=/; HttpOnly", "node01abc"},
		{"missing", "other=1; Path=/", ""},
		{"empty", "", ""},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractToken(tt.header))
		})
	}
}
