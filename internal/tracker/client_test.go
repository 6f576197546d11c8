package tracker

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *Store, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	store := newTestStore(t)
	client, err := NewClient(server.URL, store)
	require.NoError(t, err)
	return client, store, server
}

func TestClientAttachesBearerToken(t *testing.T) {
	var gotAuth string
	client, store, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("[]"))
	}))

	_, err := client.Devices(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth, "unauthenticated call must omit the header")

	require.NoError(t, store.SetSession("admin@example.com", "tok123"))
	_, err = client.Devices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok123", gotAuth)
}

func TestClientUnauthorizedClearsSession(t *testing.T) {
	endpoints := []func(c *Client, ctx context.Context) error{
		func(c *Client, ctx context.Context) error { _, err := c.Devices(ctx); return err },
		func(c *Client, ctx context.Context) error { _, err := c.Users(ctx); return err },
		func(c *Client, ctx context.Context) error { _, err := c.LatestPositions(ctx); return err },
		func(c *Client, ctx context.Context) error { _, err := c.Stats(ctx); return err },
		func(c *Client, ctx context.Context) error { return c.DeleteDevice(ctx, 7) },
	}
	for _, call := range endpoints {
		client, store, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		require.NoError(t, store.SetSession("admin@example.com", "tok123"))

		err := call(client, context.Background())
		assert.ErrorIs(t, err, ErrUnauthorized)
		assert.Empty(t, store.Token(), "401 must leave the store unauthenticated")
	}
}

func TestClientNoContent(t *testing.T) {
	client, store, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	require.NoError(t, store.SetSession("admin@example.com", "tok123"))

	require.NoError(t, client.DeleteDevice(context.Background(), 1))
	assert.Equal(t, "tok123", store.Token(), "204 must not touch the session")
}

func TestClientAPIErrorCarriesBody(t *testing.T) {
	client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("duplicate uniqueId"))
	}))

	_, err := client.CreateDevice(context.Background(), Device{Name: "n", UniqueID: "u"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "duplicate uniqueId", apiErr.Body)
}

func TestClientDecodesBody(t *testing.T) {
	client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/devices/3", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":3,"name":"Truck A","uniqueId":"867",  "status":"online"}`))
	}))

	device, err := client.Device(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, uint(3), device.ID)
	assert.Equal(t, "Truck A", device.Name)
	assert.Equal(t, StatusOnline, device.Status)
}

func TestClientTransportFailurePropagates(t *testing.T) {
	store := newTestStore(t)
	client, err := NewClient("http://127.0.0.1:1", store)
	require.NoError(t, err)
	require.NoError(t, store.SetSession("admin@example.com", "tok123"))

	_, err = client.Devices(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, "tok123", store.Token(), "transport failure must not clear the session")
}

func TestPositionHistoryQuery(t *testing.T) {
	var gotQuery string
	client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("[]"))
	}))

	from := mustTime(t, "2026-02-01T00:00:00Z")
	to := mustTime(t, "2026-02-02T00:00:00Z")
	_, err := client.PositionHistory(context.Background(), 42, from, to)
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "deviceId=42")
	assert.Contains(t, gotQuery, "from=2026-02-01T00%3A00%3A00Z")
	assert.Contains(t, gotQuery, "to=2026-02-02T00%3A00%3A00Z")
}
