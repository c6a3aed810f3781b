package kv

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hakwon-ops/roster-api/pkg/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.StoreConfig{BaseURL: srv.URL}, nil)
}

func TestGetDecodesBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/extra-attendance", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"2025-03-05":["s1","s2"]}`)) //nolint:errcheck
	})

	var out map[string][]string
	require.NoError(t, client.Get(context.Background(), "extra-attendance", &out))
	assert.Equal(t, []string{"s1", "s2"}, out["2025-03-05"])
}

func TestGetSurfacesHTTPErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	var out map[string][]string
	err := client.Get(context.Background(), "extra-attendance", &out)
	assert.ErrorContains(t, err, "unexpected status 502")
}

func TestPostSendsJSON(t *testing.T) {
	var got map[string][]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	})

	body := map[string][]string{"2025-03-05": {"s1"}}
	require.NoError(t, client.Post(context.Background(), "today-order", body))
	assert.Equal(t, body, got)
}

func TestPostRejectsNonSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	err := client.Post(context.Background(), "today-order", map[string]string{})
	assert.ErrorContains(t, err, "unexpected status 500")
}
