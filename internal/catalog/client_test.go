package catalog_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/bggsearch/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchDecodesCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/boardgame", r.URL.Path)
		assert.Equal(t, "Gloomhaven", r.URL.Query().Get("q"))
		assert.Equal(t, "7", r.URL.Query().Get("showcount"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"objectid":"174430","name":"Gloomhaven","yearpublished":2017,"rep_imageid":2437871,"href":"/boardgame/174430/gloomhaven","subtype":"boardgame"}]}`))
	}))
	t.Cleanup(server.Close)

	client := catalog.NewClient(server.URL)
	candidates, err := client.Search(context.Background(), "Gloomhaven")
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	got := candidates[0]
	assert.Equal(t, 174430, got.CatalogID)
	assert.Equal(t, "Gloomhaven", got.Name)
	assert.Equal(t, 2017, got.YearPublished)
	assert.Equal(t, 2437871, got.RepImageID)
	assert.Equal(t, "/boardgame/174430/gloomhaven", got.Href)
}

func TestSearchCapsAtShowCount(t *testing.T) {
	items := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		items = append(items, fmt.Sprintf(`{"objectid":%d,"name":"Game %d","href":"/boardgame/%d"}`, i, i, i))
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[` + strings.Join(items, ",") + `]}`))
	}))
	t.Cleanup(server.Close)

	candidates, err := catalog.NewClient(server.URL).Search(context.Background(), "game")
	require.NoError(t, err)
	assert.Len(t, candidates, catalog.ShowCount)
}

func TestSearchPassesEmptyQueryThrough(t *testing.T) {
	var rawQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	t.Cleanup(server.Close)

	candidates, err := catalog.NewClient(server.URL).Search(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, candidates)
	assert.Equal(t, "q=&showcount=7", rawQuery)
}

func TestSearchErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{
			name:    "non-200 status",
			status:  http.StatusServiceUnavailable,
			body:    `{"error":"down"}`,
			wantErr: catalog.ErrUnexpectedStatus,
		},
		{
			name:    "invalid json",
			status:  http.StatusOK,
			body:    `<html>`,
			wantErr: catalog.ErrMalformedResponse,
		},
		{
			name:    "missing items",
			status:  http.StatusOK,
			body:    `{"total":0}`,
			wantErr: catalog.ErrMalformedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			t.Cleanup(server.Close)

			_, err := catalog.NewClient(server.URL).Search(context.Background(), "x")
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSearchTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := catalog.NewClient(server.URL).Search(context.Background(), "x")
	require.Error(t, err)
}
