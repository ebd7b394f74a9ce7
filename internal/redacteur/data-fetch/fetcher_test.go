package datafetch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/rows", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"nom":"Dupont","ville":"Lyon","client":{"id":7}},{"nom":"Durand","ville":"Nantes","client":{"id":9}}]`))
	})
	mux.HandleFunc("/wrapped", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"a":1},2]}`))
	})
	mux.HandleFunc("/object", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"a":1}`))
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/api/v1/redacteur/query", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var body struct {
			Query string `json:"query"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{{"query": body.Query, "total": 3}}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newFetcher(t *testing.T, backend string) *Fetcher {
	t.Helper()
	f, err := NewFetcher(backend, Options{RetryMax: 0, Timeout: 5 * time.Second})
	require.NoError(t, err)
	return f
}

func TestFetchEndpoint(t *testing.T) {
	srv := newBackend(t)
	f := newFetcher(t, srv.URL)

	rows, err := f.Fetch(context.Background(), &edtypes.DataFetch{Source: edtypes.SourceAPI, Endpoint: "/rows"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Dupont", rows[0]["nom"])

	// Абсолютный адрес используется как есть
	rows, err = f.Fetch(context.Background(), &edtypes.DataFetch{Source: edtypes.SourceFile, Endpoint: srv.URL + "/wrapped"})
	require.NoError(t, err)
	assert.Equal(t, []edtypes.Row{{"a": 1.0}, {"value": 2.0}}, rows)
}

func TestFetchQuery(t *testing.T) {
	srv := newBackend(t)
	f := newFetcher(t, srv.URL)

	rows, err := f.Fetch(context.Background(), &edtypes.DataFetch{Source: edtypes.SourceDatabase, Query: "SELECT count(*) FROM sites"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "SELECT count(*) FROM sites", rows[0]["query"])

	_, err = f.Fetch(context.Background(), &edtypes.DataFetch{Source: edtypes.SourceDatabase})
	assert.ErrorIs(t, err, ErrNoQuery)
}

func TestFetchErrors(t *testing.T) {
	srv := newBackend(t)
	f := newFetcher(t, srv.URL)

	_, err := f.Fetch(context.Background(), &edtypes.DataFetch{Source: edtypes.SourceAPI, Endpoint: "/broken"})
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 500, se.Code)
	assert.Equal(t, "HTTP 500: Internal Server Error", Message(err))

	_, err = f.Fetch(context.Background(), &edtypes.DataFetch{Source: edtypes.SourceAPI, Endpoint: "/object"})
	assert.ErrorIs(t, err, ErrBadPayload)

	_, err = f.Fetch(context.Background(), &edtypes.DataFetch{Source: edtypes.SourceAPI})
	assert.ErrorIs(t, err, ErrNoEndpoint)
}

func TestFetchFieldsProjection(t *testing.T) {
	srv := newBackend(t)
	f := newFetcher(t, srv.URL)

	cfg := &edtypes.DataFetch{Source: edtypes.SourceAPI, Endpoint: "/rows", Fields: []string{"nom", ".client.id", "absent"}}
	rows, err := f.Fetch(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "Dupont", rows[0]["nom"])
	assert.Equal(t, 7.0, rows[0][".client.id"])
	assert.Equal(t, 9.0, rows[1][".client.id"])
	_, hasAbsent := rows[0]["absent"]
	assert.False(t, hasAbsent)
	_, hasVille := rows[0]["ville"]
	assert.False(t, hasVille)
	assert.Equal(t, []string{"nom", ".client.id", "absent"}, Columns(cfg, rows))
}

func TestColumnsInferred(t *testing.T) {
	rows := []edtypes.Row{{"b": 1, "a": 2}, {"c": 3}}
	assert.Equal(t, []string{"a", "b"}, Columns(&edtypes.DataFetch{}, rows))
	assert.Nil(t, Columns(&edtypes.DataFetch{}, nil))
}

func TestApplyKeepsDataOnError(t *testing.T) {
	srv := newBackend(t)
	f := newFetcher(t, srv.URL)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	b := &edtypes.DataFetch{Source: edtypes.SourceAPI, Endpoint: "/rows"}
	rows, err := f.Fetch(context.Background(), b)
	Apply(b, rows, err, now)
	require.Len(t, b.Data, 2)
	require.Empty(t, b.Error)
	cached := b.Data

	b.Endpoint = "/broken"
	rows, err = f.Fetch(context.Background(), b)
	Apply(b, rows, err, now.Add(time.Minute))

	assert.NotEmpty(t, b.Error)
	assert.Equal(t, cached, b.Data)
	assert.Equal(t, now, *b.LastFetch)
}

func TestForStorage(t *testing.T) {
	now := time.Now()
	b := &edtypes.DataFetch{ID: "d1", Data: []edtypes.Row{{"a": 1}}, LastFetch: &now}

	assert.Nil(t, ForStorage(b).Data)
	assert.NotNil(t, b.Data)

	b.Cache = true
	assert.Len(t, ForStorage(b).Data, 1)
}

func TestInterval(t *testing.T) {
	assert.Equal(t, time.Duration(0), Interval(&edtypes.DataFetch{}))
	assert.Equal(t, 5*time.Minute, Interval(&edtypes.DataFetch{Refresh: 5}))
}
