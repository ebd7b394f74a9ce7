package reference

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL(t *testing.T) {
	tests := []struct {
		name string
		ref  edtypes.Reference
		want string
	}{
		{name: "report", ref: edtypes.Reference{ReferenceType: edtypes.RefReport, ReferenceId: "42"}, want: "/redacteur/42"},
		{name: "report with section", ref: edtypes.Reference{ReferenceType: edtypes.RefReport, ReferenceId: "42", SectionId: "budget"}, want: "/redacteur/42#section-budget"},
		{name: "document", ref: edtypes.Reference{ReferenceType: edtypes.RefDocument, ReferenceId: "d-1"}, want: "/documents/d-1"},
		{name: "section", ref: edtypes.Reference{ReferenceType: edtypes.RefSection, SectionId: "annexe"}, want: "#section-annexe"},
		{name: "external", ref: edtypes.Reference{ReferenceType: edtypes.RefExternal, ReferenceId: "https://example.org/a?b=1"}, want: "https://example.org/a?b=1"},
		{name: "unconfigured", ref: edtypes.Reference{ReferenceType: edtypes.RefReport}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, URL(&tt.ref))
		})
	}
}

func TestLabel(t *testing.T) {
	ref := &edtypes.Reference{ReferenceType: edtypes.RefExternal, ReferenceId: "https://example.org"}
	assert.Equal(t, "https://example.org", Label(ref))

	ref.ReferenceTitle = "Site"
	assert.Equal(t, "Site", Label(ref))

	ref = &edtypes.Reference{ReferenceType: edtypes.RefReport, ReferenceId: "42", Metadata: &edtypes.ReferenceMetadata{Title: "Bilan"}}
	assert.Equal(t, "Bilan", Label(ref))
}

func TestConfigureSwitchToExternal(t *testing.T) {
	cur := &edtypes.Reference{
		ID:            "r1",
		ReferenceType: edtypes.RefReport,
		ReferenceId:   "42",
		Metadata:      &edtypes.ReferenceMetadata{Title: "Bilan"},
	}

	refetch := Configure(cur, &edtypes.Reference{ReferenceType: edtypes.RefExternal, ReferenceId: "https://example.org"})
	assert.False(t, refetch)
	assert.Nil(t, cur.Metadata)
	assert.Equal(t, "r1", cur.ID)
}

func TestConfigureKeepsMetadata(t *testing.T) {
	meta := &edtypes.ReferenceMetadata{Title: "Bilan"}
	cur := &edtypes.Reference{ID: "r1", ReferenceType: edtypes.RefReport, ReferenceId: "42", Metadata: meta}

	refetch := Configure(cur, &edtypes.Reference{ReferenceType: edtypes.RefReport, ReferenceId: "42", DisplayAs: edtypes.RefCard})
	assert.False(t, refetch)
	assert.Same(t, meta, cur.Metadata)
	assert.Equal(t, edtypes.RefCard, cur.DisplayAs)

	refetch = Configure(cur, &edtypes.Reference{ReferenceType: edtypes.RefDocument, ReferenceId: "7"})
	assert.True(t, refetch)
	assert.Nil(t, cur.Metadata)
}

func newResolver(t *testing.T, handler http.HandlerFunc) *Resolver {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	cl := retryablehttp.NewClient()
	cl.RetryMax = 0
	cl.Logger = nil
	cl.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return NewResolver(cl, u, "", time.Second)
}

func TestResolve(t *testing.T) {
	r := newResolver(t, func(w http.ResponseWriter, req *http.Request) {
		switch req.URL.Path {
		case "/api/v1/redacteur/reports/42":
			w.Write([]byte(`{"name":"Rapport annuel","created_by_name":"Jeanne","created_at":"2026-01-01T00:00:00Z","description":"Résumé"}`))
		case "/api/v1/redacteur/documents/7":
			w.Write([]byte(`{"title":"Contrat","name":"ignored","excerpt":"Extrait"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	meta, err := r.Resolve(context.Background(), &edtypes.Reference{ReferenceType: edtypes.RefReport, ReferenceId: "42"})
	require.NoError(t, err)
	assert.Equal(t, &edtypes.ReferenceMetadata{Title: "Rapport annuel", Author: "Jeanne", CreatedAt: "2026-01-01T00:00:00Z", Excerpt: "Résumé"}, meta)

	meta, err = r.Resolve(context.Background(), &edtypes.Reference{ReferenceType: edtypes.RefDocument, ReferenceId: "7"})
	require.NoError(t, err)
	assert.Equal(t, "Contrat", meta.Title)
	assert.Equal(t, "Extrait", meta.Excerpt)

	_, err = r.Resolve(context.Background(), &edtypes.Reference{ReferenceType: edtypes.RefDocument, ReferenceId: "404"})
	assert.EqualError(t, err, "HTTP 404: Not Found")
}

func TestResolveExternalSkipsFetch(t *testing.T) {
	var calls atomic.Int32
	r := newResolver(t, func(w http.ResponseWriter, req *http.Request) {
		calls.Add(1)
	})

	meta, err := r.Resolve(context.Background(), &edtypes.Reference{ReferenceType: edtypes.RefExternal, ReferenceId: "https://example.org"})
	assert.NoError(t, err)
	assert.Nil(t, meta)
	assert.Zero(t, calls.Load())
}

func TestApply(t *testing.T) {
	ref := &edtypes.Reference{}
	Apply(ref, &edtypes.ReferenceMetadata{Title: "A"}, nil)
	assert.Equal(t, "A", ref.Metadata.Title)

	Apply(ref, nil, assert.AnError)
	assert.Equal(t, "A", ref.Metadata.Title)
	assert.Equal(t, "Service de références indisponible", ref.Error)
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "not found", err: &StatusError{Code: http.StatusNotFound, Status: "Not Found"}, want: "Référence introuvable"},
		{name: "forbidden", err: &StatusError{Code: http.StatusForbidden, Status: "Forbidden"}, want: "Accès refusé à la référence"},
		{name: "server error", err: &StatusError{Code: http.StatusBadGateway, Status: "Bad Gateway"}, want: "Erreur du serveur (HTTP 502)"},
		{name: "invalid payload", err: fmt.Errorf("%w : %w", ErrInvalidMetadata, errors.New("unexpected EOF")), want: "Métadonnées de la référence invalides"},
		{name: "deadline", err: fmt.Errorf("GET http://backend/r1 giving up after 1 attempt(s): %w", context.DeadlineExceeded), want: "Délai d'attente dépassé"},
		{name: "canceled", err: fmt.Errorf("GET http://backend/r1 giving up after 1 attempt(s): %w", context.Canceled), want: "Requête annulée"},
		{name: "transport", err: errors.New("GET http://backend/r1 giving up after 3 attempt(s)"), want: "Service de références indisponible"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Message(tt.err))
		})
	}
}

func TestApplyBackendError(t *testing.T) {
	r := newResolver(t, func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	ref := &edtypes.Reference{ReferenceType: edtypes.RefReport, ReferenceId: "r404"}

	meta, err := r.Resolve(context.Background(), ref)
	Apply(ref, meta, err)
	assert.Nil(t, ref.Metadata)
	assert.Equal(t, "Référence introuvable", ref.Error)
}

func TestResolveSharedFetchOutlivesCanceledCaller(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	r := newResolver(t, func(w http.ResponseWriter, req *http.Request) {
		if calls.Add(1) == 1 {
			close(started)
		}
		select {
		case <-release:
		case <-time.After(2 * time.Second):
		}
		w.Write([]byte(`{"title":"Rapport partagé"}`))
	})
	ref := &edtypes.Reference{ReferenceType: edtypes.RefReport, ReferenceId: "r1"}

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := r.Resolve(ctxA, ref)
		errA <- err
	}()
	<-started

	type result struct {
		meta *edtypes.ReferenceMetadata
		err  error
	}
	resB := make(chan result, 1)
	go func() {
		meta, err := r.Resolve(context.Background(), ref)
		resB <- result{meta, err}
	}()
	// второй вызов должен успеть присоединиться к общему запросу
	time.Sleep(50 * time.Millisecond)

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(release)
	res := <-resB
	require.NoError(t, res.err)
	assert.Equal(t, "Rapport partagé", res.meta.Title)
	assert.Equal(t, int32(1), calls.Load())
}

func TestResolveSharedFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	r := newResolver(t, func(w http.ResponseWriter, req *http.Request) {
		select {
		case <-release:
		case <-req.Context().Done():
		}
	})
	t.Cleanup(func() { close(release) })
	r.timeout = 50 * time.Millisecond

	_, err := r.Resolve(context.Background(), &edtypes.Reference{ReferenceType: edtypes.RefDocument, ReferenceId: "lent"})
	require.Error(t, err)
	assert.Equal(t, "Délai d'attente dépassé", Message(err))
}
