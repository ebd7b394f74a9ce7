package blockruntime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aisa-it/redacteur/internal/redacteur/cronmanager"
	datafetch "github.com/aisa-it/redacteur/internal/redacteur/data-fetch"
	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
	"github.com/gofrs/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fetchReply struct {
	rows []edtypes.Row
	err  error
}

type gatedCall struct {
	ctx   context.Context
	cfg   edtypes.DataFetch
	reply chan fetchReply
}

// gatedFetcher отдает результат только по команде теста и не реагирует на отмену.
type gatedFetcher struct {
	calls chan *gatedCall
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{calls: make(chan *gatedCall, 8)}
}

func (f *gatedFetcher) Fetch(ctx context.Context, cfg *edtypes.DataFetch) ([]edtypes.Row, error) {
	c := &gatedCall{ctx: ctx, cfg: *cfg, reply: make(chan fetchReply, 1)}
	f.calls <- c
	rep := <-c.reply
	return rep.rows, rep.err
}

func (f *gatedFetcher) next(t *testing.T) *gatedCall {
	t.Helper()
	select {
	case c := <-f.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("fetch was not started")
		return nil
	}
}

type staticFetcher struct {
	rows []edtypes.Row
	err  error
}

func (f staticFetcher) Fetch(ctx context.Context, cfg *edtypes.DataFetch) ([]edtypes.Row, error) {
	return f.rows, f.err
}

type countingResolver struct {
	calls atomic.Int32
}

func (r *countingResolver) Resolve(ctx context.Context, ref *edtypes.Reference) (*edtypes.ReferenceMetadata, error) {
	r.calls.Add(1)
	return &edtypes.ReferenceMetadata{Title: "Rapport " + ref.ReferenceId}, nil
}

type fakeScheduler struct {
	mu   sync.Mutex
	jobs map[string]string
	fns  map[string]cronmanager.CronJobFunc
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{jobs: map[string]string{}, fns: map[string]cronmanager.CronJobFunc{}}
}

func (s *fakeScheduler) AddJob(name, schedule string, fn cronmanager.CronJobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[name] = schedule
	s.fns[name] = fn
	return nil
}

func (s *fakeScheduler) RemoveJob(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, name)
	delete(s.fns, name)
}

func (s *fakeScheduler) schedules() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make(map[string]string, len(s.jobs))
	for k, v := range s.jobs {
		res[k] = v
	}
	return res
}

func (s *fakeScheduler) run(name string) {
	s.mu.Lock()
	fn := s.fns[name]
	s.mu.Unlock()
	fn()
}

func cachedDataFetch() *edtypes.DataFetch {
	last := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &edtypes.DataFetch{
		ID:        "df1",
		Source:    edtypes.SourceAPI,
		Endpoint:  "/api/ventes",
		Cache:     true,
		DisplayAs: edtypes.DisplayTable,
		Data:      []edtypes.Row{{"v": 0.0}},
		LastFetch: &last,
	}
}

func TestFormulaCommands(t *testing.T) {
	m := NewMetrics(nil)
	rt := Open(uuid.Must(uuid.NewV4()), nil, Options{Metrics: m})
	defer rt.Close()

	b, err := rt.Execute(Command{
		Command: "insertFormula",
		Attrs:   json.RawMessage(`{"formula":"A+B","variables":{"A":2,"B":3}}`),
	})
	require.NoError(t, err)
	f := b.(*edtypes.Formula)
	require.NotNil(t, f.Result)
	assert.Equal(t, 5.0, *f.Result)

	// Ошибка не затирает прежний результат
	b, err = rt.Execute(Command{Command: CommandUpdate, BlockId: f.ID, Attrs: json.RawMessage(`{"formula":"A+$"}`)})
	require.NoError(t, err)
	f = b.(*edtypes.Formula)
	assert.Equal(t, "Formule invalide : caractères non autorisés", f.Error)
	require.NotNil(t, f.Result)
	assert.Equal(t, 5.0, *f.Result)

	// Производные атрибуты клиента игнорируются
	b, err = rt.Configure(f.ID, json.RawMessage(`{"formula":"A*B","result":42}`))
	require.NoError(t, err)
	assert.Equal(t, 6.0, *b.(*edtypes.Formula).Result)
	assert.Empty(t, b.(*edtypes.Formula).Error)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.formulas.WithLabelValues("error")))
}

func TestConfigureRejectsInvalidAttrs(t *testing.T) {
	rt := Open(uuid.Must(uuid.NewV4()), nil, Options{})
	defer rt.Close()

	b, err := rt.Insert(edtypes.ChartBlock, -1, nil, 0)
	require.NoError(t, err)

	_, err = rt.Configure(b.BlockID(), json.RawMessage(`{"chartType":"radar"}`))
	assert.Error(t, err)

	_, err = rt.Configure("missing", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, ErrBlockNotFound)
}

func TestLastStartedRequestWins(t *testing.T) {
	fetcher := newGatedFetcher()
	m := NewMetrics(nil)
	doc := &edtypes.Document{Elements: []any{cachedDataFetch()}}
	rt := Open(uuid.Must(uuid.NewV4()), doc, Options{Fetcher: fetcher, Metrics: m})
	defer rt.Close()

	require.NoError(t, rt.Refresh("df1"))
	first := fetcher.next(t)
	require.NoError(t, rt.Refresh("df1"))
	second := fetcher.next(t)

	assert.Error(t, first.ctx.Err(), "the older request is cancelled")

	second.reply <- fetchReply{rows: []edtypes.Row{{"v": 2.0}}}
	require.Eventually(t, func() bool {
		b, _ := rt.Block("df1")
		return b.(*edtypes.DataFetch).Data[0]["v"] == 2.0
	}, 2*time.Second, 10*time.Millisecond)

	first.reply <- fetchReply{rows: []edtypes.Row{{"v": 1.0}}}
	rt.Wait()

	b, err := rt.Block("df1")
	require.NoError(t, err)
	df := b.(*edtypes.DataFetch)
	assert.Equal(t, []edtypes.Row{{"v": 2.0}}, df.Data)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stale))
}

func TestFetchErrorKeepsData(t *testing.T) {
	doc := &edtypes.Document{Elements: []any{cachedDataFetch()}}
	fetcher := staticFetcher{err: &datafetch.StatusError{Code: 500, Status: "Internal Server Error"}}
	rt := Open(uuid.Must(uuid.NewV4()), doc, Options{Fetcher: fetcher})
	defer rt.Close()

	require.NoError(t, rt.Refresh("df1"))
	rt.Wait()

	b, err := rt.Block("df1")
	require.NoError(t, err)
	df := b.(*edtypes.DataFetch)
	assert.Equal(t, "HTTP 500: Internal Server Error", df.Error)
	assert.Equal(t, []edtypes.Row{{"v": 0.0}}, df.Data)
}

func TestRefreshScheduling(t *testing.T) {
	fetcher := newGatedFetcher()
	sched := newFakeScheduler()
	m := NewMetrics(nil)
	df := cachedDataFetch()
	df.Refresh = 5
	docId := uuid.Must(uuid.NewV4())

	rt := Open(docId, &edtypes.Document{Elements: []any{df}}, Options{Fetcher: fetcher, Scheduler: sched, Metrics: m})
	defer rt.Close()

	job := "refresh:" + docId.String() + ":df1"
	assert.Equal(t, map[string]string{job: "@every 5m0s"}, sched.schedules())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobs))

	// Плановое обновление
	go sched.run(job)
	call := fetcher.next(t)
	assert.Equal(t, "/api/ventes", call.cfg.Endpoint)

	// Удаление блока отменяет запрос и задачу
	require.NoError(t, rt.Delete("df1"))
	assert.Error(t, call.ctx.Err())
	assert.Empty(t, sched.schedules())
	assert.Equal(t, 0.0, testutil.ToFloat64(m.jobs))

	call.reply <- fetchReply{rows: []edtypes.Row{{"v": 9.0}}}
	rt.Wait()
	_, err := rt.Block("df1")
	assert.ErrorIs(t, err, ErrBlockNotFound)
}

func TestConfigureDataFetchSourceChange(t *testing.T) {
	fetcher := newGatedFetcher()
	sched := newFakeScheduler()
	rt := Open(uuid.Must(uuid.NewV4()), &edtypes.Document{Elements: []any{cachedDataFetch()}},
		Options{Fetcher: fetcher, Scheduler: sched})
	defer rt.Close()

	b, err := rt.Configure("df1", json.RawMessage(`{"displayAs":"cards","refresh":1}`))
	require.NoError(t, err)
	assert.Len(t, b.(*edtypes.DataFetch).Data, 1, "same source keeps data")
	assert.Len(t, sched.schedules(), 1)

	b, err = rt.Configure("df1", json.RawMessage(`{"endpoint":"/api/achats","data":[{"x":1}]}`))
	require.NoError(t, err)
	assert.Empty(t, b.(*edtypes.DataFetch).Data)
	assert.Nil(t, b.(*edtypes.DataFetch).LastFetch)

	call := fetcher.next(t)
	assert.Equal(t, "/api/achats", call.cfg.Endpoint)
	call.reply <- fetchReply{rows: []edtypes.Row{{"x": 3.0}}}
	rt.Wait()

	b, err = rt.Block("df1")
	require.NoError(t, err)
	assert.Equal(t, []edtypes.Row{{"x": 3.0}}, b.(*edtypes.DataFetch).Data)
	assert.NotNil(t, b.(*edtypes.DataFetch).LastFetch)
}

func TestReferenceTypeSwitch(t *testing.T) {
	resolver := &countingResolver{}
	ref := &edtypes.Reference{ID: "r1", ReferenceType: edtypes.RefReport, ReferenceId: "42", DisplayAs: edtypes.RefCard}
	rt := Open(uuid.Must(uuid.NewV4()), &edtypes.Document{Elements: []any{ref}}, Options{Resolver: resolver})
	defer rt.Close()
	rt.Wait()

	b, err := rt.Block("r1")
	require.NoError(t, err)
	require.NotNil(t, b.(*edtypes.Reference).Metadata)
	assert.Equal(t, "Rapport 42", b.(*edtypes.Reference).Metadata.Title)
	assert.EqualValues(t, 1, resolver.calls.Load())

	b, err = rt.Configure("r1", json.RawMessage(`{"referenceType":"external","referenceId":"https://example.org"}`))
	require.NoError(t, err)
	rt.Wait()
	assert.Nil(t, b.(*edtypes.Reference).Metadata)
	assert.EqualValues(t, 1, resolver.calls.Load())
	assert.ErrorIs(t, rt.Refresh("r1"), ErrNotRefreshable)
}

func TestChartCommands(t *testing.T) {
	rt := Open(uuid.Must(uuid.NewV4()), nil, Options{})
	defer rt.Close()

	b, err := rt.Execute(Command{Command: "insertChart"})
	require.NoError(t, err)
	id := b.BlockID()

	b, err = rt.Execute(Command{Command: CommandEditChartData, BlockId: id, Attrs: json.RawMessage(`{"data":"{not valid}"}`)})
	require.NoError(t, err)
	assert.Len(t, b.(*edtypes.Chart).Data, 3)

	b, err = rt.Execute(Command{Command: CommandEditChartData, BlockId: id, Attrs: json.RawMessage(`{"data":"[{\"name\":\"Jan\",\"value\":400}]"}`)})
	require.NoError(t, err)
	assert.Equal(t, []edtypes.Row{{"name": "Jan", "value": 400.0}}, b.(*edtypes.Chart).Data)
}

func TestChartAPISource(t *testing.T) {
	rt := Open(uuid.Must(uuid.NewV4()), nil, Options{Fetcher: staticFetcher{rows: []edtypes.Row{{"name": "T1", "value": 10.0}}}})
	defer rt.Close()

	b, err := rt.Execute(Command{Command: "insertChart", Attrs: json.RawMessage(`{"dataSource":"api","endpoint":"/api/stats"}`)})
	require.NoError(t, err)
	rt.Wait()

	b, err = rt.Block(b.BlockID())
	require.NoError(t, err)
	assert.Equal(t, []edtypes.Row{{"name": "T1", "value": 10.0}}, b.(*edtypes.Chart).Data)
}

func TestInsertVariable(t *testing.T) {
	doc := &edtypes.Document{Elements: []any{
		&edtypes.Paragraph{Content: []any{edtypes.Text{Content: "Fait le "}}},
	}}
	rt := Open(uuid.Must(uuid.NewV4()), doc, Options{})
	defer rt.Close()

	b, err := rt.Execute(Command{Command: "insertVariable", Path: edtypes.Path{0}, Offset: 8})
	require.NoError(t, err)
	assert.Equal(t, edtypes.VariableBlock, b.BlockType())

	_, err = rt.Execute(Command{Command: "insertVariable", Path: edtypes.Path{5}})
	assert.ErrorIs(t, err, ErrBadPosition)

	pos := 0
	_, err = rt.Execute(Command{Command: "insertVariable", Position: &pos})
	require.NoError(t, err)

	snap, err := rt.Snapshot()
	require.NoError(t, err)
	require.Len(t, snap.Elements, 2)
	assert.Len(t, snap.Blocks(), 2)

	_, err = rt.Execute(Command{Command: "insertTimeline"})
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestOnChangeContentForStorage(t *testing.T) {
	events := make(chan Event, 16)
	df := cachedDataFetch()
	df.Cache = false
	rt := Open(uuid.Must(uuid.NewV4()), &edtypes.Document{Elements: []any{df}}, Options{
		Fetcher:  staticFetcher{rows: []edtypes.Row{{"v": 7.0}}},
		OnChange: func(ev Event) { events <- ev },
	})
	rt.Wait()
	rt.Close()
	close(events)

	var last Event
	for ev := range events {
		last = ev
	}
	require.Equal(t, EventBlock, last.Kind)
	assert.Equal(t, "df1", last.BlockId)
	assert.Equal(t, []any{map[string]any{"v": 7.0}}, last.Attrs["data"])
	assert.NotContains(t, string(last.Content), `"v":7`)
}

func TestClose(t *testing.T) {
	rt := Open(uuid.Must(uuid.NewV4()), nil, Options{})
	rt.Close()
	rt.Close()

	_, err := rt.Insert(edtypes.FormulaBlock, -1, nil, 0)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, rt.Refresh("x"), ErrClosed)
}

func TestManager(t *testing.T) {
	var loads atomic.Int32
	m := NewManager(Options{}, func(ctx context.Context, docId uuid.UUID) (*edtypes.Document, error) {
		loads.Add(1)
		if docId.IsNil() {
			return nil, errors.New("not found")
		}
		return &edtypes.Document{}, nil
	})

	id := uuid.Must(uuid.NewV4())
	a, err := m.Get(context.Background(), id)
	require.NoError(t, err)
	b, err := m.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.EqualValues(t, 1, loads.Load())

	_, err = m.Get(context.Background(), uuid.Nil)
	assert.Error(t, err)

	m.CloseDoc(id)
	_, ok := m.Lookup(id)
	assert.False(t, ok)
	assert.ErrorIs(t, a.Refresh("x"), ErrClosed)

	m.Close()
	_, err = m.Get(context.Background(), id)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestReplaceKeepsDerivedAttrs(t *testing.T) {
	signedAt := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	sig := &edtypes.Signature{ID: "s1", Signatory: "Jeanne", Signature: "data:image/png;base64,AAAA", SignedAt: &signedAt, IPAddress: "10.0.0.1"}
	rt := Open(uuid.Must(uuid.NewV4()), &edtypes.Document{Elements: []any{sig}}, Options{})
	defer rt.Close()

	forgedAt := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	next := &edtypes.Document{Elements: []any{
		&edtypes.Signature{ID: "s1", Signatory: "Jeanne Martin", Signature: "data:image/png;base64,BBBB", SignedAt: &forgedAt},
		&edtypes.Signature{ID: "s2", Signatory: "Paul", Signature: "data:image/png;base64,CCCC", SignedAt: &forgedAt},
		&edtypes.Formula{ID: "f1", Formula: "2*3", Variables: map[string]float64{}, Result: ptr(999.0)},
	}}
	require.NoError(t, rt.Replace(next))

	b, err := rt.Block("s1")
	require.NoError(t, err)
	kept := b.(*edtypes.Signature)
	assert.Equal(t, "Jeanne Martin", kept.Signatory)
	assert.Equal(t, "data:image/png;base64,AAAA", kept.Signature)
	require.NotNil(t, kept.SignedAt)
	assert.True(t, signedAt.Equal(*kept.SignedAt))

	b, err = rt.Block("s2")
	require.NoError(t, err)
	assert.False(t, b.(*edtypes.Signature).Signed())

	b, err = rt.Block("f1")
	require.NoError(t, err)
	require.NotNil(t, b.(*edtypes.Formula).Result)
	assert.Equal(t, 6.0, *b.(*edtypes.Formula).Result)
}

func TestStripDerived(t *testing.T) {
	doc := &edtypes.Document{Elements: []any{cachedDataFetch()}}
	StripDerived(doc)

	df := doc.FindBlock("df1").(*edtypes.DataFetch)
	assert.Empty(t, df.Data)
	assert.NotNil(t, df.Data)
	assert.Nil(t, df.LastFetch)
	assert.Equal(t, "/api/ventes", df.Endpoint)
}

func ptr[T any](v T) *T { return &v }
