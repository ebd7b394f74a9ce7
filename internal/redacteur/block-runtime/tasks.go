package blockruntime

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aisa-it/redacteur/internal/redacteur/cronmanager"
	datafetch "github.com/aisa-it/redacteur/internal/redacteur/data-fetch"
	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
	"github.com/aisa-it/redacteur/internal/redacteur/formula"
	"github.com/aisa-it/redacteur/internal/redacteur/reference"
	stack_error "github.com/aisa-it/redacteur/internal/redacteur/stack-error"
)

// mount запускает начальные действия блока. Вызывается под r.mu.
func (r *Runtime) mount(b edtypes.Block) {
	switch b := b.(type) {
	case *edtypes.DataFetch:
		r.schedule(b)
		if datafetch.Configured(b) && (b.LastFetch == nil || !b.Cache) {
			r.startFetch(b)
		}
	case *edtypes.Chart:
		if b.DataSource == edtypes.ChartAPI && b.Endpoint != "" && len(b.Data) == 0 {
			r.startChartFetch(b)
		}
	case *edtypes.Formula:
		if formula.NeedsCompute(b) {
			r.recompute(b)
		}
	case *edtypes.Reference:
		if reference.NeedsMetadata(b) && b.Metadata == nil && b.Error == "" {
			r.startResolve(b)
		}
	}
}

// unmount отменяет запросы и автообновление блока. Вызывается под r.mu.
func (r *Runtime) unmount(id string) {
	r.stop(id)
	delete(r.tasks, id)
	r.unschedule(id)
}

// begin регистрирует новый запрос блока: предыдущий запрос отменяется,
// номер последовательности увеличивается. Вызывается под r.mu.
func (r *Runtime) begin(id string) (context.Context, uint64) {
	t, ok := r.tasks[id]
	if !ok {
		t = &task{}
		r.tasks[id] = t
	}
	if t.cancel != nil {
		t.cancel()
	}
	t.seq++

	var ctx context.Context
	if r.opts.FetchTimeout > 0 {
		ctx, t.cancel = context.WithTimeout(r.ctx, r.opts.FetchTimeout)
	} else {
		ctx, t.cancel = context.WithCancel(r.ctx)
	}
	return ctx, t.seq
}

// stop отменяет текущий запрос блока, его результат будет отброшен.
func (r *Runtime) stop(id string) {
	if t, ok := r.tasks[id]; ok {
		if t.cancel != nil {
			t.cancel()
			t.cancel = nil
		}
		t.seq++
	}
}

// applyResult записывает результат запроса seq, если он последний для блока.
func (r *Runtime) applyResult(id string, seq uint64, fn func(b edtypes.Block)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return false
	}
	t, ok := r.tasks[id]
	if !ok || t.seq != seq {
		r.opts.Metrics.staleResult()
		slog.Debug("Drop stale block result", "docId", r.docId, "blockId", id, "seq", seq)
		return false
	}
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}

	b := r.doc.FindBlock(id)
	if b == nil {
		return false
	}
	fn(b)
	r.emitBlock(b)
	return true
}

func (r *Runtime) logTaskError(err error, b edtypes.Block) {
	if errors.Is(err, context.Canceled) {
		return
	}
	stack_error.GetError(nil, stack_error.TrackErrorStack(err).InBlock(r.docId.String(), b.BlockID(), string(b.BlockType())))
}

func (r *Runtime) startFetch(b *edtypes.DataFetch) {
	if r.opts.Fetcher == nil {
		return
	}
	ctx, seq := r.begin(b.ID)
	cfg := *b

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		rows, err := r.opts.Fetcher.Fetch(ctx, &cfg)
		r.opts.Metrics.fetch(edtypes.DataFetchBlock, err)
		if err != nil {
			r.logTaskError(err, &cfg)
		}
		r.applyResult(cfg.ID, seq, func(blk edtypes.Block) {
			if df, ok := blk.(*edtypes.DataFetch); ok {
				datafetch.Apply(df, rows, err, r.opts.Now())
			}
		})
	}()
}

// startChartFetch загружает данные графика с источником api. При ошибке
// прежние данные графика сохраняются.
func (r *Runtime) startChartFetch(c *edtypes.Chart) {
	if r.opts.Fetcher == nil {
		return
	}
	ctx, seq := r.begin(c.ID)
	cfg := edtypes.DataFetch{ID: c.ID, Source: edtypes.SourceAPI, Endpoint: c.Endpoint}
	chartCopy := *c

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		rows, err := r.opts.Fetcher.Fetch(ctx, &cfg)
		r.opts.Metrics.fetch(edtypes.ChartBlock, err)
		if err != nil {
			r.logTaskError(err, &chartCopy)
			// Отмена и ошибка не меняют блок, запрос только снимается с учета.
			r.applyResult(cfg.ID, seq, func(edtypes.Block) {})
			return
		}
		r.applyResult(cfg.ID, seq, func(blk edtypes.Block) {
			if ch, ok := blk.(*edtypes.Chart); ok {
				ch.Data = rows
			}
		})
	}()
}

func (r *Runtime) startResolve(ref *edtypes.Reference) {
	if r.opts.Resolver == nil {
		return
	}
	ctx, seq := r.begin(ref.ID)
	cfg := *ref

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		meta, err := r.opts.Resolver.Resolve(ctx, &cfg)
		r.opts.Metrics.fetch(edtypes.ReferenceBlock, err)
		if err != nil {
			r.logTaskError(err, &cfg)
		}
		r.applyResult(cfg.ID, seq, func(blk edtypes.Block) {
			if rb, ok := blk.(*edtypes.Reference); ok {
				reference.Apply(rb, meta, err)
			}
		})
	}()
}

// recompute пересчитывает формулу синхронно и уведомляет об изменении.
func (r *Runtime) recompute(f *edtypes.Formula) {
	err := formula.Recompute(f)
	r.opts.Metrics.formula(err)
	r.emitBlock(f)
}

func (r *Runtime) jobName(blockId string) string {
	return "refresh:" + r.docId.String() + ":" + blockId
}

// schedule (пере)планирует автообновление блока dataFetch. Вызывается под r.mu.
func (r *Runtime) schedule(b *edtypes.DataFetch) {
	if r.opts.Scheduler == nil {
		return
	}
	interval := datafetch.Interval(b)
	if interval == 0 || !datafetch.Configured(b) {
		r.unschedule(b.ID)
		return
	}

	id := b.ID
	err := r.opts.Scheduler.AddJob(r.jobName(id), cronmanager.Every(interval), func() {
		if err := r.Refresh(id); err != nil && !errors.Is(err, ErrClosed) {
			slog.Warn("Scheduled block refresh", "docId", r.docId, "blockId", id, "err", err)
		}
	})
	if err != nil {
		slog.Error("Schedule block refresh", "docId", r.docId, "blockId", id, "err", err)
		return
	}
	if _, ok := r.jobs[id]; !ok {
		r.jobs[id] = struct{}{}
		r.opts.Metrics.jobAdded()
	}
}

func (r *Runtime) unschedule(id string) {
	if _, ok := r.jobs[id]; !ok {
		return
	}
	if r.opts.Scheduler != nil {
		r.opts.Scheduler.RemoveJob(r.jobName(id))
	}
	delete(r.jobs, id)
	r.opts.Metrics.jobRemoved()
}
