// Пакет blockruntime исполняет пользовательские блоки документа на сервере.
//
// Runtime владеет деревом одного документа. Все изменения дерева проходят
// через его методы под одной блокировкой. Загрузки данных, метаданных ссылок
// и данных графиков выполняются в отдельных горутинах. Результат записывается
// только если с момента старта запроса для блока не был запущен более новый
// запрос (последний запущенный запрос определяет состояние блока).
package blockruntime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aisa-it/redacteur/internal/redacteur/cronmanager"
	datafetch "github.com/aisa-it/redacteur/internal/redacteur/data-fetch"
	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
	"github.com/aisa-it/redacteur/internal/redacteur/editor/tiptap"
	"github.com/gofrs/uuid"
)

var (
	ErrClosed         = errors.New("document runtime is closed")
	ErrBlockNotFound  = errors.New("block not found")
	ErrNotRefreshable = errors.New("block has nothing to refresh")
	ErrBadPosition    = errors.New("invalid insert position")
	ErrUnknownCommand = errors.New("unknown editor command")
)

// Fetcher загружает строки для блока dataFetch.
type Fetcher interface {
	Fetch(ctx context.Context, cfg *edtypes.DataFetch) ([]edtypes.Row, error)
}

// Resolver загружает метаданные для блока reference.
type Resolver interface {
	Resolve(ctx context.Context, ref *edtypes.Reference) (*edtypes.ReferenceMetadata, error)
}

// Scheduler планирует периодическое обновление блоков.
type Scheduler interface {
	AddJob(name, schedule string, fn cronmanager.CronJobFunc) error
	RemoveJob(name string)
}

type Options struct {
	Fetcher   Fetcher
	Resolver  Resolver
	Scheduler Scheduler
	Metrics   *Metrics

	// Таймаут одной загрузки, 0 - без таймаута.
	FetchTimeout time.Duration

	// OnChange вызывается последовательно из отдельной горутины в порядке изменений.
	// Из OnChange нельзя вызывать методы Runtime, изменяющие документ синхронно.
	OnChange func(Event)

	Now func() time.Time
}

type task struct {
	seq    uint64
	cancel context.CancelFunc
}

type Runtime struct {
	docId uuid.UUID
	opts  Options

	mu     sync.Mutex
	doc    *edtypes.Document
	tasks  map[string]*task
	jobs   map[string]struct{}
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	events chan Event
	done   chan struct{}
}

// Open создает runtime документа и запускает начальные действия блоков:
// пересчет формул без результата, загрузку данных и метаданных, автообновление.
func Open(docId uuid.UUID, doc *edtypes.Document, opts Options) *Runtime {
	if doc == nil {
		doc = &edtypes.Document{Elements: make([]any, 0)}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &Runtime{
		docId:  docId,
		opts:   opts,
		doc:    doc,
		tasks:  make(map[string]*task),
		jobs:   make(map[string]struct{}),
		ctx:    ctx,
		cancel: cancel,
		events: make(chan Event, 64),
		done:   make(chan struct{}),
	}
	go r.dispatch()

	r.mu.Lock()
	for _, b := range r.doc.Blocks() {
		r.mount(b)
	}
	r.mu.Unlock()

	return r
}

func (r *Runtime) DocId() uuid.UUID {
	return r.docId
}

func (r *Runtime) dispatch() {
	defer close(r.done)
	for ev := range r.events {
		if r.opts.OnChange != nil {
			r.opts.OnChange(ev)
		}
	}
}

// Close отменяет все запросы и задачи обновления и ждет завершения горутин.
func (r *Runtime) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	for id := range r.jobs {
		r.unschedule(id)
	}
	for id, t := range r.tasks {
		if t.cancel != nil {
			t.cancel()
		}
		delete(r.tasks, id)
	}
	r.cancel()
	r.mu.Unlock()

	r.wg.Wait()
	close(r.events)
	<-r.done
}

// Wait ждет завершения запущенных загрузок.
func (r *Runtime) Wait() {
	r.wg.Wait()
}

// Content возвращает полное содержимое документа в TipTap JSON.
func (r *Runtime) Content() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return tiptap.Serialize(r.doc)
}

// Snapshot возвращает независимую копию документа.
func (r *Runtime) Snapshot() (*edtypes.Document, error) {
	raw, err := r.Content()
	if err != nil {
		return nil, err
	}
	var doc edtypes.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Block возвращает копию блока.
func (r *Runtime) Block(id string) (edtypes.Block, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := r.doc.FindBlock(id)
	if b == nil {
		return nil, ErrBlockNotFound
	}
	return cloneBlock(b), nil
}

// storageContent сериализует документ для хранения: данные dataFetch без cache отбрасываются.
func (r *Runtime) storageContent() ([]byte, error) {
	d := edtypes.Document{Elements: make([]any, len(r.doc.Elements))}
	for i, el := range r.doc.Elements {
		if df, ok := el.(*edtypes.DataFetch); ok {
			d.Elements[i] = datafetch.ForStorage(df)
			continue
		}
		d.Elements[i] = el
	}
	return tiptap.Serialize(&d)
}

// emit ставит событие в очередь. Вызывается под r.mu.
func (r *Runtime) emit(ev Event) {
	if r.closed {
		return
	}
	ev.DocId = r.docId
	content, err := r.storageContent()
	if err != nil {
		slog.Error("Serialize document content", "docId", r.docId, "err", err)
	} else {
		ev.Content = content
	}
	r.events <- ev
}

func (r *Runtime) emitBlock(b edtypes.Block) {
	attrs, err := tiptap.BlockAttrs(b)
	if err != nil {
		slog.Error("Serialize block attrs", "docId", r.docId, "blockId", b.BlockID(), "err", err)
	}
	r.emit(Event{Kind: EventBlock, BlockId: b.BlockID(), BlockType: b.BlockType(), Attrs: attrs})
}

func cloneBlock(b edtypes.Block) edtypes.Block {
	raw, err := json.Marshal(b)
	if err != nil {
		return nil
	}
	c := edtypes.NewBlock(b.BlockType())
	if err := json.Unmarshal(raw, c); err != nil {
		return nil
	}
	return c
}
