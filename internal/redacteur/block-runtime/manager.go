package blockruntime

import (
	"context"
	"sync"

	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
	"github.com/gofrs/uuid"
)

// Loader загружает документ для открытия runtime.
type Loader func(ctx context.Context, docId uuid.UUID) (*edtypes.Document, error)

// Manager открывает по одному Runtime на документ по требованию.
type Manager struct {
	opts Options
	load Loader

	mu       sync.Mutex
	runtimes map[uuid.UUID]*Runtime
	closed   bool
}

func NewManager(opts Options, load Loader) *Manager {
	return &Manager{
		opts:     opts,
		load:     load,
		runtimes: make(map[uuid.UUID]*Runtime),
	}
}

// Get возвращает runtime документа, открывая его при необходимости.
func (m *Manager) Get(ctx context.Context, docId uuid.UUID) (*Runtime, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	if r, ok := m.runtimes[docId]; ok {
		return r, nil
	}

	doc, err := m.load(ctx, docId)
	if err != nil {
		return nil, err
	}
	r := Open(docId, doc, m.opts)
	m.runtimes[docId] = r
	return r, nil
}

// Lookup возвращает уже открытый runtime.
func (m *Manager) Lookup(docId uuid.UUID) (*Runtime, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runtimes[docId]
	return r, ok
}

// CloseDoc закрывает runtime документа (удаление документа).
func (m *Manager) CloseDoc(docId uuid.UUID) {
	m.mu.Lock()
	r, ok := m.runtimes[docId]
	delete(m.runtimes, docId)
	m.mu.Unlock()

	if ok {
		r.Close()
	}
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.runtimes)
}

// Close закрывает все открытые runtime.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	list := make([]*Runtime, 0, len(m.runtimes))
	for id, r := range m.runtimes {
		list = append(list, r)
		delete(m.runtimes, id)
	}
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, r := range list {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Close()
		}()
	}
	wg.Wait()
}
