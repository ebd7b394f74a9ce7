package blockruntime

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/aisa-it/redacteur/internal/redacteur/blocks"
	"github.com/aisa-it/redacteur/internal/redacteur/chart"
	datafetch "github.com/aisa-it/redacteur/internal/redacteur/data-fetch"
	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
	"github.com/aisa-it/redacteur/internal/redacteur/editor/tiptap"
	"github.com/aisa-it/redacteur/internal/redacteur/reference"
)

const (
	CommandUpdate        = "updateBlock"
	CommandDelete        = "deleteBlock"
	CommandRefresh       = "refreshBlock"
	CommandEditChartData = "editChartData"
)

// Command - команда редактора. Команды вставки берутся из каталога блоков
// (insertDataFetch, insertChart, ...).
type Command struct {
	Command string `json:"command" validate:"required"`

	// Позиция узла верхнего уровня, nil - в конец документа.
	Position *int `json:"position,omitempty"`
	// Для строчных блоков: контейнер и смещение в рунах.
	Path   edtypes.Path `json:"path,omitempty"`
	Offset int          `json:"offset,omitempty"`

	BlockId string          `json:"blockId,omitempty"`
	Attrs   json.RawMessage `json:"attrs,omitempty"`
}

// derivedAttrs - атрибуты, которые записывает только runtime блока.
var derivedAttrs = map[edtypes.BlockType][]string{
	edtypes.DataFetchBlock: {"data", "lastFetch", "error"},
	edtypes.FormulaBlock:   {"result", "error"},
	edtypes.ReferenceBlock: {"metadata", "error"},
	edtypes.SignatureBlock: {"signature", "signedAt", "ipAddress", "assetId"},
}

// Execute выполняет команду редактора и возвращает копию затронутого блока
// (nil для удаления).
func (r *Runtime) Execute(cmd Command) (edtypes.Block, error) {
	switch cmd.Command {
	case CommandUpdate:
		return r.Configure(cmd.BlockId, cmd.Attrs)
	case CommandDelete:
		return nil, r.Delete(cmd.BlockId)
	case CommandRefresh:
		if err := r.Refresh(cmd.BlockId); err != nil {
			return nil, err
		}
		return r.Block(cmd.BlockId)
	case CommandEditChartData:
		var payload struct {
			Data string `json:"data"`
		}
		if err := json.Unmarshal(cmd.Attrs, &payload); err != nil {
			return nil, fmt.Errorf("%w: %v", blocks.ErrInvalidAttrs, err)
		}
		return r.Update(cmd.BlockId, func(b edtypes.Block) error {
			c, ok := b.(*edtypes.Chart)
			if !ok {
				return fmt.Errorf("%w: %s is not a chart", blocks.ErrInvalidAttrs, b.BlockID())
			}
			chart.EditData(c, payload.Data)
			return nil
		})
	}

	entry, ok := blocks.LookupCommand(cmd.Command)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Command)
	}
	pos := -1
	if cmd.Position != nil {
		pos = *cmd.Position
	}
	b, err := r.Insert(entry.Type, pos, cmd.Path, cmd.Offset)
	if err != nil {
		return nil, err
	}
	if len(cmd.Attrs) > 0 {
		return r.Configure(b.BlockID(), cmd.Attrs)
	}
	return b, nil
}

// Insert создает блок со значениями по умолчанию. Строчный блок вставляется
// в контейнер path, без path - в новый параграф на позиции pos.
func (r *Runtime) Insert(t edtypes.BlockType, pos int, path edtypes.Path, offset int) (edtypes.Block, error) {
	b, err := blocks.New(t)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}

	switch {
	case edtypes.IsInline(t) && path != nil:
		if !r.doc.InsertInline(path, offset, b) {
			return nil, ErrBadPosition
		}
	case edtypes.IsInline(t):
		r.doc.Insert(pos, &edtypes.Paragraph{Content: []any{b}})
	default:
		r.doc.Insert(pos, b)
	}

	r.emit(Event{Kind: EventDocument, BlockId: b.BlockID(), BlockType: t})
	r.mount(b)
	return cloneBlock(b), nil
}

// Configure применяет частичное изменение атрибутов блока. Производные
// атрибуты из patch игнорируются. Устаревшие производные значения сбрасываются,
// побочные действия блока запускаются заново.
func (r *Runtime) Configure(id string, patch json.RawMessage) (edtypes.Block, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}

	cur := r.doc.FindBlock(id)
	if cur == nil {
		return nil, ErrBlockNotFound
	}
	t := cur.BlockType()

	attrs, err := tiptap.BlockAttrs(cur)
	if err != nil {
		return nil, err
	}
	changes := make(map[string]any)
	if len(patch) > 0 {
		if err := json.Unmarshal(patch, &changes); err != nil {
			return nil, fmt.Errorf("%w: %v", blocks.ErrInvalidAttrs, err)
		}
	}
	delete(changes, "id")
	for _, k := range derivedAttrs[t] {
		delete(changes, k)
	}
	maps.Copy(attrs, changes)

	raw, err := json.Marshal(attrs)
	if err != nil {
		return nil, err
	}
	nb, err := blocks.Decode(t, raw)
	if err != nil {
		return nil, err
	}

	switch old := cur.(type) {
	case *edtypes.DataFetch:
		next := nb.(*edtypes.DataFetch)
		sameSource := datafetch.SameSource(old, next)
		if !sameSource {
			next.Data = make([]edtypes.Row, 0)
			next.LastFetch = nil
			next.Error = ""
		}
		r.doc.ReplaceBlock(next)
		r.schedule(next)
		if !sameSource {
			if datafetch.Configured(next) {
				r.startFetch(next)
			} else {
				r.stop(id)
			}
		}
		r.emitBlock(next)
		return cloneBlock(next), nil

	case *edtypes.Chart:
		next := nb.(*edtypes.Chart)
		r.doc.ReplaceBlock(next)
		if next.DataSource != old.DataSource || next.Endpoint != old.Endpoint {
			if next.DataSource == edtypes.ChartAPI && next.Endpoint != "" {
				r.startChartFetch(next)
			} else {
				r.stop(id)
			}
		}
		r.emitBlock(next)
		return cloneBlock(next), nil

	case *edtypes.Formula:
		next := nb.(*edtypes.Formula)
		r.doc.ReplaceBlock(next)
		r.recompute(next)
		return cloneBlock(next), nil

	case *edtypes.Reference:
		if reference.Configure(old, nb.(*edtypes.Reference)) {
			r.startResolve(old)
		} else if !reference.NeedsMetadata(old) {
			r.stop(id)
		}
		r.emitBlock(old)
		return cloneBlock(old), nil

	default:
		r.doc.ReplaceBlock(nb)
		r.emitBlock(nb)
		return cloneBlock(nb), nil
	}
}

// Delete удаляет блок, отменяет его запросы и автообновление.
func (r *Runtime) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}

	b := r.doc.FindBlock(id)
	if b == nil || !r.doc.RemoveBlock(id) {
		return ErrBlockNotFound
	}
	r.unmount(id)
	r.emit(Event{Kind: EventBlockRemoved, BlockId: id, BlockType: b.BlockType()})
	return nil
}

// Refresh запускает повторную загрузку блока. Ручное и плановое обновление
// не блокируют друг друга: выигрывает последний запущенный запрос.
func (r *Runtime) Refresh(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}

	switch b := r.doc.FindBlock(id).(type) {
	case nil:
		return ErrBlockNotFound
	case *edtypes.DataFetch:
		r.startFetch(b)
	case *edtypes.Reference:
		if !reference.NeedsMetadata(b) {
			return ErrNotRefreshable
		}
		r.startResolve(b)
	case *edtypes.Chart:
		if b.DataSource != edtypes.ChartAPI || b.Endpoint == "" {
			return ErrNotRefreshable
		}
		r.startChartFetch(b)
	case *edtypes.Formula:
		r.recompute(b)
	default:
		return ErrNotRefreshable
	}
	return nil
}

// Update изменяет блок функцией fn под блокировкой документа.
func (r *Runtime) Update(id string, fn func(b edtypes.Block) error) (edtypes.Block, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}

	b := r.doc.FindBlock(id)
	if b == nil {
		return nil, ErrBlockNotFound
	}
	if err := fn(b); err != nil {
		return nil, err
	}
	r.emitBlock(b)
	return cloneBlock(b), nil
}

// Mutate изменяет текст документа (отметки комментариев). Блоки добавлять
// и удалять через Mutate нельзя, для этого есть Replace и команды.
func (r *Runtime) Mutate(fn func(doc *edtypes.Document) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	if err := fn(r.doc); err != nil {
		return err
	}
	r.emit(Event{Kind: EventDocument})
	return nil
}

// Replace заменяет содержимое документа целиком. Для удаленных блоков
// запросы отменяются, для новых и перенастроенных запускаются.
func (r *Runtime) Replace(doc *edtypes.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}

	prev := make(map[string]edtypes.Block)
	for _, b := range r.doc.Blocks() {
		prev[b.BlockID()] = b
	}
	r.doc = doc

	for _, b := range doc.Blocks() {
		old, ok := prev[b.BlockID()]
		delete(prev, b.BlockID())
		if !ok || old.BlockType() != b.BlockType() {
			if ok {
				r.unmount(b.BlockID())
			}
			r.mount(resetDerived(doc, b, nil))
			continue
		}

		// Производные значения берутся только из текущего состояния runtime
		switch cur := b.(type) {
		case *edtypes.Formula:
			b = resetDerived(doc, b, nil)
		case *edtypes.DataFetch:
			if datafetch.SameSource(old.(*edtypes.DataFetch), cur) {
				b = resetDerived(doc, b, old)
			} else {
				b = resetDerived(doc, b, nil)
			}
		default:
			b = resetDerived(doc, b, old)
		}

		switch b := b.(type) {
		case *edtypes.DataFetch:
			o := old.(*edtypes.DataFetch)
			r.schedule(b)
			if !datafetch.SameSource(o, b) && datafetch.Configured(b) {
				r.startFetch(b)
			}
		case *edtypes.Formula:
			r.recompute(b)
		case *edtypes.Reference:
			o := *old.(*edtypes.Reference)
			next := *b
			refetch := reference.Configure(&o, &next)
			*b = o
			if refetch {
				r.startResolve(b)
			}
		}
	}
	for id := range prev {
		r.unmount(id)
	}

	r.emit(Event{Kind: EventDocument})
	return nil
}

// StripDerived сбрасывает производные атрибуты всех блоков документа,
// пришедшего от клиента. Значения заново вычисляются при открытии runtime.
func StripDerived(doc *edtypes.Document) {
	for _, b := range doc.Blocks() {
		resetDerived(doc, b, nil)
	}
}

// resetDerived копирует производные атрибуты блока из from или удаляет их,
// если from = nil, и заменяет блок в документе. Возвращает новый блок.
func resetDerived(doc *edtypes.Document, b edtypes.Block, from edtypes.Block) edtypes.Block {
	keys := derivedAttrs[b.BlockType()]
	if len(keys) == 0 {
		return b
	}

	attrs, err := tiptap.BlockAttrs(b)
	if err != nil {
		return b
	}
	var src map[string]any
	if from != nil {
		if src, err = tiptap.BlockAttrs(from); err != nil {
			return b
		}
	}
	for _, k := range keys {
		if v, ok := src[k]; ok {
			attrs[k] = v
		} else {
			delete(attrs, k)
		}
	}

	raw, err := json.Marshal(attrs)
	if err != nil {
		return b
	}
	nb := edtypes.NewBlock(b.BlockType())
	if err := json.Unmarshal(raw, nb); err != nil {
		return b
	}
	if df, ok := nb.(*edtypes.DataFetch); ok && df.Data == nil {
		df.Data = make([]edtypes.Row, 0)
	}
	doc.ReplaceBlock(nb)
	return nb
}
