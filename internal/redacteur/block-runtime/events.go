package blockruntime

import (
	"encoding/json"

	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
	"github.com/gofrs/uuid"
)

type EventKind string

const (
	// Изменились атрибуты блока (результат загрузки, пересчет, настройка).
	EventBlock EventKind = "block"
	// Блок удален из документа.
	EventBlockRemoved EventKind = "blockRemoved"
	// Изменилась структура документа.
	EventDocument EventKind = "document"
)

// Event - уведомление об изменении документа. Content - содержимое для
// сохранения в TipTap JSON (данные блоков без cache не включаются).
type Event struct {
	DocId     uuid.UUID         `json:"docId"`
	Kind      EventKind         `json:"type"`
	BlockId   string            `json:"blockId,omitempty"`
	BlockType edtypes.BlockType `json:"blockType,omitempty"`
	Attrs     map[string]any    `json:"attrs,omitempty"`

	Content json.RawMessage `json:"-"`
}
