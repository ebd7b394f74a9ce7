// Пакет tiptap разбирает и сериализует JSON-контент редактора TipTap.
// Преобразует дерево TipTap в структуры пакета edtypes и обратно.
package tiptap

import "github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"

func init() {
	edtypes.TipTapParser = ParseJSON
	edtypes.TipTapSerializer = Serialize
}

// TipTapDocument представляет корневой документ TipTap.
type TipTapDocument struct {
	Type    string       `json:"type"`
	Content []TipTapNode `json:"content,omitempty"`
}

// TipTapNode представляет узел в дереве документа TipTap.
type TipTapNode struct {
	Type    string                 `json:"type"`
	Attrs   map[string]interface{} `json:"attrs,omitempty"`
	Content []TipTapNode           `json:"content,omitempty"`
	Marks   []TipTapMark           `json:"marks,omitempty"`
	Text    string                 `json:"text,omitempty"`
}

// TipTapMark представляет отметку текста (bold, link, comment и т.д.).
type TipTapMark struct {
	Type  string                 `json:"type"`
	Attrs map[string]interface{} `json:"attrs,omitempty"`
}
