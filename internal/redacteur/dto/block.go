package dto

import (
	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
)

// Block - атрибуты блока в формате TipTap.
type Block struct {
	Id    string            `json:"id"`
	Type  edtypes.BlockType `json:"type"`
	Attrs map[string]any    `json:"attrs"`
}

type FormulaResult struct {
	Result  *float64 `json:"result" extensions:"x-nullable"`
	Display string   `json:"display"`
	Error   string   `json:"error,omitempty"`
	Code    int      `json:"code,omitempty"`
}
