package tiptap

import (
	"encoding/json"
	"log/slog"

	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
)

// parseBlock переносит атрибуты ноды пользовательского блока в типизированную структуру.
// Атрибуты проходят через JSON, поэтому имена полей совпадают с json-тегами edtypes.
func parseBlock(node TipTapNode) edtypes.Block {
	b := edtypes.NewBlock(edtypes.BlockType(node.Type))
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(node.Attrs)
	if err != nil {
		slog.Warn("Marshal block attrs", "type", node.Type, "err", err)
		return nil
	}
	if err := json.Unmarshal(raw, b); err != nil {
		slog.Warn("Unmarshal block attrs", "type", node.Type, "err", err)
		return nil
	}
	return b
}

// serializeBlock переносит атрибуты блока в ноду TipTap.
func serializeBlock(b edtypes.Block) *TipTapNode {
	attrs, err := BlockAttrs(b)
	if err != nil {
		slog.Warn("Serialize block attrs", "type", b.BlockType(), "id", b.BlockID(), "err", err)
		return nil
	}
	return &TipTapNode{
		Type:  string(b.BlockType()),
		Attrs: attrs,
	}
}

// BlockAttrs возвращает атрибуты блока в виде map, как они хранятся в TipTap JSON.
func BlockAttrs(b edtypes.Block) (map[string]interface{}, error) {
	raw, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	attrs := make(map[string]interface{})
	if err := json.Unmarshal(raw, &attrs); err != nil {
		return nil, err
	}
	return attrs, nil
}
