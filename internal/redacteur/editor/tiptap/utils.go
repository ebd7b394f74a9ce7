package tiptap

import (
	"strings"

	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
)

// getAttrString безопасно извлекает строковый атрибут из map.
func getAttrString(attrs map[string]interface{}, key string) string {
	if attrs == nil {
		return ""
	}
	str, _ := attrs[key].(string)
	return str
}

// getAttrInt безопасно извлекает целочисленный атрибут из map.
func getAttrInt(attrs map[string]interface{}, key string) int {
	if attrs == nil {
		return 0
	}

	switch v := attrs[key].(type) {
	case float64: // из JSON
		return int(v)
	case int:
		return v
	}
	return 0
}

// getAttrBool безопасно извлекает булевый атрибут из map.
func getAttrBool(attrs map[string]interface{}, key string) bool {
	if attrs == nil {
		return false
	}
	b, _ := attrs[key].(bool)
	return b
}

// parseTextAlign конвертирует строковое значение выравнивания в TextAlign.
func parseTextAlign(align string) edtypes.TextAlign {
	switch strings.TrimSpace(strings.ToLower(align)) {
	case "center":
		return edtypes.CenterAlign
	case "right":
		return edtypes.RightAlign
	case "justify":
		return edtypes.JustifyAlign
	default:
		return edtypes.LeftAlign
	}
}

// serializeTextAlign преобразует TextAlign в строку.
func serializeTextAlign(align edtypes.TextAlign) string {
	switch align {
	case edtypes.CenterAlign:
		return "center"
	case edtypes.RightAlign:
		return "right"
	case edtypes.JustifyAlign:
		return "justify"
	default:
		return "left"
	}
}
