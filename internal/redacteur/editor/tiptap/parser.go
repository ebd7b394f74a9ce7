package tiptap

import (
	"encoding/json"
	"io"
	"log/slog"

	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
)

// ParseJSON разбирает JSON контент TipTap в edtypes.Document.
func ParseJSON(r io.Reader) (*edtypes.Document, error) {
	var tipTapDoc TipTapDocument
	if err := json.NewDecoder(r).Decode(&tipTapDoc); err != nil {
		return nil, err
	}

	doc := &edtypes.Document{
		Elements: make([]any, 0, len(tipTapDoc.Content)),
	}

	for _, node := range tipTapDoc.Content {
		elem := parseNode(node)
		if elem != nil {
			doc.Elements = append(doc.Elements, elem)
		}
	}

	return doc, nil
}

// parseNode разбирает ноду верхнего уровня. Возвращает nil для неизвестных типов.
func parseNode(node TipTapNode) any {
	switch node.Type {
	case "paragraph":
		return parseParagraph(node)
	case "heading":
		return parseHeading(node)
	case "blockquote":
		return parseBlockquote(node)
	case "codeBlock":
		return parseCodeBlock(node)
	case "bulletList", "orderedList", "taskList":
		return parseList(node)
	case "table":
		return parseTable(node)
	case "image":
		return parseImage(node)
	case "horizontalRule":
		return &edtypes.HorizontalRule{}
	case "dataFetch", "chart", "formula", "signature", "reference":
		return parseBlock(node)
	default:
		slog.Warn("Unknown node type", "type", node.Type)
		return nil
	}
}
