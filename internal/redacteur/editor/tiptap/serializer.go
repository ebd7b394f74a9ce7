package tiptap

import (
	"encoding/json"
	"log/slog"

	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
)

// Serialize сериализует edtypes.Document в TipTap JSON.
func Serialize(doc *edtypes.Document) ([]byte, error) {
	tipTapDoc := TipTapDocument{
		Type:    "doc",
		Content: make([]TipTapNode, 0, len(doc.Elements)),
	}

	for _, elem := range doc.Elements {
		node := serializeElement(elem)
		if node != nil {
			tipTapDoc.Content = append(tipTapDoc.Content, *node)
		}
	}

	return json.Marshal(tipTapDoc)
}

// serializeElement преобразует узел верхнего уровня в TipTap ноду.
func serializeElement(elem any) *TipTapNode {
	switch e := elem.(type) {
	case *edtypes.Paragraph:
		return serializeParagraph(e)
	case *edtypes.Heading:
		return serializeHeading(e)
	case *edtypes.Code:
		return serializeCode(e)
	case *edtypes.Quote:
		return &TipTapNode{Type: "blockquote", Content: serializeParagraphs(e.Content)}
	case *edtypes.List:
		return serializeList(e)
	case *edtypes.Image:
		return serializeImage(e)
	case *edtypes.Table:
		return serializeTable(e)
	case *edtypes.HorizontalRule:
		return &TipTapNode{Type: "horizontalRule"}
	case edtypes.Block:
		return serializeBlock(e)
	default:
		slog.Warn("Unknown element type for serialization", "type", e)
		return nil
	}
}

func serializeParagraph(p *edtypes.Paragraph) *TipTapNode {
	node := &TipTapNode{
		Type:    "paragraph",
		Content: serializeInline(p.Content),
	}

	if p.Indent > 0 || p.Align != edtypes.LeftAlign {
		node.Attrs = make(map[string]interface{})
	}
	if p.Indent > 0 {
		node.Attrs["indent"] = p.Indent
	}
	if p.Align != edtypes.LeftAlign {
		node.Attrs["textAlign"] = serializeTextAlign(p.Align)
	}

	return node
}

func serializeHeading(h *edtypes.Heading) *TipTapNode {
	node := &TipTapNode{
		Type:    "heading",
		Attrs:   map[string]interface{}{"level": h.Level},
		Content: serializeInline(h.Content),
	}
	if h.Align != edtypes.LeftAlign {
		node.Attrs["textAlign"] = serializeTextAlign(h.Align)
	}
	return node
}

func serializeParagraphs(ps []edtypes.Paragraph) []TipTapNode {
	res := make([]TipTapNode, 0, len(ps))
	for i := range ps {
		res = append(res, *serializeParagraph(&ps[i]))
	}
	return res
}

// serializeInline преобразует строчное содержимое параграфа.
func serializeInline(content []any) []TipTapNode {
	res := make([]TipTapNode, 0, len(content))
	for _, c := range content {
		var node *TipTapNode
		switch c := c.(type) {
		case edtypes.Text:
			node = serializeText(&c)
		case *edtypes.Image:
			node = serializeImage(c)
		case *edtypes.HardBreak:
			node = &TipTapNode{Type: "hardBreak"}
		case *edtypes.Variable:
			node = serializeBlock(c)
		default:
			slog.Warn("Unknown paragraph content type for serialization", "type", c)
		}
		if node != nil {
			res = append(res, *node)
		}
	}
	return res
}

// serializeText преобразует Text в текстовую ноду с отметками.
func serializeText(t *edtypes.Text) *TipTapNode {
	node := &TipTapNode{
		Type: "text",
		Text: t.Content,
	}

	marks := make([]TipTapMark, 0)

	if t.Strong {
		marks = append(marks, TipTapMark{Type: "bold"})
	}
	if t.Italic {
		marks = append(marks, TipTapMark{Type: "italic"})
	}
	if t.Underlined {
		marks = append(marks, TipTapMark{Type: "underline"})
	}
	if t.Strikethrough {
		marks = append(marks, TipTapMark{Type: "strike"})
	}
	if t.Code {
		marks = append(marks, TipTapMark{Type: "code"})
	}
	if t.Color != nil {
		marks = append(marks, TipTapMark{
			Type:  "textStyle",
			Attrs: map[string]interface{}{"color": t.Color.Hex()},
		})
	}
	if t.BgColor != nil {
		marks = append(marks, TipTapMark{
			Type:  "highlight",
			Attrs: map[string]interface{}{"color": t.BgColor.Hex()},
		})
	}
	if t.URL != nil {
		marks = append(marks, TipTapMark{
			Type: "link",
			Attrs: map[string]interface{}{
				"href":   t.URL.String(),
				"target": "_blank",
			},
		})
	}
	for _, id := range t.CommentIds {
		marks = append(marks, TipTapMark{
			Type:  "comment",
			Attrs: map[string]interface{}{"commentId": id},
		})
	}

	if len(marks) > 0 {
		node.Marks = marks
	}

	return node
}

func serializeCode(c *edtypes.Code) *TipTapNode {
	node := &TipTapNode{
		Type:    "codeBlock",
		Content: []TipTapNode{{Type: "text", Text: c.Content}},
	}
	if c.Language != "" {
		node.Attrs = map[string]interface{}{"language": c.Language}
	}
	return node
}

// serializeList преобразует List в bulletList, orderedList или taskList.
func serializeList(l *edtypes.List) *TipTapNode {
	listType, itemType := "bulletList", "listItem"
	if l.Numbered {
		listType = "orderedList"
	}
	if l.TaskList {
		listType, itemType = "taskList", "taskItem"
	}

	node := &TipTapNode{
		Type:    listType,
		Content: make([]TipTapNode, 0, len(l.Elements)),
	}

	for _, item := range l.Elements {
		itemNode := TipTapNode{
			Type:    itemType,
			Content: serializeParagraphs(item.Content),
		}
		if l.TaskList {
			itemNode.Attrs = map[string]interface{}{"checked": item.Checked}
		}
		node.Content = append(node.Content, itemNode)
	}

	return node
}

func serializeImage(img *edtypes.Image) *TipTapNode {
	node := &TipTapNode{
		Type:  "image",
		Attrs: make(map[string]interface{}),
	}

	if img.Src != nil {
		node.Attrs["src"] = img.Src.String()
	}
	if img.Width > 0 {
		node.Attrs["width"] = img.Width
	}
	if img.Align != edtypes.LeftAlign {
		node.Attrs["textAlign"] = serializeTextAlign(img.Align)
	}

	return node
}

func serializeTable(t *edtypes.Table) *TipTapNode {
	node := &TipTapNode{
		Type:    "table",
		Content: make([]TipTapNode, 0, len(t.Rows)),
	}

	for _, row := range t.Rows {
		rowNode := TipTapNode{
			Type:    "tableRow",
			Content: make([]TipTapNode, 0, len(row)),
		}

		for _, cell := range row {
			cellNode := TipTapNode{
				Type:    "tableCell",
				Content: serializeParagraphs(cell.Content),
			}
			if cell.Header {
				cellNode.Type = "tableHeader"
			}
			if cell.ColSpan > 1 || cell.RowSpan > 1 {
				cellNode.Attrs = make(map[string]interface{})
			}
			if cell.ColSpan > 1 {
				cellNode.Attrs["colspan"] = cell.ColSpan
			}
			if cell.RowSpan > 1 {
				cellNode.Attrs["rowspan"] = cell.RowSpan
			}

			rowNode.Content = append(rowNode.Content, cellNode)
		}

		node.Content = append(node.Content, rowNode)
	}

	return node
}
