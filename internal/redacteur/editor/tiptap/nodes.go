package tiptap

import (
	"log/slog"
	"net/url"

	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
)

// parseText преобразует текстовую ноду TipTap в edtypes.Text.
func parseText(node TipTapNode) edtypes.Text {
	text := edtypes.Text{
		Content: node.Text,
	}

	if len(node.Marks) > 0 {
		applyMarks(&text, node.Marks)
	}

	return text
}

// parseInline разбирает строчное содержимое параграфа или заголовка.
func parseInline(nodes []TipTapNode) []any {
	content := make([]any, 0, len(nodes))
	for _, child := range nodes {
		switch child.Type {
		case "text":
			content = append(content, parseText(child))
		case "image":
			if img := parseImage(child); img != nil {
				content = append(content, img)
			}
		case "hardBreak":
			content = append(content, &edtypes.HardBreak{})
		case "variable":
			if v := parseBlock(child); v != nil {
				content = append(content, v)
			}
		default:
			slog.Warn("Unknown paragraph child type", "type", child.Type)
		}
	}
	return content
}

// parseParagraph преобразует параграф TipTap в edtypes.Paragraph.
func parseParagraph(node TipTapNode) *edtypes.Paragraph {
	if node.Type != "paragraph" {
		return nil
	}

	return &edtypes.Paragraph{
		Content: parseInline(node.Content),
		Indent:  getAttrInt(node.Attrs, "indent"),
		Align:   parseTextAlign(getAttrString(node.Attrs, "textAlign")),
	}
}

// parseHeading преобразует заголовок TipTap в edtypes.Heading.
func parseHeading(node TipTapNode) *edtypes.Heading {
	if node.Type != "heading" {
		return nil
	}

	level := getAttrInt(node.Attrs, "level")
	if level < 1 || level > 6 {
		level = 1
	}

	return &edtypes.Heading{
		Level:   level,
		Align:   parseTextAlign(getAttrString(node.Attrs, "textAlign")),
		Content: parseInline(node.Content),
	}
}

// parseParagraphs собирает параграфы из дочерних нод контейнера.
func parseParagraphs(nodes []TipTapNode, container string) []edtypes.Paragraph {
	res := make([]edtypes.Paragraph, 0, len(nodes))
	for _, child := range nodes {
		if p := parseParagraph(child); p != nil {
			res = append(res, *p)
			continue
		}
		slog.Warn("Unknown child type", "container", container, "type", child.Type)
	}
	return res
}

func parseCodeBlock(node TipTapNode) *edtypes.Code {
	if node.Type != "codeBlock" {
		return nil
	}

	var text string
	for _, child := range node.Content {
		if child.Type == "text" {
			text += child.Text
		}
	}

	return &edtypes.Code{
		Content:  text,
		Language: getAttrString(node.Attrs, "language"),
	}
}

func parseBlockquote(node TipTapNode) *edtypes.Quote {
	if node.Type != "blockquote" {
		return nil
	}

	return &edtypes.Quote{
		Content: parseParagraphs(node.Content, node.Type),
	}
}

// parseImage преобразует изображение TipTap в edtypes.Image.
func parseImage(node TipTapNode) *edtypes.Image {
	src := getAttrString(node.Attrs, "src")
	if src == "" {
		return nil
	}

	imgUrl, err := url.Parse(src)
	if err != nil {
		slog.Warn("Failed to parse image URL", "src", src, "err", err)
		return nil
	}

	return &edtypes.Image{
		Src:   imgUrl,
		Width: getAttrInt(node.Attrs, "width"),
		Align: parseTextAlign(getAttrString(node.Attrs, "textAlign")),
	}
}

// parseList преобразует список TipTap в edtypes.List.
func parseList(node TipTapNode) *edtypes.List {
	list := &edtypes.List{
		Elements: make([]edtypes.ListElement, 0, len(node.Content)),
	}

	switch node.Type {
	case "bulletList":
	case "orderedList":
		list.Numbered = true
	case "taskList":
		list.TaskList = true
	default:
		return nil
	}

	for _, child := range node.Content {
		if child.Type != "listItem" && child.Type != "taskItem" {
			continue
		}
		list.Elements = append(list.Elements, edtypes.ListElement{
			Content: parseParagraphs(child.Content, child.Type),
			Checked: child.Type == "taskItem" && getAttrBool(child.Attrs, "checked"),
		})
	}

	return list
}

// parseTable преобразует таблицу TipTap в edtypes.Table.
func parseTable(node TipTapNode) *edtypes.Table {
	if node.Type != "table" {
		return nil
	}

	table := &edtypes.Table{
		Rows: make([][]edtypes.TableCell, 0, len(node.Content)),
	}

	for _, rowNode := range node.Content {
		if rowNode.Type != "tableRow" {
			continue
		}

		row := make([]edtypes.TableCell, 0, len(rowNode.Content))
		for _, cellNode := range rowNode.Content {
			if cellNode.Type != "tableHeader" && cellNode.Type != "tableCell" {
				continue
			}

			cell := edtypes.TableCell{
				Header:  cellNode.Type == "tableHeader",
				ColSpan: max(getAttrInt(cellNode.Attrs, "colspan"), 1),
				RowSpan: max(getAttrInt(cellNode.Attrs, "rowspan"), 1),
				Content: parseParagraphs(cellNode.Content, cellNode.Type),
			}
			row = append(row, cell)
		}

		if len(row) > 0 {
			table.Rows = append(table.Rows, row)
		}
	}

	return table
}
