package tiptap

import (
	"log/slog"
	"net/url"
	"slices"

	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
)

// applyMarks применяет отметки к текстовому элементу.
func applyMarks(text *edtypes.Text, marks []TipTapMark) {
	for _, mark := range marks {
		switch mark.Type {
		case "bold":
			text.Strong = true
		case "italic":
			text.Italic = true
		case "underline":
			text.Underlined = true
		case "strike":
			text.Strikethrough = true
		case "code":
			text.Code = true
		case "textStyle":
			if c, ok := parseColorAttr(mark.Attrs, "color"); ok {
				text.Color = &c
			}
		case "highlight":
			if c, ok := parseColorAttr(mark.Attrs, "color"); ok {
				text.BgColor = &c
			}
		case "link":
			applyLink(text, mark.Attrs)
		case "comment":
			id := getAttrString(mark.Attrs, "commentId")
			if id != "" && !slices.Contains(text.CommentIds, id) {
				text.CommentIds = append(text.CommentIds, id)
			}
		default:
			slog.Debug("Unknown mark type", "type", mark.Type)
		}
	}
}

func parseColorAttr(attrs map[string]interface{}, key string) (edtypes.Color, bool) {
	raw := getAttrString(attrs, key)
	if raw == "" {
		return edtypes.Color{}, false
	}
	c, err := edtypes.ParseColor(raw)
	if err != nil {
		slog.Debug("Parse mark color", "color", raw, "err", err)
		return edtypes.Color{}, false
	}
	return c, true
}

// applyLink применяет ссылку к тексту.
func applyLink(text *edtypes.Text, attrs map[string]interface{}) {
	href := getAttrString(attrs, "href")
	if href != "" {
		u, err := url.Parse(href)
		if err == nil {
			text.URL = u
		}
	}
}
