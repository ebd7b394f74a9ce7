package export

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/aisa-it/redacteur/internal/redacteur/editor"
	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
	"github.com/tdewolff/minify/v2"
	mhtml "github.com/tdewolff/minify/v2/html"
)

var minifier *minify.M = minify.New()

func init() {
	minifier.AddFunc("text/html", mhtml.Minify)
}

const pageTemplate = `<!DOCTYPE html>
<html lang="%s">
<head>
  <meta charset="utf-8">
  <title>%s</title>
</head>
<body>
  <article class="redacteur-document">
    %s
  </article>
</body>
</html>
`

// HTMLOptions задает параметры выгрузки HTML.
type HTMLOptions struct {
	Minify bool
	// Editable сохраняет data-attrs, такой HTML можно разобрать обратно.
	Editable bool
	Resolved func(id string) bool
}

// HTML выгружает документ страницей HTML.
func HTML(doc *edtypes.Document, meta Meta, out io.Writer, opts HTMLOptions) error {
	t := NewTemplater(meta)

	body, err := editor.RenderHTML(doc, editor.RenderOptions{
		Locale:   meta.Locale,
		Now:      t.Now(),
		Resolved: opts.Resolved,
		Static:   !opts.Editable,
	})
	if err != nil {
		return err
	}
	escaped := NewTemplater(Meta{
		Title:  html.EscapeString(meta.Title),
		Author: html.EscapeString(meta.Author),
		Date:   t.Now(),
	})
	body = escaped.FillStatic(body)

	lang := "fr"
	if meta.Locale != "" {
		lang, _, _ = strings.Cut(meta.Locale, "-")
	}
	page := fmt.Sprintf(pageTemplate, html.EscapeString(lang), html.EscapeString(meta.Title), body)

	if !opts.Minify {
		_, err := io.WriteString(out, page)
		return err
	}
	return minifier.Minify("text/html", out, strings.NewReader(page))
}
