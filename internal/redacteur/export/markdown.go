package export

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aisa-it/redacteur/internal/redacteur/chart"
	datafetch "github.com/aisa-it/redacteur/internal/redacteur/data-fetch"
	"github.com/aisa-it/redacteur/internal/redacteur/editor"
	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
	"github.com/aisa-it/redacteur/internal/redacteur/formula"
	"github.com/aisa-it/redacteur/internal/redacteur/reference"
	"github.com/aisa-it/redacteur/internal/redacteur/signature"
	"github.com/aisa-it/redacteur/internal/redacteur/variable"
	md "github.com/nao1215/markdown"
)

type mdWriter struct {
	m      *md.Markdown
	t      *Templater
	locale string
}

// Markdown выгружает документ в Markdown. Отметки комментариев не выгружаются.
func Markdown(doc *edtypes.Document, meta Meta, out io.Writer) error {
	w := mdWriter{
		m:      md.NewMarkdown(out),
		t:      NewTemplater(meta),
		locale: meta.Locale,
	}
	if w.locale == "" {
		w.locale = formula.DefaultLocale
	}

	if meta.Title != "" {
		w.m.H1(meta.Title).PlainText("")
	}

	for _, elem := range doc.Elements {
		w.writeElement(elem)
	}
	return w.m.Build()
}

func (w *mdWriter) writeElement(elem any) {
	switch e := elem.(type) {
	case *edtypes.Paragraph:
		w.paragraph(w.inline(e.Content))
	case *edtypes.Heading:
		text := w.inline(e.Content)
		switch e.Level {
		case 1:
			w.m.H1(text)
		case 2:
			w.m.H2(text)
		case 3:
			w.m.H3(text)
		case 4:
			w.m.H4(text)
		case 5:
			w.m.H5(text)
		default:
			w.m.H6(text)
		}
		w.m.PlainText("")
	case *edtypes.Code:
		w.m.CodeBlocks(md.SyntaxHighlight(e.Language), e.Content).PlainText("")
	case *edtypes.Quote:
		lines := make([]string, 0, len(e.Content))
		for _, p := range e.Content {
			lines = append(lines, w.inline(p.Content))
		}
		w.m.Blockquote(strings.Join(lines, "\n> ")).PlainText("")
	case *edtypes.List:
		w.list(e)
	case *edtypes.Image:
		if e.Src != nil {
			w.paragraph(fmt.Sprintf("![](%s)", e.Src.String()))
		}
	case *edtypes.Table:
		w.table(e)
	case *edtypes.HorizontalRule:
		w.m.HorizontalRule().PlainText("")
	case edtypes.Block:
		w.block(e)
	default:
		slog.Warn("Unknown element type for markdown export", "type", fmt.Sprintf("%T", e))
	}
}

func (w *mdWriter) paragraph(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	w.m.PlainText(text).PlainText("")
}

func (w *mdWriter) inline(content []any) string {
	var sb strings.Builder
	for _, c := range content {
		switch c := c.(type) {
		case edtypes.Text:
			sb.WriteString(inlineText(c))
		case *edtypes.HardBreak:
			sb.WriteString("  \n")
		case *edtypes.Image:
			if c.Src != nil {
				fmt.Fprintf(&sb, "![](%s)", c.Src.String())
			}
		case *edtypes.Variable:
			sb.WriteString(w.t.FillStatic(variable.Display(c, w.t.Now())))
		}
	}
	return sb.String()
}

func inlineText(t edtypes.Text) string {
	s := t.Content
	if strings.TrimSpace(s) == "" {
		return s
	}
	if t.Code {
		s = md.Code(s)
	}
	switch {
	case t.Strong && t.Italic:
		s = md.BoldItalic(s)
	case t.Strong:
		s = md.Bold(s)
	case t.Italic:
		s = md.Italic(s)
	}
	if t.Strikethrough {
		s = md.Strikethrough(s)
	}
	if t.URL != nil {
		s = md.Link(s, t.URL.String())
	}
	return s
}

func (w *mdWriter) paragraphsText(ps []edtypes.Paragraph) string {
	parts := make([]string, 0, len(ps))
	for _, p := range ps {
		parts = append(parts, w.inline(p.Content))
	}
	return strings.Join(parts, " ")
}

func (w *mdWriter) list(l *edtypes.List) {
	if l.TaskList {
		set := make([]md.CheckBoxSet, 0, len(l.Elements))
		for _, item := range l.Elements {
			set = append(set, md.CheckBoxSet{Checked: item.Checked, Text: w.paragraphsText(item.Content)})
		}
		w.m.CheckBox(set).PlainText("")
		return
	}

	items := make([]string, 0, len(l.Elements))
	for _, item := range l.Elements {
		items = append(items, w.paragraphsText(item.Content))
	}
	if l.Numbered {
		w.m.OrderedList(items...)
	} else {
		w.m.BulletList(items...)
	}
	w.m.PlainText("")
}

func (w *mdWriter) table(t *edtypes.Table) {
	if len(t.Rows) == 0 {
		return
	}
	rows := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		r := make([]string, 0, len(row))
		for _, cell := range row {
			r = append(r, w.paragraphsText(cell.Content))
			for i := 1; i < cell.ColSpan; i++ {
				r = append(r, "")
			}
		}
		rows = append(rows, r)
	}
	w.writeTable(rows[0], rows[1:])
}

// writeTable выравнивает строки по ширине заголовка.
func (w *mdWriter) writeTable(header []string, rows [][]string) {
	width := len(header)
	for _, r := range rows {
		width = max(width, len(r))
	}
	pad := func(r []string) []string {
		for len(r) < width {
			r = append(r, "")
		}
		return r
	}
	for i := range rows {
		rows[i] = pad(rows[i])
	}
	w.m.Table(md.TableSet{Header: pad(header), Rows: rows}).PlainText("")
}

func (w *mdWriter) block(b edtypes.Block) {
	switch b := b.(type) {
	case *edtypes.DataFetch:
		if b.Error != "" {
			w.paragraph(md.Italic(b.Error))
		}
		if len(b.Data) == 0 {
			if b.Error == "" {
				w.paragraph(md.Italic(editor.EmptyDataPlaceholder))
			}
			return
		}
		cols := datafetch.Columns(b, b.Data)
		if b.DisplayAs == edtypes.DisplayRaw {
			raw, _ := json.MarshalIndent(b.Data, "", "  ")
			w.m.CodeBlocks(md.SyntaxHighlight("json"), string(raw)).PlainText("")
			return
		}
		rows := make([][]string, 0, len(b.Data))
		for _, row := range b.Data {
			r := make([]string, 0, len(cols))
			for _, col := range cols {
				r = append(r, chart.Label(row[col]))
			}
			rows = append(rows, r)
		}
		w.writeTable(cols, rows)
	case *edtypes.Chart:
		view := chart.Build(b)
		if view.Title != "" {
			w.paragraph(md.Bold(view.Title))
		}
		if view.Empty {
			w.paragraph(md.Italic(chart.EmptyPlaceholder))
			return
		}
		if view.Kind == edtypes.ChartPie {
			labels := make([]string, 0, len(view.Slices))
			for _, s := range view.Slices {
				labels = append(labels, s.Label)
			}
			w.m.BulletList(labels...).PlainText("")
			return
		}
		header := []string{b.XAxisKey}
		for _, s := range view.Series {
			header = append(header, s.Key)
		}
		rows := make([][]string, len(b.Data))
		for i := range b.Data {
			label := ""
			if len(view.Series) > 0 {
				label = view.Series[0].Points[i].Label
			}
			rows[i] = []string{label}
			for _, s := range view.Series {
				rows[i] = append(rows[i], chart.Label(s.Points[i].Value))
			}
		}
		w.writeTable(header, rows)
	case *edtypes.Formula:
		w.paragraph(md.Bold(formula.Display(b, w.locale)))
	case *edtypes.Signature:
		if b.Signed() {
			w.paragraph(fmt.Sprintf("![Signature](%s)", b.Signature))
		} else {
			w.paragraph(md.Italic(editor.UnsignedPlaceholder))
		}
		w.paragraph(signatoryLine(b))
		if warn := signature.Warning(b); warn != "" {
			w.paragraph(md.Italic(warn))
		}
	case *edtypes.Reference:
		if b.Error != "" {
			w.paragraph(md.Italic(b.Error))
		}
		label := reference.Label(b)
		if u := reference.URL(b); u != "" {
			label = md.Link(label, u)
		}
		w.paragraph(label)
	case *edtypes.Variable:
		w.paragraph(w.t.FillStatic(variable.Display(b, w.t.Now())))
	}
}

// signatoryLine возвращает «Имя, роль, место (дата)».
func signatoryLine(s *edtypes.Signature) string {
	parts := []string{s.Signatory}
	if s.Role != "" {
		parts = append(parts, s.Role)
	}
	if s.Location != "" {
		parts = append(parts, s.Location)
	}
	line := strings.Join(parts, ", ")
	if s.SignedAt != nil {
		line += " (" + s.SignedAt.Format(variable.DateTimeLayout) + ")"
	}
	return line
}
