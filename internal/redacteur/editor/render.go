package editor

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/aisa-it/redacteur/internal/redacteur/chart"
	datafetch "github.com/aisa-it/redacteur/internal/redacteur/data-fetch"
	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
	"github.com/aisa-it/redacteur/internal/redacteur/formula"
	policy "github.com/aisa-it/redacteur/internal/redacteur/redactor-policy"
	"github.com/aisa-it/redacteur/internal/redacteur/reference"
	"github.com/aisa-it/redacteur/internal/redacteur/signature"
	"github.com/aisa-it/redacteur/internal/redacteur/variable"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	EmptyDataPlaceholder = "Aucune donnée"
	UnsignedPlaceholder  = "En attente de signature"
	EmbedPlaceholder     = "Aperçu intégré"
)

// RenderOptions задает параметры отрисовки документа.
type RenderOptions struct {
	Locale string
	Now    time.Time

	// Resolved сообщает, закрыт ли комментарий. nil - все комментарии открыты.
	Resolved func(id string) bool

	// Static убирает data-attrs, документ нельзя будет разобрать обратно.
	Static bool
}

// RenderHTML отрисовывает документ в очищенный HTML.
func RenderHTML(doc *edtypes.Document, opts RenderOptions) (string, error) {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.Locale == "" {
		opts.Locale = formula.DefaultLocale
	}

	var buf strings.Builder
	for _, elem := range doc.Elements {
		node := renderElement(elem, &opts)
		if node == nil {
			continue
		}
		if err := html.Render(&buf, node); err != nil {
			return "", fmt.Errorf("render html: %w", err)
		}
	}

	res := policy.Sanitize(buf.String())
	if opts.Static {
		res = policy.Flatten(res)
	}
	return res, nil
}

func renderElement(elem any, opts *RenderOptions) *html.Node {
	switch e := elem.(type) {
	case *edtypes.Paragraph:
		return renderParagraph(e, opts)
	case *edtypes.Heading:
		n := element(headingAtom(e.Level))
		setAlign(n, e.Align)
		appendInline(n, e.Content, opts)
		return n
	case *edtypes.Code:
		pre := element(atom.Pre)
		code := element(atom.Code)
		if e.Language != "" {
			setAttr(code, "class", "language-"+e.Language)
		}
		code.AppendChild(text(e.Content))
		pre.AppendChild(code)
		return pre
	case *edtypes.Quote:
		n := element(atom.Blockquote)
		for i := range e.Content {
			n.AppendChild(renderParagraph(&e.Content[i], opts))
		}
		return n
	case *edtypes.List:
		return renderList(e, opts)
	case *edtypes.Image:
		return renderImage(e)
	case *edtypes.Table:
		return renderTable(e, opts)
	case *edtypes.HorizontalRule:
		return element(atom.Hr)
	case edtypes.Block:
		return renderBlock(e, opts)
	default:
		slog.Warn("Unknown element type for html render", "type", fmt.Sprintf("%T", e))
		return nil
	}
}

func renderParagraph(p *edtypes.Paragraph, opts *RenderOptions) *html.Node {
	n := element(atom.P)
	if p.Indent > 0 {
		setAttr(n, "class", fmt.Sprintf("tt-indent-%d", min(p.Indent, 9)))
	}
	setAlign(n, p.Align)
	appendInline(n, p.Content, opts)
	return n
}

func renderList(l *edtypes.List, opts *RenderOptions) *html.Node {
	n := element(atom.Ul)
	if l.Numbered {
		n = element(atom.Ol)
	}
	if l.TaskList {
		setAttr(n, "data-type", "taskList")
	}
	for _, item := range l.Elements {
		li := element(atom.Li)
		if l.TaskList {
			setAttr(li, "data-checked", strconv.FormatBool(item.Checked))
		}
		for i := range item.Content {
			li.AppendChild(renderParagraph(&item.Content[i], opts))
		}
		n.AppendChild(li)
	}
	return n
}

func renderImage(img *edtypes.Image) *html.Node {
	n := element(atom.Img)
	if img.Src != nil {
		setAttr(n, "src", img.Src.String())
	}
	var style []string
	if img.Width > 0 {
		style = append(style, fmt.Sprintf("width: %dpx", img.Width))
	}
	if a := alignValue(img.Align); a != "" {
		style = append(style, "text-align: "+a)
	}
	if len(style) > 0 {
		setAttr(n, "style", strings.Join(style, "; "))
	}
	return n
}

func renderTable(t *edtypes.Table, opts *RenderOptions) *html.Node {
	table := element(atom.Table)
	tbody := element(atom.Tbody)
	for _, row := range t.Rows {
		tr := element(atom.Tr)
		for _, cell := range row {
			td := element(atom.Td)
			if cell.Header {
				td = element(atom.Th)
			}
			if cell.ColSpan > 1 {
				setAttr(td, "colspan", strconv.Itoa(cell.ColSpan))
			}
			if cell.RowSpan > 1 {
				setAttr(td, "rowspan", strconv.Itoa(cell.RowSpan))
			}
			for i := range cell.Content {
				td.AppendChild(renderParagraph(&cell.Content[i], opts))
			}
			tr.AppendChild(td)
		}
		tbody.AppendChild(tr)
	}
	table.AppendChild(tbody)
	return table
}

func appendInline(parent *html.Node, content []any, opts *RenderOptions) {
	for _, c := range content {
		switch c := c.(type) {
		case edtypes.Text:
			parent.AppendChild(renderText(c, opts))
		case *edtypes.HardBreak:
			parent.AppendChild(element(atom.Br))
		case *edtypes.Image:
			parent.AppendChild(renderImage(c))
		case *edtypes.Variable:
			parent.AppendChild(renderVariable(c, opts))
		default:
			slog.Warn("Unknown inline content for html render", "type", fmt.Sprintf("%T", c))
		}
	}
}

// renderText оборачивает текст отметками изнутри наружу: code, strong, em, u, s,
// цвет, подсветка, ссылка, комментарии.
func renderText(t edtypes.Text, opts *RenderOptions) *html.Node {
	n := text(t.Content)
	wrap := func(a atom.Atom, attrs ...string) {
		w := element(a, attrs...)
		w.AppendChild(n)
		n = w
	}

	if t.Code {
		wrap(atom.Code)
	}
	if t.Strong {
		wrap(atom.Strong)
	}
	if t.Italic {
		wrap(atom.Em)
	}
	if t.Underlined {
		wrap(atom.U)
	}
	if t.Strikethrough {
		wrap(atom.S)
	}
	if t.Color != nil {
		wrap(atom.Span, "style", "color: "+t.Color.Hex())
	}
	if t.BgColor != nil {
		wrap(atom.Mark, "data-color", t.BgColor.Hex(), "style", "background-color: "+t.BgColor.Hex())
	}
	if t.URL != nil {
		wrap(atom.A, "href", t.URL.String(), "target", "_blank")
	}
	for i := len(t.CommentIds) - 1; i >= 0; i-- {
		id := t.CommentIds[i]
		class := "comment-highlight"
		if opts.Resolved != nil && opts.Resolved(id) {
			class = "comment-resolved"
		}
		wrap(atom.Span, "class", class, "data-comment-id", id)
	}
	return n
}

// renderBlock отрисовывает контейнер пользовательского блока с его представлением.
func renderBlock(b edtypes.Block, opts *RenderOptions) *html.Node {
	if v, ok := b.(*edtypes.Variable); ok {
		return renderVariable(v, opts)
	}

	n := blockContainer(atom.Div, b)
	if n == nil {
		return nil
	}

	switch b := b.(type) {
	case *edtypes.DataFetch:
		renderDataFetch(n, b)
	case *edtypes.Chart:
		renderChart(n, b)
	case *edtypes.Formula:
		renderFormula(n, b, opts)
	case *edtypes.Signature:
		renderSignature(n, b)
	case *edtypes.Reference:
		renderReference(n, b)
	}
	return n
}

func blockContainer(a atom.Atom, b edtypes.Block) *html.Node {
	raw, err := json.Marshal(b)
	if err != nil {
		slog.Warn("Marshal block for html render", "type", b.BlockType(), "id", b.BlockID(), "err", err)
		return nil
	}
	return element(a,
		"data-type", string(b.BlockType()),
		"data-block-id", b.BlockID(),
		"data-attrs", string(raw),
		"class", "block block-"+strings.ToLower(string(b.BlockType())),
	)
}

func renderDataFetch(n *html.Node, b *edtypes.DataFetch) {
	if b.Error != "" {
		n.AppendChild(textElement(atom.Div, b.Error, "class", "block-error"))
	}
	if len(b.Data) == 0 {
		if b.Error == "" {
			n.AppendChild(textElement(atom.P, EmptyDataPlaceholder, "class", "block-placeholder"))
		}
		return
	}

	cols := datafetch.Columns(b, b.Data)
	switch b.DisplayAs {
	case edtypes.DisplayList:
		ul := element(atom.Ul, "class", "data-list")
		for _, row := range b.Data {
			parts := make([]string, 0, len(cols))
			for _, col := range cols {
				parts = append(parts, col+": "+chart.Label(row[col]))
			}
			ul.AppendChild(textElement(atom.Li, strings.Join(parts, ", ")))
		}
		n.AppendChild(ul)
	case edtypes.DisplayCards:
		cards := element(atom.Div, "class", "data-cards")
		for _, row := range b.Data {
			card := element(atom.Dl, "class", "card")
			for _, col := range cols {
				card.AppendChild(textElement(atom.Dt, col))
				card.AppendChild(textElement(atom.Dd, chart.Label(row[col])))
			}
			cards.AppendChild(card)
		}
		n.AppendChild(cards)
	case edtypes.DisplayRaw:
		raw, _ := json.MarshalIndent(b.Data, "", "  ")
		pre := element(atom.Pre)
		pre.AppendChild(textElement(atom.Code, string(raw)))
		n.AppendChild(pre)
	default:
		table := element(atom.Table, "class", "data-table")
		thead := element(atom.Thead)
		tr := element(atom.Tr)
		for _, col := range cols {
			tr.AppendChild(textElement(atom.Th, col))
		}
		thead.AppendChild(tr)
		table.AppendChild(thead)

		tbody := element(atom.Tbody)
		for _, row := range b.Data {
			tr := element(atom.Tr)
			for _, col := range cols {
				tr.AppendChild(textElement(atom.Td, chart.Label(row[col])))
			}
			tbody.AppendChild(tr)
		}
		table.AppendChild(tbody)
		n.AppendChild(table)
	}
}

func renderChart(n *html.Node, c *edtypes.Chart) {
	view := chart.Build(c)

	figure := element(atom.Figure, "class", "chart chart-"+string(view.Kind))
	if view.Title != "" {
		figure.AppendChild(textElement(atom.Figcaption, view.Title))
	}
	if view.Empty {
		figure.AppendChild(textElement(atom.P, chart.EmptyPlaceholder, "class", "chart-empty"))
		n.AppendChild(figure)
		return
	}

	if view.Kind == edtypes.ChartPie {
		ul := element(atom.Ul, "class", "chart-slices")
		for _, s := range view.Slices {
			ul.AppendChild(textElement(atom.Li, s.Label, "style", "color: "+s.Color))
		}
		figure.AppendChild(ul)
		n.AppendChild(figure)
		return
	}

	if view.ShowLegend && len(view.Series) > 0 {
		legend := element(atom.Ul, "class", "chart-legend")
		for _, s := range view.Series {
			legend.AppendChild(textElement(atom.Li, s.Key, "style", "color: "+s.Color))
		}
		figure.AppendChild(legend)
	}

	table := element(atom.Table, "class", "chart-data")
	head := element(atom.Tr)
	head.AppendChild(textElement(atom.Th, c.XAxisKey))
	for _, s := range view.Series {
		head.AppendChild(textElement(atom.Th, s.Key))
	}
	thead := element(atom.Thead)
	thead.AppendChild(head)
	table.AppendChild(thead)

	tbody := element(atom.Tbody)
	for i := range c.Data {
		tr := element(atom.Tr)
		label := ""
		if len(view.Series) > 0 {
			label = view.Series[0].Points[i].Label
		}
		tr.AppendChild(textElement(atom.Td, label))
		for _, s := range view.Series {
			tr.AppendChild(textElement(atom.Td, chart.Label(s.Points[i].Value)))
		}
		tbody.AppendChild(tr)
	}
	table.AppendChild(tbody)
	figure.AppendChild(table)
	n.AppendChild(figure)
}

func renderFormula(n *html.Node, f *edtypes.Formula, opts *RenderOptions) {
	class := "formula-result"
	if f.Error != "" {
		class = "formula-error"
	}
	n.AppendChild(textElement(atom.Span, formula.Display(f, opts.Locale), "class", class))
}

func renderSignature(n *html.Node, s *edtypes.Signature) {
	if s.Signed() {
		n.AppendChild(element(atom.Img, "src", s.Signature, "alt", "Signature", "class", "signature-image"))
	} else {
		n.AppendChild(textElement(atom.P, UnsignedPlaceholder, "class", "signature-placeholder"))
	}

	info := element(atom.P, "class", "signature-info")
	info.AppendChild(textElement(atom.Strong, s.Signatory))
	if s.Role != "" {
		info.AppendChild(text(", " + s.Role))
	}
	if s.Location != "" {
		info.AppendChild(text(", " + s.Location))
	}
	if s.SignedAt != nil {
		info.AppendChild(text(" (" + s.SignedAt.Format(variable.DateTimeLayout) + ")"))
	}
	n.AppendChild(info)

	if w := signature.Warning(s); w != "" {
		n.AppendChild(textElement(atom.P, w, "class", "signature-warning"))
	}
}

func renderReference(n *html.Node, r *edtypes.Reference) {
	if r.Error != "" {
		n.AppendChild(textElement(atom.Div, r.Error, "class", "block-error"))
	}

	label := reference.Label(r)
	href := reference.URL(r)
	link := text(label)
	if href != "" {
		link = textElement(atom.A, label, "href", href)
	}

	switch r.DisplayAs {
	case edtypes.RefCard:
		card := element(atom.Div, "class", "reference-card")
		title := element(atom.P, "class", "reference-title")
		title.AppendChild(link)
		card.AppendChild(title)
		if m := r.Metadata; m != nil {
			if m.Excerpt != "" {
				card.AppendChild(textElement(atom.P, m.Excerpt, "class", "reference-excerpt"))
			}
			var meta []string
			if m.Author != "" {
				meta = append(meta, m.Author)
			}
			if m.CreatedAt != "" {
				meta = append(meta, m.CreatedAt)
			}
			if len(meta) > 0 {
				card.AppendChild(textElement(atom.P, strings.Join(meta, " · "), "class", "reference-meta"))
			}
		}
		n.AppendChild(card)
	case edtypes.RefEmbed:
		embed := element(atom.Div, "class", "reference-embed")
		title := element(atom.P, "class", "reference-title")
		title.AppendChild(link)
		embed.AppendChild(title)
		embed.AppendChild(textElement(atom.P, EmbedPlaceholder, "class", "block-placeholder"))
		n.AppendChild(embed)
	default:
		p := element(atom.P, "class", "reference-link")
		p.AppendChild(link)
		n.AppendChild(p)
	}
}

func renderVariable(v *edtypes.Variable, opts *RenderOptions) *html.Node {
	n := blockContainer(atom.Span, v)
	if n == nil {
		return text(variable.Display(v, opts.Now))
	}
	n.AppendChild(text(variable.Display(v, opts.Now)))
	return n
}

func element(a atom.Atom, attrs ...string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		setAttr(n, attrs[i], attrs[i+1])
	}
	return n
}

func textElement(a atom.Atom, s string, attrs ...string) *html.Node {
	n := element(a, attrs...)
	n.AppendChild(text(s))
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func setAttr(n *html.Node, key, val string) {
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func setAlign(n *html.Node, align edtypes.TextAlign) {
	if a := alignValue(align); a != "" {
		setAttr(n, "style", "text-align: "+a)
	}
}

func alignValue(align edtypes.TextAlign) string {
	switch align {
	case edtypes.CenterAlign:
		return "center"
	case edtypes.RightAlign:
		return "right"
	case edtypes.JustifyAlign:
		return "justify"
	}
	return ""
}

func headingAtom(level int) atom.Atom {
	switch level {
	case 1:
		return atom.H1
	case 2:
		return atom.H2
	case 3:
		return atom.H3
	case 4:
		return atom.H4
	case 5:
		return atom.H5
	}
	return atom.H6
}
