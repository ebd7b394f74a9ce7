// Пакет editor переводит модель документа в HTML и обратно.
//
// Пользовательские блоки отрисовываются контейнером с data-type и data-attrs,
// при разборе восстанавливаются только из data-attrs, представление блока игнорируется.
package editor

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
	"golang.org/x/net/html"
)

// ParseDocument разбирает HTML документа в модель.
func ParseDocument(r io.Reader) (*edtypes.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	body := getBody(root)
	if body == nil {
		return &edtypes.Document{Elements: []any{}}, nil
	}

	doc := &edtypes.Document{Elements: []any{}}
	var inline []any
	flush := func() {
		edtypes.Normalize(&inline)
		if len(inline) > 0 {
			doc.Elements = append(doc.Elements, &edtypes.Paragraph{Content: inline})
		}
		inline = nil
	}

	var walk func(parent *html.Node)
	walk = func(parent *html.Node) {
		for n := range iterNodes(parent) {
			if elem := parseElement(n); elem != nil {
				flush()
				doc.Elements = append(doc.Elements, elem)
				continue
			}
			if isContainer(n) {
				flush()
				walk(n)
				continue
			}
			if isBlockNode(n) {
				// Блок с поврежденными атрибутами пропускается целиком
				continue
			}
			// Строчное содержимое вне параграфа собирается в параграф
			if n.Type == html.TextNode && strings.TrimSpace(n.Data) == "" {
				continue
			}
			parseInline(n, edtypes.Text{}, &inline)
		}
	}
	walk(body)
	flush()

	return doc, nil
}

// parseElement разбирает узел верхнего уровня. nil - узел строчный.
func parseElement(n *html.Node) any {
	if n.Type != html.ElementNode {
		return nil
	}

	switch n.Data {
	case "p":
		return parseParagraph(n)
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level, _ := strconv.Atoi(n.Data[1:])
		h := &edtypes.Heading{Level: level, Align: toTextAlign(parseStyles(n)["text-align"])}
		h.Content = parseInlineChildren(n)
		return h
	case "pre":
		return parseCode(n)
	case "ul", "ol":
		return parseList(n)
	case "blockquote":
		return parseQuote(n)
	case "table":
		return parseTable(n)
	case "hr":
		return &edtypes.HorizontalRule{}
	case "img":
		if img := getImage(n); img != nil {
			return img
		}
		return nil
	case "div", "figure", "section", "article":
		if isBlockNode(n) {
			if b := parseBlock(n); b != nil {
				return b
			}
			return nil
		}
		if isContainer(n) {
			return nil
		}
		p := &edtypes.Paragraph{Align: toTextAlign(parseStyles(n)["text-align"])}
		p.Content = parseInlineChildren(n)
		return p
	}
	return nil
}

func parseParagraph(n *html.Node) *edtypes.Paragraph {
	p := &edtypes.Paragraph{
		Align:  toTextAlign(parseStyles(n)["text-align"]),
		Indent: parseIndent(getAttrValue(n, "class")),
	}
	p.Content = parseInlineChildren(n)
	return p
}

func parseIndent(class string) int {
	for c := range strings.FieldsSeq(class) {
		if v, ok := strings.CutPrefix(c, "tt-indent-"); ok {
			i, _ := strconv.Atoi(v)
			return i
		}
	}
	return 0
}

func parseInlineChildren(n *html.Node) []any {
	content := []any{}
	for c := range iterNodes(n) {
		parseInline(c, edtypes.Text{}, &content)
	}
	edtypes.Normalize(&content)
	return content
}

// parseInline рекурсивно собирает текст, накапливая отметки родительских элементов.
func parseInline(n *html.Node, marks edtypes.Text, out *[]any) {
	switch n.Type {
	case html.TextNode:
		t := marks
		t.Content = n.Data
		t.CommentIds = slices.Clone(marks.CommentIds)
		*out = append(*out, t)
		return
	case html.ElementNode:
	default:
		return
	}

	switch n.Data {
	case "br":
		*out = append(*out, &edtypes.HardBreak{})
		return
	case "img":
		if img := getImage(n); img != nil {
			*out = append(*out, img)
		}
		return
	case "span":
		if getAttrValue(n, "data-type") == string(edtypes.VariableBlock) {
			if b, ok := parseBlock(n).(*edtypes.Variable); ok {
				*out = append(*out, b)
			}
			return
		}
	case "script", "style":
		return
	}

	applyElementMarks(n, &marks)
	for c := range iterNodes(n) {
		parseInline(c, marks, out)
	}
}

func applyElementMarks(n *html.Node, t *edtypes.Text) {
	switch n.Data {
	case "strong", "b":
		t.Strong = true
	case "em", "i":
		t.Italic = true
	case "u":
		t.Underlined = true
	case "s", "strike", "del":
		t.Strikethrough = true
	case "code":
		t.Code = true
	case "a":
		if u, err := url.Parse(getAttrValue(n, "href")); err == nil && getAttrValue(n, "href") != "" {
			t.URL = u
		}
	case "mark":
		colorRaw := getAttrValue(n, "data-color")
		if colorRaw == "" {
			colorRaw = parseStyles(n)["background-color"]
		}
		if c, err := edtypes.ParseColor(colorRaw); err == nil {
			t.BgColor = &c
		}
	case "span":
		if id := getAttrValue(n, "data-comment-id"); id != "" && !t.HasComment(id) {
			t.CommentIds = append(slices.Clone(t.CommentIds), id)
		}
		styles := parseStyles(n)
		if c, err := edtypes.ParseColor(styles["color"]); err == nil {
			t.Color = &c
		}
		if c, err := edtypes.ParseColor(styles["background-color"]); err == nil {
			t.BgColor = &c
		}
	}
}

// parseBlock восстанавливает пользовательский блок из data-type и data-attrs.
func parseBlock(n *html.Node) edtypes.Block {
	t := edtypes.BlockType(getAttrValue(n, "data-type"))
	b := edtypes.NewBlock(t)
	if b == nil {
		return nil
	}
	raw := getAttrValue(n, "data-attrs")
	if raw == "" {
		slog.Warn("Block without data-attrs", "type", t)
		return nil
	}
	if err := json.Unmarshal([]byte(raw), b); err != nil {
		slog.Warn("Unmarshal block data-attrs", "type", t, "err", err)
		return nil
	}
	return b
}

// isContainer сообщает, что элемент только группирует узлы верхнего уровня,
// его содержимое поднимается на верхний уровень.
func isContainer(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.Data {
	case "div", "figure", "section", "article":
	default:
		return false
	}
	if isBlockNode(n) {
		return false
	}
	return n.Data != "div" || hasBlockChildren(n)
}

func isBlockNode(n *html.Node) bool {
	return n.Type == html.ElementNode && edtypes.NewBlock(edtypes.BlockType(getAttrValue(n, "data-type"))) != nil
}

func hasBlockChildren(n *html.Node) bool {
	for c := range iterNodes(n) {
		if parseElement(c) != nil {
			return true
		}
	}
	return false
}

func parseCode(n *html.Node) *edtypes.Code {
	code := &edtypes.Code{}
	if c := findElementByTagName(n, "code"); c != nil {
		if lang, ok := strings.CutPrefix(getAttrValue(c, "class"), "language-"); ok {
			code.Language = lang
		}
		code.Content = getText(c)
		return code
	}
	code.Content = getText(n)
	return code
}

func parseList(n *html.Node) *edtypes.List {
	l := &edtypes.List{
		Numbered: n.Data == "ol",
		TaskList: getAttrValue(n, "data-type") == "taskList",
	}

	for li := range iterNodes(n) {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		l.Elements = append(l.Elements, parseListElement(li))
	}
	return l
}

func parseListElement(n *html.Node) edtypes.ListElement {
	el := edtypes.ListElement{Checked: getAttrValue(n, "data-checked") == "true"}
	el.Content = parseParagraphs(n)
	return el
}

func parseQuote(n *html.Node) *edtypes.Quote {
	return &edtypes.Quote{Content: parseParagraphs(n)}
}

// parseParagraphs собирает содержимое контейнера в параграфы. Текст вне <p>
// становится отдельным параграфом.
func parseParagraphs(n *html.Node) []edtypes.Paragraph {
	var res []edtypes.Paragraph
	var inline []any
	flush := func() {
		edtypes.Normalize(&inline)
		if len(inline) > 0 {
			res = append(res, edtypes.Paragraph{Content: inline})
		}
		inline = nil
	}

	for c := range iterNodes(n) {
		if c.Type == html.ElementNode && c.Data == "p" {
			flush()
			res = append(res, *parseParagraph(c))
			continue
		}
		if c.Type == html.TextNode && strings.TrimSpace(c.Data) == "" {
			continue
		}
		parseInline(c, edtypes.Text{}, &inline)
	}
	flush()
	return res
}

func parseTable(n *html.Node) *edtypes.Table {
	t := &edtypes.Table{}

	var rows []*html.Node
	for c := range iterNodes(n) {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "tr":
			rows = append(rows, c)
		case "thead", "tbody", "tfoot":
			for r := range iterNodes(c) {
				if r.Type == html.ElementNode && r.Data == "tr" {
					rows = append(rows, r)
				}
			}
		}
	}

	for _, tr := range rows {
		var row []edtypes.TableCell
		for td := range iterNodes(tr) {
			if td.Type != html.ElementNode || (td.Data != "td" && td.Data != "th") {
				continue
			}
			cell := edtypes.TableCell{
				Header:  td.Data == "th",
				ColSpan: 1,
				RowSpan: 1,
			}
			if v, err := strconv.Atoi(getAttrValue(td, "colspan")); err == nil && v > 0 {
				cell.ColSpan = v
			}
			if v, err := strconv.Atoi(getAttrValue(td, "rowspan")); err == nil && v > 0 {
				cell.RowSpan = v
			}
			cell.Content = parseParagraphs(td)
			row = append(row, cell)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func getImage(n *html.Node) *edtypes.Image {
	src, err := url.Parse(getAttrValue(n, "src"))
	if err != nil || getAttrValue(n, "src") == "" {
		return nil
	}
	img := &edtypes.Image{Src: src}
	styles := parseStyles(n)
	if w, ok := strings.CutSuffix(styles["width"], "px"); ok {
		img.Width, _ = strconv.Atoi(w)
	}
	img.Align = toTextAlign(styles["text-align"])
	return img
}

func getText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := range iterNodes(n) {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func toTextAlign(s string) edtypes.TextAlign {
	switch strings.TrimSpace(s) {
	case "center":
		return edtypes.CenterAlign
	case "right":
		return edtypes.RightAlign
	case "justify":
		return edtypes.JustifyAlign
	}
	return edtypes.LeftAlign
}

func parseStyles(n *html.Node) map[string]string {
	res := make(map[string]string)
	for decl := range strings.SplitSeq(getAttrValue(n, "style"), ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		res[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return res
}

func findElementByTagName(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := range iterNodes(n) {
		if res := findElementByTagName(c, tag); res != nil {
			return res
		}
	}
	return nil
}

func getBody(n *html.Node) *html.Node {
	return findElementByTagName(n, "body")
}

// iterNodes перебирает прямых потомков узла.
func iterNodes(n *html.Node) func(func(*html.Node) bool) {
	return func(yield func(*html.Node) bool) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !yield(c) {
				return
			}
		}
	}
}

func getAttrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
