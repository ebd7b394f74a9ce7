package export

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"codeberg.org/go-pdf/fpdf"
	"github.com/aisa-it/redacteur/internal/redacteur/chart"
	datafetch "github.com/aisa-it/redacteur/internal/redacteur/data-fetch"
	"github.com/aisa-it/redacteur/internal/redacteur/editor"
	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
	"github.com/aisa-it/redacteur/internal/redacteur/formula"
	"github.com/aisa-it/redacteur/internal/redacteur/reference"
	"github.com/aisa-it/redacteur/internal/redacteur/signature"
	"github.com/aisa-it/redacteur/internal/redacteur/variable"
	"github.com/hashicorp/go-retryablehttp"
)

const (
	fontFamily = "Helvetica"
	codeFamily = "Courier"
	textSize   = 11.0

	// fpdf заменяет алиас на число страниц при выводе
	totalPagesAlias = "{nb}"

	signatureWidth = 50.0
)

var headingSizes = map[int]float64{1: 20, 2: 17, 3: 15, 4: 13, 5: 12, 6: 11}

// PDFOptions задает загрузку внешних изображений. Без Client изображения
// по ссылкам пропускаются, подписи (data URL) выводятся всегда.
type PDFOptions struct {
	Client  *retryablehttp.Client
	BaseURL *url.URL
}

type pdfWriter struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	t      *Templater
	opts   PDFOptions
	locale string

	defaultMargins Margins
}

type Margins struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

func (m *Margins) GetMargins(pdf fpdf.Pdf) {
	m.Left, m.Top, m.Right, m.Bottom = pdf.GetMargins()
}

// PDF выгружает документ в PDF. Используются стандартные шрифты с кодировкой
// cp1252, символы вне нее не выводятся.
func PDF(doc *edtypes.Document, meta Meta, out io.Writer, opts PDFOptions) error {
	pdf := fpdf.New("P", "mm", "A4", "") // 210*297 mm

	w := pdfWriter{
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		t:      NewTemplater(meta),
		opts:   opts,
		locale: meta.Locale,
	}
	if w.locale == "" {
		w.locale = formula.DefaultLocale
	}
	w.defaultMargins.GetMargins(pdf)

	pdf.SetTitle(meta.Title, true)
	pdf.SetAuthor(meta.Author, true)
	pdf.SetCreator("redacteur", true)
	pdf.AliasNbPages(totalPagesAlias)

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(fontFamily, "I", 8)
		pdf.SetTextColor(71, 74, 82)
		pdf.CellFormat(0, 10, fmt.Sprintf("%d / %s", pdf.PageNo(), totalPagesAlias), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	if meta.Title != "" {
		pdf.Bookmark(w.tr(meta.Title), 0, -1)
		pdf.SetFont(fontFamily, "B", 22)
		pdf.SetTextColor(0, 0, 0)
		pdf.MultiCell(0, 10, w.tr(meta.Title), "", "L", false)
		pdf.SetFont(fontFamily, "", 9)
		pdf.SetTextColor(71, 74, 82)
		info := meta.Author
		if info != "" {
			info += " - "
		}
		info += w.t.Now().Format(variable.DateLayout)
		pdf.MultiCell(0, 5, w.tr(info), "", "L", false)
		pdf.Line(pdf.GetX(), pdf.GetY()+2, 200, pdf.GetY()+2)
		pdf.Ln(6)
	}

	for _, elem := range doc.Elements {
		w.writeElement(elem)
		w.resetMargins()
	}

	return pdf.Output(out)
}

func (w *pdfWriter) writeElement(elem any) {
	switch el := elem.(type) {
	case *edtypes.Paragraph:
		w.writeParagraph(el, textSize)
	case *edtypes.Heading:
		size, ok := headingSizes[el.Level]
		if !ok {
			size = textSize
		}
		w.pdf.Ln(2)
		w.pdf.Bookmark(w.tr(plainText(el.Content)), max(el.Level-1, 0), -1)
		w.writeInline(el.Content, size, "B")
		w.pdf.Ln(-1)
		w.pdf.Ln(2)
	case *edtypes.Code:
		w.pdf.SetFont(codeFamily, "", 9)
		w.pdf.SetTextColor(0, 0, 0)
		w.pdf.SetFillColor(240, 240, 244)
		w.pdf.MultiCell(0, 4.5, w.tr(el.Content), "", "L", true)
		w.pdf.Ln(2)
	case *edtypes.Quote:
		w.pdf.Ln(2)
		y1 := w.pdf.GetY()
		w.pdf.SetLeftMargin(w.defaultMargins.Left + 3)
		for i := range el.Content {
			w.writeParagraph(&el.Content[i], textSize)
		}
		w.pdf.SetLeftMargin(w.defaultMargins.Left)

		w.pdf.SetLineWidth(0.5)
		w.pdf.SetDrawColor(74, 71, 82)
		w.pdf.Line(w.defaultMargins.Left+1, y1, w.defaultMargins.Left+1, w.pdf.GetY())
		w.pdf.SetLineWidth(0.2)
		w.pdf.Ln(2)
	case *edtypes.List:
		w.writeList(el)
	case *edtypes.Image:
		w.writeImage(el)
		w.pdf.Ln(-1)
	case *edtypes.Table:
		w.writeTable(el)
	case *edtypes.HorizontalRule:
		w.pdf.Ln(2)
		w.pdf.SetDrawColor(200, 200, 200)
		w.pdf.Line(w.defaultMargins.Left, w.pdf.GetY(), 200, w.pdf.GetY())
		w.pdf.Ln(4)
	case edtypes.Block:
		w.writeBlock(el)
	default:
		slog.Warn("Unknown element type for pdf export", "type", fmt.Sprintf("%T", el))
	}
}

func (w *pdfWriter) writeParagraph(p *edtypes.Paragraph, size float64) {
	if p.Indent > 0 {
		w.pdf.SetLeftMargin(w.defaultMargins.Left + float64(p.Indent)*6)
		w.pdf.SetX(w.defaultMargins.Left + float64(p.Indent)*6)
	}
	w.writeInline(p.Content, size, "")
	w.pdf.Ln(-1)
	w.pdf.Ln(1.5)
	w.pdf.SetLeftMargin(w.defaultMargins.Left)
}

func (w *pdfWriter) writeInline(content []any, size float64, baseStyle string) {
	if len(content) == 0 {
		w.pdf.SetFont(fontFamily, baseStyle, size)
		return
	}
	for _, c := range content {
		switch c := c.(type) {
		case edtypes.Text:
			w.writeText(c, size, baseStyle)
		case *edtypes.HardBreak:
			w.pdf.Ln(-1)
		case *edtypes.Image:
			w.writeImage(c)
		case *edtypes.Variable:
			value := w.t.Fill(variable.Display(c, w.t.Now()), w.pdf.PageNo(), -1)
			w.writeText(edtypes.Text{Content: value}, size, baseStyle)
		}
	}
}

func (w *pdfWriter) writeText(t edtypes.Text, size float64, baseStyle string) {
	family := fontFamily
	if t.Code {
		family = codeFamily
	}
	style := baseStyle
	if t.Strong && !strings.Contains(style, "B") {
		style += "B"
	}
	if t.Italic {
		style += "I"
	}
	if t.Underlined || t.URL != nil {
		style += "U"
	}
	if t.Strikethrough {
		style += "S"
	}
	w.pdf.SetFont(family, style, size)

	switch {
	case t.Color != nil:
		w.pdf.SetTextColor(int(t.Color.R), int(t.Color.G), int(t.Color.B))
	case t.URL != nil:
		w.pdf.SetTextColor(37, 99, 235)
	default:
		w.pdf.SetTextColor(0, 0, 0)
	}

	_, h := w.pdf.GetFontSize()
	h += 1.2
	text := w.tr(t.Content)

	if t.BgColor != nil {
		w.pdf.SetFillColor(int(t.BgColor.R), int(t.BgColor.G), int(t.BgColor.B))
		x := w.pdf.GetX()
		w.pdf.CellFormat(w.pdf.GetStringWidth(text), h, "", "", 0, "L", true, 0, "")
		w.pdf.SetX(x)
	}

	link := ""
	if t.URL != nil {
		link = w.absoluteURL(t.URL.String())
	}
	w.pdf.WriteLinkString(h, text, link)
}

func (w *pdfWriter) writeList(l *edtypes.List) {
	for i, e := range l.Elements {
		w.pdf.SetFont(fontFamily, "", textSize)
		w.pdf.SetTextColor(0, 0, 0)
		_, h := w.pdf.GetFontSize()
		w.pdf.SetX(w.defaultMargins.Left + 2)

		switch {
		case l.TaskList && e.Checked:
			w.pdf.Write(h+1.2, "[x]")
		case l.TaskList:
			w.pdf.Write(h+1.2, "[ ]")
		case l.Numbered:
			w.pdf.Write(h+1.2, fmt.Sprintf("%d.", i+1))
		default:
			w.pdf.Write(h+1.2, w.tr("•"))
		}

		w.pdf.SetLeftMargin(w.defaultMargins.Left + 9)
		for j := range e.Content {
			w.pdf.SetX(w.defaultMargins.Left + 9)
			w.writeInline(e.Content[j].Content, textSize, "")
			w.pdf.Ln(-1)
		}
		w.pdf.SetLeftMargin(w.defaultMargins.Left)
	}
	w.pdf.Ln(2)
}

func (w *pdfWriter) writeTable(t *edtypes.Table) {
	if len(t.Rows) == 0 {
		return
	}
	var header []string
	var rows [][]string
	for i, row := range t.Rows {
		r := make([]string, 0, len(row))
		isHeader := true
		for _, cell := range row {
			isHeader = isHeader && cell.Header
			r = append(r, w.cellText(cell.Content))
			for k := 1; k < cell.ColSpan; k++ {
				r = append(r, "")
			}
		}
		if i == 0 && isHeader {
			header = r
			continue
		}
		rows = append(rows, r)
	}
	w.grid(header, rows)
}

func (w *pdfWriter) cellText(ps []edtypes.Paragraph) string {
	parts := make([]string, 0, len(ps))
	for _, p := range ps {
		parts = append(parts, w.inlineText(p.Content))
	}
	return strings.Join(parts, "\n")
}

func (w *pdfWriter) inlineText(content []any) string {
	var sb strings.Builder
	for _, c := range content {
		switch c := c.(type) {
		case edtypes.Text:
			sb.WriteString(c.Content)
		case *edtypes.HardBreak:
			sb.WriteString("\n")
		case *edtypes.Variable:
			sb.WriteString(w.t.Fill(variable.Display(c, w.t.Now()), w.pdf.PageNo(), -1))
		}
	}
	return sb.String()
}

// grid рисует таблицу с колонками равной ширины. Высота строки - по самой
// высокой ячейке.
func (w *pdfWriter) grid(header []string, rows [][]string) {
	cols := len(header)
	for _, r := range rows {
		cols = max(cols, len(r))
	}
	if cols == 0 {
		return
	}

	pageW, pageH := w.pdf.GetPageSize()
	l, _, r, b := w.pdf.GetMargins()
	colW := (pageW - l - r) / float64(cols)
	const lineH = 5.0

	drawRow := func(cells []string, head bool) {
		style, rectStyle := "", "D"
		if head {
			style, rectStyle = "B", "FD"
			w.setHexFillColor("#e5edfa")
		}
		w.pdf.SetFont(fontFamily, style, 9)
		w.pdf.SetTextColor(0, 0, 0)
		w.pdf.SetDrawColor(71, 74, 82)

		lines := make([][]string, cols)
		height := lineH
		for i := range cols {
			text := ""
			if i < len(cells) {
				text = w.tr(cells[i])
			}
			lines[i] = w.pdf.SplitText(text, colW-2)
			height = max(height, float64(len(lines[i]))*lineH)
		}
		height += 2

		if w.pdf.GetY()+height > pageH-b {
			w.pdf.AddPage()
		}

		x, y := w.pdf.GetXY()
		for i := range cols {
			w.pdf.Rect(x+float64(i)*colW, y, colW, height, rectStyle)
			w.pdf.SetXY(x+float64(i)*colW+1, y+1)
			w.pdf.MultiCell(colW-2, lineH, strings.Join(lines[i], "\n"), "", "L", false)
		}
		w.pdf.SetXY(x, y+height)
	}

	if len(header) > 0 {
		drawRow(header, true)
	}
	for _, row := range rows {
		drawRow(row, false)
	}
	w.pdf.Ln(4)
}

func (w *pdfWriter) writeBlock(b edtypes.Block) {
	switch b := b.(type) {
	case *edtypes.DataFetch:
		if b.Error != "" {
			w.note(b.Error, "#dc2626")
		}
		if len(b.Data) == 0 {
			if b.Error == "" {
				w.note(editor.EmptyDataPlaceholder, "#6b7280")
			}
			return
		}
		cols := datafetch.Columns(b, b.Data)
		rows := make([][]string, 0, len(b.Data))
		for _, row := range b.Data {
			r := make([]string, 0, len(cols))
			for _, col := range cols {
				r = append(r, chart.Label(row[col]))
			}
			rows = append(rows, r)
		}
		w.grid(cols, rows)
	case *edtypes.Chart:
		w.writeChart(b)
	case *edtypes.Formula:
		color := "#000000"
		if b.Error != "" {
			color = "#dc2626"
		}
		w.setHexTextColor(color)
		w.pdf.SetFont(fontFamily, "B", textSize)
		_, h := w.pdf.GetFontSize()
		w.pdf.Write(h+1.2, w.tr(formula.Display(b, w.locale)))
		w.pdf.Ln(-1)
		w.pdf.Ln(2)
	case *edtypes.Signature:
		w.writeSignature(b)
	case *edtypes.Reference:
		if b.Error != "" {
			w.note(b.Error, "#dc2626")
		}
		text := edtypes.Text{Content: reference.Label(b)}
		if u := reference.URL(b); u != "" {
			text.URL, _ = url.Parse(w.absoluteURL(u))
		}
		w.writeText(text, textSize, "")
		w.pdf.Ln(-1)
		if b.DisplayAs == edtypes.RefCard && b.Metadata != nil && b.Metadata.Excerpt != "" {
			w.note(b.Metadata.Excerpt, "#4b5563")
		}
		w.pdf.Ln(2)
	case *edtypes.Variable:
		w.writeInline([]any{b}, textSize, "")
		w.pdf.Ln(-1)
	}
}

func (w *pdfWriter) writeChart(c *edtypes.Chart) {
	view := chart.Build(c)
	if view.Title != "" {
		w.pdf.SetFont(fontFamily, "B", 12)
		w.pdf.SetTextColor(0, 0, 0)
		w.pdf.MultiCell(0, 6, w.tr(view.Title), "", "L", false)
	}
	if view.Empty {
		w.note(chart.EmptyPlaceholder, "#6b7280")
		return
	}

	if view.Kind == edtypes.ChartPie {
		for _, s := range view.Slices {
			w.legendItem(s.Color, s.Label)
		}
		w.pdf.Ln(2)
		return
	}

	if view.ShowLegend {
		for _, s := range view.Series {
			w.legendItem(s.Color, s.Key)
		}
	}

	header := []string{c.XAxisKey}
	for _, s := range view.Series {
		header = append(header, s.Key)
	}
	rows := make([][]string, len(c.Data))
	for i := range c.Data {
		label := ""
		if len(view.Series) > 0 {
			label = view.Series[0].Points[i].Label
		}
		rows[i] = []string{label}
		for _, s := range view.Series {
			rows[i] = append(rows[i], chart.Label(s.Points[i].Value))
		}
	}
	w.grid(header, rows)
}

func (w *pdfWriter) legendItem(color, label string) {
	w.setHexFillColor(color)
	x, y := w.pdf.GetXY()
	w.pdf.Rect(x, y+1, 3, 3, "F")
	w.pdf.SetX(x + 5)
	w.pdf.SetFont(fontFamily, "", 9)
	w.pdf.SetTextColor(0, 0, 0)
	w.pdf.MultiCell(0, 5, w.tr(label), "", "L", false)
}

func (w *pdfWriter) writeSignature(s *edtypes.Signature) {
	if s.Signed() {
		if data, err := signature.DecodeDataURL(s.Signature); err == nil {
			name := "signature-" + s.ID
			info := w.pdf.GetImageInfo(name)
			if info == nil {
				info = w.pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "png"}, bytes.NewReader(data))
			}
			if w.pdf.Ok() && info != nil {
				w.pdf.ImageOptions(name, -1, -1, signatureWidth, 0, true, fpdf.ImageOptions{ImageType: "png"}, 0, "")
			} else {
				slog.Warn("Register signature image", "blockId", s.ID, "err", w.pdf.Error())
				w.pdf.ClearError()
			}
		}
	} else {
		w.note(editor.UnsignedPlaceholder, "#6b7280")
	}

	w.pdf.SetFont(fontFamily, "B", 10)
	w.pdf.SetTextColor(0, 0, 0)
	w.pdf.MultiCell(0, 5, w.tr(signatoryLine(s)), "", "L", false)

	if warn := signature.Warning(s); warn != "" {
		w.note(warn, "#d97706")
	}
	w.pdf.Ln(2)
}

// note выводит служебную строку курсивом: ошибки, заглушки, предупреждения.
func (w *pdfWriter) note(text, color string) {
	w.pdf.SetFont(fontFamily, "I", 9)
	w.setHexTextColor(color)
	w.pdf.MultiCell(0, 5, w.tr(text), "", "L", false)
}

func (w *pdfWriter) writeImage(img *edtypes.Image) {
	if img.Src == nil {
		return
	}
	name := img.Src.String()
	if w.pdf.GetImageInfo(name) == nil && !w.registerImage(img) {
		return
	}

	pageW, _ := w.pdf.GetPageSize()
	_, _, r, _ := w.pdf.GetMargins()
	maxWidth := pageW - r - w.pdf.GetX()

	width := maxWidth
	if img.Width > 0 {
		width = min(w.pxToUnit(img.Width), maxWidth)
	}
	w.pdf.ImageOptions(name, -1, -1, width, 0, true, fpdf.ImageOptions{ReadDpi: true}, 0, "")
}

func (w *pdfWriter) registerImage(img *edtypes.Image) bool {
	name := img.Src.String()

	if img.Src.Scheme == "data" {
		data, err := signature.DecodeDataURL(name)
		if err != nil {
			return false
		}
		w.pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "png"}, bytes.NewReader(data))
		return w.checkImage(name)
	}

	if w.opts.Client == nil {
		return false
	}

	resp, err := w.opts.Client.Get(w.absoluteURL(name))
	if err != nil {
		slog.Warn("Fetch image for pdf export", "src", name, "err", err)
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false
	}

	options := fpdf.ImageOptions{ImageType: w.pdf.ImageTypeFromMime(resp.Header.Get("Content-Type")), ReadDpi: true}
	// неподдерживаемый тип изображения
	if options.ImageType == "" {
		w.pdf.ClearError()
		return false
	}
	w.pdf.RegisterImageOptionsReader(name, options, resp.Body)
	return w.checkImage(name)
}

func (w *pdfWriter) checkImage(name string) bool {
	if !w.pdf.Ok() {
		slog.Warn("Register image for pdf export", "src", name, "err", w.pdf.Error())
		w.pdf.ClearError()
		return false
	}
	return true
}

func (w *pdfWriter) absoluteURL(raw string) string {
	if w.opts.BaseURL == nil {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || strings.HasPrefix(raw, "#") {
		return raw
	}
	return w.opts.BaseURL.ResolveReference(u).String()
}

func (w *pdfWriter) pxToUnit(px int) float64 {
	return w.pdf.PointConvert(float64(px) * 0.75)
}

func (w *pdfWriter) setHexFillColor(hex string) {
	c, err := edtypes.ParseColor(hex)
	if err != nil {
		return
	}
	w.pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}

func (w *pdfWriter) setHexTextColor(hex string) {
	c, err := edtypes.ParseColor(hex)
	if err != nil {
		return
	}
	w.pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
}

func (w *pdfWriter) resetMargins() {
	w.pdf.SetMargins(w.defaultMargins.Left, w.defaultMargins.Top, w.defaultMargins.Right)
}

func plainText(content []any) string {
	var sb strings.Builder
	for _, c := range content {
		if t, ok := c.(edtypes.Text); ok {
			sb.WriteString(t.Content)
		}
	}
	return sb.String()
}
