package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
	"github.com/aisa-it/redacteur/internal/redacteur/editor/tiptap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exportDocument = `{"type":"doc","content":[
	{"type":"heading","attrs":{"level":1},"content":[{"type":"text","text":"Bilan"}]},
	{"type":"paragraph","content":[
		{"type":"text","text":"Rédigé par "},
		{"type":"variable","attrs":{"id":"v1","type":"system","systemVariable":"author"}},
		{"type":"text","text":" le "},
		{"type":"variable","attrs":{"id":"v2","type":"system","systemVariable":"date"}},
		{"type":"text","text":", page "},
		{"type":"variable","attrs":{"id":"v3","type":"system","systemVariable":"page"}}
	]},
	{"type":"bulletList","content":[{"type":"listItem","content":[{"type":"paragraph","content":[{"type":"text","text":"Point","marks":[{"type":"bold"}]}]}]}]},
	{"type":"formula","attrs":{"id":"f1","formula":"A/B","variables":{"A":1,"B":4},"format":"percentage","decimals":1,"result":25}},
	{"type":"dataFetch","attrs":{"id":"d1","source":"api","endpoint":"/ventes","fields":["nom","total"],"refresh":0,"cache":true,"displayAs":"table","data":[{"nom":"Nord","total":3},{"nom":"Sud","total":5}]}},
	{"type":"chart","attrs":{"id":"c1","chartType":"line","dataSource":"manual","data":[{"mois":"Jan","ventes":10}],"xAxisKey":"mois","dataKeys":["ventes"],"colors":[],"title":"Ventes","showLegend":true,"showGrid":true}},
	{"type":"signature","attrs":{"id":"s1","signatory":"Jeanne Martin","role":"Directrice","required":true}},
	{"type":"reference","attrs":{"id":"r1","referenceType":"document","referenceId":"42","referenceTitle":"Annexe","displayAs":"link"}}
]}`

var exportMeta = Meta{
	Title:  "Rapport <T1>",
	Author: "Jeanne Martin",
	Date:   time.Date(2024, 3, 12, 9, 30, 0, 0, time.UTC),
}

func loadExportDocument(t *testing.T) *edtypes.Document {
	doc, err := tiptap.ParseJSON(strings.NewReader(exportDocument))
	require.NoError(t, err)
	return doc
}

func TestTemplaterFill(t *testing.T) {
	tm := NewTemplater(exportMeta)

	tests := []struct {
		in    string
		page  int
		pages int
		want  string
	}{
		{in: "{{author}} / {{document}}", want: "Jeanne Martin / Rapport <T1>"},
		{in: "{{date}} {{datetime}}", want: "12/03/2024 12/03/2024 09:30"},
		{in: "{{page}}/{{pages}}", page: 2, pages: 5, want: "2/5"},
		{in: "{{page}}/{{pages}}", page: 3, pages: -1, want: "3/{nb}"},
		{in: "{{inconnu}}", want: "{{inconnu}}"},
		{in: "sans variable", want: "sans variable"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, tm.Fill(tt.in, tt.page, tt.pages))
		})
	}
}

func TestHTML(t *testing.T) {
	doc := loadExportDocument(t)

	var buf bytes.Buffer
	require.NoError(t, HTML(doc, exportMeta, &buf, HTMLOptions{}))
	out := buf.String()

	assert.Contains(t, out, "<title>Rapport &lt;T1&gt;</title>")
	assert.Contains(t, out, "Rédigé par Jeanne Martin le 12/03/2024, page 1")
	assert.Contains(t, out, "25,0")
	assert.Contains(t, out, "<td>Sud</td><td>5</td>")
	assert.NotContains(t, out, "data-attrs")
	assert.NotContains(t, out, "{{")
}

func TestHTMLEditableMinified(t *testing.T) {
	doc := loadExportDocument(t)

	var plain, minified bytes.Buffer
	require.NoError(t, HTML(doc, exportMeta, &plain, HTMLOptions{Editable: true}))
	require.NoError(t, HTML(doc, exportMeta, &minified, HTMLOptions{Editable: true, Minify: true}))

	assert.Contains(t, plain.String(), "data-attrs")
	assert.Less(t, minified.Len(), plain.Len())
	assert.NotContains(t, minified.String(), "\n  <article")
}

func TestMarkdown(t *testing.T) {
	doc := loadExportDocument(t)

	var buf bytes.Buffer
	require.NoError(t, Markdown(doc, exportMeta, &buf))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "# Rapport <T1>"))
	assert.Contains(t, out, "# Bilan")
	assert.Contains(t, out, "Rédigé par Jeanne Martin le 12/03/2024, page 1")
	assert.Contains(t, out, "**Point**")
	assert.Contains(t, out, "Nord")
	assert.Contains(t, out, "**Ventes**")
	assert.Contains(t, out, "*Signature obligatoire*")
	assert.Contains(t, out, "[Annexe](/documents/42)")
}

func TestPDF(t *testing.T) {
	doc := loadExportDocument(t)

	var buf bytes.Buffer
	require.NoError(t, PDF(doc, exportMeta, &buf, PDFOptions{}))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 1000)
}

func TestPDFEmptyDocument(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PDF(&edtypes.Document{}, Meta{}, &buf, PDFOptions{}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}
