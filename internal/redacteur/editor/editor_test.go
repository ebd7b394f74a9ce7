package editor

import (
	"strings"
	"testing"
	"time"

	"github.com/aisa-it/redacteur/internal/redacteur/chart"
	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
	"github.com/aisa-it/redacteur/internal/redacteur/editor/tiptap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const blocksDocument = `{"type":"doc","content":[
	{"type":"heading","attrs":{"level":2},"content":[{"type":"text","text":"Synthèse"}]},
	{"type":"paragraph","content":[
		{"type":"text","text":"Chiffre "},
		{"type":"text","text":"important","marks":[{"type":"bold"},{"type":"comment","attrs":{"commentId":"c1"}}]},
		{"type":"text","text":" pour "},
		{"type":"variable","attrs":{"id":"v1","type":"custom","customKey":"site","customValue":"Lyon"}}
	]},
	{"type":"formula","attrs":{"id":"f1","formula":"A*2","variables":{"A":21},"format":"number","decimals":0,"result":42}},
	{"type":"dataFetch","attrs":{"id":"d1","source":"api","endpoint":"/ventes","fields":["nom","total"],"refresh":0,"cache":true,"displayAs":"table","data":[{"nom":"Nord","total":3}]}},
	{"type":"chart","attrs":{"id":"c1","chartType":"bar","dataSource":"manual","data":[],"xAxisKey":"mois","dataKeys":[],"colors":[],"title":"Ventes","showLegend":true,"showGrid":true}},
	{"type":"signature","attrs":{"id":"s1","signatory":"Jeanne Martin","role":"Directrice","required":true}},
	{"type":"reference","attrs":{"id":"r1","referenceType":"external","referenceId":"https://example.com/rapport","referenceTitle":"Rapport annuel","displayAs":"link"}}
]}`

func parseBlocksDocument(t *testing.T) *edtypes.Document {
	doc, err := tiptap.ParseJSON(strings.NewReader(blocksDocument))
	require.NoError(t, err)
	return doc
}

func TestRenderBlocks(t *testing.T) {
	doc := parseBlocksDocument(t)

	out, err := RenderHTML(doc, RenderOptions{Now: time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)})
	require.NoError(t, err)

	tests := []struct {
		name string
		want string
	}{
		{"heading", "<h2>Synthèse</h2>"},
		{"comment highlight", `<span class="comment-highlight" data-comment-id="c1"><strong>important</strong></span>`},
		{"variable value", `>Lyon</span>`},
		{"formula container", `data-type="formula" data-block-id="f1"`},
		{"formula value", `<span class="formula-result">42</span>`},
		{"data table header", "<th>nom</th><th>total</th>"},
		{"data table row", "<td>Nord</td><td>3</td>"},
		{"chart title", "<figcaption>Ventes</figcaption>"},
		{"chart empty", chart.EmptyPlaceholder},
		{"signature placeholder", UnsignedPlaceholder},
		{"signature warning", `class="signature-warning"`},
		{"reference link", `>Rapport annuel</a>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestRenderDataFetchError(t *testing.T) {
	doc := &edtypes.Document{Elements: []any{
		&edtypes.DataFetch{
			ID:        "d1",
			Source:    edtypes.SourceAPI,
			Endpoint:  "/ventes",
			DisplayAs: edtypes.DisplayList,
			Data:      []edtypes.Row{{"nom": "Nord"}},
			Error:     "Erreur HTTP 500",
		},
		&edtypes.DataFetch{ID: "d2", Source: edtypes.SourceAPI, DisplayAs: edtypes.DisplayTable},
	}}

	out, err := RenderHTML(doc, RenderOptions{})
	require.NoError(t, err)

	assert.Contains(t, out, `<div class="block-error">Erreur HTTP 500</div>`)
	assert.Contains(t, out, "<li>nom: Nord</li>")
	assert.Contains(t, out, EmptyDataPlaceholder)
}

func TestRenderResolvedComment(t *testing.T) {
	doc := &edtypes.Document{Elements: []any{
		&edtypes.Paragraph{Content: []any{
			edtypes.Text{Content: "relu", CommentIds: []string{"c1", "c2"}},
		}},
	}}

	out, err := RenderHTML(doc, RenderOptions{Resolved: func(id string) bool { return id == "c2" }})
	require.NoError(t, err)

	assert.Equal(t, `<p><span class="comment-highlight" data-comment-id="c1"><span class="comment-resolved" data-comment-id="c2">relu</span></span></p>`, out)
}

func TestRenderStatic(t *testing.T) {
	doc := parseBlocksDocument(t)

	out, err := RenderHTML(doc, RenderOptions{Static: true})
	require.NoError(t, err)

	assert.NotContains(t, out, "data-attrs")
	assert.Contains(t, out, "pour Lyon")
}

func TestRenderSanitizesText(t *testing.T) {
	doc := &edtypes.Document{Elements: []any{
		&edtypes.Paragraph{Content: []any{edtypes.Text{Content: "<script>alert(1)</script>"}}},
	}}

	out, err := RenderHTML(doc, RenderOptions{})
	require.NoError(t, err)
	assert.Equal(t, "<p>&lt;script&gt;alert(1)&lt;/script&gt;</p>", out)
}

func TestRenderParseRoundTrip(t *testing.T) {
	doc := parseBlocksDocument(t)

	out, err := RenderHTML(doc, RenderOptions{})
	require.NoError(t, err)

	parsed, err := ParseDocument(strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, parsed.Elements, len(doc.Elements))

	for i := 2; i < len(doc.Elements); i++ {
		assert.Equal(t, doc.Elements[i], parsed.Elements[i], "element %d", i)
	}

	p, ok := parsed.Elements[1].(*edtypes.Paragraph)
	require.True(t, ok)
	require.Len(t, p.Content, 4)
	marked := p.Content[1].(edtypes.Text)
	assert.Equal(t, "important", marked.Content)
	assert.True(t, marked.Strong)
	assert.Equal(t, []string{"c1"}, marked.CommentIds)
	assert.Equal(t, doc.FindBlock("v1"), p.Content[3])
}

func TestParseDocument(t *testing.T) {
	in := `<div><h2 style="text-align: center">Titre</h2><p class="tt-indent-2">Texte <b>gras</b><br>suite</p></div>` +
		`<ul data-type="taskList"><li data-checked="true"><p>Fait</p></li><li>Reste</li></ul>` +
		`<table><tr><th>A</th><td colspan="2">B</td></tr></table>` +
		`<pre><code class="language-sql">SELECT 1</code></pre>` +
		`texte libre <span style="color: #ff0000">rouge</span>`

	doc, err := ParseDocument(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, doc.Elements, 6)

	h := doc.Elements[0].(*edtypes.Heading)
	assert.Equal(t, 2, h.Level)
	assert.Equal(t, edtypes.CenterAlign, h.Align)

	p := doc.Elements[1].(*edtypes.Paragraph)
	assert.Equal(t, 2, p.Indent)
	require.Len(t, p.Content, 4)
	assert.True(t, p.Content[1].(edtypes.Text).Strong)
	assert.IsType(t, &edtypes.HardBreak{}, p.Content[2])

	l := doc.Elements[2].(*edtypes.List)
	assert.True(t, l.TaskList)
	require.Len(t, l.Elements, 2)
	assert.True(t, l.Elements[0].Checked)
	assert.Equal(t, "Reste", l.Elements[1].Content[0].Content[0].(edtypes.Text).Content)

	table := doc.Elements[3].(*edtypes.Table)
	require.Len(t, table.Rows, 1)
	assert.True(t, table.Rows[0][0].Header)
	assert.Equal(t, 2, table.Rows[0][1].ColSpan)

	code := doc.Elements[4].(*edtypes.Code)
	assert.Equal(t, "sql", code.Language)
	assert.Equal(t, "SELECT 1", code.Content)

	loose := doc.Elements[5].(*edtypes.Paragraph)
	require.Len(t, loose.Content, 2)
	red := loose.Content[1].(edtypes.Text)
	require.NotNil(t, red.Color)
	assert.Equal(t, "#ff0000", red.Color.Hex())
}

func TestParseDocumentBrokenBlock(t *testing.T) {
	doc, err := ParseDocument(strings.NewReader(`<div data-type="chart" data-attrs="{broken"><p>x</p></div><p>ok</p>`))
	require.NoError(t, err)

	require.Len(t, doc.Elements, 1)
	assert.IsType(t, &edtypes.Paragraph{}, doc.Elements[0])
}
