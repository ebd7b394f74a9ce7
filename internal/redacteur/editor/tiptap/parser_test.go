package tiptap

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParagraph(t *testing.T) {
	tests := []struct {
		name       string
		json       string
		wantText   string
		wantIndent int
		wantAlign  edtypes.TextAlign
	}{
		{
			name:      "simple paragraph",
			json:      `{"type":"paragraph","attrs":{"textAlign":"left","indent":null},"content":[{"type":"text","text":"Bonjour"}]}`,
			wantText:  "Bonjour",
			wantAlign: edtypes.LeftAlign,
		},
		{
			name:       "paragraph with indent",
			json:       `{"type":"paragraph","attrs":{"indent":1},"content":[{"type":"text","text":"Indented"}]}`,
			wantText:   "Indented",
			wantIndent: 1,
			wantAlign:  edtypes.LeftAlign,
		},
		{
			name:      "paragraph with center align",
			json:      `{"type":"paragraph","attrs":{"textAlign":"center"},"content":[{"type":"text","text":"Centered"}]}`,
			wantText:  "Centered",
			wantAlign: edtypes.CenterAlign,
		},
		{
			name:      "paragraph with justify",
			json:      `{"type":"paragraph","attrs":{"textAlign":"justify"},"content":[{"type":"text","text":"Justified"}]}`,
			wantText:  "Justified",
			wantAlign: edtypes.JustifyAlign,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var node TipTapNode
			require.NoError(t, json.Unmarshal([]byte(tt.json), &node))

			p := parseParagraph(node)
			require.NotNil(t, p)
			assert.Equal(t, tt.wantIndent, p.Indent)
			assert.Equal(t, tt.wantAlign, p.Align)

			require.NotEmpty(t, p.Content)
			text, ok := p.Content[0].(edtypes.Text)
			require.True(t, ok, "Content[0] is %T", p.Content[0])
			assert.Equal(t, tt.wantText, text.Content)
		})
	}
}

func TestParseMarks(t *testing.T) {
	raw := `{"type":"text","text":"note","marks":[
		{"type":"bold"},
		{"type":"code"},
		{"type":"link","attrs":{"href":"https://example.org"}},
		{"type":"highlight","attrs":{"color":"#ffff00"}},
		{"type":"comment","attrs":{"commentId":"c1"}},
		{"type":"comment","attrs":{"commentId":"c2"}},
		{"type":"comment","attrs":{"commentId":"c1"}}
	]}`

	var node TipTapNode
	require.NoError(t, json.Unmarshal([]byte(raw), &node))

	text := parseText(node)
	assert.True(t, text.Strong)
	assert.True(t, text.Code)
	require.NotNil(t, text.URL)
	assert.Equal(t, "https://example.org", text.URL.String())
	require.NotNil(t, text.BgColor)
	assert.Equal(t, "#ffff00", text.BgColor.Hex())
	assert.Equal(t, []string{"c1", "c2"}, text.CommentIds)
}

func TestParseHeading(t *testing.T) {
	doc, err := ParseJSON(strings.NewReader(`{"type":"doc","content":[
		{"type":"heading","attrs":{"level":2},"content":[{"type":"text","text":"Synthèse"}]},
		{"type":"heading","attrs":{"level":9},"content":[]},
		{"type":"horizontalRule"}
	]}`))
	require.NoError(t, err)
	require.Len(t, doc.Elements, 3)

	h := doc.Elements[0].(*edtypes.Heading)
	assert.Equal(t, 2, h.Level)
	assert.Equal(t, "Synthèse", edtypes.PlainText(h.Content))
	assert.Equal(t, 1, doc.Elements[1].(*edtypes.Heading).Level)
	assert.IsType(t, &edtypes.HorizontalRule{}, doc.Elements[2])
}

func TestParseBlocks(t *testing.T) {
	doc, err := ParseJSON(strings.NewReader(`{"type":"doc","content":[
		{"type":"dataFetch","attrs":{"id":"d1","source":"api","endpoint":"/api/rows","fields":[],"refresh":5,"cache":true,"displayAs":"cards","data":[{"a":1}]}},
		{"type":"chart","attrs":{"id":"c1","chartType":"pie","dataSource":"manual","data":[{"name":"Jan","value":400}],"xAxisKey":"name","yAxisKey":"value","dataKeys":["value"],"colors":[],"title":"Ventes","showLegend":true,"showGrid":false}},
		{"type":"signature","attrs":{"id":"s1","signatory":"Jeanne Martin","role":"Directrice","required":true,"signature":null}},
		{"type":"reference","attrs":{"id":"r1","referenceType":"report","referenceId":"42","displayAs":"card","sectionId":"intro"}},
		{"type":"paragraph","content":[
			{"type":"text","text":"Le "},
			{"type":"variable","attrs":{"id":"v1","type":"system","systemVariable":"date"}}
		]},
		{"type":"mystery","attrs":{}}
	]}`))
	require.NoError(t, err)
	require.Len(t, doc.Elements, 5)

	df := doc.Elements[0].(*edtypes.DataFetch)
	assert.Equal(t, edtypes.SourceAPI, df.Source)
	assert.Equal(t, 5, df.Refresh)
	assert.Equal(t, edtypes.DisplayCards, df.DisplayAs)
	assert.Len(t, df.Data, 1)

	ch := doc.Elements[1].(*edtypes.Chart)
	assert.Equal(t, edtypes.ChartPie, ch.ChartType)
	assert.Equal(t, "value", ch.YAxisKey)

	sig := doc.Elements[2].(*edtypes.Signature)
	assert.True(t, sig.Required)
	assert.False(t, sig.Signed())

	ref := doc.Elements[3].(*edtypes.Reference)
	assert.Equal(t, edtypes.RefReport, ref.ReferenceType)
	assert.Nil(t, ref.Metadata)

	p := doc.Elements[4].(*edtypes.Paragraph)
	require.Len(t, p.Content, 2)
	v := p.Content[1].(*edtypes.Variable)
	assert.Equal(t, "date", v.SystemVariable)

	assert.Len(t, doc.Blocks(), 5)
	assert.Same(t, v, doc.FindBlock("v1"))
}
