package tiptap

import (
	"strings"
	"testing"

	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullDocument = `{"type":"doc","content":[
	{"type":"heading","attrs":{"level":1},"content":[{"type":"text","text":"Rapport mensuel"}]},
	{"type":"paragraph","content":[
		{"type":"text","text":"Chiffre "},
		{"type":"text","text":"important","marks":[{"type":"bold"},{"type":"comment","attrs":{"commentId":"c1"}}]},
		{"type":"hardBreak"},
		{"type":"variable","attrs":{"id":"v1","type":"custom","customKey":"site","customValue":"Lyon"}}
	]},
	{"type":"blockquote","content":[{"type":"paragraph","content":[{"type":"text","text":"Citation"}]}]},
	{"type":"taskList","content":[{"type":"taskItem","attrs":{"checked":true},"content":[{"type":"paragraph","content":[{"type":"text","text":"Fait"}]}]}]},
	{"type":"table","content":[{"type":"tableRow","content":[
		{"type":"tableHeader","content":[{"type":"paragraph","content":[{"type":"text","text":"Mois"}]}]},
		{"type":"tableCell","attrs":{"colspan":2},"content":[{"type":"paragraph","content":[{"type":"text","text":"Jan"}]}]}
	]}]},
	{"type":"codeBlock","attrs":{"language":"sql"},"content":[{"type":"text","text":"SELECT 1"}]},
	{"type":"horizontalRule"},
	{"type":"formula","attrs":{"id":"f1","formula":"A*2","variables":{"A":21},"format":"number","decimals":0,"result":42}}
]}`

func TestRoundTrip(t *testing.T) {
	doc, err := ParseJSON(strings.NewReader(fullDocument))
	require.NoError(t, err)
	require.Len(t, doc.Elements, 8)

	data, err := Serialize(doc)
	require.NoError(t, err)

	again, err := ParseJSON(strings.NewReader(string(data)))
	require.NoError(t, err)
	require.Len(t, again.Elements, len(doc.Elements))

	for i := range doc.Elements {
		assert.IsType(t, doc.Elements[i], again.Elements[i], "element %d", i)
	}

	p := again.Elements[1].(*edtypes.Paragraph)
	marked := p.Content[1].(edtypes.Text)
	assert.True(t, marked.Strong)
	assert.Equal(t, []string{"c1"}, marked.CommentIds)
	assert.Equal(t, "Lyon", p.Content[3].(*edtypes.Variable).CustomValue)

	table := again.Elements[4].(*edtypes.Table)
	assert.True(t, table.Rows[0][0].Header)
	assert.Equal(t, 2, table.Rows[0][1].ColSpan)

	f := again.Elements[7].(*edtypes.Formula)
	require.NotNil(t, f.Result)
	assert.Equal(t, 42.0, *f.Result)

	// Повторная сериализация стабильна
	data2, err := Serialize(again)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(data2))
}

func TestDocumentJSONRegistration(t *testing.T) {
	var doc edtypes.Document
	require.NoError(t, doc.UnmarshalJSON([]byte(fullDocument)))
	assert.Len(t, doc.Elements, 8)

	v, err := doc.Value()
	require.NoError(t, err)
	assert.Contains(t, string(v.([]byte)), `"type":"formula"`)

	var scanned edtypes.Document
	require.NoError(t, scanned.Scan(v))
	assert.Len(t, scanned.Elements, 8)

	require.NoError(t, scanned.Scan(nil))
	assert.Empty(t, scanned.Elements)
}
