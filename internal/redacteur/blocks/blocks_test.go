package blocks

import (
	"encoding/json"
	"testing"

	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogCoversAllBlocks(t *testing.T) {
	require.Len(t, Catalog, len(edtypes.BlockTypes))

	commands := make(map[string]bool)
	for _, bt := range edtypes.BlockTypes {
		e, ok := Lookup(bt)
		require.True(t, ok, bt)
		assert.NotEmpty(t, e.Name)
		assert.NotEmpty(t, e.Icon)
		assert.Contains(t, Categories, e.Category)

		assert.False(t, commands[e.Command], "duplicate command %s", e.Command)
		commands[e.Command] = true

		byCmd, ok := LookupCommand(e.Command)
		require.True(t, ok)
		assert.Equal(t, bt, byCmd.Type)
	}

	_, ok := LookupCommand("insertTeleport")
	assert.False(t, ok)
}

func TestGrouped(t *testing.T) {
	groups := Grouped()
	require.NotEmpty(t, groups)
	assert.Equal(t, CategoryData, groups[0].Category)
	assert.Equal(t, "Données", groups[0].Title)

	total := 0
	for _, g := range groups {
		assert.NotEmpty(t, g.Entries)
		total += len(g.Entries)
	}
	assert.Equal(t, len(Catalog), total)
}

func TestNewDefaultsPassSchema(t *testing.T) {
	for _, bt := range edtypes.BlockTypes {
		t.Run(string(bt), func(t *testing.T) {
			b, err := New(bt)
			require.NoError(t, err)
			assert.Equal(t, bt, b.BlockType())
			assert.NotEmpty(t, b.BlockID())

			raw, err := json.Marshal(b)
			require.NoError(t, err)
			assert.NoError(t, Validate(bt, raw))
		})
	}

	a, _ := New(edtypes.ChartBlock)
	b, _ := New(edtypes.ChartBlock)
	assert.NotEqual(t, a.BlockID(), b.BlockID())

	_, err := New("teleport")
	assert.ErrorIs(t, err, ErrUnknownBlock)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		bt      edtypes.BlockType
		raw     string
		wantErr bool
	}{
		{name: "formula ok", bt: edtypes.FormulaBlock, raw: `{"formula":"A+B","variables":{"A":1},"format":"currency","decimals":2,"currency":"EUR"}`},
		{name: "formula bad format", bt: edtypes.FormulaBlock, raw: `{"format":"roman"}`, wantErr: true},
		{name: "formula bad variable name", bt: edtypes.FormulaBlock, raw: `{"variables":{"1x":1}}`, wantErr: true},
		{name: "formula non numeric variable", bt: edtypes.FormulaBlock, raw: `{"variables":{"A":"deux"}}`, wantErr: true},
		{name: "data fetch negative refresh", bt: edtypes.DataFetchBlock, raw: `{"refresh":-1}`, wantErr: true},
		{name: "data fetch unknown attr", bt: edtypes.DataFetchBlock, raw: `{"sql":"SELECT 1"}`, wantErr: true},
		{name: "chart bad color", bt: edtypes.ChartBlock, raw: `{"colors":["red"]}`, wantErr: true},
		{name: "reference ok", bt: edtypes.ReferenceBlock, raw: `{"referenceType":"external","referenceId":"https://example.org","displayAs":"card"}`},
		{name: "variable null system", bt: edtypes.VariableBlock, raw: `{"type":"custom","systemVariable":null,"customKey":"site"}`},
		{name: "not json", bt: edtypes.VariableBlock, raw: `{`, wantErr: true},
		{name: "unknown type", bt: "teleport", raw: `{}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.bt, []byte(tt.raw))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	b, err := Decode(edtypes.SignatureBlock, []byte(`{"signatory":"Jeanne","role":"DRH","required":true}`))
	require.NoError(t, err)
	sig := b.(*edtypes.Signature)
	assert.Equal(t, "Jeanne", sig.Signatory)
	assert.True(t, sig.Required)

	_, err = Decode(edtypes.SignatureBlock, []byte(`{"required":"oui"}`))
	assert.ErrorIs(t, err, ErrInvalidAttrs)
}
