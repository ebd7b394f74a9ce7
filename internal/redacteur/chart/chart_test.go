package chart

import (
	"testing"

	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeriesColorCycling(t *testing.T) {
	keys := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	c := &edtypes.Chart{
		ChartType: edtypes.ChartLine,
		Data:      []edtypes.Row{{"name": "Jan", "a": 1.0}},
		DataKeys:  keys,
		Colors:    []string{"#111111", "#222222", "#333333"},
	}

	v := Build(c)
	require.Len(t, v.Series, len(keys))
	for i, s := range v.Series {
		assert.Equal(t, c.Colors[i%len(c.Colors)], s.Color, "series %d", i)
	}

	c.Colors = nil
	v = Build(c)
	assert.Equal(t, DefaultPalette[0], v.Series[6].Color)
	assert.Equal(t, DefaultPalette[1], v.Series[7].Color)
}

func TestBuildPie(t *testing.T) {
	c := &edtypes.Chart{
		ChartType: edtypes.ChartPie,
		XAxisKey:  "name",
		YAxisKey:  "value",
		Data: []edtypes.Row{
			{"name": "Jan", "value": 100.0},
			{"name": "Fév", "value": 300.0},
		},
	}

	v := Build(c)
	require.Len(t, v.Slices, 2)
	assert.Equal(t, "Jan: 25%", v.Slices[0].Label)
	assert.Equal(t, "Fév: 75%", v.Slices[1].Label)
	assert.Empty(t, v.Series)
}

func TestBuildBarSeries(t *testing.T) {
	c := &edtypes.Chart{
		ChartType: edtypes.ChartBar,
		XAxisKey:  "mois",
		Data: []edtypes.Row{
			{"mois": "Jan", "ventes": 400.0, "achats": "120"},
			{"mois": "Fév", "ventes": 300.0, "achats": 80.0},
		},
	}

	v := Build(c)
	require.Len(t, v.Series, 2)
	assert.Equal(t, "achats", v.Series[0].Key)
	assert.Equal(t, []Point{{Label: "Jan", Value: 120}, {Label: "Fév", Value: 80}}, v.Series[0].Points)
	assert.Equal(t, "ventes", v.Series[1].Key)
}

func TestBuildEmpty(t *testing.T) {
	v := Build(&edtypes.Chart{ChartType: edtypes.ChartArea, DataKeys: []string{"value"}})
	assert.True(t, v.Empty)
	assert.Empty(t, v.Series)
}

func TestEditData(t *testing.T) {
	c := &edtypes.Chart{Data: []edtypes.Row{{"name": "Jan", "value": 400.0}}}
	before := Build(c)

	for _, raw := range []string{"{not valid}", "null", `{"name":"Jan"}`, "[1, 2]", ""} {
		assert.False(t, EditData(c, raw), raw)
		assert.Equal(t, []edtypes.Row{{"name": "Jan", "value": 400.0}}, c.Data)
	}
	assert.Equal(t, before, Build(c))

	require.True(t, EditData(c, `[{"name":"Jan","value":500},{"name":"Fév","value":200}]`))
	assert.Len(t, c.Data, 2)

	require.True(t, EditData(c, `[]`))
	assert.Empty(t, c.Data)
}
