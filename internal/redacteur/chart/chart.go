// Пакет chart строит серии графика из атрибутов блока «chart».
package chart

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"

	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
)

// DefaultPalette - палитра по умолчанию, цвета выдаются по кругу.
var DefaultPalette = []string{
	"#3b82f6",
	"#10b981",
	"#f59e0b",
	"#ef4444",
	"#8b5cf6",
	"#ec4899",
}

const EmptyPlaceholder = "Aucune donnée à afficher"

// SeriesColor возвращает цвет серии i: colors[i % len(colors)].
func SeriesColor(colors []string, i int) string {
	if len(colors) == 0 {
		colors = DefaultPalette
	}
	return colors[i%len(colors)]
}

type Point struct {
	Label string
	Value float64
}

type Series struct {
	Key    string
	Color  string
	Points []Point
}

type Slice struct {
	Name    string
	Value   float64
	Percent float64
	Label   string // "name: percent%"
	Color   string
}

// View - готовое к отрисовке представление графика.
type View struct {
	Kind       edtypes.ChartType
	Title      string
	Empty      bool
	ShowLegend bool
	ShowGrid   bool
	Series     []Series
	Slices     []Slice
}

// Build строит представление графика из атрибутов блока.
func Build(c *edtypes.Chart) View {
	v := View{
		Kind:       c.ChartType,
		Title:      c.Title,
		ShowLegend: c.ShowLegend,
		ShowGrid:   c.ShowGrid,
		Empty:      len(c.Data) == 0,
	}
	if v.Kind == "" {
		v.Kind = edtypes.ChartBar
	}
	if v.Empty {
		return v
	}

	xKey := c.XAxisKey
	if xKey == "" {
		xKey = "name"
	}

	if v.Kind == edtypes.ChartPie {
		v.Slices = buildSlices(c, xKey)
		return v
	}

	for i, key := range DataKeys(c) {
		s := Series{
			Key:    key,
			Color:  SeriesColor(c.Colors, i),
			Points: make([]Point, 0, len(c.Data)),
		}
		for _, row := range c.Data {
			val, _ := Number(row[key])
			s.Points = append(s.Points, Point{Label: Label(row[xKey]), Value: val})
		}
		v.Series = append(v.Series, s)
	}
	return v
}

func buildSlices(c *edtypes.Chart, xKey string) []Slice {
	yKey := c.YAxisKey
	if yKey == "" && len(c.DataKeys) > 0 {
		yKey = c.DataKeys[0]
	}
	if yKey == "" {
		yKey = "value"
	}

	total := 0.0
	res := make([]Slice, 0, len(c.Data))
	for i, row := range c.Data {
		val, _ := Number(row[yKey])
		total += val
		res = append(res, Slice{
			Name:  Label(row[xKey]),
			Value: val,
			Color: SeriesColor(c.Colors, i),
		})
	}

	for i := range res {
		if total != 0 {
			res[i].Percent = res[i].Value / total * 100
		}
		res[i].Label = fmt.Sprintf("%s: %.0f%%", res[i].Name, res[i].Percent)
	}
	return res
}

// Number приводит значение ячейки к числу.
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n)
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

// Label приводит значение ячейки к подписи.
func Label(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

// EditData применяет ручную правку данных. Невалидный JSON или не массив объектов
// молча отклоняется: блок остается без изменений, возвращается false.
func EditData(c *edtypes.Chart, raw string) bool {
	var rows []edtypes.Row
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		return false
	}
	if rows == nil {
		return false
	}
	c.Data = rows
	return true
}

// DataKeys возвращает числовые ключи первой строки, кроме оси X.
// Используется, когда dataKeys не заданы.
func DataKeys(c *edtypes.Chart) []string {
	if len(c.DataKeys) > 0 || len(c.Data) == 0 {
		return c.DataKeys
	}
	var keys []string
	for _, k := range slices.Sorted(maps.Keys(c.Data[0])) {
		if k == c.XAxisKey {
			continue
		}
		if _, ok := Number(c.Data[0][k]); ok {
			keys = append(keys, k)
		}
	}
	return keys
}
