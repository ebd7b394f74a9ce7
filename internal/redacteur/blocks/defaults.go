package blocks

import (
	"fmt"
	"slices"

	"github.com/aisa-it/redacteur/internal/redacteur/chart"
	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
	"github.com/gofrs/uuid"
)

// New создает блок со значениями по умолчанию и новым идентификатором.
func New(t edtypes.BlockType) (edtypes.Block, error) {
	id := uuid.Must(uuid.NewV4()).String()

	switch t {
	case edtypes.DataFetchBlock:
		return &edtypes.DataFetch{
			ID:        id,
			Source:    edtypes.SourceAPI,
			Fields:    []string{},
			Cache:     true,
			DisplayAs: edtypes.DisplayTable,
			Data:      []edtypes.Row{},
		}, nil
	case edtypes.ChartBlock:
		return &edtypes.Chart{
			ID:         id,
			ChartType:  edtypes.ChartBar,
			DataSource: edtypes.ChartManual,
			Data: []edtypes.Row{
				{"name": "Jan", "value": 400.0},
				{"name": "Fév", "value": 300.0},
				{"name": "Mar", "value": 600.0},
			},
			XAxisKey:   "name",
			YAxisKey:   "value",
			DataKeys:   []string{"value"},
			Colors:     slices.Clone(chart.DefaultPalette),
			ShowLegend: true,
			ShowGrid:   true,
		}, nil
	case edtypes.FormulaBlock:
		return &edtypes.Formula{
			ID:        id,
			Variables: map[string]float64{},
			Format:    edtypes.FormatNumber,
			Decimals:  2,
			Currency:  "EUR",
		}, nil
	case edtypes.SignatureBlock:
		return &edtypes.Signature{ID: id}, nil
	case edtypes.ReferenceBlock:
		return &edtypes.Reference{
			ID:            id,
			ReferenceType: edtypes.RefReport,
			DisplayAs:     edtypes.RefLink,
		}, nil
	case edtypes.VariableBlock:
		return &edtypes.Variable{
			ID:             id,
			Type:           edtypes.VariableSystem,
			SystemVariable: "date",
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBlock, t)
}
