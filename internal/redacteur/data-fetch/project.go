package datafetch

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
	"github.com/itchyny/gojq"
)

// Скомпилированные jq-пути полей, общие для всех блоков
var codes = struct {
	mu    sync.RWMutex
	cache map[string]*gojq.Code
}{cache: make(map[string]*gojq.Code)}

// IsPath сообщает, что поле задано jq-путем (".client.nom").
func IsPath(field string) bool {
	return strings.HasPrefix(field, ".")
}

func compile(expression string) (*gojq.Code, error) {
	codes.mu.RLock()
	code, ok := codes.cache[expression]
	codes.mu.RUnlock()
	if ok {
		return code, nil
	}

	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("champ %q : %w", expression, err)
	}
	code, err = gojq.Compile(query, gojq.WithEnvironLoader(func() []string { return nil }))
	if err != nil {
		return nil, fmt.Errorf("champ %q : %w", expression, err)
	}

	codes.mu.Lock()
	codes.cache[expression] = code
	codes.mu.Unlock()
	return code, nil
}

// Project оставляет в строках только поля fields. Пустой fields возвращает строки как есть.
// Поле с ведущей точкой вычисляется как jq-выражение над строкой.
func Project(ctx context.Context, rows []edtypes.Row, fields []string) ([]edtypes.Row, error) {
	if len(fields) == 0 {
		return rows, nil
	}

	res := make([]edtypes.Row, 0, len(rows))
	for _, row := range rows {
		out := make(edtypes.Row, len(fields))
		for _, field := range fields {
			if !IsPath(field) {
				if v, ok := row[field]; ok {
					out[field] = v
				}
				continue
			}

			code, err := compile(field)
			if err != nil {
				return nil, err
			}
			iter := code.RunWithContext(ctx, map[string]any(row))
			v, ok := iter.Next()
			if !ok {
				continue
			}
			if err, isErr := v.(error); isErr {
				return nil, fmt.Errorf("champ %q : %w", field, err)
			}
			out[field] = v
		}
		res = append(res, out)
	}
	return res, nil
}

// Columns возвращает отображаемые колонки: fields, если заданы, иначе ключи первой строки.
func Columns(cfg *edtypes.DataFetch, rows []edtypes.Row) []string {
	if len(cfg.Fields) > 0 {
		return cfg.Fields
	}
	if len(rows) == 0 {
		return nil
	}
	return slices.Sorted(maps.Keys(rows[0]))
}
