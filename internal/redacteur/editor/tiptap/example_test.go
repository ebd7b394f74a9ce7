package tiptap_test

import (
	"fmt"
	"strings"

	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
	"github.com/aisa-it/redacteur/internal/redacteur/editor/tiptap"
)

// ExampleParseJSON демонстрирует разбор документа с пользовательским блоком.
func ExampleParseJSON() {
	jsonContent := `{
		"type": "doc",
		"content": [
			{
				"type": "paragraph",
				"content": [
					{"type": "text", "marks": [{"type": "bold"}], "text": "Total"},
					{"type": "text", "text": " : "}
				]
			},
			{
				"type": "formula",
				"attrs": {"id": "f1", "formula": "A+B", "variables": {"A": 2, "B": 3}, "format": "number", "decimals": 0}
			}
		]
	}`

	doc, err := tiptap.ParseJSON(strings.NewReader(jsonContent))
	if err != nil {
		fmt.Printf("Ошибка парсинга: %v\n", err)
		return
	}

	fmt.Printf("Документ содержит %d элементов\n", len(doc.Elements))
	f := doc.Elements[1].(*edtypes.Formula)
	fmt.Println(f.Formula, f.Variables["B"])

	// Output:
	// Документ содержит 2 элементов
	// A+B 3
}
