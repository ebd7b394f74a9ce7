// Пакет blocks - реестр пользовательских блоков: каталог для меню вставки,
// значения по умолчанию и проверка атрибутов по JSON-схемам.
package blocks

import (
	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
)

type Category string

const (
	CategoryData        Category = "data"
	CategoryInteractive Category = "interactive"
	CategoryLayout      Category = "layout"
	CategoryMedia       Category = "media"
)

// Categories - порядок групп в меню вставки.
var Categories = []Category{CategoryData, CategoryInteractive, CategoryLayout, CategoryMedia}

var categoryTitles = map[Category]string{
	CategoryData:        "Données",
	CategoryInteractive: "Interactif",
	CategoryLayout:      "Mise en page",
	CategoryMedia:       "Médias",
}

// Entry - описание блока для меню вставки. Команда вызывается без аргументов.
type Entry struct {
	Type        edtypes.BlockType `json:"type"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Icon        string            `json:"icon"`
	Category    Category          `json:"category"`
	Command     string            `json:"command"`
}

// Catalog - неизменяемый каталог блоков.
var Catalog = []Entry{
	{
		Type:        edtypes.DataFetchBlock,
		Name:        "Données dynamiques",
		Description: "Afficher des données issues d'une API, d'une requête SQL ou d'un fichier",
		Icon:        "database",
		Category:    CategoryData,
		Command:     "insertDataFetch",
	},
	{
		Type:        edtypes.ChartBlock,
		Name:        "Graphique",
		Description: "Courbe, histogramme, secteurs ou aires",
		Icon:        "bar-chart-3",
		Category:    CategoryData,
		Command:     "insertChart",
	},
	{
		Type:        edtypes.FormulaBlock,
		Name:        "Formule",
		Description: "Calcul automatique à partir de variables",
		Icon:        "calculator",
		Category:    CategoryData,
		Command:     "insertFormula",
	},
	{
		Type:        edtypes.SignatureBlock,
		Name:        "Signature",
		Description: "Zone de signature manuscrite ou importée",
		Icon:        "pen-tool",
		Category:    CategoryInteractive,
		Command:     "insertSignature",
	},
	{
		Type:        edtypes.VariableBlock,
		Name:        "Variable",
		Description: "Date, auteur, numéro de page ou valeur personnalisée",
		Icon:        "braces",
		Category:    CategoryInteractive,
		Command:     "insertVariable",
	},
	{
		Type:        edtypes.ReferenceBlock,
		Name:        "Référence",
		Description: "Lien vers un rapport, un document, une section ou une adresse externe",
		Icon:        "link",
		Category:    CategoryLayout,
		Command:     "insertReference",
	},
}

type Group struct {
	Category Category `json:"category"`
	Title    string   `json:"title"`
	Entries  []Entry  `json:"entries"`
}

// Grouped возвращает каталог, сгруппированный по категориям в порядке Categories.
// Пустые категории пропускаются.
func Grouped() []Group {
	byCat := ByCategory()
	groups := make([]Group, 0, len(Categories))
	for _, c := range Categories {
		if len(byCat[c]) == 0 {
			continue
		}
		groups = append(groups, Group{Category: c, Title: categoryTitles[c], Entries: byCat[c]})
	}
	return groups
}

func ByCategory() map[Category][]Entry {
	res := make(map[Category][]Entry)
	for _, e := range Catalog {
		res[e.Category] = append(res[e.Category], e)
	}
	return res
}

func Lookup(t edtypes.BlockType) (Entry, bool) {
	for _, e := range Catalog {
		if e.Type == t {
			return e, true
		}
	}
	return Entry{}, false
}

func LookupCommand(command string) (Entry, bool) {
	for _, e := range Catalog {
		if e.Command == command {
			return e, true
		}
	}
	return Entry{}, false
}
