// Пакет variable вычисляет отображаемое значение строчного блока «variable».
// Системные переменные author, document, page и pages превращаются в шаблонные
// метки {{...}}, их подставляет этап экспорта.
package variable

import (
	"time"

	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
)

const (
	Date     = "date"
	DateTime = "datetime"
	Author   = "author"
	Document = "document"
	Page     = "page"
	Pages    = "pages"
)

const (
	DateLayout     = "02/01/2006"
	DateTimeLayout = "02/01/2006 15:04"
)

// SystemVariables - системные переменные в порядке меню.
var SystemVariables = []struct {
	Key   string
	Label string
}{
	{Date, "Date du jour"},
	{DateTime, "Date et heure"},
	{Author, "Auteur"},
	{Document, "Titre du document"},
	{Page, "Numéro de page"},
	{Pages, "Nombre de pages"},
}

// Token возвращает шаблонную метку для подстановки при экспорте.
func Token(key string) string {
	return "{{" + key + "}}"
}

// Resolve возвращает значение переменной. Второй результат false означает,
// что значения нет и нужно показать подпись (Label).
func Resolve(v *edtypes.Variable, now time.Time) (string, bool) {
	switch v.Type {
	case edtypes.VariableCustom:
		if v.CustomValue == "" {
			return "", false
		}
		return v.CustomValue, true
	case edtypes.VariableSystem:
		switch v.SystemVariable {
		case Date:
			return now.Format(layout(v.Format, DateLayout)), true
		case DateTime:
			return now.Format(layout(v.Format, DateTimeLayout)), true
		case Author, Document, Page, Pages:
			return Token(v.SystemVariable), true
		}
	}
	return "", false
}

func layout(format, def string) string {
	switch format {
	case "iso":
		return time.DateOnly
	case "long":
		return "2 January 2006"
	}
	return def
}

// Label - подпись переменной, показывается вместо значения.
func Label(v *edtypes.Variable) string {
	if v.Type == edtypes.VariableCustom {
		if v.CustomKey == "" {
			return "{variable}"
		}
		return "{" + v.CustomKey + "}"
	}
	for _, sv := range SystemVariables {
		if sv.Key == v.SystemVariable {
			return sv.Label
		}
	}
	return "{" + v.SystemVariable + "}"
}

// Display возвращает значение, если оно есть, иначе подпись.
func Display(v *edtypes.Variable, now time.Time) string {
	if s, ok := Resolve(v, now); ok {
		return s
	}
	return Label(v)
}
