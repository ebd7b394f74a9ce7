// Пакет export выгружает документ в HTML, Markdown и PDF.
//
// Основные возможности:
//   - Подстановка системных переменных ({{author}}, {{document}}, {{date}}, {{page}}, {{pages}}).
//   - Статический HTML без служебных атрибутов, с минификацией.
//   - Markdown с таблицами для блоков данных и графиков.
//   - PDF со стандартными шрифтами и номерами страниц.
package export

import (
	"strconv"
	"strings"
	"time"

	"github.com/aisa-it/redacteur/internal/redacteur/variable"
)

// Meta - сведения о документе для подстановки переменных.
type Meta struct {
	Title  string
	Author string
	Date   time.Time
	Locale string
}

// Templater подставляет значения системных переменных.
type Templater struct {
	meta Meta
}

func NewTemplater(meta Meta) *Templater {
	if meta.Date.IsZero() {
		meta.Date = time.Now()
	}
	return &Templater{meta: meta}
}

// Fill заменяет метки переменных. Для форматов без страниц page и pages равны 1.
func (t *Templater) Fill(s string, page, pages int) string {
	if !strings.Contains(s, "{{") {
		return s
	}
	return strings.NewReplacer(
		variable.Token(variable.Author), t.meta.Author,
		variable.Token(variable.Document), t.meta.Title,
		variable.Token(variable.Date), t.meta.Date.Format(variable.DateLayout),
		variable.Token(variable.DateTime), t.meta.Date.Format(variable.DateTimeLayout),
		variable.Token(variable.Page), strconv.Itoa(page),
		variable.Token(variable.Pages), pagesValue(pages),
	).Replace(s)
}

func pagesValue(pages int) string {
	if pages < 0 {
		return totalPagesAlias
	}
	return strconv.Itoa(pages)
}

// FillStatic подставляет переменные для форматов без страниц.
func (t *Templater) FillStatic(s string) string {
	return t.Fill(s, 1, 1)
}

func (t *Templater) Now() time.Time {
	return t.meta.Date
}
