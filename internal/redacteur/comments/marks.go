// Пакет comments реализует комментарии к тексту документа: отметку comment
// на фрагментах, подсветку помеченных фрагментов, боковую панель с ветками
// и хранилище записей комментариев.
//
// Сами комментарии хранятся вне дерева документа, отметка содержит только commentId.
package comments

import (
	"errors"
	"slices"
	"sort"

	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
)

var ErrBadSelection = errors.New("invalid selection")

// Selection - выделение внутри одного строчного контейнера, смещения в рунах.
type Selection struct {
	Path edtypes.Path `json:"path"`
	From int          `json:"from"`
	To   int          `json:"to"`
}

func (s Selection) valid(content []any) bool {
	return s.From >= 0 && s.From < s.To && s.To <= len([]rune(edtypes.PlainText(content)))
}

// Quote возвращает выделенный текст.
func Quote(doc *edtypes.Document, sel Selection) (string, error) {
	content := doc.Inline(sel.Path)
	if content == nil || !sel.valid(*content) {
		return "", ErrBadSelection
	}
	return string([]rune(edtypes.PlainText(*content))[sel.From:sel.To]), nil
}

// Attach помечает выделение комментарием commentId, разрезая текстовые отрезки по границам.
func Attach(doc *edtypes.Document, sel Selection, commentId string) error {
	content := doc.Inline(sel.Path)
	if content == nil || !sel.valid(*content) {
		return ErrBadSelection
	}
	if _, ok := edtypes.SplitText(content, sel.From); !ok {
		return ErrBadSelection
	}
	if _, ok := edtypes.SplitText(content, sel.To); !ok {
		return ErrBadSelection
	}

	pos := 0
	for i, c := range *content {
		t, ok := c.(edtypes.Text)
		if !ok {
			continue
		}
		n := len([]rune(t.Content))
		if pos >= sel.From && pos+n <= sel.To && !t.HasComment(commentId) {
			t.CommentIds = append(slices.Clone(t.CommentIds), commentId)
			(*content)[i] = t
		}
		pos += n
	}
	edtypes.Normalize(content)
	return nil
}

// Detach снимает отметку commentId со всего документа. Возвращает число
// отрезков, с которых снята отметка.
func Detach(doc *edtypes.Document, commentId string) int {
	removed := 0
	doc.WalkInline(func(_ edtypes.Path, content *[]any) bool {
		touched := false
		for i, c := range *content {
			t, ok := c.(edtypes.Text)
			if !ok || !t.HasComment(commentId) {
				continue
			}
			t.CommentIds = slices.DeleteFunc(slices.Clone(t.CommentIds), func(id string) bool { return id == commentId })
			if len(t.CommentIds) == 0 {
				t.CommentIds = nil
			}
			(*content)[i] = t
			removed++
			touched = true
		}
		if touched {
			edtypes.Normalize(content)
		}
		return true
	})
	return removed
}

// MarkedIds возвращает отсортированный список идентификаторов комментариев,
// отмеченных в документе.
func MarkedIds(doc *edtypes.Document) []string {
	set := make(map[string]struct{})
	doc.WalkInline(func(_ edtypes.Path, content *[]any) bool {
		for _, c := range *content {
			if t, ok := c.(edtypes.Text); ok {
				for _, id := range t.CommentIds {
					set[id] = struct{}{}
				}
			}
		}
		return true
	})
	res := make([]string, 0, len(set))
	for id := range set {
		res = append(res, id)
	}
	sort.Strings(res)
	return res
}

// Orphans возвращает идентификаторы из ids, которых нет среди отметок документа.
func Orphans(doc *edtypes.Document, ids []string) []string {
	marked := MarkedIds(doc)
	var res []string
	for _, id := range ids {
		if _, found := slices.BinarySearch(marked, id); !found {
			res = append(res, id)
		}
	}
	return res
}
