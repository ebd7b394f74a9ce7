package comments

import (
	"slices"

	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
)

const (
	ClassComment  = "comment-highlight"
	ClassResolved = "comment-resolved"
)

// Decoration - подсвечиваемый диапазон [From, To) строчного контейнера Path.
type Decoration struct {
	Path      edtypes.Path `json:"path"`
	From      int          `json:"from"`
	To        int          `json:"to"`
	CommentId string       `json:"commentId"`
	Resolved  bool         `json:"resolved"`
}

func (d Decoration) Class() string {
	if d.Resolved {
		return ClassResolved
	}
	return ClassComment
}

// Decorations строит подсветку для всех отрезков с отметкой comment.
// Соседние отрезки с одним комментарием объединяются в один диапазон.
// resolved может быть nil.
func Decorations(doc *edtypes.Document, resolved func(id string) bool) []Decoration {
	var res []Decoration
	doc.WalkInline(func(path edtypes.Path, content *[]any) bool {
		open := map[string]int{}
		pos := 0
		for _, c := range *content {
			t, ok := c.(edtypes.Text)
			if !ok {
				continue
			}
			end := pos + len([]rune(t.Content))
			for _, id := range t.CommentIds {
				if i, ok := open[id]; ok && res[i].To == pos {
					res[i].To = end
					continue
				}
				open[id] = len(res)
				res = append(res, Decoration{
					Path:      slices.Clone(path),
					From:      pos,
					To:        end,
					CommentId: id,
					Resolved:  resolved != nil && resolved(id),
				})
			}
			pos = end
		}
		return true
	})
	return res
}
