package edtypes

import (
	"slices"
)

// Path адресует строчный контейнер (параграф или заголовок) в дереве документа:
//
//	[i]                  - параграф или заголовок верхнего уровня
//	[i, p]               - параграф p цитаты i
//	[i, e, p]            - параграф p элемента e списка i
//	[i, r, c, p]         - параграф p ячейки (r, c) таблицы i
type Path []int

// InlineVisitor получает путь и указатель на содержимое контейнера.
// Возврат false прекращает обход.
type InlineVisitor func(path Path, content *[]any) bool

// WalkInline обходит все строчные контейнеры документа в порядке следования.
func (d *Document) WalkInline(fn InlineVisitor) {
	for i, el := range d.Elements {
		if !walkElement(Path{i}, el, fn) {
			return
		}
	}
}

func walkElement(path Path, el any, fn InlineVisitor) bool {
	switch e := el.(type) {
	case *Paragraph:
		return fn(path, &e.Content)
	case *Heading:
		return fn(path, &e.Content)
	case *Quote:
		for p := range e.Content {
			if !fn(append(slices.Clone(path), p), &e.Content[p].Content) {
				return false
			}
		}
	case *List:
		for ei := range e.Elements {
			for p := range e.Elements[ei].Content {
				if !fn(append(slices.Clone(path), ei, p), &e.Elements[ei].Content[p].Content) {
					return false
				}
			}
		}
	case *Table:
		for r := range e.Rows {
			for c := range e.Rows[r] {
				for p := range e.Rows[r][c].Content {
					if !fn(append(slices.Clone(path), r, c, p), &e.Rows[r][c].Content[p].Content) {
						return false
					}
				}
			}
		}
	}
	return true
}

// Inline возвращает содержимое контейнера по пути или nil.
func (d *Document) Inline(path Path) *[]any {
	var res *[]any
	d.WalkInline(func(p Path, content *[]any) bool {
		if slices.Equal(p, path) {
			res = content
			return false
		}
		return true
	})
	return res
}

// Blocks возвращает все пользовательские блоки документа, включая строчные переменные.
func (d *Document) Blocks() []Block {
	var res []Block
	for _, el := range d.Elements {
		if b, ok := el.(Block); ok {
			res = append(res, b)
		}
	}
	d.WalkInline(func(_ Path, content *[]any) bool {
		for _, c := range *content {
			if b, ok := c.(Block); ok {
				res = append(res, b)
			}
		}
		return true
	})
	return res
}

// FindBlock ищет блок по идентификатору.
func (d *Document) FindBlock(id string) Block {
	for _, b := range d.Blocks() {
		if b.BlockID() == id {
			return b
		}
	}
	return nil
}

// Insert вставляет узел верхнего уровня в позицию pos. Отрицательная или
// выходящая за границы позиция означает вставку в конец.
func (d *Document) Insert(pos int, el any) {
	if pos < 0 || pos > len(d.Elements) {
		d.Elements = append(d.Elements, el)
		return
	}
	d.Elements = slices.Insert(d.Elements, pos, el)
}

// InsertInline вставляет строчный узел в контейнер path после offset символов.
func (d *Document) InsertInline(path Path, offset int, el any) bool {
	content := d.Inline(path)
	if content == nil {
		return false
	}
	idx, ok := splitAt(content, offset)
	if !ok {
		*content = append(*content, el)
		return true
	}
	*content = slices.Insert(*content, idx, el)
	return true
}

// RemoveBlock удаляет блок из документа. Возвращает false, если блок не найден.
func (d *Document) RemoveBlock(id string) bool {
	for i, el := range d.Elements {
		if b, ok := el.(Block); ok && b.BlockID() == id {
			d.Elements = slices.Delete(d.Elements, i, i+1)
			return true
		}
	}
	removed := false
	d.WalkInline(func(_ Path, content *[]any) bool {
		for i, c := range *content {
			if b, ok := c.(Block); ok && b.BlockID() == id {
				*content = slices.Delete(*content, i, i+1)
				removed = true
				return false
			}
		}
		return true
	})
	return removed
}

// ReplaceBlock заменяет блок с тем же идентификатором.
func (d *Document) ReplaceBlock(nb Block) bool {
	for i, el := range d.Elements {
		if b, ok := el.(Block); ok && b.BlockID() == nb.BlockID() {
			d.Elements[i] = nb
			return true
		}
	}
	replaced := false
	d.WalkInline(func(_ Path, content *[]any) bool {
		for i, c := range *content {
			if b, ok := c.(Block); ok && b.BlockID() == nb.BlockID() {
				(*content)[i] = nb
				replaced = true
				return false
			}
		}
		return true
	})
	return replaced
}

// PlainText возвращает текст контейнера без отметок; строчные блоки не учитываются.
func PlainText(content []any) string {
	var res []rune
	for _, c := range content {
		if t, ok := c.(Text); ok {
			res = append(res, []rune(t.Content)...)
		}
	}
	return string(res)
}

// SplitText разрезает текстовые отрезки так, чтобы на позиции offset (в рунах)
// начинался новый элемент. Возвращает индекс этого элемента.
func SplitText(content *[]any, offset int) (int, bool) {
	return splitAt(content, offset)
}

func splitAt(content *[]any, offset int) (int, bool) {
	pos := 0
	for i, c := range *content {
		t, ok := c.(Text)
		if !ok {
			continue
		}
		runes := []rune(t.Content)
		if offset == pos {
			return i, true
		}
		if offset > pos && offset < pos+len(runes) {
			left, right := t, t
			left.Content = string(runes[:offset-pos])
			right.Content = string(runes[offset-pos:])
			right.CommentIds = slices.Clone(t.CommentIds)
			*content = slices.Replace(*content, i, i+1, any(left), any(right))
			return i + 1, true
		}
		pos += len(runes)
	}
	if offset == pos {
		return len(*content), true
	}
	return 0, false
}

// Normalize склеивает соседние отрезки с одинаковыми отметками и убирает пустые.
func Normalize(content *[]any) {
	res := make([]any, 0, len(*content))
	for _, c := range *content {
		t, ok := c.(Text)
		if !ok {
			res = append(res, c)
			continue
		}
		if t.Content == "" {
			continue
		}
		if n := len(res); n > 0 {
			if prev, ok := res[n-1].(Text); ok && prev.SameMarks(t) {
				prev.Content += t.Content
				res[n-1] = prev
				continue
			}
		}
		res = append(res, t)
	}
	*content = res
}
