// Пакет edtypes описывает модель документа редактора: узлы, текстовые отметки
// и пользовательские блоки. Сериализация в TipTap JSON подключается пакетом tiptap.
package edtypes

import (
	"bytes"
	"database/sql/driver"
	"encoding/hex"
	"errors"
	"fmt"
	"image/color"
	"io"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

type TextAlign int

const (
	LeftAlign TextAlign = iota
	CenterAlign
	RightAlign
	JustifyAlign
)

var (
	colorReg = regexp.MustCompile(`[rgb()#\s"]`)
)

// TipTapParser - функция для парсинга TipTap JSON, устанавливается из tiptap пакета
var TipTapParser func(io.Reader) (*Document, error)

// TipTapSerializer - функция для сериализации Document в TipTap JSON, устанавливается из tiptap пакета
var TipTapSerializer func(*Document) ([]byte, error)

// Document - упорядоченный список узлов верхнего уровня.
type Document struct {
	Elements []any
}

// UnmarshalJSON разбирает TipTap JSON через зарегистрированный TipTapParser.
func (d *Document) UnmarshalJSON(data []byte) error {
	if TipTapParser == nil {
		return errors.New("TipTapParser not registered, import tiptap package to enable TipTap JSON parsing")
	}

	doc, err := TipTapParser(bytes.NewReader(data))
	if err != nil {
		return err
	}

	d.Elements = doc.Elements
	return nil
}

// MarshalJSON сериализует документ в TipTap JSON через зарегистрированный TipTapSerializer.
func (d *Document) MarshalJSON() ([]byte, error) {
	if TipTapSerializer == nil {
		return nil, errors.New("TipTapSerializer not registered, import tiptap package to enable TipTap JSON serialization")
	}

	return TipTapSerializer(d)
}

// Value реализует driver.Valuer для хранения документа в JSONB.
func (d Document) Value() (driver.Value, error) {
	b, err := d.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Scan реализует sql.Scanner для чтения документа из JSONB.
func (d *Document) Scan(value interface{}) error {
	if value == nil {
		*d = Document{Elements: make([]any, 0)}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}

	return d.UnmarshalJSON(bytes)
}

// GormDataType указывает GORM использовать тип JSONB.
func (Document) GormDataType() string {
	return "jsonb"
}

type Paragraph struct {
	Content []any
	Indent  int
	Align   TextAlign
}

type Heading struct {
	Level   int
	Align   TextAlign
	Content []any
}

// Text - отрезок текста с набором отметок. Отметки не исключают друг друга.
type Text struct {
	Content string

	Strong        bool
	Italic        bool
	Underlined    bool
	Strikethrough bool
	Code          bool

	Color   *Color
	BgColor *Color

	URL *url.URL

	// Идентификаторы комментариев, отметка comment может повторяться.
	CommentIds []string
}

// HasComment сообщает, помечен ли текст комментарием id.
func (t Text) HasComment(id string) bool {
	return slices.Contains(t.CommentIds, id)
}

// SameMarks сравнивает отметки двух отрезков без учета текста.
func (t Text) SameMarks(o Text) bool {
	if t.Strong != o.Strong || t.Italic != o.Italic || t.Underlined != o.Underlined ||
		t.Strikethrough != o.Strikethrough || t.Code != o.Code {
		return false
	}
	if !sameColor(t.Color, o.Color) || !sameColor(t.BgColor, o.BgColor) {
		return false
	}
	if (t.URL == nil) != (o.URL == nil) || (t.URL != nil && t.URL.String() != o.URL.String()) {
		return false
	}
	return slices.Equal(t.CommentIds, o.CommentIds)
}

func sameColor(a, b *Color) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

type ListElement struct {
	Content []Paragraph
	Checked bool
}

type List struct {
	Elements []ListElement
	Numbered bool
	TaskList bool
}

type Quote struct {
	Content []Paragraph
}

type Code struct {
	Content  string
	Language string
}

type Image struct {
	Src   *url.URL
	Width int
	Align TextAlign
}

type Table struct {
	Rows [][]TableCell
}

type TableCell struct {
	Content []Paragraph
	ColSpan int
	RowSpan int
	Header  bool
}

type HorizontalRule struct{}

type HardBreak struct{}

type Color color.RGBA

func ParseColor(raw string) (Color, error) {
	if len(raw) < 2 {
		return Color{}, errors.New("unsupported color format")
	}
	isDecRGB := strings.Contains(raw, "rgb(")
	isHex := raw[0] == '#' || raw[1] == '#'
	raw = colorReg.ReplaceAllString(raw, "")
	if isDecRGB {
		c := Color{A: 255}
		for i, n := range strings.Split(raw, ",") {
			nn, err := strconv.ParseUint(strings.TrimSpace(n), 10, 8)
			if err != nil {
				return c, err
			}

			switch i {
			case 0:
				c.R = uint8(nn)
			case 1:
				c.G = uint8(nn)
			case 2:
				c.B = uint8(nn)
			case 3:
				c.A = uint8(nn)
			}
		}
		return c, nil
	} else if isHex {
		b, err := hex.DecodeString(raw)
		if err != nil {
			return Color{}, err
		}
		if len(b) < 3 {
			return Color{}, errors.New("unsupported color format")
		}
		c := Color{
			R: b[0],
			G: b[1],
			B: b[2],
			A: 255,
		}
		if len(b) > 3 {
			c.A = b[3]
		}
		return c, nil
	}
	return Color{}, errors.New("unsupported color format")
}

// Hex возвращает цвет в виде #rrggbb (альфа-канал отбрасывается, если непрозрачный).
func (c Color) Hex() string {
	if c.A == 255 {
		return "#" + hex.EncodeToString([]byte{c.R, c.G, c.B})
	}
	return "#" + hex.EncodeToString([]byte{c.R, c.G, c.B, c.A})
}

func (c Color) MarshalJSON() ([]byte, error) {
	return fmt.Appendf(nil, "%q", c.Hex()), nil
}

func (c *Color) UnmarshalJSON(data []byte) error {
	if string(data) == "null" || string(data) == `""` {
		return nil
	}

	cc, err := ParseColor(string(data))
	*c = cc

	return err
}
