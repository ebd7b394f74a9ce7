package utils

import (
	"strings"
	"unicode"
)

func Substr(input string, start int, length int) string {
	asRunes := []rune(input)

	if start >= len(asRunes) {
		return ""
	}

	if start+length > len(asRunes) {
		length = len(asRunes) - start
	}

	return string(asRunes[start : start+length])
}

// Excerpt сжимает пробелы и обрезает текст до limit рун, добавляя многоточие.
func Excerpt(text string, limit int) string {
	text = strings.Join(strings.FieldsFunc(text, unicode.IsSpace), " ")
	if len([]rune(text)) <= limit {
		return text
	}
	return strings.TrimRightFunc(Substr(text, 0, limit-1), unicode.IsSpace) + "…"
}
