package formula

import (
	"fmt"
	"strconv"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokPercent
	tokLParen
	tokRParen
)

type token struct {
	kind  tokenKind
	pos   int
	text  string
	value float64
}

func (t token) String() string {
	if t.kind == tokEOF {
		return "end of input"
	}
	return fmt.Sprintf("%q at %d", t.text, t.pos)
}

var operators = map[rune]tokenKind{
	'+': tokPlus,
	'-': tokMinus,
	'*': tokStar,
	'/': tokSlash,
	'%': tokPercent,
	'(': tokLParen,
	')': tokRParen,
}

// tokenize разбивает выражение на лексемы. Числа записываются с точкой: 12, 3.5, .25
func tokenize(src string) ([]token, error) {
	runes := []rune(src)
	var tokens []token

	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case unicode.IsDigit(r) || r == '.':
			start := i
			dots := 0
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
				if runes[i] == '.' {
					dots++
				}
				i++
			}
			text := string(runes[start:i])
			if dots > 1 || text == "." {
				return nil, fmt.Errorf("malformed number %q at %d", text, start)
			}
			v, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, fmt.Errorf("malformed number %q at %d: %w", text, start, err)
			}
			tokens = append(tokens, token{kind: tokNumber, pos: start, text: text, value: v})
		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			tokens = append(tokens, token{kind: tokIdent, pos: start, text: string(runes[start:i])})
		default:
			kind, ok := operators[r]
			if !ok {
				return nil, fmt.Errorf("unexpected character %q at %d", r, i)
			}
			tokens = append(tokens, token{kind: kind, pos: i, text: string(r)})
			i++
		}
	}

	return append(tokens, token{kind: tokEOF, pos: len(runes)}), nil
}
