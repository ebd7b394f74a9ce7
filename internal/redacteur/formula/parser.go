package formula

import (
	"fmt"
	"math"
)

// Node - узел разобранного выражения.
type Node interface {
	Eval(vars map[string]float64) (float64, error)
}

type numberNode float64

type identNode string

type unaryNode struct {
	op      tokenKind
	operand Node
}

type binaryNode struct {
	op          tokenKind
	left, right Node
}

func (n numberNode) Eval(map[string]float64) (float64, error) {
	return float64(n), nil
}

func (n identNode) Eval(vars map[string]float64) (float64, error) {
	v, ok := vars[string(n)]
	if !ok {
		return 0, fmt.Errorf("unknown variable %q", string(n))
	}
	return v, nil
}

func (n unaryNode) Eval(vars map[string]float64) (float64, error) {
	v, err := n.operand.Eval(vars)
	if err != nil {
		return 0, err
	}
	if n.op == tokMinus {
		return -v, nil
	}
	return v, nil
}

func (n binaryNode) Eval(vars map[string]float64) (float64, error) {
	l, err := n.left.Eval(vars)
	if err != nil {
		return 0, err
	}
	r, err := n.right.Eval(vars)
	if err != nil {
		return 0, err
	}

	switch n.op {
	case tokPlus:
		return l + r, nil
	case tokMinus:
		return l - r, nil
	case tokStar:
		return l * r, nil
	case tokSlash:
		return l / r, nil
	case tokPercent:
		return math.Mod(l, r), nil
	}
	return 0, fmt.Errorf("unknown operator %d", n.op)
}

type parser struct {
	tokens []token
	pos    int
}

// Parse разбирает выражение рекурсивным спуском:
//
//	expr    := term (('+' | '-') term)*
//	term    := unary (('*' | '/' | '%') unary)*
//	unary   := ('+' | '-') unary | primary
//	primary := number | ident | '(' expr ')'
func Parse(src string) (Node, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}
	node, err := p.expr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, fmt.Errorf("unexpected %s", t)
	}
	return node, nil
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expr() (Node, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek().kind
		if op != tokPlus && op != tokMinus {
			return left, nil
		}
		p.next()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}
}

func (p *parser) term() (Node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek().kind
		if op != tokStar && op != tokSlash && op != tokPercent {
			return left, nil
		}
		p.next()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}
}

func (p *parser) unary() (Node, error) {
	if op := p.peek().kind; op == tokPlus || op == tokMinus {
		p.next()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return unaryNode{op: op, operand: operand}, nil
	}
	return p.primary()
}

func (p *parser) primary() (Node, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		return numberNode(t.value), nil
	case tokIdent:
		return identNode(t.text), nil
	case tokLParen:
		node, err := p.expr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, fmt.Errorf("expected ')' got %s", closing)
		}
		return node, nil
	}
	return nil, fmt.Errorf("unexpected %s", t)
}
