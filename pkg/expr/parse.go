package expr

import (
	"fmt"
	"math/big"
)

// Parsing follows the usual precedence ladder:
//
//	expr   := term (('+' | '-') term)*
//	term   := unary (('*' | '/') unary | implicit)*
//	unary  := ('-' | '+') unary | power
//	power  := atom ('^' unary)?
//	atom   := number | ident | '(' expr ')'
//
// Implicit multiplication applies when a factor is directly followed by
// '(' or an identifier, or by a number right after ')': "(x - 1)(x - 2)",
// "2x", "(x)2". Unary '+' is accepted only at the start of an expression
// or after '(' so that doubled operators such as "x + + 2" are rejected.

// maxNesting bounds parser recursion independently of Limits.
const maxNesting = 10000

// Limits bounds the size of a parsed tree. Zero means unlimited.
type Limits struct {
	MaxDepth int
	MaxNodes int
}

type tokenType int

const (
	tokEOF tokenType = iota
	tokNumber
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokCaret
	tokLParen
	tokRParen
)

type token struct {
	typ  tokenType
	pos  int
	text string
	num  *big.Rat
}

func (t token) describe() string {
	switch t.typ {
	case tokEOF:
		return "end of input"
	case tokNumber:
		return "number " + t.text
	case tokIdent:
		return "identifier " + t.text
	default:
		return fmt.Sprintf("'%s'", t.text)
	}
}

// Parse parses src into an expression tree.
func Parse(src string) (ExprNode, error) {
	return ParseWithLimits(src, Limits{})
}

// ParseWithLimits parses src and rejects trees larger than limits.
func ParseWithLimits(src string, limits Limits) (ExprNode, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, toks: toks}
	if p.peek().typ == tokEOF {
		return nil, p.errAt(p.peek(), "empty expression")
	}
	node, err := p.parseExpr(true)
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.typ != tokEOF {
		return nil, p.errAt(t, "unexpected "+t.describe())
	}
	if limits.MaxDepth > 0 && node.Depth() > limits.MaxDepth {
		return nil, p.errAt(token{}, fmt.Sprintf("expression deeper than %d levels", limits.MaxDepth))
	}
	if limits.MaxNodes > 0 && node.NodeCount() > limits.MaxNodes {
		return nil, p.errAt(token{}, fmt.Sprintf("expression larger than %d nodes", limits.MaxNodes))
	}
	return node, nil
}

func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case isDigit(c) || c == '.':
			t, next, err := scanNumber(src, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, t)
			i = next
		case isAlpha(c):
			start := i
			for i < len(src) && (isAlpha(src[i]) || isDigit(src[i])) {
				i++
			}
			toks = append(toks, token{typ: tokIdent, pos: start, text: src[start:i]})
		default:
			var typ tokenType
			switch c {
			case '+':
				typ = tokPlus
			case '-':
				typ = tokMinus
			case '*':
				typ = tokStar
			case '/':
				typ = tokSlash
			case '^':
				typ = tokCaret
			case '(':
				typ = tokLParen
			case ')':
				typ = tokRParen
			default:
				return nil, &ParseError{Src: src, Pos: i, Msg: fmt.Sprintf("unexpected character %q", c)}
			}
			toks = append(toks, token{typ: typ, pos: i, text: string(c)})
			i++
		}
	}
	return append(toks, token{typ: tokEOF, pos: len(src)}), nil
}

// scanNumber reads digits [ '.' digits ] [ ('e'|'E') [sign] digits ].
// An 'e' not followed by digits is left for the identifier scanner, so
// "2e" lexes as 2 followed by the identifier e.
func scanNumber(src string, start int) (token, int, error) {
	i := start
	for i < len(src) && isDigit(src[i]) {
		i++
	}
	if i < len(src) && src[i] == '.' {
		i++
		if i >= len(src) || !isDigit(src[i]) {
			return token{}, 0, &ParseError{Src: src, Pos: i, Msg: "expected digit after '.'"}
		}
		for i < len(src) && isDigit(src[i]) {
			i++
		}
	}
	if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
		j := i + 1
		if j < len(src) && (src[j] == '+' || src[j] == '-') {
			j++
		}
		if j < len(src) && isDigit(src[j]) {
			for j < len(src) && isDigit(src[j]) {
				j++
			}
			i = j
		}
	}
	text := src[start:i]
	lit := text
	if lit[0] == '.' {
		lit = "0" + lit
	}
	num, ok := new(big.Rat).SetString(lit)
	if !ok {
		return token{}, 0, &ParseError{Src: src, Pos: start, Msg: "invalid number " + text}
	}
	return token{typ: tokNumber, pos: start, text: text, num: num}, i, nil
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' }

type parser struct {
	src     string
	toks    []token
	i       int
	nesting int
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) prev() token {
	if p.i == 0 {
		return token{typ: tokEOF}
	}
	return p.toks[p.i-1]
}

func (p *parser) next() token {
	t := p.toks[p.i]
	if t.typ != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) match(tt ...tokenType) bool {
	for _, t := range tt {
		if p.peek().typ == t {
			return true
		}
	}
	return false
}

func (p *parser) errAt(t token, msg string) error {
	return &ParseError{Src: p.src, Pos: t.pos, Msg: msg}
}

func (p *parser) enter() error {
	p.nesting++
	if p.nesting > maxNesting {
		return p.errAt(p.peek(), "expression nested too deeply")
	}
	return nil
}

func (p *parser) leave() { p.nesting-- }

func (p *parser) parseExpr(allowPlus bool) (ExprNode, error) {
	left, err := p.parseTerm(allowPlus)
	if err != nil {
		return nil, err
	}
	for p.match(tokPlus, tokMinus) {
		op := OpAdd
		if p.next().typ == tokMinus {
			op = OpSub
		}
		right, err := p.parseTerm(false)
		if err != nil {
			return nil, err
		}
		left = &BinaryNode{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseTerm(allowPlus bool) (ExprNode, error) {
	left, err := p.parseUnary(allowPlus)
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.match(tokStar, tokSlash):
			op := OpMul
			if p.next().typ == tokSlash {
				op = OpDiv
			}
			right, err := p.parseUnary(false)
			if err != nil {
				return nil, err
			}
			left = &BinaryNode{Op: op, Left: left, Right: right}
		case p.implicitProduct():
			right, err := p.parsePower()
			if err != nil {
				return nil, err
			}
			left = &BinaryNode{Op: OpMul, Left: left, Right: right}
		default:
			return left, nil
		}
	}
}

func (p *parser) implicitProduct() bool {
	switch p.peek().typ {
	case tokLParen, tokIdent:
		return true
	case tokNumber:
		return p.prev().typ == tokRParen
	default:
		return false
	}
}

func (p *parser) parseUnary(allowPlus bool) (ExprNode, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	switch t := p.peek(); t.typ {
	case tokMinus:
		p.next()
		child, err := p.parseUnary(false)
		if err != nil {
			return nil, err
		}
		return &UnaryNode{Op: OpNeg, Child: child}, nil
	case tokPlus:
		if !allowPlus {
			return nil, p.errAt(t, "unexpected '+'")
		}
		p.next()
		return p.parseUnary(false)
	default:
		return p.parsePower()
	}
}

func (p *parser) parsePower() (ExprNode, error) {
	base, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	if !p.match(tokCaret) {
		return base, nil
	}
	p.next()
	exp, err := p.parseUnary(false)
	if err != nil {
		return nil, err
	}
	return &BinaryNode{Op: OpPow, Left: base, Right: exp}, nil
}

func (p *parser) parseAtom() (ExprNode, error) {
	t := p.next()
	switch t.typ {
	case tokNumber:
		return &ConstNode{Val: t.num}, nil
	case tokIdent:
		return &VarNode{Name: t.text}, nil
	case tokLParen:
		if err := p.enter(); err != nil {
			return nil, err
		}
		defer p.leave()
		inner, err := p.parseExpr(true)
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.typ != tokRParen {
			return nil, p.errAt(closing, "expected ')' but found "+closing.describe())
		}
		return inner, nil
	default:
		return nil, p.errAt(t, "unexpected "+t.describe())
	}
}
