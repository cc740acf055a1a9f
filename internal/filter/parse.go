package filter

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/findsight/findsight-cli/internal/table"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokWord
	tokString
	tokNumber
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// ParseError reports a syntax problem in a filter expression.
type ParseError struct {
	Input string
	Pos   int
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse filter at offset %d: %s", e.Pos, e.Msg)
}

// Parse turns a filter expression string into a predicate tree. The single
// word ALL yields ErrBroadQuery.
func Parse(input string) (Expr, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, &ParseError{Input: input, Msg: "empty expression"}
	}
	if strings.EqualFold(trimmed, "all") {
		return nil, ErrBroadQuery
	}
	toks, err := lex(trimmed)
	if err != nil {
		return nil, err
	}
	p := &parser{input: trimmed, toks: toks}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, &ParseError{Input: trimmed, Pos: t.pos, Msg: fmt.Sprintf("unexpected %q after expression", t.text)}
	}
	return expr, nil
}

func lex(s string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			toks = append(toks, token{tokLParen, "(", i})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")", i})
			i++
		case c == '\'' || c == '"':
			lit, n, err := lexString(s[i:], rune(c))
			if err != nil {
				return nil, &ParseError{Input: s, Pos: i, Msg: err.Error()}
			}
			toks = append(toks, token{tokString, lit, i})
			i += n
		case strings.ContainsRune("=!<>&|", rune(c)):
			op, n, err := lexOp(s[i:])
			if err != nil {
				return nil, &ParseError{Input: s, Pos: i, Msg: err.Error()}
			}
			toks = append(toks, token{tokOp, op, i})
			i += n
		case c >= '0' && c <= '9' || c == '-' && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '9':
			j := i + 1
			for j < len(s) && (s[j] >= '0' && s[j] <= '9' || s[j] == '.' || s[j] == 'e' || s[j] == 'E' || s[j] == '-' || s[j] == '+') {
				j++
			}
			toks = append(toks, token{tokNumber, s[i:j], i})
			i = j
		case isWordRune(rune(c)):
			j := i
			for j < len(s) && isWordRune(rune(s[j])) {
				j++
			}
			toks = append(toks, token{tokWord, s[i:j], i})
			i = j
		default:
			return nil, &ParseError{Input: s, Pos: i, Msg: fmt.Sprintf("unexpected character %q", c)}
		}
	}
	toks = append(toks, token{tokEOF, "", len(s)})
	return toks, nil
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.' || r == '-' || r == '/' || r == ':'
}

func lexString(s string, quote rune) (string, int, error) {
	var b strings.Builder
	i := 1
	for i < len(s) {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			b.WriteByte(s[i+1])
			i += 2
			continue
		}
		if rune(c) == quote {
			return b.String(), i + 1, nil
		}
		b.WriteByte(c)
		i++
	}
	return "", 0, fmt.Errorf("unterminated string")
}

func lexOp(s string) (string, int, error) {
	two := map[string]bool{"==": true, "!=": true, "<=": true, ">=": true, "&&": true, "||": true}
	if len(s) >= 2 && two[s[:2]] {
		return s[:2], 2, nil
	}
	switch s[0] {
	case '<', '>', '=', '!':
		return string(s[0]), 1, nil
	}
	return "", 0, fmt.Errorf("unexpected operator %q", s[0])
}

type parser struct {
	input string
	toks  []token
	pos   int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) errf(t token, format string, args ...any) error {
	return &ParseError{Input: p.input, Pos: t.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for isKeyword(p.peek(), "or") || isOpTok(p.peek(), "||") {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Or{L: left, R: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for isKeyword(p.peek(), "and") || isOpTok(p.peek(), "&&") {
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &And{L: left, R: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (Expr, error) {
	t := p.peek()
	if isKeyword(t, "not") || isOpTok(t, "!") {
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Not{X: x}, nil
	}
	if t.kind == tokLParen {
		p.next()
		x, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if c := p.next(); c.kind != tokRParen {
			return nil, p.errf(c, "expected ')', got %q", c.text)
		}
		return x, nil
	}
	return p.parseCond()
}

func (p *parser) parseCond() (Expr, error) {
	col := p.next()
	if col.kind != tokWord && col.kind != tokString {
		return nil, p.errf(col, "expected column name, got %q", col.text)
	}
	op := p.next()
	if isKeyword(op, "contains") {
		lit := p.next()
		if lit.kind != tokString && lit.kind != tokWord && lit.kind != tokNumber {
			return nil, p.errf(lit, "expected substring after contains, got %q", lit.text)
		}
		return &Contains{Col: col.text, Substr: lit.text}, nil
	}
	if op.kind != tokOp {
		return nil, p.errf(op, "expected comparison operator, got %q", op.text)
	}
	var cmpOp CompareOp
	switch op.text {
	case "==", "=":
		cmpOp = OpEq
	case "!=":
		cmpOp = OpNe
	case "<":
		cmpOp = OpLt
	case "<=":
		cmpOp = OpLe
	case ">":
		cmpOp = OpGt
	case ">=":
		cmpOp = OpGe
	default:
		return nil, p.errf(op, "unsupported operator %q", op.text)
	}
	lit := p.next()
	switch lit.kind {
	case tokString:
		return &Compare{Col: col.text, Op: cmpOp, Lit: Literal{Raw: lit.text, Quoted: true}}, nil
	case tokNumber:
		if n, err := strconv.ParseFloat(lit.text, 64); err == nil {
			return &Compare{Col: col.text, Op: cmpOp, Lit: Literal{Raw: lit.text, Num: n, IsNum: true}}, nil
		}
		// Digit-led but not numeric, e.g. a bare 2024-01-01 date.
		return &Compare{Col: col.text, Op: cmpOp, Lit: Literal{Raw: lit.text}}, nil
	case tokWord:
		// Bare literal, e.g. a date or identifier-like value.
		return &Compare{Col: col.text, Op: cmpOp, Lit: Literal{Raw: lit.text}}, nil
	default:
		return nil, p.errf(lit, "expected literal, got %q", lit.text)
	}
}

func isKeyword(t token, kw string) bool {
	return t.kind == tokWord && strings.EqualFold(t.text, kw)
}

func isOpTok(t token, op string) bool {
	return t.kind == tokOp && t.text == op
}

func parseLiteralTime(lit Literal) (time.Time, bool) {
	return table.ParseTime(lit.Raw)
}
