// Package filter implements the boolean predicate grammar used for
// model-generated row filters. Expressions are parsed into a typed tree and
// evaluated by a small interpreter, so no generated text is ever executed.
//
// Grammar (case-insensitive keywords):
//
//	expr   := and ( ("or" | "||") and )*
//	and    := unary ( ("and" | "&&") unary )*
//	unary  := ("not" | "!") unary | "(" expr ")" | cond
//	cond   := column op literal | column "contains" string
//	op     := == | != | < | <= | > | >= | =
//
// Column names may be bare words or quoted strings; literals are quoted
// strings or numbers. The single token ALL marks a broad query.
package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/findsight/findsight-cli/internal/table"
)

// ErrBroadQuery is returned by Parse for the ALL sentinel: the model judged
// the question too broad to filter.
var ErrBroadQuery = errors.New("broad query, no filter")

// UnknownColumnError reports a filter referencing a column absent from the
// table schema.
type UnknownColumnError struct{ Column string }

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown column %q in filter", e.Column)
}

// EvalError reports a type mismatch discovered while evaluating a condition.
type EvalError struct {
	Column string
	Reason string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("cannot evaluate condition on %q: %s", e.Column, e.Reason)
}

// Expr is a node of the predicate tree.
type Expr interface {
	// Bind resolves column references against a table schema.
	Bind(t *table.Table) error
	// Match evaluates the predicate on a single row of the bound table.
	Match(row table.Row) (bool, error)
	// String renders the expression back to grammar text.
	String() string
}

// CompareOp enumerates comparison operators.
type CompareOp int

const (
	OpEq CompareOp = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

func (op CompareOp) String() string {
	switch op {
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	default:
		return "?"
	}
}

// Literal is a comparison operand from the expression text.
type Literal struct {
	Raw    string
	Num    float64
	IsNum  bool
	Quoted bool
}

func (l Literal) String() string {
	if l.Quoted {
		return "'" + strings.ReplaceAll(l.Raw, "'", "\\'") + "'"
	}
	return l.Raw
}

// Compare is `column op literal`.
type Compare struct {
	Col string
	Op  CompareOp
	Lit Literal

	idx int
}

func (c *Compare) Bind(t *table.Table) error {
	i := t.ColumnIndex(c.Col)
	if i < 0 {
		return &UnknownColumnError{Column: c.Col}
	}
	c.idx = i
	return nil
}

func (c *Compare) Match(row table.Row) (bool, error) {
	if c.idx >= len(row) {
		return false, nil
	}
	return compareValue(row[c.idx], c.Op, c.Lit, c.Col)
}

func (c *Compare) String() string {
	return fmt.Sprintf("%s %s %s", c.Col, c.Op, c.Lit)
}

// Contains is a case-insensitive substring test on a column.
type Contains struct {
	Col    string
	Substr string

	idx int
}

func (c *Contains) Bind(t *table.Table) error {
	i := t.ColumnIndex(c.Col)
	if i < 0 {
		return &UnknownColumnError{Column: c.Col}
	}
	c.idx = i
	return nil
}

func (c *Contains) Match(row table.Row) (bool, error) {
	if c.idx >= len(row) {
		return false, nil
	}
	v := row[c.idx]
	if v.Kind == table.KindNull {
		return false, nil
	}
	return strings.Contains(strings.ToLower(v.String()), strings.ToLower(c.Substr)), nil
}

func (c *Contains) String() string {
	return fmt.Sprintf("%s contains '%s'", c.Col, c.Substr)
}

// And is a conjunction.
type And struct{ L, R Expr }

func (a *And) Bind(t *table.Table) error {
	if err := a.L.Bind(t); err != nil {
		return err
	}
	return a.R.Bind(t)
}

func (a *And) Match(row table.Row) (bool, error) {
	ok, err := a.L.Match(row)
	if err != nil || !ok {
		return false, err
	}
	return a.R.Match(row)
}

func (a *And) String() string { return fmt.Sprintf("(%s and %s)", a.L, a.R) }

// Or is a disjunction.
type Or struct{ L, R Expr }

func (o *Or) Bind(t *table.Table) error {
	if err := o.L.Bind(t); err != nil {
		return err
	}
	return o.R.Bind(t)
}

func (o *Or) Match(row table.Row) (bool, error) {
	ok, err := o.L.Match(row)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}
	return o.R.Match(row)
}

func (o *Or) String() string { return fmt.Sprintf("(%s or %s)", o.L, o.R) }

// Not negates its operand.
type Not struct{ X Expr }

func (n *Not) Bind(t *table.Table) error { return n.X.Bind(t) }

func (n *Not) Match(row table.Row) (bool, error) {
	ok, err := n.X.Match(row)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

func (n *Not) String() string { return fmt.Sprintf("not %s", n.X) }

// Eval binds expr against t and returns matching row indices in table order.
func Eval(expr Expr, t *table.Table) ([]int, error) {
	if err := expr.Bind(t); err != nil {
		return nil, err
	}
	var out []int
	for i, row := range t.Rows {
		ok, err := expr.Match(row)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, i)
		}
	}
	return out, nil
}

// compareValue applies op between a typed cell and a literal. Null cells
// never match. Equality falls back to case-insensitive text comparison;
// ordering requires compatible kinds.
func compareValue(v table.Value, op CompareOp, lit Literal, col string) (bool, error) {
	if v.Kind == table.KindNull {
		return false, nil
	}
	switch op {
	case OpEq, OpNe:
		eq := valuesEqual(v, lit)
		if op == OpNe {
			return !eq, nil
		}
		return eq, nil
	}

	// Ordering operators.
	var cmp int
	switch {
	case v.Kind == table.KindNumber && lit.IsNum:
		cmp = compareFloat(v.Num, lit.Num)
	case v.Kind == table.KindTime:
		lt, ok := parseLiteralTime(lit)
		if !ok {
			return false, &EvalError{Column: col, Reason: fmt.Sprintf("cannot compare datetime against %s", lit)}
		}
		switch {
		case v.Time.Before(lt):
			cmp = -1
		case v.Time.After(lt):
			cmp = 1
		}
	case v.Kind == table.KindText && !lit.IsNum:
		cmp = strings.Compare(strings.ToLower(v.Raw), strings.ToLower(lit.Raw))
	default:
		return false, &EvalError{Column: col, Reason: fmt.Sprintf("cannot order %s value against %s", v.Kind, lit)}
	}

	switch op {
	case OpLt:
		return cmp < 0, nil
	case OpLe:
		return cmp <= 0, nil
	case OpGt:
		return cmp > 0, nil
	case OpGe:
		return cmp >= 0, nil
	}
	return false, nil
}

func valuesEqual(v table.Value, lit Literal) bool {
	if v.Kind == table.KindNumber && lit.IsNum {
		return v.Num == lit.Num
	}
	if v.Kind == table.KindTime {
		if lt, ok := parseLiteralTime(lit); ok {
			return v.Time.Equal(lt)
		}
	}
	return strings.EqualFold(v.String(), lit.Raw)
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
