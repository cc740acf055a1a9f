// Package retrieval selects a small relevant subset of findings rows for a
// user question. The primary strategy asks a language model for a filter
// expression over the table; lexical keyword search and a deterministic
// head sample back it up, so a question always gets some grounded context.
package retrieval

import (
	"context"
	"errors"
	"fmt"

	"github.com/findsight/findsight-cli/internal/ai"
	"github.com/findsight/findsight-cli/internal/table"
)

// Strategy names which retrieval path produced a result. It is part of the
// user-facing contract: an exact filter, a keyword guess and an arbitrary
// sample carry very different recall guarantees, and the user must be able
// to tell them apart.
type Strategy string

const (
	StrategyExpression Strategy = "expression"
	StrategyKeyword    Strategy = "keyword"
	StrategySample     Strategy = "sample"
)

const (
	// DefaultMaxRows caps rows handed to the answering model.
	DefaultMaxRows = 150
	// SerializeMaxRows is the serializer's own hard ceiling, applied
	// independently of the retrieval cap.
	SerializeMaxRows = 200

	filterTemperature  = 0.0
	filterMaxTokens    = 200
	promptSampleRows   = 3
	promptSampleValues = 5
)

// ErrEmptyTable signals there is nothing to retrieve from at all. It is the
// only retrieval failure surfaced to callers.
var ErrEmptyTable = errors.New("table has no rows")

// Request is one retrieval call. The table is read-only for its duration.
type Request struct {
	Query   string
	Table   *table.Table
	Roles   table.RoleMap
	MaxRows int
}

// Result is the selected subset plus provenance for disclosure.
type Result struct {
	Rows    []table.Row
	Indices []int
	// Strategy records which path produced the rows.
	Strategy Strategy
	// ExpressionText is the model's filter when Strategy is expression.
	ExpressionText string
	// Detail is a short human-readable account of the retrieval, including
	// why a fallback was taken.
	Detail string
}

// Retriever orchestrates the three strategies against a model runtime.
type Retriever struct {
	rt    ai.Runtime
	model string
}

// New builds a Retriever. model is the provider-qualified model string used
// for filter generation.
func New(rt ai.Runtime, model string) *Retriever {
	return &Retriever{rt: rt, model: model}
}

// Retrieve runs expression retrieval, then keyword search, then a head
// sample, stopping at the first strategy that yields rows. Results are
// capped at MaxRows and preserve table order within each strategy.
func (r *Retriever) Retrieve(ctx context.Context, req Request) (*Result, error) {
	t := req.Table
	if t == nil || len(t.Rows) == 0 {
		return nil, ErrEmptyTable
	}
	maxRows := req.MaxRows
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}

	exprText, indices, exprErr := r.byExpression(ctx, req)
	if exprErr == nil && len(indices) > 0 {
		res := &Result{
			Strategy:       StrategyExpression,
			ExpressionText: exprText,
			Detail:         fmt.Sprintf("filter `%s` matched %d rows", exprText, len(indices)),
		}
		res.fill(t, indices, maxRows)
		return res, nil
	}

	reason := fallbackReason(exprText, exprErr, len(indices))

	if indices := keywordSearch(req.Query, t, req.Roles); len(indices) > 0 {
		res := &Result{
			Strategy: StrategyKeyword,
			Detail:   fmt.Sprintf("keyword search (%s) matched %d rows", reason, len(indices)),
		}
		res.fill(t, indices, maxRows)
		return res, nil
	}

	// Last resort: the head of the table, deterministic within a run and
	// across runs. The user still gets a grounded, if arbitrary, answer.
	n := len(t.Rows)
	if n > maxRows {
		n = maxRows
	}
	indices = make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	res := &Result{
		Strategy: StrategySample,
		Detail:   fmt.Sprintf("sample of first %d rows (%s, no keyword matches)", n, reason),
	}
	res.fill(t, indices, maxRows)
	return res, nil
}

// fill caps indices at maxRows and materializes the row subset.
func (res *Result) fill(t *table.Table, indices []int, maxRows int) {
	if len(indices) > maxRows {
		indices = indices[:maxRows]
		res.Detail += fmt.Sprintf(" [trimmed to %d]", maxRows)
	}
	res.Indices = indices
	res.Rows = make([]table.Row, len(indices))
	for i, idx := range indices {
		res.Rows[i] = t.Rows[idx]
	}
}

func fallbackReason(exprText string, exprErr error, matched int) string {
	switch {
	case errors.Is(exprErr, errBroad):
		return "broad query"
	case exprErr != nil:
		return fmt.Sprintf("filter unavailable: %v", exprErr)
	case matched == 0 && exprText != "":
		return fmt.Sprintf("filter `%s` matched nothing", exprText)
	default:
		return "no filter"
	}
}
