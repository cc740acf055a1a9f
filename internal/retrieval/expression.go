package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/findsight/findsight-cli/internal/ai"
	"github.com/findsight/findsight-cli/internal/filter"
	"github.com/findsight/findsight-cli/internal/table"
)

// errBroad marks the model's ALL sentinel: no filter is applicable.
var errBroad = filter.ErrBroadQuery

const filterPromptPreamble = `You are a data analyst assistant. Given a findings table with the columns and sample rows below, write ONE boolean filter expression selecting the rows relevant to the user's question.

Expression language (nothing else is allowed):
  column == 'value'      column != 'value'
  column > number        column >= number     column < number     column <= number
  column contains 'text'            (case-insensitive substring)
  combine with: and, or, not, parentheses
Column names must be taken verbatim from the list below. Quote values with single quotes. Dates are compared as 'YYYY-MM-DD'.

Examples:
  asset == 'P-101'
  status contains 'open'
  asset == 'K-201' and status == 'Open'
  date >= '2024-01-01'

If the question is broad (e.g. "summarise all findings") or cannot be expressed as a filter, respond with exactly: ALL
Respond with only the expression or ALL. No explanation, no code fences.`

// buildFilterPrompt assembles the filter-generation prompt: schema with
// role annotations and example values for type hinting, a few sample rows,
// and the question.
func buildFilterPrompt(req Request) string {
	t := req.Table
	var b strings.Builder
	b.WriteString(filterPromptPreamble)
	b.WriteString("\n\nCOLUMNS:\n")
	roleByCol := map[string]table.Role{}
	for role, col := range req.Roles {
		if col != "" {
			roleByCol[col] = role
		}
	}
	for i, col := range t.Columns {
		b.WriteString(fmt.Sprintf("  %s (%s)", col, t.ColumnKind(i)))
		if role, ok := roleByCol[col]; ok {
			b.WriteString(fmt.Sprintf(" [%s]", role))
		}
		if vals := sampleValues(t, i, promptSampleValues); len(vals) > 0 {
			b.WriteString(": e.g. " + strings.Join(vals, ", "))
		}
		b.WriteString("\n")
	}
	b.WriteString("\nSAMPLE ROWS:\n")
	n := len(t.Rows)
	if n > promptSampleRows {
		n = promptSampleRows
	}
	b.WriteString(SerializeRows(t.Columns, t.Rows[:n], promptSampleRows))
	b.WriteString("\nUSER QUESTION:\n")
	b.WriteString(req.Query)
	return b.String()
}

// sampleValues returns up to limit distinct non-null values of a column.
func sampleValues(t *table.Table, col, limit int) []string {
	seen := map[string]bool{}
	var out []string
	for _, row := range t.Rows {
		if col >= len(row) || row[col].Kind == table.KindNull {
			continue
		}
		v := row[col].String()
		if len(v) > 40 {
			v = v[:37] + "..."
		}
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, "'"+v+"'")
		if len(out) == limit {
			break
		}
	}
	return out
}

// byExpression asks the model for a filter, parses it against the grammar
// and evaluates it. Any transport error, unparsable reply, unknown column,
// evaluation error or the ALL sentinel is returned as an error; an empty
// match comes back as zero indices with a nil error. Both trigger fallback.
func (r *Retriever) byExpression(ctx context.Context, req Request) (string, []int, error) {
	resp, err := r.rt.Generate(ctx, ai.GenerateRequest{
		Model:       r.model,
		Messages:    []ai.Message{{Role: ai.RoleUser, Content: buildFilterPrompt(req)}},
		Temperature: filterTemperature,
		MaxTokens:   filterMaxTokens,
	})
	if err != nil {
		return "", nil, fmt.Errorf("filter generation: %w", err)
	}
	raw := resp.Text()

	expr, exprText, err := extractExpression(raw, req.Table)
	if err != nil {
		return exprText, nil, err
	}
	indices, err := filter.Eval(expr, req.Table)
	if err != nil {
		return exprText, nil, fmt.Errorf("filter evaluation: %w", err)
	}
	return exprText, indices, nil
}

// extractExpression strips commentary and code fences from a model reply
// and returns the first line that parses as a filter expression.
func extractExpression(reply string, t *table.Table) (filter.Expr, string, error) {
	cleaned := strings.ReplaceAll(reply, "```", "\n")
	var lastErr error
	var lastLine string
	for _, line := range strings.Split(cleaned, "\n") {
		line = strings.TrimSpace(strings.Trim(strings.TrimSpace(line), "`"))
		if line == "" || strings.EqualFold(line, "text") {
			continue
		}
		expr, err := filter.Parse(line)
		if err == nil {
			return expr, line, nil
		}
		if errors.Is(err, filter.ErrBroadQuery) {
			return nil, line, err
		}
		lastErr = err
		lastLine = line
	}
	if lastErr != nil {
		return nil, lastLine, fmt.Errorf("no parsable expression in reply: %w", lastErr)
	}
	return nil, "", errors.New("empty filter reply")
}
