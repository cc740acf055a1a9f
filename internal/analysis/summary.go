// Package analysis produces the plain-text dataset summary embedded in the
// answering model's system prompt and shown by `findsight inspect`.
package analysis

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/findsight/findsight-cli/internal/table"
)

const topAssetCount = 5

// Summarize renders a compact overview of the full dataset: shape, columns,
// the busiest assets, the date range and the status breakdown, each section
// present only when its role column is set.
func Summarize(t *table.Table, roles table.RoleMap) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Dataset: %d rows, %d columns.\n", len(t.Rows), len(t.Columns)))
	b.WriteString("Columns: " + strings.Join(t.Columns, ", ") + "\n")

	if col := roles.Column(table.RoleAsset); col != "" {
		if idx := t.ColumnIndex(col); idx >= 0 {
			counts := valueCounts(t, idx)
			b.WriteString(fmt.Sprintf("Unique assets: %d\n", len(counts)))
			if top := topValues(counts, topAssetCount); len(top) > 0 {
				parts := make([]string, len(top))
				for i, vc := range top {
					parts[i] = fmt.Sprintf("%s (%d)", vc.Value, vc.Count)
				}
				b.WriteString("Top assets by finding count: " + strings.Join(parts, ", ") + "\n")
			}
		}
	}

	if col := roles.Column(table.RoleDate); col != "" {
		if idx := t.ColumnIndex(col); idx >= 0 {
			if lo, hi, ok := dateRange(t, idx); ok {
				b.WriteString(fmt.Sprintf("Date range: %s to %s\n", lo.Format("2006-01-02"), hi.Format("2006-01-02")))
			}
		}
	}

	if col := roles.Column(table.RoleStatus); col != "" {
		if idx := t.ColumnIndex(col); idx >= 0 {
			counts := valueCounts(t, idx)
			if len(counts) > 0 {
				all := topValues(counts, len(counts))
				parts := make([]string, len(all))
				for i, vc := range all {
					parts[i] = fmt.Sprintf("%s: %d", vc.Value, vc.Count)
				}
				b.WriteString("Status breakdown: " + strings.Join(parts, ", ") + "\n")
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// ValueCount pairs a distinct column value with its row count.
type ValueCount struct {
	Value string
	Count int
}

func valueCounts(t *table.Table, col int) map[string]int {
	counts := map[string]int{}
	for _, row := range t.Rows {
		if col >= len(row) || row[col].Kind == table.KindNull {
			continue
		}
		counts[row[col].String()]++
	}
	return counts
}

// topValues sorts counts descending, ties broken by value for determinism.
func topValues(counts map[string]int, n int) []ValueCount {
	out := make([]ValueCount, 0, len(counts))
	for v, c := range counts {
		out = append(out, ValueCount{Value: v, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Value < out[j].Value
		}
		return out[i].Count > out[j].Count
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func dateRange(t *table.Table, col int) (lo, hi time.Time, ok bool) {
	for _, row := range t.Rows {
		if col >= len(row) || row[col].Kind != table.KindTime {
			continue
		}
		ts := row[col].Time
		if !ok {
			lo, hi, ok = ts, ts, true
			continue
		}
		if ts.Before(lo) {
			lo = ts
		}
		if ts.After(hi) {
			hi = ts
		}
	}
	return lo, hi, ok
}
