package retrieval

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/findsight/findsight-cli/internal/table"
)

// SerializeRows renders rows as an RFC 4180 CSV block for model
// consumption: a header line, then one logical record per row, nulls as
// empty fields. Quoting keeps embedded commas and newlines lossless. At
// most limit rows are emitted regardless of upstream caps; a trailer notes
// the cut when it happens.
func SerializeRows(columns []string, rows []table.Row, limit int) string {
	if limit <= 0 || limit > SerializeMaxRows {
		limit = SerializeMaxRows
	}
	truncated := false
	if len(rows) > limit {
		rows = rows[:limit]
		truncated = true
	}

	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write(columns)
	record := make([]string, len(columns))
	for _, row := range rows {
		for i := range columns {
			if i < len(row) {
				record[i] = row[i].String()
			} else {
				record[i] = ""
			}
		}
		_ = w.Write(record)
	}
	w.Flush()
	if truncated {
		b.WriteString(fmt.Sprintf("[truncated to %d rows]\n", limit))
	}
	return b.String()
}
