package retrieval

import (
	"strings"

	"github.com/findsight/findsight-cli/internal/table"
)

// Common words that carry no signal for substring search over findings.
var stopwords = map[string]bool{
	"about": true, "all": true, "any": true, "are": true, "been": true,
	"does": true, "finding": true, "findings": true, "from": true,
	"have": true, "list": true, "please": true, "recent": true,
	"show": true, "some": true, "tell": true, "that": true, "the": true,
	"them": true, "there": true, "these": true, "this": true, "what": true,
	"when": true, "where": true, "which": true, "with": true,
}

const minKeywordLen = 4

// extractKeywords tokenizes a question on whitespace, trims edge
// punctuation, and keeps lowercased tokens long enough to be meaningful.
// Hyphenated asset tags like K-201 survive intact.
func extractKeywords(query string) []string {
	var out []string
	seen := map[string]bool{}
	for _, tok := range strings.Fields(query) {
		tok = strings.ToLower(strings.Trim(tok, `.,;:!?"'()[]`))
		if len(tok) < minKeywordLen || stopwords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}

// keywordSearch returns indices of rows whose finding or asset column
// contains any query keyword, case-insensitively, in table order. Only
// those two role columns are searched; the rest are too low-signal for
// lexical matching. Never fails: no keywords or no roles yields nil.
func keywordSearch(query string, t *table.Table, roles table.RoleMap) []int {
	keywords := extractKeywords(query)
	if len(keywords) == 0 {
		return nil
	}
	var cols []int
	for _, role := range []table.Role{table.RoleFinding, table.RoleAsset} {
		if name := roles.Column(role); name != "" {
			if idx := t.ColumnIndex(name); idx >= 0 {
				cols = append(cols, idx)
			}
		}
	}
	if len(cols) == 0 {
		return nil
	}
	var out []int
	for i, row := range t.Rows {
		if rowMatchesKeywords(row, cols, keywords) {
			out = append(out, i)
		}
	}
	return out
}

func rowMatchesKeywords(row table.Row, cols []int, keywords []string) bool {
	for _, c := range cols {
		if c >= len(row) || row[c].Kind == table.KindNull {
			continue
		}
		v := strings.ToLower(row[c].String())
		for _, kw := range keywords {
			if strings.Contains(v, kw) {
				return true
			}
		}
	}
	return false
}
