package retrieval

import (
	"encoding/csv"
	"strings"
	"testing"

	"github.com/findsight/findsight-cli/internal/table"
)

func mkTable(t *testing.T, raw string) *table.Table {
	t.Helper()
	tab, err := table.ReadCSV(strings.NewReader(raw), "test.csv")
	if err != nil {
		t.Fatalf("read table: %v", err)
	}
	return tab
}

func TestSerializeRoundTrip(t *testing.T) {
	tab := mkTable(t, "asset,finding\n"+
		"P-101,\"Seal leak, discharge side\"\n"+
		"K-201,\"multi\nline note\"\n"+
		"V-330,\n")
	out := SerializeRows(tab.Columns, tab.Rows, 50)

	r := csv.NewReader(strings.NewReader(out))
	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("reparse serialized block: %v", err)
	}
	// Header plus exactly one logical record per row.
	if got, want := len(records), 1+len(tab.Rows); got != want {
		t.Fatalf("records = %d, want %d", got, want)
	}
	for i, rec := range records {
		if len(rec) != len(tab.Columns) {
			t.Errorf("record %d has %d fields, want %d", i, len(rec), len(tab.Columns))
		}
	}
	if records[2][1] != "multi\nline note" {
		t.Errorf("multiline field = %q", records[2][1])
	}
	// Null renders as empty.
	if records[3][1] != "" {
		t.Errorf("null field = %q, want empty", records[3][1])
	}
}

func TestSerializeCapsIndependently(t *testing.T) {
	var b strings.Builder
	b.WriteString("n\n")
	for i := 0; i < 300; i++ {
		b.WriteString("x\n")
	}
	tab := mkTable(t, b.String())

	out := SerializeRows(tab.Columns, tab.Rows, 10)
	if !strings.Contains(out, "[truncated to 10 rows]") {
		t.Errorf("missing truncation trailer:\n%s", out)
	}
	if got := strings.Count(out, "\n"); got != 12 { // header + 10 rows + trailer
		t.Errorf("line count = %d, want 12", got)
	}

	// Zero/oversized limits clamp to the hard ceiling.
	out = SerializeRows(tab.Columns, tab.Rows, 0)
	if !strings.Contains(out, "[truncated to 200 rows]") {
		t.Errorf("hard cap not applied:\n%s", out[:80])
	}
	out = SerializeRows(tab.Columns, tab.Rows, 500)
	if !strings.Contains(out, "[truncated to 200 rows]") {
		t.Errorf("limit above ceiling not clamped")
	}
}

func TestSerializeEmptyRows(t *testing.T) {
	out := SerializeRows([]string{"a", "b"}, nil, 10)
	if out != "a,b\n" {
		t.Errorf("empty serialization = %q", out)
	}
}
