package analysis

import (
	"strings"
	"testing"

	"github.com/findsight/findsight-cli/internal/table"
)

func loadFixture(t *testing.T) (*table.Table, table.RoleMap) {
	t.Helper()
	tab, err := table.ReadCSV(strings.NewReader(
		"date,asset,status,finding\n"+
			"2024-01-05,P-101,Open,Seal leak on discharge side\n"+
			"2024-02-10,K-201,Open,Vibration high at second stage\n"+
			"2024-03-15,K-201,Closed,Oil carryover observed\n"+
			"2023-11-20,K-201,Open,Spillback valve passing\n"+
			"2024-04-01,V-330,Closed,Relief valve resealed\n"), "findings.csv")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return tab, table.DetectColumnRoles(tab.Columns)
}

func TestSummarize(t *testing.T) {
	tab, roles := loadFixture(t)
	got := Summarize(tab, roles)

	for _, want := range []string{
		"Dataset: 5 rows, 4 columns.",
		"Columns: date, asset, status, finding",
		"Unique assets: 3",
		"Top assets by finding count: K-201 (3), P-101 (1), V-330 (1)",
		"Date range: 2023-11-20 to 2024-04-01",
		"Status breakdown: Open: 3, Closed: 2",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q\ngot:\n%s", want, got)
		}
	}
	if strings.HasSuffix(got, "\n") {
		t.Error("summary has trailing newline")
	}
}

func TestSummarizeSkipsUnsetRoles(t *testing.T) {
	tab, err := table.ReadCSV(strings.NewReader(
		"finding,severity\nSeal leak,high\nValve passing,low\n"), "min.csv")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	got := Summarize(tab, table.DetectColumnRoles(tab.Columns))
	if !strings.Contains(got, "Dataset: 2 rows, 2 columns.") {
		t.Errorf("missing shape line:\n%s", got)
	}
	for _, absent := range []string{"Unique assets", "Date range", "Status breakdown"} {
		if strings.Contains(got, absent) {
			t.Errorf("summary mentions %q without the role column:\n%s", absent, got)
		}
	}
}

func TestTopValuesDeterministicTies(t *testing.T) {
	counts := map[string]int{"b": 2, "a": 2, "c": 5}
	got := topValues(counts, 3)
	want := []ValueCount{{"c", 5}, {"a", 2}, {"b", 2}}
	if len(got) != len(want) {
		t.Fatalf("len = %d", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("topValues[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestValueCountsIgnoresNulls(t *testing.T) {
	tab, err := table.ReadCSV(strings.NewReader("status,id\nOpen,1\n,2\nOpen,3\nClosed,4\n"), "s.csv")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	counts := valueCounts(tab, 0)
	if counts["Open"] != 2 || counts["Closed"] != 1 || len(counts) != 2 {
		t.Errorf("counts = %v", counts)
	}
}
