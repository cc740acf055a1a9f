package filter_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/findsight/findsight-cli/internal/filter"
	"github.com/findsight/findsight-cli/internal/table"
)

func mkTable(t *testing.T, csv string) *table.Table {
	t.Helper()
	tab, err := table.ReadCSV(strings.NewReader(csv), "test.csv")
	if err != nil {
		t.Fatalf("read table: %v", err)
	}
	return tab
}

func findingsTable(t *testing.T) *table.Table {
	return mkTable(t, "date,asset,status,severity,finding\n"+
		"2024-01-05,P-101,Open,3,Seal leak on discharge side\n"+
		"2024-02-10,K-201,Closed,5,Vibration high at second stage\n"+
		"2024-03-15,K-201,Open,2,Oil carryover observed\n"+
		"2024-04-01,V-330,Open,4,Relief valve passing\n")
}

func evalIndices(t *testing.T, tab *table.Table, expr string) []int {
	t.Helper()
	e, err := filter.Parse(expr)
	if err != nil {
		t.Fatalf("parse %q: %v", expr, err)
	}
	got, err := filter.Eval(e, tab)
	if err != nil {
		t.Fatalf("eval %q: %v", expr, err)
	}
	return got
}

func TestEvalExpressions(t *testing.T) {
	tab := findingsTable(t)
	cases := []struct {
		name string
		expr string
		want []int
	}{
		{"string equality", "asset == 'K-201'", []int{1, 2}},
		{"equality is case-insensitive", "asset == 'k-201'", []int{1, 2}},
		{"single equals tolerated", "asset = 'P-101'", []int{0}},
		{"not equal", "asset != 'K-201'", []int{0, 3}},
		{"contains", "finding contains 'leak'", []int{0}},
		{"contains folds case", "finding contains 'VIBRATION'", []int{1}},
		{"numeric comparison", "severity >= 4", []int{1, 3}},
		{"date comparison", "date >= '2024-03-01'", []int{2, 3}},
		{"bare date literal", "date < 2024-02-01", []int{0}},
		{"and", "asset == 'K-201' and status == 'Open'", []int{2}},
		{"or", "asset == 'P-101' or asset == 'V-330'", []int{0, 3}},
		{"not", "not status == 'Open'", []int{1}},
		{"parens", "(asset == 'K-201' or asset == 'P-101') and severity > 2", []int{0, 1}},
		{"symbolic connectives", "asset == 'K-201' && severity == 5", []int{1}},
		{"no matches", "asset == 'X-999'", nil},
		{"matches everything", "severity >= 0", []int{0, 1, 2, 3}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := evalIndices(t, tab, c.expr)
			if len(got) != len(c.want) {
				t.Fatalf("indices = %v, want %v", got, c.want)
			}
			for i := range got {
				if got[i] != c.want[i] {
					t.Fatalf("indices = %v, want %v", got, c.want)
				}
			}
		})
	}
}

func TestParseBroadQuery(t *testing.T) {
	for _, s := range []string{"ALL", "all", "  All  "} {
		if _, err := filter.Parse(s); !errors.Is(err, filter.ErrBroadQuery) {
			t.Errorf("Parse(%q) err = %v, want ErrBroadQuery", s, err)
		}
	}
}

func TestParseErrors(t *testing.T) {
	for _, s := range []string{
		"",
		"== 'x'",
		"asset ==",
		"asset == 'unterminated",
		"asset == 'a' garbage",
		"asset %% 'a'",
		"(asset == 'a'",
	} {
		if _, err := filter.Parse(s); err == nil {
			t.Errorf("Parse(%q): expected error", s)
		}
	}
}

func TestEvalUnknownColumn(t *testing.T) {
	tab := findingsTable(t)
	e, err := filter.Parse("plant_code == 'A'")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, err = filter.Eval(e, tab)
	var uc *filter.UnknownColumnError
	if !errors.As(err, &uc) {
		t.Fatalf("err = %v, want UnknownColumnError", err)
	}
	if uc.Column != "plant_code" {
		t.Errorf("column = %q", uc.Column)
	}
}

func TestEvalTypeMismatch(t *testing.T) {
	tab := findingsTable(t)
	e, err := filter.Parse("severity > 'high'")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, err = filter.Eval(e, tab)
	var ee *filter.EvalError
	if !errors.As(err, &ee) {
		t.Fatalf("err = %v, want EvalError", err)
	}
}

func TestEvalNullNeverMatches(t *testing.T) {
	tab := mkTable(t, "asset,finding\nP-101,\n,leak\n")
	if got := evalIndices(t, tab, "finding contains 'leak'"); len(got) != 1 || got[0] != 1 {
		t.Errorf("contains over null = %v, want [1]", got)
	}
	if got := evalIndices(t, tab, "asset != 'P-101'"); len(got) != 0 {
		t.Errorf("null cell matched != comparison: %v", got)
	}
}

func TestExprStringRoundTrip(t *testing.T) {
	e, err := filter.Parse("asset == 'K-201' and not (status contains 'closed')")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	again, err := filter.Parse(e.String())
	if err != nil {
		t.Fatalf("reparse rendered form %q: %v", e.String(), err)
	}
	if again.String() != e.String() {
		t.Errorf("render not stable: %q vs %q", e.String(), again.String())
	}
}
