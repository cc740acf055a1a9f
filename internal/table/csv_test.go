package table_test

import (
	"strings"
	"testing"

	"github.com/findsight/findsight-cli/internal/table"
)

func TestReadCSVTypesAndShape(t *testing.T) {
	content := "date,asset,finding,severity\n" +
		"2024-03-01,P-101,Seal leak on discharge side,3\n" +
		"2024-03-05,K-201,\"Vibration high, bearing suspect\",5\n" +
		"2024-03-09,P-101,,2\n"
	tab, err := table.ReadCSV(strings.NewReader(content), "findings.csv")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got, want := len(tab.Columns), 4; got != want {
		t.Fatalf("columns = %d, want %d", got, want)
	}
	if got, want := len(tab.Rows), 3; got != want {
		t.Fatalf("rows = %d, want %d", got, want)
	}
	if err := tab.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if k := tab.ColumnKind(0); k != table.KindTime {
		t.Errorf("date column kind = %s, want datetime", k)
	}
	if k := tab.ColumnKind(3); k != table.KindNumber {
		t.Errorf("severity column kind = %s, want numeric", k)
	}
	if k := tab.ColumnKind(2); k != table.KindText {
		t.Errorf("finding column kind = %s, want text", k)
	}
	// Quoted field with embedded comma survives as one cell.
	if got := tab.Rows[1][2].String(); got != "Vibration high, bearing suspect" {
		t.Errorf("quoted cell = %q", got)
	}
	// Empty cell is null and renders empty.
	if tab.Rows[2][2].Kind != table.KindNull {
		t.Errorf("empty cell kind = %s, want null", tab.Rows[2][2].Kind)
	}
}

func TestReadCSVSniffsSemicolon(t *testing.T) {
	content := "asset;status;finding\nP-101;Open;Seal leak\n"
	tab, err := table.ReadCSV(strings.NewReader(content), "eu.csv")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got, want := len(tab.Columns), 3; got != want {
		t.Fatalf("columns = %d, want %d (semicolon not sniffed)", got, want)
	}
	if got := tab.Rows[0][1].String(); got != "Open" {
		t.Errorf("cell = %q, want Open", got)
	}
}

func TestReadCSVLatin1Fallback(t *testing.T) {
	// 0xF6 is ö in latin-1 and invalid as standalone UTF-8.
	raw := []byte("asset,finding\nP-101,Temperaturf\xf6hler defekt\n")
	tab, err := table.ReadCSV(strings.NewReader(string(raw)), "latin1.csv")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got := tab.Rows[0][1].String(); !strings.Contains(got, "fühler") {
		t.Errorf("latin-1 cell = %q, want decoded umlaut", got)
	}
}

func TestReadCSVRaggedRowsPadded(t *testing.T) {
	content := "a,b,c\n1,2\n"
	tab, err := table.ReadCSV(strings.NewReader(content), "ragged.csv")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := tab.Validate(); err != nil {
		t.Fatalf("validate after padding: %v", err)
	}
	if tab.Rows[0][2].Kind != table.KindNull {
		t.Errorf("padded cell kind = %s, want null", tab.Rows[0][2].Kind)
	}
}

func TestReadCSVEmptyInput(t *testing.T) {
	if _, err := table.ReadCSV(strings.NewReader(""), "empty.csv"); err == nil {
		t.Fatalf("expected error for headerless input")
	}
}

func TestSnapshotIsolatesRowOrder(t *testing.T) {
	content := "a\n1\n2\n"
	tab, err := table.ReadCSV(strings.NewReader(content), "t.csv")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	snap := tab.Snapshot()
	tab.Rows[0], tab.Rows[1] = tab.Rows[1], tab.Rows[0]
	if got := snap.Rows[0][0].String(); got != "1" {
		t.Errorf("snapshot saw mutation: row0 = %q", got)
	}
}
