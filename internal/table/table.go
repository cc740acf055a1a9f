package table

import (
	"fmt"
	"strings"
	"time"
)

// Kind classifies a cell value after type inference.
type Kind int

const (
	KindNull Kind = iota
	KindText
	KindNumber
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindText:
		return "text"
	case KindNumber:
		return "numeric"
	case KindTime:
		return "datetime"
	default:
		return "unknown"
	}
}

// Value is a single typed cell. Raw always holds the original text for
// non-null values, so serialization is lossless regardless of inference.
type Value struct {
	Kind Kind
	Raw  string
	Num  float64
	Time time.Time
}

// String renders the cell for output; nulls render as empty.
func (v Value) String() string {
	if v.Kind == KindNull {
		return ""
	}
	return v.Raw
}

// Row holds one record's cells, aligned with Table.Columns.
type Row []Value

// Table is an ordered set of rows sharing a fixed column set.
// Row order is insertion order from the source file.
type Table struct {
	Name    string
	Columns []string
	Rows    []Row
}

// ColumnIndex resolves a column name case-insensitively. Returns -1 if absent.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if strings.EqualFold(c, name) {
			return i
		}
	}
	return -1
}

// ColumnKind reports the predominant non-null kind of a column, in the same
// spirit as per-column type tallies in dataset analysis: the kind with the
// most parsed cells wins, text losing ties to numeric and datetime.
func (t *Table) ColumnKind(idx int) Kind {
	if idx < 0 || idx >= len(t.Columns) {
		return KindNull
	}
	var num, dt, txt int
	for _, r := range t.Rows {
		if idx >= len(r) {
			continue
		}
		switch r[idx].Kind {
		case KindNumber:
			num++
		case KindTime:
			dt++
		case KindText:
			txt++
		}
	}
	switch {
	case num >= dt && num >= txt && num > 0:
		return KindNumber
	case dt >= txt && dt > 0:
		return KindTime
	case txt > 0:
		return KindText
	default:
		return KindNull
	}
}

// Snapshot returns a view safe against a concurrent table replacement:
// the slice headers are copied so a later upload cannot reorder rows under
// an in-flight chat turn. Cells are treated as read-only by all callers.
func (t *Table) Snapshot() *Table {
	cols := make([]string, len(t.Columns))
	copy(cols, t.Columns)
	rows := make([]Row, len(t.Rows))
	copy(rows, t.Rows)
	return &Table{Name: t.Name, Columns: cols, Rows: rows}
}

// Validate checks the shared-column-set invariant.
func (t *Table) Validate() error {
	for i, r := range t.Rows {
		if len(r) != len(t.Columns) {
			return fmt.Errorf("row %d has %d cells, want %d", i, len(r), len(t.Columns))
		}
	}
	return nil
}
