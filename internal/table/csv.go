package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// ErrNoHeader indicates a CSV with no header row at all.
var ErrNoHeader = errors.New("csv has no header row")

// LoadCSV reads a findings CSV from disk into a typed Table.
func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return ReadCSV(f, filepath.Base(path))
}

// ReadCSV parses CSV bytes into a Table. Input is decoded as UTF-8 with a
// latin-1 fallback, common in exports from European plant systems.
func ReadCSV(r io.Reader, name string) (*Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if !utf8.Valid(raw) {
		decoded, _, derr := transform.Bytes(charmap.ISO8859_1.NewDecoder(), raw)
		if derr != nil {
			return nil, fmt.Errorf("decode latin-1: %w", derr)
		}
		raw = decoded
	}
	raw = bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.Comma = sniffDelimiter(raw)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoHeader
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.TrimSpace(h)
	}

	t := &Table{Name: name, Columns: cols}
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(t.Rows)+1, err)
		}
		row := make(Row, len(cols))
		for i := range cols {
			if i < len(rec) {
				row[i] = inferValue(rec[i])
			} else {
				row[i] = Value{Kind: KindNull}
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// sniffDelimiter picks the most frequent candidate separator in the header
// line. Comma wins ties.
func sniffDelimiter(raw []byte) rune {
	line := raw
	if i := bytes.IndexByte(raw, '\n'); i >= 0 {
		line = raw[:i]
	}
	best := ','
	bestN := bytes.Count(line, []byte{','})
	for _, c := range []byte{';', '\t'} {
		if n := bytes.Count(line, []byte{c}); n > bestN {
			best = rune(c)
			bestN = n
		}
	}
	return best
}

var timeLayouts = []string{
	time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
	"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
	"02.01.2006",
}

// ParseTime tries the known datetime layouts against s.
func ParseTime(s string) (time.Time, bool) {
	return parseTimeMaybe(strings.TrimSpace(s))
}

func parseTimeMaybe(s string) (time.Time, bool) {
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// inferValue types a raw cell: empty is null, then numeric, then datetime,
// otherwise text. The raw text is preserved in every case.
func inferValue(s string) Value {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Value{Kind: KindNull}
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return Value{Kind: KindNumber, Raw: trimmed, Num: f}
	}
	if ts, ok := parseTimeMaybe(trimmed); ok {
		return Value{Kind: KindTime, Raw: trimmed, Time: ts}
	}
	return Value{Kind: KindText, Raw: trimmed}
}
