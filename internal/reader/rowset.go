package reader

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CellKind tells which field of a Cell carries the value.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
	CellTime
)

// Cell is one raw value: text, or a native scalar when the container has types.
type Cell struct {
	Kind   CellKind
	Text   string
	Number decimal.Decimal
	Time   time.Time
}

// TextCell returns a text cell, or an empty cell for blank text.
func TextCell(s string) Cell {
	s = strings.TrimSpace(s)
	if s == "" {
		return Cell{Kind: CellEmpty}
	}
	return Cell{Kind: CellText, Text: s}
}

// NumberCell returns a native numeric cell.
func NumberCell(d decimal.Decimal) Cell {
	return Cell{Kind: CellNumber, Number: d, Text: d.String()}
}

// TimeCell returns a native date/time cell.
func TimeCell(t time.Time) Cell {
	return Cell{Kind: CellTime, Time: t, Text: t.Format("2006-01-02 15:04:05")}
}

// IsEmpty reports whether the cell holds nothing.
func (c Cell) IsEmpty() bool {
	return c.Kind == CellEmpty
}

// String coerces the cell to text.
func (c Cell) String() string {
	return c.Text
}

// Row maps a column label to its cell.
type Row map[string]Cell

// RowSet is the tabular result of reading a container.
// Columns are trimmed and unique; Rows keep source order.
type RowSet struct {
	Format  string
	Columns []string
	Rows    []Row
	// Date1904 is set for workbooks whose serial dates count from 1904.
	Date1904 bool
}

// HasColumn reports whether label is one of the columns, compared after trimming.
func (rs *RowSet) HasColumn(label string) bool {
	label = strings.TrimSpace(label)
	for _, c := range rs.Columns {
		if c == label {
			return true
		}
	}
	return false
}

// Len is the number of data rows.
func (rs *RowSet) Len() int {
	return len(rs.Rows)
}

// normalizeLabels trims labels, names blank ones "Unnamed: N" and suffixes
// repeated ones with ".1", ".2", ... so every label is unique.
func normalizeLabels(raw []string) []string {
	out := make([]string, len(raw))
	used := make(map[string]bool, len(raw))
	dupes := make(map[string]int)
	for i, l := range raw {
		l = strings.TrimSpace(strings.ReplaceAll(l, "\u00a0", " "))
		if l == "" {
			l = fmt.Sprintf("Unnamed: %d", i)
		}
		name := l
		for used[name] {
			dupes[l]++
			name = fmt.Sprintf("%s.%d", l, dupes[l])
		}
		used[name] = true
		out[i] = name
	}
	return out
}

// buildRowSet turns a header line plus data lines into a RowSet. Rows that
// are entirely empty are dropped; short rows are padded with empty cells.
func buildRowSet(format string, header []string, data [][]Cell) *RowSet {
	columns := normalizeLabels(header)
	rs := &RowSet{Format: format, Columns: columns}
	for _, cells := range data {
		row := make(Row, len(columns))
		blank := true
		for i, col := range columns {
			var c Cell
			if i < len(cells) {
				c = cells[i]
			}
			if !c.IsEmpty() {
				blank = false
			}
			row[col] = c
		}
		if !blank {
			rs.Rows = append(rs.Rows, row)
		}
	}
	return rs
}

// dropEmptyColumns removes columns whose cells are empty in every row.
// A row-set without rows keeps all its columns.
func (rs *RowSet) dropEmptyColumns() {
	if len(rs.Rows) == 0 {
		return
	}
	kept := make([]string, 0, len(rs.Columns))
	for _, col := range rs.Columns {
		used := false
		for _, row := range rs.Rows {
			if !row[col].IsEmpty() {
				used = true
				break
			}
		}
		if used {
			kept = append(kept, col)
			continue
		}
		for _, row := range rs.Rows {
			delete(row, col)
		}
	}
	rs.Columns = kept
}
