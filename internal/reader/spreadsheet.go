package reader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shakinm/xlsReader/xls"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// readSpreadsheet tries the OOXML workbook decoder first, then the legacy
// BIFF one, on the first sheet.
func readSpreadsheet(r io.ReadSeeker, opts Options) (*RowSet, error) {
	rs, xlsxErr := readXLSX(r, opts)
	if xlsxErr == nil {
		return rs, nil
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	rs, xlsErr := readXLS(r, opts)
	if xlsErr == nil {
		return rs, nil
	}
	return nil, fmt.Errorf("xlsx: %v; xls: %v", xlsxErr, xlsErr)
}

func readXLSX(r io.Reader, opts Options) (*RowSet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("workbook has no sheets")
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	styles := make(map[int]bool)
	isDate := func(ref string) bool {
		id, err := f.GetCellStyle(sheet, ref)
		if err != nil {
			return false
		}
		if known, ok := styles[id]; ok {
			return known
		}
		date := false
		if st, err := f.GetStyle(id); err == nil && st != nil {
			code := ""
			if st.CustomNumFmt != nil {
				code = *st.CustomNumFmt
			}
			date = isDateFormat(st.NumFmt, code)
		}
		styles[id] = date
		return date
	}

	cells := make([][]Cell, len(raw))
	for i, row := range raw {
		cells[i] = make([]Cell, len(row))
		for j, v := range row {
			ref, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return nil, err
			}
			cells[i][j] = serialCell(v, func() bool { return isDate(ref) }, date1904)
		}
	}
	rs, err := splitHeader(FormatXLSX, cells, opts.HeaderSkip)
	if err != nil {
		return nil, err
	}
	rs.Date1904 = date1904
	return rs, nil
}

// serialCell types a spreadsheet value: text stays text, numbers become
// dates when their number format is a date format. isDate is only consulted
// for numeric values.
func serialCell(raw string, isDate func() bool, date1904 bool) Cell {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Cell{Kind: CellEmpty}
	}
	n, err := decimal.NewFromString(raw)
	if err != nil {
		return TextCell(raw)
	}
	if isDate() {
		f, _ := n.Float64()
		if t, err := excelize.ExcelDateToTime(f, date1904); err == nil {
			return TimeCell(t)
		}
	}
	return NumberCell(n)
}

// builtinDateFormats are the number format IDs Excel reserves for dates and
// times, including the CJK ones.
var builtinDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true, 21: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true, 32: true, 33: true, 34: true, 35: true, 36: true,
	45: true, 46: true, 47: true,
	50: true, 51: true, 52: true, 53: true, 54: true, 55: true, 56: true, 57: true, 58: true,
}

// isDateFormat reports whether a number format renders a date or a time.
// A custom format code wins over the ID; codes are scanned for date tokens
// outside quoted literals, escapes and bracketed sections.
func isDateFormat(id int, code string) bool {
	if code == "" {
		return builtinDateFormats[id]
	}
	var plain strings.Builder
	quoted, bracket := false, false
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case quoted:
			quoted = c != '"'
		case bracket:
			bracket = c != ']'
		case c == '"':
			quoted = true
		case c == '[':
			bracket = true
		case c == '\\' || c == '_' || c == '*':
			i++
		default:
			plain.WriteByte(c)
		}
	}
	s := strings.ToLower(plain.String())
	return strings.ContainsAny(s, "dyh") || strings.Contains(s, "mmm") ||
		(strings.Contains(s, "m") && strings.Contains(s, "s"))
}

// readXLS decodes a BIFF workbook. The decoder only opens files, so the
// content goes through a temporary copy.
func readXLS(r io.Reader, opts Options) (rs *RowSet, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			rs, err = nil, fmt.Errorf("xls decoder panic: %v", rec)
		}
	}()

	tmp, err := os.CreateTemp("", "extracto-*.xls")
	if err != nil {
		return nil, err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}

	book, err := xls.OpenFile(tmp.Name())
	if err != nil {
		return nil, err
	}
	sheet, err := book.GetSheet(0)
	if err != nil {
		return nil, err
	}
	if sheet == nil {
		return nil, errors.New("workbook has no sheets")
	}

	// Custom formats (ID 164 and up) stay numbers here; the normalizer reads
	// serials found in a date column.
	var cells [][]Cell
	for i := 0; i < sheet.GetNumberRows(); i++ {
		row, err := sheet.GetRow(i)
		if err != nil {
			cells = append(cells, nil)
			continue
		}
		cols := row.GetCols()
		line := make([]Cell, len(cols))
		for j, col := range cols {
			if col == nil {
				continue
			}
			xf := book.GetXFbyIndex(col.GetXFIndex())
			line[j] = xlsCell(col.GetString(), xf.GetFormatIndex())
		}
		cells = append(cells, line)
	}
	return splitHeader(FormatXLS, cells, opts.HeaderSkip)
}

// xlsCell types a BIFF cell from its value text and number format ID.
func xlsCell(value string, formatID int) Cell {
	return serialCell(value, func() bool { return isDateFormat(formatID, "") }, false)
}

// splitHeader drops skip leading rows, then any blank rows, and takes the
// next row as the header. The header is widened to the longest row so cells
// past its last label land in "Unnamed: N" columns.
func splitHeader(format string, rows [][]Cell, skip int) (*RowSet, error) {
	if skip > len(rows) {
		skip = len(rows)
	}
	rows = rows[skip:]
	for len(rows) > 0 && blankRow(rows[0]) {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return nil, errNoColumns
	}
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	header := make([]string, width)
	for i, c := range rows[0] {
		header[i] = c.String()
	}
	return buildRowSet(format, header, rows[1:]), nil
}

func blankRow(cells []Cell) bool {
	for _, c := range cells {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}
