// Package normalizer converts resolved rows into canonical transactions.
// Rows whose date or amount cannot be read are skipped, never fatal.
package normalizer

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"fjacquet/extracto-ofx/internal/currencyutils"
	"fjacquet/extracto-ofx/internal/dateutils"
	"fjacquet/extracto-ofx/internal/logging"
	"fjacquet/extracto-ofx/internal/models"
	"fjacquet/extracto-ofx/internal/parsererror"
	"fjacquet/extracto-ofx/internal/reader"
	"fjacquet/extracto-ofx/internal/resolver"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// DefaultMemoPrefixLength is how many memo runes go into a record ID.
const DefaultMemoPrefixLength = 5

const parserName = "normalizer"

// Options tune the produced records.
type Options struct {
	Currency         string
	MemoPrefixLength int
}

// DefaultOptions returns EUR records with a five-rune memo prefix in IDs.
func DefaultOptions() Options {
	return Options{Currency: models.DefaultCurrency, MemoPrefixLength: DefaultMemoPrefixLength}
}

// Stats counts what happened to the rows of one run.
type Stats struct {
	Rows    int `json:"rows"`
	Kept    int `json:"kept"`
	Dropped int `json:"dropped"`
}

// Normalizer turns RowSet rows into transactions.
type Normalizer struct {
	logger logging.Logger
	opts   Options
}

// New returns a Normalizer. Zero option fields take their defaults.
func New(logger logging.Logger, opts Options) *Normalizer {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	if opts.Currency == "" {
		opts.Currency = models.DefaultCurrency
	}
	if opts.MemoPrefixLength <= 0 {
		opts.MemoPrefixLength = DefaultMemoPrefixLength
	}
	return &Normalizer{logger: logger, opts: opts}
}

// Normalize converts every readable row of rs, in row order.
func (n *Normalizer) Normalize(rs *reader.RowSet, m resolver.Mapping) []models.Transaction {
	txs, _ := n.NormalizeWithStats(rs, m)
	return txs
}

// NormalizeWithStats is Normalize plus row accounting.
func (n *Normalizer) NormalizeWithStats(rs *reader.RowSet, m resolver.Mapping) ([]models.Transaction, Stats) {
	stats := Stats{Rows: rs.Len()}
	txs := make([]models.Transaction, 0, rs.Len())

	for i, row := range rs.Rows {
		tx, err := n.convertRow(i+1, row, m, rs.Date1904)
		if err != nil {
			stats.Dropped++
			n.logger.WithError(err).Debug("Skipping row",
				logging.F(logging.FieldRow, i+1))
			continue
		}
		txs = append(txs, tx)
	}
	stats.Kept = len(txs)

	if stats.Rows > 0 && stats.Kept == 0 {
		n.logger.Warn("No row could be converted",
			logging.F(logging.FieldCount, stats.Rows))
	}
	for _, id := range DuplicateIDs(txs) {
		n.logger.Warn("Duplicate record ID",
			logging.F(logging.FieldRecordID, id))
	}
	n.logger.Debug("Normalized rows",
		logging.F(logging.FieldCount, stats.Kept),
		logging.F(logging.FieldDropped, stats.Dropped))
	return txs, stats
}

func (n *Normalizer) convertRow(idx int, row reader.Row, m resolver.Mapping, date1904 bool) (models.Transaction, error) {
	date, err := cellDate(row[m.Date], date1904)
	if err != nil {
		return models.Transaction{}, &parsererror.RecordError{
			Row:    idx,
			Reason: "invalid date",
			Err:    &parsererror.ParseError{Parser: parserName, Field: m.Date, Value: row[m.Date].String(), Err: err},
		}
	}
	amount, err := cellAmount(row[m.Amount])
	if err != nil {
		return models.Transaction{}, &parsererror.RecordError{
			Row:    idx,
			Reason: "invalid amount",
			Err:    &parsererror.ParseError{Parser: parserName, Field: m.Amount, Value: row[m.Amount].String(), Err: err},
		}
	}
	memo := row[m.Description].String()
	amount = amount.Round(2)

	return models.NewTransaction(date, amount, n.opts.Currency, memo,
		RecordID(date, amount, memo, n.opts.MemoPrefixLength)), nil
}

var (
	errEmptyCell = errors.New("empty cell")
	errCellKind  = errors.New("unexpected cell type")
)

// maxSerialDate is 9999-12-31 as a spreadsheet serial.
const maxSerialDate = 2958465

func cellDate(c reader.Cell, date1904 bool) (time.Time, error) {
	switch c.Kind {
	case reader.CellTime:
		return c.Time, nil
	case reader.CellNumber:
		// a serial whose number format the reader could not resolve
		if f, _ := c.Number.Float64(); f >= 1 && f <= maxSerialDate {
			return excelize.ExcelDateToTime(f, date1904)
		}
		return dateutils.ParseDayFirst(c.Text)
	case reader.CellText:
		return dateutils.ParseDayFirst(c.Text)
	case reader.CellEmpty:
		return time.Time{}, errEmptyCell
	}
	return time.Time{}, errCellKind
}

func cellAmount(c reader.Cell) (decimal.Decimal, error) {
	switch c.Kind {
	case reader.CellNumber:
		return c.Number, nil
	case reader.CellText:
		return currencyutils.ParseRegionalAmount(c.Text)
	case reader.CellEmpty:
		return decimal.Zero, errEmptyCell
	}
	return decimal.Zero, errCellKind
}

// RecordID builds the deterministic FITID: YYYYMMDD, the digits of the
// absolute amount at two decimals, then the first prefixLen runes of the memo
// with all whitespace removed.
func RecordID(date time.Time, amount decimal.Decimal, memo string, prefixLen int) string {
	var b strings.Builder
	b.WriteString(dateutils.ToOFXDate(date))
	b.WriteString(currencyutils.DigitsOnly(amount))
	taken := 0
	for _, r := range memo {
		if taken == prefixLen {
			break
		}
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
		taken++
	}
	return b.String()
}

// DuplicateIDs returns the IDs shared by more than one transaction, in order
// of first appearance.
func DuplicateIDs(txs []models.Transaction) []string {
	seen := make(map[string]int, len(txs))
	var dupes []string
	for _, tx := range txs {
		seen[tx.ID]++
		if seen[tx.ID] == 2 {
			dupes = append(dupes, tx.ID)
		}
	}
	return dupes
}
