// Package reader turns the raw bytes of a bank export into a RowSet.
//
// Tabular containers are tried in a fixed order (spreadsheet, delimited
// text, HTML table) and the first interpretation that yields columns wins.
// Tree (XML) sources take a separate path selected by the profile.
package reader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"fjacquet/extracto-ofx/internal/logging"
	"fjacquet/extracto-ofx/internal/parsererror"
)

// Container selects between the tabular attempts and the tree walk.
type Container string

const (
	ContainerTabular Container = "tabular"
	ContainerTree    Container = "tree"
)

// Format names recorded in RowSet.Format.
const (
	FormatXLSX      = "xlsx"
	FormatXLS       = "xls"
	FormatDelimited = "delimited"
	FormatHTML      = "html"
	FormatXML       = "xml"
)

var errNoColumns = errors.New("no columns found")

// Options drives one read.
type Options struct {
	// HeaderSkip is the number of leading rows before the header row. For
	// HTML tables it is the number of data rows dropped after the header.
	HeaderSkip int
	Container  Container
	// DropEmptyColumns removes columns that are empty in every data row.
	DropEmptyColumns bool
}

// Attempt is one container interpretation. It must not retain r.
type Attempt struct {
	Name string
	Read func(r io.ReadSeeker, opts Options) (*RowSet, error)
}

// DefaultAttempts is the tabular attempt order.
func DefaultAttempts() []Attempt {
	return []Attempt{
		{Name: "spreadsheet", Read: readSpreadsheet},
		{Name: FormatDelimited, Read: readDelimited},
		{Name: FormatHTML, Read: readHTMLTable},
	}
}

// Reader reads containers with a configurable attempt list.
type Reader struct {
	attempts []Attempt
	logger   logging.Logger
}

// New returns a Reader using DefaultAttempts.
func New(logger logging.Logger) *Reader {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Reader{attempts: DefaultAttempts(), logger: logger}
}

// WithAttempts returns a copy of the Reader probing attempts instead.
func (r *Reader) WithAttempts(attempts ...Attempt) *Reader {
	return &Reader{attempts: attempts, logger: r.logger}
}

// Read interprets raw according to opts. It fails with a
// *parsererror.ContainerFormatError when no interpretation succeeds.
func (r *Reader) Read(ctx context.Context, raw []byte, opts Options) (*RowSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if opts.Container == ContainerTree {
		rs, err := readTree(bytes.NewReader(raw), opts)
		if err != nil {
			return nil, &parsererror.ContainerFormatError{
				Attempts: []parsererror.AttemptFailure{{Attempt: FormatXML, Err: err}},
			}
		}
		r.logger.Debug("Read tree container",
			logging.F(logging.FieldContainer, rs.Format),
			logging.F(logging.FieldCount, rs.Len()))
		return rs, nil
	}

	rs, err := FirstSuccess(raw, opts, r.attempts...)
	if err != nil {
		r.logger.WithError(err).Debug("No container interpretation succeeded")
		return nil, err
	}
	if opts.DropEmptyColumns {
		rs.dropEmptyColumns()
	}
	r.logger.Debug("Read tabular container",
		logging.F(logging.FieldContainer, rs.Format),
		logging.F(logging.FieldCount, rs.Len()))
	return rs, nil
}

// FirstSuccess runs attempts in order over a fresh cursor each time and
// returns the first RowSet with at least one column. A panic inside an
// attempt counts as that attempt's failure.
func FirstSuccess(raw []byte, opts Options, attempts ...Attempt) (*RowSet, error) {
	failures := make([]parsererror.AttemptFailure, 0, len(attempts))
	for _, a := range attempts {
		rs, err := runAttempt(a, raw, opts)
		if err == nil && (rs == nil || len(rs.Columns) == 0) {
			err = errNoColumns
		}
		if err != nil {
			failures = append(failures, parsererror.AttemptFailure{Attempt: a.Name, Err: err})
			continue
		}
		return rs, nil
	}
	return nil, &parsererror.ContainerFormatError{Attempts: failures}
}

func runAttempt(a Attempt, raw []byte, opts Options) (rs *RowSet, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			rs, err = nil, fmt.Errorf("decoder panic: %v", rec)
		}
	}()
	return a.Read(bytes.NewReader(raw), opts)
}
