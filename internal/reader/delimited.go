package reader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var (
	utf8BOM    = []byte{0xEF, 0xBB, 0xBF}
	utf16LEBOM = []byte{0xFF, 0xFE}
	utf16BEBOM = []byte{0xFE, 0xFF}
	delimiters = []rune{';', ',', '\t', '|'}
)

const sniffLines = 20

var (
	errBinary    = errors.New("binary content")
	errMarkup    = errors.New("markup content")
	errDelimiter = errors.New("no delimiter gives two or more consistent fields")
)

func readDelimited(r io.ReadSeeker, opts Options) (*RowSet, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text, err := decodeText(raw)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if opts.HeaderSkip >= len(lines) {
		return nil, errNoColumns
	}
	body := strings.Join(lines[opts.HeaderSkip:], "\n")

	delim, ok := sniffDelimiter(body)
	if !ok {
		return nil, errDelimiter
	}

	cr := csv.NewReader(strings.NewReader(body))
	cr.Comma = delim
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errNoColumns
	}

	data := make([][]Cell, 0, len(records)-1)
	for _, rec := range records[1:] {
		cells := make([]Cell, len(rec))
		for i, v := range rec {
			cells[i] = TextCell(v)
		}
		data = append(data, cells)
	}
	return buildRowSet(FormatDelimited, records[0], data), nil
}

// decodeText returns raw as text: UTF-16 when it starts with a UTF-16 BOM,
// UTF-8 without its BOM when valid, else Windows-1252. Markup and binary
// payloads are refused.
func decodeText(raw []byte) (string, error) {
	if wide := utf16Encoding(raw); wide != nil {
		decoded, err := wide.NewDecoder().Bytes(raw)
		if err != nil {
			return "", err
		}
		raw = decoded
	}
	if bytes.IndexByte(raw, 0) >= 0 {
		return "", errBinary
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if trimmed := bytes.TrimLeft(raw, " \t\r\n"); len(trimmed) > 0 && trimmed[0] == '<' {
		return "", errMarkup
	}
	text, err := toUTF8(raw)
	if err != nil {
		return "", err
	}
	return string(text), nil
}

func utf16Encoding(raw []byte) encoding.Encoding {
	switch {
	case bytes.HasPrefix(raw, utf16LEBOM):
		return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM)
	case bytes.HasPrefix(raw, utf16BEBOM):
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)
	}
	return nil
}

// toUTF8 passes valid UTF-8 through and decodes anything else as Windows-1252,
// the code page Spanish bank exports fall back to.
func toUTF8(raw []byte) ([]byte, error) {
	if utf8.Valid(raw) {
		return raw, nil
	}
	return charmap.Windows1252.NewDecoder().Bytes(raw)
}

// sniffDelimiter picks the candidate whose most common field count (at
// least 2) is shared by the most sampled lines. Earlier candidates win ties.
func sniffDelimiter(body string) (rune, bool) {
	sample := make([]string, 0, sniffLines)
	for _, l := range strings.Split(body, "\n") {
		if strings.TrimSpace(l) == "" {
			continue
		}
		sample = append(sample, l)
		if len(sample) == sniffLines {
			break
		}
	}
	if len(sample) == 0 {
		return 0, false
	}

	var best rune
	bestScore := 0
	for _, d := range delimiters {
		counts := make(map[int]int)
		for _, l := range sample {
			cr := csv.NewReader(strings.NewReader(l))
			cr.Comma = d
			cr.LazyQuotes = true
			cr.FieldsPerRecord = -1
			rec, err := cr.Read()
			if err != nil {
				continue
			}
			counts[len(rec)]++
		}
		for n, c := range counts {
			if n >= 2 && c > bestScore {
				best, bestScore = d, c
			}
		}
	}
	return best, bestScore > 0
}
