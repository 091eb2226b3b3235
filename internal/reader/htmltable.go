package reader

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var errNoTable = errors.New("no table element found")

// readHTMLTable reads the first <table> of an HTML document. Its first row is
// the header; opts.HeaderSkip data rows after it are discarded.
func readHTMLTable(r io.ReadSeeker, opts Options) (*RowSet, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	raw, err = toUTF8(raw)
	if err != nil {
		return nil, err
	}
	doc, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	table := findFirst(doc, atom.Table)
	if table == nil {
		return nil, errNoTable
	}

	var rows [][]string
	collectRows(table, &rows)
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errNoColumns
	}

	data := rows[1:]
	if opts.HeaderSkip >= len(data) {
		data = nil
	} else {
		data = data[opts.HeaderSkip:]
	}
	cells := make([][]Cell, len(data))
	for i, row := range data {
		cells[i] = make([]Cell, len(row))
		for j, v := range row {
			cells[i][j] = TextCell(v)
		}
	}
	return buildRowSet(FormatHTML, rows[0], cells), nil
}

func findFirst(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, a); found != nil {
			return found
		}
	}
	return nil
}

// collectRows gathers the <tr> rows of one table without entering nested tables.
func collectRows(n *html.Node, rows *[][]string) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Table:
			continue
		case atom.Tr:
			var cells []string
			for td := c.FirstChild; td != nil; td = td.NextSibling {
				if td.Type == html.ElementNode && (td.DataAtom == atom.Td || td.DataAtom == atom.Th) {
					cells = append(cells, nodeText(td))
				}
			}
			*rows = append(*rows, cells)
		default:
			collectRows(c, rows)
		}
	}
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			b.WriteString(n.Data)
		case n.Type == html.ElementNode && n.DataAtom == atom.Table:
			return
		case n.Type == html.ElementNode && n.DataAtom == atom.Br:
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
