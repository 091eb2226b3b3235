package reader

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"fjacquet/extracto-ofx/internal/xmlutils"

	"gopkg.in/xmlpath.v2"
)

var recordTags = []string{"movimiento", "item"}

var errNoRecords = errors.New("no record elements found")

type treeFrame struct {
	name      string
	record    int
	leafChild bool
	hasChild  bool
}

// treeRecord locates a record as the nth element named name in document order.
type treeRecord struct {
	name string
	nth  int
	keep bool
}

func isRecordTag(local string) bool {
	local = strings.ToLower(local)
	for _, t := range recordTags {
		if strings.Contains(local, t) {
			return true
		}
	}
	return false
}

// readTree turns every record element of an XML document into a row.
// A record is an element whose local name contains one of recordTags and
// that has at least one leaf child; each direct child contributes a column
// named after it. Wrapper elements such as <movimientos> only hold records
// and are not rows themselves.
//
// A token walk finds the records and their column names; the values are then
// read from the parsed tree with one compiled path per column.
func readTree(r io.ReadSeeker, _ Options) (*RowSet, error) {
	root, err := xmlutils.Parse(r)
	if err != nil {
		return nil, err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	records, columns, err := scanRecords(r)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, errNoRecords
	}

	fields, err := xmlutils.NewFields(columns)
	if err != nil {
		return nil, err
	}
	nodes := make(map[string][]*xmlpath.Node)
	var data [][]Cell
	for _, rec := range records {
		if !rec.keep {
			continue
		}
		if _, ok := nodes[rec.name]; !ok {
			if nodes[rec.name], err = xmlutils.Nodes(root, "//"+rec.name); err != nil {
				return nil, err
			}
		}
		if rec.nth >= len(nodes[rec.name]) {
			return nil, fmt.Errorf("record <%s> #%d not found in tree", rec.name, rec.nth+1)
		}
		values := fields.Values(nodes[rec.name][rec.nth])
		cells := make([]Cell, len(values))
		for i, v := range values {
			cells[i] = TextCell(v)
		}
		data = append(data, cells)
	}
	return buildRowSet(FormatXML, columns, data), nil
}

// scanRecords lists candidate records in document order and the column
// names of the kept ones, in first-seen order.
func scanRecords(r io.Reader) ([]treeRecord, []string, error) {
	var (
		stack   []*treeFrame
		records []treeRecord
		columns []string
		seen    = map[string]bool{}
		count   = map[string]int{}
		pending = map[int][]string{}
	)

	d := xmlutils.NewDecoder(r)
	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) > 0 {
				stack[len(stack)-1].hasChild = true
			}
			name := t.Name.Local
			f := &treeFrame{name: name, record: -1}
			if isRecordTag(name) {
				f.record = len(records)
				records = append(records, treeRecord{name: name, nth: count[name]})
			}
			count[name]++
			stack = append(stack, f)
		case xml.EndElement:
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if len(stack) > 0 && stack[len(stack)-1].record >= 0 {
				parent := stack[len(stack)-1]
				pending[parent.record] = append(pending[parent.record], f.name)
				if !f.hasChild {
					parent.leafChild = true
				}
			}
			if f.record >= 0 && f.leafChild {
				records[f.record].keep = true
				for _, c := range pending[f.record] {
					if !seen[c] {
						seen[c] = true
						columns = append(columns, c)
					}
				}
			}
			delete(pending, f.record)
		}
	}
	return records, columns, nil
}
