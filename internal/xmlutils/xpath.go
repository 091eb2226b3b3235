// Package xmlutils provides XML helpers shared by the tree reader.
package xmlutils

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
	"gopkg.in/xmlpath.v2"
)

// NewDecoder returns an XML decoder that understands the legacy encodings
// declared by bank exports (ISO-8859-1, windows-1252, ...).
func NewDecoder(r io.Reader) *xml.Decoder {
	d := xml.NewDecoder(r)
	d.CharsetReader = charset.NewReaderLabel
	return d
}

// Parse reads a whole XML document and returns its root node.
func Parse(r io.Reader) (*xmlpath.Node, error) {
	root, err := xmlpath.ParseDecoder(NewDecoder(r))
	if err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}
	return root, nil
}

// Nodes returns every node matched by xpath, in document order.
func Nodes(root *xmlpath.Node, xpath string) ([]*xmlpath.Node, error) {
	path, err := xmlpath.Compile(xpath)
	if err != nil {
		return nil, fmt.Errorf("failed to compile XPath %q: %w", xpath, err)
	}

	var nodes []*xmlpath.Node
	iter := path.Iter(root)
	for iter.Next() {
		nodes = append(nodes, iter.Node())
	}
	return nodes, nil
}

// Fields reads a fixed list of child elements from record nodes.
type Fields struct {
	names []string
	paths []*xmlpath.Path
}

// NewFields compiles one relative path per child element name.
func NewFields(names []string) (*Fields, error) {
	f := &Fields{names: names, paths: make([]*xmlpath.Path, len(names))}
	for i, name := range names {
		p, err := xmlpath.Compile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to compile XPath %q: %w", name, err)
		}
		f.paths[i] = p
	}
	return f, nil
}

// Values returns the cleaned text of each child of node, in the order the
// names were given. Missing children give "".
func (f *Fields) Values(node *xmlpath.Node) []string {
	values := make([]string, len(f.paths))
	for i, p := range f.paths {
		if s, ok := p.String(node); ok {
			values[i] = CleanText(s)
		}
	}
	return values
}

// CleanText collapses runs of whitespace (newlines, tabs, NBSP) into single
// spaces and trims the result.
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
