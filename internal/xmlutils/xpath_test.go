package xmlutils

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `<?xml version="1.0"?>
<movimientos>
  <movimiento><fecha>01/02/2024</fecha><importe>12,50</importe></movimiento>
  <movimiento><fecha>02/02/2024</fecha><importe>-3,00</importe></movimiento>
</movimientos>`

func TestParse(t *testing.T) {
	root, err := Parse(strings.NewReader(sampleDoc))
	require.NoError(t, err)
	require.NotNil(t, root)

	_, err = Parse(strings.NewReader("<a><b></a>"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse XML")
}

func TestParse_LegacyEncoding(t *testing.T) {
	doc := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><m><concepto>Recibo \xe1gua</concepto></m>")
	root, err := Parse(bytes.NewReader(doc))
	require.NoError(t, err)

	nodes, err := Nodes(root, "/m")
	require.NoError(t, err)
	require.Len(t, nodes, 1)

	fields, err := NewFields([]string{"concepto"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Recibo \u00e1gua"}, fields.Values(nodes[0]))
}

func TestNodes(t *testing.T) {
	root, err := Parse(strings.NewReader(sampleDoc))
	require.NoError(t, err)

	records, err := Nodes(root, "//movimiento")
	require.NoError(t, err)
	assert.Len(t, records, 2)

	none, err := Nodes(root, "//missing")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = Nodes(root, "//[")
	assert.Error(t, err)
}

func TestFields_Values(t *testing.T) {
	root, err := Parse(strings.NewReader(`<movimientos>
  <movimiento><fecha>01/02/2024</fecha><concepto>Compra
    online</concepto><importe>12,50</importe></movimiento>
  <movimiento><fecha>02/02/2024</fecha><importe>-3,00</importe></movimiento>
</movimientos>`))
	require.NoError(t, err)
	records, err := Nodes(root, "//movimiento")
	require.NoError(t, err)
	require.Len(t, records, 2)

	fields, err := NewFields([]string{"fecha", "concepto", "importe"})
	require.NoError(t, err)

	assert.Equal(t, []string{"01/02/2024", "Compra online", "12,50"}, fields.Values(records[0]))
	assert.Equal(t, []string{"02/02/2024", "", "-3,00"}, fields.Values(records[1]))
}

func TestNewFields_InvalidName(t *testing.T) {
	_, err := NewFields([]string{"fecha", "["})
	assert.Error(t, err)
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"already clean", "Compra", "Compra"},
		{"surrounding whitespace", "  Compra  ", "Compra"},
		{"newlines and tabs", "Compra\n\tsupermercado", "Compra supermercado"},
		{"non-breaking space", "Compra\u00a0online", "Compra online"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanText(tt.input))
		})
	}
}
