package parser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fjacquet/extracto-ofx/internal/logging"
	"fjacquet/extracto-ofx/internal/parsererror"
	"fjacquet/extracto-ofx/internal/profile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const santanderExport = "Santander\nCuenta: ES00 0049 0000\n\n\n\n\n\n" +
	"Fecha Operación;Fecha Valor;Concepto;Importe;Saldo\n" +
	"01/02/2024;01/02/2024;Transferencia recibida;1.200,00;2.000,00\n" +
	"02/02/2024;02/02/2024;\"Recibo; luz\";-45,30;1.954,70\n"

const inversisExport = `<html><body><table>
<tr><th>Fecha operación</th><th>Descripción</th><th>Importe</th></tr>
<tr><td>15/01/2024</td><td>Dividendo &amp; cupón</td><td>12,34</td></tr>
</table></body></html>`

func newParser(t *testing.T, id string) (*ProfileParser, *logging.MockLogger) {
	t.Helper()
	logger := logging.NewMockLogger()
	p, err := GetParser(profile.NewRegistry(), id, DefaultOptions(), logger)
	require.NoError(t, err)
	return p, logger
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestGetParser(t *testing.T) {
	p, _ := newParser(t, " Santander ")
	assert.Equal(t, profile.Santander, p.Profile().ID)

	_, err := GetParser(profile.NewRegistry(), "ing", DefaultOptions(), logging.NewMockLogger())
	require.Error(t, err)
	assert.True(t, errors.Is(err, parsererror.ErrUnknownSource))
}

func TestNewProfileParser_InvalidCurrency(t *testing.T) {
	reg := profile.NewRegistry()
	prof, err := reg.Get(profile.BBVA)
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.OFX.Currency = "EURO"
	_, err = NewProfileParser(prof, opts, nil)
	assert.Error(t, err)
}

func TestParse_Santander(t *testing.T) {
	p, _ := newParser(t, profile.Santander)

	txs, err := p.Parse(context.Background(), strings.NewReader(santanderExport))
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, "2024-02-01", txs[0].Date.Format("2006-01-02"))
	assert.Equal(t, "1200.00", txs[0].Amount.Fixed())
	assert.Equal(t, "Transferencia recibida", txs[0].Memo)
	assert.Equal(t, "20240201120000Trans", txs[0].ID)

	assert.Equal(t, "-45.30", txs[1].Amount.Fixed())
	assert.Equal(t, "Recibo; luz", txs[1].Memo)
	assert.Equal(t, "202402024530Recib", txs[1].ID)
}

func TestRun_ReportsFormatAndMapping(t *testing.T) {
	p, _ := newParser(t, profile.Inversis)

	res, err := p.Run(context.Background(), []byte(inversisExport))
	require.NoError(t, err)

	assert.Equal(t, "html", res.Format)
	assert.Equal(t, "Fecha operación", res.Mapping.Date)
	assert.Equal(t, "Descripción", res.Mapping.Description)
	assert.Equal(t, "Importe", res.Mapping.Amount)
	assert.Equal(t, 1, res.Stats.Kept)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, "202401151234Divid", res.Transactions[0].ID)
}

func TestConvert(t *testing.T) {
	p, _ := newParser(t, profile.Inversis)

	doc, err := p.Convert(context.Background(), []byte(inversisExport))
	require.NoError(t, err)

	assert.Contains(t, doc, "<CURDEF>EUR</CURDEF>")
	assert.Contains(t, doc, "<TRNTYPE>CREDIT</TRNTYPE>")
	assert.Contains(t, doc, "<TRNAMT>12.34</TRNAMT>")
	assert.Contains(t, doc, "<MEMO>Dividendo &amp; cupón</MEMO>")
	assert.True(t, strings.HasSuffix(doc, "</OFX>\n"))
}

func TestConvert_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		input  string
		target error
	}{
		{"missing column", profile.BBVA, santanderExport, parsererror.ErrColumnNotFound},
		{"binary input", profile.Santander, "\x00\x01\x02garbage", parsererror.ErrUnrecognizedContainer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newParser(t, tt.source)
			_, err := p.Convert(context.Background(), []byte(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
		})
	}
}

func TestConvert_ContainerErrorNamesSource(t *testing.T) {
	p, _ := newParser(t, profile.Santander)

	_, err := p.Convert(context.Background(), []byte("\x00\x00"))
	var cfe *parsererror.ContainerFormatError
	require.True(t, errors.As(err, &cfe))
	assert.Equal(t, profile.Santander, cfe.Source)
	assert.NotEmpty(t, cfe.Attempts)
}

func TestConvert_CancelledContext(t *testing.T) {
	p, _ := newParser(t, profile.Santander)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Convert(ctx, []byte(santanderExport))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConvertToOFX(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "santander.csv", santanderExport)
	out := filepath.Join(dir, "out", "movimientos.ofx")

	p, logger := newParser(t, profile.Santander)
	require.NoError(t, p.ConvertToOFX(context.Background(), in, out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<FITID>20240201120000Trans</FITID>")
	assert.True(t, logger.HasEntry("INFO", "Wrote OFX statement"))
}

func TestConvertToCSV(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "santander.csv", santanderExport)
	out := filepath.Join(dir, "movimientos.csv")

	p, _ := newParser(t, profile.Santander)
	require.NoError(t, p.ConvertToCSV(context.Background(), in, out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "1200.00")
	assert.Contains(t, lines[2], "-45.30")
}

func TestValidateFormat(t *testing.T) {
	dir := t.TempDir()
	santander := writeFile(t, dir, "santander.csv", santanderExport)
	garbage := writeFile(t, dir, "garbage.xls", "\x00\x01\x02")

	tests := []struct {
		name    string
		source  string
		path    string
		want    bool
		wantErr bool
	}{
		{"matching layout", profile.Santander, santander, true, false},
		{"other source layout", profile.BBVA, santander, false, false},
		{"unreadable container", profile.Santander, garbage, false, false},
		{"missing file", profile.Santander, filepath.Join(dir, "nope.csv"), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newParser(t, tt.source)
			ok, err := p.ValidateFormat(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestBatchConvert(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "ofx")
	writeFile(t, in, "febrero.csv", santanderExport)
	writeFile(t, in, "roto.txt", "hello")
	writeFile(t, in, "notas.md", "ignored")

	p, logger := newParser(t, profile.Santander)
	count, err := p.BatchConvert(context.Background(), in, out)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = os.Stat(filepath.Join(out, "febrero.ofx"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(out, "roto.ofx"))
	assert.True(t, os.IsNotExist(err))
	assert.True(t, logger.HasEntry("WARN", "Skipping file"))
}

func TestBatchConvert_EmptyDirectory(t *testing.T) {
	p, logger := newParser(t, profile.BBVA)
	count, err := p.BatchConvert(context.Background(), t.TempDir(), t.TempDir())
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.True(t, logger.HasEntry("WARN", "No supported files found in input directory"))
}

func TestPreview(t *testing.T) {
	p, _ := newParser(t, profile.Santander)

	pv, err := p.Preview(context.Background(), []byte(santanderExport), 1)
	require.NoError(t, err)

	assert.Equal(t, profile.Santander, pv.Source)
	assert.Equal(t, "delimited", pv.Format)
	assert.Equal(t, 2, pv.TotalRows)
	assert.Equal(t, "Fecha Valor", pv.Mapping.Date)
	require.Len(t, pv.Rows, 1)
	assert.Equal(t, PreviewRow{Date: "01/02/2024", Description: "Transferencia recibida", Amount: "1.200,00"}, pv.Rows[0])
}

func TestPreview_SkipsRowsWithoutDate(t *testing.T) {
	p, _ := newParser(t, profile.Santander)
	export := "Santander\nCuenta: ES00 0049 0000\n\n\n\n\n\n" +
		"Fecha Operación;Fecha Valor;Concepto;Importe;Saldo\n" +
		";;Saldo inicial;;800,00\n" +
		"01/02/2024;01/02/2024;Transferencia recibida;1.200,00;2.000,00\n" +
		";;Total;1.200,00;\n" +
		"02/02/2024;02/02/2024;Recibo luz;-45,30;1.954,70\n"

	pv, err := p.Preview(context.Background(), []byte(export), 5)
	require.NoError(t, err)

	assert.Equal(t, 4, pv.TotalRows)
	assert.Equal(t, 2, pv.Undated)
	require.Len(t, pv.Rows, 2)
	assert.Equal(t, "Transferencia recibida", pv.Rows[0].Description)
	assert.Equal(t, "Recibo luz", pv.Rows[1].Description)
}

func TestPreview_DefaultRowCount(t *testing.T) {
	p, _ := newParser(t, profile.Santander)

	pv, err := p.Preview(context.Background(), []byte(santanderExport), 0)
	require.NoError(t, err)
	assert.Len(t, pv.Rows, 2)
}
