package preview_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/extracto-ofx/cmd/preview"
	"fjacquet/extracto-ofx/cmd/root"
	"fjacquet/extracto-ofx/internal/parser"
	"fjacquet/extracto-ofx/internal/resolver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviewCommand_Metadata(t *testing.T) {
	assert.Equal(t, "preview", preview.Cmd.Use)
	assert.NotNil(t, preview.Cmd.Flags().Lookup("rows"))
	assert.NotNil(t, preview.Cmd.Flags().Lookup("json"))
}

func TestRender(t *testing.T) {
	pv := &parser.Preview{
		Source:    "bbva",
		Format:    "xlsx",
		TotalRows: 12,
		Undated:   1,
		Mapping:   resolver.Mapping{Date: "Fecha", Description: "Concepto", Amount: "Importe"},
		Rows: []parser.PreviewRow{
			{Date: "2024-02-01 00:00:00", Description: "Nómina", Amount: "1500.25"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, preview.Render(&buf, pv))

	out := buf.String()
	assert.Contains(t, out, "Format:  xlsx")
	assert.Contains(t, out, "Rows:    12 (1 without date)")
	assert.Contains(t, out, `date="Fecha"`)
	assert.Contains(t, out, "DATE")
	assert.Contains(t, out, "Nómina")
}

func TestPreviewCommand_JSON(t *testing.T) {
	in := filepath.Join(t.TempDir(), "inversis.html")
	html := `<table><tr><th>Fecha</th><th>Descripción</th><th>Importe</th></tr>
<tr><td>15/01/2024</td><td>Dividendo</td><td>12,34</td></tr></table>`
	require.NoError(t, os.WriteFile(in, []byte(html), 0600))

	saved := root.SharedFlags
	t.Cleanup(func() { root.SharedFlags = saved })
	root.SharedFlags = root.CommonFlags{Input: in}

	var stdout bytes.Buffer
	preview.Cmd.SetOut(&stdout)
	preview.Cmd.SetContext(context.Background())
	require.NoError(t, preview.Cmd.Flags().Set("source", "inversis"))
	require.NoError(t, preview.Cmd.Flags().Set("json", "true"))
	t.Cleanup(func() { _ = preview.Cmd.Flags().Set("json", "false") })

	require.NoError(t, preview.Cmd.RunE(preview.Cmd, nil))

	var pv parser.Preview
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &pv))
	assert.Equal(t, "html", pv.Format)
	assert.Equal(t, "Descripción", pv.Mapping.Description)
	require.Len(t, pv.Rows, 1)
	assert.Equal(t, "12,34", pv.Rows[0].Amount)
}
