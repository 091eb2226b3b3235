package parser

import (
	"context"

	"fjacquet/extracto-ofx/internal/resolver"
)

// DefaultPreviewRows is the number of rows shown when none is requested.
const DefaultPreviewRows = 5

// PreviewRow is one row reduced to the three resolved columns, as raw text.
type PreviewRow struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
}

// Preview shows how a file would be interpreted without converting it.
type Preview struct {
	Source    string           `json:"source"`
	Format    string           `json:"format"`
	Columns   []string         `json:"columns"`
	Mapping   resolver.Mapping `json:"mapping"`
	TotalRows int              `json:"total_rows"`
	Undated   int              `json:"undated_rows"`
	Rows      []PreviewRow     `json:"rows"`
}

// Preview reads and resolves raw, then returns the first n rows of the
// resolved columns. Rows with an empty date cell, such as balance or total
// lines, are counted in Undated and left out. n <= 0 means DefaultPreviewRows.
func (p *ProfileParser) Preview(ctx context.Context, raw []byte, n int) (*Preview, error) {
	if n <= 0 {
		n = DefaultPreviewRows
	}
	rs, mapping, err := p.readAndResolve(ctx, raw)
	if err != nil {
		return nil, err
	}

	pv := &Preview{
		Source:    p.profile.ID,
		Format:    rs.Format,
		Columns:   append([]string(nil), rs.Columns...),
		Mapping:   mapping,
		TotalRows: rs.Len(),
		Rows:      make([]PreviewRow, 0, min(n, rs.Len())),
	}
	for _, row := range rs.Rows {
		if row[mapping.Date].IsEmpty() {
			pv.Undated++
			continue
		}
		if len(pv.Rows) == n {
			continue
		}
		pv.Rows = append(pv.Rows, PreviewRow{
			Date:        row[mapping.Date].String(),
			Description: row[mapping.Description].String(),
			Amount:      row[mapping.Amount].String(),
		})
	}
	return pv, nil
}
