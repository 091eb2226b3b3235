// Package preview shows how an export would be interpreted
package preview

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"fjacquet/extracto-ofx/cmd/root"
	"fjacquet/extracto-ofx/internal/fileutils"
	"fjacquet/extracto-ofx/internal/parser"
	"fjacquet/extracto-ofx/internal/parsererror"
	"fjacquet/extracto-ofx/internal/validation"

	"github.com/spf13/cobra"
)

var (
	source string
	rows   int
	asJSON bool
)

// Cmd represents the preview command
var Cmd = &cobra.Command{
	Use:   "preview",
	Short: "Show the detected format, column mapping and first rows of an export",
	Long: `Read an export with the given source profile and print the detected
container format, the resolved date, description and amount columns and the
first rows of those columns, without converting anything.

Example:
  extracto-ofx preview --source inversis -i movimientos.xls --rows 10`,
	RunE: previewFunc,
}

func init() {
	Cmd.Flags().StringVarP(&source, "source", "s", "", "Source bank (bbva, santander, inversis)")
	Cmd.Flags().IntVar(&rows, "rows", parser.DefaultPreviewRows, "Number of rows to show")
	Cmd.Flags().BoolVar(&asJSON, "json", false, "Print the preview as JSON")
	_ = Cmd.MarkFlagRequired("source")
}

func previewFunc(cmd *cobra.Command, args []string) error {
	input := root.SharedFlags.Input
	if err := validation.IsValidInputFile(input); err != nil {
		return err
	}
	p, err := root.GetContainer().GetParser(source)
	if err != nil {
		return errors.New(parsererror.UserMessage(err))
	}
	raw, err := fileutils.ReadFile(input)
	if err != nil {
		return err
	}

	pv, err := p.Preview(cmd.Context(), raw, rows)
	if err != nil {
		root.Log.WithError(err).Debug("Preview failed")
		return errors.New(parsererror.UserMessage(err))
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(pv)
	}
	return Render(cmd.OutOrStdout(), pv)
}

// Render prints pv as aligned text.
func Render(w io.Writer, pv *parser.Preview) error {
	fmt.Fprintf(w, "Source:  %s\n", pv.Source)
	fmt.Fprintf(w, "Format:  %s\n", pv.Format)
	fmt.Fprintf(w, "Rows:    %d (%d without date)\n", pv.TotalRows, pv.Undated)
	fmt.Fprintf(w, "Mapping: date=%q description=%q amount=%q\n\n",
		pv.Mapping.Date, pv.Mapping.Description, pv.Mapping.Amount)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tDESCRIPTION\tAMOUNT")
	for _, r := range pv.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Date, r.Description, r.Amount)
	}
	return tw.Flush()
}
