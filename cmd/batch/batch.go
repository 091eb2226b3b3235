// Package batch handles batch processing of files
package batch

import (
	"errors"
	"fmt"

	"fjacquet/extracto-ofx/cmd/root"
	"fjacquet/extracto-ofx/internal/logging"
	"fjacquet/extracto-ofx/internal/parsererror"
	"fjacquet/extracto-ofx/internal/validation"

	"github.com/spf13/cobra"
)

var source string

// Cmd represents the batch command
var Cmd = &cobra.Command{
	Use:   "batch",
	Short: "Batch process files from a directory",
	Long: `Batch process files from an input directory and output them to another directory.

Every .xlsx, .xls, .csv, .txt, .html, .htm and .xml file of the input directory
is converted with the given source and written as <name>.ofx. Files that fail
are logged and skipped.

Example:
  extracto-ofx batch --source bbva -i exports/ -o statements/`,
	RunE: batchFunc,
}

func init() {
	Cmd.Flags().StringVarP(&source, "source", "s", "", "Source bank (bbva, santander, inversis)")
	_ = Cmd.MarkFlagRequired("source")

	Cmd.SetUsageTemplate(`Usage:{{if .Runnable}}
  {{.UseLine}}{{end}}{{if .HasExample}}

Examples:
{{.Example}}{{end}}{{if .HasAvailableLocalFlags}}

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

Global Flags (for batch, -i/-o refer to directories):
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}
`)
}

func batchFunc(cmd *cobra.Command, args []string) error {
	inputDir := root.SharedFlags.Input
	outputDir := root.SharedFlags.Output
	if err := validation.IsValidDirectory(inputDir); err != nil {
		return err
	}
	if outputDir == "" {
		return fmt.Errorf("output directory must be specified")
	}

	p, err := root.GetContainer().GetParser(source)
	if err != nil {
		return errors.New(parsererror.UserMessage(err))
	}

	root.Log.Info("Batch command called",
		logging.F(logging.FieldSource, p.Profile().ID),
		logging.F("input_dir", inputDir),
		logging.F("output_dir", outputDir))

	count, err := p.BatchConvert(cmd.Context(), inputDir, outputDir)
	if err != nil {
		return fmt.Errorf("batch conversion failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Converted %d file(s) to %s\n", count, outputDir)
	return nil
}
