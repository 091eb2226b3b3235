// Package convert handles single-file conversion commands
package convert

import (
	"context"
	"errors"
	"fmt"

	"fjacquet/extracto-ofx/cmd/common"
	"fjacquet/extracto-ofx/cmd/root"
	"fjacquet/extracto-ofx/internal/logging"
	"fjacquet/extracto-ofx/internal/parsererror"
	"fjacquet/extracto-ofx/internal/validation"

	"github.com/spf13/cobra"
)

var source string

// Cmd represents the convert command
var Cmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a bank export of the given source",
	Long: `Convert a bank export to an OFX statement (or CSV with --format csv).

The source selects the bank layout; the container format (xlsx, xls, CSV,
HTML or XML) is detected from the content, not the extension.

Example:
  extracto-ofx convert --source santander -i movimientos.xls -o santander.ofx`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(cmd.Context(), source)
	},
}

func init() {
	Cmd.Flags().StringVarP(&source, "source", "s", "", "Source bank (bbva, santander, inversis)")
	_ = Cmd.MarkFlagRequired("source")
}

// NewSourceCmd returns a shortcut command converting exports of one source,
// e.g. "extracto-ofx bbva -i file.xlsx".
func NewSourceCmd(id, name string) *cobra.Command {
	return &cobra.Command{
		Use:   id,
		Short: fmt.Sprintf("Convert a %s export", name),
		Long: fmt.Sprintf(`Convert a %s movements export to an OFX statement.

Without -o the output is written to %s.`, name, common.DefaultOutputFile(id, validation.FormatOFX)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd.Context(), id)
		},
	}
}

// Run converts root.SharedFlags.Input for source. Errors carry the message
// shown to the user; details are logged at debug level.
func Run(ctx context.Context, source string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	input := root.SharedFlags.Input
	if err := validation.IsValidInputFile(input); err != nil {
		return err
	}

	p, err := root.GetContainer().GetParser(source)
	if err != nil {
		return errors.New(parsererror.UserMessage(err))
	}

	output := root.SharedFlags.Output
	if output == "" {
		output = common.DefaultOutputFile(p.Profile().ID, root.SharedFlags.Format)
	}

	log := root.Log.WithField(logging.FieldSource, p.Profile().ID)
	log.Info("Converting bank export",
		logging.F(logging.FieldInputFile, input),
		logging.F(logging.FieldOutputFile, output))

	if err := common.ProcessFileWithError(ctx, p, input, output, root.SharedFlags.Format, root.SharedFlags.Validate, log); err != nil {
		log.WithError(err).Debug("Conversion failed")
		return errors.New(parsererror.UserMessage(err))
	}
	return nil
}
