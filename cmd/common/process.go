// Package common contains shared functionality for command handlers
package common

import (
	"context"
	"fmt"
	"strings"

	"fjacquet/extracto-ofx/internal/logging"
	"fjacquet/extracto-ofx/internal/parser"
	"fjacquet/extracto-ofx/internal/parsererror"
	"fjacquet/extracto-ofx/internal/validation"
)

// DefaultOutputFile is the output name used when -o is omitted.
func DefaultOutputFile(source, format string) string {
	format = strings.ToLower(format)
	if format == "" {
		format = validation.FormatOFX
	}
	return fmt.Sprintf("movimientos_%s.%s", strings.ToLower(strings.TrimSpace(source)), format)
}

// ProcessFileWithError validates (optionally) and converts a single file
// with p, writing OFX or CSV depending on format. A file rejected by the
// validate step gives a *parsererror.InvalidFormatError.
func ProcessFileWithError(ctx context.Context, p parser.FullParser, inputFile, outputFile, format string, validate bool, log logging.Logger) error {
	p.SetLogger(log)

	if err := validation.IsValidOutputFormat(format); err != nil {
		return err
	}

	if validate {
		log.Info("Validating format...")
		valid, err := p.ValidateFormat(inputFile)
		if err != nil {
			return fmt.Errorf("error validating file: %w", err)
		}
		if !valid {
			return &parsererror.InvalidFormatError{
				FilePath:       inputFile,
				ExpectedFormat: p.Profile().Name + " export",
				Msg:            "columns do not match the source layout",
			}
		}
		log.Info("Validation successful.")
	}

	if strings.EqualFold(format, validation.FormatCSV) {
		if err := p.ConvertToCSV(ctx, inputFile, outputFile); err != nil {
			return fmt.Errorf("error converting to CSV: %w", err)
		}
	} else {
		if err := p.ConvertToOFX(ctx, inputFile, outputFile); err != nil {
			return fmt.Errorf("error converting to OFX: %w", err)
		}
	}

	log.Info("Conversion completed successfully!",
		logging.F(logging.FieldOutputFile, outputFile),
		logging.F(logging.FieldFormat, strings.ToLower(format)))
	return nil
}
