// Package parser defines the parser interfaces and the profile-driven parser
// that runs the read, resolve, normalize and serialize stages for one source.
package parser

import (
	"context"
	"io"

	"fjacquet/extracto-ofx/internal/logging"
	"fjacquet/extracto-ofx/internal/models"
	"fjacquet/extracto-ofx/internal/profile"
)

// Parser reads a bank export and returns canonical transactions.
type Parser interface {
	Parse(ctx context.Context, r io.Reader) ([]models.Transaction, error)
}

// Validator reports whether a file matches the parser's source layout.
// A layout mismatch is (false, nil); an error means the file could not be checked.
type Validator interface {
	ValidateFormat(filePath string) (bool, error)
}

// OFXConverter converts an input file into an OFX statement file.
type OFXConverter interface {
	ConvertToOFX(ctx context.Context, inputFile, outputFile string) error
}

// CSVConverter converts an input file into a CSV file of canonical records.
type CSVConverter interface {
	ConvertToCSV(ctx context.Context, inputFile, outputFile string) error
}

// LoggerConfigurable lets callers swap the logger.
type LoggerConfigurable interface {
	SetLogger(logger logging.Logger)
}

// BatchConverter converts every supported file of a directory.
type BatchConverter interface {
	BatchConvert(ctx context.Context, inputDir, outputDir string) (int, error)
}

// FullParser is everything the CLI and the API need from a source parser.
type FullParser interface {
	Profile() profile.Profile
	Parser
	Validator
	OFXConverter
	CSVConverter
	LoggerConfigurable
	BatchConverter
}
