package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"fjacquet/extracto-ofx/internal/fileutils"
	"fjacquet/extracto-ofx/internal/logging"
	"fjacquet/extracto-ofx/internal/models"
	"fjacquet/extracto-ofx/internal/normalizer"
	"fjacquet/extracto-ofx/internal/ofx"
	"fjacquet/extracto-ofx/internal/parsererror"
	"fjacquet/extracto-ofx/internal/profile"
	"fjacquet/extracto-ofx/internal/reader"
	"fjacquet/extracto-ofx/internal/resolver"
)

// Options configure every ProfileParser built by the factory.
type Options struct {
	Normalizer   normalizer.Options
	OFX          ofx.Options
	CSVDelimiter rune
}

// DefaultOptions returns EUR output, escaped markup, five-rune FITID memo
// prefixes and comma-separated CSV.
func DefaultOptions() Options {
	return Options{
		Normalizer:   normalizer.DefaultOptions(),
		OFX:          ofx.DefaultOptions(),
		CSVDelimiter: ',',
	}
}

// Result is everything one pipeline run produced.
type Result struct {
	Format       string
	Mapping      resolver.Mapping
	Transactions []models.Transaction
	Stats        normalizer.Stats
}

// ProfileParser converts exports of one source, described by its profile.
// It keeps no state between runs and is safe for concurrent use as long as
// SetLogger is not called concurrently.
type ProfileParser struct {
	BaseParser
	profile profile.Profile
	opts    Options
	writer  *ofx.Writer
}

// NewProfileParser returns a parser for p.
func NewProfileParser(p profile.Profile, opts Options, logger logging.Logger) (*ProfileParser, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	w, err := ofx.NewWriter(opts.OFX)
	if err != nil {
		return nil, err
	}
	return &ProfileParser{
		BaseParser: NewBaseParser(logger, opts.CSVDelimiter),
		profile:    p,
		opts:       opts,
		writer:     w,
	}, nil
}

// Profile returns the source profile driving this parser.
func (p *ProfileParser) Profile() profile.Profile {
	return p.profile
}

func (p *ProfileParser) log() logging.Logger {
	return p.GetLogger().WithField(logging.FieldSource, p.profile.ID)
}

// readAndResolve runs the container reader and the column resolver.
func (p *ProfileParser) readAndResolve(ctx context.Context, raw []byte) (*reader.RowSet, resolver.Mapping, error) {
	logger := p.log()

	rs, err := reader.New(logger).Read(ctx, raw, p.profile.ReaderOptions())
	if err != nil {
		var cfe *parsererror.ContainerFormatError
		if errors.As(err, &cfe) {
			cfe.Source = p.profile.ID
		}
		return nil, resolver.Mapping{}, err
	}
	if err := ctx.Err(); err != nil {
		return nil, resolver.Mapping{}, err
	}

	mapping, err := resolver.New(logger).Resolve(rs, p.profile)
	if err != nil {
		return nil, resolver.Mapping{}, err
	}
	return rs, mapping, nil
}

// Run executes the pipeline up to canonical transactions.
func (p *ProfileParser) Run(ctx context.Context, raw []byte) (*Result, error) {
	rs, mapping, err := p.readAndResolve(ctx, raw)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	txs, stats := normalizer.New(p.log(), p.opts.Normalizer).NormalizeWithStats(rs, mapping)
	return &Result{
		Format:       rs.Format,
		Mapping:      mapping,
		Transactions: txs,
		Stats:        stats,
	}, nil
}

// Parse implements Parser.
func (p *ProfileParser) Parse(ctx context.Context, r io.Reader) ([]models.Transaction, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	res, err := p.Run(ctx, raw)
	if err != nil {
		return nil, err
	}
	return res.Transactions, nil
}

// Convert turns raw export bytes into an OFX document.
func (p *ProfileParser) Convert(ctx context.Context, raw []byte) (string, error) {
	res, err := p.Run(ctx, raw)
	if err != nil {
		return "", err
	}
	return p.writer.Write(res.Transactions), nil
}

// ConvertToOFX implements OFXConverter.
func (p *ProfileParser) ConvertToOFX(ctx context.Context, inputFile, outputFile string) error {
	logger := p.log()
	raw, err := fileutils.ReadFile(inputFile)
	if err != nil {
		return err
	}

	res, err := p.Run(ctx, raw)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := p.writer.Encode(&buf, res.Transactions); err != nil {
		return fmt.Errorf("failed to render OFX: %w", err)
	}
	if err := fileutils.WriteFile(outputFile, buf.Bytes(), 0600); err != nil {
		return err
	}

	logger.Info("Wrote OFX statement",
		logging.F(logging.FieldInputFile, inputFile),
		logging.F(logging.FieldOutputFile, outputFile),
		logging.F(logging.FieldContainer, res.Format),
		logging.F(logging.FieldCount, res.Stats.Kept),
		logging.F(logging.FieldDropped, res.Stats.Dropped))
	return nil
}

// ConvertToCSV implements CSVConverter.
func (p *ProfileParser) ConvertToCSV(ctx context.Context, inputFile, outputFile string) error {
	raw, err := fileutils.ReadFile(inputFile)
	if err != nil {
		return err
	}
	res, err := p.Run(ctx, raw)
	if err != nil {
		return err
	}
	return p.WriteToCSV(res.Transactions, outputFile)
}

// ValidateFormat implements Validator: the file must be readable in some
// container format and carry the profile's columns.
func (p *ProfileParser) ValidateFormat(filePath string) (bool, error) {
	raw, err := fileutils.ReadFile(filePath)
	if err != nil {
		return false, err
	}
	_, _, err = p.readAndResolve(context.Background(), raw)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, parsererror.ErrUnrecognizedContainer), errors.Is(err, parsererror.ErrColumnNotFound):
		p.log().WithError(err).Debug("File does not match source layout",
			logging.F(logging.FieldFile, filePath))
		return false, nil
	default:
		return false, err
	}
}

// BatchConvert implements BatchConverter. Every supported file of inputDir
// becomes <name>.ofx in outputDir; files that fail are logged and skipped.
func (p *ProfileParser) BatchConvert(ctx context.Context, inputDir, outputDir string) (int, error) {
	logger := p.log()
	files, err := fileutils.ListFilesWithExtensions(inputDir, fileutils.SupportedInputExtensions...)
	if err != nil {
		return 0, err
	}
	if err := fileutils.EnsureDirectoryExists(outputDir); err != nil {
		return 0, err
	}
	if len(files) == 0 {
		logger.Warn("No supported files found in input directory",
			logging.F(logging.FieldFile, inputDir))
		return 0, nil
	}

	count := 0
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		out := fileutils.ReplaceExtension(outputDir, f, ".ofx")
		if err := p.ConvertToOFX(ctx, f, out); err != nil {
			logger.WithError(err).Warn("Skipping file",
				logging.F(logging.FieldFile, filepath.Base(f)))
			continue
		}
		count++
	}

	logger.Info("Batch conversion finished",
		logging.F(logging.FieldCount, count),
		logging.F("skipped", len(files)-count))
	return count, nil
}
