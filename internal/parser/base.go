package parser

import (
	"fjacquet/extracto-ofx/internal/common"
	"fjacquet/extracto-ofx/internal/logging"
	"fjacquet/extracto-ofx/internal/models"
)

// BaseParser provides the logger handling and CSV output shared by parsers.
//
// Parsers embed it:
//
//	type MyParser struct {
//		BaseParser
//		// parser-specific fields
//	}
type BaseParser struct {
	logger    logging.Logger
	delimiter rune
}

// NewBaseParser creates a BaseParser. A nil logger gets the default adapter
// and a zero delimiter means comma.
func NewBaseParser(logger logging.Logger, delimiter rune) BaseParser {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	if delimiter == 0 {
		delimiter = common.DefaultDelimiter
	}
	return BaseParser{logger: logger, delimiter: delimiter}
}

// SetLogger implements LoggerConfigurable. Nil is ignored.
func (b *BaseParser) SetLogger(logger logging.Logger) {
	if logger != nil {
		b.logger = logger
	}
}

// GetLogger returns the current logger.
func (b *BaseParser) GetLogger() logging.Logger {
	return b.logger
}

// WriteToCSV writes transactions to csvFile with the configured delimiter.
func (b *BaseParser) WriteToCSV(transactions []models.Transaction, csvFile string) error {
	return common.WriteTransactionsToCSVWithLogger(transactions, csvFile, b.delimiter, b.logger)
}
