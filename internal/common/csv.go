// Package common provides shared output helpers used by every source parser.
package common

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"fjacquet/extracto-ofx/internal/dateutils"
	"fjacquet/extracto-ofx/internal/logging"
	"fjacquet/extracto-ofx/internal/models"

	"github.com/gocarina/gocsv"
)

// DefaultDelimiter separates CSV fields unless configured otherwise.
const DefaultDelimiter = ','

// CSVRecord is the flat CSV shape of a transaction.
type CSVRecord struct {
	Date     string `csv:"Date"`
	Type     string `csv:"Type"`
	Amount   string `csv:"Amount"`
	Currency string `csv:"Currency"`
	Memo     string `csv:"Memo"`
	FITID    string `csv:"FITID"`
}

// ToCSVRecords flattens transactions, keeping their order.
func ToCSVRecords(transactions []models.Transaction) []CSVRecord {
	records := make([]CSVRecord, 0, len(transactions))
	for _, tx := range transactions {
		records = append(records, CSVRecord{
			Date:     dateutils.ToISODate(tx.Date),
			Type:     string(tx.Type()),
			Amount:   tx.Amount.Fixed(),
			Currency: tx.Amount.Currency,
			Memo:     tx.Memo,
			FITID:    tx.ID,
		})
	}
	return records
}

// WriteTransactionsCSV writes a header line and one line per transaction to w.
func WriteTransactionsCSV(w io.Writer, transactions []models.Transaction, delimiter rune) error {
	if transactions == nil {
		return fmt.Errorf("cannot write nil transactions to CSV")
	}
	if delimiter == 0 {
		delimiter = DefaultDelimiter
	}

	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = delimiter

	records := ToCSVRecords(transactions)
	if len(records) == 0 {
		// header only
		if err := csvWriter.Write([]string{"Date", "Type", "Amount", "Currency", "Memo", "FITID"}); err != nil {
			return fmt.Errorf("error writing CSV header: %w", err)
		}
		csvWriter.Flush()
		return csvWriter.Error()
	}

	if err := gocsv.MarshalCSV(&records, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	return nil
}

// WriteTransactionsToCSVWithLogger writes transactions to csvFile, creating
// parent directories as needed.
func WriteTransactionsToCSVWithLogger(transactions []models.Transaction, csvFile string, delimiter rune, logger logging.Logger) error {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	if transactions == nil {
		return fmt.Errorf("cannot write nil transactions to CSV")
	}

	logger.Info("Writing transactions to CSV file",
		logging.F(logging.FieldFile, csvFile),
		logging.F(logging.FieldCount, len(transactions)))

	dir := filepath.Dir(csvFile)
	if err := os.MkdirAll(dir, 0750); err != nil {
		logger.WithError(err).Error("Failed to create directory")
		return fmt.Errorf("error creating directory: %w", err)
	}

	file, err := os.Create(csvFile) // #nosec G304 -- CLI tool requires user-provided output paths
	if err != nil {
		logger.WithError(err).Error("Failed to create CSV file")
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close file")
		}
	}()

	if err := WriteTransactionsCSV(file, transactions, delimiter); err != nil {
		logger.WithError(err).Error("Failed to marshal transactions to CSV")
		return err
	}

	logger.Info("Successfully wrote transactions to CSV file",
		logging.F(logging.FieldFile, csvFile),
		logging.F(logging.FieldCount, len(transactions)))
	return nil
}
