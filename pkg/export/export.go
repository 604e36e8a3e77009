// Package export reads and writes the month-folder CSV files. The
// column layout is shared with the merchant cache rescan: user edits
// made to these files are harvested back as corrections on the next
// run, so the schema must stay stable.
package export

import (
	"fmt"
	"os"

	"github.com/Rhymond/go-money"
	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/bankai-project/bankai/internal/domain/parser"
)

// Record is one output CSV row.
type Record struct {
	TransactionDate string `csv:"Transaction Date"`
	Place           string `csv:"Place"`
	Amount          string `csv:"Amount"`
	Category        string `csv:"category"`
	Statement       string `csv:"Statement"`
}

// FromTransactions flattens parsed transactions into CSV rows. The
// primary amount is used; transactions without one are skipped.
func FromTransactions(txs []parser.Transaction, statement, category string) []Record {
	records := make([]Record, 0, len(txs))
	for _, tx := range txs {
		amount := tx.PrimaryAmount()
		if amount.IsZero() {
			continue
		}
		records = append(records, Record{
			TransactionDate: tx.Date,
			Place:           tx.Description,
			Amount:          amount.StringFixed(2),
			Category:        category,
			Statement:       statement,
		})
	}
	return records
}

// WriteCSV writes records to path, creating or truncating it.
func WriteCSV(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(&records, f); err != nil {
		return fmt.Errorf("write csv %s: %w", path, err)
	}
	return nil
}

// ReadCSV loads records from path.
func ReadCSV(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var records []Record
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		return nil, fmt.Errorf("read csv %s: %w", path, err)
	}
	return records, nil
}

// Total sums the Amount column. Rows that fail to parse are skipped.
func Total(records []Record) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range records {
		d, err := decimal.NewFromString(r.Amount)
		if err != nil {
			continue
		}
		sum = sum.Add(d)
	}
	return sum
}

// DisplayAmount renders a decimal total as a dollar string for the
// run summary.
func DisplayAmount(d decimal.Decimal) string {
	cents := d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	return money.New(cents, money.USD).Display()
}
