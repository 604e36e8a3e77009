// Package parser recovers transaction records from the raw line-oriented
// text of a bank or credit-card statement. It tolerates multi-line layouts,
// duplicated date columns, embedded reference numbers, and common OCR digit
// errors; lines it cannot confidently decompose are skipped, never fatal.
package parser

import (
	"context"

	"github.com/shopspring/decimal"
)

// Transaction is one parsed statement entry. The amounts carried depend on
// the statement layout: a single Amount, Amount plus running Balance, or
// separate Debits/Credits columns plus Balance.
type Transaction struct {
	Date                string // MM/DD/YYYY
	Description         string
	OriginalDescription string // pre-cleaning text, kept for keyword matching
	Amount              *decimal.Decimal
	Debits              *decimal.Decimal
	Credits             *decimal.Decimal
	Balance             *decimal.Decimal
	ExtractionMethod    string
	ManualReview        bool
}

// PrimaryAmount returns the first populated amount field, preferring the
// single-amount column, then debits, then credits.
func (t *Transaction) PrimaryAmount() decimal.Decimal {
	switch {
	case t.Amount != nil:
		return *t.Amount
	case t.Debits != nil:
		return *t.Debits
	case t.Credits != nil:
		return *t.Credits
	}
	return decimal.Zero
}

// HasPositiveAmount reports whether any amount field is set and positive.
func (t *Transaction) HasPositiveAmount() bool {
	for _, d := range []*decimal.Decimal{t.Amount, t.Debits, t.Credits} {
		if d != nil && d.IsPositive() {
			return true
		}
	}
	return false
}

// Cleaner turns a raw statement description into a display merchant name.
// The amount and date give the cleaner transaction context; either may be
// zero-valued. Implemented by the merchant normalizer; tests use stubs.
type Cleaner interface {
	Clean(ctx context.Context, raw string, amount *decimal.Decimal, date string) string
}

// IdentityCleaner returns descriptions unchanged. Useful when normalization
// is disabled or under test.
type IdentityCleaner struct{}

// Clean implements Cleaner.
func (IdentityCleaner) Clean(_ context.Context, raw string, _ *decimal.Decimal, _ string) string {
	return raw
}
