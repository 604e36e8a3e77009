// Package classify splits parsed transactions into income and
// expenses. Keyword rules decide almost everything; a language model
// is consulted only for payment-app transactions whose direction the
// statement does not encode.
package classify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bankai-project/bankai/internal/domain/parser"
	"github.com/bankai-project/bankai/pkg/ollama"
)

// Generator is the slice of the model client the classifier needs.
type Generator interface {
	Available() bool
	Generate(ctx context.Context, model, prompt string, opts ollama.Options) (string, error)
}

type Classifier struct {
	keywords *Keywords
	gen      Generator
	model    string
	logger   *slog.Logger
}

// New builds a Classifier. gen may be nil; ambiguous payment-app
// transactions then default to expense.
func New(keywords *Keywords, gen Generator, model string, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{keywords: keywords, gen: gen, model: model, logger: logger}
}

// FilterTransfers splits transfers out of the list. Transfers move
// money between own accounts and belong in neither bucket. Matching
// runs on the original description; cleaning may have stripped the
// transfer wording.
func (c *Classifier) FilterTransfers(txs []parser.Transaction) (real, transfers []parser.Transaction) {
	for _, tx := range txs {
		desc := tx.OriginalDescription
		if desc == "" {
			desc = tx.Description
		}
		if c.keywords.IsTransfer(desc) {
			transfers = append(transfers, tx)
		} else {
			real = append(real, tx)
		}
	}
	return real, transfers
}

// Classify buckets transactions into income and expenses.
//
// Credit cards are simple: every entry is an expense, credits included
// (those are returns, not income). Bank accounts use the column the
// amount came from: Credits mean income, Debits mean expense. A bare
// Amount column is decided by income keywords, then the model for
// payment apps, then defaults to expense. Payment-app entries are
// flagged for manual review regardless of bucket.
func (c *Classifier) Classify(ctx context.Context, txs []parser.Transaction, isBankAccount bool) (income, expenses []parser.Transaction) {
	for _, tx := range txs {
		if c.isPaymentApp(tx) {
			tx.ManualReview = true
		}

		if !isBankAccount {
			expenses = append(expenses, tx)
			continue
		}

		switch {
		case positive(tx.Credits):
			income = append(income, tx)
		case positive(tx.Debits):
			expenses = append(expenses, tx)
		case positive(tx.Amount):
			if c.keywords.IsIncome(tx.OriginalDescription) {
				income = append(income, tx)
			} else if tx.ManualReview && c.gen != nil && c.gen.Available() {
				if c.askModel(ctx, tx) == "income" {
					income = append(income, tx)
				} else {
					expenses = append(expenses, tx)
				}
			} else {
				expenses = append(expenses, tx)
			}
		default:
			expenses = append(expenses, tx)
		}
	}
	return income, expenses
}

func (c *Classifier) isPaymentApp(tx parser.Transaction) bool {
	return c.keywords.IsPaymentApp(tx.Description) || c.keywords.IsPaymentApp(tx.OriginalDescription)
}

const classifyPrompt = `Classify this bank transaction as either "income" or "expense". Consider the merchant name and amount.

Merchant: %s
Amount: $%s

Is this income or an expense? Reply with just one word: income OR expense`

// askModel asks for a one-word direction call. Anything that is not
// clearly "income" counts as expense.
func (c *Classifier) askModel(ctx context.Context, tx parser.Transaction) string {
	prompt := fmt.Sprintf(classifyPrompt, tx.Description, tx.PrimaryAmount().StringFixed(2))

	answer, err := c.gen.Generate(ctx, c.model, prompt, ollama.Options{Temperature: 0.1})
	if err != nil {
		c.logger.Debug("classification prompt failed", "merchant", tx.Description, "error", err)
		return "expense"
	}

	if strings.Contains(strings.ToLower(answer), "income") {
		return "income"
	}
	return "expense"
}

func positive(d *decimal.Decimal) bool {
	return d != nil && d.IsPositive()
}
