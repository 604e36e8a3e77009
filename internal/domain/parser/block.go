package parser

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var (
	amountRe        = regexp.MustCompile(`\$?([0-9,]+\.\d{2})`)
	refNumberRe     = regexp.MustCompile(`^(\d{17,})\s+`)
	longDigitRunRe  = regexp.MustCompile(`\d{17,}`)
	trailingDateRe  = regexp.MustCompile(`\s+\d{1,2}/\d{1,2}/\d{2,4}$`)
	whitespaceRunRe = regexp.MustCompile(`\s+`)
)

// parseBlock attempts to decompose one transaction block starting at
// lines[start]. A block is usually a single line but may borrow the
// previous line as its description or consume the next line as a
// continuation. It returns the parsed transaction (nil when the block is
// rejected) and how many lines were consumed so the caller can advance.
//
// Supported shapes:
//
//	01/15/2025 MERCHANT NAME $100.00 $1,000.00
//	12/31/24 12/31/24 240445...805 MERCHANT NAME 37.62      (duplicate date + ref)
//	MERCHANT NAME DETAILS 1/01/25                           (description first,
//	01/02/2025 $500.00 $1,912.93                             date+amounts follow)
//	12-16 12-17 244450...805 WMSUPERCENTER #4352 $91.99     (MM-DD, 2-line block)
//	FARGO ND
func (p *Parser) parseBlock(ctx context.Context, lines []string, start, statementYear int) (*Transaction, int) {
	if start >= len(lines) {
		return nil, 0
	}

	line := strings.TrimSpace(lines[start])
	if line == "" {
		return nil, 1
	}

	dm, hasDate := matchLeadingDate(line, statementYear)
	if !hasDate {
		return p.parseDescriptionFirstBlock(ctx, lines, start)
	}

	date := fixOCRDate(dm.date)
	rest := strings.TrimSpace(line[dm.end:])

	// Duplicate-date layouts print the transaction and posting dates side
	// by side; drop the second token.
	if second, ok := matchLeadingDate(rest, statementYear); ok {
		rest = strings.TrimSpace(rest[second.end:])
	}

	// A 17+ digit run after the date is a reference number, not data.
	if m := refNumberRe.FindString(rest); m != "" {
		rest = strings.TrimSpace(rest[len(m):])
	}

	amounts := extractAmounts(rest)
	description := stripAmounts(rest)

	// Some layouts put the description on the line above the date+amounts
	// line. Borrow it only when it cannot itself be a transaction line.
	if !hasUsableText(description) && start > 0 {
		prev := strings.TrimSpace(lines[start-1])
		if prev != "" && !startsWithDate(prev) && !timeOnlyRe.MatchString(prev) &&
			containsAlpha(prev) && len(prev) > 5 {
			description = prev
		}
	}

	consumed := 1
	if start+1 < len(lines) {
		next := strings.TrimSpace(lines[start+1])
		if next != "" && !startsWithDate(next) && containsAlpha(next) && !strings.Contains(next, "$") {
			description += " " + next
			consumed++
		}
	}

	if description == "" || len(amounts) == 0 {
		return nil, consumed
	}

	return p.buildTransaction(ctx, date, description, amounts), consumed
}

// parseDescriptionFirstBlock handles the layout where the description line
// precedes a date+amounts line, with an optional third continuation line.
func (p *Parser) parseDescriptionFirstBlock(ctx context.Context, lines []string, start int) (*Transaction, int) {
	line := strings.TrimSpace(lines[start])
	if !containsAlpha(line) {
		return nil, 1
	}

	// The description line sometimes trails a partial date; drop it.
	description := trailingDateRe.ReplaceAllString(line, "")

	if start+1 >= len(lines) {
		return nil, 1
	}

	next := strings.TrimSpace(lines[start+1])
	m := dateLongRe.FindStringSubmatch(next)
	if m == nil {
		return nil, 1
	}

	date := m[1]
	amounts := extractAmounts(strings.TrimSpace(next[len(m[0]):]))
	if len(amounts) == 0 {
		return nil, 2
	}

	consumed := 2
	if start+2 < len(lines) {
		third := strings.TrimSpace(lines[start+2])
		if third != "" && !dateLongRe.MatchString(third) &&
			containsAlpha(third) && !strings.Contains(third, "$") {
			description += " " + third
			consumed++
		}
	}

	return p.buildTransaction(ctx, date, description, amounts), consumed
}

// buildTransaction validates the decomposed block and maps its amounts to
// semantic fields by count: one amount, amount+balance, or
// debits/credits/balance. Returns nil for boilerplate and fragments.
func (p *Parser) buildTransaction(ctx context.Context, date, description string, amounts []decimal.Decimal) *Transaction {
	description = collapseWhitespace(description)

	if p.garbage.matches(description) {
		return nil
	}

	words := strings.Fields(description)
	if len(words) == 1 && len(description) < 4 {
		return nil // single short fragment
	}
	if len(description) < 3 || !containsAlpha(description) {
		return nil
	}

	original := description

	var amount *decimal.Decimal
	if len(amounts) > 0 {
		amount = &amounts[0]
	}
	description = p.cleaner.Clean(ctx, description, amount, date)

	tx := &Transaction{
		Date:                date,
		Description:         description,
		OriginalDescription: original,
	}

	switch {
	case len(amounts) == 1:
		tx.Amount = &amounts[0]
	case len(amounts) == 2:
		tx.Amount = &amounts[0]
		tx.Balance = &amounts[1]
	case len(amounts) >= 3:
		if amounts[0].IsPositive() {
			tx.Debits = &amounts[0]
		}
		if amounts[1].IsPositive() {
			tx.Credits = &amounts[1]
		}
		tx.Balance = &amounts[2]
	}

	return tx
}

// extractAmounts finds every currency-decimal token in s.
func extractAmounts(s string) []decimal.Decimal {
	var amounts []decimal.Decimal
	for _, m := range amountRe.FindAllStringSubmatch(s, -1) {
		d, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
		if err != nil {
			continue
		}
		amounts = append(amounts, d)
	}
	return amounts
}

// stripAmounts removes amount tokens and long reference digit runs, leaving
// the candidate description.
func stripAmounts(s string) string {
	s = amountRe.ReplaceAllString(s, "")
	s = longDigitRunRe.ReplaceAllString(s, "")
	return collapseWhitespace(s)
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRunRe.ReplaceAllString(s, " "))
}

func containsAlpha(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// hasUsableText reports whether a candidate description is worth keeping.
func hasUsableText(s string) bool {
	return len(s) >= 3 && containsAlpha(s)
}
