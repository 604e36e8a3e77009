package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Statement-level metadata helpers. The supported set of institutions is
// small and observed, not general: names are read directly off the
// statement rather than inferred from layout.

var domainRe = regexp.MustCompile(`www\.([a-zA-Z0-9-]+)\.(com|org|net)`)

// DetectBankName extracts the issuing institution's name from statement
// text. Returns "Unknown" when no known identifier is present.
func DetectBankName(text string) string {
	upper := strings.ToUpper(text)
	lines := strings.Split(text, "\n")

	// Bank identifiers usually sit in the letterhead.
	limit := len(lines)
	if limit > 50 {
		limit = 50
	}
	for _, line := range lines[:limit] {
		lineUpper := strings.ToUpper(strings.TrimSpace(line))

		if strings.Contains(lineUpper, "STEARNSBANK.COM") || strings.Contains(lineUpper, "STEARNS BANK") {
			return "Stearns Bank"
		}
		if strings.Contains(lineUpper, "MYMAGNIFI.ORG") || strings.Contains(lineUpper, "MAGNIFI FINANCIAL") {
			return "Magnifi Financial"
		}
		if strings.Contains(lineUpper, "ISSUED BY") {
			if strings.Contains(lineUpper, "FIRST NATIONAL BANK") {
				if strings.Contains(upper, "SCHEELS") {
					return "Scheels Visa"
				}
				return "First National Bank of Omaha"
			}
		}
	}

	if m := domainRe.FindStringSubmatch(strings.ToLower(text)); m != nil {
		switch {
		case strings.Contains(m[1], "stearns"):
			return "Stearns Bank"
		case strings.Contains(m[1], "magnifi"):
			return "Magnifi Financial"
		case strings.Contains(m[1], "scheels"), strings.Contains(m[1], "fnbo"):
			return "Scheels Visa"
		}
	}

	if strings.Contains(upper, "SCHEELS") &&
		(strings.Contains(upper, "VISA") || strings.Contains(upper, "CARD")) {
		return "Scheels Visa"
	}

	return "Unknown"
}

// Billing-cycle phrasings that carry the statement year. The no-space
// variants show up in OCR output.
var statementYearPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:billing cycle|statement).*?ending.*?\d{1,2}/\d{1,2}/(\d{4})`),
	regexp.MustCompile(`statement closing date.*?\d{1,2}/\d{1,2}/(\d{2,4})`),
	regexp.MustCompile(`statement date.*?\d{1,2}/\d{1,2}/(\d{4})`),
	regexp.MustCompile(`forbilling cycleending \d{1,2}/\d{1,2}/(\d{2})`),
	regexp.MustCompile(`for billing cycle ending \d{1,2}/\d{1,2}/(\d{2})`),
}

// StatementYear extracts the statement's calendar year, used to complete
// MM-DD dates. Falls back to the current year.
func StatementYear(text string) int {
	lower := strings.ToLower(text)
	for _, re := range statementYearPatterns {
		if m := re.FindStringSubmatch(lower); m != nil {
			year, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			if len(m[1]) == 2 {
				return 2000 + year
			}
			return year
		}
	}
	return time.Now().Year()
}

var bankAccountIndicators = []string{
	"CHECKING", "SAVINGS", "ACCOUNT ACTIVITY",
	"BEGINNING BALANCE", "ENDING BALANCE",
}

var creditCardIndicators = []string{
	"VISA", "MASTERCARD", "AMEX", "DISCOVER",
	"CREDIT CARD", "MINIMUM PAYMENT DUE",
	"CARD ACCOUNT", "STATEMENT CLOSING",
}

// IsCreditCard reports whether the statement comes from a credit card
// rather than a deposit account. Bank indicators override card indicators:
// a checking statement can mention a Visa debit card.
func IsCreditCard(text string) bool {
	upper := strings.ToUpper(text)
	for _, ind := range bankAccountIndicators {
		if strings.Contains(upper, ind) {
			return false
		}
	}
	for _, ind := range creditCardIndicators {
		if strings.Contains(upper, ind) {
			return true
		}
	}
	return false
}
