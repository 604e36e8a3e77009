package parser

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
)

// Marker tables for the transaction-section state machine. Declarative so
// new statement formats only need a table entry, and compiled into
// Aho-Corasick matchers so every line is checked against all markers in a
// single pass.

var sectionStartMarkers = []string{
	"ACCOUNT ACTIVITY",
	"TRANSACTION HISTORY",
	"TRANSACTIONS",
	"POST DATE",
	"TRANS DATE",
	"POSTING",
	"DESCRIPTION OF TRANSACTION",
}

var sectionEndMarkers = []string{
	"TOTAL DEBITS",
	"TOTAL CREDITS",
	"INTEREST SUMMARY",
	"FEES SUMMARY",
	"PAGE 2",
	"PAGE 3",
	"PAGE 4",
	"STATEMENT CLOSING",
	"IMPORTANT INFORMATION",
	"OVERDRAFT",
	"DIRECT DEPOSIT",
	"INTEREST RATE",
	"DAILY BALANCES",
	"DAILY BALANCE",
	"ENDING BALANCE",
}

var summaryLineMarkers = []string{
	"BEGINNING BALANCE",
	"ENDING BALANCE",
	"CREDIT(S) THIS PERIOD",
	"DEBIT(S) THIS PERIOD",
	"INTEREST PAID",
	"ANNUAL PERCENTAGE",
	"INTEREST DAYS",
	"INTEREST EARNED FROM",
}

var headerLineMarkers = []string{
	"POST DATE DESCRIPTION",
	"DATE DESCRIPTION DEBITS",
	"TRANS DATE",
	"REFERENCE",
}

// Statement boilerplate that disqualifies a parsed description: column
// headers, page furniture, and balance lines that happen to carry amounts.
var garbageDescriptionMarkers = []string{
	"DATE AMOUNT",
	"DESCRIPTION DEBITS CREDITS",
	"POST DATE",
	"TRANS DATE",
	"REFERENCE",
	"PAGE",
	"ACCOUNT STATEMENTS",
	"STATEMENT ENDING",
	"CUSTOMER NUMBER",
	"CHECKING ACCOUNT",
	"SAVINGS ACCOUNT",
	"DAILY BALANCE",
	"DATE AMOUNT DATE AMOUNT",
	"BEGINNING BALANCE",
	"ENDING BALANCE",
}

// markerMatcher wraps an Aho-Corasick matcher over a marker table.
type markerMatcher struct {
	matcher *ahocorasick.Matcher
}

func newMarkerMatcher(markers []string) *markerMatcher {
	patterns := make([][]byte, len(markers))
	for i, m := range markers {
		patterns[i] = []byte(m)
	}
	return &markerMatcher{matcher: ahocorasick.NewMatcher(patterns)}
}

// matches reports whether the uppercased line contains any marker.
func (m *markerMatcher) matches(line string) bool {
	return len(m.matcher.Match([]byte(strings.ToUpper(line)))) > 0
}
