package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Leading date forms seen across the supported statement layouts.
var (
	dateLongRe  = regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{4})`)  // MM/DD/YYYY
	dateShortRe = regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{2})`)  // MM/DD/YY
	dateDashRe  = regexp.MustCompile(`^(\d{1,2}-\d{1,2})\s`)      // MM-DD, year comes from the statement
	timeOnlyRe  = regexp.MustCompile(`^\d{1,2}:\d{2}$`)           // bare time fragment, never a description
	wellFormedRe = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`)
)

// dateMatch is a recognized leading date plus the offset where the rest of
// the line begins.
type dateMatch struct {
	date string // normalized to MM/DD/YYYY
	end  int
}

// matchLeadingDate recognizes a date token at the start of line. Two-digit
// years are assumed to be 2000s; MM-DD forms borrow the statement year.
func matchLeadingDate(line string, statementYear int) (dateMatch, bool) {
	if m := dateLongRe.FindStringSubmatch(line); m != nil {
		return dateMatch{date: m[1], end: len(m[0])}, true
	}
	if m := dateShortRe.FindStringSubmatch(line); m != nil {
		parts := strings.Split(m[1], "/")
		return dateMatch{
			date: fmt.Sprintf("%s/%s/20%s", parts[0], parts[1], parts[2]),
			end:  len(m[0]),
		}, true
	}
	if m := dateDashRe.FindStringSubmatch(line); m != nil {
		monthDay := strings.ReplaceAll(m[1], "-", "/")
		return dateMatch{
			date: fmt.Sprintf("%s/%d", monthDay, statementYear),
			end:  len(m[0]),
		}, true
	}
	return dateMatch{}, false
}

// startsWithDate reports whether a line begins with any recognized date form.
func startsWithDate(line string) bool {
	return dateLongRe.MatchString(line) || dateShortRe.MatchString(line) || dateDashRe.MatchString(line)
}

// ocrMonthCorrections maps months the OCR engine commonly misreads to their
// likely true value (a leading "1" scanned as "4", and similar).
var ocrMonthCorrections = map[int]int{
	42: 12,
	41: 11,
	40: 10,
	14: 11,
	13: 11,
}

// fixOCRDate repairs out-of-range months produced by OCR misreads, e.g.
// "42/29/2025" becomes "12/29/2025". Months with no known correction are
// left untouched; the quality validator flags them downstream.
func fixOCRDate(date string) string {
	if date == "" || !strings.Contains(date, "/") {
		return date
	}
	parts := strings.Split(date, "/")
	if len(parts) < 2 {
		return date
	}

	month, err := strconv.Atoi(parts[0])
	if err != nil || month <= 12 {
		return date
	}

	if corrected, ok := ocrMonthCorrections[month]; ok {
		parts[0] = fmt.Sprintf("%02d", corrected)
		return strings.Join(parts, "/")
	}

	// Digit-swap heuristic: a first digit above 1 with a second digit of 0-2
	// was almost certainly a misread "1" (42 -> 12, 41 -> 11).
	if month/10 > 1 && month%10 <= 2 {
		parts[0] = strconv.Itoa(10 + month%10)
		return strings.Join(parts, "/")
	}

	return date
}

// IsWellFormedDate reports whether s is a complete MM/DD/YYYY string.
func IsWellFormedDate(s string) bool {
	return wellFormedRe.MatchString(s)
}
