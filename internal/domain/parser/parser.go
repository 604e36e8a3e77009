package parser

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

// Parser converts raw statement text into transactions. One Parser may be
// reused across documents; it carries no per-document state.
type Parser struct {
	cleaner Cleaner
	logger  *slog.Logger

	sectionStart *markerMatcher
	sectionEnd   *markerMatcher
	summaryLine  *markerMatcher
	headerLine   *markerMatcher
	garbage      *markerMatcher
}

// New creates a Parser. cleaner may be an IdentityCleaner when merchant
// normalization is not wanted.
func New(cleaner Cleaner, logger *slog.Logger) *Parser {
	if cleaner == nil {
		cleaner = IdentityCleaner{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		cleaner:      cleaner,
		logger:       logger,
		sectionStart: newMarkerMatcher(sectionStartMarkers),
		sectionEnd:   newMarkerMatcher(sectionEndMarkers),
		summaryLine:  newMarkerMatcher(summaryLineMarkers),
		headerLine:   newMarkerMatcher(headerLineMarkers),
		garbage:      newMarkerMatcher(garbageDescriptionMarkers),
	}
}

var looseLeadingDateRe = regexp.MustCompile(`^\d{1,2}[/-]\d{1,2}`)

// ParseAll walks the statement text line by line and emits every transaction
// block it can decompose. statementYear disambiguates MM-DD dates; pass the
// result of StatementYear. Outside a recognized transaction section, lines
// that do not begin with a date token are skipped to avoid false positives
// from narrative text.
func (p *Parser) ParseAll(ctx context.Context, text string, statementYear int) []Transaction {
	lines := strings.Split(text, "\n")
	var transactions []Transaction

	inSection := false
	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])

		switch {
		case p.sectionStart.matches(line):
			inSection = true
			i++
			continue
		case inSection && p.sectionEnd.matches(line):
			inSection = false
			i++
			continue
		case p.summaryLine.matches(line):
			i++
			continue
		case p.headerLine.matches(line):
			i++
			continue
		case !inSection && !looseLeadingDateRe.MatchString(line):
			i++
			continue
		}

		tx, consumed := p.parseBlock(ctx, lines, i, statementYear)
		if tx != nil && tx.Description != "" {
			transactions = append(transactions, *tx)
		}

		if consumed <= 0 {
			consumed = 1
		}
		i += consumed
	}

	p.logger.Debug("parsed statement text", "lines", len(lines), "transactions", len(transactions))
	return transactions
}
