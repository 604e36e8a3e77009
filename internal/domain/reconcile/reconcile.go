// Package reconcile runs both extraction methods over a statement,
// parses each text independently, and merges the two transaction lists
// by cross-referencing dates and amounts. Structured extraction reads
// clean text but misses scanned pages; OCR reads everything but
// garbles characters. Between the two there is usually one good
// version of every transaction.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bankai-project/bankai/internal/domain/extraction"
	"github.com/bankai-project/bankai/internal/domain/parser"
	"github.com/bankai-project/bankai/internal/domain/validate"
)

// minUsableText is the trimmed-text floor below which an extraction is
// treated as having produced nothing.
const minUsableText = 100

// amountTolerance allows one cent of OCR drift when matching amounts
// across methods.
var amountTolerance = decimal.NewFromFloat(0.02)

// Outcome is the reconciled result for one statement PDF.
type Outcome struct {
	// Text is the raw text of the better-scoring method, kept for
	// statement metadata detection (bank name, year, account type).
	Text         string
	Method       string
	Transactions []parser.Transaction
	Quality      validate.Result
}

type Reconciler struct {
	structured extraction.Extractor
	ocr        extraction.Extractor
	parser     *parser.Parser
	cleaner    parser.Cleaner
	logger     *slog.Logger
}

// New builds a Reconciler. ocr may be nil when the OCR toolchain is
// not installed; reconciliation then degrades to structured-only.
func New(structured, ocr extraction.Extractor, p *parser.Parser, cleaner parser.Cleaner, logger *slog.Logger) *Reconciler {
	if cleaner == nil {
		cleaner = parser.IdentityCleaner{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		structured: structured,
		ocr:        ocr,
		parser:     p,
		cleaner:    cleaner,
		logger:     logger,
	}
}

// Process extracts, parses, validates and merges one PDF.
func (r *Reconciler) Process(ctx context.Context, pdfPath string) (Outcome, error) {
	textA, txsA, qualA := r.runMethod(ctx, r.structured, pdfPath)
	textB, txsB, qualB := r.runMethod(ctx, r.ocr, pdfPath)

	switch {
	case len(txsA) > 0 && len(txsB) > 0:
		merged := r.CrossReference(ctx, txsA, txsB, qualA.Method, qualB.Method)

		out := Outcome{Transactions: merged}
		if qualA.Score >= qualB.Score {
			out.Text = textA
			out.Method = fmt.Sprintf("%s + %s (merged)", qualA.Method, qualB.Method)
		} else {
			out.Text = textB
			out.Method = fmt.Sprintf("%s + %s (merged)", qualB.Method, qualA.Method)
		}
		out.Quality = validate.Result{
			Valid:            true,
			Score:            max(qualA.Score, qualB.Score),
			TransactionCount: len(merged),
			Method:           out.Method,
		}
		return out, nil

	case len(txsA) > 0:
		return r.singleMethod(textA, txsA, qualA, ""), nil

	case len(txsB) > 0:
		return r.singleMethod(textB, txsB, qualB, ""), nil

	default:
		// Neither produced transactions. Keep the better-scoring text
		// anyway so metadata detection still has something to read.
		r.logger.Warn("both extraction methods produced low quality results",
			"path", pdfPath, "structured_score", qualA.Score, "ocr_score", qualB.Score)
		if qualA.Score >= qualB.Score {
			return r.singleMethod(textA, txsA, qualA, " (low quality)"), nil
		}
		return r.singleMethod(textB, txsB, qualB, " (low quality)"), nil
	}
}

func (r *Reconciler) singleMethod(text string, txs []parser.Transaction, qual validate.Result, suffix string) Outcome {
	method := qual.Method + suffix
	for i := range txs {
		txs[i].ExtractionMethod = method
	}
	return Outcome{Text: text, Method: method, Transactions: txs, Quality: qual}
}

// runMethod extracts with one method and parses the result. Extraction
// failures are logged and degrade to an empty list, never an error.
func (r *Reconciler) runMethod(ctx context.Context, ex extraction.Extractor, pdfPath string) (string, []parser.Transaction, validate.Result) {
	if ex == nil {
		return "", nil, validate.Result{Method: "unavailable"}
	}

	res, err := ex.Extract(ctx, pdfPath)
	if err != nil {
		r.logger.Warn("extraction failed", "method", ex.Method(), "path", pdfPath, "error", err)
		return "", nil, validate.Result{Method: ex.Method()}
	}

	if len(strings.TrimSpace(res.Text)) < minUsableText {
		r.logger.Info("extraction produced no usable text", "method", ex.Method(), "path", pdfPath)
		return res.Text, nil, validate.Result{Method: ex.Method()}
	}

	year := parser.StatementYear(res.Text)
	txs := r.parser.ParseAll(ctx, res.Text, year)
	qual := validate.Check(txs, ex.Method())

	r.logger.Info("extraction parsed",
		"method", ex.Method(), "path", pdfPath,
		"transactions", qual.TransactionCount, "score", qual.Score)
	return res.Text, txs, qual
}

// CrossReference merges two transaction lists. Entries match when
// their date strings are identical and their primary amounts differ by
// less than one cent; each entry in b matches at most once, first
// unmatched candidate wins. For a match the better original
// description is chosen, re-cleaned with amount and date context, and
// the entry tagged with both methods. Unmatched entries from either
// side are kept and tagged "<method> only". The result is sorted by
// date string.
func (r *Reconciler) CrossReference(ctx context.Context, a, b []parser.Transaction, methodA, methodB string) []parser.Transaction {
	merged := make([]parser.Transaction, 0, len(a)+len(b))
	matchedB := make(map[int]bool, len(b))

	for _, ta := range a {
		amountA := ta.PrimaryAmount()

		matchIdx := -1
		for idx, tb := range b {
			if matchedB[idx] {
				continue
			}
			if ta.Date == tb.Date && amountA.Sub(tb.PrimaryAmount()).Abs().LessThan(amountTolerance) {
				matchIdx = idx
				break
			}
		}

		if matchIdx < 0 {
			ta.ExtractionMethod = methodA + " only"
			merged = append(merged, ta)
			continue
		}

		tb := b[matchIdx]
		matchedB[matchIdx] = true

		// Pick the cleaner raw description, then re-clean it with full
		// context so the normalizer sees the best starting point.
		selected := selectBestDescription(ta.OriginalDescription, tb.OriginalDescription)
		amount := amountA
		ta.Description = r.cleaner.Clean(ctx, selected, &amount, ta.Date)
		ta.OriginalDescription = selected
		ta.ExtractionMethod = fmt.Sprintf("%s (matched with %s)", methodA, methodB)
		merged = append(merged, ta)
	}

	for idx, tb := range b {
		if !matchedB[idx] {
			tb.ExtractionMethod = methodB + " only"
			merged = append(merged, tb)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Date < merged[j].Date
	})

	r.logger.Info("cross-reference complete",
		"merged", len(merged), "from_a", len(a), "from_b", len(b))
	return merged
}

// descriptionArtifacts are tokens that mark a raw description as
// carrying transaction-type noise rather than merchant text.
var descriptionArtifacts = []string{
	"PURCHASE", "RECUR", "WL*", "WL ", "SQ*", "TST*", "Payment.", "XX", "POS ", "ACH ",
}

// selectBestDescription returns whichever raw description scores
// higher: shorter, fewer artifacts, properly capitalized. Ties keep
// the first argument.
func selectBestDescription(a, b string) string {
	if scoreDescription(a) >= scoreDescription(b) {
		return a
	}
	return b
}

func scoreDescription(place string) int {
	score := 100
	upper := strings.ToUpper(place)

	for _, artifact := range descriptionArtifacts {
		if strings.Contains(place, artifact) || strings.Contains(upper, artifact) {
			score -= 30
		}
	}

	switch {
	case len(place) > 40:
		score -= 20
	case len(place) > 25:
		score -= 10
	}

	switch words := len(strings.Fields(place)); {
	case words > 5:
		score -= 15
	case words > 4:
		score -= 5
	}

	if place != "" {
		first := rune(place[0])
		switch {
		case first >= 'A' && first <= 'Z':
			score += 5
		case (first >= 'a' && first <= 'z') || (first >= '0' && first <= '9'):
			score -= 10
		case first == '=' || first == '-' || first == '>' || first == '<':
			score -= 20
		}
	}

	return score
}
