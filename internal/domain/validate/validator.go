// Package validate scores the plausibility of an extracted transaction
// list. The score is a heuristic confidence signal, not a correctness
// proof: it lets the reconciler choose between two imperfect extractions
// without ground truth.
package validate

import (
	"fmt"

	"github.com/bankai-project/bankai/internal/domain/parser"
)

// Result is the quality assessment for one extraction method's output.
type Result struct {
	Valid            bool
	Score            int // 0-100
	TransactionCount int
	Issues           []string
	Method           string
}

const validThreshold = 50

// Check scores transactions extracted by the named method. Deductions:
// -20 when under 90% of entries carry a well-formed date, -30 when under
// 90% carry a positive amount, -30 when under 80% have a usable
// description, -20 for fewer than 3 transactions, -10 when the
// unique-description ratio falls below 50% (a sign of parse loops).
func Check(transactions []parser.Transaction, method string) Result {
	if len(transactions) == 0 {
		return Result{
			Valid:  false,
			Score:  0,
			Issues: []string{"no transactions found"},
			Method: method,
		}
	}

	score := 100
	var issues []string
	total := len(transactions)

	validDates := 0
	for _, t := range transactions {
		if parser.IsWellFormedDate(t.Date) {
			validDates++
		}
	}
	if ratio := float64(validDates) / float64(total); ratio < 0.9 {
		score -= 20
		issues = append(issues, fmt.Sprintf("only %.0f%% have valid dates", ratio*100))
	}

	withAmounts := 0
	for _, t := range transactions {
		if t.HasPositiveAmount() {
			withAmounts++
		}
	}
	if ratio := float64(withAmounts) / float64(total); ratio < 0.9 {
		score -= 30
		issues = append(issues, fmt.Sprintf("only %.0f%% have valid amounts", ratio*100))
	}

	validDescriptions := 0
	for _, t := range transactions {
		if len(t.Description) >= 3 && hasAlpha(t.Description) {
			validDescriptions++
		}
	}
	if ratio := float64(validDescriptions) / float64(total); ratio < 0.8 {
		score -= 30
		issues = append(issues, fmt.Sprintf("only %.0f%% have valid descriptions", ratio*100))
	}

	if total < 3 {
		score -= 20
		issues = append(issues, fmt.Sprintf("very few transactions (%d)", total))
	}

	unique := make(map[string]struct{}, total)
	for _, t := range transactions {
		unique[t.Description] = struct{}{}
	}
	if ratio := float64(len(unique)) / float64(total); ratio < 0.5 {
		score -= 10
		issues = append(issues, fmt.Sprintf("many duplicates (uniqueness: %.0f%%)", ratio*100))
	}

	if score < 0 {
		score = 0
	}

	return Result{
		Valid:            score >= validThreshold,
		Score:            score,
		TransactionCount: total,
		Issues:           issues,
		Method:           method,
	}
}

func hasAlpha(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}
