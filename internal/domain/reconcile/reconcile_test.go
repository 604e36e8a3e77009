package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankai-project/bankai/internal/domain/extraction"
	"github.com/bankai-project/bankai/internal/domain/parser"
)

// stubExtractor feeds canned text through the pipeline.
type stubExtractor struct {
	method string
	text   string
	err    error
}

func (s stubExtractor) Extract(context.Context, string) (extraction.Result, error) {
	return extraction.Result{Text: s.text, Method: s.method, Pages: 1}, s.err
}

func (s stubExtractor) Method() string { return s.method }

func tx(date, desc, amount string) parser.Transaction {
	d, _ := decimal.NewFromString(amount)
	return parser.Transaction{
		Date:                date,
		Description:         desc,
		OriginalDescription: desc,
		Amount:              &d,
	}
}

func newTestReconciler(structured, ocr extraction.Extractor) *Reconciler {
	p := parser.New(parser.IdentityCleaner{}, nil)
	return New(structured, ocr, p, parser.IdentityCleaner{}, nil)
}

func TestCrossReference_MergesMatchingPair(t *testing.T) {
	r := newTestReconciler(nil, nil)

	a := []parser.Transaction{tx("03/01/2025", "NETFLIX.COM", "19.99")}
	b := []parser.Transaction{tx("03/01/2025", "POS NETFLIX COM", "19.99")}

	merged := r.CrossReference(context.Background(), a, b, "structured", "ocr")
	require.Len(t, merged, 1)
	assert.Equal(t, "structured (matched with ocr)", merged[0].ExtractionMethod)
	assert.Equal(t, "NETFLIX.COM", merged[0].OriginalDescription, "artifact-free description wins")
}

func TestCrossReference_ToleratesOneCentDrift(t *testing.T) {
	r := newTestReconciler(nil, nil)

	a := []parser.Transaction{tx("03/01/2025", "COFFEE HOUSE", "4.50")}
	b := []parser.Transaction{tx("03/01/2025", "COFFEE HOUSE", "4.51")}

	merged := r.CrossReference(context.Background(), a, b, "structured", "ocr")
	require.Len(t, merged, 1)
}

func TestCrossReference_UnmatchedTaggedPerMethod(t *testing.T) {
	r := newTestReconciler(nil, nil)

	a := []parser.Transaction{tx("03/01/2025", "WALMART", "45.23")}
	b := []parser.Transaction{tx("03/15/2025", "HOLIDAY STATION", "12.50")}

	merged := r.CrossReference(context.Background(), a, b, "structured", "ocr")
	require.Len(t, merged, 2)
	assert.Equal(t, "structured only", merged[0].ExtractionMethod)
	assert.Equal(t, "ocr only", merged[1].ExtractionMethod)
}

func TestCrossReference_EachEntryMatchesOnce(t *testing.T) {
	r := newTestReconciler(nil, nil)

	// Two identical charges on one day must stay two transactions.
	a := []parser.Transaction{
		tx("03/01/2025", "STARBUCKS", "5.00"),
		tx("03/01/2025", "STARBUCKS", "5.00"),
	}
	b := []parser.Transaction{
		tx("03/01/2025", "STARBUCKS #123", "5.00"),
	}

	merged := r.CrossReference(context.Background(), a, b, "structured", "ocr")
	require.Len(t, merged, 2)
	assert.Equal(t, "structured (matched with ocr)", merged[0].ExtractionMethod)
	assert.Equal(t, "structured only", merged[1].ExtractionMethod)
}

func TestCrossReference_SortedByDateString(t *testing.T) {
	r := newTestReconciler(nil, nil)

	a := []parser.Transaction{
		tx("03/20/2025", "LATE", "1.00"),
		tx("03/05/2025", "EARLY", "2.00"),
	}

	merged := r.CrossReference(context.Background(), a, nil, "structured", "ocr")
	require.Len(t, merged, 2)
	assert.Equal(t, "03/05/2025", merged[0].Date)
	assert.Equal(t, "03/20/2025", merged[1].Date)
}

func TestSelectBestDescription(t *testing.T) {
	t.Run("artifacts lose", func(t *testing.T) {
		assert.Equal(t, "Netflix", selectBestDescription("Netflix", "POS NETFLIX RECUR PURCHASE"))
	})

	t.Run("tie keeps first", func(t *testing.T) {
		assert.Equal(t, "Walmart", selectBestDescription("Walmart", "Target"))
	})

	t.Run("leading junk penalized", func(t *testing.T) {
		assert.Equal(t, "Home Depot", selectBestDescription("=HOME DEPOT 123", "Home Depot"))
	})
}

const structuredText = `STEARNS BANK NA
For billing cycle ending 03/31/2025
ACCOUNT ACTIVITY
POST DATE DESCRIPTION DEBITS CREDITS
03/01/2025 NETFLIX.COM 19.99
03/05/2025 WALMART #4352 45.23
03/10/2025 PAYROLL ACME CORP 2,450.00
TOTAL DEBITS
`

const ocrText = `STEARNS BANK NA
For billing cycle ending 03/31/2025
ACCOUNT ACTIVITY
POST DATE DESCRIPTION DEBITS CREDITS
03/01/2025 POS NETFLIX COM 19.99
03/05/2025 WALMART 4352 45.23
03/10/2025 PAYROLL ACME CORP 2,450.00
03/15/2025 HOLIDAY STATION 12.50
TOTAL DEBITS
`

func TestProcess_MergesBothMethods(t *testing.T) {
	r := newTestReconciler(
		stubExtractor{method: "structured", text: structuredText},
		stubExtractor{method: "ocr", text: ocrText},
	)

	out, err := r.Process(context.Background(), "stmt.pdf")
	require.NoError(t, err)

	assert.Contains(t, out.Method, "(merged)")
	assert.True(t, out.Quality.Valid)
	require.Len(t, out.Transactions, 4, "3 matched + 1 ocr-only")

	t.Run("netflix merged to one entry", func(t *testing.T) {
		count := 0
		for _, tr := range out.Transactions {
			if tr.Date == "03/01/2025" {
				count++
				assert.Equal(t, "structured (matched with ocr)", tr.ExtractionMethod)
			}
		}
		assert.Equal(t, 1, count)
	})

	t.Run("ocr extra kept", func(t *testing.T) {
		last := out.Transactions[len(out.Transactions)-1]
		assert.Equal(t, "03/15/2025", last.Date)
		assert.Equal(t, "ocr only", last.ExtractionMethod)
	})
}

func TestProcess_FallsBackToSingleMethod(t *testing.T) {
	r := newTestReconciler(
		stubExtractor{method: "structured", text: structuredText},
		stubExtractor{method: "ocr", err: errors.New("tesseract not installed")},
	)

	out, err := r.Process(context.Background(), "stmt.pdf")
	require.NoError(t, err)

	assert.Equal(t, "structured", out.Method)
	require.NotEmpty(t, out.Transactions)
	for _, tr := range out.Transactions {
		assert.Equal(t, "structured", tr.ExtractionMethod)
	}
}

func TestProcess_BothLowQuality(t *testing.T) {
	r := newTestReconciler(
		stubExtractor{method: "structured", text: "too short"},
		stubExtractor{method: "ocr", text: "also short"},
	)

	out, err := r.Process(context.Background(), "stmt.pdf")
	require.NoError(t, err)

	assert.Equal(t, "structured (low quality)", out.Method)
	assert.False(t, out.Quality.Valid)
	assert.Empty(t, out.Transactions)
}

func TestProcess_NilOCRExtractor(t *testing.T) {
	r := newTestReconciler(stubExtractor{method: "structured", text: structuredText}, nil)

	out, err := r.Process(context.Background(), "stmt.pdf")
	require.NoError(t, err)
	assert.Equal(t, "structured", out.Method)
	assert.Len(t, out.Transactions, 3)
}
