package validate

import (
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankai-project/bankai/internal/domain/parser"
)

func cleanTransactions(n int) []parser.Transaction {
	gofakeit.Seed(11)
	txs := make([]parser.Transaction, n)
	for i := range txs {
		d := decimal.NewFromFloat(gofakeit.Price(1, 500)).Round(2)
		txs[i] = parser.Transaction{
			Date:        fmt.Sprintf("01/%02d/2025", i%28+1),
			Description: fmt.Sprintf("%s #%d", gofakeit.Company(), i),
			Amount:      &d,
		}
	}
	return txs
}

func TestCheck_CleanExtraction(t *testing.T) {
	res := Check(cleanTransactions(20), "structured")

	assert.True(t, res.Valid)
	assert.Equal(t, 100, res.Score)
	assert.Equal(t, 20, res.TransactionCount)
	assert.Equal(t, "structured", res.Method)
	assert.Empty(t, res.Issues)
}

func TestCheck_Empty(t *testing.T) {
	res := Check(nil, "ocr")

	assert.False(t, res.Valid)
	assert.Equal(t, 0, res.Score)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "no transactions found", res.Issues[0])
}

func TestCheck_Deductions(t *testing.T) {
	t.Run("bad dates", func(t *testing.T) {
		txs := cleanTransactions(10)
		for i := 0; i < 5; i++ {
			txs[i].Date = "59/10/2025"
		}
		res := Check(txs, "ocr")
		assert.Equal(t, 80, res.Score)
		assert.True(t, res.Valid)
	})

	t.Run("missing amounts", func(t *testing.T) {
		txs := cleanTransactions(10)
		for i := 0; i < 5; i++ {
			txs[i].Amount = nil
		}
		res := Check(txs, "ocr")
		assert.Equal(t, 70, res.Score)
	})

	t.Run("garbage descriptions", func(t *testing.T) {
		txs := cleanTransactions(10)
		for i := 0; i < 7; i++ {
			txs[i].Description = "##"
		}
		res := Check(txs, "ocr")
		// -30 for descriptions, -10 because most of the list collapses
		// into one duplicate string.
		assert.Equal(t, 60, res.Score)
	})

	t.Run("too few transactions", func(t *testing.T) {
		res := Check(cleanTransactions(2), "structured")
		assert.Equal(t, 80, res.Score)
		assert.Contains(t, res.Issues[0], "very few transactions")
	})

	t.Run("everything wrong is invalid", func(t *testing.T) {
		bad := parser.Transaction{Date: "bad", Description: "x"}
		res := Check([]parser.Transaction{bad, bad}, "ocr")
		assert.False(t, res.Valid)
		assert.Less(t, res.Score, 50)
	})
}
