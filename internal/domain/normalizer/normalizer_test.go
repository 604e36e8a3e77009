package normalizer

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankai-project/bankai/pkg/config"
)

func testLLMConfig() config.LLMConfig {
	return config.LLMConfig{
		PrimaryModel:   "qwen2.5:14b",
		SecondaryModel: "dolphin-mistral",
		MultiModel:     true,
	}
}

func newOfflineNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "cache.json"), nil)
	return New(store, nil, testLLMConfig(), nil)
}

func TestClean_ProcessorShortCircuitWithoutModel(t *testing.T) {
	n := newOfflineNormalizer(t)
	got := n.Clean(context.Background(), "SQSP* INV165866692", nil, "")
	assert.Equal(t, "Squarespace", got)
}

func TestClean_FallbackTitleCase(t *testing.T) {
	n := newOfflineNormalizer(t)

	tests := []struct {
		in   string
		want string
	}{
		{"WALMART #4352 FARGO ND", "Walmart"},
		{"CASH APP *SAMUEL SCH", "Cash App"},
		{"BP#9267972HWY 13BP FARGO ND", "BP"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, n.Clean(context.Background(), tt.in, nil, ""))
	}
}

func TestClean_CacheIdempotence(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "cache.json"), nil)
	n := New(store, nil, testLLMConfig(), nil)

	first := n.Clean(context.Background(), "WALMART #4352 FARGO ND", nil, "")
	second := n.Clean(context.Background(), "WALMART #4352 FARGO ND", nil, "")
	assert.Equal(t, first, second)

	cached, ok := store.Lookup("WALMART #4352 FARGO ND")
	require.True(t, ok)
	assert.Equal(t, first, cached)
}

func TestClean_ShortInputUntouched(t *testing.T) {
	n := newOfflineNormalizer(t)
	assert.Equal(t, "AB", n.Clean(context.Background(), "AB", nil, ""))
}

func TestClean_ModelRefinement(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "cache.json"), nil)
	gen := &scriptedGenerator{
		models:  []string{"qwen2.5:14b"},
		answers: []string{"Home Depot", "Home Depot", "Home Depot"},
	}
	n := New(store, gen, testLLMConfig(), nil)

	amount := decimal.NewFromFloat(45.23)
	got := n.Clean(context.Background(), "THE HOME DEPOT #3701 FARGO ND", &amount, "01/15/2025")
	assert.Equal(t, "Home Depot", got)

	t.Run("answer cached, model not consulted again", func(t *testing.T) {
		calls := gen.calls
		again := n.Clean(context.Background(), "THE HOME DEPOT #3701 FARGO ND", &amount, "01/15/2025")
		assert.Equal(t, "Home Depot", again)
		assert.Equal(t, calls, gen.calls)
	})
}

func TestClean_UserCorrectionWins(t *testing.T) {
	statementsDir := t.TempDir()
	writeMonthCSV(t, statementsDir, "2025-01", "expenses.csv", []string{"Cash Wise Foods"})

	store := NewStore(filepath.Join(t.TempDir(), "cache.json"), nil)
	store.RescanCSVs(statementsDir)
	n := New(store, nil, testLLMConfig(), nil)

	got := n.Clean(context.Background(), "Cash Wise Foods", nil, "")
	assert.Equal(t, "Cash Wise Foods", got)
}

func TestNormalizeModelOutput(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"explanatory wrapper", "Yes, the transaction name is: Cowboy Jacks", "Cowboy Jacks"},
		{"all caps titled and suffix dropped", "WALMART SUPERCENTER", "Walmart"},
		{"the prefix dropped", "THE HOME DEPOT", "Home Depot"},
		{"glued capitals split", "CowboyJacks", "Cowboy Jacks"},
		{"short brand code kept", "BP", "BP"},
		{"trailing comma stripped", "Holiday, ", "Holiday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeModelOutput(tt.in))
		})
	}
}

func TestTitleCaseFallback(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"WALMART FARGO", "Walmart Fargo"},
		{"CashWise", "Cash Wise"},
		{"BP USA LLC", "BP USA LLC"},
		{"Holiday", "Holiday"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, titleCaseFallback(tt.in))
	}
}
