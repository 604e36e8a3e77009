package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanPatterns_ProcessorRules(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		want  string
		final bool
	}{
		{"squarespace invoice", "SQSP* INV165866692", "Squarespace", true},
		{"cash app person", "CASH APP *SAMUEL SCH", "Cash App", true},
		{"bp with location codes", "BP#9267972HWY 13BP FARGO ND", "BP", true},
		{"square keeps merchant", "SQ *COFFEE COLLECTIVE FARGO", "COFFEE COLLECTIVE", false},
		{"worldline strips prefix", "WL *STEAM PURCHASE", "STEAM", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, final := cleanPatterns(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.final, final)
		})
	}
}

func TestCleanPatterns_ATMWithdrawal(t *testing.T) {
	got, final := cleanPatterns("$100.00 AT 12:30 PM MAIN ST BRANCH")
	assert.Equal(t, "ATM Withdrawal", got)
	assert.True(t, final)
}

func TestCleanPatterns_NoiseRemoval(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"attached store number", "AUTOZONE6252 FARGO ND", "AUTOZONE"},
		{"store hash and city", "WALMART #4352 FARGO ND", "WALMART"},
		{"phone number", "DOMINOS 701-555-1234", "DOMINOS"},
		{"card mask and type prefix", "XX4297 RECUR PURCHASE. MAPLE RIDGE VILLA", "MAPLE RIDGE"},
		{"zip then city state pair", "HOLIDAY STATIONS Moorhead MN 56560", "HOLIDAY STATIONS"},
		{"asterisk join", "WINRED* TRUMP NATI", "WINRED TRUMP NATI"},
		{"percent code", "NETFLIX %01/31/2025% COM", "NETFLIX COM"},
		{"highway number", "CENEX Hwy 52 FARGO", "CENEX"},
		{"tst dash prefix", "TST- Hooligans", "Hooligans"},
		{"too short untouched", "AB", "AB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, final := cleanPatterns(tt.in)
			assert.Equal(t, tt.want, got)
			assert.False(t, final)
		})
	}
}

func TestCleanPatterns_Decompression(t *testing.T) {
	got, _ := cleanPatterns("PIKEANDPINTGRILLINC")
	assert.Equal(t, "PIKE AND PINTGRILLINC", got)
}
