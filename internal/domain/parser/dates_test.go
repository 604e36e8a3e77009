package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchLeadingDate(t *testing.T) {
	t.Run("full year", func(t *testing.T) {
		dm, ok := matchLeadingDate("01/15/2025 WALMART $45.23", 2025)
		require.True(t, ok)
		assert.Equal(t, "01/15/2025", dm.date)
		assert.Equal(t, len("01/15/2025"), dm.end)
	})

	t.Run("two digit year assumes 2000s", func(t *testing.T) {
		dm, ok := matchLeadingDate("12/31/24 MERCHANT 37.62", 2024)
		require.True(t, ok)
		assert.Equal(t, "12/31/2024", dm.date)
	})

	t.Run("dash form borrows statement year", func(t *testing.T) {
		dm, ok := matchLeadingDate("12-16 12-17 WMSUPERCENTER $91.99", 2024)
		require.True(t, ok)
		assert.Equal(t, "12/16/2024", dm.date)
	})

	t.Run("dash form requires trailing space", func(t *testing.T) {
		_, ok := matchLeadingDate("12-16", 2024)
		assert.False(t, ok)
	})

	t.Run("no date", func(t *testing.T) {
		_, ok := matchLeadingDate("MERCHANT NAME DETAILS", 2024)
		assert.False(t, ok)
	})
}

func TestFixOCRDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"valid month untouched", "12/29/2025", "12/29/2025"},
		{"42 corrected to 12", "42/29/2025", "12/29/2025"},
		{"41 corrected to 11", "41/05/2025", "11/05/2025"},
		{"40 corrected to 10", "40/01/2025", "10/01/2025"},
		{"14 corrected to 11", "14/20/2025", "11/20/2025"},
		{"13 corrected to 11", "13/08/2025", "11/08/2025"},
		{"digit swap heuristic", "22/10/2025", "12/10/2025"},
		{"unmappable month left as-is", "59/10/2025", "59/10/2025"},
		{"not a date", "garbage", "garbage"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fixOCRDate(tt.in))
		})
	}
}

func TestIsWellFormedDate(t *testing.T) {
	assert.True(t, IsWellFormedDate("01/15/2025"))
	assert.True(t, IsWellFormedDate("1/5/2025"))
	assert.False(t, IsWellFormedDate("01/15/25"))
	assert.False(t, IsWellFormedDate("59/10/2025 trailing"))
	assert.False(t, IsWellFormedDate(""))
}
