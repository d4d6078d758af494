package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanNumeric(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *float64
	}{
		{"plain float", "123.45", f(123.45)},
		{"already clean is idempotent", "123.45", f(123.45)},
		{"currency symbol", "$150.25", f(150.25)},
		{"thousands separators", "1,234,567.89", f(1234567.89)},
		{"percent sign", "+3.25%", f(3.25)},
		{"parenthesized negative", "(1,234.50)", f(-1234.50)},
		{"leading plus", "+2.30", f(2.30)},
		{"negative", "-2.30", f(-2.30)},
		{"surrounding whitespace", "  42.0  ", f(42.0)},
		{"missing token N/A", "N/A", nil},
		{"missing token dashes", "--", nil},
		{"empty string", "", nil},
		{"whitespace only", " ", nil},
		{"garbage", "abc", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanNumeric(tt.input)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func TestParseMagnitude(t *testing.T) {
	tests := []struct {
		input string
		want  *int64
	}{
		{"1.5M", i(1_500_000)},
		{"2B", i(2_000_000_000)},
		{"850K", i(850_000)},
		{"1.2k", i(1_200)},
		{"52,345,678", i(52_345_678)},
		{"123", i(123)},
		{"N/A", nil},
		{"", nil},
		{"junk", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseMagnitude(tt.input)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestParseMarketCap(t *testing.T) {
	assert.Equal(t, "2,500,000,000,000", ParseMarketCap("2.5T"))
	assert.Equal(t, "150,200,000,000", ParseMarketCap("150.2B"))
	assert.Equal(t, "3,000,000", ParseMarketCap("3M"))
	assert.Equal(t, "not a cap", ParseMarketCap("not a cap"))
	assert.Equal(t, "", ParseMarketCap(""))
}

func TestExtractNumeric(t *testing.T) {
	assert.InDelta(t, 150.25, *ExtractNumeric("Price: $150.25 today"), 1e-9)
	assert.InDelta(t, 1234.5, *ExtractNumeric("1,234.5 shares"), 1e-9)
	assert.Nil(t, ExtractNumeric("no numbers here"))
	assert.Nil(t, ExtractNumeric(""))
}

func TestSafeDivide(t *testing.T) {
	assert.InDelta(t, 2.0, *SafeDivide(f(10), f(5)), 1e-9)
	assert.Nil(t, SafeDivide(f(10), f(0)))
	assert.Nil(t, SafeDivide(nil, f(5)))
	assert.Nil(t, SafeDivide(f(10), nil))
}

func TestValidSymbol(t *testing.T) {
	assert.True(t, ValidSymbol("AAPL"))
	assert.True(t, ValidSymbol("aapl"))
	assert.True(t, ValidSymbol(" T "))
	assert.False(t, ValidSymbol(""))
	assert.False(t, ValidSymbol("TOOLONG"))
	assert.False(t, ValidSymbol("AB1"))
}

func TestIsMarketHours(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Wednesday 10:00 ET.
	assert.True(t, IsMarketHours(time.Date(2024, 6, 12, 10, 0, 0, 0, loc)))
	// Wednesday 08:00 ET, pre-market.
	assert.False(t, IsMarketHours(time.Date(2024, 6, 12, 8, 0, 0, 0, loc)))
	// Saturday.
	assert.False(t, IsMarketHours(time.Date(2024, 6, 15, 11, 0, 0, 0, loc)))
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "$1,234.50", FormatCurrency(f(1234.5)))
	assert.Equal(t, "$-1,234.50", FormatCurrency(f(-1234.5)))
	assert.Equal(t, "N/A", FormatCurrency(nil))
	assert.Equal(t, "-1.51%", FormatPercent(f(-1.51)))
	assert.Equal(t, "N/A", FormatPercent(nil))
	assert.Equal(t, "1.50M", FormatVolume(i(1_500_000)))
	assert.Equal(t, "2.00B", FormatVolume(i(2_000_000_000)))
	assert.Equal(t, "999", FormatVolume(i(999)))
	assert.Equal(t, "N/A", FormatVolume(nil))
}

func f(v float64) *float64 { return &v }
func i(v int64) *int64     { return &v }
