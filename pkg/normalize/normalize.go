// Package normalize converts the raw text tokens found on quote pages into
// typed values. Malformed or missing input yields nil, never an error:
// missing financial data is routine.
package normalize

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	missingTokens  = map[string]bool{"": true, "N/A": true, "--": true}
	formattingRe   = regexp.MustCompile(`[,$%+\s]`)
	magnitudeRe    = regexp.MustCompile(`^([\d.,]+)\s*([KMBTkmbt]?)$`)
	firstNumericRe = regexp.MustCompile(`[\d]+\.?\d*`)
)

// CleanNumeric converts a raw token such as "$1,234.50", "+3.25%" or
// "(123.45)" into a float. Parenthesized values are negative. Returns nil for
// missing tokens and anything unparseable.
func CleanNumeric(value string) *float64 {
	trimmed := strings.TrimSpace(value)
	if missingTokens[trimmed] {
		return nil
	}

	cleaned := formattingRe.ReplaceAllString(trimmed, "")
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		cleaned = "-" + cleaned[1:len(cleaned)-1]
	}
	if cleaned == "" {
		return nil
	}

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &f
}

// ParseMagnitude converts a token with an optional K/M/B suffix into an
// integer, e.g. "1.5M" -> 1500000. Used for volume-like fields.
func ParseMagnitude(value string) *int64 {
	trimmed := strings.TrimSpace(value)
	if missingTokens[trimmed] {
		return nil
	}

	upper := strings.ToUpper(strings.ReplaceAll(trimmed, ",", ""))
	multiplier := 1.0
	switch {
	case strings.HasSuffix(upper, "K"):
		multiplier = 1e3
		upper = strings.TrimSuffix(upper, "K")
	case strings.HasSuffix(upper, "M"):
		multiplier = 1e6
		upper = strings.TrimSuffix(upper, "M")
	case strings.HasSuffix(upper, "B"):
		multiplier = 1e9
		upper = strings.TrimSuffix(upper, "B")
	}

	base := CleanNumeric(upper)
	if base == nil {
		return nil
	}
	n := int64(math.Round(*base * multiplier))
	return &n
}

// ParseMarketCap expands a capitalization token such as "2.5T" or "150.2B"
// into a fully written-out figure with thousands separators. Unparseable
// input is returned unchanged so the display string is never lost.
func ParseMarketCap(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}

	m := magnitudeRe.FindStringSubmatch(strings.ToUpper(trimmed))
	if m == nil {
		return trimmed
	}
	base := CleanNumeric(m[1])
	if base == nil {
		return trimmed
	}

	multiplier := 1.0
	switch m[2] {
	case "K":
		multiplier = 1e3
	case "M":
		multiplier = 1e6
	case "B":
		multiplier = 1e9
	case "T":
		multiplier = 1e12
	}
	return groupThousands(int64(math.Round(*base * multiplier)))
}

// ExtractNumeric pulls the first numeric value out of free text.
func ExtractNumeric(text string) *float64 {
	if text == "" {
		return nil
	}
	match := firstNumericRe.FindString(strings.ReplaceAll(text, ",", ""))
	if match == "" {
		return nil
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return nil
	}
	return &f
}

// SafeDivide divides two optional values, treating nil and a zero denominator
// as an absent result.
func SafeDivide(numerator, denominator *float64) *float64 {
	if numerator == nil || denominator == nil || *denominator == 0 {
		return nil
	}
	result := *numerator / *denominator
	return &result
}

var symbolRe = regexp.MustCompile(`^[A-Z]{1,5}$`)

// ValidSymbol reports whether the string looks like a ticker symbol:
// one to five letters after uppercasing.
func ValidSymbol(symbol string) bool {
	return symbolRe.MatchString(strings.ToUpper(strings.TrimSpace(symbol)))
}

// IsMarketHours reports whether the US market is open right now: weekdays
// 9:30-16:00 America/New_York, no holiday calendar. Best-effort only; if the
// timezone cannot be loaded the market is assumed open.
func IsMarketHours(now time.Time) bool {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return true
	}
	et := now.In(loc)
	if et.Weekday() == time.Saturday || et.Weekday() == time.Sunday {
		return false
	}
	minutes := et.Hour()*60 + et.Minute()
	return minutes >= 9*60+30 && minutes <= 16*60
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	negative := strings.HasPrefix(s, "-")
	if negative {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if negative {
		return "-" + b.String()
	}
	return b.String()
}

// FormatCurrency renders an optional price as "$1,234.50" or "N/A".
func FormatCurrency(value *float64) string {
	if value == nil {
		return "N/A"
	}
	s := fmt.Sprintf("%.2f", *value)
	dot := strings.Index(s, ".")
	whole, frac := s[:dot], s[dot:]
	sign := ""
	if strings.HasPrefix(whole, "-") {
		sign, whole = "-", whole[1:]
	}
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return "$" + sign + b.String() + frac
}

// FormatPercent renders an optional percentage as "3.25%" or "N/A".
func FormatPercent(value *float64) string {
	if value == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", *value)
}

// FormatVolume renders an optional volume with a K/M/B suffix, or "N/A".
func FormatVolume(volume *int64) string {
	if volume == nil {
		return "N/A"
	}
	v := float64(*volume)
	switch {
	case v >= 1e9:
		return fmt.Sprintf("%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.2fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.2fK", v/1e3)
	default:
		return groupThousands(*volume)
	}
}
