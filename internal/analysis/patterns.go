package analysis

import (
	"math"
	"sort"
	"time"

	"golang-quote-agent/internal/entity"
)

// Trend labels.
const (
	TrendBullish = "bullish"
	TrendBearish = "bearish"
	TrendNeutral = "neutral"
)

// PriceGap is a bar whose range cleared the prior bar's range entirely.
type PriceGap struct {
	Date        time.Time `json:"date"`
	Type        string    `json:"type"` // "up" or "down"
	SizePercent float64   `json:"size_percent"`
}

// PatternSummary is the pattern analysis output for one series.
type PatternSummary struct {
	Trend               string     `json:"trend"`
	TrendStrength       float64    `json:"trend_strength"`
	SupportLevels       []float64  `json:"support_levels,omitempty"`
	ResistanceLevels    []float64  `json:"resistance_levels,omitempty"`
	Gaps                []PriceGap `json:"gaps,omitempty"`
	CandlestickPatterns []string   `json:"candlestick_patterns,omitempty"`
	ChartPatterns       []string   `json:"chart_patterns,omitempty"`
}

// AnalyzePatterns derives trend, support/resistance, gaps and pattern tags
// from a cleaned series.
func AnalyzePatterns(data *entity.HistoricalData) PatternSummary {
	summary := PatternSummary{Trend: TrendNeutral}
	closes := data.Closes()
	if len(closes) < 2 {
		return summary
	}

	summary.Trend, summary.TrendStrength = detectTrend(closes)
	summary.SupportLevels, summary.ResistanceLevels = supportResistance(data)
	summary.Gaps = detectGaps(data)
	summary.CandlestickPatterns = candlestickPatterns(data)
	summary.ChartPatterns = chartPatterns(data)
	return summary
}

// detectTrend fits a line through the closes and classifies on the raw slope:
// above 0.1 points per bar is bullish, below -0.1 bearish. Strength is the
// absolute Pearson correlation.
func detectTrend(closes []float64) (string, float64) {
	n := float64(len(closes))
	if n < 2 {
		return TrendNeutral, 0
	}

	var sumX, sumY, sumXY, sumXX, sumYY float64
	for i, y := range closes {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
		sumYY += y * y
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return TrendNeutral, 0
	}
	slope := (n*sumXY - sumX*sumY) / denom

	var strength float64
	corrDenom := math.Sqrt(denom * (n*sumYY - sumY*sumY))
	if corrDenom != 0 {
		strength = math.Abs((n*sumXY - sumX*sumY) / corrDenom)
	}

	switch {
	case slope > 0.1:
		return TrendBullish, strength
	case slope < -0.1:
		return TrendBearish, strength
	default:
		return TrendNeutral, strength
	}
}

// supportResistance finds local extrema against the immediate neighbors:
// a high strictly above both adjacent highs is resistance, a low strictly
// below both adjacent lows is support. Duplicates collapse to one level.
// Resistance keeps the five highest, descending; support the five lowest,
// ascending.
func supportResistance(data *entity.HistoricalData) (support, resistance []float64) {
	points := data.DataPoints
	if len(points) < 3 {
		return nil, nil
	}

	supportSet := map[float64]struct{}{}
	resistanceSet := map[float64]struct{}{}
	for i := 1; i < len(points)-1; i++ {
		if low := points[i].Low; low != nil && lowerThanNeighbors(points, i) {
			supportSet[*low] = struct{}{}
		}
		if high := points[i].High; high != nil && higherThanNeighbors(points, i) {
			resistanceSet[*high] = struct{}{}
		}
	}

	for level := range supportSet {
		support = append(support, level)
	}
	sort.Float64s(support)
	if len(support) > 5 {
		support = support[:5]
	}

	for level := range resistanceSet {
		resistance = append(resistance, level)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(resistance)))
	if len(resistance) > 5 {
		resistance = resistance[:5]
	}
	return support, resistance
}

func lowerThanNeighbors(points []entity.HistoricalDataPoint, i int) bool {
	v := points[i].Low
	for _, j := range []int{i - 1, i + 1} {
		n := points[j].Low
		if n == nil || *v >= *n {
			return false
		}
	}
	return true
}

func higherThanNeighbors(points []entity.HistoricalDataPoint, i int) bool {
	v := points[i].High
	for _, j := range []int{i - 1, i + 1} {
		n := points[j].High
		if n == nil || *v <= *n {
			return false
		}
	}
	return true
}

// detectGaps reports bars whose range never touched the prior bar's range:
// a gap up when the low opens above the previous high, a gap down when the
// high stays below the previous low. Size is relative to the breached level.
// Keeps the last ten.
func detectGaps(data *entity.HistoricalData) []PriceGap {
	var gaps []PriceGap
	points := data.DataPoints
	for i := 1; i < len(points); i++ {
		prevHigh, prevLow := points[i-1].High, points[i-1].Low
		high, low := points[i].High, points[i].Low
		if prevHigh == nil || prevLow == nil || high == nil || low == nil {
			continue
		}
		switch {
		case *low > *prevHigh && *prevHigh != 0:
			gaps = append(gaps, PriceGap{
				Date:        points[i].Date,
				Type:        "up",
				SizePercent: (*low - *prevHigh) / *prevHigh * 100,
			})
		case *high < *prevLow && *prevLow != 0:
			gaps = append(gaps, PriceGap{
				Date:        points[i].Date,
				Type:        "down",
				SizePercent: (*prevLow - *high) / *prevLow * 100,
			})
		}
	}
	if len(gaps) > 10 {
		gaps = gaps[len(gaps)-10:]
	}
	return gaps
}

// candlestickPatterns tags the most recent bar.
func candlestickPatterns(data *entity.HistoricalData) []string {
	points := data.DataPoints
	if len(points) == 0 {
		return nil
	}
	last := points[len(points)-1]
	if last.Open == nil || last.Close == nil || last.High == nil || last.Low == nil {
		return nil
	}
	o, c, h, l := *last.Open, *last.Close, *last.High, *last.Low
	bodySize := math.Abs(c - o)
	totalRange := h - l
	if totalRange == 0 {
		return nil
	}

	var patterns []string
	upperShadow := h - math.Max(o, c)
	lowerShadow := math.Min(o, c) - l

	if bodySize <= 0.1*totalRange {
		patterns = append(patterns, "doji")
	}
	if lowerShadow >= 2*bodySize && upperShadow <= bodySize && bodySize > 0 {
		trend, _ := detectTrend(data.Closes())
		if trend == TrendBearish {
			patterns = append(patterns, "hammer")
		} else if trend == TrendBullish {
			patterns = append(patterns, "hanging_man")
		}
	}
	return patterns
}

// chartPatterns looks for double tops and bottoms among the recent extrema:
// two peaks or troughs within two percent of each other.
func chartPatterns(data *entity.HistoricalData) []string {
	support, resistance := supportResistance(data)
	var patterns []string
	if hasPairWithin(resistance, 0.02) {
		patterns = append(patterns, "double_top")
	}
	if hasPairWithin(support, 0.02) {
		patterns = append(patterns, "double_bottom")
	}
	return patterns
}

func hasPairWithin(levels []float64, tolerance float64) bool {
	for i := 0; i < len(levels); i++ {
		for j := i + 1; j < len(levels); j++ {
			if levels[i] == 0 {
				continue
			}
			if math.Abs(levels[i]-levels[j])/levels[i] <= tolerance {
				return true
			}
		}
	}
	return false
}
