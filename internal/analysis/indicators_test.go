package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-quote-agent/internal/entity"
)

func seriesFromCloses(closes []float64) *entity.HistoricalData {
	data := &entity.HistoricalData{Symbol: "TEST", Period: "1y", Interval: "1d"}
	base := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		c := c
		v := int64(1_000_000)
		data.DataPoints = append(data.DataPoints, entity.HistoricalDataPoint{
			Date:   base.AddDate(0, 0, i),
			Open:   &c,
			High:   &c,
			Low:    &c,
			Close:  &c,
			Volume: &v,
		})
	}
	return data
}

func constantSeries(value float64, n int) *entity.HistoricalData {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = value
	}
	return seriesFromCloses(closes)
}

func TestSMAOnConstantSeries(t *testing.T) {
	ind := ComputeIndicators(constantSeries(100, 60))

	require.NotNil(t, ind.SMA20)
	assert.InDelta(t, 100, *ind.SMA20, 1e-9)
	require.NotNil(t, ind.SMA50)
	assert.InDelta(t, 100, *ind.SMA50, 1e-9)
	// 60 bars cannot produce a 200 bar average.
	assert.Nil(t, ind.SMA200)
}

func TestIndicatorsAbsentOnShortSeries(t *testing.T) {
	ind := ComputeIndicators(constantSeries(100, 10))

	assert.Nil(t, ind.SMA20)
	assert.Nil(t, ind.RSI14)
	assert.Nil(t, ind.MACD)
	assert.Nil(t, ind.BollingerMiddle)
}

func TestRSINeedsFifteenPoints(t *testing.T) {
	assert.Nil(t, ComputeIndicators(constantSeries(100, 14)).RSI14)
	assert.NotNil(t, ComputeIndicators(constantSeries(100, 15)).RSI14)
}

func TestRSIExtremes(t *testing.T) {
	up := make([]float64, 20)
	for i := range up {
		up[i] = 100 + float64(i)
	}
	ind := ComputeIndicators(seriesFromCloses(up))
	require.NotNil(t, ind.RSI14)
	assert.InDelta(t, 100, *ind.RSI14, 1e-9)

	down := make([]float64, 20)
	for i := range down {
		down[i] = 100 - float64(i)
	}
	ind = ComputeIndicators(seriesFromCloses(down))
	require.NotNil(t, ind.RSI14)
	assert.InDelta(t, 0, *ind.RSI14, 1e-9)
}

func TestMACDHistogramIdentity(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i%7)
	}
	ind := ComputeIndicators(seriesFromCloses(closes))

	require.NotNil(t, ind.MACD)
	require.NotNil(t, ind.MACDSignal)
	require.NotNil(t, ind.MACDHistogram)
	assert.InDelta(t, *ind.MACD-*ind.MACDSignal, *ind.MACDHistogram, 1e-9)
}

func TestBollingerBandsOnConstantSeries(t *testing.T) {
	ind := ComputeIndicators(constantSeries(50, 30))

	require.NotNil(t, ind.BollingerMiddle)
	assert.InDelta(t, 50, *ind.BollingerMiddle, 1e-9)
	// Zero variance collapses the bands onto the middle.
	assert.InDelta(t, 50, *ind.BollingerUpper, 1e-9)
	assert.InDelta(t, 50, *ind.BollingerLower, 1e-9)
}

func TestPriceChanges(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100
	}
	closes[len(closes)-1] = 110
	ind := ComputeIndicators(seriesFromCloses(closes))

	require.NotNil(t, ind.PriceChange1D)
	assert.InDelta(t, 10, *ind.PriceChange1D, 1e-9)
	require.NotNil(t, ind.PriceChange5D)
	assert.InDelta(t, 10, *ind.PriceChange5D, 1e-9)
}

func TestDetectTrend(t *testing.T) {
	up := make([]float64, 20)
	for i := range up {
		up[i] = 100 + float64(i)*2
	}
	trend, strength := detectTrend(up)
	assert.Equal(t, TrendBullish, trend)
	assert.InDelta(t, 1, strength, 1e-9)

	down := make([]float64, 20)
	for i := range down {
		down[i] = 100 - float64(i)*2
	}
	trend, _ = detectTrend(down)
	assert.Equal(t, TrendBearish, trend)

	flat := make([]float64, 20)
	for i := range flat {
		flat[i] = 100
	}
	trend, _ = detectTrend(flat)
	assert.Equal(t, TrendNeutral, trend)
}

func TestDetectTrendAtHighPriceLevel(t *testing.T) {
	// Slope is absolute points per bar, so the classification holds
	// regardless of the price level.
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 10000 + float64(i)*5
	}
	trend, _ := detectTrend(closes)
	assert.Equal(t, TrendBullish, trend)
}

func TestDetectGaps(t *testing.T) {
	data := seriesFromCloses([]float64{100, 100, 103, 103})
	// Bar 2 trades entirely above bar 1: low 103 clears the prior high 100.
	high := 104.0
	data.DataPoints[2].High = &high

	gaps := detectGaps(data)
	require.Len(t, gaps, 1)
	assert.Equal(t, "up", gaps[0].Type)
	assert.InDelta(t, 3, gaps[0].SizePercent, 1e-9)
}

func TestDetectGapsRangeComparison(t *testing.T) {
	// A small move still gaps when the ranges never touch.
	data := seriesFromCloses([]float64{100, 100.2})
	gaps := detectGaps(data)
	require.Len(t, gaps, 1)
	assert.Equal(t, "up", gaps[0].Type)
	assert.InDelta(t, 0.2, gaps[0].SizePercent, 1e-9)

	// A large open jump is not a gap when the ranges overlap.
	data = seriesFromCloses([]float64{100, 103})
	low := 99.5
	data.DataPoints[1].Low = &low
	assert.Empty(t, detectGaps(data))

	// Gap down: the high stays below the previous low.
	data = seriesFromCloses([]float64{100, 98})
	gaps = detectGaps(data)
	require.Len(t, gaps, 1)
	assert.Equal(t, "down", gaps[0].Type)
	assert.InDelta(t, 2, gaps[0].SizePercent, 1e-9)
}

func TestSupportResistanceOrdering(t *testing.T) {
	data := seriesFromCloses([]float64{100, 110, 100, 120, 100})

	support, resistance := supportResistance(data)
	// Resistance descending, support ascending.
	assert.Equal(t, []float64{120, 110}, resistance)
	assert.Equal(t, []float64{100}, support)
}

func TestSupportResistanceDedupes(t *testing.T) {
	data := seriesFromCloses([]float64{100, 110, 100, 110, 100})

	_, resistance := supportResistance(data)
	assert.Equal(t, []float64{110}, resistance)
}

func TestCandlestickDoji(t *testing.T) {
	data := constantSeries(100, 5)
	last := &data.DataPoints[4]
	o, c, h, l := 100.0, 100.05, 102.0, 98.0
	last.Open, last.Close, last.High, last.Low = &o, &c, &h, &l

	patterns := candlestickPatterns(data)
	assert.Contains(t, patterns, "doji")
}

func TestAnalyzePatternsEmptySeries(t *testing.T) {
	summary := AnalyzePatterns(&entity.HistoricalData{Symbol: "TEST"})
	assert.Equal(t, TrendNeutral, summary.Trend)
	assert.Empty(t, summary.SupportLevels)
	assert.Empty(t, summary.Gaps)
}
