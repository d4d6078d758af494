package analysis

import (
	"math"

	"golang-quote-agent/internal/entity"
)

// Indicators holds the computed technical indicators for one series. Every
// value is optional: an indicator that needs more bars than the series has
// stays nil.
type Indicators struct {
	SMA20  *float64 `json:"sma_20,omitempty"`
	SMA50  *float64 `json:"sma_50,omitempty"`
	SMA200 *float64 `json:"sma_200,omitempty"`

	EMA12 *float64 `json:"ema_12,omitempty"`
	EMA26 *float64 `json:"ema_26,omitempty"`

	MACD          *float64 `json:"macd,omitempty"`
	MACDSignal    *float64 `json:"macd_signal,omitempty"`
	MACDHistogram *float64 `json:"macd_histogram,omitempty"`

	RSI14 *float64 `json:"rsi_14,omitempty"`

	BollingerUpper  *float64 `json:"bollinger_upper,omitempty"`
	BollingerMiddle *float64 `json:"bollinger_middle,omitempty"`
	BollingerLower  *float64 `json:"bollinger_lower,omitempty"`

	AvgVolume20 *float64 `json:"avg_volume_20,omitempty"`
	VolumeRatio *float64 `json:"volume_ratio,omitempty"`

	PriceChange1D  *float64 `json:"price_change_1d,omitempty"`
	PriceChange5D  *float64 `json:"price_change_5d,omitempty"`
	PriceChange20D *float64 `json:"price_change_20d,omitempty"`

	Volatility *float64 `json:"volatility,omitempty"`
}

// ComputeIndicators derives the full indicator set from a cleaned series.
func ComputeIndicators(data *entity.HistoricalData) Indicators {
	closes := data.Closes()
	var out Indicators
	if len(closes) == 0 {
		return out
	}

	out.SMA20 = sma(closes, 20)
	out.SMA50 = sma(closes, 50)
	out.SMA200 = sma(closes, 200)

	out.EMA12 = lastOf(emaSeries(closes, 12), 12, len(closes))
	out.EMA26 = lastOf(emaSeries(closes, 26), 26, len(closes))

	if len(closes) >= 26 {
		ema12 := emaSeries(closes, 12)
		ema26 := emaSeries(closes, 26)
		macd := make([]float64, len(closes))
		for i := range closes {
			macd[i] = ema12[i] - ema26[i]
		}
		signal := emaSeries(macd, 9)
		m := macd[len(macd)-1]
		s := signal[len(signal)-1]
		h := m - s
		out.MACD, out.MACDSignal, out.MACDHistogram = &m, &s, &h
	}

	out.RSI14 = rsi(closes, 14)

	if len(closes) >= 20 {
		middle := *sma(closes, 20)
		sd := stddev(closes[len(closes)-20:], middle)
		upper := middle + 2*sd
		lower := middle - 2*sd
		out.BollingerMiddle, out.BollingerUpper, out.BollingerLower = &middle, &upper, &lower
	}

	out.AvgVolume20, out.VolumeRatio = volumeStats(data)

	out.PriceChange1D = priceChange(closes, 1)
	out.PriceChange5D = priceChange(closes, 5)
	out.PriceChange20D = priceChange(closes, 20)

	out.Volatility = annualizedVolatility(closes)
	return out
}

// sma returns the simple moving average of the last period values, or nil if
// the series is shorter.
func sma(values []float64, period int) *float64 {
	if len(values) < period || period <= 0 {
		return nil
	}
	var sum float64
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	avg := sum / float64(period)
	return &avg
}

// emaSeries computes a full exponential moving average series seeded with the
// first value.
func emaSeries(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / (float64(period) + 1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

func lastOf(series []float64, period, available int) *float64 {
	if available < period || len(series) == 0 {
		return nil
	}
	v := series[len(series)-1]
	return &v
}

// rsi computes the relative strength index over the last period changes. Needs
// period+1 closes.
func rsi(closes []float64, period int) *float64 {
	if len(closes) < period+1 {
		return nil
	}
	var gains, losses float64
	start := len(closes) - period
	for i := start; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	if avgLoss == 0 {
		v := 100.0
		if avgGain == 0 {
			v = 50.0
		}
		return &v
	}
	rs := avgGain / avgLoss
	v := 100 - 100/(1+rs)
	return &v
}

func stddev(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

// volumeStats returns the 20-bar average volume and the latest bar's ratio to
// it.
func volumeStats(data *entity.HistoricalData) (avg *float64, ratio *float64) {
	volumes := make([]float64, 0, len(data.DataPoints))
	for _, p := range data.DataPoints {
		if p.Volume != nil {
			volumes = append(volumes, float64(*p.Volume))
		}
	}
	if len(volumes) < 20 {
		return nil, nil
	}
	var sum float64
	for _, v := range volumes[len(volumes)-20:] {
		sum += v
	}
	a := sum / 20
	avg = &a
	if a > 0 {
		r := volumes[len(volumes)-1] / a
		ratio = &r
	}
	return avg, ratio
}

// priceChange returns the percent change over the last n bars.
func priceChange(closes []float64, n int) *float64 {
	if len(closes) < n+1 {
		return nil
	}
	base := closes[len(closes)-1-n]
	if base == 0 {
		return nil
	}
	v := (closes[len(closes)-1] - base) / base * 100
	return &v
}

// annualizedVolatility is the standard deviation of daily returns scaled to a
// 252 trading day year, as a percentage.
func annualizedVolatility(closes []float64) *float64 {
	if len(closes) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		returns = append(returns, (closes[i]-closes[i-1])/closes[i-1])
	}
	if len(returns) == 0 {
		return nil
	}
	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))
	v := stddev(returns, mean) * math.Sqrt(252) * 100
	return &v
}
