package entity

import (
	"sort"
	"time"
)

// HistoricalDataPoint is one bar of an OHLCV series.
type HistoricalDataPoint struct {
	Date     time.Time `json:"date"`
	Open     *float64  `json:"open,omitempty"`
	High     *float64  `json:"high,omitempty"`
	Low      *float64  `json:"low,omitempty"`
	Close    *float64  `json:"close,omitempty"`
	AdjClose *float64  `json:"adj_close,omitempty"`
	Volume   *int64    `json:"volume,omitempty"`
}

// HistoricalData is a time-ordered price series for one symbol.
type HistoricalData struct {
	Symbol     string                `json:"symbol"`
	DataPoints []HistoricalDataPoint `json:"data_points"`
	Period     string                `json:"period,omitempty"`
	Interval   string                `json:"interval,omitempty"`
}

// Clean sorts the series chronologically and drops points whose OHLC fields
// are all absent. Indicator math assumes a clean series.
func (h *HistoricalData) Clean() {
	points := h.DataPoints[:0]
	for _, p := range h.DataPoints {
		if p.Open == nil && p.High == nil && p.Low == nil && p.Close == nil {
			continue
		}
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	h.DataPoints = points
}

// Closes returns the close values of all points that have one.
func (h *HistoricalData) Closes() []float64 {
	closes := make([]float64, 0, len(h.DataPoints))
	for _, p := range h.DataPoints {
		if p.Close != nil {
			closes = append(closes, *p.Close)
		}
	}
	return closes
}
