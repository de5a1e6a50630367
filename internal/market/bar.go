package market

import "time"

// Bar is a single OHLCV minute bar. Series are ordered ascending by time.
type Bar struct {
	Timestamp time.Time `json:"t"`
	Open      float64   `json:"o"`
	High      float64   `json:"h"`
	Low       float64   `json:"l"`
	Close     float64   `json:"c"`
	Volume    float64   `json:"v"`
	PrevClose float64   `json:"-"` // previous trading day's last close
}

// AttachPrevClose fills the PrevClose field of every bar with the last close
// of the previous trading day. Bars on the first day of the series fall back
// to the immediately preceding bar's close.
func AttachPrevClose(bars []Bar) {
	dailyLast := make(map[string]float64)
	var dates []string
	for _, b := range bars {
		day := b.Timestamp.UTC().Format("2006-01-02")
		if _, seen := dailyLast[day]; !seen {
			dates = append(dates, day)
		}
		dailyLast[day] = b.Close
	}

	prevDay := make(map[string]float64, len(dates))
	for i := 1; i < len(dates); i++ {
		prevDay[dates[i]] = dailyLast[dates[i-1]]
	}

	for i := range bars {
		day := bars[i].Timestamp.UTC().Format("2006-01-02")
		if pc, ok := prevDay[day]; ok {
			bars[i].PrevClose = pc
		} else if i > 0 {
			bars[i].PrevClose = bars[i-1].Close
		} else {
			bars[i].PrevClose = bars[i].Close
		}
	}
}

// Closes extracts the close series from a bar series.
func Closes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// Volumes extracts the volume series from a bar series.
func Volumes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Volume
	}
	return out
}
