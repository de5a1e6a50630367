package market

// Price and volume pattern detectors over the latest bar of a series.
// These are informational signals used for logging alongside the buy
// evaluator; none of them gates an order on its own.

// GapUp reports whether the latest bar opened at least threshold above the
// previous day's close.
func GapUp(bars []Bar, threshold float64) bool {
	if len(bars) == 0 {
		return false
	}
	last := bars[len(bars)-1]
	if last.PrevClose <= 0 {
		return false
	}
	return last.Open > last.PrevClose*(1+threshold)
}

// HighBreak reports whether the latest bar's high broke above the maximum
// high of the preceding window bars.
func HighBreak(bars []Bar, window int) bool {
	if window <= 0 || len(bars) < window+1 {
		return false
	}
	last := bars[len(bars)-1]
	maxHigh := 0.0
	for _, b := range bars[len(bars)-1-window : len(bars)-1] {
		if b.High > maxHigh {
			maxHigh = b.High
		}
	}
	return last.High > maxHigh
}

// Pullback reports whether the latest bar's low sits in a shallow retracement
// band below the recent 10-bar high: at least dropPct down but no more than
// dropPct+2%.
func Pullback(bars []Bar, dropPct float64) bool {
	const lookback = 10
	if len(bars) < lookback+1 {
		return false
	}
	last := bars[len(bars)-1]
	rollingHigh := 0.0
	for _, b := range bars[len(bars)-1-lookback : len(bars)-1] {
		if b.High > rollingHigh {
			rollingHigh = b.High
		}
	}
	if rollingHigh <= 0 {
		return false
	}
	retrace := (rollingHigh - last.Low) / rollingHigh
	return retrace >= dropPct && retrace <= dropPct+0.02
}

// VolumeSurge reports whether the latest bar traded more than multiplier
// times the average volume of the preceding 10 bars.
func VolumeSurge(bars []Bar, multiplier float64) bool {
	const lookback = 10
	if len(bars) < lookback+1 {
		return false
	}
	sum := 0.0
	for _, b := range bars[len(bars)-1-lookback : len(bars)-1] {
		sum += b.Volume
	}
	avg := sum / lookback
	return bars[len(bars)-1].Volume > avg*multiplier
}
