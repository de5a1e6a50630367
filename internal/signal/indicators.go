package signal

import (
	"fmt"
	"math"

	"alpaca-trade-bot-go/internal/market"
)

// SMA returns the simple moving average of the last window values.
func SMA(values []float64, window int) (float64, error) {
	if window <= 0 || len(values) < window {
		return 0, fmt.Errorf("sma: need %d values, have %d", window, len(values))
	}
	sum := 0.0
	for _, v := range values[len(values)-window:] {
		sum += v
	}
	return sum / float64(window), nil
}

// sampleStdDev is the n-1 denominator standard deviation of the last window
// values around their mean.
func sampleStdDev(values []float64, window int) (float64, error) {
	if window < 2 || len(values) < window {
		return 0, fmt.Errorf("stddev: need %d values, have %d", window, len(values))
	}
	mean, _ := SMA(values, window)
	sum := 0.0
	for _, v := range values[len(values)-window:] {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(window-1)), nil
}

// BollingerUpper returns the upper Bollinger band of the last window closes:
// mean + numSD standard deviations.
func BollingerUpper(closes []float64, window int, numSD float64) (float64, error) {
	mean, err := SMA(closes, window)
	if err != nil {
		return 0, err
	}
	sd, err := sampleStdDev(closes, window)
	if err != nil {
		return 0, err
	}
	return mean + numSD*sd, nil
}

// RSI computes the Relative Strength Index over the last period deltas as the
// ratio of the mean gain to the mean loss. Where the value is undefined
// (insufficient history or zero average loss) the neutral value 50 is
// returned instead.
func RSI(closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period+1 {
		return 50
	}

	var gain, loss float64
	tail := closes[len(closes)-period-1:]
	for i := 1; i < len(tail); i++ {
		delta := tail[i] - tail[i-1]
		if delta > 0 {
			gain += delta
		} else {
			loss -= delta
		}
	}
	gain /= float64(period)
	loss /= float64(period)

	if loss == 0 {
		return 50
	}
	rs := gain / loss
	return 100 - 100/(1+rs)
}

// ATRPct returns the 14-style average true range (high-low mean over the last
// period bars) as a fraction of the latest close.
func ATRPct(bars []market.Bar, period int) (float64, error) {
	if period <= 0 || len(bars) < period {
		return 0, fmt.Errorf("atr: need %d bars, have %d", period, len(bars))
	}
	sum := 0.0
	for _, b := range bars[len(bars)-period:] {
		sum += b.High - b.Low
	}
	tr := sum / float64(period)
	price := bars[len(bars)-1].Close
	return tr / math.Max(price, 1e-9), nil
}
