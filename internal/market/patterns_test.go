package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func flatBars(n int, close, volume float64) []Bar {
	bars := make([]Bar, n)
	for i := range bars {
		bars[i] = Bar{
			Open:      close,
			High:      close + 1,
			Low:       close - 1,
			Close:     close,
			Volume:    volume,
			PrevClose: close,
		}
	}
	return bars
}

func TestGapUp(t *testing.T) {
	bars := flatBars(5, 100, 1000)
	assert.False(t, GapUp(bars, 0.02))

	bars[4].Open = 103 // 3% above the previous close of 100
	assert.True(t, GapUp(bars, 0.02))

	bars[4].PrevClose = 0
	assert.False(t, GapUp(bars, 0.02))

	assert.False(t, GapUp(nil, 0.02))
}

func TestHighBreak(t *testing.T) {
	bars := flatBars(5, 100, 1000)
	assert.False(t, HighBreak(bars, 3))

	bars[4].High = 102
	assert.True(t, HighBreak(bars, 3))

	assert.False(t, HighBreak(bars[:3], 3))
}

func TestPullback(t *testing.T) {
	bars := flatBars(11, 100, 1000)
	// Recent high 101; a low at 97 is a 3.96% retracement, inside [3%, 5%].
	bars[10].Low = 97
	assert.True(t, Pullback(bars, 0.03))

	// A deeper drop falls out of the band.
	bars[10].Low = 90
	assert.False(t, Pullback(bars, 0.03))

	assert.False(t, Pullback(bars[:5], 0.03))
}

func TestVolumeSurge(t *testing.T) {
	bars := flatBars(11, 100, 1000)
	assert.False(t, VolumeSurge(bars, 3))

	bars[10].Volume = 3500
	assert.True(t, VolumeSurge(bars, 3))

	assert.False(t, VolumeSurge(bars[:5], 3))
}
