package motion

import (
	"math"
	"sort"
)

// SlidingRMS computes the windowed root-mean-square of the acceleration
// signal, one non-negative value per original timestamp.
//
// The window length in samples is max(1, round(windowSeconds * fs)) with the
// sampling rate estimated from the median timestamp step. The squared signal
// is smoothed with a same-length centered uniform kernel; because centered
// convolution shifts alignment for even window lengths, the output is
// re-aligned by dropping the first window/2 values and padding the tail with
// the last smoothed value. Dropping that correction misattributes intensity
// spikes to the wrong timestamp region.
func SlidingRMS(acceleration, timestamps []float64, windowSeconds float64) []float64 {
	n := len(acceleration)
	if n == 0 {
		return nil
	}

	fs := 1.0 / medianStep(timestamps)
	win := int(math.Round(windowSeconds * fs))
	if win < 1 {
		win = 1
	}

	sq := make([]float64, n)
	for i, v := range acceleration {
		sq[i] = v * v
	}

	// Same-length centered convolution with a uniform 1/win kernel.
	// out[i] averages the win-wide neighborhood ending at i+(win-1)/2,
	// zero-padded at the edges.
	smoothed := make([]float64, n)
	lead := (win - 1) / 2
	for i := 0; i < n; i++ {
		hi := i + lead
		lo := hi - win + 1
		if lo < 0 {
			lo = 0
		}
		if hi > n-1 {
			hi = n - 1
		}
		var sum float64
		for j := lo; j <= hi; j++ {
			sum += sq[j]
		}
		smoothed[i] = math.Sqrt(sum / float64(win))
	}

	// Re-align so index 0 corresponds to timestamp 0: drop the front
	// half-window and repeat the last smoothed value at the tail.
	half := win / 2
	if half > n {
		half = n
	}
	out := make([]float64, 0, n)
	out = append(out, smoothed[half:]...)
	last := smoothed[n-1]
	for len(out) < n {
		out = append(out, last)
	}

	return out
}

// medianStep estimates the typical timestamp step, falling back to 1.0
// when there are fewer than 2 timestamps
func medianStep(timestamps []float64) float64 {
	if len(timestamps) < 2 {
		return 1.0
	}

	diffs := make([]float64, len(timestamps)-1)
	for i := 1; i < len(timestamps); i++ {
		diffs[i-1] = timestamps[i] - timestamps[i-1]
	}
	sort.Float64s(diffs)

	m := len(diffs)
	if m%2 == 1 {
		return diffs[m/2]
	}
	return (diffs[m/2-1] + diffs[m/2]) / 2
}
