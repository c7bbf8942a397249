package motion

import "github.com/keagan/steadycut/internal/telemetry"

// Signal holds the two derived motion signals, one value per telemetry
// sample. Displacement is degrees of rotation between consecutive
// orientations; Acceleration is degrees of change in that per-step rotation.
type Signal struct {
	Displacement []float64
	Acceleration []float64
}

// Empty reports whether the signal carries no samples at all
func (s Signal) Empty() bool {
	return len(s.Acceleration) == 0
}

// BuildSignal derives the motion signal from an ordered orientation sample
// sequence. Displacement[0] is 0 (no prior sample); Acceleration[0] and
// Acceleration[1] are 0 (no prior relative rotation). Fewer than 3 samples
// leave the acceleration all zeros.
func BuildSignal(samples []telemetry.Sample) Signal {
	n := len(samples)
	if n == 0 {
		return Signal{}
	}

	displacement := make([]float64, n)
	acceleration := make([]float64, n)
	if n == 1 {
		return Signal{Displacement: displacement, Acceleration: acceleration}
	}

	// Frame-to-frame relative rotations; rel[i] takes sample i to sample i+1
	rel := make([]quat, n-1)
	for i := 1; i < n; i++ {
		curr := quatFromArray(samples[i].Q)
		prev := quatFromArray(samples[i-1].Q)
		rel[i-1] = curr.relativeTo(prev)
		displacement[i] = rel[i-1].angleDeg()
	}

	// Second difference: relative rotation between consecutive relative rotations
	for i := 2; i < n; i++ {
		acceleration[i] = rel[i-1].relativeTo(rel[i-2]).angleDeg()
	}

	return Signal{Displacement: displacement, Acceleration: acceleration}
}
