package motion

import "github.com/keagan/steadycut/internal/fragments"

// FindFragments segments the intensity signal into calm time intervals.
// A fragment is a maximal run of consecutive samples whose intensity is
// strictly below threshold, spanning [timestamps[i], timestamps[j]], and is
// emitted only when it lasts at least minDurationS seconds. Run-length
// encoding over the monotonic timestamp sequence guarantees the returned
// fragments are disjoint and strictly increasing in start.
func FindFragments(timestamps, intensity []float64, threshold, minDurationS float64) []fragments.Fragment {
	var out []fragments.Fragment

	n := len(intensity)
	if n > len(timestamps) {
		n = len(timestamps)
	}

	i := 0
	for i < n {
		if intensity[i] >= threshold {
			i++
			continue
		}

		start := i
		for i < n && intensity[i] < threshold {
			i++
		}
		end := i - 1

		t0 := timestamps[start]
		t1 := timestamps[end]
		if t1-t0 >= minDurationS {
			out = append(out, fragments.Fragment{Start: t0, End: t1})
		}
	}

	return out
}
