// Package stats computes fragment-duration totals over a directory of
// sidecars: how much calm footage each file contributes and the grand total
// across the shoot.
package stats

import (
	"path/filepath"
	"sort"

	"github.com/keagan/steadycut/internal/fragments"
	"github.com/rs/zerolog"
)

// FileTotal is the summed fragment duration of one sidecar, in seconds
type FileTotal struct {
	Sidecar string
	Seconds float64
}

// Summary aggregates fragment durations across a sidecar directory
type Summary struct {
	Files      []FileTotal
	GrandTotal float64
}

// Collect sums fragment durations for every sidecar in dir. Unreadable
// sidecars are skipped with a diagnostic; inverted fragments don't count.
func Collect(logger zerolog.Logger, dir string) (Summary, error) {
	log := logger.With().Str("component", "stats").Logger()

	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return Summary{}, err
	}
	sort.Strings(paths)

	var summary Summary
	for _, path := range paths {
		rec, err := fragments.Load(path)
		if err != nil {
			log.Warn().Err(err).Str("sidecar", path).Msg("skipping unreadable sidecar")
			continue
		}

		var total float64
		for _, frag := range rec.Fragments {
			if frag.End >= frag.Start {
				total += frag.Duration()
			}
		}

		summary.Files = append(summary.Files, FileTotal{
			Sidecar: filepath.Base(path),
			Seconds: total,
		})
		summary.GrandTotal += total
	}

	return summary, nil
}
