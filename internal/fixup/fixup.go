// Package fixup retroactively corrects creation times in already-written
// sidecars, for cameras whose clock was offset on part of a shoot. It is
// the only writer allowed to touch a sidecar after analysis.
package fixup

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/keagan/steadycut/internal/fragments"
	"github.com/rs/zerolog"
)

// Options selects which sidecars get shifted and by how much
type Options struct {
	Shift       time.Duration
	Resolutions []string // resolution keys, e.g. "1920x1080"
}

// Report summarizes one fixup pass
type Report struct {
	Scanned int
	Updated int
}

// Run rewrites the creation_datetime of every sidecar in dir whose
// resolution key is in the configured set. Sidecars that don't match, have
// no creation time, or fail to parse are left untouched and reported.
func Run(logger zerolog.Logger, dir string, opts Options) (Report, error) {
	log := logger.With().Str("component", "fixup").Logger()

	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return Report{}, err
	}
	sort.Strings(paths)

	wanted := make(map[string]bool, len(opts.Resolutions))
	for _, key := range opts.Resolutions {
		wanted[key] = true
	}

	report := Report{Scanned: len(paths)}
	for _, path := range paths {
		if err := fixupSidecar(log, path, opts.Shift, wanted); err != nil {
			log.Warn().Err(err).Str("sidecar", path).Msg("sidecar not updated")
			continue
		}
		report.Updated++
	}

	log.Info().Int("updated", report.Updated).Int("scanned", report.Scanned).Msg("fixup complete")
	return report, nil
}

func fixupSidecar(log zerolog.Logger, path string, shift time.Duration, wanted map[string]bool) error {
	rec, err := fragments.Load(path)
	if err != nil {
		return err
	}

	key := rec.Resolution.Key()
	if !wanted[key] {
		return fmt.Errorf("resolution %s not selected", key)
	}

	if rec.CreationDatetime == nil {
		return fmt.Errorf("no creation_datetime")
	}

	created, ok := fragments.ParseISO(*rec.CreationDatetime)
	if !ok {
		return fmt.Errorf("unparsable creation_datetime %q", *rec.CreationDatetime)
	}

	shifted := fragments.FormatISO(created.Add(shift))
	old := *rec.CreationDatetime
	rec.CreationDatetime = &shifted

	if err := rec.Save(path); err != nil {
		return err
	}

	log.Info().
		Str("sidecar", filepath.Base(path)).
		Str("resolution", key).
		Str("from", old).
		Str("to", shifted).
		Msg("creation time shifted")
	return nil
}
