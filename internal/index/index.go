// Package index builds the cross-file fragment index: per-file fragment
// lists grouped by video resolution, ordered by source creation time, and
// flattened into one ordered list per resolution group. The index is the
// sole artifact handed to the cut/concat stage and to playlist generation.
package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/keagan/steadycut/internal/fragments"
	"github.com/rs/zerolog"
)

// Entry is one fragment in a resolution group. Creation and filename are
// denormalized copies from the owning file record so downstream consumers
// can work off the flat list without re-joining against per-file sidecars.
type Entry struct {
	Creation *string `json:"creation"`
	Filename string  `json:"filename"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
}

// Group holds every fragment, across all source files, sharing one
// resolution key ("WxH" or "unknown")
type Group struct {
	Resolution    string  `json:"resolution"`
	FileFragments []Entry `json:"file_fragments"`
}

// Index is the ordered list of resolution groups. The order of both the
// groups and the entries within each group defines processing and playback
// order and survives serialization exactly.
type Index []Group

// Build assembles the index from per-file records. Files within a group are
// ordered by creation time ascending with absent or unparsable creation
// times after all defined ones (stable for ties); fragments keep their
// per-file start order; groups are ordered by resolution key string.
func Build(records []*fragments.FileRecord) Index {
	type fileEntry struct {
		rec        *fragments.FileRecord
		creation   time.Time
		hasCreated bool
	}

	groups := make(map[string][]fileEntry)
	for _, rec := range records {
		created, ok := rec.CreationTime()
		key := rec.Resolution.Key()
		groups[key] = append(groups[key], fileEntry{rec: rec, creation: created, hasCreated: ok})
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	idx := make(Index, 0, len(keys))
	for _, key := range keys {
		entries := groups[key]
		sort.SliceStable(entries, func(i, j int) bool {
			a, b := entries[i], entries[j]
			if a.hasCreated != b.hasCreated {
				return a.hasCreated
			}
			if !a.hasCreated {
				return false
			}
			return a.creation.Before(b.creation)
		})

		// A group must serialize with an empty array, never null, even
		// when every record in it carries zero fragments.
		flat := []Entry{}
		for _, fe := range entries {
			var creation *string
			if fe.hasCreated {
				s := fragments.FormatISO(fe.creation)
				creation = &s
			}
			for _, frag := range normalized(fe.rec.Fragments) {
				flat = append(flat, Entry{
					Creation: creation,
					Filename: fe.rec.Video,
					Start:    frag.Start,
					End:      frag.End,
				})
			}
		}

		idx = append(idx, Group{Resolution: key, FileFragments: flat})
	}

	return idx
}

// normalized drops inverted fragments and returns the rest sorted by start.
// The segmenter never emits either problem, but sidecars edited by hand or
// written by older runs get the same tolerance the indexer always had.
func normalized(frags []fragments.Fragment) []fragments.Fragment {
	out := make([]fragments.Fragment, 0, len(frags))
	for _, f := range frags {
		if f.End >= f.Start {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// BuildFromDir loads every sidecar in dir and builds the index. Unreadable
// sidecars are skipped with a diagnostic; a file record with no usable video
// name falls back to the sidecar's name with an .MP4 suffix.
func BuildFromDir(logger zerolog.Logger, dir string) (Index, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	records := make([]*fragments.FileRecord, 0, len(paths))
	for _, path := range paths {
		rec, err := fragments.Load(path)
		if err != nil {
			logger.Warn().Err(err).Str("sidecar", path).Msg("skipping unreadable sidecar")
			continue
		}
		if rec.Video == "" {
			base := filepath.Base(path)
			rec.Video = base[:len(base)-len(".json")] + ".MP4"
		}
		records = append(records, rec)
	}

	return Build(records), nil
}

// Save writes the index as JSON, preserving group and entry order
func (idx Index) Save(path string) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Load reads an index written by Save
func Load(path string) (Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("unreadable index %s: %w", path, err)
	}
	return idx, nil
}
