// Package fragments holds the per-file segmentation result model: calm time
// intervals paired with the source video's resolution and creation time,
// persisted as a JSON sidecar next to the video.
package fragments

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Fragment is a contiguous calm interval of a source video, in seconds
// from the start of the file.
type Fragment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the fragment length in seconds
func (f Fragment) Duration() float64 {
	return f.End - f.Start
}

// Resolution is the logical (rotation-corrected) frame size of a video
type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Key returns the grouping key string "WxH", or "unknown" for a missing
// or malformed resolution
func (r *Resolution) Key() string {
	if r == nil || r.Width <= 0 || r.Height <= 0 {
		return "unknown"
	}
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// FileRecord pairs one source video with its detected fragments and
// file-level metadata. Created once per processed file and not mutated
// afterward, except for creation-time fixups rewriting the sidecar.
type FileRecord struct {
	Video            string     `json:"video"`
	Resolution       *Resolution `json:"resolution"`
	CreationDatetime *string    `json:"creation_datetime"`
	Fragments        []Fragment `json:"fragments"`
}

// CreationTime parses the record's creation datetime. The second return is
// false when the field is absent or unparsable; such records sort after all
// records with a defined creation time.
func (r *FileRecord) CreationTime() (time.Time, bool) {
	if r.CreationDatetime == nil {
		return time.Time{}, false
	}
	return ParseISO(*r.CreationDatetime)
}

// isoLayouts accepted for creation datetimes. A trailing Z is UTC; a
// timezone-less timestamp is treated as UTC as well.
var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// ParseISO parses an ISO-8601 datetime string
func ParseISO(s string) (time.Time, bool) {
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatISO renders a datetime the way sidecars carry it: microsecond
// precision with a Z suffix for UTC
func FormatISO(t time.Time) string {
	return t.Format("2006-01-02T15:04:05.000000Z07:00")
}

// SidecarPath returns the JSON sidecar path for a video file
func SidecarPath(videoPath string) string {
	return strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".json"
}

// Save writes the record to a JSON sidecar
func (r *FileRecord) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// rawRecord defers fragment and resolution decoding so one malformed entry
// never discards the rest of the sidecar
type rawRecord struct {
	Video            string            `json:"video"`
	Resolution       json.RawMessage   `json:"resolution"`
	CreationDatetime *string           `json:"creation_datetime"`
	Fragments        []json.RawMessage `json:"fragments"`
}

type rawFragment struct {
	Start *float64 `json:"start"`
	End   *float64 `json:"end"`
}

// Load reads a sidecar leniently: malformed fragment entries are skipped, a
// malformed resolution is recorded as unknown, and an unparsable creation
// datetime is kept verbatim (it reads as absent when ordering). Only a
// sidecar that is not valid JSON at all is an error.
func Load(path string) (*FileRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw rawRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unreadable sidecar %s: %w", path, err)
	}

	rec := &FileRecord{
		Video:            raw.Video,
		CreationDatetime: raw.CreationDatetime,
		Fragments:        make([]Fragment, 0, len(raw.Fragments)),
	}

	if len(raw.Resolution) > 0 {
		var res Resolution
		if err := json.Unmarshal(raw.Resolution, &res); err == nil && res.Width > 0 && res.Height > 0 {
			rec.Resolution = &res
		}
	}

	for _, rf := range raw.Fragments {
		var frag rawFragment
		if err := json.Unmarshal(rf, &frag); err != nil || frag.Start == nil || frag.End == nil {
			continue
		}
		rec.Fragments = append(rec.Fragments, Fragment{Start: *frag.Start, End: *frag.End})
	}

	return rec, nil
}
