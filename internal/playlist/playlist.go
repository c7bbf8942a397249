// Package playlist emits the M3U playlist over extracted fragments, ordered
// by each fragment's absolute real-world time (source creation time plus the
// fragment's start offset).
package playlist

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// Item is one extracted fragment awaiting playlist placement
type Item struct {
	Filename string // extracted fragment file name, relative to the playlist
	Source   string // source video filename
	Start    float64
	End      float64
	At       time.Time // creation time of the source plus the start offset
}

// FragmentTime returns the absolute datetime of a fragment given its source
// creation time and start offset in seconds
func FragmentTime(creation time.Time, startSeconds float64) time.Time {
	return creation.Add(time.Duration(startSeconds * float64(time.Second)))
}

// FragmentName returns the timestamped output file name for a fragment
func FragmentName(at time.Time) string {
	return at.Format("2006-01-02_15:04:05") + ".mp4"
}

// Render builds M3U content with items sorted ascending by absolute
// fragment time. Durations are written in milliseconds.
func Render(items []Item) string {
	sorted := make([]Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].At.Before(sorted[j].At)
	})

	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	for _, item := range sorted {
		durationMS := int((item.End - item.Start) * 1000)
		fmt.Fprintf(&b, "#EXTINF:%dms, %s (from %s)\n%s\n",
			durationMS,
			item.At.Format("2006-01-02 15:04:05"),
			item.Source,
			item.Filename)
	}
	return b.String()
}

// Write renders the playlist to a file
func Write(items []Item, path string) error {
	return os.WriteFile(path, []byte(Render(items)), 0644)
}
