// Package subtitle renders the SRT track shown on merged outputs: each
// source file's creation time, displayed once at the start of its first
// fragment on the merged timeline.
package subtitle

import (
	"fmt"
	"strings"

	"github.com/keagan/steadycut/internal/fragments"
	"github.com/keagan/steadycut/internal/index"
	"github.com/keagan/steadycut/pkg/util"
)

// labelDuration is how long each source label stays on screen
const labelDuration = 2.0

// GenerateSRT builds subtitle content for a merged resolution group. The
// merged timeline advances by each fragment's duration in entry order;
// every source file gets exactly one label, at its first fragment, showing
// its creation datetime (or the filename when creation is unknown).
func GenerateSRT(entries []index.Entry) string {
	var b strings.Builder

	current := 0.0
	cueIdx := 1
	shown := make(map[string]bool)

	for _, entry := range entries {
		if !shown[entry.Filename] {
			label := entry.Filename
			if entry.Creation != nil {
				if t, ok := fragments.ParseISO(*entry.Creation); ok {
					label = t.Format("2006-01-02 15:04")
				}
			}

			fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n",
				cueIdx,
				util.FormatSeconds(current),
				util.FormatSeconds(current+labelDuration),
				label)

			cueIdx++
			shown[entry.Filename] = true
		}

		current += entry.End - entry.Start
	}

	return b.String()
}
