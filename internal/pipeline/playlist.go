package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/keagan/steadycut/internal/fragments"
	"github.com/keagan/steadycut/internal/index"
	"github.com/keagan/steadycut/internal/playlist"
	"github.com/keagan/steadycut/pkg/util"
)

// Playlist extracts every fragment in the index to a timestamped MP4 under
// outDir and writes playlist.m3u ordered by absolute fragment time.
// Fragments whose source has no usable creation time cannot be placed on
// the real-world timeline and are skipped with a diagnostic.
func (p *Pipeline) Playlist(ctx context.Context, idx index.Index, videoDir, outDir string) error {
	if err := util.EnsureDir(outDir); err != nil {
		return err
	}

	var items []playlist.Item
	for _, group := range idx {
		for _, entry := range group.FileFragments {
			if entry.Creation == nil {
				p.logger.Info().Str("source", entry.Filename).Msg("skipping fragment without creation time")
				continue
			}

			creation, ok := fragments.ParseISO(*entry.Creation)
			if !ok {
				p.logger.Warn().Str("source", entry.Filename).Str("creation", *entry.Creation).
					Msg("skipping fragment with unparsable creation time")
				continue
			}

			source := filepath.Join(videoDir, entry.Filename)
			if !util.FileExists(source) {
				p.logger.Warn().Str("source", source).Msg("source file not found, skipping fragment")
				continue
			}

			at := playlist.FragmentTime(creation, entry.Start)
			name := playlist.FragmentName(at)
			for counter := 1; util.FileExists(filepath.Join(outDir, name)); counter++ {
				stem := strings.TrimSuffix(playlist.FragmentName(at), ".mp4")
				name = fmt.Sprintf("%s_%02d.mp4", stem, counter)
			}
			outPath := filepath.Join(outDir, name)

			if err := p.ffmpeg.ExtractFragment(ctx, source, entry.Start, entry.End, outPath); err != nil {
				p.logger.Warn().Err(err).Str("source", entry.Filename).Msg("fragment extraction failed, skipping")
				continue
			}

			items = append(items, playlist.Item{
				Filename: name,
				Source:   entry.Filename,
				Start:    entry.Start,
				End:      entry.End,
				At:       at,
			})
		}
	}

	playlistPath := filepath.Join(outDir, "playlist.m3u")
	if err := playlist.Write(items, playlistPath); err != nil {
		return fmt.Errorf("playlist write: %w", err)
	}

	p.logger.Info().Int("fragments", len(items)).Str("playlist", playlistPath).Msg("playlist created")
	return ctx.Err()
}
