package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/keagan/steadycut/internal/index"
	"github.com/keagan/steadycut/internal/subtitle"
	"github.com/keagan/steadycut/pkg/util"
)

// Merge materializes every resolution group in the index: each fragment is
// cut losslessly from its source, the cuts are concatenated in index order
// into output_<resolution>.mp4, and a subtitle track labelling each source
// file is muxed in. Every fragment, concat and mux is its own unit of work;
// a failure abandons that unit and the run produces a best-effort artifact
// from whatever succeeded.
func (p *Pipeline) Merge(ctx context.Context, idx index.Index, videoDir, outDir string, keepFragments bool) error {
	if err := util.EnsureDir(outDir); err != nil {
		return err
	}

	for gi, group := range idx {
		logger := p.logger.With().Str("resolution", group.Resolution).Logger()
		logger.Info().
			Int("group", gi+1).
			Int("groups", len(idx)).
			Int("fragments", len(group.FileFragments)).
			Msg("merging resolution group")

		workDir := filepath.Join(outDir, "_work_"+group.Resolution)
		if err := util.EnsureDir(workDir); err != nil {
			logger.Error().Err(err).Msg("cannot create work directory, skipping group")
			continue
		}

		var extracted []string
		var merged []index.Entry
		for fi, entry := range group.FileFragments {
			if entry.Filename == "" || entry.End <= entry.Start {
				logger.Warn().Int("fragment", fi).Msg("skipping malformed fragment entry")
				continue
			}

			source := filepath.Join(videoDir, entry.Filename)
			if !util.FileExists(source) {
				logger.Warn().Str("source", source).Msg("source file not found, skipping fragment")
				continue
			}

			fragName := fmt.Sprintf("%s_%03d_%.3f-%.3f.mp4", util.Stem(entry.Filename), fi, entry.Start, entry.End)
			fragPath := filepath.Join(workDir, fragName)

			if err := p.ffmpeg.ExtractFragment(ctx, source, entry.Start, entry.End, fragPath); err != nil {
				logger.Warn().Err(err).Int("fragment", fi).Msg("fragment extraction failed, skipping")
				continue
			}

			extracted = append(extracted, fragPath)
			merged = append(merged, entry)
		}

		if len(extracted) == 0 {
			logger.Warn().Msg("no fragments extracted for group")
			_ = os.Remove(workDir)
			continue
		}

		output := filepath.Join(outDir, "output_"+group.Resolution+".mp4")
		if err := p.ffmpeg.Concat(ctx, extracted, output); err != nil {
			logger.Error().Err(err).Msg("concatenation failed, skipping group")
			continue
		}

		// Subtitles reflect only the fragments that made it into the merge,
		// so labels stay aligned with the actual output timeline.
		srt := subtitle.GenerateSRT(merged)
		withSubs := filepath.Join(outDir, "output_"+group.Resolution+"_with_subs.mp4")
		if err := p.ffmpeg.MuxSubtitles(ctx, output, srt, withSubs); err != nil {
			logger.Warn().Err(err).Msg("subtitle mux failed, keeping output without subtitles")
		} else {
			_ = os.Remove(output)
			if err := os.Rename(withSubs, output); err != nil {
				logger.Warn().Err(err).Msg("could not move subtitled output into place")
			}
		}

		if keepFragments {
			logger.Info().Str("work_dir", workDir).Msg("keeping fragment files")
		} else {
			util.CleanupFiles(extracted...)
			_ = os.Remove(workDir)
		}

		logger.Info().Str("output", output).Int("fragments", len(extracted)).Msg("resolution group merged")
	}

	return ctx.Err()
}
