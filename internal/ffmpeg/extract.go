package ffmpeg

import (
	"context"
	"fmt"

	"github.com/keagan/steadycut/pkg/util"
)

// ExtractFragment performs a lossless, keyframe-bounded cut of [start, end)
// seconds from source into output. Seeking happens before the input is
// opened so the stream copy starts on the preceding keyframe, and timestamps
// are rebased to zero so fragments concatenate cleanly.
func (e *Executor) ExtractFragment(ctx context.Context, source string, start, end float64, output string) error {
	duration := end - start
	if duration <= 0 {
		return fmt.Errorf("invalid fragment duration: end must be after start")
	}

	e.logger.Info().
		Str("source", source).
		Str("output", output).
		Str("start", util.FormatSeconds(start)).
		Str("end", util.FormatSeconds(end)).
		Msg("extracting fragment")

	args := []string{
		"-ss", util.FormatSeconds(start),
		"-i", source,
		"-ss", "0",
		"-c", "copy",
		"-t", fmt.Sprintf("%.6f", duration),
		"-avoid_negative_ts", "make_zero",
		"-fflags", "+igndts",
		output,
	}

	runOpts := RunOptions{
		Args: args,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("fragment extraction")
		},
	}

	if err := e.Run(ctx, runOpts); err != nil {
		return fmt.Errorf("fragment extraction failed: %w", err)
	}

	return nil
}
