package ffmpeg

import (
	"context"
	"fmt"
	"os"
)

// MuxSubtitles adds an SRT subtitle track to a video as mov_text without
// touching the video or audio streams
func (e *Executor) MuxSubtitles(ctx context.Context, video, srtContent, output string) error {
	if srtContent == "" {
		return fmt.Errorf("no subtitle content provided")
	}

	srtFile, err := os.CreateTemp("", "steadycut-subs-*.srt")
	if err != nil {
		return fmt.Errorf("failed to create subtitle file: %w", err)
	}
	defer os.Remove(srtFile.Name())

	if _, err := srtFile.WriteString(srtContent); err != nil {
		srtFile.Close()
		return fmt.Errorf("failed to write subtitle file: %w", err)
	}
	srtFile.Close()

	e.logger.Info().
		Str("video", video).
		Str("output", output).
		Msg("muxing subtitle track")

	args := []string{
		"-i", video,
		"-i", srtFile.Name(),
		"-c:v", "copy",
		"-c:a", "copy",
		"-c:s", "mov_text",
		"-metadata:s:s:0", "language=eng",
		output,
	}

	runOpts := RunOptions{
		Args: args,
		LogHandler: func(line string) {
			e.logger.Debug().Str("ffmpeg", line).Msg("subtitle mux")
		},
	}

	return e.Run(ctx, runOpts)
}
