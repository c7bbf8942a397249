package telemetry

import (
	"context"
	"encoding/json"
	"os/exec"
	"time"

	"github.com/rs/zerolog"
)

// Sample is one camera-orientation reading from the CORI telemetry stream.
// The quaternion is scalar-first (w, x, y, z).
type Sample struct {
	T float64    `json:"t"`
	Q [4]float64 `json:"q"`
}

// Source yields the ordered orientation samples embedded in a video file.
// An empty slice with a nil error means the file carries no telemetry;
// callers fall back to the whole-file fragment in that case.
type Source interface {
	Extract(ctx context.Context, videoPath string) ([]Sample, error)
}

// CommandSource extracts telemetry by running an external GPMF tool that
// prints the CORI stream as JSON on stdout.
type CommandSource struct {
	logger  zerolog.Logger
	command string
	args    []string
	timeout time.Duration
}

// NewCommandSource creates a subprocess-backed telemetry source
func NewCommandSource(logger zerolog.Logger, command string, args []string, timeout time.Duration) *CommandSource {
	return &CommandSource{
		logger:  logger.With().Str("component", "telemetry").Logger(),
		command: command,
		args:    args,
		timeout: timeout,
	}
}

// extractResult matches the extractor tool's JSON output structure
type extractResult struct {
	Samples []Sample `json:"samples"`
}

// Extract runs the extractor tool against the video. Tool failures are
// treated the same as missing telemetry: the file still gets processed
// through the whole-file fallback.
func (s *CommandSource) Extract(ctx context.Context, videoPath string) ([]Sample, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	args := append(append([]string{}, s.args...), videoPath)
	cmd := exec.CommandContext(ctx, s.command, args...)

	output, err := cmd.Output()
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("video", videoPath).
			Msg("telemetry extraction failed, treating as no telemetry")
		return nil, nil
	}

	var result extractResult
	if err := json.Unmarshal(output, &result); err != nil {
		s.logger.Warn().
			Err(err).
			Str("video", videoPath).
			Msg("unparsable telemetry output, treating as no telemetry")
		return nil, nil
	}

	s.logger.Debug().
		Str("video", videoPath).
		Int("samples", len(result.Samples)).
		Msg("telemetry extracted")

	return result.Samples, nil
}

// StaticSource serves pre-loaded samples keyed by video path. Used in tests
// and anywhere telemetry has already been extracted out of band.
type StaticSource struct {
	Samples map[string][]Sample
}

func (s *StaticSource) Extract(_ context.Context, videoPath string) ([]Sample, error) {
	return s.Samples[videoPath], nil
}
