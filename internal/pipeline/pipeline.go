// Package pipeline orchestrates the per-file processing chain (telemetry →
// motion signal → intensity → segmentation → metadata) and the cross-file
// stages that consume the resulting index.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/keagan/steadycut/internal/config"
	"github.com/keagan/steadycut/internal/ffmpeg"
	"github.com/keagan/steadycut/internal/fragments"
	"github.com/keagan/steadycut/internal/index"
	"github.com/keagan/steadycut/internal/motion"
	"github.com/keagan/steadycut/internal/telemetry"
	"github.com/rs/zerolog"
)

// Pipeline wires the telemetry source, the motion analysis and the external
// cut/concat tooling together
type Pipeline struct {
	logger zerolog.Logger
	cfg    *config.Config
	ffmpeg *ffmpeg.Executor
	source telemetry.Source
}

// AnalyzeOptions configures fragment detection
type AnalyzeOptions struct {
	Threshold    float64 // maximum sliding-RMS intensity considered calm
	MinDurationS float64 // minimum fragment length in seconds
	WindowS      float64 // sliding RMS window in seconds
}

// New creates a pipeline. A nil source selects the configured external
// telemetry extractor.
func New(logger zerolog.Logger, cfg *config.Config, source telemetry.Source) (*Pipeline, error) {
	exec, err := ffmpeg.New(logger,
		time.Duration(cfg.FFmpeg.ProbeTimeoutS)*time.Second,
		time.Duration(cfg.FFmpeg.RunTimeoutS)*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ffmpeg: %w", err)
	}

	if source == nil {
		source = telemetry.NewCommandSource(logger,
			cfg.Telemetry.Command,
			cfg.Telemetry.Args,
			time.Duration(cfg.Telemetry.TimeoutS)*time.Second)
	}

	return &Pipeline{
		logger: logger.With().Str("component", "pipeline").Logger(),
		cfg:    cfg,
		ffmpeg: exec,
		source: source,
	}, nil
}

// AnalyzeFile runs the full per-file chain and returns the file's record.
// It is a pure function of the file: no state is shared across calls, so
// files can be analyzed concurrently.
//
// Fallback ladder: no telemetry (or a degenerate signal) turns the whole
// file duration into a single fragment; when the duration is also
// undeterminable, the file contributes zero fragments.
func (p *Pipeline) AnalyzeFile(ctx context.Context, path string, opts AnalyzeOptions) (*fragments.FileRecord, error) {
	samples, err := p.source.Extract(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("telemetry extraction: %w", err)
	}

	info, probeErr := p.ffmpeg.ProbeVideo(ctx, path)
	if probeErr != nil {
		// Metadata stays unknown; fragments may still come from telemetry.
		p.logger.Warn().Err(probeErr).Str("video", path).Msg("could not probe video metadata")
	}

	signal := motion.BuildSignal(samples)

	frags := []fragments.Fragment{}
	if signal.Empty() {
		p.logger.Info().Str("video", path).Msg("no orientation telemetry, falling back to whole-file fragment")
		switch {
		case probeErr == nil && info.Duration > 0:
			frags = append(frags, fragments.Fragment{Start: 0, End: info.Duration})
		default:
			p.logger.Warn().Str("video", path).Msg("could not determine duration, file contributes no fragments")
		}
	} else {
		timestamps := make([]float64, len(samples))
		for i, s := range samples {
			timestamps[i] = s.T
		}

		intensity := motion.SlidingRMS(signal.Acceleration, timestamps, opts.WindowS)
		frags = append(frags, motion.FindFragments(timestamps, intensity, opts.Threshold, opts.MinDurationS)...)
	}

	rec := &fragments.FileRecord{
		Video:     filepath.Base(path),
		Fragments: frags,
	}
	if probeErr == nil {
		if info.Width > 0 && info.Height > 0 {
			rec.Resolution = &fragments.Resolution{Width: info.Width, Height: info.Height}
		}
		if info.CreationTime != "" {
			creation := info.CreationTime
			rec.CreationDatetime = &creation
		}
	}

	return rec, nil
}

// BuildIndex assembles the resolution index from the sidecars in dir and,
// when outPath is non-empty, persists it. This stage is a barrier: it runs
// only after every per-file result exists, because group membership and
// ordering depend on the full set.
func (p *Pipeline) BuildIndex(dir, outPath string) (index.Index, error) {
	idx, err := index.BuildFromDir(p.logger, dir)
	if err != nil {
		return nil, fmt.Errorf("index build: %w", err)
	}

	if outPath != "" {
		if err := idx.Save(outPath); err != nil {
			return nil, fmt.Errorf("index write: %w", err)
		}
	}

	p.logger.Info().Int("groups", len(idx)).Str("out", outPath).Msg("index built")
	return idx, nil
}
