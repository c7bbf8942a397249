// Package ffmpeg wraps the external ffmpeg/ffprobe tools behind blocking,
// time-bounded subprocess calls. Cuts and concatenations here are lossless
// stream copies; nothing in this package re-encodes video.
package ffmpeg

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Executor handles all ffmpeg operations with output streaming
type Executor struct {
	logger       zerolog.Logger
	ffmpegPath   string
	ffprobePath  string
	probeTimeout time.Duration
	runTimeout   time.Duration
}

// New creates a new ffmpeg executor. Both binaries must be on PATH.
func New(logger zerolog.Logger, probeTimeout, runTimeout time.Duration) (*Executor, error) {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	ffprobePath, err := exec.LookPath("ffprobe")
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found in PATH: %w", err)
	}

	return &Executor{
		logger:       logger.With().Str("component", "ffmpeg").Logger(),
		ffmpegPath:   ffmpegPath,
		ffprobePath:  ffprobePath,
		probeTimeout: probeTimeout,
		runTimeout:   runTimeout,
	}, nil
}

// RunOptions configures ffmpeg execution
type RunOptions struct {
	Args       []string
	LogHandler func(line string)
}

// Run executes ffmpeg with the given arguments and streams its output.
// The call is bounded by the executor's run timeout; a timed-out operation
// fails like any other, affecting only that unit of work.
func (e *Executor) Run(ctx context.Context, opts RunOptions) error {
	if len(opts.Args) == 0 {
		return fmt.Errorf("no arguments provided")
	}

	if e.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.runTimeout)
		defer cancel()
	}

	args := append([]string{"-y", "-hide_banner", "-loglevel", "info"}, opts.Args...)

	e.logger.Debug().
		Str("cmd", "ffmpeg").
		Strs("args", args).
		Msg("executing ffmpeg")

	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		e.streamOutput(stderr, opts.LogHandler)
	}()

	go func() {
		defer wg.Done()
		e.streamOutput(stdout, opts.LogHandler)
	}()

	wg.Wait()

	if err := cmd.Wait(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("ffmpeg timed out: %w", ctx.Err())
		}
		if ctx.Err() == context.Canceled {
			return ctx.Err()
		}
		return fmt.Errorf("ffmpeg execution failed: %w", err)
	}

	e.logger.Debug().Msg("ffmpeg execution completed")
	return nil
}

// streamOutput forwards subprocess output lines to the handler
func (e *Executor) streamOutput(r io.Reader, logHandler func(string)) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if logHandler != nil {
			logHandler(line)
		}
	}
}
