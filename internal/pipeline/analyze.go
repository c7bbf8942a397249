package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/keagan/steadycut/internal/fragments"
)

// videoExtensions accepted by directory scans, matched case-insensitively
var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".mkv":  true,
	".avi":  true,
	".mpg":  true,
	".mpeg": true,
	".webm": true,
}

// ScanVideos lists the video files in dir, sorted by name
func ScanVideos(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if videoExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

type analyzeResult struct {
	path string
	rec  *fragments.FileRecord
	err  error
}

// AnalyzeDirectory analyzes every video in dir and writes one JSON sidecar
// per file. Files fan out over a bounded worker pool and fan back in over a
// results channel; there is no shared mutable state between files. A
// failing file is logged and skipped, never aborting its siblings.
// Returns the number of files successfully analyzed.
func (p *Pipeline) AnalyzeDirectory(ctx context.Context, dir string, opts AnalyzeOptions) (int, error) {
	files, err := ScanVideos(dir)
	if err != nil {
		return 0, err
	}

	runID := uuid.New().String()
	logger := p.logger.With().Str("run_id", runID).Logger()
	logger.Info().Int("files", len(files)).Str("dir", dir).Msg("starting analysis")

	if len(files) == 0 {
		return 0, nil
	}

	workers := p.cfg.Concurrency
	if workers < 1 {
		workers = 1
	}
	if workers > len(files) {
		workers = len(files)
	}

	jobs := make(chan string)
	results := make(chan analyzeResult)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				rec, err := p.AnalyzeFile(ctx, path, opts)
				if err == nil {
					err = rec.Save(fragments.SidecarPath(path))
				}
				results <- analyzeResult{path: path, rec: rec, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, path := range files {
			select {
			case jobs <- path:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	processed := 0
	for res := range results {
		if res.err != nil {
			logger.Warn().Err(res.err).Str("video", res.path).Msg("skipping file")
			continue
		}
		processed++
		logger.Info().
			Str("video", filepath.Base(res.path)).
			Int("fragments", len(res.rec.Fragments)).
			Str("resolution", res.rec.Resolution.Key()).
			Msg("file analyzed")
	}

	logger.Info().Int("processed", processed).Int("total", len(files)).Msg("analysis complete")
	return processed, ctx.Err()
}
