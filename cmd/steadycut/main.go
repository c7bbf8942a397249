package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/keagan/steadycut/internal/config"
	"github.com/keagan/steadycut/internal/fixup"
	"github.com/keagan/steadycut/internal/index"
	"github.com/keagan/steadycut/internal/logging"
	"github.com/keagan/steadycut/internal/pipeline"
	"github.com/keagan/steadycut/internal/stats"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	ctx := context.Background()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "steadycut",
	Short: "steadycut - calm-fragment extraction for shaky action-camera footage",
	Long: "Detects calm (low shake) fragments in GoPro-style recordings from their " +
		"orientation telemetry, indexes them across files by resolution, and " +
		"reassembles them into merged videos or a playlist with lossless cuts.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(verbose)

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		ctx := config.WithConfig(cmd.Context(), cfg)
		cmd.SetContext(ctx)

		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(playlistCmd)
	rootCmd.AddCommand(fixupCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(runCmd)
}

// detectOptions merges config defaults with any explicitly set flags
func detectOptions(cmd *cobra.Command, cfg *config.Config) pipeline.AnalyzeOptions {
	opts := pipeline.AnalyzeOptions{
		Threshold:    cfg.Detect.Threshold,
		MinDurationS: cfg.Detect.MinDurationS,
		WindowS:      cfg.Detect.WindowS,
	}

	if cmd.Flags().Changed("threshold") {
		opts.Threshold, _ = cmd.Flags().GetFloat64("threshold")
	}
	if cmd.Flags().Changed("min-duration") {
		opts.MinDurationS, _ = cmd.Flags().GetFloat64("min-duration")
	}
	if cmd.Flags().Changed("window") {
		opts.WindowS, _ = cmd.Flags().GetFloat64("window")
	}

	return opts
}

func addDetectFlags(cmd *cobra.Command) {
	cmd.Flags().Float64P("threshold", "t", 0.5, "sliding RMS threshold for shake detection")
	cmd.Flags().Float64P("min-duration", "d", 3.0, "minimum fragment duration in seconds")
	cmd.Flags().Float64P("window", "w", 1.0, "sliding window size in seconds")
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [videos dir]",
	Short: "Detect calm fragments per video and write JSON sidecars",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		pipe, err := pipeline.New(log.Logger, cfg, nil)
		if err != nil {
			return err
		}

		processed, err := pipe.AnalyzeDirectory(cmd.Context(), args[0], detectOptions(cmd, cfg))
		if err != nil {
			return err
		}

		log.Info().Int("files", processed).Msg("analyze complete")
		return nil
	},
}

var indexCmd = &cobra.Command{
	Use:   "index [videos dir]",
	Short: "Group sidecar fragments by resolution into index.json",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		out, _ := cmd.Flags().GetString("out")

		pipe, err := pipeline.New(log.Logger, cfg, nil)
		if err != nil {
			return err
		}

		idx, err := pipe.BuildIndex(args[0], out)
		if err != nil {
			return err
		}

		log.Info().Int("groups", len(idx)).Str("out", out).Msg("index written")
		return nil
	},
}

var mergeCmd = &cobra.Command{
	Use:   "merge [index.json] [videos dir]",
	Short: "Cut and concatenate fragments per resolution group",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		out, _ := cmd.Flags().GetString("out")
		keep, _ := cmd.Flags().GetBool("keep-fragments")

		idx, err := index.Load(args[0])
		if err != nil {
			return err
		}

		pipe, err := pipeline.New(log.Logger, cfg, nil)
		if err != nil {
			return err
		}

		return pipe.Merge(cmd.Context(), idx, args[1], out, keep)
	},
}

var playlistCmd = &cobra.Command{
	Use:   "playlist [videos dir]",
	Short: "Extract fragments and emit an M3U playlist ordered by real-world time",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		out, _ := cmd.Flags().GetString("out")
		indexPath, _ := cmd.Flags().GetString("index")

		idx, err := index.Load(resolveIndexPath(indexPath, out, args[0]))
		if err != nil {
			return err
		}

		pipe, err := pipeline.New(log.Logger, cfg, nil)
		if err != nil {
			return err
		}

		return pipe.Playlist(cmd.Context(), idx, args[0], out)
	},
}

var fixupCmd = &cobra.Command{
	Use:   "fixup [sidecar dir]",
	Short: "Shift creation times of sidecars matching configured resolutions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		opts := fixup.Options{
			Shift:       time.Duration(cfg.Fixup.ShiftHours) * time.Hour,
			Resolutions: cfg.Fixup.Resolutions,
		}
		if cmd.Flags().Changed("shift") {
			opts.Shift, _ = cmd.Flags().GetDuration("shift")
		}
		if cmd.Flags().Changed("resolutions") {
			opts.Resolutions, _ = cmd.Flags().GetStringSlice("resolutions")
		}

		report, err := fixup.Run(log.Logger, args[0], opts)
		if err != nil {
			return err
		}

		fmt.Printf("Updated %d of %d sidecars\n", report.Updated, report.Scanned)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats [sidecar dir]",
	Short: "Report total calm-fragment duration across sidecars",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		perFile, _ := cmd.Flags().GetBool("per-file")

		summary, err := stats.Collect(log.Logger, args[0])
		if err != nil {
			return err
		}

		if perFile {
			for _, ft := range summary.Files {
				fmt.Printf("%s: %.3f s\n", ft.Sidecar, ft.Seconds)
			}
		}
		fmt.Printf("Files processed: %d\n", len(summary.Files))
		fmt.Printf("Grand total fragments length: %.3f s\n", summary.GrandTotal)
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run [videos dir]",
	Short: "Run analyze, index and merge (or playlist) in one pass",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		videosDir := args[0]

		out, _ := cmd.Flags().GetString("out")
		usePlaylist, _ := cmd.Flags().GetBool("playlist")
		keep, _ := cmd.Flags().GetBool("keep-fragments")
		skipAnalyze, _ := cmd.Flags().GetBool("skip-analyze")
		skipIndex, _ := cmd.Flags().GetBool("skip-index")
		skipMerge, _ := cmd.Flags().GetBool("skip-merge")

		pipe, err := pipeline.New(log.Logger, cfg, nil)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(out, 0755); err != nil {
			return err
		}

		if !skipAnalyze {
			if _, err := pipe.AnalyzeDirectory(cmd.Context(), videosDir, detectOptions(cmd, cfg)); err != nil {
				return err
			}
		}

		indexPath := filepath.Join(out, "index.json")
		var idx index.Index
		if skipIndex {
			if idx, err = index.Load(indexPath); err != nil {
				return err
			}
		} else {
			if idx, err = pipe.BuildIndex(videosDir, indexPath); err != nil {
				return err
			}
		}

		if skipMerge {
			return nil
		}
		if usePlaylist {
			return pipe.Playlist(cmd.Context(), idx, videosDir, out)
		}
		return pipe.Merge(cmd.Context(), idx, videosDir, out, keep)
	},
}

// resolveIndexPath mirrors the lookup order users expect: a relative index
// name is tried in the output directory first, then next to the videos
func resolveIndexPath(indexPath, outDir, videoDir string) string {
	if indexPath == "" {
		indexPath = "index.json"
	}

	if filepath.IsAbs(indexPath) {
		return indexPath
	}

	for _, dir := range []string{outDir, videoDir} {
		candidate := filepath.Join(dir, indexPath)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return indexPath
}

func init() {
	addDetectFlags(analyzeCmd)

	indexCmd.Flags().String("out", "index.json", "output index path")

	mergeCmd.Flags().String("out", ".", "output directory for merged videos")
	mergeCmd.Flags().Bool("keep-fragments", false, "keep intermediate fragment files")

	playlistCmd.Flags().String("out", "playlist_out", "output directory for fragments and playlist")
	playlistCmd.Flags().String("index", "index.json", "index file path")

	fixupCmd.Flags().Duration("shift", 2*time.Hour, "creation time shift")
	fixupCmd.Flags().StringSlice("resolutions", nil, "resolution keys to fix up (e.g. 1920x1080)")

	statsCmd.Flags().Bool("per-file", false, "print per-file totals")

	addDetectFlags(runCmd)
	runCmd.Flags().String("out", ".", "output directory")
	runCmd.Flags().Bool("playlist", false, "create an M3U playlist instead of merging")
	runCmd.Flags().Bool("keep-fragments", false, "keep intermediate fragment files")
	runCmd.Flags().Bool("skip-analyze", false, "skip analysis (assume sidecars exist)")
	runCmd.Flags().Bool("skip-index", false, "skip indexing (assume index.json exists)")
	runCmd.Flags().Bool("skip-merge", false, "skip merging/playlist generation")
}
