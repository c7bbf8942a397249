package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
)

// VideoInfo contains metadata about a video file. Width and Height are the
// logical frame dimensions: a 90/270 degree rotation tag swaps them. Zero
// dimensions mean the resolution could not be determined.
type VideoInfo struct {
	FilePath     string
	Duration     float64 // seconds; 0 when unknown
	Width        int
	Height       int
	CreationTime string // ISO-8601 creation_time tag, empty when absent
	VideoCodec   string
	HasAudio     bool
}

// ProbeVideo extracts metadata from a video file
func (e *Executor) ProbeVideo(ctx context.Context, filePath string) (*VideoInfo, error) {
	if filePath == "" {
		return nil, fmt.Errorf("file path is required")
	}

	if e.probeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.probeTimeout)
		defer cancel()
	}

	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		filePath,
	}

	cmd := exec.CommandContext(ctx, e.ffprobePath, args...)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseProbeOutput(output, filePath)
}

// parseProbeOutput decodes ffprobe JSON into VideoInfo
func parseProbeOutput(output []byte, filePath string) (*VideoInfo, error) {
	var probe probeResult
	if err := json.Unmarshal(output, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &VideoInfo{
		FilePath:     filePath,
		CreationTime: probe.Format.Tags.CreationTime,
	}

	if dur, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil {
		info.Duration = dur
	}

	for _, stream := range probe.Streams {
		if stream.CodecType == "video" && info.Width == 0 {
			info.VideoCodec = stream.CodecName
			info.Width = stream.Width
			info.Height = stream.Height

			// Rotated streams report sensor dimensions; swap to the
			// logical ones the viewer sees.
			rotation := stream.rotation()
			if rotation == 90 || rotation == 270 || rotation == -90 || rotation == -270 {
				info.Width, info.Height = info.Height, info.Width
			}
		} else if stream.CodecType == "audio" {
			info.HasAudio = true
		}
	}

	return info, nil
}

// probeResult matches ffprobe JSON output structure
type probeResult struct {
	Format struct {
		Duration string `json:"duration"`
		Tags     struct {
			CreationTime string `json:"creation_time"`
		} `json:"tags"`
	} `json:"format"`
	Streams []probeStream `json:"streams"`
}

type probeStream struct {
	CodecType    string `json:"codec_type"`
	CodecName    string `json:"codec_name"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	SideDataList []struct {
		Rotation int `json:"rotation"`
	} `json:"side_data_list"`
}

func (s probeStream) rotation() int {
	if len(s.SideDataList) == 0 {
		return 0
	}
	return s.SideDataList[0].Rotation
}
