package ffmpeg

import (
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// skipIfNoFFmpeg skips the test if ffmpeg is not available
func skipIfNoFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found in PATH")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not found in PATH")
	}
}

func TestExecutorCreation(t *testing.T) {
	skipIfNoFFmpeg(t)

	logger := zerolog.New(os.Stderr)
	exec, err := New(logger, 10*time.Second, time.Minute)
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}
	if exec.ffmpegPath == "" {
		t.Error("ffmpeg path is empty")
	}
	if exec.ffprobePath == "" {
		t.Error("ffprobe path is empty")
	}
}

func TestParseProbeOutput(t *testing.T) {
	output := []byte(`{
		"format": {
			"duration": "123.456",
			"tags": {"creation_time": "2024-06-01T10:00:00.000000Z"}
		},
		"streams": [
			{"codec_type": "video", "codec_name": "hevc", "width": 1920, "height": 1080},
			{"codec_type": "audio", "codec_name": "aac"}
		]
	}`)

	info, err := parseProbeOutput(output, "test.mp4")
	if err != nil {
		t.Fatalf("parseProbeOutput failed: %v", err)
	}

	if info.Duration != 123.456 {
		t.Errorf("expected duration 123.456, got %v", info.Duration)
	}
	if info.Width != 1920 || info.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", info.Width, info.Height)
	}
	if info.CreationTime != "2024-06-01T10:00:00.000000Z" {
		t.Errorf("unexpected creation time %q", info.CreationTime)
	}
	if info.VideoCodec != "hevc" {
		t.Errorf("expected hevc, got %q", info.VideoCodec)
	}
	if !info.HasAudio {
		t.Error("expected audio stream")
	}
}

func TestParseProbeOutputRotationSwapsDimensions(t *testing.T) {
	for _, rotation := range []int{90, -90, 270, -270} {
		output := []byte(fmt.Sprintf(`{
			"format": {"duration": "10.0"},
			"streams": [
				{"codec_type": "video", "width": 1920, "height": 1080,
				 "side_data_list": [{"rotation": %d}]}
			]
		}`, rotation))

		info, err := parseProbeOutput(output, "test.mp4")
		if err != nil {
			t.Fatalf("rotation %d: %v", rotation, err)
		}
		if info.Width != 1080 || info.Height != 1920 {
			t.Errorf("rotation %d: expected logical 1080x1920, got %dx%d",
				rotation, info.Width, info.Height)
		}
	}
}

func TestParseProbeOutputRotation180KeepsDimensions(t *testing.T) {
	output := []byte(`{
		"format": {"duration": "10.0"},
		"streams": [
			{"codec_type": "video", "width": 1920, "height": 1080,
			 "side_data_list": [{"rotation": 180}]}
		]
	}`)

	info, err := parseProbeOutput(output, "test.mp4")
	if err != nil {
		t.Fatalf("parseProbeOutput failed: %v", err)
	}
	if info.Width != 1920 || info.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", info.Width, info.Height)
	}
}

func TestParseProbeOutputMissingFields(t *testing.T) {
	info, err := parseProbeOutput([]byte(`{"format": {}, "streams": []}`), "test.mp4")
	if err != nil {
		t.Fatalf("parseProbeOutput failed: %v", err)
	}
	if info.Duration != 0 {
		t.Errorf("expected zero duration, got %v", info.Duration)
	}
	if info.Width != 0 || info.Height != 0 {
		t.Errorf("expected unknown resolution, got %dx%d", info.Width, info.Height)
	}
	if info.CreationTime != "" {
		t.Errorf("expected empty creation time, got %q", info.CreationTime)
	}
	if info.HasAudio {
		t.Error("expected no audio stream")
	}
}

func TestParseProbeOutputFirstVideoStreamWins(t *testing.T) {
	output := []byte(`{
		"format": {"duration": "10.0"},
		"streams": [
			{"codec_type": "video", "codec_name": "hevc", "width": 3840, "height": 2160},
			{"codec_type": "video", "codec_name": "mjpeg", "width": 320, "height": 240}
		]
	}`)

	info, err := parseProbeOutput(output, "test.mp4")
	if err != nil {
		t.Fatalf("parseProbeOutput failed: %v", err)
	}
	if info.Width != 3840 || info.Height != 2160 {
		t.Errorf("expected 3840x2160, got %dx%d", info.Width, info.Height)
	}
	if info.VideoCodec != "hevc" {
		t.Errorf("expected hevc, got %q", info.VideoCodec)
	}
}

func TestParseProbeOutputInvalidJSON(t *testing.T) {
	_, err := parseProbeOutput([]byte("not json"), "test.mp4")
	if err == nil {
		t.Error("expected error for invalid JSON")
	}
}
