package subtitle

import (
	"strings"
	"testing"

	"github.com/keagan/steadycut/internal/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

func TestGenerateSRTOneLabelPerSourceFile(t *testing.T) {
	entries := []index.Entry{
		{Creation: strptr("2024-06-01T10:00:00Z"), Filename: "a.MP4", Start: 0, End: 4},
		{Creation: strptr("2024-06-01T10:00:00Z"), Filename: "a.MP4", Start: 10, End: 13},
		{Creation: strptr("2024-06-01T11:30:00Z"), Filename: "b.MP4", Start: 2, End: 5},
	}

	srt := GenerateSRT(entries)

	// Two cues: one per source file, not one per fragment
	assert.Equal(t, 2, strings.Count(srt, " --> "))
	assert.Contains(t, srt, "2024-06-01 10:00")
	assert.Contains(t, srt, "2024-06-01 11:30")

	// b.MP4's label lands where its first fragment starts on the merged
	// timeline: after a.MP4's fragments of 4 s and 3 s
	assert.Contains(t, srt, "00:00:07.000 --> 00:00:09.000")
}

func TestGenerateSRTFirstCueAtZero(t *testing.T) {
	entries := []index.Entry{
		{Creation: strptr("2024-06-01T10:00:00Z"), Filename: "a.MP4", Start: 5, End: 9},
	}

	srt := GenerateSRT(entries)

	require.True(t, strings.HasPrefix(srt, "1\n00:00:00.000 --> 00:00:02.000\n"))
}

func TestGenerateSRTFilenameFallback(t *testing.T) {
	entries := []index.Entry{
		{Creation: nil, Filename: "undated.MP4", Start: 0, End: 3},
		{Creation: strptr("garbage"), Filename: "odd.MP4", Start: 0, End: 3},
	}

	srt := GenerateSRT(entries)

	assert.Contains(t, srt, "undated.MP4")
	assert.Contains(t, srt, "odd.MP4")
}

func TestGenerateSRTEmpty(t *testing.T) {
	assert.Empty(t, GenerateSRT(nil))
}
