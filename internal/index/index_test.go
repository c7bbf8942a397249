package index

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/keagan/steadycut/internal/fragments"
	"github.com/keagan/steadycut/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

func record(video, creation string, w, h int, frags ...fragments.Fragment) *fragments.FileRecord {
	rec := &fragments.FileRecord{Video: video, Fragments: frags}
	if creation != "" {
		rec.CreationDatetime = strptr(creation)
	}
	if w > 0 {
		rec.Resolution = &fragments.Resolution{Width: w, Height: h}
	}
	return rec
}

func TestBuildGroupsSortedByResolutionKey(t *testing.T) {
	idx := Build([]*fragments.FileRecord{
		record("wide.MP4", "2024-06-01T10:00:00Z", 1920, 1080, fragments.Fragment{Start: 0, End: 5}),
		record("tall.MP4", "2024-06-01T09:00:00Z", 1080, 1920, fragments.Fragment{Start: 1, End: 4}),
	})

	require.Len(t, idx, 2)
	assert.Equal(t, "1080x1920", idx[0].Resolution)
	assert.Equal(t, "1920x1080", idx[1].Resolution)
}

func TestBuildOrdersFilesByCreationAbsentLast(t *testing.T) {
	idx := Build([]*fragments.FileRecord{
		record("late.MP4", "2024-06-01T12:00:00Z", 1920, 1080, fragments.Fragment{Start: 0, End: 3}),
		record("undated1.MP4", "", 1920, 1080, fragments.Fragment{Start: 0, End: 1}),
		record("early.MP4", "2024-06-01T08:00:00Z", 1920, 1080, fragments.Fragment{Start: 2, End: 6}),
		record("undated2.MP4", "garbage-datetime", 1920, 1080, fragments.Fragment{Start: 5, End: 9}),
	})

	require.Len(t, idx, 1)
	var order []string
	for _, e := range idx[0].FileFragments {
		order = append(order, e.Filename)
	}
	// Absent or unparsable creation sorts last, stable between themselves
	assert.Equal(t, []string{"early.MP4", "late.MP4", "undated1.MP4", "undated2.MP4"}, order)

	assert.Nil(t, idx[0].FileFragments[2].Creation)
	assert.Nil(t, idx[0].FileFragments[3].Creation)
}

func TestBuildDenormalizesCreationAndFilename(t *testing.T) {
	idx := Build([]*fragments.FileRecord{
		record("a.MP4", "2024-06-01T10:00:00Z", 1920, 1080,
			fragments.Fragment{Start: 0, End: 3},
			fragments.Fragment{Start: 8, End: 12}),
	})

	require.Len(t, idx, 1)
	require.Len(t, idx[0].FileFragments, 2)
	for _, e := range idx[0].FileFragments {
		assert.Equal(t, "a.MP4", e.Filename)
		require.NotNil(t, e.Creation)
		assert.Equal(t, "2024-06-01T10:00:00.000000Z", *e.Creation)
	}
	assert.Equal(t, 0.0, idx[0].FileFragments[0].Start)
	assert.Equal(t, 8.0, idx[0].FileFragments[1].Start)
}

func TestBuildNormalizesFragments(t *testing.T) {
	idx := Build([]*fragments.FileRecord{
		record("a.MP4", "", 1920, 1080,
			fragments.Fragment{Start: 9, End: 12},
			fragments.Fragment{Start: 5, End: 2}, // inverted, dropped
			fragments.Fragment{Start: 0, End: 3}),
	})

	require.Len(t, idx, 1)
	require.Len(t, idx[0].FileFragments, 2)
	assert.Equal(t, 0.0, idx[0].FileFragments[0].Start)
	assert.Equal(t, 9.0, idx[0].FileFragments[1].Start)
}

func TestBuildUnknownResolutionGroup(t *testing.T) {
	idx := Build([]*fragments.FileRecord{
		record("mystery.MP4", "", 0, 0, fragments.Fragment{Start: 0, End: 2}),
	})

	require.Len(t, idx, 1)
	assert.Equal(t, "unknown", idx[0].Resolution)
}

func TestBuildEmptyGroupMarshalsAsEmptyArray(t *testing.T) {
	// The whole-file fallback can legitimately produce a sidecar with zero
	// fragments; its group must still serialize as [] rather than null.
	idx := Build([]*fragments.FileRecord{
		record("empty.MP4", "2024-06-01T10:00:00Z", 1920, 1080),
	})

	require.Len(t, idx, 1)
	assert.NotNil(t, idx[0].FileFragments)

	data, err := json.Marshal(idx)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"file_fragments":[]`)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	idx := Build([]*fragments.FileRecord{
		record("wide.MP4", "2024-06-01T10:00:00Z", 1920, 1080,
			fragments.Fragment{Start: 0, End: 5},
			fragments.Fragment{Start: 9, End: 14}),
		record("tall.MP4", "", 1080, 1920, fragments.Fragment{Start: 1, End: 4}),
		record("mystery.MP4", "2024-06-01T07:00:00Z", 0, 0, fragments.Fragment{Start: 2, End: 8}),
	})

	path := filepath.Join(t.TempDir(), "index.json")
	require.NoError(t, idx.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, idx, got)
}

func TestBuildFromDir(t *testing.T) {
	dir := t.TempDir()

	wide := record("wide.MP4", "2024-06-01T10:00:00Z", 1920, 1080, fragments.Fragment{Start: 0, End: 5})
	require.NoError(t, wide.Save(filepath.Join(dir, "wide.json")))

	// Sidecar with no video name falls back to the sibling .MP4 name
	anon := record("", "", 1920, 1080, fragments.Fragment{Start: 2, End: 4})
	require.NoError(t, anon.Save(filepath.Join(dir, "GX017777.json")))

	// Unreadable sidecar is skipped, not fatal
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{oops"), 0644))

	var logs bytes.Buffer
	idx, err := BuildFromDir(logging.NewLogger(&logs), dir)
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "broken.json")

	require.Len(t, idx, 1)
	require.Len(t, idx[0].FileFragments, 2)
	assert.Equal(t, "wide.MP4", idx[0].FileFragments[0].Filename)
	assert.Equal(t, "GX017777.MP4", idx[0].FileFragments[1].Filename)
}
