package fragments

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSidecar(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "GX010001.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestResolutionKey(t *testing.T) {
	assert.Equal(t, "1920x1080", (&Resolution{Width: 1920, Height: 1080}).Key())
	assert.Equal(t, "unknown", (*Resolution)(nil).Key())
	assert.Equal(t, "unknown", (&Resolution{Width: 1920}).Key())
}

func TestSidecarPath(t *testing.T) {
	assert.Equal(t, "/videos/GX010001.json", SidecarPath("/videos/GX010001.MP4"))
	assert.Equal(t, "clip.json", SidecarPath("clip.mov"))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	creation := "2024-06-01T10:30:00.000000Z"
	rec := &FileRecord{
		Video:            "GX010001.MP4",
		Resolution:       &Resolution{Width: 1920, Height: 1080},
		CreationDatetime: &creation,
		Fragments: []Fragment{
			{Start: 1.5, End: 7.25},
			{Start: 12, End: 30},
		},
	}

	path := filepath.Join(t.TempDir(), "GX010001.json")
	require.NoError(t, rec.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestLoadSkipsMalformedFragments(t *testing.T) {
	path := writeSidecar(t, `{
		"video": "GX010001.MP4",
		"resolution": {"width": 1920, "height": 1080},
		"creation_datetime": null,
		"fragments": [
			{"start": 0, "end": 5},
			{"start": "soon", "end": 5},
			{"end": 9},
			{"start": 10, "end": 14}
		]
	}`)

	rec, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []Fragment{{Start: 0, End: 5}, {Start: 10, End: 14}}, rec.Fragments)
}

func TestLoadMalformedResolutionIsUnknown(t *testing.T) {
	for _, res := range []string{`"1080p"`, `{"width": 1920}`, `null`, `{}`} {
		path := writeSidecar(t, `{"video":"a.MP4","resolution":`+res+`,"fragments":[]}`)
		rec, err := Load(path)
		require.NoError(t, err, "resolution %s", res)
		assert.Nil(t, rec.Resolution, "resolution %s", res)
		assert.Equal(t, "unknown", rec.Resolution.Key())
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	path := writeSidecar(t, `{not json`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestParseISO(t *testing.T) {
	got, ok := ParseISO("2024-06-01T10:30:00.123456Z")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 6, 1, 10, 30, 0, 123456000, time.UTC), got.UTC())

	got, ok = ParseISO("2024-06-01T12:30:00+02:00")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC), got.UTC())

	// Timezone-less timestamps read as UTC
	got, ok = ParseISO("2024-06-01T10:30:00")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC), got.UTC())

	_, ok = ParseISO("yesterday")
	assert.False(t, ok)
	_, ok = ParseISO("")
	assert.False(t, ok)
}

func TestFormatISO(t *testing.T) {
	in := time.Date(2024, 6, 1, 10, 30, 0, 123456000, time.UTC)
	assert.Equal(t, "2024-06-01T10:30:00.123456Z", FormatISO(in))
}

func TestCreationTimeAbsent(t *testing.T) {
	rec := &FileRecord{}
	_, ok := rec.CreationTime()
	assert.False(t, ok)

	bad := "not-a-time"
	rec.CreationDatetime = &bad
	_, ok = rec.CreationTime()
	assert.False(t, ok)
}
