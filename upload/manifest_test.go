package upload_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matijaslevang/spotminify/config"
	"github.com/matijaslevang/spotminify/upload"
)

var (
	mp3Bytes = append([]byte("ID3\x03\x00\x00\x00\x00\x00\x00"), make([]byte, 64)...)
	pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
)

func writeManifestDir(t *testing.T, manifest string, files map[string][]byte) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), content, 0o600))
	}

	path := filepath.Join(dir, "album.yaml")
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o600))

	return path
}

func TestAlbumManifest(t *testing.T) {
	t.Parallel()

	path := writeManifestDir(t, `
title: Night Drive
artists: [a1]
genres: [synthwave]
cover: cover.png
tracks:
  - file: 01 Intro.mp3
    title: Intro
  - file: 02 Outro.mp3
    artists: [a2]
    genres: []
    image: outro.png
`, map[string][]byte{
		"cover.png":    pngBytes,
		"outro.png":    pngBytes,
		"01 Intro.mp3": mp3Bytes,
		"02 Outro.mp3": mp3Bytes,
	})

	m, err := upload.LoadAlbumManifest(path)
	require.NoError(t, err)

	s, err := m.Submission(config.Upload{}) //nolint:exhaustruct
	require.NoError(t, err)

	assert.Equal(t, "Night Drive", s.Title)
	assert.Equal(t, "image/png", s.Cover.ContentType)
	require.Len(t, s.Tracks, 2)

	assert.Equal(t, "Intro", s.Tracks[0].Title)
	assert.Equal(t, []string{"a1"}, s.Tracks[0].ArtistIDs)
	assert.Equal(t, []string{"synthwave"}, s.Tracks[0].Genres)
	assert.Equal(t, "audio/mpeg", s.Tracks[0].Audio.ContentType)
	assert.Nil(t, s.Tracks[0].Image)

	assert.Equal(t, "02 Outro", s.Tracks[1].Title)
	assert.Equal(t, []string{"a2"}, s.Tracks[1].ArtistIDs)
	assert.Equal(t, []string{}, s.Tracks[1].Genres)
	require.NotNil(t, s.Tracks[1].Image)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "outro.png"), s.Tracks[1].Image.Path)
}

func TestAlbumManifestInvalid(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		manifest string
		field    string
		is       error
	}{
		{
			name:     "missing track file",
			manifest: "title: A\ncover: cover.png\ntracks:\n  - file: 01.mp3\n  - file: missing.mp3\n",
			field:    "track 2 audio",
			is:       os.ErrNotExist,
		},
		{
			name:     "track without file",
			manifest: "title: A\ncover: cover.png\ntracks:\n  - title: nothing\n",
			field:    "track 1 audio",
		},
		{
			name:     "no cover",
			manifest: "title: A\ntracks:\n  - file: 01.mp3\n",
			field:    "cover",
		},
		{
			name:     "cover is audio",
			manifest: "title: A\ncover: 01.mp3\ntracks:\n  - file: 01.mp3\n",
			field:    "cover",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			path := writeManifestDir(t, testCase.manifest, map[string][]byte{
				"cover.png": pngBytes,
				"01.mp3":    mp3Bytes,
			})

			m, err := upload.LoadAlbumManifest(path)
			require.NoError(t, err)

			s, err := m.Submission(config.Upload{}) //nolint:exhaustruct
			require.Nil(t, s)

			var validationErr *upload.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, testCase.field, validationErr.Field)
			if nil != testCase.is {
				require.ErrorIs(t, err, testCase.is)
			}
		})
	}
}
