package media_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matijaslevang/spotminify/media"
)

var (
	pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	id3Header = append([]byte("ID3\x03\x00\x00\x00\x00\x00\x00"), make([]byte, 64)...)
	binary    = []byte{0x00, 0x01, 0x02, 0x03, 0xfe, 0xff, 0x00, 0x10, 0x7f, 0x00}
)

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	return path
}

func TestOpen(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		fileName    string
		content     []byte
		category    media.Category
		maxSize     uint64
		contentType string
		err         error
	}{
		{
			name:        "mp3 as audio",
			fileName:    "track.mp3",
			content:     id3Header,
			category:    media.CategoryAudio,
			contentType: "audio/mpeg",
		},
		{
			name:        "png as image",
			fileName:    "cover.png",
			content:     pngHeader,
			category:    media.CategoryImage,
			contentType: "image/png",
		},
		{
			name:        "undetected audio falls back to mpeg",
			fileName:    "blob",
			content:     binary,
			category:    media.CategoryAudio,
			contentType: "audio/mpeg",
		},
		{
			name:        "undetected image falls back to jpeg",
			fileName:    "blob",
			content:     binary,
			category:    media.CategoryImage,
			contentType: "image/jpeg",
		},
		{
			name:     "png as audio",
			fileName: "cover.png",
			content:  pngHeader,
			category: media.CategoryAudio,
			err:      media.ErrNotAudio,
		},
		{
			name:     "mp3 as image",
			fileName: "track.mp3",
			content:  id3Header,
			category: media.CategoryImage,
			err:      media.ErrNotImage,
		},
		{
			name:     "text as audio",
			fileName: "notes.txt",
			content:  []byte("just some plain text\n"),
			category: media.CategoryAudio,
			err:      media.ErrNotAudio,
		},
		{
			name:     "too large",
			fileName: "track.mp3",
			content:  id3Header,
			category: media.CategoryAudio,
			maxSize:  8,
			err:      media.ErrTooLarge,
		},
		{
			name:     "empty",
			fileName: "track.mp3",
			content:  nil,
			category: media.CategoryAudio,
			err:      media.ErrEmpty,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			path := writeFile(t, testCase.fileName, testCase.content)
			f, err := media.Open(path, testCase.category, testCase.maxSize)
			if nil != testCase.err {
				require.ErrorIs(t, err, testCase.err)
				require.Nil(t, f)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, testCase.contentType, f.ContentType)
			assert.Equal(t, testCase.fileName, f.Name)
			assert.Equal(t, int64(len(testCase.content)), f.Size)
			assert.Equal(t, testCase.category, f.Category)
		})
	}
}

func TestOpenMissing(t *testing.T) {
	t.Parallel()

	f, err := media.Open(filepath.Join(t.TempDir(), "missing.mp3"), media.CategoryAudio, 0)
	require.ErrorIs(t, err, os.ErrNotExist)
	require.Nil(t, f)
}

func TestTitleFallsBackToFileName(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "Some Song.mp3", binary)
	f, err := media.Open(path, media.CategoryAudio, 0)
	require.NoError(t, err)
	assert.Equal(t, "Some Song", f.Title())
}

func TestFileOpen(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "cover.png", pngHeader)
	f, err := media.Open(path, media.CategoryImage, 0)
	require.NoError(t, err)

	r, err := f.Open()
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, r.Close()) })

	buf := make([]byte, len(pngHeader))
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, buf[:n])
}
