// Package media describes locally selected files headed for object storage.
package media

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
)

// Category selects the storage bucket an asset is written to.
type Category string

const (
	CategoryAudio Category = "audio"
	CategoryImage Category = "image"
)

func (c Category) String() string {
	return string(c)
}

// fallbackType is used when detection yields nothing more specific than a
// generic binary type.
func (c Category) fallbackType() string {
	switch c {
	case CategoryAudio:
		return "audio/mpeg"
	case CategoryImage:
		return "image/jpeg"
	default:
		panic("unexpected media category: " + string(c))
	}
}

var (
	ErrNotAudio = errors.New("only audio files are accepted")
	ErrNotImage = errors.New("only images are accepted for cover")
	ErrTooLarge = errors.New("file exceeds the maximum allowed size")
	ErrEmpty    = errors.New("file is empty")
)

// File is a local file selected for upload. It is a handle only, bytes are
// read when the transfer opens it.
type File struct {
	Path        string
	Name        string
	ContentType string
	Size        int64
	Category    Category
}

func (f *File) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Str("name", f.Name).
		Str("content_type", f.ContentType).
		Int64("size", f.Size).
		Str("category", f.Category.String())
}

// Open inspects the file at path and checks it belongs to category.
// maxSize of zero disables the size check.
func Open(path string, category Category, maxSize uint64) (*File, error) {
	info, err := os.Stat(path)
	if nil != err {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	if info.Size() == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmpty)
	}

	if maxSize > 0 && uint64(info.Size()) > maxSize {
		return nil, fmt.Errorf("%s: %w", path, ErrTooLarge)
	}

	mt, err := mimetype.DetectFile(path)
	if nil != err {
		return nil, fmt.Errorf("detect content type of %s: %v", path, err)
	}

	contentType := contentTypeOf(mt, category)
	switch category {
	case CategoryAudio:
		if !strings.HasPrefix(contentType, "audio/") {
			return nil, fmt.Errorf("%s (%s): %w", path, contentType, ErrNotAudio)
		}
	case CategoryImage:
		if !strings.HasPrefix(contentType, "image/") {
			return nil, fmt.Errorf("%s (%s): %w", path, contentType, ErrNotImage)
		}
	default:
		panic("unexpected media category: " + string(category))
	}

	return &File{
		Path:        path,
		Name:        filepath.Base(path),
		ContentType: contentType,
		Size:        info.Size(),
		Category:    category,
	}, nil
}

func contentTypeOf(mt *mimetype.MIME, category Category) string {
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("application/octet-stream") || m.Is("text/plain") {
			break
		}

		ct, _, _ := strings.Cut(m.String(), ";")
		if strings.HasPrefix(ct, string(category)+"/") {
			return ct
		}
	}

	if mt.Is("application/octet-stream") {
		return category.fallbackType()
	}

	ct, _, _ := strings.Cut(mt.String(), ";")

	return ct
}

// Open returns a reader over the file's bytes.
func (f *File) Open() (io.ReadCloser, error) {
	file, err := os.Open(f.Path)
	if nil != err {
		return nil, fmt.Errorf("open %s: %w", f.Path, err)
	}

	return file, nil
}

// Title returns the embedded title tag of an audio file, falling back to
// the file name without its extension.
func (f *File) Title() string {
	fallback := strings.TrimSuffix(f.Name, filepath.Ext(f.Name))
	if f.Category != CategoryAudio {
		return fallback
	}

	file, err := os.Open(f.Path)
	if nil != err {
		return fallback
	}
	defer file.Close() //nolint:errcheck

	m, err := tag.ReadFrom(file)
	if nil != err {
		return fallback
	}

	if title := strings.TrimSpace(m.Title()); len(title) > 0 {
		return title
	}

	return fallback
}
