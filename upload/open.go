package upload

import (
	"errors"
	"os"

	"github.com/matijaslevang/spotminify/media"
)

// OpenFile opens a local file for field and reports problems as validation
// errors, so a bad selection never reaches the network.
func OpenFile(field, path string, category media.Category, maxSize uint64) (*media.File, error) {
	f, err := media.Open(path, category, maxSize)
	if nil == err {
		return f, nil
	}

	var reason string
	switch {
	case errors.Is(err, os.ErrNotExist):
		reason = "File not found: " + path
	case errors.Is(err, media.ErrNotAudio):
		reason = "Only audio files are accepted"
	case errors.Is(err, media.ErrNotImage):
		reason = "Only images are accepted for cover"
	case errors.Is(err, media.ErrTooLarge):
		reason = "File is too large: " + path
	case errors.Is(err, media.ErrEmpty):
		reason = "File is empty: " + path
	default:
		reason = "Could not read file: " + path
	}

	return nil, &ValidationError{Field: field, Reason: reason, Err: err}
}
