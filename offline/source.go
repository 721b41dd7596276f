package offline

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
)

// Source is a playable reference to a cached payload, backed by a private
// temporary file. Callers release it once playback no longer needs it.
type Source struct {
	path        string
	contentType string
	once        sync.Once
	err         error
}

func (s *Source) Path() string {
	return s.path
}

func (s *Source) ContentType() string {
	return s.contentType
}

func (s *Source) URL() string {
	abs, err := filepath.Abs(s.path)
	if nil != err {
		abs = s.path
	}

	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String() //nolint:exhaustruct
}

// Release removes the backing file. Calls after the first return the
// first call's result.
func (s *Source) Release() error {
	s.once.Do(func() {
		if err := os.Remove(s.path); nil != err && !errors.Is(err, os.ErrNotExist) {
			s.err = fmt.Errorf("failed to remove playback file: %v", err)
		}
	})

	return s.err
}
