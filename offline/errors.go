package offline

import (
	"context"
	"errors"
	"fmt"

	"github.com/matijaslevang/spotminify/session"
)

var ErrEmptyKey = errors.New("song id is required")

// CacheReadError is a failure to read the store or materialize a payload.
type CacheReadError struct {
	Key string
	Err error
}

func (e *CacheReadError) Error() string {
	return fmt.Sprintf("failed to read offline copy of %s: %v", e.Key, e.Err)
}

func (e *CacheReadError) Unwrap() error {
	return e.Err
}

type CacheWriteError struct {
	Key string
	Err error
}

func (e *CacheWriteError) Error() string {
	return fmt.Sprintf("failed to write offline copy of %s: %v", e.Key, e.Err)
}

func (e *CacheWriteError) Unwrap() error {
	return e.Err
}

// NetworkError is a failed download. Status is zero when no response was
// received.
type NetworkError struct {
	URL    string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("download of %s failed with status code %d: %v", e.URL, e.Status, e.Err)
	}

	return fmt.Sprintf("download of %s failed: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func UserMessage(err error) string {
	var (
		readErr    *CacheReadError
		writeErr   *CacheWriteError
		networkErr *NetworkError
	)

	switch {
	case nil == err:
		return ""
	case errors.Is(err, ErrEmptyKey):
		return "Song ID is required"
	case errors.Is(err, context.Canceled):
		return "Download canceled"
	case errors.Is(err, session.ErrExpired):
		return "Session expired, please log in again"
	case errors.As(err, &networkErr):
		return "Download failed"
	case errors.As(err, &readErr):
		return "Could not read the offline copy"
	case errors.As(err, &writeErr):
		return "Could not save the offline copy"
	default:
		return "Offline storage is unavailable"
	}
}
