package upload

import (
	"context"
	"errors"
	"fmt"

	"github.com/matijaslevang/spotminify/catalog"
	"github.com/matijaslevang/spotminify/session"
)

var ErrSubmissionInProgress = errors.New("submission in progress")

// ValidationError is a submission rejected before any network call.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if nil != e.Err {
		return fmt.Sprintf("invalid %s: %s: %v", e.Field, e.Reason, e.Err)
	}

	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

type PresignError struct {
	Asset string
	Err   error
}

func (e *PresignError) Error() string {
	return fmt.Sprintf("failed to obtain upload ticket for %s: %v", e.Asset, e.Err)
}

func (e *PresignError) Unwrap() error {
	return e.Err
}

type TransferError struct {
	Asset string
	Err   error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("failed to transfer %s: %v", e.Asset, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// CommitError is a failed create or update call. Objects already written
// to storage stay there.
type CommitError struct {
	Err error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("failed to commit submission: %v", e.Err)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}

// UserMessage converts a submission failure into the single message shown
// to the user.
func UserMessage(err error) string {
	var (
		validationErr *ValidationError
		commitErr     *CommitError
		apiErr        *catalog.APIError
	)

	switch {
	case nil == err:
		return ""
	case errors.Is(err, ErrSubmissionInProgress):
		return "A submission is already in progress"
	case errors.As(err, &validationErr):
		return validationErr.Reason
	case errors.Is(err, session.ErrNoSession), errors.Is(err, session.ErrExpired), errors.Is(err, catalog.ErrUnauthorized):
		return "Session expired, please log in again"
	case errors.Is(err, context.Canceled):
		return "Upload canceled"
	case errors.As(err, &commitErr):
		if errors.As(commitErr.Err, &apiErr) && len(apiErr.Message) > 0 {
			return apiErr.Message
		}

		return "Failed"
	default:
		return "Upload failed"
	}
}
