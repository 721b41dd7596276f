package upload

import (
	"strings"
	"unicode/utf8"

	"github.com/matijaslevang/spotminify/media"
)

const maxTitleLength = 200

func validateTitle(field, title string) error {
	if len(strings.TrimSpace(title)) == 0 {
		return &ValidationError{Field: field, Reason: "Title is required", Err: nil}
	}

	if utf8.RuneCountInString(title) > maxTitleLength {
		return &ValidationError{Field: field, Reason: "Title must be at most 200 characters", Err: nil}
	}

	return nil
}

func validateAudio(field string, f *media.File, missing string) error {
	if nil == f {
		return &ValidationError{Field: field, Reason: missing, Err: nil}
	}

	if !strings.HasPrefix(f.ContentType, "audio/") {
		return &ValidationError{Field: field, Reason: "Only audio files are accepted", Err: media.ErrNotAudio}
	}

	return nil
}

func validateImage(field string, f *media.File, missing string) error {
	if nil == f {
		if len(missing) > 0 {
			return &ValidationError{Field: field, Reason: missing, Err: nil}
		}

		return nil
	}

	if !strings.HasPrefix(f.ContentType, "image/") {
		return &ValidationError{Field: field, Reason: "Only images are accepted for cover", Err: media.ErrNotImage}
	}

	return nil
}

func validateSingle(s *SingleSubmission) error {
	if err := validateTitle("title", s.Title); nil != err {
		return err
	}

	if err := validateAudio("audio", s.Audio, "Choose an audio file"); nil != err {
		return err
	}

	return validateImage("cover", s.Cover, "")
}

func validateAlbum(a *AlbumSubmission) error {
	if err := validateTitle("title", a.Title); nil != err {
		return err
	}

	if err := validateImage("cover", a.Cover, "Cover is required for album"); nil != err {
		return err
	}

	if len(a.Tracks) == 0 {
		return &ValidationError{Field: "tracks", Reason: "Add at least one single", Err: nil}
	}

	for i := range a.Tracks {
		t := &a.Tracks[i]
		if err := validateTitle(trackLabel(i, "title"), t.Title); nil != err {
			return err
		}

		if err := validateAudio(trackLabel(i, "audio"), t.Audio, "Each single must reference an audio file"); nil != err {
			return err
		}

		if err := validateImage(trackLabel(i, "image"), t.Image, ""); nil != err {
			return err
		}
	}

	return nil
}

func validateSingleUpdate(u *SingleUpdate) error {
	if len(u.ID) == 0 {
		return &ValidationError{Field: "id", Reason: "Single ID is required", Err: nil}
	}

	if u.empty() {
		return &ValidationError{Field: "update", Reason: "Nothing to update", Err: nil}
	}

	if nil != u.Title {
		if err := validateTitle("title", *u.Title); nil != err {
			return err
		}
	}

	if nil != u.Audio {
		if err := validateAudio("audio", u.Audio, ""); nil != err {
			return err
		}
	}

	return validateImage("cover", u.Cover, "")
}

func validateAlbumUpdate(u *AlbumUpdate) error {
	if len(u.ID) == 0 {
		return &ValidationError{Field: "id", Reason: "Album ID is required", Err: nil}
	}

	if u.empty() {
		return &ValidationError{Field: "update", Reason: "Nothing to update", Err: nil}
	}

	if nil != u.Title {
		if err := validateTitle("title", *u.Title); nil != err {
			return err
		}
	}

	return validateImage("cover", u.Cover, "")
}
