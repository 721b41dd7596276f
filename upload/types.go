package upload

import (
	"github.com/rs/zerolog"

	"github.com/matijaslevang/spotminify/media"
)

type SingleSubmission struct {
	Title     string
	ArtistIDs []string
	Genres    []string
	Explicit  bool
	Audio     *media.File
	Cover     *media.File
}

func (s *SingleSubmission) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Str("title", s.Title).
		Strs("artist_ids", s.ArtistIDs).
		Strs("genres", s.Genres).
		Bool("explicit", s.Explicit).
		Bool("has_cover", nil != s.Cover)
}

type AlbumTrack struct {
	Title     string
	ArtistIDs []string
	Genres    []string
	Audio     *media.File
	Image     *media.File
}

type AlbumSubmission struct {
	Title     string
	ArtistIDs []string
	Genres    []string
	Cover     *media.File
	Tracks    []AlbumTrack
}

func (s *AlbumSubmission) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Str("title", s.Title).
		Strs("artist_ids", s.ArtistIDs).
		Strs("genres", s.Genres).
		Int("tracks", len(s.Tracks))
}

// SingleUpdate changes an existing single. Nil fields are left as they are.
type SingleUpdate struct {
	ID        string
	Title     *string
	ArtistIDs []string
	Genres    []string
	Explicit  *bool
	Audio     *media.File
	Cover     *media.File
}

func (u *SingleUpdate) empty() bool {
	return nil == u.Title && nil == u.ArtistIDs && nil == u.Genres && nil == u.Explicit && nil == u.Audio && nil == u.Cover
}

type AlbumUpdate struct {
	ID        string
	Title     *string
	ArtistIDs []string
	Genres    []string
	Cover     *media.File
}

func (u *AlbumUpdate) empty() bool {
	return nil == u.Title && nil == u.ArtistIDs && nil == u.Genres && nil == u.Cover
}

type CommitResult struct {
	// ID of the created or updated content. Updates of singles report
	// only a message.
	ID      string
	Message string
	// Keys of every object written during the submission, in upload order.
	Keys []string
}
