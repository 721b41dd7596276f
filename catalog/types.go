package catalog

import (
	"github.com/rs/zerolog"
)

// Bucket is the object storage bucket a presigned ticket targets.
type Bucket string

const (
	BucketAudio Bucket = "audio"
	BucketImage Bucket = "image"
)

type PresignRequest struct {
	Bucket      Bucket `json:"bucketType"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
}

func (r *PresignRequest) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Str("bucket", string(r.Bucket)).
		Str("file_name", r.FileName).
		Str("content_type", r.ContentType)
}

// Ticket is a short-lived write grant for one object. It is used for a
// single PUT and then discarded.
type Ticket struct {
	URL    string `json:"url"`
	Key    string `json:"key"`
	Bucket string `json:"bucket"`
}

type Artist struct {
	ID        string   `json:"artistId"`
	Name      string   `json:"name"`
	Biography string   `json:"biography,omitempty"`
	Genres    []string `json:"genres,omitempty"`
	ImageURL  string   `json:"imageUrl,omitempty"`
}

type Genre struct {
	ID   string `json:"genreId"`
	Name string `json:"genreName"`
}

// ArtistNames maps ids to display names through artists, preserving the
// order of ids. Unknown ids are dropped.
func ArtistNames(artists []Artist, ids []string) []string {
	names := make(map[string]string, len(artists))
	for _, a := range artists {
		names[a.ID] = a.Name
	}

	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := names[id]; ok {
			out = append(out, name)
		}
	}

	return out
}

type SinglePayload struct {
	Title       string   `json:"title"`
	ArtistIDs   []string `json:"artistIds"`
	ArtistNames []string `json:"artistNames"`
	Genres      []string `json:"genres"`
	Explicit    bool     `json:"explicit"`
	AudioKey    string   `json:"audioKey"`
	ImageKey    string   `json:"imageKey,omitempty"`
}

type AlbumTrackPayload struct {
	Title       string   `json:"title"`
	ArtistIDs   []string `json:"artistIds"`
	ArtistNames []string `json:"artistNames"`
	Genres      []string `json:"genres"`
	TrackNo     int      `json:"trackNo"`
	AudioKey    string   `json:"audioKey"`
	ImageKey    string   `json:"imageKey,omitempty"`
}

type AlbumPayload struct {
	Title       string              `json:"title"`
	ArtistIDs   []string            `json:"artistIds"`
	ArtistNames []string            `json:"artistNames"`
	Genres      []string            `json:"genres"`
	CoverKey    string              `json:"coverKey"`
	Tracks      []AlbumTrackPayload `json:"tracks"`
}

// SinglePatch carries only the fields being changed. Nil fields are left
// untouched by the API, a pointer to an empty list clears the field.
type SinglePatch struct {
	Title       *string   `json:"title,omitempty"`
	ArtistIDs   *[]string `json:"artistIds,omitempty"`
	ArtistNames *[]string `json:"artistNames,omitempty"`
	Genres      *[]string `json:"genres,omitempty"`
	Explicit    *bool     `json:"explicit,omitempty"`
	AudioKey    *string   `json:"audioKey,omitempty"`
	ImageKey    *string   `json:"imageKey,omitempty"`
}

type AlbumPatch struct {
	Title       *string   `json:"title,omitempty"`
	ArtistIDs   *[]string `json:"artistIds,omitempty"`
	ArtistNames *[]string `json:"artistNames,omitempty"`
	Genres      *[]string `json:"genres,omitempty"`
	CoverKey    *string   `json:"coverKey,omitempty"`
}

// CommitResponse covers the bodies returned by the create and update
// endpoints. Singles report contentId, albums report albumId.
type CommitResponse struct {
	ContentID string `json:"contentId,omitempty"`
	AlbumID   string `json:"albumId,omitempty"`
	Message   string `json:"message,omitempty"`
}

func (r *CommitResponse) ID() string {
	if len(r.ContentID) > 0 {
		return r.ContentID
	}

	return r.AlbumID
}
