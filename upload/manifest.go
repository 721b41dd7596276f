package upload

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/matijaslevang/spotminify/config"
	"github.com/matijaslevang/spotminify/iterutil"
	"github.com/matijaslevang/spotminify/media"
)

// AlbumManifest describes an album submission on disk. Relative paths are
// resolved against the manifest's directory.
type AlbumManifest struct {
	Title   string          `yaml:"title"`
	Artists []string        `yaml:"artists"`
	Genres  []string        `yaml:"genres"`
	Cover   string          `yaml:"cover"`
	Tracks  []TrackManifest `yaml:"tracks"`

	dir string
}

type TrackManifest struct {
	File    string   `yaml:"file"`
	Title   string   `yaml:"title"`
	Artists []string `yaml:"artists"`
	Genres  []string `yaml:"genres"`
	Image   string   `yaml:"image"`
}

func LoadAlbumManifest(path string) (*AlbumManifest, error) {
	data, err := os.ReadFile(path)
	if nil != err {
		return nil, fmt.Errorf("failed to read album manifest %s: %v", path, err)
	}

	var m AlbumManifest
	if err := yaml.Unmarshal(data, &m); nil != err {
		return nil, fmt.Errorf("failed to parse album manifest: %v", err)
	}
	m.dir = filepath.Dir(path)

	return &m, nil
}

func (m *AlbumManifest) resolve(p string) string {
	if len(p) == 0 || filepath.IsAbs(p) {
		return p
	}

	return filepath.Join(m.dir, p)
}

// Submission opens every referenced file. Tracks without their own artists
// or genres inherit the album's, tracks without a title use the audio
// file's title tag.
func (m *AlbumManifest) Submission(limits config.Upload) (*AlbumSubmission, error) {
	s := AlbumSubmission{
		Title:     m.Title,
		ArtistIDs: m.Artists,
		Genres:    m.Genres,
		Cover:     nil,
		Tracks:    nil,
	}

	if len(m.Cover) == 0 {
		return nil, &ValidationError{Field: "cover", Reason: "Cover is required for album", Err: nil}
	}

	cover, err := OpenFile("cover", m.resolve(m.Cover), media.CategoryImage, limits.MaxImageSize)
	if nil != err {
		return nil, err
	}
	s.Cover = cover

	tracks, _, err := iterutil.TryMap(m.Tracks, func(i int, t TrackManifest) (AlbumTrack, error) {
		return m.track(i, t, limits)
	})
	if nil != err {
		return nil, err
	}
	s.Tracks = tracks

	return &s, nil
}

func (m *AlbumManifest) track(i int, t TrackManifest, limits config.Upload) (AlbumTrack, error) {
	if len(t.File) == 0 {
		return AlbumTrack{}, &ValidationError{ //nolint:exhaustruct
			Field:  trackLabel(i, "audio"),
			Reason: "Each single must reference an audio file",
			Err:    nil,
		}
	}

	audio, err := OpenFile(trackLabel(i, "audio"), m.resolve(t.File), media.CategoryAudio, limits.MaxAudioSize)
	if nil != err {
		return AlbumTrack{}, err //nolint:exhaustruct
	}

	track := AlbumTrack{
		Title:     t.Title,
		ArtistIDs: t.Artists,
		Genres:    t.Genres,
		Audio:     audio,
		Image:     nil,
	}
	if len(track.Title) == 0 {
		track.Title = audio.Title()
	}
	if nil == track.ArtistIDs {
		track.ArtistIDs = m.Artists
	}
	if nil == track.Genres {
		track.Genres = m.Genres
	}

	if len(t.Image) > 0 {
		image, err := OpenFile(trackLabel(i, "image"), m.resolve(t.Image), media.CategoryImage, limits.MaxImageSize)
		if nil != err {
			return AlbumTrack{}, err //nolint:exhaustruct
		}
		track.Image = image
	}

	return track, nil
}
