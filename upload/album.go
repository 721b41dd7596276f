package upload

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/matijaslevang/spotminify/catalog"
	"github.com/matijaslevang/spotminify/media"
	"github.com/matijaslevang/spotminify/must"
)

type trackKeys struct {
	audio string
	image string
}

// CreateAlbum validates the whole submission before touching the network,
// uploads the cover and then every track in declared order, and finally
// creates the album. A failed transfer abandons the commit.
func (p *Pipeline) CreateAlbum(ctx context.Context, logger zerolog.Logger, a AlbumSubmission) (*CommitResult, error) {
	release, ok := p.albums.TryAcquire()
	if !ok {
		return nil, ErrSubmissionInProgress
	}
	defer release()

	if err := validateAlbum(&a); nil != err {
		return nil, err
	}

	files := make([]*media.File, 0, 1+2*len(a.Tracks))
	files = append(files, a.Cover)
	for _, t := range a.Tracks {
		files = append(files, t.Audio, t.Image)
	}

	r := newRun(logger, "create_album", files...)
	r.logger.Info().Dict("submission", a.ToDict()).Int("parallelism", p.parallelism).Msg("Submitting album")

	coverKey, err := p.send(ctx, r, r.logger, 0, "cover", a.Cover)
	if nil != err {
		return nil, err
	}

	tracks, err := p.transferTracks(ctx, r, a.Tracks)
	if nil != err {
		return nil, err
	}

	keys := []string{coverKey}
	names := p.artistNames(ctx, r.logger)
	payload := catalog.AlbumPayload{
		Title:       a.Title,
		ArtistIDs:   orEmpty(a.ArtistIDs),
		ArtistNames: names(a.ArtistIDs),
		Genres:      orEmpty(a.Genres),
		CoverKey:    coverKey,
		Tracks:      make([]catalog.AlbumTrackPayload, len(a.Tracks)),
	}
	for i, t := range a.Tracks {
		payload.Tracks[i] = catalog.AlbumTrackPayload{
			Title:       t.Title,
			ArtistIDs:   orEmpty(t.ArtistIDs),
			ArtistNames: names(t.ArtistIDs),
			Genres:      orEmpty(t.Genres),
			TrackNo:     i + 1,
			AudioKey:    tracks[i].audio,
			ImageKey:    tracks[i].image,
		}
		keys = append(keys, tracks[i].audio)
		if len(tracks[i].image) > 0 {
			keys = append(keys, tracks[i].image)
		}
	}

	resp, err := p.committer.CreateAlbum(ctx, r.logger, payload)
	if nil != err {
		r.logger.Error().Err(err).Strs("keys", keys).Msg("Failed to create album")
		return nil, &CommitError{Err: err}
	}

	r.logger.Info().Str("id", resp.ID()).Msg("Album created")

	return &CommitResult{ID: resp.ID(), Message: resp.Message, Keys: keys}, nil
}

// transferTracks uploads every track and returns the keys indexed like
// tracks. With parallelism above one tracks are transferred concurrently,
// each track's audio still precedes its image.
func (p *Pipeline) transferTracks(ctx context.Context, r *run, tracks []AlbumTrack) ([]trackKeys, error) {
	keys := make([]trackKeys, len(tracks))

	if p.parallelism <= 1 {
		for i := range tracks {
			k, err := p.transferTrack(ctx, r, i, &tracks[i])
			if nil != err {
				return nil, err
			}
			keys[i] = *k
		}

		return keys, nil
	}

	wg, wgctx := errgroup.WithContext(ctx)
	wg.SetLimit(p.parallelism)
	for i := range tracks {
		wg.Go(func() error {
			k, err := p.transferTrack(wgctx, r, i, &tracks[i])
			if nil != err {
				return err
			}
			keys[i] = *k

			return nil
		})
	}

	if err := wg.Wait(); nil != err {
		return nil, err
	}

	for i := range keys {
		must.Be(len(keys[i].audio) > 0, "every track has an audio key after transfer")
	}

	return keys, nil
}

func (p *Pipeline) transferTrack(ctx context.Context, r *run, i int, t *AlbumTrack) (*trackKeys, error) {
	logger := r.logger.With().Int("track_index", i).Logger()

	audioKey, err := p.send(ctx, r, logger, 1+2*i, trackLabel(i, "audio"), t.Audio)
	if nil != err {
		return nil, err
	}

	var imageKey string
	if nil != t.Image {
		imageKey, err = p.send(ctx, r, logger, 2+2*i, trackLabel(i, "image"), t.Image)
		if nil != err {
			return nil, err
		}
	}

	return &trackKeys{audio: audioKey, image: imageKey}, nil
}

// UpdateAlbum uploads a replacement cover when given, then sends only the
// changed fields.
func (p *Pipeline) UpdateAlbum(ctx context.Context, logger zerolog.Logger, u AlbumUpdate) (*CommitResult, error) {
	release, ok := p.albums.TryAcquire()
	if !ok {
		return nil, ErrSubmissionInProgress
	}
	defer release()

	if err := validateAlbumUpdate(&u); nil != err {
		return nil, err
	}

	r := newRun(logger.With().Str("album_id", u.ID).Logger(), "update_album", u.Cover)
	r.logger.Info().Msg("Updating album")

	patch := catalog.AlbumPatch{
		Title:       u.Title,
		ArtistIDs:   listPatch(u.ArtistIDs),
		ArtistNames: nil,
		Genres:      listPatch(u.Genres),
		CoverKey:    nil,
	}
	keys := make([]string, 0, 1)

	if nil != u.Cover {
		key, err := p.send(ctx, r, r.logger, 0, "cover", u.Cover)
		if nil != err {
			return nil, err
		}
		patch.CoverKey = lo.ToPtr(key)
		keys = append(keys, key)
	}

	if nil != u.ArtistIDs {
		patch.ArtistNames = lo.ToPtr(p.artistNames(ctx, r.logger)(u.ArtistIDs))
	}

	resp, err := p.committer.UpdateAlbum(ctx, r.logger, u.ID, patch)
	if nil != err {
		r.logger.Error().Err(err).Strs("keys", keys).Msg("Failed to update album")
		return nil, &CommitError{Err: err}
	}

	r.logger.Info().Msg("Album updated")

	return &CommitResult{ID: lo.CoalesceOrEmpty(resp.AlbumID, u.ID), Message: resp.Message, Keys: keys}, nil
}
