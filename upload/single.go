package upload

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/matijaslevang/spotminify/catalog"
)

// CreateSingle uploads the audio file and the optional cover, then creates
// the single with the resulting keys.
func (p *Pipeline) CreateSingle(ctx context.Context, logger zerolog.Logger, s SingleSubmission) (*CommitResult, error) {
	release, ok := p.singles.TryAcquire()
	if !ok {
		return nil, ErrSubmissionInProgress
	}
	defer release()

	if err := validateSingle(&s); nil != err {
		return nil, err
	}

	r := newRun(logger, "create_single", s.Audio, s.Cover)
	r.logger.Info().Dict("submission", s.ToDict()).Msg("Submitting single")

	audioKey, err := p.send(ctx, r, r.logger, 0, "audio", s.Audio)
	if nil != err {
		return nil, err
	}
	keys := []string{audioKey}

	var imageKey string
	if nil != s.Cover {
		imageKey, err = p.send(ctx, r, r.logger, 1, "cover", s.Cover)
		if nil != err {
			return nil, err
		}
		keys = append(keys, imageKey)
	}

	names := p.artistNames(ctx, r.logger)
	payload := catalog.SinglePayload{
		Title:       s.Title,
		ArtistIDs:   orEmpty(s.ArtistIDs),
		ArtistNames: names(s.ArtistIDs),
		Genres:      orEmpty(s.Genres),
		Explicit:    s.Explicit,
		AudioKey:    audioKey,
		ImageKey:    imageKey,
	}

	resp, err := p.committer.CreateSingle(ctx, r.logger, payload)
	if nil != err {
		r.logger.Error().Err(err).Strs("keys", keys).Msg("Failed to create single")
		return nil, &CommitError{Err: err}
	}

	r.logger.Info().Str("id", resp.ID()).Msg("Single created")

	return &CommitResult{ID: resp.ID(), Message: resp.Message, Keys: keys}, nil
}

// UpdateSingle uploads any replacement files, then sends only the changed
// fields.
func (p *Pipeline) UpdateSingle(ctx context.Context, logger zerolog.Logger, u SingleUpdate) (*CommitResult, error) {
	release, ok := p.singles.TryAcquire()
	if !ok {
		return nil, ErrSubmissionInProgress
	}
	defer release()

	if err := validateSingleUpdate(&u); nil != err {
		return nil, err
	}

	r := newRun(logger.With().Str("single_id", u.ID).Logger(), "update_single", u.Audio, u.Cover)
	r.logger.Info().Msg("Updating single")

	patch := catalog.SinglePatch{
		Title:       u.Title,
		ArtistIDs:   listPatch(u.ArtistIDs),
		ArtistNames: nil,
		Genres:      listPatch(u.Genres),
		Explicit:    u.Explicit,
		AudioKey:    nil,
		ImageKey:    nil,
	}
	keys := make([]string, 0, 2)

	if nil != u.Audio {
		key, err := p.send(ctx, r, r.logger, 0, "audio", u.Audio)
		if nil != err {
			return nil, err
		}
		patch.AudioKey = lo.ToPtr(key)
		keys = append(keys, key)
	}

	if nil != u.Cover {
		key, err := p.send(ctx, r, r.logger, 1, "cover", u.Cover)
		if nil != err {
			return nil, err
		}
		patch.ImageKey = lo.ToPtr(key)
		keys = append(keys, key)
	}

	if nil != u.ArtistIDs {
		patch.ArtistNames = lo.ToPtr(p.artistNames(ctx, r.logger)(u.ArtistIDs))
	}

	resp, err := p.committer.UpdateSingle(ctx, r.logger, u.ID, patch)
	if nil != err {
		r.logger.Error().Err(err).Strs("keys", keys).Msg("Failed to update single")
		return nil, &CommitError{Err: err}
	}

	r.logger.Info().Msg("Single updated")

	return &CommitResult{ID: u.ID, Message: resp.Message, Keys: keys}, nil
}
