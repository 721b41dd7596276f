// Package upload sequences asset submissions: every file gets a presigned
// ticket, is PUT to object storage, and the resulting keys are committed in
// a single create or update call.
package upload

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/matijaslevang/spotminify/catalog"
	"github.com/matijaslevang/spotminify/config"
	"github.com/matijaslevang/spotminify/media"
	"github.com/matijaslevang/spotminify/progress"
)

type Presigner interface {
	Presign(ctx context.Context, logger zerolog.Logger, req catalog.PresignRequest) (*catalog.Ticket, error)
}

type Transferrer interface {
	Put(ctx context.Context, logger zerolog.Logger, url string, f *media.File, counter *progress.Counter) error
}

type Committer interface {
	CreateSingle(ctx context.Context, logger zerolog.Logger, p catalog.SinglePayload) (*catalog.CommitResponse, error)
	CreateAlbum(ctx context.Context, logger zerolog.Logger, p catalog.AlbumPayload) (*catalog.CommitResponse, error)
	UpdateSingle(ctx context.Context, logger zerolog.Logger, id string, p catalog.SinglePatch) (*catalog.CommitResponse, error)
	UpdateAlbum(ctx context.Context, logger zerolog.Logger, id string, p catalog.AlbumPatch) (*catalog.CommitResponse, error)
}

type ArtistDirectory interface {
	Artists(ctx context.Context, logger zerolog.Logger) ([]catalog.Artist, error)
}

type Pipeline struct {
	presigner   Presigner
	transferrer Transferrer
	committer   Committer
	artists     ArtistDirectory
	parallelism int
	singles     *Guard
	albums      *Guard
}

// New returns a pipeline. artists may be nil, in which case submissions
// carry no artist names.
func New(
	presigner Presigner,
	transferrer Transferrer,
	committer Committer,
	artists ArtistDirectory,
	conf config.Upload,
) *Pipeline {
	return &Pipeline{
		presigner:   presigner,
		transferrer: transferrer,
		committer:   committer,
		artists:     artists,
		parallelism: max(conf.Parallelism, 1),
		singles:     NewGuard(),
		albums:      NewGuard(),
	}
}

type run struct {
	logger  zerolog.Logger
	monitor *progress.BatchMonitor
}

// newRun prepares logging and progress for one submission. Monitor slots
// follow the order of files, nil files leave their slot empty.
func newRun(logger zerolog.Logger, op string, files ...*media.File) *run {
	monitor := progress.NewBatchMonitor(len(files))
	for i, f := range files {
		if nil != f {
			monitor.Set(i, progress.NewCounter(f.Size))
		}
	}

	return &run{
		logger:  logger.With().Str("run_id", uuid.NewString()).Str("op", op).Logger(),
		monitor: monitor,
	}
}

// send moves one asset through presign and transfer and returns its key.
func (p *Pipeline) send(ctx context.Context, r *run, logger zerolog.Logger, slot int, asset string, f *media.File) (string, error) {
	logger = logger.With().
		Str("asset", asset).
		Str("file", f.Name).
		Str("category", f.Category.String()).
		Logger()

	req := catalog.PresignRequest{
		Bucket:      lo.Ternary(f.Category == media.CategoryAudio, catalog.BucketAudio, catalog.BucketImage),
		FileName:    f.Name,
		ContentType: f.ContentType,
	}
	ticket, err := p.presigner.Presign(ctx, logger, req)
	if nil != err {
		logger.Error().Err(err).Dict("request", req.ToDict()).Dict("file", f.ToDict()).Msg("Failed to obtain upload ticket")
		return "", &PresignError{Asset: asset, Err: err}
	}

	logger = logger.With().Str("key", ticket.Key).Logger()
	if err := p.transferrer.Put(ctx, logger, ticket.URL, f, r.monitor.At(slot)); nil != err {
		logger.Error().Err(err).Msg("Failed to transfer asset")
		return "", &TransferError{Asset: asset, Err: err}
	}

	logger.Info().
		Int("percent", r.monitor.Percent()).
		Str("transferred", humanize.IBytes(uint64(r.monitor.Transferred()))).
		Str("total", humanize.IBytes(uint64(r.monitor.Total()))).
		Msg("Asset transferred")

	return ticket.Key, nil
}

// artistNames returns a resolver over the artist directory. The directory
// is consulted at most once and only when ids are present. A failed lookup
// degrades to empty names.
func (p *Pipeline) artistNames(ctx context.Context, logger zerolog.Logger) func(ids []string) []string {
	var (
		loaded  bool
		artists []catalog.Artist
	)

	return func(ids []string) []string {
		if len(ids) == 0 {
			return []string{}
		}

		if !loaded {
			loaded = true
			if nil != p.artists {
				list, err := p.artists.Artists(ctx, logger)
				if nil != err {
					logger.Warn().Err(err).Msg("Failed to load artists, committing without artist names")
				} else {
					artists = list
				}
			}
		}

		return catalog.ArtistNames(artists, ids)
	}
}

func trackLabel(i int, asset string) string {
	return fmt.Sprintf("track %d %s", i+1, asset)
}

func orEmpty(s []string) []string {
	return lo.Ternary(nil == s, []string{}, s)
}

// listPatch maps an unset list to nil and a set one, even empty, to a
// pointer so the update can clear it.
func listPatch(s []string) *[]string {
	if nil == s {
		return nil
	}

	return &s
}
