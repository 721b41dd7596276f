package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/urfave/cli/v3"

	"github.com/matijaslevang/spotminify/catalog"
	"github.com/matijaslevang/spotminify/config"
	"github.com/matijaslevang/spotminify/iterutil"
	"github.com/matijaslevang/spotminify/media"
	"github.com/matijaslevang/spotminify/session"
	"github.com/matijaslevang/spotminify/storage"
	"github.com/matijaslevang/spotminify/upload"
)

func metadataFlags() []cli.Flag {
	return []cli.Flag{
		//nolint:exhaustruct
		&cli.StringFlag{
			Name:  "title",
			Usage: "Title, defaults to the audio file's title tag",
		},
		//nolint:exhaustruct
		&cli.StringSliceFlag{
			Name:  "artist",
			Usage: "Artist ID, repeatable",
		},
		//nolint:exhaustruct
		&cli.StringSliceFlag{
			Name:  "genre",
			Usage: "Genre, repeatable",
		},
		//nolint:exhaustruct
		&cli.StringFlag{
			Name:  "cover",
			Usage: "Cover image path",
		},
	}
}

func uploadCommand() *cli.Command {
	//nolint:exhaustruct
	return &cli.Command{
		Name:  "upload",
		Usage: "Upload new content",
		Commands: []*cli.Command{
			//nolint:exhaustruct
			{
				Name:  "single",
				Usage: "Upload a single",
				Flags: append(
					metadataFlags(),
					//nolint:exhaustruct
					&cli.StringFlag{
						Name:  "audio",
						Usage: "Audio file path",
					},
					//nolint:exhaustruct
					&cli.BoolFlag{
						Name:  "explicit",
						Usage: "Mark the single as explicit",
					},
				),
				Action: uploadSingle,
			},
			//nolint:exhaustruct
			{
				Name:  "album",
				Usage: "Upload an album",
				Flags: append(
					metadataFlags(),
					//nolint:exhaustruct
					&cli.StringFlag{
						Name:  "manifest",
						Usage: "YAML album manifest, replaces the other flags",
					},
					//nolint:exhaustruct
					&cli.StringSliceFlag{
						Name:  "track",
						Usage: "Track audio file path in album order, repeatable",
					},
				),
				Action: uploadAlbum,
			},
		},
	}
}

func updateCommand() *cli.Command {
	//nolint:exhaustruct
	return &cli.Command{
		Name:  "update",
		Usage: "Update existing content",
		Commands: []*cli.Command{
			//nolint:exhaustruct
			{
				Name:      "single",
				Usage:     "Update a single",
				ArgsUsage: "<single-id>",
				Flags: append(
					metadataFlags(),
					//nolint:exhaustruct
					&cli.StringFlag{
						Name:  "audio",
						Usage: "Replacement audio file path",
					},
					//nolint:exhaustruct
					&cli.BoolFlag{
						Name:  "explicit",
						Usage: "Explicit flag, only sent when given",
					},
				),
				Action: updateSingle,
			},
			//nolint:exhaustruct
			{
				Name:      "album",
				Usage:     "Update an album",
				ArgsUsage: "<album-id>",
				Flags:     metadataFlags(),
				Action:    updateAlbum,
			},
		},
	}
}

func newPipeline(conf *config.Config, c *catalog.Client) (*upload.Pipeline, error) {
	st, err := storage.NewClient(conf.Storage, conf.API.Proxy)
	if nil != err {
		return nil, fmt.Errorf("create storage client: %v", err)
	}

	return upload.New(c, st, c, c, conf.Upload), nil
}

func submissionFailed(logger zerolog.Logger, err error) error {
	code := lo.Ternary(errors.Is(err, session.ErrNoSession) || errors.Is(err, session.ErrExpired), 2, 1)
	return fail(logger, err, upload.UserMessage(err), code)
}

// optionalFile opens path when the flag was given.
func optionalFile(cmd *cli.Command, flag string, category media.Category, maxSize uint64) (*media.File, error) {
	path := cmd.String(flag)
	if len(path) == 0 {
		return nil, nil
	}

	return upload.OpenFile(flag, path, category, maxSize)
}

func uploadSingle(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, conf, err := setup(cmd)
	if nil != err {
		return err
	}

	audio, err := optionalFile(cmd, "audio", media.CategoryAudio, conf.Upload.MaxAudioSize)
	if nil != err {
		return submissionFailed(logger, err)
	}

	cover, err := optionalFile(cmd, "cover", media.CategoryImage, conf.Upload.MaxImageSize)
	if nil != err {
		return submissionFailed(logger, err)
	}

	title := cmd.String("title")
	if len(title) == 0 && nil != audio {
		title = audio.Title()
	}

	c, err := newCatalogClient(conf)
	if nil != err {
		return err
	}
	defer c.Close()

	p, err := newPipeline(conf, c)
	if nil != err {
		return err
	}

	res, err := p.CreateSingle(ctx, logger, upload.SingleSubmission{
		Title:     title,
		ArtistIDs: cmd.StringSlice("artist"),
		Genres:    cmd.StringSlice("genre"),
		Explicit:  cmd.Bool("explicit"),
		Audio:     audio,
		Cover:     cover,
	})
	if nil != err {
		return submissionFailed(logger, err)
	}

	logger.Info().Str("id", res.ID).Strs("keys", res.Keys).Msg("Single created")

	return nil
}

func uploadAlbum(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, conf, err := setup(cmd)
	if nil != err {
		return err
	}

	var manifest *upload.AlbumManifest
	if path := cmd.String("manifest"); len(path) > 0 {
		manifest, err = upload.LoadAlbumManifest(path)
		if nil != err {
			return err
		}
	} else {
		manifest = &upload.AlbumManifest{ //nolint:exhaustruct
			Title:   cmd.String("title"),
			Artists: cmd.StringSlice("artist"),
			Genres:  cmd.StringSlice("genre"),
			Cover:   cmd.String("cover"),
			Tracks: iterutil.Map(cmd.StringSlice("track"), func(_ int, path string) upload.TrackManifest {
				return upload.TrackManifest{File: path} //nolint:exhaustruct
			}),
		}
	}

	submission, err := manifest.Submission(conf.Upload)
	if nil != err {
		return submissionFailed(logger, err)
	}

	c, err := newCatalogClient(conf)
	if nil != err {
		return err
	}
	defer c.Close()

	p, err := newPipeline(conf, c)
	if nil != err {
		return err
	}

	res, err := p.CreateAlbum(ctx, logger, *submission)
	if nil != err {
		return submissionFailed(logger, err)
	}

	logger.Info().Str("id", res.ID).Strs("keys", res.Keys).Msg("Album created")

	return nil
}

// stringSliceIfSet returns nil for an unset flag. Empty values are dropped,
// so passing the flag with "" clears the list.
func stringSliceIfSet(cmd *cli.Command, flag string) []string {
	if !cmd.IsSet(flag) {
		return nil
	}

	return lo.Compact(cmd.StringSlice(flag))
}

func updateSingle(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := requireArgs(cmd, "single-id"); nil != err {
		return err
	}

	logger, conf, err := setup(cmd)
	if nil != err {
		return err
	}

	audio, err := optionalFile(cmd, "audio", media.CategoryAudio, conf.Upload.MaxAudioSize)
	if nil != err {
		return submissionFailed(logger, err)
	}

	cover, err := optionalFile(cmd, "cover", media.CategoryImage, conf.Upload.MaxImageSize)
	if nil != err {
		return submissionFailed(logger, err)
	}

	u := upload.SingleUpdate{
		ID:        cmd.Args().First(),
		Title:     nil,
		ArtistIDs: stringSliceIfSet(cmd, "artist"),
		Genres:    stringSliceIfSet(cmd, "genre"),
		Explicit:  nil,
		Audio:     audio,
		Cover:     cover,
	}
	if cmd.IsSet("title") {
		u.Title = lo.ToPtr(cmd.String("title"))
	}
	if cmd.IsSet("explicit") {
		u.Explicit = lo.ToPtr(cmd.Bool("explicit"))
	}

	c, err := newCatalogClient(conf)
	if nil != err {
		return err
	}
	defer c.Close()

	p, err := newPipeline(conf, c)
	if nil != err {
		return err
	}

	res, err := p.UpdateSingle(ctx, logger, u)
	if nil != err {
		return submissionFailed(logger, err)
	}

	logger.Info().Str("id", res.ID).Str("message", res.Message).Msg("Single updated")

	return nil
}

func updateAlbum(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := requireArgs(cmd, "album-id"); nil != err {
		return err
	}

	logger, conf, err := setup(cmd)
	if nil != err {
		return err
	}

	cover, err := optionalFile(cmd, "cover", media.CategoryImage, conf.Upload.MaxImageSize)
	if nil != err {
		return submissionFailed(logger, err)
	}

	u := upload.AlbumUpdate{
		ID:        cmd.Args().First(),
		Title:     nil,
		ArtistIDs: stringSliceIfSet(cmd, "artist"),
		Genres:    stringSliceIfSet(cmd, "genre"),
		Cover:     cover,
	}
	if cmd.IsSet("title") {
		u.Title = lo.ToPtr(cmd.String("title"))
	}

	c, err := newCatalogClient(conf)
	if nil != err {
		return err
	}
	defer c.Close()

	p, err := newPipeline(conf, c)
	if nil != err {
		return err
	}

	res, err := p.UpdateAlbum(ctx, logger, u)
	if nil != err {
		return submissionFailed(logger, err)
	}

	logger.Info().Str("id", res.ID).Str("message", res.Message).Msg("Album updated")

	return nil
}
