package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/matijaslevang/spotminify/config"
	"github.com/matijaslevang/spotminify/httputil"
	"github.com/matijaslevang/spotminify/iterutil"
	"github.com/matijaslevang/spotminify/mathutil"
	"github.com/matijaslevang/spotminify/offline"
	"github.com/matijaslevang/spotminify/session"
)

const defaultPageSize = 20

func cacheCommand() *cli.Command {
	//nolint:exhaustruct
	return &cli.Command{
		Name:  "cache",
		Usage: "Offline song cache",
		Commands: []*cli.Command{
			//nolint:exhaustruct
			{
				Name:      "has",
				Usage:     "Report whether a song is available offline",
				ArgsUsage: "<song-id>",
				Action:    cacheHas,
			},
			//nolint:exhaustruct
			{
				Name:      "play",
				Usage:     "Materialize a cached song and print its playback URL until interrupted",
				ArgsUsage: "<song-id>",
				Action:    cachePlay,
			},
			//nolint:exhaustruct
			{
				Name:      "download",
				Usage:     "Download a song for offline playback",
				ArgsUsage: "<song-id> <url>",
				Action:    cacheDownload,
			},
			//nolint:exhaustruct
			{
				Name:      "remove",
				Usage:     "Remove a song from the offline cache",
				ArgsUsage: "<song-id>",
				Action:    cacheRemove,
			},
			//nolint:exhaustruct
			{
				Name:  "list",
				Usage: "List cached songs",
				Flags: []cli.Flag{
					//nolint:exhaustruct
					&cli.IntFlag{
						Name:  "page",
						Usage: "Page number, starting at 1",
						Value: 1,
					},
					//nolint:exhaustruct
					&cli.IntFlag{
						Name:  "page-size",
						Usage: "Entries per page",
						Value: defaultPageSize,
					},
				},
				Action: cacheList,
			},
		},
	}
}

func newOfflineCache(conf *config.Config) (*offline.Cache, *offline.Store, error) {
	store, err := offline.OpenStore(conf.Offline.DBPath)
	if nil != err {
		return nil, nil, fmt.Errorf("open offline store: %v", err)
	}

	transport, err := httputil.NewTransport(conf.API.Proxy)
	if nil != err {
		return nil, nil, errors.Join(fmt.Errorf("create download transport: %v", err), store.Close())
	}

	c := offline.New(
		store,
		transport,
		session.FromConfig(conf.Session.Token, conf.Session.TokenFile),
		conf.API.BaseURL,
		conf.Offline,
	)

	return c, store, nil
}

// withOfflineCache runs f against the offline cache and closes the store
// afterwards.
func withOfflineCache(
	conf *config.Config,
	f func(c *offline.Cache) error,
) (err error) {
	c, store, err := newOfflineCache(conf)
	if nil != err {
		return err
	}
	defer func() {
		if closeErr := store.Close(); nil != closeErr {
			err = errors.Join(err, closeErr)
		}
	}()

	return f(c)
}

func cacheFailed(logger zerolog.Logger, err error) error {
	return fail(logger, err, offline.UserMessage(err), 1)
}

func cacheHas(ctx context.Context, cmd *cli.Command) error {
	if err := requireArgs(cmd, "song-id"); nil != err {
		return err
	}

	logger, conf, err := setup(cmd)
	if nil != err {
		return err
	}

	key := cmd.Args().First()
	cached := false

	if c, store, err := newOfflineCache(conf); nil != err {
		logger.Error().Err(err).Str("key", key).Msg("Offline cache is unavailable")
	} else {
		cached = c.IsCached(ctx, logger, key)
		if err := store.Close(); nil != err {
			logger.Warn().Err(err).Msg("Failed to close offline store")
		}
	}

	if cached {
		fmt.Fprintln(os.Stdout, text.FgGreen.Sprint("available offline")) //nolint:errcheck
		return nil
	}

	fmt.Fprintln(os.Stdout, "not cached") //nolint:errcheck

	return exitCodeError(3)
}

func cachePlay(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := requireArgs(cmd, "song-id"); nil != err {
		return err
	}

	logger, conf, err := setup(cmd)
	if nil != err {
		return err
	}

	return withOfflineCache(conf, func(c *offline.Cache) error {
		key := cmd.Args().First()

		src, err := c.PlaybackSource(ctx, logger, key)
		if nil != err {
			return cacheFailed(logger, err)
		}

		if nil == src {
			fmt.Fprintln(os.Stdout, "not cached") //nolint:errcheck
			return exitCodeError(3)
		}
		defer func() {
			if err := src.Release(); nil != err {
				logger.Error().Err(err).Msg("Failed to release playback file")
			}
		}()

		fmt.Fprintln(os.Stdout, src.URL()) //nolint:errcheck
		logger.Info().Str("key", key).Str("path", src.Path()).Msg("Playback file ready, press Ctrl+C to release it")

		<-ctx.Done()

		return nil
	})
}

func cacheDownload(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := requireArgs(cmd, "song-id", "url"); nil != err {
		return err
	}

	logger, conf, err := setup(cmd)
	if nil != err {
		return err
	}

	return withOfflineCache(conf, func(c *offline.Cache) error {
		if err := c.Download(ctx, logger, cmd.Args().Get(0), cmd.Args().Get(1)); nil != err {
			return cacheFailed(logger, err)
		}

		fmt.Fprintln(os.Stdout, "Song is now available offline") //nolint:errcheck

		return nil
	})
}

func cacheRemove(ctx context.Context, cmd *cli.Command) error {
	if err := requireArgs(cmd, "song-id"); nil != err {
		return err
	}

	logger, conf, err := setup(cmd)
	if nil != err {
		return err
	}

	return withOfflineCache(conf, func(c *offline.Cache) error {
		if err := c.Remove(ctx, logger, cmd.Args().First()); nil != err {
			return cacheFailed(logger, err)
		}

		fmt.Fprintln(os.Stdout, "Removed from offline cache") //nolint:errcheck

		return nil
	})
}

func cacheList(ctx context.Context, cmd *cli.Command) error {
	logger, conf, err := setup(cmd)
	if nil != err {
		return err
	}

	pageSize := max(cmd.Int("page-size"), 1)

	return withOfflineCache(conf, func(c *offline.Cache) error {
		entries, err := c.Entries(ctx)
		if nil != err {
			return cacheFailed(logger, err)
		}

		pages := mathutil.Pages(len(entries), pageSize)
		page := min(max(cmd.Int("page"), 1), pages)
		start := min((page-1)*pageSize, len(entries))
		end := min(start+pageSize, len(entries))

		t := newTable(table.Row{"Song ID", "Size", "Type", "Downloaded"})
		t.AppendRows(iterutil.Map(entries[start:end], func(_ int, e offline.Entry) table.Row {
			return table.Row{e.Key, humanize.IBytes(uint64(e.Size)), e.ContentType, humanize.Time(e.DownloadedAt)}
		}))
		t.SetCaption("page %d of %d, %d song(s)", page, pages, len(entries))
		t.Render()

		return nil
	})
}
