package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/matijaslevang/spotminify/catalog"
	"github.com/matijaslevang/spotminify/config"
	"github.com/matijaslevang/spotminify/iterutil"
	"github.com/matijaslevang/spotminify/session"
)

func catalogCommand() *cli.Command {
	//nolint:exhaustruct
	return &cli.Command{
		Name:  "catalog",
		Usage: "Catalog lookups",
		Commands: []*cli.Command{
			//nolint:exhaustruct
			{
				Name:   "artists",
				Usage:  "List artists",
				Action: catalogArtists,
			},
			//nolint:exhaustruct
			{
				Name:   "genres",
				Usage:  "List genres",
				Action: catalogGenres,
			},
		},
	}
}

func newCatalogClient(conf *config.Config) (*catalog.Client, error) {
	c, err := catalog.NewClient(conf.API, session.FromConfig(conf.Session.Token, conf.Session.TokenFile))
	if nil != err {
		return nil, fmt.Errorf("create catalog client: %v", err)
	}

	return c, nil
}

func newTable(header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)

	return t
}

func lookupFailed(logger zerolog.Logger, err error) error {
	switch {
	case errors.Is(err, session.ErrNoSession), errors.Is(err, session.ErrExpired), errors.Is(err, catalog.ErrUnauthorized):
		return fail(logger, err, "Session expired, please log in again", 2)
	default:
		return fail(logger, err, "Catalog lookup failed", 1)
	}
}

func catalogArtists(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, conf, err := setup(cmd)
	if nil != err {
		return err
	}

	c, err := newCatalogClient(conf)
	if nil != err {
		return err
	}
	defer c.Close()

	artists, err := c.Artists(ctx, logger)
	if nil != err {
		return lookupFailed(logger, err)
	}

	t := newTable(table.Row{"ID", "Name", "Genres"})
	t.AppendRows(iterutil.Map(artists, func(_ int, a catalog.Artist) table.Row {
		return table.Row{a.ID, a.Name, strings.Join(a.Genres, ", ")}
	}))
	t.Render()

	return nil
}

func catalogGenres(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, conf, err := setup(cmd)
	if nil != err {
		return err
	}

	c, err := newCatalogClient(conf)
	if nil != err {
		return err
	}
	defer c.Close()

	genres, err := c.Genres(ctx, logger)
	if nil != err {
		return lookupFailed(logger, err)
	}

	t := newTable(table.Row{"ID", "Name"})
	t.AppendRows(iterutil.Map(genres, func(_ int, g catalog.Genre) table.Row {
		return table.Row{g.ID, g.Name}
	}))
	t.Render()

	return nil
}
