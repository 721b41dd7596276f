package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/matijaslevang/spotminify/session"
)

func sessionCommand() *cli.Command {
	//nolint:exhaustruct
	return &cli.Command{
		Name:  "session",
		Usage: "Session commands",
		Commands: []*cli.Command{
			//nolint:exhaustruct
			{
				Name:  "login",
				Usage: "Store an identity token for subsequent commands",
				Flags: []cli.Flag{
					//nolint:exhaustruct
					&cli.BoolFlag{
						Name:  "stdin",
						Usage: "Read the token from standard input instead of prompting",
					},
				},
				Action: sessionLogin,
			},
			//nolint:exhaustruct
			{
				Name:   "logout",
				Usage:  "Remove the stored identity token",
				Action: sessionLogout,
			},
		},
	}
}

func sessionLogin(ctx context.Context, cmd *cli.Command) error {
	_, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, conf, err := setup(cmd)
	if nil != err {
		return err
	}

	if cmd.Bool("stdin") {
		token, err := session.ReadToken(os.Stdin)
		if nil != err {
			return err
		}

		if err := session.Save(logger, conf.Session.TokenFile, token); nil != err {
			if errors.Is(err, session.ErrExpired) {
				return fail(logger, err, "The token has already expired", 2)
			}

			return fmt.Errorf("save session: %w", err)
		}

		return nil
	}

	if err := session.Login(logger, conf.Session.TokenFile); nil != err {
		if errors.Is(err, syscall.ENOTTY) {
			logger.Error().Msg("No TTY detected. Pipe the token with `session login --stdin` or run with a terminal attached.")
			return exitCodeError(1)
		}

		if errors.Is(err, session.ErrExpired) {
			return fail(logger, err, "The token has already expired", 2)
		}

		return fmt.Errorf("login: %w", err)
	}

	return nil
}

func sessionLogout(ctx context.Context, cmd *cli.Command) error {
	_, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, conf, err := setup(cmd)
	if nil != err {
		return err
	}

	if err := session.Logout(logger, conf.Session.TokenFile); nil != err {
		return fmt.Errorf("logout: %w", err)
	}

	return nil
}
