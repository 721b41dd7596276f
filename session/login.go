package session

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/AlecAivazis/survey/v2"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Login asks for an identity token on the terminal and stores it in path.
func Login(logger zerolog.Logger, path string) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return syscall.ENOTTY
	}

	var token string
	prompt := &survey.Password{ //nolint:exhaustruct
		Message: "Paste ID token:",
	}
	askOpts := []survey.AskOpt{
		survey.WithValidator(survey.Required),
		survey.WithHideCharacter('*'),
		survey.WithStdio(os.Stdin, os.Stdout, os.Stderr),
		survey.WithShowCursor(true),
	}
	if err := survey.AskOne(prompt, &token, askOpts...); nil != err {
		return fmt.Errorf("ask for token: %v", err)
	}

	return Save(logger, path, token)
}

// Save validates token and writes it to path.
func Save(logger zerolog.Logger, path, token string) error {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return errors.New("token must not be empty")
	}

	content := TokenFileContent{IDToken: token, ExpiresAt: 0}
	if exp, err := ExpiresAt(token); nil != err {
		logger.Warn().Err(err).Msg("Token is not a JWT, its expiry is unknown")
	} else if !exp.IsZero() {
		content.ExpiresAt = exp.Unix()
		logger = logger.With().Time("expires_at", exp).Logger()
	}

	if _, err := checkExpiry(token, nowFunc()); errors.Is(err, ErrExpired) {
		return err
	}

	if err := TokenFile(path).Write(content); nil != err {
		return fmt.Errorf("write token file: %v", err)
	}
	logger.Info().Str("token_file", path).Msg("Session saved")

	return nil
}

func Logout(logger zerolog.Logger, path string) error {
	if err := TokenFile(path).Remove(); nil != err {
		return err
	}
	logger.Info().Str("token_file", path).Msg("Session removed")

	return nil
}

// ReadToken is used when the token is piped in instead of typed.
func ReadToken(r io.Reader) (string, error) {
	b, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if nil != err {
		return "", fmt.Errorf("read token: %v", err)
	}

	return strings.TrimSpace(string(b)), nil
}
