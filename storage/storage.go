// Package storage writes object bytes to presigned URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/matijaslevang/spotminify/config"
	"github.com/matijaslevang/spotminify/httputil"
	"github.com/matijaslevang/spotminify/media"
	"github.com/matijaslevang/spotminify/progress"
)

// StatusError is a non-success response from object storage.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d: %s", e.Status, e.Message)
}

type Client struct {
	transport http.RoundTripper
	conf      config.Storage
}

// NewClient returns a storage client. Presigned URLs embed their own
// credentials, so requests never carry the session token.
func NewClient(conf config.Storage, proxy config.Proxy) (*Client, error) {
	transport, err := httputil.NewTransport(proxy)
	if nil != err {
		return nil, fmt.Errorf("failed to create storage transport: %v", err)
	}

	return &Client{transport: transport, conf: conf}, nil
}

// Put uploads f to url with the file's content type. counter, when set,
// observes the bytes as they are sent.
func (c *Client) Put(
	ctx context.Context,
	logger zerolog.Logger,
	url string,
	f *media.File,
	counter *progress.Counter,
) (err error) {
	body, err := f.Open()
	if nil != err {
		logger.Error().Err(err).Msg("Failed to open file for upload")
		return fmt.Errorf("failed to open file for upload: %w", err)
	}

	var r io.Reader = body
	if nil != counter {
		counter.Reset()
		r = counter.Reader(body)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, readCloser{r, body})
	if nil != err {
		if closeErr := body.Close(); nil != closeErr {
			err = errors.Join(err, closeErr)
		}
		logger.Error().Err(err).Msg("Failed to create upload request")
		return fmt.Errorf("failed to create upload request: %w", err)
	}

	req.ContentLength = f.Size
	req.Header.Set("Content-Type", f.ContentType)

	client := http.Client{ //nolint:exhaustruct
		Transport: c.transport,
		Timeout:   config.Seconds(c.conf.PutTimeout),
	}
	resp, err := client.Do(req)
	if nil != err {
		logger.Error().Err(err).Msg("Failed to send upload request")
		return fmt.Errorf("failed to send upload request: %w", err)
	}
	defer func() {
		if closeErr := httputil.DrainAndClose(resp); nil != closeErr {
			logger.Error().Err(closeErr).Msg("Failed to close upload response body")
			err = errors.Join(err, closeErr)
		}
	}()

	if code := resp.StatusCode; !httputil.IsSuccess(code) {
		respBytes := httputil.ReadErrorBody(resp)
		logger.Error().Int("status_code", code).Bytes("response_body", respBytes).Msg("Unexpected upload response status code")

		return &StatusError{Status: code, Message: httputil.ErrorMessage(respBytes, code)}
	}

	return nil
}

type readCloser struct {
	io.Reader
	io.Closer
}
