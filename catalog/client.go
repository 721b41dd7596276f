// Package catalog talks to the content API: presigned upload tickets, the
// single and album commit endpoints, and the artist and genre listings.
package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"github.com/matijaslevang/spotminify/cache"
	"github.com/matijaslevang/spotminify/config"
	"github.com/matijaslevang/spotminify/httputil"
	"github.com/matijaslevang/spotminify/ratelimit"
	"github.com/matijaslevang/spotminify/session"
)

const (
	lookupMaxRetries = 4
	artistsCacheKey  = "artists"
	genresCacheKey   = "genres"
)

type Client struct {
	baseURL   string
	transport http.RoundTripper
	session   session.Provider
	limiter   *ratelimit.Limiter
	timeouts  config.APITimeouts
	retryBase time.Duration
	artists   *cache.Cache[[]Artist]
	genres    *cache.Cache[[]Genre]
}

type Option func(*Client)

// WithRetryBase sets the first delay of the Fibonacci backoff used by
// lookups.
func WithRetryBase(d time.Duration) Option {
	return func(c *Client) { c.retryBase = d }
}

func WithTransport(t http.RoundTripper) Option {
	return func(c *Client) { c.transport = t }
}

func NewClient(conf config.API, sess session.Provider, opts ...Option) (*Client, error) {
	transport, err := httputil.NewTransport(conf.Proxy)
	if nil != err {
		return nil, fmt.Errorf("failed to create api transport: %v", err)
	}

	c := &Client{
		baseURL:   strings.TrimSuffix(conf.BaseURL, "/"),
		transport: transport,
		session:   sess,
		limiter:   ratelimit.New(conf.RateLimit.PerSecond, conf.RateLimit.Burst),
		timeouts:  conf.Timeouts,
		retryBase: 1 * time.Second,
		artists:   cache.New[[]Artist](4),
		genres:    cache.New[[]Genre](4),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *Client) Close() {
	c.artists.Stop()
	c.genres.Stop()
}

// BaseURL returns the API root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Presign(ctx context.Context, logger zerolog.Logger, req PresignRequest) (*Ticket, error) {
	var ticket Ticket
	if err := c.do(ctx, logger, http.MethodPost, "/upload-url", c.timeouts.Presign, req, &ticket); nil != err {
		return nil, err
	}

	if len(ticket.URL) == 0 || len(ticket.Key) == 0 {
		logger.Error().Str("url", ticket.URL).Str("key", ticket.Key).Msg("Presign response is missing url or key")
		return nil, errors.New("presign response is missing url or key")
	}

	return &ticket, nil
}

func (c *Client) CreateSingle(ctx context.Context, logger zerolog.Logger, p SinglePayload) (*CommitResponse, error) {
	var resp CommitResponse
	if err := c.do(ctx, logger, http.MethodPost, "/singles", c.timeouts.Commit, p, &resp); nil != err {
		return nil, err
	}

	return &resp, nil
}

func (c *Client) CreateAlbum(ctx context.Context, logger zerolog.Logger, p AlbumPayload) (*CommitResponse, error) {
	var resp CommitResponse
	if err := c.do(ctx, logger, http.MethodPost, "/albums", c.timeouts.Commit, p, &resp); nil != err {
		return nil, err
	}

	return &resp, nil
}

func (c *Client) UpdateSingle(ctx context.Context, logger zerolog.Logger, id string, p SinglePatch) (*CommitResponse, error) {
	var resp CommitResponse
	if err := c.do(ctx, logger, http.MethodPut, "/singles/"+url.PathEscape(id), c.timeouts.Commit, p, &resp); nil != err {
		return nil, err
	}

	return &resp, nil
}

func (c *Client) UpdateAlbum(ctx context.Context, logger zerolog.Logger, id string, p AlbumPatch) (*CommitResponse, error) {
	var resp CommitResponse
	if err := c.do(ctx, logger, http.MethodPut, "/albums/"+url.PathEscape(id), c.timeouts.Commit, p, &resp); nil != err {
		return nil, err
	}

	return &resp, nil
}

func (c *Client) Artists(ctx context.Context, logger zerolog.Logger) ([]Artist, error) {
	return c.artists.Fetch(
		artistsCacheKey,
		cache.DefaultArtistsTTL,
		func() ([]Artist, error) {
			var artists []Artist
			if err := c.lookup(ctx, logger, "/artists", &artists); nil != err {
				return nil, err
			}

			return artists, nil
		},
	)
}

func (c *Client) Genres(ctx context.Context, logger zerolog.Logger) ([]Genre, error) {
	return c.genres.Fetch(
		genresCacheKey,
		cache.DefaultGenresTTL,
		func() ([]Genre, error) {
			var genres []Genre
			if err := c.lookup(ctx, logger, "/genres", &genres); nil != err {
				return nil, err
			}

			return genres, nil
		},
	)
}

// lookup GETs path, retrying transient failures. Lookups are idempotent,
// writes never go through here.
func (c *Client) lookup(ctx context.Context, logger zerolog.Logger, path string, out any) error {
	return retry.Do(
		ctx,
		retry.WithMaxRetries(lookupMaxRetries, retry.NewFibonacci(c.retryBase)),
		func(ctx context.Context) error {
			if err := c.do(ctx, logger, http.MethodGet, path, c.timeouts.Lookup, nil, out); nil != err {
				if isTransient(err) {
					logger.Warn().Err(err).Msg("Retrying catalog lookup")
					return retry.RetryableError(err)
				}

				return err
			}

			return nil
		},
	)
}

func isTransient(err error) bool {
	if errors.Is(err, ErrTooManyRequests) || errors.Is(err, ErrServer) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func (c *Client) do(
	ctx context.Context,
	logger zerolog.Logger,
	method string,
	path string,
	timeoutSeconds int,
	body any,
	out any,
) (err error) {
	logger = logger.With().Str("method", method).Str("path", path).Logger()

	var reqBody io.Reader
	if nil != body {
		b, err := json.Marshal(body)
		if nil != err {
			return fmt.Errorf("failed to marshal %s %s request body: %v", method, path, err)
		}
		reqBody = bytes.NewReader(b)
	}

	token, err := c.session.Token(ctx)
	if nil != err {
		return fmt.Errorf("failed to get session token: %w", err)
	}

	if err := c.limiter.Wait(ctx); nil != err {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if nil != err {
		logger.Error().Err(err).Msg("Failed to create request")
		return fmt.Errorf("failed to create %s %s request: %w", method, path, err)
	}

	req.Header.Set("Accept", "application/json")
	if nil != body {
		req.Header.Set("Content-Type", "application/json")
	}
	if len(token) > 0 {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := http.Client{ //nolint:exhaustruct
		Transport: c.transport,
		Timeout:   config.Seconds(timeoutSeconds),
	}
	resp, err := client.Do(req)
	if nil != err {
		logger.Error().Err(err).Msg("Failed to send request")
		return fmt.Errorf("failed to send %s %s request: %w", method, path, err)
	}
	defer func() {
		if closeErr := httputil.DrainAndClose(resp); nil != closeErr {
			logger.Error().Err(closeErr).Msg("Failed to close response body")
			err = errors.Join(err, closeErr)
		}
	}()

	if code := resp.StatusCode; !httputil.IsSuccess(code) {
		respBytes := httputil.ReadErrorBody(resp)
		logger.Error().Int("status_code", code).Bytes("response_body", respBytes).Msg("Unexpected response status code")

		return &APIError{
			Method:  method,
			Path:    path,
			Status:  code,
			Message: httputil.ErrorMessage(respBytes, code),
		}
	}

	if nil == out {
		return nil
	}

	respBytes, err := httputil.ReadResponseBody(resp)
	if nil != err {
		if errors.Is(err, httputil.ErrEmptyBody) && resp.StatusCode == http.StatusNoContent {
			return nil
		}

		logger.Error().Err(err).Msg("Failed to read response body")
		return fmt.Errorf("failed to read %s %s response body: %w", method, path, err)
	}

	if err := json.Unmarshal(respBytes, out); nil != err {
		logger.Error().Err(err).Bytes("response_body", respBytes).Msg("Failed to decode response body")
		return fmt.Errorf("failed to decode %s %s response body: %v", method, path, err)
	}

	return nil
}
