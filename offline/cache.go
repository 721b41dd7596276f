// Package offline keeps downloaded songs on disk so they can be played
// without network access.
package offline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/matijaslevang/spotminify/config"
	"github.com/matijaslevang/spotminify/httputil"
	"github.com/matijaslevang/spotminify/session"
)

var nowFunc = time.Now

type BlobStore interface {
	Has(ctx context.Context, key string) (bool, error)
	Get(ctx context.Context, key string) ([]byte, *Meta, error)
	Put(ctx context.Context, key string, blob []byte, meta Meta) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]Entry, error)
}

type Cache struct {
	store     BlobStore
	transport http.RoundTripper
	session   session.Provider
	apiHost   string
	conf      config.Offline
}

// New returns a cache over store. Downloads from apiBaseURL's host carry the
// session token, any other host is fetched anonymously.
func New(
	store BlobStore,
	transport http.RoundTripper,
	sess session.Provider,
	apiBaseURL string,
	conf config.Offline,
) *Cache {
	var apiHost string
	if u, err := url.Parse(apiBaseURL); nil == err {
		apiHost = u.Host
	}

	return &Cache{
		store:     store,
		transport: transport,
		session:   sess,
		apiHost:   apiHost,
		conf:      conf,
	}
}

// IsCached reports whether key has a stored payload. Store failures count
// as a miss.
func (c *Cache) IsCached(ctx context.Context, logger zerolog.Logger, key string) bool {
	ok, err := c.store.Has(ctx, key)
	if nil != err {
		logger.Error().Err(err).Str("key", key).Msg("Failed to check offline store")
		return false
	}

	return ok
}

// PlaybackSource materializes the payload of key into a temporary file. It
// returns nil without error when key is not cached.
func (c *Cache) PlaybackSource(ctx context.Context, logger zerolog.Logger, key string) (*Source, error) {
	logger = logger.With().Str("key", key).Logger()

	blob, meta, err := c.store.Get(ctx, key)
	if nil != err {
		logger.Error().Err(err).Msg("Failed to read offline copy")
		return nil, &CacheReadError{Key: key, Err: err}
	}

	if nil == meta {
		return nil, nil
	}

	f, err := os.CreateTemp(c.conf.PlaybackDir, "spotminify-*"+extensionOf(meta.ContentType))
	if nil != err {
		logger.Error().Err(err).Msg("Failed to create playback file")
		return nil, &CacheReadError{Key: key, Err: fmt.Errorf("failed to create playback file: %v", err)}
	}

	if _, err := f.Write(blob); nil != err {
		err = errors.Join(err, f.Close(), os.Remove(f.Name()))
		logger.Error().Err(err).Msg("Failed to write playback file")

		return nil, &CacheReadError{Key: key, Err: fmt.Errorf("failed to write playback file: %v", err)}
	}

	if err := f.Close(); nil != err {
		err = errors.Join(err, os.Remove(f.Name()))
		logger.Error().Err(err).Msg("Failed to close playback file")

		return nil, &CacheReadError{Key: key, Err: fmt.Errorf("failed to close playback file: %v", err)}
	}

	return &Source{path: f.Name(), contentType: meta.ContentType}, nil //nolint:exhaustruct
}

func extensionOf(contentType string) string {
	if m := mimetype.Lookup(contentType); nil != m {
		return m.Extension()
	}

	return ""
}

// Download fetches sourceURL and stores the payload under key, replacing
// any previous payload. The response is read completely before the store
// is touched, so a failed download leaves an existing entry intact. An empty
// successful response is stored as an empty payload.
func (c *Cache) Download(ctx context.Context, logger zerolog.Logger, key, sourceURL string) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}

	logger = logger.With().Str("key", key).Logger()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if nil != err {
		logger.Error().Err(err).Msg("Failed to create download request")
		return &NetworkError{URL: sourceURL, Status: 0, Err: err}
	}

	if req.URL.Host == c.apiHost {
		token, err := c.session.Token(ctx)
		switch {
		case nil == err:
			if len(token) > 0 {
				req.Header.Set("Authorization", "Bearer "+token)
			}
		case errors.Is(err, session.ErrNoSession):
			logger.Debug().Msg("No session, downloading anonymously")
		default:
			return &NetworkError{URL: sourceURL, Status: 0, Err: err}
		}
	}

	client := http.Client{ //nolint:exhaustruct
		Transport: c.transport,
		Timeout:   config.Seconds(c.conf.DownloadTimeout),
	}
	resp, err := client.Do(req)
	if nil != err {
		logger.Error().Err(err).Msg("Failed to send download request")
		return &NetworkError{URL: sourceURL, Status: 0, Err: err}
	}
	defer func() {
		if err := httputil.DrainAndClose(resp); nil != err {
			logger.Warn().Err(err).Msg("Failed to close download response body")
		}
	}()

	if code := resp.StatusCode; !httputil.IsSuccess(code) {
		respBytes := httputil.ReadErrorBody(resp)
		logger.Error().Int("status_code", code).Bytes("response_body", respBytes).Msg("Unexpected download response status code")

		return &NetworkError{URL: sourceURL, Status: code, Err: errors.New(httputil.ErrorMessage(respBytes, code))}
	}

	blob, err := io.ReadAll(resp.Body)
	if nil != err {
		logger.Error().Err(err).Msg("Failed to read download response body")
		return &NetworkError{URL: sourceURL, Status: resp.StatusCode, Err: fmt.Errorf("read response body: %v", err)}
	}

	meta := Meta{
		ContentType:  contentTypeOf(resp.Header.Get("Content-Type"), blob),
		Size:         int64(len(blob)),
		SourceURL:    sourceURL,
		DownloadedAt: nowFunc().UTC(),
	}
	if err := c.store.Put(ctx, key, blob, meta); nil != err {
		logger.Error().Err(err).Msg("Failed to store offline copy")
		return &CacheWriteError{Key: key, Err: err}
	}

	logger.Info().Int64("size", meta.Size).Str("content_type", meta.ContentType).Msg("Song stored for offline playback")

	return nil
}

// contentTypeOf prefers a declared audio type and sniffs the payload
// otherwise, as object storage often serves binary/octet-stream.
func contentTypeOf(header string, blob []byte) string {
	if ct, _, _ := strings.Cut(header, ";"); strings.HasPrefix(strings.TrimSpace(ct), "audio/") {
		return strings.TrimSpace(ct)
	}

	ct, _, _ := strings.Cut(mimetype.Detect(blob).String(), ";")

	return ct
}

// Remove deletes the payload of key. Removing an absent key succeeds.
func (c *Cache) Remove(ctx context.Context, logger zerolog.Logger, key string) error {
	if err := c.store.Delete(ctx, key); nil != err {
		logger.Error().Err(err).Str("key", key).Msg("Failed to remove offline copy")
		return &CacheWriteError{Key: key, Err: err}
	}

	return nil
}

func (c *Cache) Entries(ctx context.Context) ([]Entry, error) {
	entries, err := c.store.List(ctx)
	if nil != err {
		return nil, &CacheReadError{Key: "", Err: err}
	}

	return entries, nil
}
