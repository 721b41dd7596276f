package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
)

var ErrEmptyTokenFile = errors.New("token file holds no token")

type TokenFile string

type TokenFileContent struct {
	IDToken   string `json:"id_token"`
	ExpiresAt int64  `json:"expires_at,omitempty"`
}

func (f TokenFile) Read() (c *TokenFileContent, err error) {
	file, err := os.OpenFile(string(f), os.O_RDONLY, 0o600)
	if nil != err {
		if errors.Is(err, os.ErrNotExist) {
			return nil, os.ErrNotExist
		}

		return nil, fmt.Errorf("open token file: %v", err)
	}
	defer func() {
		if closeErr := file.Close(); nil != closeErr {
			err = errors.Join(err, fmt.Errorf("close token file: %v", closeErr))
		}
	}()

	dec := json.NewDecoder(file)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); nil != err {
		return nil, fmt.Errorf("decode token file contents: %v", err)
	}

	if nil == c {
		return nil, ErrEmptyTokenFile
	}

	return c, nil
}

func (f TokenFile) Write(c TokenFileContent) (err error) {
	file, err := os.OpenFile(string(f), os.O_CREATE|os.O_WRONLY|os.O_TRUNC|os.O_SYNC, 0o600)
	if nil != err {
		return fmt.Errorf("open token file: %v", err)
	}
	defer func() {
		if closeErr := file.Close(); nil != closeErr {
			err = errors.Join(err, fmt.Errorf("close token file: %v", closeErr))
		}
	}()

	if err := json.NewEncoder(file).Encode(c); nil != err {
		return fmt.Errorf("encode token file: %v", err)
	}

	return nil
}

func (f TokenFile) Remove() error {
	if err := os.Remove(string(f)); nil != err && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token file: %v", err)
	}

	return nil
}

// File reads the token file on every call so a login in another process is
// picked up without restarting.
type File struct {
	path TokenFile
	now  func() time.Time
}

func NewFile(path string) *File {
	return &File{path: TokenFile(path), now: time.Now}
}

func (f *File) Token(_ context.Context) (string, error) {
	c, err := f.path.Read()
	if nil != err {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, ErrEmptyTokenFile) {
			return "", ErrNoSession
		}

		return "", fmt.Errorf("read session: %w", err)
	}

	now := time.Now
	if f.now != nil {
		now = f.now
	}

	if c.ExpiresAt > 0 && !now().Before(time.Unix(c.ExpiresAt, 0)) {
		return "", ErrExpired
	}

	return checkExpiry(c.IDToken, now())
}
