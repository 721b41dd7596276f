package offline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"go.etcd.io/bbolt"
)

var (
	songsBucketName = []byte("songs")
	metaBucketName  = []byte("songs_meta")
)

// Meta describes a stored payload.
type Meta struct {
	ContentType  string    `json:"content_type"`
	Size         int64     `json:"size"`
	SourceURL    string    `json:"source_url"`
	DownloadedAt time.Time `json:"downloaded_at"`
}

type Entry struct {
	Key string
	Meta
}

// Store keeps song payloads keyed by song id in a bbolt file. The file is
// opened for each operation and its lock is held only while the transaction
// runs, so several processes can share one store. Reads take a shared lock.
type Store struct {
	path   string
	closed atomic.Bool
}

var ErrStoreClosed = errors.New("offline store is closed")

func OpenStore(path string) (*Store, error) {
	s := &Store{path: path} //nolint:exhaustruct
	if err := s.update(createBuckets); nil != err {
		return nil, fmt.Errorf("failed to create buckets: %v", err)
	}

	return s, nil
}

func createBuckets(tx *bbolt.Tx) error {
	if _, err := tx.CreateBucketIfNotExists(songsBucketName); nil != err {
		return fmt.Errorf("failed to create songs bucket: %v", err)
	}

	if _, err := tx.CreateBucketIfNotExists(metaBucketName); nil != err {
		return fmt.Errorf("failed to create songs meta bucket: %v", err)
	}

	return nil
}

func (s *Store) open(readOnly bool) (*bbolt.DB, error) {
	if s.closed.Load() {
		return nil, ErrStoreClosed
	}

	opts := &bbolt.Options{ //nolint:exhaustruct
		NoFreelistSync: true,
		ReadOnly:       readOnly,
		Timeout:        1 * time.Second,
		NoGrowSync:     false,
		FreelistType:   bbolt.FreelistArrayType,
	}
	db, err := bbolt.Open(s.path, 0o600, opts)
	if nil != err {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	return db, nil
}

func (s *Store) view(fn func(tx *bbolt.Tx) error) (err error) {
	db, err := s.open(true)
	if nil != err {
		return err
	}
	defer func() {
		if closeErr := db.Close(); nil != closeErr {
			err = errors.Join(err, fmt.Errorf("failed to close database: %v", closeErr))
		}
	}()

	return db.View(fn)
}

func (s *Store) update(fn func(tx *bbolt.Tx) error) (err error) {
	db, err := s.open(false)
	if nil != err {
		return err
	}
	defer func() {
		if closeErr := db.Close(); nil != closeErr {
			err = errors.Join(err, fmt.Errorf("failed to close database: %v", closeErr))
		}
	}()

	return db.Update(fn)
}

// Close makes every later operation fail with ErrStoreClosed.
func (s *Store) Close() error {
	s.closed.Store(true)
	return nil
}

// lookup returns the value of key and whether key exists. Empty payloads
// are valid entries.
func lookup(b *bbolt.Bucket, key string) ([]byte, bool) {
	k, v := b.Cursor().Seek([]byte(key))
	if nil == k || !bytes.Equal(k, []byte(key)) {
		return nil, false
	}

	return v, true
}

func (s *Store) Has(_ context.Context, key string) (bool, error) {
	var ok bool
	err := s.view(func(tx *bbolt.Tx) error {
		_, ok = lookup(tx.Bucket(songsBucketName), key)
		return nil
	})
	if nil != err {
		return false, fmt.Errorf("failed to look up song: %w", err)
	}

	return ok, nil
}

// Get returns the payload stored under key. The payload and meta are nil when
// there is no such key.
func (s *Store) Get(_ context.Context, key string) ([]byte, *Meta, error) {
	var (
		blob []byte
		meta *Meta
	)
	err := s.view(func(tx *bbolt.Tx) error {
		v, ok := lookup(tx.Bucket(songsBucketName), key)
		if !ok {
			return nil
		}
		blob = append(make([]byte, 0, len(v)), v...)

		meta = &Meta{} //nolint:exhaustruct
		if m := tx.Bucket(metaBucketName).Get([]byte(key)); nil != m {
			if err := json.Unmarshal(m, meta); nil != err {
				return fmt.Errorf("failed to decode song meta: %v", err)
			}
		}

		return nil
	})
	if nil != err {
		return nil, nil, fmt.Errorf("failed to load song: %w", err)
	}

	return blob, meta, nil
}

// Put replaces the payload and meta of key in one transaction.
func (s *Store) Put(_ context.Context, key string, blob []byte, meta Meta) error {
	m, err := json.Marshal(meta)
	if nil != err {
		return fmt.Errorf("failed to encode song meta: %v", err)
	}

	err = s.update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(songsBucketName).Put([]byte(key), blob); nil != err {
			return fmt.Errorf("failed to store song: %w", err)
		}

		if err := tx.Bucket(metaBucketName).Put([]byte(key), m); nil != err {
			return fmt.Errorf("failed to store song meta: %w", err)
		}

		return nil
	})
	if nil != err {
		return fmt.Errorf("failed to store song: %w", err)
	}

	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(_ context.Context, key string) error {
	err := s.update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(songsBucketName).Delete([]byte(key)); nil != err {
			return fmt.Errorf("failed to delete song: %w", err)
		}

		if err := tx.Bucket(metaBucketName).Delete([]byte(key)); nil != err {
			return fmt.Errorf("failed to delete song meta: %w", err)
		}

		return nil
	})
	if nil != err {
		return fmt.Errorf("failed to delete song: %w", err)
	}

	return nil
}

// List returns every stored entry ordered by key.
func (s *Store) List(_ context.Context) ([]Entry, error) {
	var entries []Entry
	err := s.view(func(tx *bbolt.Tx) error {
		metas := tx.Bucket(metaBucketName)

		return tx.Bucket(songsBucketName).ForEach(func(k, v []byte) error {
			e := Entry{Key: string(k), Meta: Meta{Size: int64(len(v))}} //nolint:exhaustruct
			if m := metas.Get(k); nil != m {
				if err := json.Unmarshal(m, &e.Meta); nil != err {
					return fmt.Errorf("failed to decode meta of %s: %v", string(k), err)
				}
			}
			entries = append(entries, e)

			return nil
		})
	})
	if nil != err {
		return nil, fmt.Errorf("failed to list songs: %w", err)
	}

	return entries, nil
}
