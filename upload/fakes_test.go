package upload_test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/matijaslevang/spotminify/catalog"
	"github.com/matijaslevang/spotminify/media"
	"github.com/matijaslevang/spotminify/progress"
)

var errInjected = errors.New("injected failure")

// recorder collects every call made to the collaborators in order.
type recorder struct {
	mux   sync.Mutex
	calls []string
}

func (r *recorder) add(format string, args ...any) {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recorder) Calls() []string {
	r.mux.Lock()
	defer r.mux.Unlock()

	return append([]string(nil), r.calls...)
}

type fakePresigner struct {
	rec  *recorder
	fail map[string]bool
}

func (f *fakePresigner) Presign(_ context.Context, _ zerolog.Logger, req catalog.PresignRequest) (*catalog.Ticket, error) {
	f.rec.add("presign %s %s %s", req.Bucket, req.FileName, req.ContentType)
	if f.fail[req.FileName] {
		return nil, errInjected
	}

	return &catalog.Ticket{
		URL:    "https://storage.example/" + req.FileName + "?sig",
		Key:    string(req.Bucket) + "/" + req.FileName,
		Bucket: string(req.Bucket),
	}, nil
}

type fakeTransferrer struct {
	rec  *recorder
	fail map[string]bool
}

func (f *fakeTransferrer) Put(_ context.Context, _ zerolog.Logger, url string, file *media.File, counter *progress.Counter) error {
	f.rec.add("put %s", url)
	if f.fail[file.Name] {
		return errInjected
	}

	if nil != counter {
		counter.Reset()
		_, _ = counter.Reader(zeroReader{n: file.Size}).Read(make([]byte, file.Size))
	}

	return nil
}

type zeroReader struct {
	n int64
}

func (z zeroReader) Read(p []byte) (int, error) {
	n := min(int64(len(p)), z.n)
	return int(n), nil
}

type fakeCommitter struct {
	rec     *recorder
	err     error
	block   chan struct{}
	entered chan struct{}

	mux          sync.Mutex
	singles      []catalog.SinglePayload
	albums       []catalog.AlbumPayload
	singlePatch  []catalog.SinglePatch
	albumPatches []catalog.AlbumPatch
}

func (f *fakeCommitter) wait() {
	if nil != f.entered {
		f.entered <- struct{}{}
	}
	if nil != f.block {
		<-f.block
	}
}

func (f *fakeCommitter) CreateSingle(_ context.Context, _ zerolog.Logger, p catalog.SinglePayload) (*catalog.CommitResponse, error) {
	f.rec.add("commit single")
	f.wait()
	if nil != f.err {
		return nil, f.err
	}

	f.mux.Lock()
	defer f.mux.Unlock()
	f.singles = append(f.singles, p)

	return &catalog.CommitResponse{ContentID: "s-1"}, nil //nolint:exhaustruct
}

func (f *fakeCommitter) CreateAlbum(_ context.Context, _ zerolog.Logger, p catalog.AlbumPayload) (*catalog.CommitResponse, error) {
	f.rec.add("commit album")
	f.wait()
	if nil != f.err {
		return nil, f.err
	}

	f.mux.Lock()
	defer f.mux.Unlock()
	f.albums = append(f.albums, p)

	return &catalog.CommitResponse{AlbumID: "a-1"}, nil //nolint:exhaustruct
}

func (f *fakeCommitter) UpdateSingle(_ context.Context, _ zerolog.Logger, id string, p catalog.SinglePatch) (*catalog.CommitResponse, error) {
	f.rec.add("update single %s", id)
	if nil != f.err {
		return nil, f.err
	}

	f.mux.Lock()
	defer f.mux.Unlock()
	f.singlePatch = append(f.singlePatch, p)

	return &catalog.CommitResponse{Message: "Single " + id + " updated successfully"}, nil //nolint:exhaustruct
}

func (f *fakeCommitter) UpdateAlbum(_ context.Context, _ zerolog.Logger, id string, p catalog.AlbumPatch) (*catalog.CommitResponse, error) {
	f.rec.add("update album %s", id)
	if nil != f.err {
		return nil, f.err
	}

	f.mux.Lock()
	defer f.mux.Unlock()
	f.albumPatches = append(f.albumPatches, p)

	return &catalog.CommitResponse{AlbumID: id, Message: "Album successfully updated"}, nil //nolint:exhaustruct
}

type fakeArtists struct {
	rec *recorder
	err error
}

func (f *fakeArtists) Artists(context.Context, zerolog.Logger) ([]catalog.Artist, error) {
	f.rec.add("artists")
	if nil != f.err {
		return nil, f.err
	}

	return []catalog.Artist{
		{ID: "a1", Name: "First"},  //nolint:exhaustruct
		{ID: "a2", Name: "Second"}, //nolint:exhaustruct
	}, nil
}

func audioFile(name string) *media.File {
	return &media.File{Path: "/music/" + name, Name: name, ContentType: "audio/mpeg", Size: 100, Category: media.CategoryAudio}
}

func imageFile(name string) *media.File {
	return &media.File{Path: "/images/" + name, Name: name, ContentType: "image/jpeg", Size: 20, Category: media.CategoryImage}
}
