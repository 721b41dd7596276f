package progress_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matijaslevang/spotminify/progress"
)

func TestCounterReader(t *testing.T) {
	t.Parallel()

	c := progress.NewCounter(10)
	n, err := io.Copy(io.Discard, c.Reader(bytes.NewReader([]byte("01234"))))
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.Equal(t, int64(5), c.Transferred())
	assert.Equal(t, 50, c.Percent())

	c.Reset()
	assert.Equal(t, int64(0), c.Transferred())
}

func TestBatchMonitor(t *testing.T) {
	t.Parallel()

	m := progress.NewBatchMonitor(3)
	assert.Equal(t, 100, m.Percent())

	audio := progress.NewCounter(6)
	cover := progress.NewCounter(4)
	m.Set(0, audio)
	m.Set(1, cover)
	assert.Equal(t, int64(10), m.Total())
	assert.Same(t, cover, m.At(1))
	assert.Nil(t, m.At(2))
	assert.Equal(t, 0, m.Percent())

	_, err := io.Copy(io.Discard, audio.Reader(bytes.NewReader([]byte("abcdef"))))
	require.NoError(t, err)
	assert.Equal(t, 60, m.Percent())

	_, err = io.Copy(io.Discard, cover.Reader(bytes.NewReader([]byte("ghij"))))
	require.NoError(t, err)
	assert.Equal(t, 100, m.Percent())
	assert.Equal(t, int64(10), m.Transferred())

	m.Set(1, progress.NewCounter(14))
	assert.Equal(t, int64(20), m.Total())
	assert.Equal(t, 30, m.Percent())
}
