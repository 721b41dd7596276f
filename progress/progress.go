package progress

import (
	"io"
	"math"
	"sync/atomic"
)

// Counter tracks bytes read from a single transfer body.
type Counter struct {
	Size        int64
	transferred atomic.Int64
}

func NewCounter(size int64) *Counter {
	return &Counter{Size: size} //nolint:exhaustruct
}

// Reader wraps r so every byte read from it is counted.
func (c *Counter) Reader(r io.Reader) io.Reader {
	return &countingReader{r: r, c: c}
}

func (c *Counter) Transferred() int64 {
	return c.transferred.Load()
}

func (c *Counter) Reset() {
	c.transferred.Store(0)
}

func (c *Counter) Percent() int {
	return percent(c.transferred.Load(), c.Size)
}

type countingReader struct {
	r io.Reader
	c *Counter
}

func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	r.c.transferred.Add(int64(n))

	return n, err
}

// BatchMonitor aggregates the counters of every asset in one submission.
// Slots are filled before transfers start and are read concurrently after.
type BatchMonitor struct {
	total    int64
	counters []*Counter
}

func NewBatchMonitor(size int) *BatchMonitor {
	return &BatchMonitor{
		total:    0,
		counters: make([]*Counter, size),
	}
}

func (m *BatchMonitor) Set(i int, c *Counter) {
	if prev := m.counters[i]; nil != prev {
		m.total -= prev.Size
	}
	m.total += c.Size
	m.counters[i] = c
}

func (m *BatchMonitor) At(i int) *Counter {
	return m.counters[i]
}

func (m *BatchMonitor) Total() int64 {
	return m.total
}

func (m *BatchMonitor) Transferred() int64 {
	var transferred int64
	for _, c := range m.counters {
		if nil != c {
			transferred += c.Transferred()
		}
	}

	return transferred
}

func (m *BatchMonitor) Percent() int {
	return percent(m.Transferred(), m.total)
}

func percent(done, total int64) int {
	if total <= 0 {
		return 100
	}

	return min(100, int(math.Floor(float64(done)/float64(total)*100)))
}
