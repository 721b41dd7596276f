package upload

import (
	"sync"

	"golang.org/x/sync/semaphore"
)

// Guard admits one submission at a time.
type Guard struct {
	sem *semaphore.Weighted
}

func NewGuard() *Guard {
	return &Guard{sem: semaphore.NewWeighted(1)}
}

// TryAcquire reports whether the guard was free. The returned release is
// safe to call more than once.
func (g *Guard) TryAcquire() (release func(), ok bool) {
	if !g.sem.TryAcquire(1) {
		return nil, false
	}

	var once sync.Once

	return func() { once.Do(func() { g.sem.Release(1) }) }, true
}
