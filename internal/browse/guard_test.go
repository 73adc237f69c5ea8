package browse_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"dealforge/internal/browse"
)

func TestGuard_NewerTicketWins(t *testing.T) {
	g := browse.NewGuard()
	first := g.Begin("s1")
	second := g.Begin("s1")

	assert.False(t, g.Current(first))
	assert.True(t, g.Current(second))

	applied := ""
	assert.False(t, g.Commit(first, func() { applied = "first" }))
	assert.True(t, g.Commit(second, func() { applied = "second" }))
	assert.Equal(t, "second", applied)
}

func TestGuard_KeysAreIndependent(t *testing.T) {
	g := browse.NewGuard()
	a := g.Begin("a")
	g.Begin("b")
	assert.True(t, g.Current(a))
}

func TestGuard_ConcurrentBeginsLeaveOneWinner(t *testing.T) {
	g := browse.NewGuard()
	tickets := make([]browse.Ticket, 50)
	var wg sync.WaitGroup
	for i := range tickets {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			tickets[i] = g.Begin("s")
		}()
	}
	wg.Wait()

	winners := 0
	for _, tk := range tickets {
		if g.Commit(tk, func() {}) {
			winners++
		}
	}
	assert.Equal(t, 1, winners)
}

func TestGuard_ReleaseForgetsFinishedKeys(t *testing.T) {
	g := browse.NewGuard()
	stale := g.Begin("s1")
	done := g.Begin("s1")

	g.Release(stale)
	assert.Equal(t, 1, g.Pending())

	assert.True(t, g.Commit(done, func() {}))
	g.Release(done)
	assert.Zero(t, g.Pending())

	// a released key starts over without reviving old tickets
	again := g.Begin("s1")
	assert.False(t, g.Commit(stale, func() { t.Fatal("stale ticket committed") }))
	assert.True(t, g.Current(again))
}
