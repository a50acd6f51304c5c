package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/harrison/foresight/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSweepOnce(t *testing.T) {
	c, clock := newTestController(t)
	_, err := c.CreateSession("idle")
	require.NoError(t, err)
	_, err = c.CreateSession("done")
	require.NoError(t, err)
	require.NoError(t, c.TerminateSession("done", models.TerminationShallowResponse))

	clock.advance(45 * time.Minute)
	_, err = c.CreateSession("fresh")
	require.NoError(t, err)

	sw := NewSweeper(c, NewLocks(), 30*time.Minute, time.Minute, nil)
	sw.now = clock.now

	res := sw.SweepOnce()
	assert.Equal(t, SweepResult{Abandoned: 1, Evicted: 1}, res)

	idle, err := c.Get("idle")
	require.NoError(t, err)
	assert.Equal(t, models.StatusTerminated, idle.Status)
	assert.Equal(t, models.TerminationAbandoned, idle.TerminationReason)

	_, err = c.Get("done")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	fresh, err := c.Get("fresh")
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, fresh.Status)

	// The abandoned session is evicted once it has been idle again.
	clock.advance(31 * time.Minute)
	res = sw.SweepOnce()
	assert.Equal(t, 1, res.Evicted)
	_, err = c.Get("idle")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSweepSkipsLockedSessions(t *testing.T) {
	c, clock := newTestController(t)
	_, err := c.CreateSession("busy")
	require.NoError(t, err)
	clock.advance(time.Hour)

	locks := NewLocks()
	release, err := locks.Lock(context.Background(), "busy")
	require.NoError(t, err)
	defer release()

	sw := NewSweeper(c, locks, 30*time.Minute, time.Minute, nil)
	sw.now = clock.now

	assert.Equal(t, SweepResult{}, sw.SweepOnce())
	busy, _ := c.Get("busy")
	assert.Equal(t, models.StatusActive, busy.Status)
}

func TestSweeperRunStopsOnCancel(t *testing.T) {
	c, _ := newTestController(t)
	sw := NewSweeper(c, nil, time.Minute, time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sw.Run(ctx) }()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

// staleListStore runs afterList once, right after taking the List snapshot,
// to model a turn landing between the sweeper's listing and its lock.
type staleListStore struct {
	*MemoryStore
	afterList func()
}

func (s *staleListStore) List() []*models.Session {
	snapshot := s.MemoryStore.List()
	if f := s.afterList; f != nil {
		s.afterList = nil
		f()
	}
	return snapshot
}

func TestSweepRechecksIdlenessAfterListing(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	store := &staleListStore{MemoryStore: NewMemoryStore()}
	c := NewController(store, WithClock(clock.now))

	_, err := c.CreateSession("s1")
	require.NoError(t, err)
	_, err = c.CreateSession("done")
	require.NoError(t, err)
	require.NoError(t, c.TerminateSession("done", models.TerminationShallowResponse))
	clock.advance(45 * time.Minute)

	store.afterList = func() {
		_, err := c.AdvanceTurn("s1")
		require.NoError(t, err)
		require.NoError(t, c.RecordDecisionGravity("done", 0.2))
	}

	sw := NewSweeper(c, NewLocks(), 30*time.Minute, time.Minute, nil)
	sw.now = clock.now

	assert.Equal(t, SweepResult{}, sw.SweepOnce())

	s, err := c.Get("s1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, s.Status)
	assert.Equal(t, 1, s.CurrentTurn)
	assert.True(t, s.CanContinue())

	_, err = c.Get("done")
	assert.NoError(t, err, "a session touched after listing is not evicted")
}

func TestAbandonIfIdle(t *testing.T) {
	c, clock := newTestController(t)
	_, err := c.CreateSession("s1")
	require.NoError(t, err)

	ok, err := c.AbandonIfIdle("s1", clock.now())
	require.NoError(t, err)
	assert.False(t, ok, "updated at the cutoff is not idle")

	clock.advance(time.Minute)
	ok, err = c.AbandonIfIdle("s1", clock.now())
	require.NoError(t, err)
	assert.True(t, ok)

	s, err := c.Get("s1")
	require.NoError(t, err)
	assert.Equal(t, models.TerminationAbandoned, s.TerminationReason)
	require.NotNil(t, s.Metrics.AbandonmentTurn)

	clock.advance(time.Minute)
	ok, err = c.AbandonIfIdle("s1", clock.now())
	require.NoError(t, err)
	assert.False(t, ok, "terminal sessions are left as they are")

	_, err = c.AbandonIfIdle("missing", clock.now())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
