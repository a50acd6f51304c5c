package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocksSerializePerSession(t *testing.T) {
	locks := NewLocks()
	var (
		mu      sync.Mutex
		active  int
		maxSeen int
		wg      sync.WaitGroup
	)

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locks.Lock(context.Background(), "s1")
			require.NoError(t, err)
			defer release()

			mu.Lock()
			active++
			if active > maxSeen {
				maxSeen = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Equal(t, 0, locks.Len(), "idle entries are removed")
}

func TestLocksIndependentSessions(t *testing.T) {
	locks := NewLocks()

	releaseA, err := locks.Lock(context.Background(), "a")
	require.NoError(t, err)
	defer releaseA()

	ok, releaseB := locks.TryLock("b")
	require.True(t, ok)
	releaseB()

	ok, _ = locks.TryLock("a")
	assert.False(t, ok)
	assert.True(t, locks.IsHeld("a"))
	assert.False(t, locks.IsHeld("b"))
}

func TestLockRespectsContext(t *testing.T) {
	locks := NewLocks()
	release, err := locks.Lock(context.Background(), "s1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = locks.Lock(ctx, "s1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	release()
	release() // second call is a no-op
	assert.Equal(t, 0, locks.Len())
}
