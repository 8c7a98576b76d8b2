package calibration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorePutGetRemove(t *testing.T) {
	s := NewMemoryStore(0)
	defer s.Close()

	sess := &Session{ID: "s1", ProfileID: "p1", LastActivity: time.Now()}
	s.Put(sess)

	got, ok := s.Get("s1")
	require.True(t, ok)
	assert.Equal(t, sess, got)

	s.Remove("s1")
	_, ok = s.Get("s1")
	assert.False(t, ok)

	// removing again is fine
	s.Remove("s1")
	assert.Equal(t, 0, s.Len())
}

func TestMemoryStoreSweepExpiresIdleSessions(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	defer s.Close()

	now := time.Now()
	s.Put(&Session{ID: "fresh", LastActivity: now})
	s.Put(&Session{ID: "stale", LastActivity: now.Add(-2 * time.Minute)})

	s.sweep(now)

	_, ok := s.Get("fresh")
	assert.True(t, ok)
	_, ok = s.Get("stale")
	assert.False(t, ok, "idle session should be swept")
}

func TestMemoryStoreCloseIdempotent(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	s.Close()
	s.Close()
}

func TestSessionComplete(t *testing.T) {
	sess := &Session{CurrentStep: 0}
	assert.False(t, sess.Complete(12))
	sess.CurrentStep = 11
	assert.False(t, sess.Complete(12))
	sess.CurrentStep = 12
	assert.True(t, sess.Complete(12))
}
