package calibration

import (
	"sync"
	"time"

	"github.com/shinjadong/careon-blog-ai/internal/logger"
)

// MemoryStore keeps sessions in a mutex-guarded map and sweeps out sessions
// idle for longer than the configured TTL. A TTL of zero disables expiry.
type MemoryStore struct {
	ttl time.Duration

	mu       sync.Mutex
	sessions map[string]*Session

	stop     chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore creates a session store. When ttl > 0 a background sweep
// removes idle sessions; call Close to stop it.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	s := &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]*Session),
		stop:     make(chan struct{}),
	}
	if ttl > 0 {
		go s.sweepLoop()
	}
	return s
}

func (s *MemoryStore) Put(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
}

func (s *MemoryStore) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *MemoryStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len returns the number of live sessions.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Close stops the sweep goroutine. Safe to call more than once.
func (s *MemoryStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *MemoryStore) sweepLoop() {
	interval := s.ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.sweep(now)
		}
	}
}

func (s *MemoryStore) sweep(now time.Time) {
	log := logger.With("calibration")
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if now.Sub(sess.LastActivity) > s.ttl {
			delete(s.sessions, id)
			log.Info().
				Str("session_id", id).
				Str("profile_id", sess.ProfileID).
				Msg("expired idle calibration session")
		}
	}
}
