// Package calibration implements the interactive, step-by-step workflow that
// records real pixel coordinates for every catalog element of a profile.
package calibration

import (
	"errors"
	"time"
)

// ErrSessionNotFound reports a lookup for an unknown or expired session.
var ErrSessionNotFound = errors.New("calibration session not found")

// ErrSessionComplete reports a submission against a finished session.
var ErrSessionComplete = errors.New("calibration session already complete")

// Session is transient workflow state. It lives only in the session store and
// is never persisted.
type Session struct {
	ID        string
	ProfileID string
	Operator  string

	// CurrentStep is the 0-based catalog index the operator is on. It only
	// moves forward, by exactly one per accepted submission.
	CurrentStep    int
	CompletedSteps []int

	CreatedAt    time.Time
	LastActivity time.Time
}

// Complete reports whether every catalog step has been submitted.
func (s *Session) Complete(totalSteps int) bool {
	return s.CurrentStep >= totalSteps
}

// SessionStore holds active sessions. Implementations own expiry policy;
// the manager never assumes a session it created is still there.
type SessionStore interface {
	Put(s *Session)
	Get(id string) (*Session, bool)
	// Remove is idempotent; removing an absent session is not an error.
	Remove(id string)
}
