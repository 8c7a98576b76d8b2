package calibration

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shinjadong/careon-blog-ai/internal/catalog"
	"github.com/shinjadong/careon-blog-ai/internal/logger"
	"github.com/shinjadong/careon-blog-ai/internal/store"
)

// CompletedConfidence is assigned to a profile once an operator has walked
// every step. All user-click calibrations are trusted equally; confidence is
// not derived per element.
const CompletedConfidence = 0.95

// StepView is what callers see of a session: its position in the workflow and
// the instructions for the step the operator is on.
type StepView struct {
	SessionID  string `json:"session_id"`
	ProfileID  string `json:"profile_id"`
	Step       int    `json:"current_step"`
	TotalSteps int    `json:"total_steps"`

	ElementKind  string `json:"element_type"`
	ElementName  string `json:"element_name"`
	Instructions string `json:"instructions"`
	HelpText     string `json:"help_text,omitempty"`

	Completed bool `json:"completed"`
}

// GuideStep is one entry of the static calibration reference guide.
type GuideStep struct {
	StepNumber   int    `json:"step_number"`
	ElementKind  string `json:"element_type"`
	ElementName  string `json:"element_name"`
	Instructions string `json:"instructions"`
	HelpText     string `json:"help_text,omitempty"`
}

// Manager drives calibration sessions. Sessions live in the injected
// SessionStore; coordinates land in the persistent store as they are
// submitted, one upsert per step.
type Manager struct {
	store    *store.Store
	sessions SessionStore
}

func NewManager(st *store.Store, sessions SessionStore) *Manager {
	return &Manager{store: st, sessions: sessions}
}

// Start opens a session for a profile in state Active(0). The profile must
// already exist.
func (m *Manager) Start(ctx context.Context, profileID, operator string) (*StepView, error) {
	if _, err := m.store.GetProfile(ctx, profileID); err != nil {
		return nil, err
	}

	now := time.Now()
	sess := &Session{
		ID:             uuid.NewString(),
		ProfileID:      profileID,
		Operator:       operator,
		CurrentStep:    0,
		CompletedSteps: []int{},
		CreatedAt:      now,
		LastActivity:   now,
	}
	m.sessions.Put(sess)

	calLog := logger.With("calibration")
	calLog.Info().
		Str("session_id", sess.ID).
		Str("profile_id", profileID).
		Str("operator", operator).
		Msg("started calibration session")

	return m.view(sess), nil
}

// Get returns the current step of a session.
func (m *Manager) Get(sessionID string) (*StepView, error) {
	sess, ok := m.sessions.Get(sessionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return m.view(sess), nil
}

// Submit accepts the clicked coordinate for the session's current step,
// persists it, and advances the session. Submitting to a complete session
// fails with ErrSessionComplete. When the final step lands, the owning
// profile is marked calibrated with CompletedConfidence.
func (m *Manager) Submit(ctx context.Context, sessionID string, x, y int) (*StepView, error) {
	sess, ok := m.sessions.Get(sessionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	elems := catalog.Elements()
	if sess.Complete(len(elems)) {
		return nil, fmt.Errorf("%w: %s", ErrSessionComplete, sessionID)
	}

	step := sess.CurrentStep
	elem := elems[step]

	if _, err := m.store.Upsert(ctx, sess.ProfileID, elem.Kind, x, y, store.MethodUserClick, sess.Operator); err != nil {
		return nil, err
	}

	sess.CompletedSteps = append(sess.CompletedSteps, step)
	sess.CurrentStep++
	sess.LastActivity = time.Now()
	m.sessions.Put(sess)

	log := logger.With("calibration")
	log.Info().
		Str("session_id", sessionID).
		Str("element", elem.Kind.String()).
		Int("x", x).
		Int("y", y).
		Msg("saved calibrated coordinate")

	if sess.Complete(len(elems)) {
		calibrated := true
		confidence := CompletedConfidence
		_, err := m.store.UpdateProfile(ctx, sess.ProfileID, store.ProfileUpdate{
			Calibrated:            &calibrated,
			CalibrationConfidence: &confidence,
		})
		if err != nil {
			return nil, err
		}
		log.Info().
			Str("session_id", sessionID).
			Str("profile_id", sess.ProfileID).
			Msg("calibration complete")
	}

	return m.view(sess), nil
}

// Cancel removes a session. Idempotent: cancelling an unknown session is
// not an error.
func (m *Manager) Cancel(sessionID string) {
	m.sessions.Remove(sessionID)
}

// Guide returns the full ordered workflow for reference display.
func (m *Manager) Guide() []GuideStep {
	elems := catalog.Elements()
	guide := make([]GuideStep, 0, len(elems))
	for i, e := range elems {
		guide = append(guide, GuideStep{
			StepNumber:   i + 1,
			ElementKind:  e.Kind.String(),
			ElementName:  e.Name,
			Instructions: e.Instructions,
			HelpText:     e.HelpText,
		})
	}
	return guide
}

func (m *Manager) view(sess *Session) *StepView {
	elems := catalog.Elements()
	v := &StepView{
		SessionID:  sess.ID,
		ProfileID:  sess.ProfileID,
		Step:       sess.CurrentStep,
		TotalSteps: len(elems),
	}
	if sess.Complete(len(elems)) {
		v.ElementKind = "completed"
		v.ElementName = "Calibration Complete"
		v.Instructions = "모든 UI 요소 좌표 설정이 완료되었습니다!"
		v.Completed = true
		return v
	}
	elem := elems[sess.CurrentStep]
	v.ElementKind = elem.Kind.String()
	v.ElementName = elem.Name
	v.Instructions = elem.Instructions
	v.HelpText = elem.HelpText
	return v
}
