package automation

// RetryStrategy decides where the next attempt picks up after a failure.
type RetryStrategy interface {
	// NextStart returns the step index the next attempt starts from, given
	// the index of the step that failed.
	NextStart(failedIndex int) int
}

// RestartAll replays the entire sequence from step 1 after any failure. The
// UI state after a partial failure is unknown, so starting over is the safe
// default, at the cost of possibly repeating side effects of steps that had
// already taken hold (a publish that landed before a later step failed will
// land again).
type RestartAll struct{}

func (RestartAll) NextStart(int) int { return 0 }

// ResumeFromStep retries from the step that failed, assuming the UI is still
// in the state the previous steps left it. Cheaper when failures are pure
// timing glitches; wrong when the failure changed screens.
type ResumeFromStep struct{}

func (ResumeFromStep) NextStart(failedIndex int) int {
	if failedIndex < 0 {
		return 0
	}
	return failedIndex
}
