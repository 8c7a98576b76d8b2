package automation

import "time"

// PostingResult is the outcome of one posting execution.
type PostingResult struct {
	Success      bool   `json:"success"`
	BlogURL      string `json:"blog_url,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`

	StepsCompleted int `json:"steps_completed"`
	TotalSteps     int `json:"total_steps"`

	// ExecutionTime is wall clock from start to return.
	ExecutionTime time.Duration `json:"-"`

	// FailedStep names the hard step that aborted the run, empty on success
	// or on infrastructure failures that never reached a step.
	FailedStep string `json:"failed_step,omitempty"`
}

// ExecutionSeconds reports the wall-clock duration in seconds for API output.
func (r *PostingResult) ExecutionSeconds() float64 {
	return r.ExecutionTime.Seconds()
}
