package automation

import (
	"fmt"

	"github.com/shinjadong/careon-blog-ai/internal/catalog"
)

// MissingCoordinateError reports a pre-flight failure: a required element has
// no coordinate for the profile, so the run never starts tapping.
type MissingCoordinateError struct {
	ProfileID string
	Kind      catalog.ElementKind
}

func (e *MissingCoordinateError) Error() string {
	return fmt.Sprintf("no coordinate for required element %s in profile %s", e.Kind, e.ProfileID)
}

// StepExecutionError wraps the device failure that aborted a hard step.
type StepExecutionError struct {
	StepID string
	Err    error
}

func (e *StepExecutionError) Error() string {
	return fmt.Sprintf("step %s failed: %v", e.StepID, e.Err)
}

func (e *StepExecutionError) Unwrap() error { return e.Err }

// RetryExhaustedError reports that every posting attempt failed. It carries
// the final attempt's result.
type RetryExhaustedError struct {
	Attempts int
	Last     *PostingResult
}

func (e *RetryExhaustedError) Error() string {
	if e.Last != nil && e.Last.FailedStep != "" {
		return fmt.Sprintf("all %d posting attempts failed, last at step %s", e.Attempts, e.Last.FailedStep)
	}
	return fmt.Sprintf("all %d posting attempts failed", e.Attempts)
}

// DeviceConnectionError reports that the device channel could not be
// established, as opposed to a tap that failed on a live channel.
type DeviceConnectionError struct {
	Serial string
	Err    error
}

func (e *DeviceConnectionError) Error() string {
	return fmt.Sprintf("device %s unreachable: %v", e.Serial, e.Err)
}

func (e *DeviceConnectionError) Unwrap() error { return e.Err }
