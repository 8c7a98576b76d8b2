package store

import (
	"time"

	"github.com/shinjadong/careon-blog-ai/internal/catalog"
)

// CalibrationMethod records how a coordinate was obtained.
type CalibrationMethod string

const (
	MethodUserClick   CalibrationMethod = "user_click"
	MethodManualInput CalibrationMethod = "manual_input"
	MethodAIVision    CalibrationMethod = "ai_vision"
	MethodDefault     CalibrationMethod = "default"
)

// DeviceProfile represents one class of physical device sharing model and
// screen resolution. Multiple physical units map to the same profile.
type DeviceProfile struct {
	ProfileID    string `json:"profile_id"`
	Model        string `json:"model"`
	Manufacturer string `json:"manufacturer"`
	OSVersion    string `json:"os_version"`

	Width  int `json:"width"`
	Height int `json:"height"`
	DPI    int `json:"dpi"`

	// DeviceSerials lists the physical unit serials mapped to this profile.
	// The set only grows via merge.
	DeviceSerials []string `json:"device_serials"`

	Calibrated            bool    `json:"calibrated"`
	CalibrationConfidence float64 `json:"calibration_confidence"`

	Notes      string     `json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

// CoordinateRecord is one calibrated point for one element within a profile.
// At most one record exists per (profile, element kind).
type CoordinateRecord struct {
	ID        int64               `json:"id"`
	ProfileID string              `json:"profile_id"`
	Kind      catalog.ElementKind `json:"element_kind"`

	Name        string `json:"element_name"`
	Description string `json:"element_description,omitempty"`

	X int `json:"x"`
	Y int `json:"y"`

	Confidence float64 `json:"confidence"`
	// Validated flips true only once the coordinate has succeeded in real
	// use, not merely by being set.
	Validated bool `json:"validated"`

	Method       CalibrationMethod `json:"calibration_method"`
	CalibratedBy string            `json:"calibrated_by,omitempty"`
	CalibratedAt *time.Time        `json:"calibrated_at,omitempty"`

	// TouchRadius is the tap tolerance band in pixels.
	TouchRadius int `json:"touch_radius"`

	UsageCount   int `json:"usage_count"`
	SuccessCount int `json:"success_count"`
	FailCount    int `json:"fail_count"`

	Notes      string     `json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

// SuccessRate is successes over attempts, zero when the record is unused.
func (c *CoordinateRecord) SuccessRate() float64 {
	if c.UsageCount == 0 {
		return 0
	}
	return float64(c.SuccessCount) / float64(c.UsageCount)
}

// ParseCalibrationMethod validates a calibration method from external input.
func ParseCalibrationMethod(s string) (CalibrationMethod, error) {
	switch m := CalibrationMethod(s); m {
	case MethodUserClick, MethodManualInput, MethodAIVision, MethodDefault:
		return m, nil
	}
	return "", &ValidationError{Field: "calibration_method", Reason: "unknown method: " + s}
}
