package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shinjadong/careon-blog-ai/internal/calibration"
	"github.com/shinjadong/careon-blog-ai/internal/store"
	"github.com/shinjadong/careon-blog-ai/pkg/types"
)

// Resolution is the nested width/height pair in profile responses.
type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ProfileResponse is the API view of a device profile.
type ProfileResponse struct {
	ProfileID             string     `json:"profile_id"`
	Model                 string     `json:"model"`
	Manufacturer          string     `json:"manufacturer"`
	OSVersion             string     `json:"os_version"`
	Resolution            Resolution `json:"resolution"`
	DPI                   int        `json:"dpi"`
	DeviceSerials         []string   `json:"device_ids"`
	Calibrated            bool       `json:"calibrated"`
	CalibrationConfidence float64    `json:"calibration_confidence"`
	Notes                 string     `json:"notes,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
	LastUsedAt            *time.Time `json:"last_used_at,omitempty"`
	CoordinateCount       int        `json:"coordinate_count"`
}

func toProfileResponse(p *store.DeviceProfile, coordCount int) ProfileResponse {
	return ProfileResponse{
		ProfileID:             p.ProfileID,
		Model:                 p.Model,
		Manufacturer:          p.Manufacturer,
		OSVersion:             p.OSVersion,
		Resolution:            Resolution{Width: p.Width, Height: p.Height},
		DPI:                   p.DPI,
		DeviceSerials:         p.DeviceSerials,
		Calibrated:            p.Calibrated,
		CalibrationConfidence: p.CalibrationConfidence,
		Notes:                 p.Notes,
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
		LastUsedAt:            p.LastUsedAt,
		CoordinateCount:       coordCount,
	}
}

// Point is the nested x/y pair in coordinate responses.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// UsageStats is the nested usage block in coordinate responses.
type UsageStats struct {
	UsageCount   int     `json:"usage_count"`
	SuccessCount int     `json:"success_count"`
	FailCount    int     `json:"fail_count"`
	SuccessRate  float64 `json:"success_rate"`
}

// CoordinateResponse is the API view of a coordinate record.
type CoordinateResponse struct {
	ID                 int64      `json:"id"`
	ProfileID          string     `json:"profile_id"`
	ElementKind        string     `json:"element_type"`
	ElementName        string     `json:"element_name"`
	ElementDescription string     `json:"element_description,omitempty"`
	Coordinates        Point      `json:"coordinates"`
	Confidence         float64    `json:"confidence"`
	Validated          bool       `json:"validated"`
	CalibrationMethod  string     `json:"calibration_method"`
	CalibratedBy       string     `json:"calibrated_by,omitempty"`
	CalibratedAt       *time.Time `json:"calibrated_at,omitempty"`
	TouchRadius        int        `json:"touch_radius"`
	UsageStats         UsageStats `json:"usage_stats"`
	Notes              string     `json:"notes,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	LastUsedAt         *time.Time `json:"last_used_at,omitempty"`
}

func toCoordinateResponse(c *store.CoordinateRecord) CoordinateResponse {
	return CoordinateResponse{
		ID:                 c.ID,
		ProfileID:          c.ProfileID,
		ElementKind:        c.Kind.String(),
		ElementName:        c.Name,
		ElementDescription: c.Description,
		Coordinates:        Point{X: c.X, Y: c.Y},
		Confidence:         c.Confidence,
		Validated:          c.Validated,
		CalibrationMethod:  string(c.Method),
		CalibratedBy:       c.CalibratedBy,
		CalibratedAt:       c.CalibratedAt,
		TouchRadius:        c.TouchRadius,
		UsageStats: UsageStats{
			UsageCount:   c.UsageCount,
			SuccessCount: c.SuccessCount,
			FailCount:    c.FailCount,
			SuccessRate:  c.SuccessRate(),
		},
		Notes:      c.Notes,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
		LastUsedAt: c.LastUsedAt,
	}
}

// respondError translates domain errors into status codes: validation to 400,
// not-found to 404, duplicates to 409, everything else to 500.
func respondError(c *gin.Context, err error) {
	switch {
	case store.IsValidation(err):
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
	case errors.Is(err, store.ErrProfileNotFound),
		errors.Is(err, store.ErrCoordinateNotFound),
		errors.Is(err, calibration.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: err.Error()})
	case errors.Is(err, store.ErrDuplicateElement):
		c.JSON(http.StatusConflict, types.ErrorResponse{Error: err.Error()})
	case errors.Is(err, calibration.ErrSessionComplete):
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: err.Error()})
	}
}
