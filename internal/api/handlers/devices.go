package handlers

import (
	"encoding/base64"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shinjadong/careon-blog-ai/internal/adb"
	"github.com/shinjadong/careon-blog-ai/internal/catalog"
	"github.com/shinjadong/careon-blog-ai/internal/config"
	"github.com/shinjadong/careon-blog-ai/internal/profile"
	"github.com/shinjadong/careon-blog-ai/internal/store"
	"github.com/shinjadong/careon-blog-ai/pkg/types"
)

// DeviceHandler serves device scanning, profile CRUD and coordinate CRUD.
type DeviceHandler struct {
	cfg      *config.Config
	registry *profile.Registry
	store    *store.Store
}

func NewDeviceHandler(cfg *config.Config, registry *profile.Registry, st *store.Store) *DeviceHandler {
	return &DeviceHandler{cfg: cfg, registry: registry, store: st}
}

// ScanDevices handles GET /api/v1/devices/scan.
func (h *DeviceHandler) ScanDevices(c *gin.Context) {
	infos, err := adb.Scan(c.Request.Context(), h.cfg.ADBPath, h.cfg.ADBTimeout)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "failed to scan devices: " + err.Error()})
		return
	}
	if len(infos) == 0 {
		c.JSON(http.StatusNotFound, types.ErrorResponse{
			Error: "no devices found; check USB connection and that USB debugging is enabled",
		})
		return
	}
	c.JSON(http.StatusOK, infos)
}

// ConnectDevice handles POST /api/v1/devices/connect/:serial. It reads the
// device's static info and resolves (or creates) its profile.
func (h *DeviceHandler) ConnectDevice(c *gin.Context) {
	serial := c.Param("serial")
	ctrl := adb.NewController(h.cfg.ADBPath, serial, h.cfg.ADBTimeout)

	ctx := c.Request.Context()
	if err := ctrl.Connect(ctx); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "failed to connect to device: " + err.Error()})
		return
	}

	info, err := ctrl.StaticInfo(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "failed to read device info: " + err.Error()})
		return
	}

	p, err := h.registry.GetOrCreate(ctx, info)
	if err != nil {
		respondError(c, err)
		return
	}

	coords, err := h.store.ListCoordinates(ctx, p.ProfileID, nil)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProfileResponse(p, len(coords)))
}

// ListProfiles handles GET /api/v1/devices/profiles with skip/limit paging.
func (h *DeviceHandler) ListProfiles(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if skip < 0 || limit <= 0 {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "skip must be >= 0 and limit > 0"})
		return
	}

	ctx := c.Request.Context()
	profiles, total, err := h.registry.List(ctx, skip, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]ProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		coords, err := h.store.ListCoordinates(ctx, p.ProfileID, nil)
		if err != nil {
			respondError(c, err)
			return
		}
		responses = append(responses, toProfileResponse(p, len(coords)))
	}

	c.JSON(http.StatusOK, gin.H{"total": total, "devices": responses})
}

// GetProfile handles GET /api/v1/devices/profiles/:id.
func (h *DeviceHandler) GetProfile(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := h.registry.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	coords, err := h.store.ListCoordinates(ctx, p.ProfileID, nil)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProfileResponse(p, len(coords)))
}

// UpdateProfileRequest is the PATCH body for profile updates.
type UpdateProfileRequest struct {
	Notes                 *string  `json:"notes"`
	Calibrated            *bool    `json:"calibrated"`
	CalibrationConfidence *float64 `json:"calibration_confidence"`
}

// UpdateProfile handles PATCH /api/v1/devices/profiles/:id.
func (h *DeviceHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
		return
	}

	ctx := c.Request.Context()
	p, err := h.registry.Update(ctx, c.Param("id"), store.ProfileUpdate{
		Notes:                 req.Notes,
		Calibrated:            req.Calibrated,
		CalibrationConfidence: req.CalibrationConfidence,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	coords, err := h.store.ListCoordinates(ctx, p.ProfileID, nil)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProfileResponse(p, len(coords)))
}

// DeleteProfile handles DELETE /api/v1/devices/profiles/:id, cascading to the
// profile's coordinates.
func (h *DeviceHandler) DeleteProfile(c *gin.Context) {
	if err := h.registry.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListCoordinates handles GET /api/v1/devices/profiles/:id/coordinates, with
// an optional element_type filter. Deprecated element aliases are accepted
// and canonicalized here.
func (h *DeviceHandler) ListCoordinates(c *gin.Context) {
	ctx := c.Request.Context()
	profileID := c.Param("id")
	if _, err := h.registry.Get(ctx, profileID); err != nil {
		respondError(c, err)
		return
	}

	var kindFilter *catalog.ElementKind
	if raw := c.Query("element_type"); raw != "" {
		kind, err := catalog.ParseElementKind(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
			return
		}
		kindFilter = &kind
	}

	coords, err := h.store.ListCoordinates(ctx, profileID, kindFilter)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]CoordinateResponse, 0, len(coords))
	for _, coord := range coords {
		responses = append(responses, toCoordinateResponse(coord))
	}
	c.JSON(http.StatusOK, gin.H{"total": len(responses), "coordinates": responses})
}

// CreateCoordinateRequest is the POST body for manual coordinate creation.
type CreateCoordinateRequest struct {
	ProfileID          string `json:"profile_id" binding:"required"`
	ElementKind        string `json:"element_type" binding:"required"`
	ElementName        string `json:"element_name" binding:"required"`
	ElementDescription string `json:"element_description"`
	X                  int    `json:"x"`
	Y                  int    `json:"y"`
	Confidence         float64 `json:"confidence"`
	CalibrationMethod  string  `json:"calibration_method"`
	CalibratedBy       string  `json:"calibrated_by"`
	TouchRadius        int     `json:"touch_radius"`
	Notes              string  `json:"notes"`
}

// CreateCoordinate handles POST /api/v1/devices/coordinates. Creating an
// element that already has a record is a conflict; recalibration goes through
// the calibration session flow or PATCH.
func (h *DeviceHandler) CreateCoordinate(c *gin.Context) {
	var req CreateCoordinateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
		return
	}

	kind, err := catalog.ParseElementKind(req.ElementKind)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
		return
	}
	method := store.MethodManualInput
	if req.CalibrationMethod != "" {
		method, err = store.ParseCalibrationMethod(req.CalibrationMethod)
		if err != nil {
			respondError(c, err)
			return
		}
	}

	ctx := c.Request.Context()
	if _, err := h.registry.Get(ctx, req.ProfileID); err != nil {
		respondError(c, err)
		return
	}

	touchRadius := req.TouchRadius
	if touchRadius == 0 {
		touchRadius = 20
	}
	record := &store.CoordinateRecord{
		ProfileID:    req.ProfileID,
		Kind:         kind,
		Name:         req.ElementName,
		Description:  req.ElementDescription,
		X:            req.X,
		Y:            req.Y,
		Confidence:   req.Confidence,
		Method:       method,
		CalibratedBy: req.CalibratedBy,
		TouchRadius:  touchRadius,
		Notes:        req.Notes,
	}
	created, err := h.store.CreateCoordinate(ctx, record)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCoordinateResponse(created))
}

// UpdateCoordinateRequest is the PATCH body for coordinate updates.
type UpdateCoordinateRequest struct {
	X                 *int     `json:"x"`
	Y                 *int     `json:"y"`
	Confidence        *float64 `json:"confidence"`
	Validated         *bool    `json:"validated"`
	CalibrationMethod *string  `json:"calibration_method"`
	CalibratedBy      *string  `json:"calibrated_by"`
	TouchRadius       *int     `json:"touch_radius"`
	Notes             *string  `json:"notes"`
}

// UpdateCoordinate handles PATCH /api/v1/devices/coordinates/:id.
func (h *DeviceHandler) UpdateCoordinate(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "invalid coordinate id"})
		return
	}

	var req UpdateCoordinateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
		return
	}

	upd := store.CoordinateUpdate{
		X:            req.X,
		Y:            req.Y,
		Confidence:   req.Confidence,
		Validated:    req.Validated,
		CalibratedBy: req.CalibratedBy,
		TouchRadius:  req.TouchRadius,
		Notes:        req.Notes,
	}
	if req.CalibrationMethod != nil {
		method, err := store.ParseCalibrationMethod(*req.CalibrationMethod)
		if err != nil {
			respondError(c, err)
			return
		}
		upd.Method = &method
	}

	updated, err := h.store.UpdateCoordinate(c.Request.Context(), id, upd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCoordinateResponse(updated))
}

// DeleteCoordinate handles DELETE /api/v1/devices/coordinates/:id.
func (h *DeviceHandler) DeleteCoordinate(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "invalid coordinate id"})
		return
	}
	if err := h.store.DeleteCoordinate(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Screenshot handles GET /api/v1/devices/screenshot/:serial, returning the
// current screen as base64 PNG.
func (h *DeviceHandler) Screenshot(c *gin.Context) {
	serial := c.Param("serial")
	ctrl := adb.NewController(h.cfg.ADBPath, serial, h.cfg.ADBTimeout)

	ctx := c.Request.Context()
	if err := ctrl.Connect(ctx); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "failed to connect to device: " + err.Error()})
		return
	}
	png, err := ctrl.Screenshot(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "failed to capture screenshot: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"device_id":  serial,
		"screenshot": base64.StdEncoding.EncodeToString(png),
		"format":     "png",
	})
}
