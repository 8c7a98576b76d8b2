package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shinjadong/careon-blog-ai/internal/api/middleware"
	"github.com/shinjadong/careon-blog-ai/internal/calibration"
	"github.com/shinjadong/careon-blog-ai/pkg/types"
)

// CalibrationHandler serves the interactive calibration workflow.
type CalibrationHandler struct {
	manager *calibration.Manager
}

func NewCalibrationHandler(manager *calibration.Manager) *CalibrationHandler {
	return &CalibrationHandler{manager: manager}
}

// StartSessionRequest is the POST body for opening a calibration session.
type StartSessionRequest struct {
	ProfileID string `json:"profile_id" binding:"required"`
}

// StartSession handles POST /api/v1/calibration/sessions.
func (h *CalibrationHandler) StartSession(c *gin.Context) {
	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
		return
	}

	view, err := h.manager.Start(c.Request.Context(), req.ProfileID, middleware.GetOperator(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// GetSession handles GET /api/v1/calibration/sessions/:id.
func (h *CalibrationHandler) GetSession(c *gin.Context) {
	view, err := h.manager.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// SubmitClickRequest carries the coordinate the operator tapped for the
// session's current step.
type SubmitClickRequest struct {
	X int `json:"x" binding:"min=0"`
	Y int `json:"y" binding:"min=0"`
}

// SubmitClick handles POST /api/v1/calibration/sessions/:id/click.
func (h *CalibrationHandler) SubmitClick(c *gin.Context) {
	var req SubmitClickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
		return
	}

	view, err := h.manager.Submit(c.Request.Context(), c.Param("id"), req.X, req.Y)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// CancelSession handles DELETE /api/v1/calibration/sessions/:id. Cancelling an
// already-expired or unknown session succeeds.
func (h *CalibrationHandler) CancelSession(c *gin.Context) {
	h.manager.Cancel(c.Param("id"))
	c.JSON(http.StatusOK, types.SuccessResponse{Success: true})
}

// Guide handles GET /api/v1/calibration/guide, the static step reference.
func (h *CalibrationHandler) Guide(c *gin.Context) {
	steps := h.manager.Guide()
	c.JSON(http.StatusOK, gin.H{"total_steps": len(steps), "steps": steps})
}
