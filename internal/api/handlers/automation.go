package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shinjadong/careon-blog-ai/internal/adb"
	"github.com/shinjadong/careon-blog-ai/internal/automation"
	"github.com/shinjadong/careon-blog-ai/internal/config"
	"github.com/shinjadong/careon-blog-ai/internal/logger"
	"github.com/shinjadong/careon-blog-ai/internal/profile"
	"github.com/shinjadong/careon-blog-ai/internal/store"
	"github.com/shinjadong/careon-blog-ai/pkg/types"
)

// ControllerFactory builds a device controller for a serial. Production wires
// it to adb; tests substitute fakes.
type ControllerFactory func(serial string) automation.DeviceController

// AutomationHandler serves posting execution.
type AutomationHandler struct {
	cfg      *config.Config
	registry *profile.Registry
	store    *store.Store
	factory  ControllerFactory
}

func NewAutomationHandler(cfg *config.Config, registry *profile.Registry, st *store.Store, factory ControllerFactory) *AutomationHandler {
	if factory == nil {
		factory = func(serial string) automation.DeviceController {
			return adb.NewController(cfg.ADBPath, serial, cfg.ADBTimeout)
		}
	}
	return &AutomationHandler{cfg: cfg, registry: registry, store: st, factory: factory}
}

// PostBlogRequest is the POST body for running the posting sequence.
type PostBlogRequest struct {
	DeviceSerial string   `json:"device_id" binding:"required"`
	ProfileID    string   `json:"profile_id"`
	Title        string   `json:"title" binding:"required"`
	Content      string   `json:"content" binding:"required"`
	Images       []string `json:"images"`
}

// PostBlogResponse mirrors the result of a posting run.
type PostBlogResponse struct {
	Success          bool    `json:"success"`
	BlogURL          string  `json:"blog_url,omitempty"`
	ErrorMessage     string  `json:"error_message,omitempty"`
	StepsCompleted   int     `json:"steps_completed"`
	TotalSteps       int     `json:"total_steps"`
	ExecutionSeconds float64 `json:"execution_time"`
	FailedStep       string  `json:"failed_step,omitempty"`
}

func toPostBlogResponse(r *automation.PostingResult) PostBlogResponse {
	return PostBlogResponse{
		Success:          r.Success,
		BlogURL:          r.BlogURL,
		ErrorMessage:     r.ErrorMessage,
		StepsCompleted:   r.StepsCompleted,
		TotalSteps:       r.TotalSteps,
		ExecutionSeconds: r.ExecutionSeconds(),
		FailedStep:       r.FailedStep,
	}
}

// PostBlog handles POST /api/v1/automation/post. When profile_id is omitted
// the device is probed over adb and its profile resolved (created and seeded
// with defaults if unseen).
func (h *AutomationHandler) PostBlog(c *gin.Context) {
	var req PostBlogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
		return
	}

	ctx := c.Request.Context()
	var (
		prof *store.DeviceProfile
		err  error
	)
	if req.ProfileID != "" {
		prof, err = h.registry.Get(ctx, req.ProfileID)
	} else {
		ctrl := adb.NewController(h.cfg.ADBPath, req.DeviceSerial, h.cfg.ADBTimeout)
		var info profile.DeviceInfo
		info, err = ctrl.StaticInfo(ctx)
		if err == nil {
			prof, err = h.registry.GetOrCreate(ctx, info)
		}
	}
	if err != nil {
		respondError(c, err)
		return
	}

	exec := automation.NewExecutor(h.factory(req.DeviceSerial), h.store, prof, h.cfg.MaxRetries)
	result, err := exec.ExecuteWithRetry(ctx, req.Title, req.Content, req.Images)
	if err != nil {
		var missing *automation.MissingCoordinateError
		if errors.As(err, &missing) {
			c.JSON(http.StatusConflict, types.ErrorResponse{Error: missing.Error()})
			return
		}
		if result != nil {
			// Retries exhausted: report the final attempt in-band.
			apiLog := logger.With("api")
			apiLog.Warn().
				Str("device_id", req.DeviceSerial).
				Str("failed_step", result.FailedStep).
				Msg("posting failed after all retries")
			c.JSON(http.StatusOK, toPostBlogResponse(result))
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPostBlogResponse(result))
}
