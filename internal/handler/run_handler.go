package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/runterra/territory-backend/internal/middleware"
	"github.com/runterra/territory-backend/internal/models"
	"github.com/runterra/territory-backend/internal/service"
	"github.com/runterra/territory-backend/pkg/response"
)

// RunHandler handles HTTP requests for runs
type RunHandler struct {
	runService *service.RunService
}

// NewRunHandler creates a new run handler
func NewRunHandler(runService *service.RunService) *RunHandler {
	return &RunHandler{runService: runService}
}

// Upload handles POST /api/v1/runs
func (h *RunHandler) Upload(c *gin.Context) {
	var req models.RunUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid run payload")
		return
	}

	run, err := h.runService.Upload(middleware.UserID(c), req.Points)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Created(c, run)
}

// Get handles GET /api/v1/runs/:id
func (h *RunHandler) Get(c *gin.Context) {
	run, err := h.runService.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrRunNotFound) {
			response.NotFound(c, "Run not found")
			return
		}
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, run)
}

// Finalize handles POST /api/v1/runs/:id/finalize. Safe to retry: a run
// that already reached a terminal state returns its stored result.
func (h *RunHandler) Finalize(c *gin.Context) {
	result, err := h.runService.Finalize(c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrRunNotFound) {
			response.NotFound(c, "Run not found")
			return
		}
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, result)
}

// GetPath handles GET /api/v1/runs/:id/path
func (h *RunHandler) GetPath(c *gin.Context) {
	hexes, err := h.runService.GetPath(c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrRunNotFound) {
			response.NotFound(c, "Run not found")
			return
		}
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"data":  hexes,
		"count": len(hexes),
	})
}
