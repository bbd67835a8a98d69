package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/runterra/territory-backend/internal/service"
	"github.com/runterra/territory-backend/pkg/response"
)

// ZoneHandler handles HTTP requests for zone ownership and geometry
type ZoneHandler struct {
	ownershipService *service.OwnershipService
}

// NewZoneHandler creates a new zone handler
func NewZoneHandler(ownershipService *service.OwnershipService) *ZoneHandler {
	return &ZoneHandler{ownershipService: ownershipService}
}

// cycleKeyParam resolves the cycleKey query parameter, defaulting to the
// current cycle.
func (h *ZoneHandler) cycleKeyParam(c *gin.Context) string {
	if key := c.Query("cycleKey"); key != "" {
		return key
	}
	return h.ownershipService.CurrentCycle().Key
}

// GetOwnership handles GET /api/v1/zones/ownership
func (h *ZoneHandler) GetOwnership(c *gin.Context) {
	cycleKey := h.cycleKeyParam(c)

	ownerships, err := h.ownershipService.GetOwnership(cycleKey)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"cycleKey": cycleKey,
		"data":     ownerships,
		"count":    len(ownerships),
	})
}

// RecomputeOwnership handles POST /api/v1/zones/ownership/recompute
func (h *ZoneHandler) RecomputeOwnership(c *gin.Context) {
	cycleKey := h.cycleKeyParam(c)

	owned, err := h.ownershipService.RecomputeCycle(cycleKey)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"cycleKey":   cycleKey,
		"cellsOwned": owned,
	})
}

// GetLeaderboard handles GET /api/v1/zones/leaderboard
func (h *ZoneHandler) GetLeaderboard(c *gin.Context) {
	cycleKey := h.cycleKeyParam(c)

	entries, err := h.ownershipService.Leaderboard(cycleKey)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"cycleKey": cycleKey,
		"data":     entries,
		"count":    len(entries),
	})
}

// GetBoundary handles GET /api/v1/zones/boundary/:h3Index
func (h *ZoneHandler) GetBoundary(c *gin.Context) {
	boundary, err := h.ownershipService.Boundary(c.Param("h3Index"))
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, boundary)
}
