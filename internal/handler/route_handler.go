package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/reroute/reroute-backend-go/internal/models"
	"github.com/reroute/reroute-backend-go/internal/scoring"
	"github.com/reroute/reroute-backend-go/internal/service"
	"github.com/reroute/reroute-backend-go/pkg/response"
)

// RouteHandler handles HTTP requests for route planning
type RouteHandler struct {
	routeService *service.RouteService
}

// NewRouteHandler creates a new route handler
func NewRouteHandler(routeService *service.RouteService) *RouteHandler {
	return &RouteHandler{
		routeService: routeService,
	}
}

// PlanRoute handles POST /api/v1/routes/plan
func (h *RouteHandler) PlanRoute(c *gin.Context) {
	var req models.PlanRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.routeService.PlanRoute(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrOutOfBounds) {
			response.UnprocessableEntity(c, err.Error())
			return
		}
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, result)
}

// PlanLoop handles POST /api/v1/routes/loop
func (h *RouteHandler) PlanLoop(c *gin.Context) {
	var req models.PlanLoopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.routeService.PlanLoop(c.Request.Context(), req)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, result)
}

// ListIntents handles GET /api/v1/intents
func (h *RouteHandler) ListIntents(c *gin.Context) {
	type intentInfo struct {
		Intent  models.Intent         `json:"intent"`
		Weights scoring.WeightProfile `json:"weights"`
	}

	intents := make([]intentInfo, 0, len(models.AllIntents))
	for _, intent := range models.AllIntents {
		intents = append(intents, intentInfo{
			Intent:  intent,
			Weights: scoring.ProfileFor(intent),
		})
	}

	response.Success(c, gin.H{
		"intents": intents,
		"count":   len(intents),
	})
}
