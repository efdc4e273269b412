package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/siteforge/content-pipeline/internal/service"
)

// MarketingHandler handles marketing queue requests
type MarketingHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewMarketingHandler creates a new marketing handler
func NewMarketingHandler(services *service.Services, log zerolog.Logger) *MarketingHandler {
	return &MarketingHandler{
		services: services,
		log:      log.With().Str("handler", "marketing").Logger(),
	}
}

type createItemRequest struct {
	Channel string `json:"channel" binding:"required"`
	Title   string `json:"title" binding:"required"`
	Body    string `json:"body"`
}

// CreateItem handles POST /v1/projects/:project_id/marketing
func (h *MarketingHandler) CreateItem(c *gin.Context) {
	project, ok := requireProject(c, h.services.Project, h.log)
	if !ok {
		return
	}

	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "code": service.CodeInvalidInput, "error": "channel and title are required"})
		return
	}

	result, err := h.services.Marketing.CreateItem(c.Request.Context(), project.ID, req.Channel, req.Title, req.Body)
	if err != nil {
		serviceError(c, h.log, err)
		return
	}

	status := statusForCode(result.Code)
	if result.OK {
		status = http.StatusCreated
	}
	c.JSON(status, result)
}

// ListItems handles GET /v1/projects/:project_id/marketing
func (h *MarketingHandler) ListItems(c *gin.Context) {
	project, ok := requireProject(c, h.services.Project, h.log)
	if !ok {
		return
	}

	items, err := h.services.Marketing.List(c.Request.Context(), project.ID)
	if err != nil {
		serviceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "items": items, "count": len(items)})
}

// ApproveItem handles POST /v1/projects/:project_id/marketing/:item_id/approve
func (h *MarketingHandler) ApproveItem(c *gin.Context) {
	project, ok := requireProject(c, h.services.Project, h.log)
	if !ok {
		return
	}

	result, err := h.services.Marketing.Approve(c.Request.Context(), project.ID, c.Param("item_id"))
	if err != nil {
		serviceError(c, h.log, err)
		return
	}

	c.JSON(statusForCode(result.Code), result)
}

type scheduleItemRequest struct {
	ScheduledFor string `json:"scheduled_for" binding:"required"`
}

// ScheduleItem handles POST /v1/projects/:project_id/marketing/:item_id/schedule
func (h *MarketingHandler) ScheduleItem(c *gin.Context) {
	project, ok := requireProject(c, h.services.Project, h.log)
	if !ok {
		return
	}

	var req scheduleItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "code": service.CodeInvalidSchedule, "error": "scheduled_for is required"})
		return
	}
	when, err := time.Parse(time.RFC3339, req.ScheduledFor)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "code": service.CodeInvalidSchedule, "error": "scheduled_for must be RFC 3339"})
		return
	}

	result, err := h.services.Marketing.Schedule(c.Request.Context(), project.ID, c.Param("item_id"), when)
	if err != nil {
		serviceError(c, h.log, err)
		return
	}

	c.JSON(statusForCode(result.Code), result)
}

// Sweep handles POST /v1/projects/:project_id/marketing/sweep
func (h *MarketingHandler) Sweep(c *gin.Context) {
	project, ok := requireProject(c, h.services.Project, h.log)
	if !ok {
		return
	}

	result, err := h.services.Marketing.Sweep(c.Request.Context(), project.ID)
	if err != nil {
		serviceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
