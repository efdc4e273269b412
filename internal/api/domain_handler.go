package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/siteforge/content-pipeline/internal/service"
)

// DomainHandler handles custom domain requests
type DomainHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewDomainHandler creates a new domain handler
func NewDomainHandler(services *service.Services, log zerolog.Logger) *DomainHandler {
	return &DomainHandler{
		services: services,
		log:      log.With().Str("handler", "domain").Logger(),
	}
}

type attachDomainRequest struct {
	Domain string `json:"domain" binding:"required"`
}

// AttachDomain handles POST /v1/projects/:project_id/domains
func (h *DomainHandler) AttachDomain(c *gin.Context) {
	project, ok := requireProject(c, h.services.Project, h.log)
	if !ok {
		return
	}

	var req attachDomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "code": service.CodeInvalidInput, "error": "domain is required"})
		return
	}

	result, err := h.services.Domain.Attach(c.Request.Context(), project, req.Domain)
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

// GetDomain handles GET /v1/projects/:project_id/domains
func (h *DomainHandler) GetDomain(c *gin.Context) {
	project, ok := requireProject(c, h.services.Project, h.log)
	if !ok {
		return
	}

	domain, err := h.services.Domain.Get(c.Request.Context(), project.ID)
	if err != nil {
		serviceError(c, h.log, err)
		return
	}
	if domain == nil {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "code": service.CodeNotFound, "error": "no domain attached"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "domain": domain})
}

// CheckDomain handles POST /v1/projects/:project_id/domains/check. Each call
// is one verification poll; an unverified result is OK with verified=false
// and a DNS diagnostic.
func (h *DomainHandler) CheckDomain(c *gin.Context) {
	project, ok := requireProject(c, h.services.Project, h.log)
	if !ok {
		return
	}

	result, err := h.services.Domain.Check(c.Request.Context(), project)
	if err != nil {
		serviceError(c, h.log, err)
		return
	}

	c.JSON(statusForCode(result.Code), result)
}
