package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/siteforge/content-pipeline/internal/service"
)

// VersionHandler handles version history requests
type VersionHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewVersionHandler creates a new version handler
func NewVersionHandler(services *service.Services, log zerolog.Logger) *VersionHandler {
	return &VersionHandler{
		services: services,
		log:      log.With().Str("handler", "version").Logger(),
	}
}

// ListVersions handles GET /v1/projects/:project_id/versions
func (h *VersionHandler) ListVersions(c *gin.Context) {
	project, ok := requireProject(c, h.services.Project, h.log)
	if !ok {
		return
	}

	limit := parseLimit(c.Query("limit"), 20)
	versions, err := h.services.Version.List(c.Request.Context(), project.ID, limit)
	if err != nil {
		serviceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "versions": versions, "count": len(versions)})
}

// Rollback handles POST /v1/projects/:project_id/versions/:version_id/rollback
func (h *VersionHandler) Rollback(c *gin.Context) {
	project, ok := requireProject(c, h.services.Project, h.log)
	if !ok {
		return
	}

	result, err := h.services.Version.Rollback(c.Request.Context(), project.ID, c.Param("version_id"))
	if err != nil {
		serviceError(c, h.log, err)
		return
	}

	c.JSON(statusForCode(result.Code), result)
}
