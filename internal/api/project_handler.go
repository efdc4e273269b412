package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/siteforge/content-pipeline/internal/service"
)

// ProjectHandler handles project lifecycle requests
type ProjectHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(services *service.Services, log zerolog.Logger) *ProjectHandler {
	return &ProjectHandler{
		services: services,
		log:      log.With().Str("handler", "project").Logger(),
	}
}

type createProjectRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateProject handles POST /v1/projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, ok := authenticatedUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "code": "UNAUTHORIZED", "error": "authentication required"})
		return
	}

	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "code": service.CodeInvalidInput, "error": "name is required"})
		return
	}

	project, err := h.services.Project.Create(c.Request.Context(), userID, req.Name)
	if err != nil {
		serviceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": project})
}

// GetProject handles GET /v1/projects/:project_id
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, ok := requireProject(c, h.services.Project, h.log)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"project":    project,
		"public_url": h.services.Publish.PublicURL(project),
	})
}

// DeleteProject handles DELETE /v1/projects/:project_id
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	project, ok := requireProject(c, h.services.Project, h.log)
	if !ok {
		return
	}

	result, err := h.services.Project.Delete(c.Request.Context(), project.ID)
	if err != nil {
		serviceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":          len(result.FailedKeys) == 0,
		"deleted":     result.Deleted,
		"failed_keys": result.FailedKeys,
	})
}
