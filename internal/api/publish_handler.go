package api

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/siteforge/content-pipeline/internal/service"
)

// PublishHandler handles publish gate requests
type PublishHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewPublishHandler creates a new publish handler
func NewPublishHandler(services *service.Services, log zerolog.Logger) *PublishHandler {
	return &PublishHandler{
		services: services,
		log:      log.With().Str("handler", "publish").Logger(),
	}
}

// Publish handles POST /v1/projects/:project_id/publish. A denial is a
// normal outcome: the body carries the machine code and, for NOT_READY, the
// full audit so the caller can remediate.
func (h *PublishHandler) Publish(c *gin.Context) {
	project, ok := requireProject(c, h.services.Project, h.log)
	if !ok {
		return
	}

	result, err := h.services.Publish.Publish(c.Request.Context(), project)
	if err != nil {
		serviceError(c, h.log, err)
		return
	}

	c.JSON(statusForCode(result.Code), result)
}
