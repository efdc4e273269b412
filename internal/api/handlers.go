package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/siteforge/content-pipeline/internal/models"
	"github.com/siteforge/content-pipeline/internal/repository"
	"github.com/siteforge/content-pipeline/internal/service"
	"github.com/siteforge/content-pipeline/internal/store"
)

// userIDKey is where the auth middleware stores the authenticated subject
const userIDKey = "user_id"

func authenticatedUser(c *gin.Context) (string, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// requireProject loads the project from the path parameter and enforces
// ownership. Missing and foreign projects are both reported as NOT_FOUND so
// the API does not leak which project ids exist.
func requireProject(c *gin.Context, projects service.ProjectService, log zerolog.Logger) (*models.Project, bool) {
	userID, ok := authenticatedUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "code": "UNAUTHORIZED", "error": "authentication required"})
		return nil, false
	}

	projectID := c.Param("project_id")
	if projectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "code": service.CodeInvalidInput, "error": "project_id is required"})
		return nil, false
	}

	project, err := projects.Get(c.Request.Context(), projectID)
	if err != nil {
		serviceError(c, log, err)
		return nil, false
	}
	if project == nil || project.OwnerID != userID {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "code": service.CodeNotFound, "error": "project not found"})
		return nil, false
	}
	return project, true
}

// serviceError converts a service-layer fault into a structured response.
// Store faults surface as service-unavailable; anything else is an upstream
// collaborator failure the caller may retry.
func serviceError(c *gin.Context, log zerolog.Logger, err error) {
	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Operation failed")

	switch {
	case errors.Is(err, store.ErrStoreUnavailable), errors.Is(err, repository.ErrBadRecord):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"ok":    false,
			"code":  "STORE_UNAVAILABLE",
			"error": "record store unavailable, try again",
		})
	default:
		c.JSON(http.StatusBadGateway, gin.H{
			"ok":    false,
			"code":  "UPSTREAM_FAILED",
			"error": "an external dependency failed, try again",
		})
	}
}

// statusForCode maps structured denial codes onto HTTP statuses. Gate
// denials are expected outcomes and stay 200; the body carries the business
// meaning either way.
func statusForCode(code string) int {
	switch code {
	case "":
		return http.StatusOK
	case service.CodeNotReady, service.CodeUpgradeRequired:
		return http.StatusOK
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeNoContent, service.CodeDomainExists:
		return http.StatusConflict
	case service.CodeDNSLookupFailed:
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}
