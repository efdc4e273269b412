package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/siteforge/content-pipeline/internal/service"
)

// RunHandler handles generation run requests
type RunHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewRunHandler creates a new run handler
func NewRunHandler(services *service.Services, log zerolog.Logger) *RunHandler {
	return &RunHandler{
		services: services,
		log:      log.With().Str("handler", "run").Logger(),
	}
}

type createRunRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// CreateRun handles POST /v1/projects/:project_id/runs. The run is created
// and executed in the same request; the response carries its terminal state.
// A failed run is a valid outcome, retried via the execute endpoint on a
// fresh run.
func (h *RunHandler) CreateRun(c *gin.Context) {
	project, ok := requireProject(c, h.services.Project, h.log)
	if !ok {
		return
	}

	var req createRunRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "code": service.CodeInvalidInput, "error": "prompt is required"})
		return
	}

	run, err := h.services.Run.CreateRun(c.Request.Context(), project.ID, req.Prompt)
	if err != nil {
		serviceError(c, h.log, err)
		return
	}

	run, err = h.services.Run.Execute(c.Request.Context(), run.ID)
	if err != nil {
		serviceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "run": run})
}

// ExecuteRun handles POST /v1/projects/:project_id/runs/:run_id/execute.
// Executing a run that already reached a terminal state is a no-op that
// returns the run as-is.
func (h *RunHandler) ExecuteRun(c *gin.Context) {
	project, ok := requireProject(c, h.services.Project, h.log)
	if !ok {
		return
	}

	run, err := h.services.Run.GetRun(c.Request.Context(), c.Param("run_id"))
	if err != nil {
		serviceError(c, h.log, err)
		return
	}
	if run == nil || run.ProjectID != project.ID {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "code": service.CodeNotFound, "error": "run not found"})
		return
	}

	run, err = h.services.Run.Execute(c.Request.Context(), run.ID)
	if err != nil {
		serviceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "run": run})
}

// GetRun handles GET /v1/projects/:project_id/runs/:run_id
func (h *RunHandler) GetRun(c *gin.Context) {
	project, ok := requireProject(c, h.services.Project, h.log)
	if !ok {
		return
	}

	run, err := h.services.Run.GetRun(c.Request.Context(), c.Param("run_id"))
	if err != nil {
		serviceError(c, h.log, err)
		return
	}
	if run == nil || run.ProjectID != project.ID {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "code": service.CodeNotFound, "error": "run not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "run": run})
}

// ListRuns handles GET /v1/projects/:project_id/runs
func (h *RunHandler) ListRuns(c *gin.Context) {
	project, ok := requireProject(c, h.services.Project, h.log)
	if !ok {
		return
	}

	limit := parseLimit(c.Query("limit"), 20)
	runs, err := h.services.Run.ListRuns(c.Request.Context(), project.ID, limit)
	if err != nil {
		serviceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "runs": runs, "count": len(runs)})
}

func parseLimit(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > 100 {
		return def
	}
	return n
}
