package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Marga-Ghale/ora-project-tracker/internal/models"
	"github.com/Marga-Ghale/ora-project-tracker/internal/service"
)

// ============================================
// Project Handler
// ============================================

type ProjectHandler struct {
	projectService service.ProjectService
}

func NewProjectHandler(projectService service.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// Create - Create a new project
// POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req models.CreateProjectRequest
	if err := decodeJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	project, err := h.projectService.Create(c.Request.Context(), req.Input())
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusCreated, models.ToProjectResponse(project))
}

// List - List projects with filter, search, sort and pagination
// GET /api/projects
func (h *ProjectHandler) List(c *gin.Context) {
	var query models.ListProjectsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, queryError(c, err))
		return
	}

	page, err := h.projectService.List(c.Request.Context(), query.Filter())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       models.ToProjectResponses(page.Projects),
		"pagination": models.ToPaginationResponse(page),
	})
}

// Stats - Count live projects by status
// GET /api/projects/stats
func (h *ProjectHandler) Stats(c *gin.Context) {
	stats, err := h.projectService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, models.ToProjectStatsResponse(stats))
}

// Get - Get a project by ID
// GET /api/projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	id, err := parseProjectID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	project, err := h.projectService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, models.ToProjectResponse(project))
}

// Update - Update name, client and dates
// PUT /api/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	id, err := parseProjectID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req models.UpdateProjectRequest
	if err := decodeJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	project, err := h.projectService.Update(c.Request.Context(), id, req.Input())
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, models.ToProjectResponse(project))
}

// UpdateStatus - Move a project through the status machine
// PATCH /api/projects/:id/status
func (h *ProjectHandler) UpdateStatus(c *gin.Context) {
	id, err := parseProjectID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req models.UpdateProjectStatusRequest
	if err := decodeJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	var status string
	if req.Status != nil {
		status = *req.Status
	}

	project, err := h.projectService.UpdateStatus(c.Request.Context(), id, status)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, models.ToProjectResponse(project))
}

// Delete - Soft delete a project
// DELETE /api/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, err := parseProjectID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.projectService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, "Project deleted successfully")
}
