package models

import (
	"time"

	"github.com/Marga-Ghale/ora-project-tracker/internal/repository"
	"github.com/Marga-Ghale/ora-project-tracker/internal/service"
	"github.com/Marga-Ghale/ora-project-tracker/internal/types"
)

// Request models

// CreateProjectRequest leaves name checks to the service so that every field
// error is reported together.
type CreateProjectRequest struct {
	Name       string  `json:"name"`
	ClientName string  `json:"clientName"`
	StartDate  *string `json:"startDate"`
	EndDate    *string `json:"endDate"`
}

func (r CreateProjectRequest) Input() service.CreateProjectInput {
	return service.CreateProjectInput{
		Name:       r.Name,
		ClientName: r.ClientName,
		StartDate:  r.StartDate,
		EndDate:    r.EndDate,
	}
}

// UpdateProjectRequest: absent fields are untouched, null dates are cleared.
// A status key is ignored here; status changes go through PATCH /status.
type UpdateProjectRequest struct {
	Name       types.OptionalString `json:"name"`
	ClientName types.OptionalString `json:"clientName"`
	StartDate  types.OptionalString `json:"startDate"`
	EndDate    types.OptionalString `json:"endDate"`
}

func (r UpdateProjectRequest) Input() service.UpdateProjectInput {
	return service.UpdateProjectInput{
		Name:       r.Name,
		ClientName: r.ClientName,
		StartDate:  r.StartDate,
		EndDate:    r.EndDate,
	}
}

type UpdateProjectStatusRequest struct {
	Status *string `json:"status"`
}

// ListProjectsQuery is bound from the query string.
type ListProjectsQuery struct {
	Status string `form:"status"`
	Search string `form:"search"`
	Page   *int   `form:"page" binding:"omitempty,min=1"`
	Limit  *int   `form:"limit" binding:"omitempty,min=1,max=100"`
	SortBy string `form:"sortBy"`
	Order  string `form:"order"`
}

func (q ListProjectsQuery) Filter() repository.ProjectFilter {
	f := repository.ProjectFilter{
		Status: q.Status,
		Search: q.Search,
		SortBy: q.SortBy,
		Order:  q.Order,
	}
	if q.Page != nil {
		f.Page = *q.Page
	}
	if q.Limit != nil {
		f.Limit = *q.Limit
	}
	return f
}

// Response models

type ProjectResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	ClientName string     `json:"clientName"`
	Status     string     `json:"status"`
	StartDate  *string    `json:"startDate"`
	EndDate    *string    `json:"endDate"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	DeletedAt  *time.Time `json:"deletedAt"`
}

type PaginationResponse struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type ProjectStatsResponse struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	OnHold    int `json:"on_hold"`
	Completed int `json:"completed"`
}

// ============================================
// Mappers
// ============================================

func ToProjectResponse(p *repository.Project) ProjectResponse {
	return ProjectResponse{
		ID:         p.ID,
		Name:       p.Name,
		ClientName: p.ClientName,
		Status:     string(p.Status),
		StartDate:  formatDate(p.StartDate),
		EndDate:    formatDate(p.EndDate),
		CreatedAt:  p.CreatedAt.UTC(),
		UpdatedAt:  p.UpdatedAt.UTC(),
		DeletedAt:  p.DeletedAt,
	}
}

func ToProjectResponses(projects []*repository.Project) []ProjectResponse {
	out := make([]ProjectResponse, len(projects))
	for i, p := range projects {
		out[i] = ToProjectResponse(p)
	}
	return out
}

func ToPaginationResponse(page *service.ProjectPage) PaginationResponse {
	return PaginationResponse{
		Page:       page.Page,
		Limit:      page.Limit,
		Total:      page.Total,
		TotalPages: page.TotalPages,
	}
}

func ToProjectStatsResponse(s *service.ProjectStats) ProjectStatsResponse {
	return ProjectStatsResponse{
		Total:     s.Total,
		Active:    s.Active,
		OnHold:    s.OnHold,
		Completed: s.Completed,
	}
}

func formatDate(d *time.Time) *string {
	if d == nil {
		return nil
	}
	s := d.UTC().Format(service.DateLayout)
	return &s
}
