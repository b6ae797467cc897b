package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Marga-Ghale/ora-project-tracker/internal/repository"
	"github.com/Marga-Ghale/ora-project-tracker/internal/types"
)

// ============================================
// Project Service
// ============================================

type ProjectStats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	OnHold    int `json:"on_hold"`
	Completed int `json:"completed"`
}

type ProjectPage struct {
	Projects   []*repository.Project
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

// ProjectCache is a best-effort read cache. Implementations swallow their own errors.
//
// Fills are versioned: read the version before loading from storage and pass it to the
// setter, which stores nothing if InvalidateProject ran in between.
type ProjectCache interface {
	GetProject(ctx context.Context, id string) (*repository.Project, bool)
	ProjectVersion(ctx context.Context, id string) int64
	SetProject(ctx context.Context, project *repository.Project, version int64)
	GetStats(ctx context.Context) (*ProjectStats, bool)
	StatsVersion(ctx context.Context) int64
	SetStats(ctx context.Context, stats *ProjectStats, version int64)
	InvalidateProject(ctx context.Context, id string)
}

// ProjectEvents receives a notification after each committed mutation.
type ProjectEvents interface {
	ProjectCreated(project *repository.Project)
	ProjectUpdated(project *repository.Project, fields []string)
	ProjectStatusChanged(project *repository.Project, from types.ProjectStatus)
	ProjectDeleted(id string)
}

type ProjectService interface {
	Create(ctx context.Context, input CreateProjectInput) (*repository.Project, error)
	GetByID(ctx context.Context, id string) (*repository.Project, error)
	List(ctx context.Context, filter repository.ProjectFilter) (*ProjectPage, error)
	Update(ctx context.Context, id string, input UpdateProjectInput) (*repository.Project, error)
	UpdateStatus(ctx context.Context, id string, status string) (*repository.Project, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*ProjectStats, error)
	RefreshStats(ctx context.Context) (*ProjectStats, error)
	ListOverdue(ctx context.Context) ([]*repository.Project, error)
}

type projectService struct {
	projectRepo repository.ProjectRepository
	cache       ProjectCache
	events      ProjectEvents
	now         func() time.Time
}

func NewProjectService(projectRepo repository.ProjectRepository, cache ProjectCache, events ProjectEvents) ProjectService {
	return &projectService{
		projectRepo: projectRepo,
		cache:       cache,
		events:      events,
		now:         utcNow,
	}
}

// utcNow truncates to microseconds, the finest precision PostgreSQL stores.
func utcNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func (s *projectService) Create(ctx context.Context, input CreateProjectInput) (*repository.Project, error) {
	project, err := input.validate()
	if err != nil {
		return nil, err
	}

	now := s.now()
	project.ID = uuid.New().String()
	project.Status = types.StatusActive
	project.CreatedAt = now
	project.UpdatedAt = now

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}

	s.invalidate(ctx, project.ID)
	if s.events != nil {
		s.events.ProjectCreated(project)
	}
	log.Printf("[Project] created %s (%q)", project.ID, project.Name)
	return project, nil
}

func (s *projectService) GetByID(ctx context.Context, id string) (*repository.Project, error) {
	if s.cache == nil {
		return s.findLive(ctx, id)
	}

	if project, ok := s.cache.GetProject(ctx, id); ok {
		return project, nil
	}

	version := s.cache.ProjectVersion(ctx, id)
	project, err := s.findLive(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.SetProject(ctx, project, version)
	return project, nil
}

func (s *projectService) List(ctx context.Context, filter repository.ProjectFilter) (*ProjectPage, error) {
	filter = filter.Normalize()

	projects, total, err := s.projectRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &ProjectPage{
		Projects:   projects,
		Page:       filter.Page,
		Limit:      filter.Limit,
		Total:      total,
		TotalPages: repository.TotalPages(total, filter.Limit),
	}, nil
}

func (s *projectService) Update(ctx context.Context, id string, input UpdateProjectInput) (*repository.Project, error) {
	stored, err := s.findLive(ctx, id)
	if err != nil {
		return nil, err
	}

	v := &ValidationError{}
	changes, ok := input.changes(v)
	if ok && !changes.IsEmpty() {
		effective := EffectiveProject(*stored, changes)
		checkDateOrder(effective.StartDate, effective.EndDate, v)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	if changes.IsEmpty() {
		return stored, nil
	}

	updated, err := s.projectRepo.Update(ctx, id, changes, s.now())
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, notFound(id)
	}

	s.invalidate(ctx, id)
	project, err := s.findLive(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.ProjectUpdated(project, changes.Fields())
	}
	return project, nil
}

func (s *projectService) UpdateStatus(ctx context.Context, id string, status string) (*repository.Project, error) {
	requested, err := ValidateStatus(status)
	if err != nil {
		return nil, err
	}

	project, err := s.findLive(ctx, id)
	if err != nil {
		return nil, err
	}

	from := project.Status
	if err := types.AttemptTransition(from, requested); err != nil {
		return nil, err
	}

	now := s.now()
	updated, err := s.projectRepo.UpdateStatus(ctx, id, requested, now)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, notFound(id)
	}

	project.Status = requested
	project.UpdatedAt = now

	s.invalidate(ctx, id)
	if s.events != nil {
		s.events.ProjectStatusChanged(project, from)
	}
	log.Printf("[Project] %s status %s -> %s", id, from, requested)
	return project, nil
}

func (s *projectService) Delete(ctx context.Context, id string) error {
	deleted, err := s.projectRepo.SoftDelete(ctx, id, s.now())
	if err != nil {
		return err
	}
	if !deleted {
		return notFound(id)
	}

	s.invalidate(ctx, id)
	if s.events != nil {
		s.events.ProjectDeleted(id)
	}
	log.Printf("[Project] deleted %s", id)
	return nil
}

func (s *projectService) Stats(ctx context.Context) (*ProjectStats, error) {
	if s.cache != nil {
		if stats, ok := s.cache.GetStats(ctx); ok {
			return stats, nil
		}
	}
	return s.RefreshStats(ctx)
}

// RefreshStats recomputes the counts from storage and refills the cache.
func (s *projectService) RefreshStats(ctx context.Context) (*ProjectStats, error) {
	var version int64
	if s.cache != nil {
		version = s.cache.StatsVersion(ctx)
	}

	counts, err := s.projectRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	stats := &ProjectStats{
		Active:    counts[types.StatusActive],
		OnHold:    counts[types.StatusOnHold],
		Completed: counts[types.StatusCompleted],
	}
	stats.Total = stats.Active + stats.OnHold + stats.Completed

	if s.cache != nil {
		s.cache.SetStats(ctx, stats, version)
	}
	return stats, nil
}

// ListOverdue returns live, unfinished projects whose end date is before today.
func (s *projectService) ListOverdue(ctx context.Context) ([]*repository.Project, error) {
	return s.projectRepo.FindOverdue(ctx, s.now())
}

func (s *projectService) findLive(ctx context.Context, id string) (*repository.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, notFound(id)
	}
	return project, nil
}

func (s *projectService) invalidate(ctx context.Context, id string) {
	if s.cache != nil {
		s.cache.InvalidateProject(ctx, id)
	}
}

func notFound(id string) error {
	return fmt.Errorf("project %s: %w", id, ErrNotFound)
}
