package cron

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Marga-Ghale/ora-project-tracker/internal/repository"
	"github.com/Marga-Ghale/ora-project-tracker/internal/service"
)

const (
	OverdueSchedule   = "0 9 * * *"
	StatsWarmSchedule = "*/15 * * * *"
	jobTimeout        = 30 * time.Second
)

// OverdueNotifier receives the result of the overdue check.
type OverdueNotifier interface {
	ProjectsOverdue(projects []*repository.Project)
}

// Scheduler handles scheduled tasks
type Scheduler struct {
	cron     *cron.Cron
	projects service.ProjectService
	notifier OverdueNotifier
}

// NewScheduler creates a new scheduler. notifier may be nil.
func NewScheduler(projects service.ProjectService, notifier OverdueNotifier) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		projects: projects,
		notifier: notifier,
	}
}

// Start registers the jobs and starts the scheduler
func (s *Scheduler) Start() error {
	// Every day at 9 AM - overdue project report
	if _, err := s.cron.AddFunc(OverdueSchedule, func() {
		log.Println("[Cron] Running overdue project check...")
		s.checkOverdueProjects()
	}); err != nil {
		return err
	}

	// Every 15 minutes - keep dashboard stats warm in the cache
	if _, err := s.cron.AddFunc(StatsWarmSchedule, func() {
		s.warmStats()
	}); err != nil {
		return err
	}

	s.cron.Start()
	log.Println("[Cron] Scheduler started")
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Println("[Cron] Scheduler stopped")
}

// checkOverdueProjects logs live, unfinished projects past their end date.
func (s *Scheduler) checkOverdueProjects() int {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	projects, err := s.projects.ListOverdue(ctx)
	if err != nil {
		log.Printf("[Cron] Error finding overdue projects: %v", err)
		return 0
	}

	for _, p := range projects {
		log.Printf("[Cron] ⏰ Overdue: %s %q (%s) ended %s, status=%s",
			p.ID, p.Name, p.ClientName, p.EndDate.Format(service.DateLayout), p.Status)
	}
	if len(projects) > 0 && s.notifier != nil {
		s.notifier.ProjectsOverdue(projects)
	}

	log.Printf("[Cron] Overdue check complete: %d projects", len(projects))
	return len(projects)
}

func (s *Scheduler) warmStats() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := s.projects.RefreshStats(ctx); err != nil {
		log.Printf("[Cron] Error refreshing project stats: %v", err)
	}
}
