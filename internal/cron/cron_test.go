package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Marga-Ghale/ora-project-tracker/internal/repository"
	"github.com/Marga-Ghale/ora-project-tracker/internal/service"
	"github.com/Marga-Ghale/ora-project-tracker/internal/types"
)

type stubProjects struct {
	service.ProjectService
	overdue   []*repository.Project
	err       error
	refreshed int
}

func (s *stubProjects) ListOverdue(context.Context) ([]*repository.Project, error) {
	return s.overdue, s.err
}

func (s *stubProjects) RefreshStats(context.Context) (*service.ProjectStats, error) {
	s.refreshed++
	return &service.ProjectStats{}, s.err
}

type notifierFunc func([]*repository.Project)

func (f notifierFunc) ProjectsOverdue(p []*repository.Project) { f(p) }

func TestSchedules_Parse(t *testing.T) {
	for _, spec := range []string{OverdueSchedule, StatsWarmSchedule} {
		_, err := cron.ParseStandard(spec)
		assert.NoError(t, err, spec)
	}
}

func TestCheckOverdueProjects_Notifies(t *testing.T) {
	end := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	stub := &stubProjects{overdue: []*repository.Project{
		{ID: "a", Name: "Legacy System Migration", ClientName: "PT Indofood", Status: types.StatusOnHold, EndDate: &end},
	}}

	var got []*repository.Project
	s := NewScheduler(stub, notifierFunc(func(p []*repository.Project) { got = p }))

	assert.Equal(t, 1, s.checkOverdueProjects())
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
}

func TestCheckOverdueProjects_NothingToReport(t *testing.T) {
	called := false
	s := NewScheduler(&stubProjects{}, notifierFunc(func([]*repository.Project) { called = true }))

	assert.Zero(t, s.checkOverdueProjects())
	assert.False(t, called)
}

func TestCheckOverdueProjects_ErrorAndNilNotifier(t *testing.T) {
	s := NewScheduler(&stubProjects{err: errors.New("db down")}, nil)
	assert.Zero(t, s.checkOverdueProjects())
}

func TestWarmStats(t *testing.T) {
	stub := &stubProjects{}
	s := NewScheduler(stub, nil)
	s.warmStats()
	assert.Equal(t, 1, stub.refreshed)
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(&stubProjects{}, nil)
	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 2)
	s.Stop()
}
