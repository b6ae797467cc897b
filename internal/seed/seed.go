package seed

import (
	"context"
	_ "embed"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/Marga-Ghale/ora-project-tracker/internal/repository"
	"github.com/Marga-Ghale/ora-project-tracker/internal/service"
	"github.com/Marga-Ghale/ora-project-tracker/internal/types"
)

//go:embed projects.yaml
var defaultFixture []byte

type fixture struct {
	Projects []fixtureProject `yaml:"projects"`
}

type fixtureProject struct {
	Name       string  `yaml:"name"`
	ClientName string  `yaml:"clientName"`
	Status     string  `yaml:"status"`
	StartDate  *string `yaml:"startDate"`
	EndDate    *string `yaml:"endDate"`
}

// DefaultProjects returns the bundled sample projects, ready to insert.
func DefaultProjects(now time.Time) ([]*repository.Project, error) {
	return ParseProjects(defaultFixture, now)
}

// ParseProjects decodes a YAML fixture. Each project gets a fresh id and
// now as its creation time; statuses are taken as given.
func ParseProjects(data []byte, now time.Time) ([]*repository.Project, error) {
	var f fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed fixture: %w", err)
	}

	projects := make([]*repository.Project, 0, len(f.Projects))
	for i, fp := range f.Projects {
		p, err := fp.toProject(now)
		if err != nil {
			return nil, fmt.Errorf("seed project %d (%q): %w", i, fp.Name, err)
		}
		projects = append(projects, p)
	}
	return projects, nil
}

func (fp fixtureProject) toProject(now time.Time) (*repository.Project, error) {
	p := &repository.Project{
		ID:         uuid.New().String(),
		Name:       strings.TrimSpace(fp.Name),
		ClientName: strings.TrimSpace(fp.ClientName),
		Status:     types.ProjectStatus(fp.Status),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if p.Name == "" || p.ClientName == "" {
		return nil, fmt.Errorf("name and clientName are required")
	}
	if !types.IsValidProjectStatus(fp.Status) {
		return nil, fmt.Errorf("unknown status %q", fp.Status)
	}

	var err error
	if p.StartDate, err = parseDate(fp.StartDate); err != nil {
		return nil, err
	}
	if p.EndDate, err = parseDate(fp.EndDate); err != nil {
		return nil, err
	}
	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		return nil, fmt.Errorf("endDate before startDate")
	}
	return p, nil
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	d, err := service.ParseDate(*s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q", *s)
	}
	return &d, nil
}

// SeedIfEmpty inserts the sample projects when the table has never held a row.
// It returns the number of projects inserted.
func SeedIfEmpty(ctx context.Context, repo repository.ProjectRepository) (int, error) {
	n, err := repo.CountAll(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Println("[Seed] Data already exists, skipping...")
		return 0, nil
	}
	return Seed(ctx, repo)
}

// Seed inserts the sample projects unconditionally.
func Seed(ctx context.Context, repo repository.ProjectRepository) (int, error) {
	log.Println("[Seed] 🌱 Creating sample projects...")

	projects, err := DefaultProjects(time.Now().UTC().Truncate(time.Microsecond))
	if err != nil {
		return 0, err
	}

	for _, p := range projects {
		if err := repo.Create(ctx, p); err != nil {
			return 0, fmt.Errorf("seed %q: %w", p.Name, err)
		}
		log.Printf("[Seed] ✅ %s (%s) [%s]", p.Name, p.ClientName, p.Status)
	}

	log.Printf("[Seed] 🎉 Seeded %d projects", len(projects))
	return len(projects), nil
}
