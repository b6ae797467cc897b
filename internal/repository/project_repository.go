package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Marga-Ghale/ora-project-tracker/internal/types"
)

type Project struct {
	ID         string
	Name       string
	ClientName string
	Status     types.ProjectStatus
	StartDate  *time.Time // calendar date, UTC midnight
	EndDate    *time.Time // calendar date, UTC midnight
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time
}

// DateChange is a tri-state date update: Set=false leaves the column alone,
// Set=true with a nil Value clears it.
type DateChange struct {
	Set   bool
	Value *time.Time
}

// ProjectChanges holds the supplied fields of a partial update.
type ProjectChanges struct {
	Name       *string
	ClientName *string
	StartDate  DateChange
	EndDate    DateChange
}

// IsEmpty reports whether no field was supplied.
func (c ProjectChanges) IsEmpty() bool {
	return c.Name == nil && c.ClientName == nil && !c.StartDate.Set && !c.EndDate.Set
}

// Fields lists the API names of the supplied fields.
func (c ProjectChanges) Fields() []string {
	var fields []string
	if c.Name != nil {
		fields = append(fields, "name")
	}
	if c.ClientName != nil {
		fields = append(fields, "clientName")
	}
	if c.StartDate.Set {
		fields = append(fields, "startDate")
	}
	if c.EndDate.Set {
		fields = append(fields, "endDate")
	}
	return fields
}

// ProjectRepository is the record store for projects. Every read excludes
// soft-deleted rows; every write targets live rows only and reports whether a
// row was affected.
type ProjectRepository interface {
	Create(ctx context.Context, project *Project) error
	FindByID(ctx context.Context, id string) (*Project, error)
	List(ctx context.Context, filter ProjectFilter) ([]*Project, int, error)
	Update(ctx context.Context, id string, changes ProjectChanges, updatedAt time.Time) (bool, error)
	UpdateStatus(ctx context.Context, id string, status types.ProjectStatus, updatedAt time.Time) (bool, error)
	SoftDelete(ctx context.Context, id string, deletedAt time.Time) (bool, error)
	CountByStatus(ctx context.Context) (map[types.ProjectStatus]int, error)
	FindOverdue(ctx context.Context, asOf time.Time) ([]*Project, error)
	CountAll(ctx context.Context) (int, error)
}

const projectColumns = `id, name, client_name, status, start_date, end_date, created_at, updated_at, deleted_at`

type pgProjectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) ProjectRepository {
	return &pgProjectRepository{pool: pool}
}

func (r *pgProjectRepository) Create(ctx context.Context, project *Project) error {
	query := `
		INSERT INTO projects (id, name, client_name, status, start_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		project.ID, project.Name, project.ClientName, string(project.Status),
		pgDate(project.StartDate), pgDate(project.EndDate),
		project.CreatedAt, project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (r *pgProjectRepository) FindByID(ctx context.Context, id string) (*Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1 AND deleted_at IS NULL`

	p, err := scanPgProject(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find project %s: %w", id, err)
	}
	return p, nil
}

func (r *pgProjectRepository) List(ctx context.Context, filter ProjectFilter) ([]*Project, int, error) {
	filter = filter.Normalize()
	q := buildListQuery(filter, DialectPostgres)

	var total int
	countQuery := rebind(DialectPostgres, `SELECT COUNT(*) FROM projects `+q.where)
	if err := r.pool.QueryRow(ctx, countQuery, q.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count projects: %w", err)
	}

	dataQuery := rebind(DialectPostgres,
		`SELECT `+projectColumns+` FROM projects `+q.where+` `+q.orderBy+` LIMIT ? OFFSET ?`)
	args := append(append([]interface{}{}, q.args...), filter.Limit, filter.Offset())

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]*Project, 0, filter.Limit)
	for rows.Next() {
		p, err := scanPgProject(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list projects: %w", err)
	}
	return projects, total, nil
}

func (r *pgProjectRepository) Update(ctx context.Context, id string, changes ProjectChanges, updatedAt time.Time) (bool, error) {
	sets, args := changeSet(changes, func(d *time.Time) interface{} { return pgDate(d) })
	sets = append(sets, "updated_at = ?")
	args = append(args, updatedAt, id)

	query := rebind(DialectPostgres,
		`UPDATE projects SET `+strings.Join(sets, ", ")+` WHERE id = ? AND deleted_at IS NULL`)
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update project %s: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *pgProjectRepository) UpdateStatus(ctx context.Context, id string, status types.ProjectStatus, updatedAt time.Time) (bool, error) {
	query := `UPDATE projects SET status = $2, updated_at = $3 WHERE id = $1 AND deleted_at IS NULL`
	tag, err := r.pool.Exec(ctx, query, id, string(status), updatedAt)
	if err != nil {
		return false, fmt.Errorf("update project %s status: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *pgProjectRepository) SoftDelete(ctx context.Context, id string, deletedAt time.Time) (bool, error) {
	query := `UPDATE projects SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`
	tag, err := r.pool.Exec(ctx, query, id, deletedAt)
	if err != nil {
		return false, fmt.Errorf("soft delete project %s: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *pgProjectRepository) CountByStatus(ctx context.Context) (map[types.ProjectStatus]int, error) {
	query := `SELECT status, COUNT(*) FROM projects WHERE deleted_at IS NULL GROUP BY status`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count projects by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[types.ProjectStatus]int, len(types.ValidProjectStatuses))
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[types.ProjectStatus(status)] = n
	}
	return counts, rows.Err()
}

func (r *pgProjectRepository) FindOverdue(ctx context.Context, asOf time.Time) ([]*Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE deleted_at IS NULL AND status <> $1 AND end_date IS NOT NULL AND end_date < $2
		ORDER BY end_date ASC, id ASC
	`
	rows, err := r.pool.Query(ctx, query, string(types.StatusCompleted), truncateDate(asOf))
	if err != nil {
		return nil, fmt.Errorf("find overdue projects: %w", err)
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		p, err := scanPgProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *pgProjectRepository) CountAll(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM projects`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return n, nil
}

func scanPgProject(row pgx.Row) (*Project, error) {
	p := &Project{}
	var status string
	err := row.Scan(
		&p.ID, &p.Name, &p.ClientName, &status, &p.StartDate, &p.EndDate,
		&p.CreatedAt, &p.UpdatedAt, &p.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Status = types.ProjectStatus(status)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	if p.DeletedAt != nil {
		t := p.DeletedAt.UTC()
		p.DeletedAt = &t
	}
	return p, nil
}

func pgDate(d *time.Time) interface{} {
	if d == nil {
		return nil
	}
	return truncateDate(*d)
}

// truncateDate drops the clock part, keeping the calendar date in UTC.
func truncateDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
