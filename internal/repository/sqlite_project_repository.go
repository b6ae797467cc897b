package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Marga-Ghale/ora-project-tracker/internal/types"
)

const (
	sqliteDateLayout = "2006-01-02"
	// Fixed width so that TEXT ordering matches chronological ordering.
	sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

type sqliteProjectRow struct {
	ID         string         `db:"id"`
	Name       string         `db:"name"`
	ClientName string         `db:"client_name"`
	Status     string         `db:"status"`
	StartDate  sql.NullString `db:"start_date"`
	EndDate    sql.NullString `db:"end_date"`
	CreatedAt  string         `db:"created_at"`
	UpdatedAt  string         `db:"updated_at"`
	DeletedAt  sql.NullString `db:"deleted_at"`
}

func (row sqliteProjectRow) toProject() (*Project, error) {
	p := &Project{
		ID:         row.ID,
		Name:       row.Name,
		ClientName: row.ClientName,
		Status:     types.ProjectStatus(row.Status),
	}

	var err error
	if p.StartDate, err = parseNullDate(row.StartDate); err != nil {
		return nil, fmt.Errorf("start_date: %w", err)
	}
	if p.EndDate, err = parseNullDate(row.EndDate); err != nil {
		return nil, fmt.Errorf("end_date: %w", err)
	}
	if p.CreatedAt, err = time.Parse(sqliteTimeLayout, row.CreatedAt); err != nil {
		return nil, fmt.Errorf("created_at: %w", err)
	}
	if p.UpdatedAt, err = time.Parse(sqliteTimeLayout, row.UpdatedAt); err != nil {
		return nil, fmt.Errorf("updated_at: %w", err)
	}
	if row.DeletedAt.Valid {
		t, err := time.Parse(sqliteTimeLayout, row.DeletedAt.String)
		if err != nil {
			return nil, fmt.Errorf("deleted_at: %w", err)
		}
		p.DeletedAt = &t
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

type sqliteProjectRepository struct {
	db *sqlx.DB
}

// NewSQLiteProjectRepository returns a ProjectRepository over a go-sqlite3 handle.
func NewSQLiteProjectRepository(db *sqlx.DB) ProjectRepository {
	return &sqliteProjectRepository{db: db}
}

func (r *sqliteProjectRepository) Create(ctx context.Context, project *Project) error {
	query := `
		INSERT INTO projects (id, name, client_name, status, start_date, end_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		project.ID, project.Name, project.ClientName, string(project.Status),
		sqliteDate(project.StartDate), sqliteDate(project.EndDate),
		sqliteTime(project.CreatedAt), sqliteTime(project.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (r *sqliteProjectRepository) FindByID(ctx context.Context, id string) (*Project, error) {
	var row sqliteProjectRow
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ? AND deleted_at IS NULL`

	err := r.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find project %s: %w", id, err)
	}
	return row.toProject()
}

func (r *sqliteProjectRepository) List(ctx context.Context, filter ProjectFilter) ([]*Project, int, error) {
	filter = filter.Normalize()
	q := buildListQuery(filter, DialectSQLite)

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM projects `+q.where, q.args...); err != nil {
		return nil, 0, fmt.Errorf("count projects: %w", err)
	}

	var rows []sqliteProjectRow
	dataQuery := `SELECT ` + projectColumns + ` FROM projects ` + q.where + ` ` + q.orderBy + ` LIMIT ? OFFSET ?`
	args := append(append([]interface{}{}, q.args...), filter.Limit, filter.Offset())
	if err := r.db.SelectContext(ctx, &rows, dataQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list projects: %w", err)
	}

	projects, err := toProjects(rows)
	if err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

func (r *sqliteProjectRepository) Update(ctx context.Context, id string, changes ProjectChanges, updatedAt time.Time) (bool, error) {
	sets, args := changeSet(changes, sqliteDate)
	sets = append(sets, "updated_at = ?")
	args = append(args, sqliteTime(updatedAt), id)

	query := `UPDATE projects SET ` + strings.Join(sets, ", ") + ` WHERE id = ? AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update project %s: %w", id, err)
	}
	return affected(res)
}

func (r *sqliteProjectRepository) UpdateStatus(ctx context.Context, id string, status types.ProjectStatus, updatedAt time.Time) (bool, error) {
	query := `UPDATE projects SET status = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, string(status), sqliteTime(updatedAt), id)
	if err != nil {
		return false, fmt.Errorf("update project %s status: %w", id, err)
	}
	return affected(res)
}

func (r *sqliteProjectRepository) SoftDelete(ctx context.Context, id string, deletedAt time.Time) (bool, error) {
	ts := sqliteTime(deletedAt)
	query := `UPDATE projects SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, ts, ts, id)
	if err != nil {
		return false, fmt.Errorf("soft delete project %s: %w", id, err)
	}
	return affected(res)
}

func (r *sqliteProjectRepository) CountByStatus(ctx context.Context) (map[types.ProjectStatus]int, error) {
	var rows []struct {
		Status string `db:"status"`
		N      int    `db:"n"`
	}
	query := `SELECT status, COUNT(*) AS n FROM projects WHERE deleted_at IS NULL GROUP BY status`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count projects by status: %w", err)
	}

	counts := make(map[types.ProjectStatus]int, len(types.ValidProjectStatuses))
	for _, row := range rows {
		counts[types.ProjectStatus(row.Status)] = row.N
	}
	return counts, nil
}

func (r *sqliteProjectRepository) FindOverdue(ctx context.Context, asOf time.Time) ([]*Project, error) {
	var rows []sqliteProjectRow
	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE deleted_at IS NULL AND status <> ? AND end_date IS NOT NULL AND end_date < ?
		ORDER BY end_date ASC, id ASC
	`
	if err := r.db.SelectContext(ctx, &rows, query, string(types.StatusCompleted), asOf.UTC().Format(sqliteDateLayout)); err != nil {
		return nil, fmt.Errorf("find overdue projects: %w", err)
	}
	return toProjects(rows)
}

func (r *sqliteProjectRepository) CountAll(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM projects`); err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return n, nil
}

func toProjects(rows []sqliteProjectRow) ([]*Project, error) {
	projects := make([]*Project, 0, len(rows))
	for _, row := range rows {
		p, err := row.toProject()
		if err != nil {
			return nil, fmt.Errorf("scan project %s: %w", row.ID, err)
		}
		projects = append(projects, p)
	}
	return projects, nil
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func sqliteDate(d *time.Time) interface{} {
	if d == nil {
		return nil
	}
	return d.UTC().Format(sqliteDateLayout)
}

func sqliteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func parseNullDate(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := time.Parse(sqliteDateLayout, s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
