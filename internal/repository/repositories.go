package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
)

type Repositories struct {
	ProjectRepo ProjectRepository
}

// NewRepositories builds the PostgreSQL-backed repositories.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		ProjectRepo: NewProjectRepository(pool),
	}
}

// NewSQLiteRepositories builds the SQLite-backed repositories.
func NewSQLiteRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		ProjectRepo: NewSQLiteProjectRepository(db),
	}
}
