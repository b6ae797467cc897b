package db

import (
	"context"
	"fmt"
	"log"

	"github.com/Marga-Ghale/ora-project-tracker/internal/config"
	"github.com/Marga-Ghale/ora-project-tracker/internal/repository"
)

// Store is an open project database of either driver.
type Store struct {
	Driver string
	Repos  *repository.Repositories

	ping  func(ctx context.Context) error
	close func()
}

// Migrate applies pending migrations for the configured driver.
func Migrate(cfg *config.Config) error {
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		return RunMigrations(cfg.DatabaseURL)
	case config.DriverSQLite:
		sqlite, err := NewSQLiteDB(cfg.SQLitePath)
		if err != nil {
			return err
		}
		defer sqlite.Close()
		return RunSQLiteMigrations(sqlite.DB.DB)
	default:
		return fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}
}

// Open connects to the configured database and builds the repositories on it.
func Open(cfg *config.Config) (*Store, error) {
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		pg, err := NewPostgresDB(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return &Store{
			Driver: cfg.DatabaseDriver,
			Repos:  repository.NewRepositories(pg.Pool),
			ping:   pg.Ping,
			close:  pg.Close,
		}, nil

	case config.DriverSQLite:
		sqlite, err := NewSQLiteDB(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &Store{
			Driver: cfg.DatabaseDriver,
			Repos:  repository.NewSQLiteRepositories(sqlite.DB),
			ping:   sqlite.Ping,
			close:  sqlite.Close,
		}, nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

func (s *Store) Close() {
	s.close()
	log.Printf("[DB] %s store closed", s.Driver)
}
