package db

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

type SQLiteDB struct {
	DB *sqlx.DB
}

// NewSQLiteDB opens (creating if needed) the database file at path in WAL mode.
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sqlx.Open("sqlite3", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every pooled connection gets the pragmas from the DSN. WAL lets readers run
	// alongside the single writer; an in-memory database exists per connection.
	if path == ":memory:" {
		conn.SetMaxOpenConns(1)
	}
	conn.SetMaxIdleConns(4)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("[DB] ✅ Connected to SQLite (%s)", path)
	return &SQLiteDB{DB: conn}, nil
}

// sqliteDSN applies the connection pragmas through go-sqlite3 DSN parameters.
// Transactions begin IMMEDIATE so writers queue on busy_timeout instead of failing.
func sqliteDSN(path string) string {
	params := url.Values{}
	params.Set("_journal_mode", "WAL")
	params.Set("_synchronous", "NORMAL")
	params.Set("_busy_timeout", "5000")
	params.Set("_foreign_keys", "on")
	params.Set("_txlock", "immediate")
	return "file:" + path + "?" + params.Encode()
}

func (db *SQLiteDB) Ping(ctx context.Context) error {
	return db.DB.PingContext(ctx)
}

func (db *SQLiteDB) Close() {
	if db.DB != nil {
		db.DB.Close()
		log.Println("[DB] SQLite connection closed")
	}
}
