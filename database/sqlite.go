package database

import (
	"database/sql"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/blogem/inkwell/querylog"
)

// DriverName is the database/sql driver whose statements reach the query log.
const DriverName = "sqlite3-querylog"

func init() {
	querylog.Register(DriverName, &sqlite3.SQLiteDriver{})
}

// OpenDB opens the SQLite database at path with foreign keys enforced.
func OpenDB(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// InitializeDatabase opens the database connection and runs migrations
func InitializeDatabase(path string) (*sql.DB, error) {
	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}
