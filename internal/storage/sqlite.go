// Package storage provides the SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/carelane/medcheck/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and
// initializes the schema. Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS applications (
		id TEXT PRIMARY KEY,
		full_name TEXT NOT NULL,
		email TEXT NOT NULL,
		organization TEXT NOT NULL,
		phone TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_applications_created_at ON applications(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// CreateApplication inserts an applicant row. The write is a single insert
// with no read-modify-write, so no concurrency control is needed.
func (s *SQLiteStorage) CreateApplication(ctx context.Context, info *models.ApplicantInfo) error {
	if info.ID == "" {
		info.ID = uuid.New().String()
	}
	info.CreatedAt = time.Now()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO applications (id, full_name, email, organization, phone, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		info.ID, info.FullName, info.Email, info.Organization, info.Phone, info.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

// ListApplications returns applications ordered newest first.
func (s *SQLiteStorage) ListApplications(ctx context.Context, offset, limit int) ([]*models.ApplicantInfo, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, full_name, email, organization, phone, created_at
		 FROM applications ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []*models.ApplicantInfo
	for rows.Next() {
		var a models.ApplicantInfo
		if err := rows.Scan(&a.ID, &a.FullName, &a.Email, &a.Organization, &a.Phone, &a.CreatedAt); err != nil {
			return nil, err
		}
		apps = append(apps, &a)
	}
	return apps, rows.Err()
}

// CountApplications returns the number of stored applications.
func (s *SQLiteStorage) CountApplications(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM applications`).Scan(&n)
	return n, err
}

// Close closes the underlying database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
