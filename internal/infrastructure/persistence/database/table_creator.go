// Package database provides site schema instantiation
package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/security"
)

var tables = []string{
	`CREATE TABLE IF NOT EXISTS notices (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		body TEXT NOT NULL,
		sunset_date TIMESTAMP NOT NULL,
		learn_more_url TEXT NOT NULL,
		new_interface_url TEXT NOT NULL,
		image_src TEXT,
		is_active INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		changed TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS fingerprints (
		id TEXT PRIMARY KEY,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS visits (
		id TEXT PRIMARY KEY,
		fingerprint_id TEXT NOT NULL REFERENCES fingerprints(id),
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS dismissals (
		fingerprint_id TEXT NOT NULL REFERENCES fingerprints(id),
		notice_id TEXT NOT NULL,
		dismissed_at TIMESTAMP NOT NULL,
		PRIMARY KEY (fingerprint_id, notice_id)
	)`,
	`CREATE TABLE IF NOT EXISTS operators (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		subscribed INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL
	)`,
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_visits_fingerprint ON visits(fingerprint_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_dismissals_notice ON dismissals(notice_id)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_notices_active ON notices(is_active) WHERE is_active = 1`,
}

// TableCreator handles the creation of the database schema for a new site.
type TableCreator struct{}

// NewTableCreator creates a new TableCreator.
func NewTableCreator() *TableCreator {
	return &TableCreator{}
}

// CreateSchema executes all necessary queries to build the site's database tables and indexes.
func (tc *TableCreator) CreateSchema(db *sql.DB) error {
	for _, tableSQL := range tables {
		if _, err := db.Exec(tableSQL); err != nil {
			return fmt.Errorf("failed to create table for query [%s]: %w", tableSQL, err)
		}
	}

	for _, indexSQL := range indexes {
		if _, err := db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index for query [%s]: %w", indexSQL, err)
		}
	}
	return nil
}

// SeedInitialContent adds the default notice required for a new site to render something.
func (tc *TableCreator) SeedInitialContent(db *sql.DB) error {
	// Idempotently create the placeholder sunset notice, inactive by default.
	var noticeExists bool
	err := db.QueryRow("SELECT EXISTS(SELECT 1 FROM notices)").Scan(&noticeExists)
	if err != nil {
		return fmt.Errorf("failed to check for notice existence: %w", err)
	}

	if !noticeExists {
		noticeID := security.GenerateULID()
		now := time.Now().UTC()
		_, err = db.Exec(
			`INSERT INTO notices (id, title, body, sunset_date, learn_more_url, new_interface_url, is_active, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, 0, ?)`,
			noticeID,
			"The legacy interface is going away",
			"We are retiring this interface. Switch to the new experience before the sunset date.",
			now.AddDate(0, 6, 0).Format(time.RFC3339),
			"https://example.com/sunset-faq",
			"https://example.com/new",
			now.Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("failed to insert placeholder notice: %w", err)
		}
	}

	return nil
}
