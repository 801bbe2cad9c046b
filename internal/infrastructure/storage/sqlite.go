package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Storage provides SQLite database access for jar snapshots and user
// settings. It implements the Repository interface.
type Storage struct {
	db *sql.DB
}

// Compile-time check that Storage implements Repository
var _ Repository = (*Storage)(nil)

// NewStorage creates a new storage instance with SQLite database
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints (SQLite-specific)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Storage{db: db}

	// Run all pending migrations
	if err := s.runMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// LoadJars returns all jars for an owner in position order.
func (s *Storage) LoadJars(owner string) ([]JarRecord, error) {
	query := `
	SELECT owner, name, description, percent, current_percent, position, updated_at
	FROM jars WHERE owner = ? ORDER BY position
	`

	rows, err := s.db.Query(query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to load jars for %q: %w", owner, err)
	}
	defer rows.Close()

	jars := make([]JarRecord, 0)
	for rows.Next() {
		var record JarRecord
		if err := rows.Scan(
			&record.Owner,
			&record.Name,
			&record.Description,
			&record.Percent,
			&record.CurrentPercent,
			&record.Position,
			&record.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan jar row: %w", err)
		}
		jars = append(jars, record)
	}

	return jars, rows.Err()
}

// ReplaceJars swaps the owner's snapshot in a single transaction.
// A failure anywhere rolls back and leaves the previous snapshot intact.
func (s *Storage) ReplaceJars(owner string, jars []JarRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin snapshot replace: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM jars WHERE owner = ?`, owner); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to clear jars for %q: %w", owner, err)
	}

	insert := `
	INSERT INTO jars (owner, name, description, percent, current_percent, position, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now().UTC()
	for i, record := range jars {
		if _, err := tx.Exec(insert,
			owner,
			record.Name,
			record.Description,
			record.Percent,
			record.CurrentPercent,
			i,
			now,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert jar %q: %w", record.Name, err)
		}
	}

	return tx.Commit()
}

// GetSettings returns the owner's settings, or nil when none are stored.
func (s *Storage) GetSettings(owner string) (*UserSettings, error) {
	query := `SELECT owner, total_income, updated_at FROM user_settings WHERE owner = ?`

	settings := &UserSettings{}
	err := s.db.QueryRow(query, owner).Scan(
		&settings.Owner,
		&settings.TotalIncome,
		&settings.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load settings for %q: %w", owner, err)
	}

	return settings, nil
}

// SaveSettings inserts or updates the owner's settings.
func (s *Storage) SaveSettings(settings *UserSettings) error {
	query := `
	INSERT INTO user_settings (owner, total_income, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(owner) DO UPDATE SET
		total_income = excluded.total_income,
		updated_at = excluded.updated_at
	`

	_, err := s.db.Exec(query, settings.Owner, settings.TotalIncome, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save settings for %q: %w", settings.Owner, err)
	}
	return nil
}
