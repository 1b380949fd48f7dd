package feedback

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lab-report-explainer/internal/domain"
)

const feedbackColumns = `id, submission_id, test_name, parsed_value, correct_value,
	parsed_status, accurate, language, notes, created_at, updated_at`

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore opens or creates the database file and its schema.
// ":memory:" keeps everything in process.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// each pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// scanner is an interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanFeedback(s scanner) (*Feedback, error) {
	fb := &Feedback{}
	var status string
	var correct sql.NullFloat64

	err := s.Scan(
		&fb.ID, &fb.SubmissionID, &fb.TestName, &fb.ParsedValue, &correct,
		&status, &fb.Accurate, &fb.Language, &fb.Notes, &fb.CreatedAt, &fb.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	fb.ParsedStatus = domain.TestStatus(status)
	if correct.Valid {
		v := correct.Float64
		fb.CorrectValue = &v
	}
	return fb, nil
}

func nullableFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS parse_feedback (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		submission_id TEXT NOT NULL UNIQUE,
		test_name TEXT NOT NULL,
		parsed_value REAL NOT NULL,
		correct_value REAL,
		parsed_status TEXT NOT NULL DEFAULT '',
		accurate INTEGER NOT NULL DEFAULT 0,
		language TEXT NOT NULL DEFAULT 'en',
		notes TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_parse_feedback_test_name ON parse_feedback(test_name);
	CREATE INDEX IF NOT EXISTS idx_parse_feedback_created_at ON parse_feedback(created_at);
	`

	_, err := db.Exec(schema)
	return err
}

// Save stores or updates feedback keyed by submission id.
func (s *SQLiteStore) Save(ctx context.Context, feedback *Feedback) error {
	if err := feedback.Prepare(); err != nil {
		return err
	}
	now := time.Now().UTC()

	var existingID int64
	var createdAt time.Time
	err := s.db.QueryRowContext(ctx,
		"SELECT id, created_at FROM parse_feedback WHERE submission_id = ?",
		feedback.SubmissionID,
	).Scan(&existingID, &createdAt)

	if err == nil {
		_, err = s.db.ExecContext(ctx, `
			UPDATE parse_feedback SET
				test_name = ?,
				parsed_value = ?,
				correct_value = ?,
				parsed_status = ?,
				accurate = ?,
				language = ?,
				notes = ?,
				updated_at = ?
			WHERE id = ?
		`,
			feedback.TestName,
			feedback.ParsedValue,
			nullableFloat(feedback.CorrectValue),
			string(feedback.ParsedStatus),
			feedback.Accurate,
			feedback.Language,
			feedback.Notes,
			now,
			existingID,
		)
		if err != nil {
			return fmt.Errorf("failed to update: %w", err)
		}
		feedback.ID = existingID
		feedback.CreatedAt = createdAt
		feedback.UpdatedAt = now
		return nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to check existing: %w", err)
	}

	if feedback.CreatedAt.IsZero() {
		feedback.CreatedAt = now
	}
	feedback.UpdatedAt = now

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO parse_feedback (
			submission_id, test_name, parsed_value, correct_value,
			parsed_status, accurate, language, notes, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		feedback.SubmissionID,
		feedback.TestName,
		feedback.ParsedValue,
		nullableFloat(feedback.CorrectValue),
		string(feedback.ParsedStatus),
		feedback.Accurate,
		feedback.Language,
		feedback.Notes,
		feedback.CreatedAt,
		feedback.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get insert ID: %w", err)
	}
	feedback.ID = id

	return nil
}

// Get retrieves feedback by submission id.
func (s *SQLiteStore) Get(ctx context.Context, submissionID string) (*Feedback, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+feedbackColumns+" FROM parse_feedback WHERE submission_id = ?",
		submissionID)

	fb, err := scanFeedback(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan: %w", err)
	}
	return fb, nil
}

// List returns feedback entries newest first.
func (s *SQLiteStore) List(ctx context.Context, limit, offset int) ([]*Feedback, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+feedbackColumns+" FROM parse_feedback ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	var result []*Feedback
	for rows.Next() {
		fb, err := scanFeedback(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, fb)
	}
	return result, rows.Err()
}

// Count returns the total number of feedback entries.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM parse_feedback").Scan(&count)
	return count, err
}

// Delete removes a feedback entry by ID.
func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM parse_feedback WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Summary returns per-test accuracy.
func (s *SQLiteStore) Summary(ctx context.Context) ([]TestAccuracy, error) {
	return querySummary(ctx, s.db)
}

// ExportJSON exports all feedback to a JSON writer.
func (s *SQLiteStore) ExportJSON(ctx context.Context, writer io.Writer) error {
	return exportJSON(ctx, s, writer)
}

// ImportJSON imports feedback from a JSON reader.
func (s *SQLiteStore) ImportJSON(ctx context.Context, reader io.Reader) (int, int, error) {
	return importJSON(ctx, s, reader)
}

// Close closes the store and releases resources.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const summaryQuery = `
	SELECT test_name,
		COUNT(*) AS total,
		SUM(CASE WHEN accurate THEN 1 ELSE 0 END) AS accurate
	FROM parse_feedback
	GROUP BY test_name
	ORDER BY test_name`

func querySummary(ctx context.Context, db *sql.DB) ([]TestAccuracy, error) {
	rows, err := db.QueryContext(ctx, summaryQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize feedback: %w", err)
	}
	defer rows.Close()

	result := []TestAccuracy{}
	for rows.Next() {
		var ta TestAccuracy
		if err := rows.Scan(&ta.TestName, &ta.Total, &ta.Accurate); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		ta.AccuracyRate = accuracyRate(ta.Accurate, ta.Total)
		result = append(result, ta)
	}
	return result, rows.Err()
}
