// Package feedback stores reports from users about whether a value was read
// correctly off their lab report. Only the parsed fields are kept; the raw
// report text never reaches the store.
package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lab-report-explainer/internal/domain"
)

// ErrNotFound is returned when a feedback entry does not exist
var ErrNotFound = errors.New("feedback not found")

// Feedback is one user's verdict on a single parsed test.
type Feedback struct {
	ID           int64             `json:"id,omitempty"`
	SubmissionID string            `json:"submission_id"`
	TestName     string            `json:"test_name"`
	ParsedValue  float64           `json:"parsed_value"`
	CorrectValue *float64          `json:"correct_value,omitempty"` // set when the parsed value was wrong
	ParsedStatus domain.TestStatus `json:"parsed_status,omitempty"`
	Accurate     bool              `json:"accurate"`
	Language     string            `json:"language,omitempty"`
	Notes        string            `json:"notes,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// Prepare assigns a submission id when missing and validates the entry
func (f *Feedback) Prepare() error {
	f.TestName = strings.TrimSpace(f.TestName)
	if f.TestName == "" {
		return domain.NewValidationError("test_name", "test name is required", f.TestName)
	}
	if f.ParsedStatus != "" && !f.ParsedStatus.IsValid() {
		return domain.NewValidationError("parsed_status", fmt.Sprintf("unknown status %q", f.ParsedStatus), f.ParsedStatus)
	}
	if f.Accurate && f.CorrectValue != nil && *f.CorrectValue != f.ParsedValue {
		return domain.NewValidationError("correct_value", "an accurate entry cannot carry a different correct value", *f.CorrectValue)
	}
	if len(f.Notes) > 2000 {
		return domain.NewValidationError("notes", "notes must be at most 2000 characters", len(f.Notes))
	}

	if f.SubmissionID == "" {
		f.SubmissionID = uuid.NewString()
	} else if _, err := uuid.Parse(f.SubmissionID); err != nil {
		return domain.NewValidationError("submission_id", "submission id must be a UUID", f.SubmissionID)
	}
	f.Language = domain.NormalizeLanguage(f.Language)
	return nil
}

// TestAccuracy aggregates feedback for one test
type TestAccuracy struct {
	TestName     string  `json:"test_name"`
	Total        int64   `json:"total"`
	Accurate     int64   `json:"accurate"`
	AccuracyRate float64 `json:"accuracy_rate"`
}

// Store defines the interface for feedback storage operations.
type Store interface {
	// Save stores or updates feedback. Entries with the same submission id
	// are updated in place.
	Save(ctx context.Context, feedback *Feedback) error

	// Get retrieves feedback by submission id. It returns nil, nil when
	// nothing matches.
	Get(ctx context.Context, submissionID string) (*Feedback, error)

	// List returns feedback entries newest first.
	List(ctx context.Context, limit, offset int) ([]*Feedback, error)

	Count(ctx context.Context) (int64, error)

	// Delete removes a feedback entry by ID.
	Delete(ctx context.Context, id int64) error

	// Summary returns per-test accuracy ordered by test name.
	Summary(ctx context.Context) ([]TestAccuracy, error)

	ExportJSON(ctx context.Context, writer io.Writer) error

	// ImportJSON imports feedback, skipping submission ids already present.
	ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error)

	Close() error
}

// FeedbackExport represents the JSON export format.
type FeedbackExport struct {
	Version    string      `json:"version"`
	ExportedAt time.Time   `json:"exported_at"`
	Count      int         `json:"count"`
	Feedback   []*Feedback `json:"feedback"`
}

const (
	exportVersion  = "1.0"
	maxExportLimit = 1000000
)

func exportJSON(ctx context.Context, s Store, writer io.Writer) error {
	all, err := s.List(ctx, maxExportLimit, 0)
	if err != nil {
		return fmt.Errorf("failed to list feedback: %w", err)
	}
	if all == nil {
		all = []*Feedback{}
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(&FeedbackExport{
		Version:    exportVersion,
		ExportedAt: time.Now().UTC(),
		Count:      len(all),
		Feedback:   all,
	})
}

func importJSON(ctx context.Context, s Store, reader io.Reader) (imported int, skipped int, err error) {
	var export FeedbackExport
	if err := json.NewDecoder(reader).Decode(&export); err != nil {
		return 0, 0, fmt.Errorf("failed to decode JSON: %w", err)
	}

	for _, fb := range export.Feedback {
		if fb == nil {
			continue
		}
		if fb.SubmissionID != "" {
			existing, err := s.Get(ctx, fb.SubmissionID)
			if err != nil {
				return imported, skipped, fmt.Errorf("failed to check existing: %w", err)
			}
			if existing != nil {
				skipped++
				continue
			}
		}

		fb.ID = 0
		if err := s.Save(ctx, fb); err != nil {
			if domain.IsValidationError(err) {
				skipped++
				continue
			}
			return imported, skipped, fmt.Errorf("failed to save: %w", err)
		}
		imported++
	}

	return imported, skipped, nil
}

func accuracyRate(accurate, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(accurate) / float64(total)
}
