// Package history keeps a local ledger of submitted workflows.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no submission matches a lookup.
var ErrNotFound = errors.New("submission not found")

// Submission is one ledger row.
type Submission struct {
	ID           string
	Name         string
	GenerateName string
	Namespace    string
	Fingerprint  string
	Server       string
	Phase        string
	Manifest     json.RawMessage
	CreatedAt    time.Time
}

// Store persists submissions in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Record appends a submission and returns it with ID and CreatedAt filled.
func (s *Store) Record(ctx context.Context, sub Submission) (*Submission, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if sub.Fingerprint == "" {
		return nil, fmt.Errorf("record submission %q: fingerprint is empty", sub.Name)
	}
	if len(sub.Manifest) == 0 {
		return nil, fmt.Errorf("record submission %q: manifest is empty", sub.Name)
	}
	if !json.Valid(sub.Manifest) {
		return nil, fmt.Errorf("record submission %q: manifest is not valid JSON", sub.Name)
	}

	sub.ID = uuid.NewString()
	sub.CreatedAt = s.now().UTC()

	_, err := s.db.ExecContext(ctx, `
INSERT INTO submissions(id, name, generate_name, namespace, fingerprint, server, phase, manifest, created_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?);
`, sub.ID, sub.Name, sub.GenerateName, sub.Namespace, sub.Fingerprint, sub.Server, sub.Phase,
		string(sub.Manifest), sub.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert submission: %w", err)
	}
	return &sub, nil
}

// UpdatePhase records the last observed phase of a submission.
func (s *Store) UpdatePhase(ctx context.Context, id, phase string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE submissions SET phase = ? WHERE id = ?;`, phase, id)
	if err != nil {
		return fmt.Errorf("update submission %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update submission %q: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Get returns one submission by ID.
func (s *Store) Get(ctx context.Context, id string) (*Submission, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?;`, id)
	sub, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return sub, err
}

// LatestByFingerprint returns the newest submission of an identical manifest.
func (s *Store) LatestByFingerprint(ctx context.Context, fingerprint string) (*Submission, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+`
WHERE fingerprint = ?
ORDER BY created_at DESC
LIMIT 1;`, fingerprint)
	sub, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: fingerprint %s", ErrNotFound, fingerprint)
	}
	return sub, err
}

// List returns up to limit submissions, newest first. limit <= 0 means 50.
func (s *Store) List(ctx context.Context, limit int) ([]Submission, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, selectColumns+`
ORDER BY created_at DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var out []Submission
	for rows.Next() {
		sub, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return out, nil
}

const selectColumns = `
SELECT id, name, COALESCE(generate_name, ''), namespace, fingerprint,
       COALESCE(server, ''), COALESCE(phase, ''), manifest, created_at
FROM submissions`

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (*Submission, error) {
	var (
		sub       Submission
		manifest  string
		createdAt string
	)
	if err := row.Scan(&sub.ID, &sub.Name, &sub.GenerateName, &sub.Namespace, &sub.Fingerprint,
		&sub.Server, &sub.Phase, &manifest, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan submission: %w", err)
	}
	sub.Manifest = json.RawMessage(manifest)
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	sub.CreatedAt = t
	return &sub, nil
}
