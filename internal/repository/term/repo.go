package term

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/diachron-labs/driftd/internal/db"
	"github.com/diachron-labs/driftd/internal/domain"
)

// Repo implements usecase/term.Repository over SQLite.
type Repo struct {
	db *db.DB
}

// New creates a term repository.
func New(database *db.DB) *Repo {
	return &Repo{db: database}
}

const termColumns = `id, text, status, research_domain, notes, created_by, updated_by, created_at, updated_at`

// Create inserts a term. Text is unique per creator.
func (r *Repo) Create(ctx context.Context, t domain.Term) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO terms (`+termColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID.String(), t.Text, string(t.Status), t.ResearchDomain, t.Notes,
		t.CreatedBy, t.UpdatedBy, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("term %q for creator %d: %w", t.Text, t.CreatedBy, domain.ErrAlreadyExists)
		}
		return db.MapError(fmt.Errorf("insert term: %w", err))
	}
	return nil
}

// Get returns a term by id.
func (r *Repo) Get(ctx context.Context, id uuid.UUID) (domain.Term, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+termColumns+` FROM terms WHERE id = ?`, id.String())
	return scanTerm(row)
}

// GetByText returns a term by its text for one creator.
func (r *Repo) GetByText(ctx context.Context, text string, createdBy int64) (domain.Term, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+termColumns+` FROM terms WHERE text = ? AND created_by = ?`, text, createdBy)
	return scanTerm(row)
}

// List returns terms, optionally filtered by status.
func (r *Repo) List(ctx context.Context, status domain.TermStatus) ([]domain.Term, error) {
	query := `SELECT ` + termColumns + ` FROM terms`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY text`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list terms: %w", err)
	}
	defer rows.Close()

	var out []domain.Term
	for rows.Next() {
		t, err := scanTerm(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UpdateStatus moves a term to a new lifecycle status. Terms are never
// deleted; retirement is a move to deprecated.
func (r *Repo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TermStatus, updatedBy int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE terms SET status = ?, updated_by = ?, updated_at = ? WHERE id = ?`,
		string(status), updatedBy, time.Now().UTC(), id.String(),
	)
	if err != nil {
		return db.MapError(fmt.Errorf("update term status: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update term status: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("term %s: %w", id, domain.ErrTermNotFound)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanTerm(row scannable) (domain.Term, error) {
	var (
		t          domain.Term
		id, status string
	)
	err := row.Scan(&id, &t.Text, &status, &t.ResearchDomain, &t.Notes,
		&t.CreatedBy, &t.UpdatedBy, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Term{}, domain.ErrTermNotFound
	}
	if err != nil {
		return domain.Term{}, fmt.Errorf("scan term: %w", err)
	}
	t.ID, err = uuid.Parse(id)
	if err != nil {
		return domain.Term{}, fmt.Errorf("parse term id: %w", err)
	}
	t.Status = domain.TermStatus(status)
	return t, nil
}
