package anchor

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

// Repo implements usecase/anchor.Repository over SQLite. The frequency
// counter is maintained by a single insert-or-increment statement inside the
// association transaction, never by a read-then-write.
type Repo struct {
	db *db.DB
}

// New creates an anchor repository.
func New(database *db.DB) *Repo {
	return &Repo{db: database}
}

const anchorColumns = `id, text, frequency, first_used_in, last_used_in, created_at`

// Attach associates an anchor with a version, lazily creating the anchor and
// incrementing its frequency in the same transaction. A duplicate
// (version, anchor) pair rolls the increment back with the association.
func (r *Repo) Attach(ctx context.Context, versionID uuid.UUID, text string, similarity *domain.Score, rank *int) (domain.AnchorLink, error) {
	var link domain.AnchorLink
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var (
			isCurrent  int
			derivation string
		)
		err := tx.QueryRowContext(ctx,
			`SELECT is_current, derivation_type FROM term_versions WHERE id = ?`,
			versionID.String()).Scan(&isCurrent, &derivation)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("version %s: %w", versionID, domain.ErrVersionNotFound)
		}
		if err != nil {
			return fmt.Errorf("check version: %w", err)
		}
		// Branch versions are born without the current flag, so non-current
		// only means superseded for lineages that carry it.
		if isCurrent == 0 && domain.DerivationType(derivation).TakesCurrentFlag() {
			return fmt.Errorf("version %s no longer accepts associations: %w", versionID, domain.ErrVersionSuperseded)
		}

		now := time.Now().UTC()
		// Insert-or-increment in one statement so concurrent attaches on the
		// same anchor text cannot lose updates.
		row := tx.QueryRowContext(ctx,
			`INSERT INTO context_anchors (`+anchorColumns+`)
			 VALUES (?, ?, 1, ?, ?, ?)
			 ON CONFLICT(text) DO UPDATE SET
				frequency = frequency + 1,
				last_used_in = excluded.last_used_in
			 RETURNING `+anchorColumns,
			uuid.New().String(), text, versionID.String(), versionID.String(), now,
		)
		anchor, err := scanAnchor(row)
		if err != nil {
			return fmt.Errorf("upsert anchor %q: %w", text, err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO term_version_anchors (version_id, anchor_id, similarity, rank, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			versionID.String(), anchor.ID.String(), scoreValue(similarity), intValue(rank), now,
		)
		if err != nil {
			if db.IsUniqueViolation(err) {
				return fmt.Errorf("anchor %q already attached to version %s: %w",
					text, versionID, domain.ErrAlreadyExists)
			}
			return fmt.Errorf("insert association: %w", err)
		}

		link = domain.AnchorLink{Anchor: anchor, VersionID: versionID, Similarity: similarity, Rank: rank}
		return nil
	})
	if err != nil {
		return domain.AnchorLink{}, db.MapError(err)
	}
	return link, nil
}

// Detach removes an association and decrements the anchor's frequency in the
// same transaction. The counter never goes below zero.
func (r *Repo) Detach(ctx context.Context, versionID, anchorID uuid.UUID) error {
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM term_version_anchors WHERE version_id = ? AND anchor_id = ?`,
			versionID.String(), anchorID.String())
		if err != nil {
			return fmt.Errorf("delete association: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete association: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("association %s/%s: %w", versionID, anchorID, domain.ErrAnchorNotFound)
		}

		res, err = tx.ExecContext(ctx,
			`UPDATE context_anchors SET frequency = frequency - 1 WHERE id = ? AND frequency > 0`,
			anchorID.String())
		if err != nil {
			return fmt.Errorf("decrement frequency: %w", err)
		}
		n, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("decrement frequency: %w", err)
		}
		if n == 0 {
			// Association existed but the counter was already zero: the
			// invariant is broken upstream, never silently coerced.
			return fmt.Errorf("anchor %s: %w", anchorID, domain.ErrNegativeFrequency)
		}
		return nil
	})
	return db.MapError(err)
}

// Neighborhood returns a version's anchors ordered by rank, then descending
// similarity. Unranked anchors sort last.
func (r *Repo) Neighborhood(ctx context.Context, versionID uuid.UUID) ([]domain.AnchorLink, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT a.id, a.text, a.frequency, a.first_used_in, a.last_used_in, a.created_at,
			va.similarity, va.rank
		 FROM term_version_anchors va
		 JOIN context_anchors a ON a.id = va.anchor_id
		 WHERE va.version_id = ?
		 ORDER BY va.rank IS NULL, va.rank, va.similarity DESC`,
		versionID.String())
	if err != nil {
		return nil, fmt.Errorf("query neighborhood: %w", err)
	}
	defer rows.Close()

	var out []domain.AnchorLink
	for rows.Next() {
		var (
			anchor      domain.ContextAnchor
			id          string
			first, last sql.NullString
			similarity  sql.NullFloat64
			rank        sql.NullInt64
		)
		if err := rows.Scan(&id, &anchor.Text, &anchor.Frequency, &first, &last,
			&anchor.CreatedAt, &similarity, &rank); err != nil {
			return nil, fmt.Errorf("scan neighborhood row: %w", err)
		}
		if anchor.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse anchor id: %w", err)
		}
		anchor.FirstUsedIn = uuidPtr(first)
		anchor.LastUsedIn = uuidPtr(last)

		link := domain.AnchorLink{Anchor: anchor, VersionID: versionID}
		if similarity.Valid {
			s := domain.Score(similarity.Float64)
			link.Similarity = &s
		}
		if rank.Valid {
			n := int(rank.Int64)
			link.Rank = &n
		}
		out = append(out, link)
	}
	return out, rows.Err()
}

// Vocabulary returns the global anchor catalogue ranked by frequency.
func (r *Repo) Vocabulary(ctx context.Context, limit int) ([]domain.ContextAnchor, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+anchorColumns+` FROM context_anchors ORDER BY frequency DESC, text LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query vocabulary: %w", err)
	}
	defer rows.Close()

	var out []domain.ContextAnchor
	for rows.Next() {
		a, err := scanAnchor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetByText returns an anchor by its text.
func (r *Repo) GetByText(ctx context.Context, text string) (domain.ContextAnchor, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+anchorColumns+` FROM context_anchors WHERE text = ?`, text)
	a, err := scanAnchor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ContextAnchor{}, fmt.Errorf("anchor %q: %w", text, domain.ErrAnchorNotFound)
	}
	return a, err
}

// LiveCount returns the number of live associations referencing an anchor.
// It must always equal the anchor's frequency.
func (r *Repo) LiveCount(ctx context.Context, anchorID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM term_version_anchors WHERE anchor_id = ?`, anchorID.String()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count associations: %w", err)
	}
	return n, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanAnchor(row scannable) (domain.ContextAnchor, error) {
	var (
		a           domain.ContextAnchor
		id          string
		first, last sql.NullString
	)
	err := row.Scan(&id, &a.Text, &a.Frequency, &first, &last, &a.CreatedAt)
	if err != nil {
		return domain.ContextAnchor{}, err
	}
	if a.ID, err = uuid.Parse(id); err != nil {
		return domain.ContextAnchor{}, fmt.Errorf("parse anchor id: %w", err)
	}
	a.FirstUsedIn = uuidPtr(first)
	a.LastUsedIn = uuidPtr(last)
	return a, nil
}

func uuidPtr(s sql.NullString) *uuid.UUID {
	if !s.Valid {
		return nil
	}
	id, err := uuid.Parse(s.String)
	if err != nil {
		return nil
	}
	return &id
}

func scoreValue(s *domain.Score) any {
	if s == nil {
		return nil
	}
	return s.Float64()
}

func intValue(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
