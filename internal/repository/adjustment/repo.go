package adjustment

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

// Repo implements the fuzziness adjustment log over SQLite. The audit row and
// the live score update commit in the same transaction, so the recorded
// original score is the one actually replaced.
type Repo struct {
	db *db.DB
}

// New creates a fuzziness adjustment repository.
func New(database *db.DB) *Repo {
	return &Repo{db: database}
}

// Adjust reads the version's current score, appends the audit row and
// updates the live score, all in one transaction.
func (r *Repo) Adjust(ctx context.Context, versionID uuid.UUID, newScore domain.Score, reason string, adjustedBy int64) (domain.FuzzinessAdjustment, error) {
	var adj domain.FuzzinessAdjustment
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var original float64
		err := tx.QueryRowContext(ctx,
			`SELECT fuzziness FROM term_versions WHERE id = ?`, versionID.String()).Scan(&original)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("version %s: %w", versionID, domain.ErrVersionNotFound)
		}
		if err != nil {
			return fmt.Errorf("read current score: %w", err)
		}

		now := time.Now().UTC()
		res, err := tx.ExecContext(ctx,
			`INSERT INTO fuzziness_adjustments (version_id, original_score, adjusted_score, reason, adjusted_by, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			versionID.String(), original, newScore.Float64(), reason, adjustedBy, now,
		)
		if err != nil {
			return fmt.Errorf("insert adjustment: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("adjustment id: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE term_versions SET fuzziness = ?, confidence = ? WHERE id = ?`,
			newScore.Float64(), string(domain.ConfidenceFor(newScore)), versionID.String(),
		); err != nil {
			return fmt.Errorf("update live score: %w", err)
		}

		adj = domain.FuzzinessAdjustment{
			ID:            id,
			VersionID:     versionID,
			OriginalScore: domain.Score(original),
			AdjustedScore: newScore,
			Reason:        reason,
			AdjustedBy:    adjustedBy,
			CreatedAt:     now,
		}
		return nil
	})
	if err != nil {
		return domain.FuzzinessAdjustment{}, db.MapError(err)
	}
	return adj, nil
}

// ListForVersion returns a version's adjustment history, oldest first.
func (r *Repo) ListForVersion(ctx context.Context, versionID uuid.UUID) ([]domain.FuzzinessAdjustment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, version_id, original_score, adjusted_score, reason, adjusted_by, created_at
		 FROM fuzziness_adjustments WHERE version_id = ? ORDER BY id`,
		versionID.String())
	if err != nil {
		return nil, fmt.Errorf("list adjustments: %w", err)
	}
	defer rows.Close()

	var out []domain.FuzzinessAdjustment
	for rows.Next() {
		var (
			adj domain.FuzzinessAdjustment
			vid string
		)
		if err := rows.Scan(&adj.ID, &vid, &adj.OriginalScore, &adj.AdjustedScore,
			&adj.Reason, &adj.AdjustedBy, &adj.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan adjustment: %w", err)
		}
		if adj.VersionID, err = uuid.Parse(vid); err != nil {
			return nil, fmt.Errorf("parse version id: %w", err)
		}
		out = append(out, adj)
	}
	return out, rows.Err()
}
