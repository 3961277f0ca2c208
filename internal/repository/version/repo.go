package version

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"

	"github.com/google/uuid"

	"github.com/diachron-labs/driftd/internal/db"
	"github.com/diachron-labs/driftd/internal/domain"
)

// Repo implements usecase/version.Repository over SQLite. Every multi-row
// invariant (current-flag flip, version numbering, cycle check) runs inside
// one immediate transaction.
type Repo struct {
	db *db.DB
}

// New creates a term version repository.
func New(database *db.DB) *Repo {
	return &Repo{db: database}
}

const versionColumns = `id, term_id, period, start_year, end_year, meaning, fuzziness, confidence,
	corpus_source, source_citation, extraction_method, generated_at, derived_from, derivation_type,
	version_number, is_current, neighborhood_overlap, positional_change, similarity_reduction, created_by`

// CreateRoot inserts version #1 of a term. Fails if the term is missing or
// already has versions.
func (r *Repo) CreateRoot(ctx context.Context, v domain.TermVersion) error {
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM terms WHERE id = ?`, v.TermID.String()).Scan(&exists); err != nil {
			return fmt.Errorf("check term: %w", err)
		}
		if exists == 0 {
			return fmt.Errorf("term %s: %w", v.TermID, domain.ErrTermNotFound)
		}

		var versions int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM term_versions WHERE term_id = ?`, v.TermID.String()).Scan(&versions); err != nil {
			return fmt.Errorf("count versions: %w", err)
		}
		if versions > 0 {
			return fmt.Errorf("term %s already has a root version: %w", v.TermID, domain.ErrAlreadyExists)
		}

		v.VersionNumber = 1
		v.IsCurrent = true
		return insertVersion(ctx, tx, v)
	})
	return db.MapError(err)
}

// Derive inserts the next version of the parent's term inside one
// transaction: parent lookup, linearity check, defensive cycle check,
// version numbering and the atomic current-flag flip.
func (r *Repo) Derive(ctx context.Context, v domain.TermVersion) (domain.TermVersion, error) {
	if v.DerivedFrom == nil {
		return domain.TermVersion{}, fmt.Errorf("%w: derived version without parent", domain.ErrValidation)
	}
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		parent, err := getVersion(ctx, tx, *v.DerivedFrom)
		if errors.Is(err, domain.ErrVersionNotFound) {
			return fmt.Errorf("parent %s: %w", *v.DerivedFrom, domain.ErrParentNotFound)
		}
		if err != nil {
			return err
		}
		if parent.TermID != v.TermID {
			return fmt.Errorf("%w: parent belongs to term %s, not %s", domain.ErrValidation, parent.TermID, v.TermID)
		}
		if v.DerivationType.RequiresLinearParent() && !parent.IsCurrent {
			return fmt.Errorf("parent %s: %w", parent.ID, domain.ErrParentSuperseded)
		}
		if err := checkNoCycle(ctx, tx, parent, v.ID); err != nil {
			return err
		}

		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(version_number), 0) + 1 FROM term_versions WHERE term_id = ?`,
			v.TermID.String()).Scan(&v.VersionNumber); err != nil {
			return fmt.Errorf("next version number: %w", err)
		}

		if v.DerivationType.TakesCurrentFlag() {
			if _, err := tx.ExecContext(ctx,
				`UPDATE term_versions SET is_current = 0 WHERE term_id = ? AND is_current = 1`,
				v.TermID.String()); err != nil {
				return fmt.Errorf("clear current flag: %w", err)
			}
			v.IsCurrent = true
		} else {
			v.IsCurrent = false
		}
		return insertVersion(ctx, tx, v)
	})
	if err != nil {
		return domain.TermVersion{}, db.MapError(err)
	}
	return v, nil
}

// checkNoCycle walks the parent chain upward. The chain must terminate
// without revisiting a version or reaching the would-be child.
func checkNoCycle(ctx context.Context, tx *sql.Tx, parent domain.TermVersion, childID uuid.UUID) error {
	seen := map[uuid.UUID]bool{childID: true}
	cur := parent.ID
	for {
		if seen[cur] {
			return fmt.Errorf("version %s reachable from its own ancestry: %w", cur, domain.ErrCycleDetected)
		}
		seen[cur] = true

		var derivedFrom sql.NullString
		err := tx.QueryRowContext(ctx,
			`SELECT derived_from FROM term_versions WHERE id = ?`, cur.String()).Scan(&derivedFrom)
		if errors.Is(err, sql.ErrNoRows) || err == nil && !derivedFrom.Valid {
			return nil
		}
		if err != nil {
			return fmt.Errorf("walk ancestry: %w", err)
		}
		next, err := uuid.Parse(derivedFrom.String)
		if err != nil {
			return fmt.Errorf("parse ancestor id: %w", err)
		}
		cur = next
	}
}

// SetCurrent is the administrative override: clears the term's previous
// current flag and sets it on the given version in the same transaction.
func (r *Repo) SetCurrent(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		v, err := getVersion(ctx, tx, id)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE term_versions SET is_current = 0 WHERE term_id = ? AND is_current = 1`,
			v.TermID.String()); err != nil {
			return fmt.Errorf("clear current flag: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE term_versions SET is_current = 1 WHERE id = ?`, id.String()); err != nil {
			return fmt.Errorf("set current flag: %w", err)
		}
		return nil
	})
	return db.MapError(err)
}

// Get returns a version by id.
func (r *Repo) Get(ctx context.Context, id uuid.UUID) (domain.TermVersion, error) {
	return getVersion(ctx, r.db, id)
}

// Current returns the term's current version.
func (r *Repo) Current(ctx context.Context, termID uuid.UUID) (domain.TermVersion, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+versionColumns+` FROM term_versions WHERE term_id = ? AND is_current = 1`,
		termID.String())
	return scanVersion(row)
}

// History yields the term's versions ordered by version number, root first.
// The sequence is lazy and restartable: each range call re-runs the query.
func (r *Repo) History(ctx context.Context, termID uuid.UUID) iter.Seq2[domain.TermVersion, error] {
	return func(yield func(domain.TermVersion, error) bool) {
		rows, err := r.db.QueryContext(ctx,
			`SELECT `+versionColumns+` FROM term_versions WHERE term_id = ? ORDER BY version_number`,
			termID.String())
		if err != nil {
			yield(domain.TermVersion{}, fmt.Errorf("query history: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			v, err := scanVersion(rows)
			if !yield(v, err) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(domain.TermVersion{}, fmt.Errorf("iterate history: %w", err))
		}
	}
}

// UpdateDriftMetrics writes the externally computed drift metrics onto a
// version produced by a completed activity.
func (r *Repo) UpdateDriftMetrics(ctx context.Context, id uuid.UUID, m domain.DriftMetrics) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE term_versions
		 SET neighborhood_overlap = ?, positional_change = ?, similarity_reduction = ?
		 WHERE id = ?`,
		scoreValue(m.NeighborhoodOverlap), scoreValue(m.PositionalChange),
		scoreValue(m.SimilarityReduction), id.String(),
	)
	if err != nil {
		return db.MapError(fmt.Errorf("update drift metrics: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update drift metrics: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("version %s: %w", id, domain.ErrVersionNotFound)
	}
	return nil
}

func insertVersion(ctx context.Context, tx *sql.Tx, v domain.TermVersion) error {
	var derivedFrom any
	if v.DerivedFrom != nil {
		derivedFrom = v.DerivedFrom.String()
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO term_versions (`+versionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID.String(), v.TermID.String(), v.Period, intValue(v.StartYear), intValue(v.EndYear),
		v.Meaning, v.Fuzziness.Float64(), string(v.Confidence),
		v.CorpusSource, v.SourceCitation, v.ExtractionMethod, v.GeneratedAt,
		derivedFrom, string(v.DerivationType), v.VersionNumber, boolInt(v.IsCurrent),
		scoreValue(v.Metrics.NeighborhoodOverlap), scoreValue(v.Metrics.PositionalChange),
		scoreValue(v.Metrics.SimilarityReduction), v.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("insert version: %w", err)
	}
	return nil
}

func getVersion(ctx context.Context, q db.Executor, id uuid.UUID) (domain.TermVersion, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+versionColumns+` FROM term_versions WHERE id = ?`, id.String())
	return scanVersion(row)
}

type scannable interface {
	Scan(dest ...any) error
}

func scanVersion(row scannable) (domain.TermVersion, error) {
	var (
		v                            domain.TermVersion
		id, termID                   string
		startYear, endYear           sql.NullInt64
		confidence, derivation       string
		derivedFrom                  sql.NullString
		isCurrent                    int
		overlap, positional, reduced sql.NullFloat64
	)
	err := row.Scan(&id, &termID, &v.Period, &startYear, &endYear, &v.Meaning,
		&v.Fuzziness, &confidence, &v.CorpusSource, &v.SourceCitation, &v.ExtractionMethod,
		&v.GeneratedAt, &derivedFrom, &derivation, &v.VersionNumber, &isCurrent,
		&overlap, &positional, &reduced, &v.CreatedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.TermVersion{}, domain.ErrVersionNotFound
	}
	if err != nil {
		return domain.TermVersion{}, fmt.Errorf("scan version: %w", err)
	}

	if v.ID, err = uuid.Parse(id); err != nil {
		return domain.TermVersion{}, fmt.Errorf("parse version id: %w", err)
	}
	if v.TermID, err = uuid.Parse(termID); err != nil {
		return domain.TermVersion{}, fmt.Errorf("parse term id: %w", err)
	}
	if derivedFrom.Valid {
		parent, err := uuid.Parse(derivedFrom.String)
		if err != nil {
			return domain.TermVersion{}, fmt.Errorf("parse parent id: %w", err)
		}
		v.DerivedFrom = &parent
	}
	v.Confidence = domain.ConfidenceLevel(confidence)
	v.DerivationType = domain.DerivationType(derivation)
	v.IsCurrent = isCurrent == 1
	v.StartYear = intPtr(startYear)
	v.EndYear = intPtr(endYear)
	v.Metrics = domain.DriftMetrics{
		NeighborhoodOverlap: scorePtr(overlap),
		PositionalChange:    scorePtr(positional),
		SimilarityReduction: scorePtr(reduced),
	}
	return v, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func intValue(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func scoreValue(s *domain.Score) any {
	if s == nil {
		return nil
	}
	return s.Float64()
}

func scorePtr(f sql.NullFloat64) *domain.Score {
	if !f.Valid {
		return nil
	}
	s := domain.Score(f.Float64)
	return &s
}
