package activity

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/diachron-labs/driftd/internal/db"
	"github.com/diachron-labs/driftd/internal/domain"
)

// Repo implements usecase/drift.Repository over SQLite. Status transitions
// are guarded by conditional updates, so a raced transition loses cleanly
// instead of overwriting a terminal state.
type Repo struct {
	db *db.DB
}

// New creates a drift activity repository.
func New(database *db.DB) *Repo {
	return &Repo{db: database}
}

const activityColumns = `id, activity_type, used_version, generated_version, agent_id,
	start_period, end_period, years, algorithm, algorithm_params, started_at, ended_at,
	status, drift_detected, magnitude, drift_type, evidence, created_by`

// Create inserts a running activity.
func (r *Repo) Create(ctx context.Context, a domain.DriftActivity) error {
	params, err := domain.MarshalParams(a.Params)
	if err != nil {
		return err
	}
	years, err := marshalYears(a.Years)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO drift_activities (`+activityColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID.String(), a.Type, a.UsedVersion.String(), nil, a.AgentID.String(),
		a.StartPeriod, a.EndPeriod, years, a.Algorithm, params, a.StartedAt, nil,
		string(a.Status), 0, nil, "", "", a.CreatedBy,
	)
	if err != nil {
		return db.MapError(fmt.Errorf("insert activity: %w", err))
	}
	return nil
}

// Get returns an activity by id.
func (r *Repo) Get(ctx context.Context, id uuid.UUID) (domain.DriftActivity, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+activityColumns+` FROM drift_activities WHERE id = ?`, id.String())
	return scanActivity(row)
}

// Complete transitions an activity to completed, linking the generated
// version and recording the outcome.
func (r *Repo) Complete(
	ctx context.Context, id, generatedVersion uuid.UUID,
	magnitude domain.Score, detected bool, driftType domain.DriftType, evidence string,
) error {
	return r.transition(ctx, id, domain.ActivityCompleted, func(tx *sql.Tx) (sql.Result, error) {
		return tx.ExecContext(ctx,
			`UPDATE drift_activities
			 SET status = ?, generated_version = ?, magnitude = ?, drift_detected = ?,
			     drift_type = ?, evidence = ?, ended_at = ?
			 WHERE id = ? AND status IN ('running', 'provisional')`,
			string(domain.ActivityCompleted), generatedVersion.String(), magnitude.Float64(),
			boolInt(detected), string(driftType), evidence, time.Now().UTC(), id.String(),
		)
	})
}

// Fail transitions an activity to the terminal error status.
func (r *Repo) Fail(ctx context.Context, id uuid.UUID, errorSummary string) error {
	return r.transition(ctx, id, domain.ActivityError, func(tx *sql.Tx) (sql.Result, error) {
		return tx.ExecContext(ctx,
			`UPDATE drift_activities SET status = ?, evidence = ?, ended_at = ?
			 WHERE id = ? AND status IN ('running', 'provisional')`,
			string(domain.ActivityError), errorSummary, time.Now().UTC(), id.String(),
		)
	})
}

// MarkProvisional transitions running -> provisional for tentative signals.
func (r *Repo) MarkProvisional(ctx context.Context, id uuid.UUID) error {
	return r.transition(ctx, id, domain.ActivityProvisional, func(tx *sql.Tx) (sql.Result, error) {
		return tx.ExecContext(ctx,
			`UPDATE drift_activities SET status = ? WHERE id = ? AND status = 'running'`,
			string(domain.ActivityProvisional), id.String(),
		)
	})
}

// transition runs a guarded status update, distinguishing a missing activity
// from an illegal transition.
func (r *Repo) transition(ctx context.Context, id uuid.UUID, to domain.ActivityStatus, update func(tx *sql.Tx) (sql.Result, error)) error {
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var status string
		err := tx.QueryRowContext(ctx,
			`SELECT status FROM drift_activities WHERE id = ?`, id.String()).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("activity %s: %w", id, domain.ErrActivityNotFound)
		}
		if err != nil {
			return fmt.Errorf("check activity status: %w", err)
		}
		if !domain.ActivityStatus(status).CanTransition(to) {
			return fmt.Errorf("activity %s is %s, cannot move to %s: %w",
				id, status, to, domain.ErrAlreadyTerminal)
		}

		res, err := update(tx)
		if err != nil {
			return fmt.Errorf("transition activity: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("transition activity: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("activity %s: %w", id, domain.ErrAlreadyTerminal)
		}
		return nil
	})
	return db.MapError(err)
}

// ListStale returns non-terminal activities started before the cutoff, for
// the external reconciliation job.
func (r *Repo) ListStale(ctx context.Context, cutoff time.Time) ([]domain.DriftActivity, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+activityColumns+` FROM drift_activities
		 WHERE status IN ('running', 'provisional') AND started_at < ?
		 ORDER BY started_at`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list stale activities: %w", err)
	}
	defer rows.Close()

	var out []domain.DriftActivity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanActivity(row scannable) (domain.DriftActivity, error) {
	var (
		a                domain.DriftActivity
		id, usedVersion  string
		generatedVersion sql.NullString
		agentID, status  string
		years, params    string
		endedAt          sql.NullTime
		detected         int
		magnitude        sql.NullFloat64
		driftType        string
	)
	err := row.Scan(&id, &a.Type, &usedVersion, &generatedVersion, &agentID,
		&a.StartPeriod, &a.EndPeriod, &years, &a.Algorithm, &params,
		&a.StartedAt, &endedAt, &status, &detected, &magnitude, &driftType,
		&a.Evidence, &a.CreatedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DriftActivity{}, domain.ErrActivityNotFound
	}
	if err != nil {
		return domain.DriftActivity{}, fmt.Errorf("scan activity: %w", err)
	}

	if a.ID, err = uuid.Parse(id); err != nil {
		return domain.DriftActivity{}, fmt.Errorf("parse activity id: %w", err)
	}
	if a.UsedVersion, err = uuid.Parse(usedVersion); err != nil {
		return domain.DriftActivity{}, fmt.Errorf("parse used version id: %w", err)
	}
	if a.AgentID, err = uuid.Parse(agentID); err != nil {
		return domain.DriftActivity{}, fmt.Errorf("parse agent id: %w", err)
	}
	if generatedVersion.Valid {
		gen, err := uuid.Parse(generatedVersion.String)
		if err != nil {
			return domain.DriftActivity{}, fmt.Errorf("parse generated version id: %w", err)
		}
		a.GeneratedVersion = &gen
	}
	if endedAt.Valid {
		t := endedAt.Time
		a.EndedAt = &t
	}
	if magnitude.Valid {
		m := domain.Score(magnitude.Float64)
		a.Magnitude = &m
	}
	a.Status = domain.ActivityStatus(status)
	a.DriftDetected = detected == 1
	a.DriftType = domain.DriftType(driftType)
	if a.Years, err = unmarshalYears(years); err != nil {
		return domain.DriftActivity{}, err
	}
	if a.Params, err = domain.UnmarshalParams(params); err != nil {
		return domain.DriftActivity{}, err
	}
	return a, nil
}

func marshalYears(years []int) (string, error) {
	if len(years) == 0 {
		return "", nil
	}
	data, err := json.Marshal(years)
	if err != nil {
		return "", fmt.Errorf("marshal years: %w", err)
	}
	return string(data), nil
}

func unmarshalYears(raw string) ([]int, error) {
	if raw == "" {
		return nil, nil
	}
	var years []int
	if err := json.Unmarshal([]byte(raw), &years); err != nil {
		return nil, fmt.Errorf("unmarshal years: %w", err)
	}
	return years, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
