package provenance

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"iter"

	"github.com/google/uuid"

	"github.com/diachron-labs/driftd/internal/db"
	"github.com/diachron-labs/driftd/internal/domain"
)

// Repo implements usecase/provenance.Repository over SQLite. The chain is a
// write-only ledger; edges that would close a cycle are rejected at write
// time inside the insert transaction.
type Repo struct {
	db *db.DB
}

// New creates a provenance repository.
func New(database *db.DB) *Repo {
	return &Repo{db: database}
}

const edgeColumns = `id, entity_id, entity_type, was_derived_from, derivation_activity, metadata, created_at`

// Record appends a derivation edge after checking that no path from the
// predecessor leads back to the entity.
func (r *Repo) Record(ctx context.Context, e domain.ProvenanceEdge) error {
	metadata, err := marshalMetadata(e.Metadata)
	if err != nil {
		return err
	}
	err = r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := checkNoCycle(ctx, tx, e); err != nil {
			return err
		}

		var activity any
		if e.ActivityID != nil {
			activity = e.ActivityID.String()
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO provenance_chain (`+edgeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.ID.String(), e.EntityID.String(), string(e.EntityType),
			e.DerivedFrom.String(), activity, metadata, e.CreatedAt,
		)
		if err != nil {
			if db.IsUniqueViolation(err) {
				return fmt.Errorf("edge %s -> %s: %w", e.EntityID, e.DerivedFrom, domain.ErrAlreadyExists)
			}
			return fmt.Errorf("insert provenance edge: %w", err)
		}
		return nil
	})
	return db.MapError(err)
}

// checkNoCycle walks was_derived_from from the new edge's predecessor. If the
// walk reaches the entity itself the edge would close a cycle.
func checkNoCycle(ctx context.Context, tx *sql.Tx, e domain.ProvenanceEdge) error {
	seen := map[uuid.UUID]bool{}
	cur := e.DerivedFrom
	for {
		if cur == e.EntityID {
			return fmt.Errorf("edge %s -> %s closes a cycle: %w", e.EntityID, e.DerivedFrom, domain.ErrCycleDetected)
		}
		if seen[cur] {
			// Pre-existing cycle not involving the new entity; still a
			// consistency failure, surface it rather than looping.
			return fmt.Errorf("existing cycle at %s: %w", cur, domain.ErrCycleDetected)
		}
		seen[cur] = true

		var next string
		err := tx.QueryRowContext(ctx,
			`SELECT was_derived_from FROM provenance_chain WHERE entity_id = ? AND entity_type = ?`,
			cur.String(), string(e.EntityType)).Scan(&next)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("walk provenance: %w", err)
		}
		parsed, err := uuid.Parse(next)
		if err != nil {
			return fmt.Errorf("parse predecessor id: %w", err)
		}
		cur = parsed
	}
}

// Lineage yields the derivation edges backward from an entity, terminating
// at a root. The sequence is lazy and restartable: each range call restarts
// the walk from the entity.
func (r *Repo) Lineage(ctx context.Context, entityType domain.EntityType, entityID uuid.UUID) iter.Seq2[domain.ProvenanceEdge, error] {
	return func(yield func(domain.ProvenanceEdge, error) bool) {
		cur := entityID
		for {
			row := r.db.QueryRowContext(ctx,
				`SELECT `+edgeColumns+` FROM provenance_chain WHERE entity_id = ? AND entity_type = ?`,
				cur.String(), string(entityType))
			edge, err := scanEdge(row)
			if errors.Is(err, sql.ErrNoRows) {
				return
			}
			if err != nil {
				yield(domain.ProvenanceEdge{}, err)
				return
			}
			if !yield(edge, nil) {
				return
			}
			cur = edge.DerivedFrom
		}
	}
}

// Get returns the edge recorded for an entity, if any.
func (r *Repo) Get(ctx context.Context, entityType domain.EntityType, entityID uuid.UUID) (domain.ProvenanceEdge, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+edgeColumns+` FROM provenance_chain WHERE entity_id = ? AND entity_type = ?`,
		entityID.String(), string(entityType))
	edge, err := scanEdge(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ProvenanceEdge{}, fmt.Errorf("entity %s/%s: %w", entityType, entityID, domain.ErrReferential)
	}
	return edge, err
}

type scannable interface {
	Scan(dest ...any) error
}

func scanEdge(row scannable) (domain.ProvenanceEdge, error) {
	var (
		e                         domain.ProvenanceEdge
		id, entityID, derivedFrom string
		entityType                string
		activity                  sql.NullString
		metadata                  string
	)
	err := row.Scan(&id, &entityID, &entityType, &derivedFrom, &activity, &metadata, &e.CreatedAt)
	if err != nil {
		return domain.ProvenanceEdge{}, err
	}
	if e.ID, err = uuid.Parse(id); err != nil {
		return domain.ProvenanceEdge{}, fmt.Errorf("parse edge id: %w", err)
	}
	if e.EntityID, err = uuid.Parse(entityID); err != nil {
		return domain.ProvenanceEdge{}, fmt.Errorf("parse entity id: %w", err)
	}
	if e.DerivedFrom, err = uuid.Parse(derivedFrom); err != nil {
		return domain.ProvenanceEdge{}, fmt.Errorf("parse predecessor id: %w", err)
	}
	if activity.Valid {
		act, err := uuid.Parse(activity.String)
		if err != nil {
			return domain.ProvenanceEdge{}, fmt.Errorf("parse activity id: %w", err)
		}
		e.ActivityID = &act
	}
	e.EntityType = domain.EntityType(entityType)
	if e.Metadata, err = unmarshalMetadata(metadata); err != nil {
		return domain.ProvenanceEdge{}, err
	}
	return e, nil
}

func marshalMetadata(m map[string]string) (string, error) {
	if len(m) == 0 {
		return "", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshal derivation metadata: %w", err)
	}
	return string(data), nil
}

func unmarshalMetadata(raw string) (map[string]string, error) {
	if raw == "" {
		return nil, nil
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("unmarshal derivation metadata: %w", err)
	}
	return m, nil
}
