package agent

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/diachron-labs/driftd/internal/db"
	"github.com/diachron-labs/driftd/internal/domain"
)

// Repo implements usecase/agent.Repository over SQLite.
type Repo struct {
	db *db.DB
}

// New creates an analysis agent repository.
func New(database *db.DB) *Repo {
	return &Repo{db: database}
}

const agentColumns = `id, agent_type, name, description, algorithm, algorithm_params, active, user_id, created_at`

// Create inserts an agent.
func (r *Repo) Create(ctx context.Context, a domain.AnalysisAgent) error {
	params, err := domain.MarshalParams(a.Params)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO analysis_agents (`+agentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID.String(), string(a.Type), a.Name, a.Description, a.Algorithm, params,
		boolInt(a.Active), a.UserID, a.CreatedAt,
	)
	if err != nil {
		return db.MapError(fmt.Errorf("insert agent: %w", err))
	}
	return nil
}

// Get returns an agent by id.
func (r *Repo) Get(ctx context.Context, id uuid.UUID) (domain.AnalysisAgent, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+agentColumns+` FROM analysis_agents WHERE id = ?`, id.String())
	return scanAgent(row)
}

// List returns agents, optionally only active ones.
func (r *Repo) List(ctx context.Context, activeOnly bool) ([]domain.AnalysisAgent, error) {
	query := `SELECT ` + agentColumns + ` FROM analysis_agents`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	defer rows.Close()

	var out []domain.AnalysisAgent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// SetActive flips the active flag.
func (r *Repo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE analysis_agents SET active = ? WHERE id = ?`, boolInt(active), id.String())
	if err != nil {
		return db.MapError(fmt.Errorf("set agent active: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set agent active: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("agent %s: %w", id, domain.ErrAgentNotFound)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanAgent(row scannable) (domain.AnalysisAgent, error) {
	var (
		a             domain.AnalysisAgent
		id, agentType string
		params        string
		active        int
	)
	err := row.Scan(&id, &agentType, &a.Name, &a.Description, &a.Algorithm, &params,
		&active, &a.UserID, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.AnalysisAgent{}, domain.ErrAgentNotFound
	}
	if err != nil {
		return domain.AnalysisAgent{}, fmt.Errorf("scan agent: %w", err)
	}
	if a.ID, err = uuid.Parse(id); err != nil {
		return domain.AnalysisAgent{}, fmt.Errorf("parse agent id: %w", err)
	}
	a.Type = domain.AgentType(agentType)
	a.Active = active == 1
	if a.Params, err = domain.UnmarshalParams(params); err != nil {
		return domain.AnalysisAgent{}, err
	}
	return a, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
