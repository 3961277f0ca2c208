package driftd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diachron-labs/driftd/internal/db"
	"github.com/diachron-labs/driftd/internal/domain"
	activityrepo "github.com/diachron-labs/driftd/internal/repository/activity"
	adjustmentrepo "github.com/diachron-labs/driftd/internal/repository/adjustment"
	agentrepo "github.com/diachron-labs/driftd/internal/repository/agent"
	anchorrepo "github.com/diachron-labs/driftd/internal/repository/anchor"
	provrepo "github.com/diachron-labs/driftd/internal/repository/provenance"
	termrepo "github.com/diachron-labs/driftd/internal/repository/term"
	versionrepo "github.com/diachron-labs/driftd/internal/repository/version"
	agentuc "github.com/diachron-labs/driftd/internal/usecase/agent"
	anchoruc "github.com/diachron-labs/driftd/internal/usecase/anchor"
	driftuc "github.com/diachron-labs/driftd/internal/usecase/drift"
	provuc "github.com/diachron-labs/driftd/internal/usecase/provenance"
	termuc "github.com/diachron-labs/driftd/internal/usecase/term"
	versionuc "github.com/diachron-labs/driftd/internal/usecase/version"
)

// Client is the driftd SDK entry point. It embeds the full engine over a
// local SQLite file.
type Client struct {
	db *db.DB

	termSvc    *termuc.Service
	versionSvc *versionuc.Service
	anchorSvc  *anchoruc.Service
	agentSvc   *agentuc.Service
	driftSvc   *driftuc.Service
	provSvc    *provuc.Service

	obs *observer
}

// New creates a driftd Client, opening (and migrating) the database.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		policy: domain.DefaultMagnitudePolicy(),
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.path == "" {
		return nil, errors.New("driftd: database path required (use WithSQLite)")
	}

	database, err := db.Open(db.Config{
		Path:          cfg.path,
		BusyTimeoutMS: cfg.busyTimeoutMS,
	})
	if err != nil {
		return nil, fmt.Errorf("driftd: open database: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		database.Close()
		return nil, err
	}

	client, err := wireClient(database, cfg, obs)
	if err != nil {
		database.Close()
		return nil, err
	}
	return client, nil
}

func wireClient(database *db.DB, cfg *clientConfig, obs *observer) (*Client, error) {
	versionRepo := versionrepo.New(database)
	activityRepo := activityrepo.New(database)
	agentRepo := agentrepo.New(database)
	provRepo := provrepo.New(database)

	driftSvc, err := driftuc.New(activityRepo, versionRepo, agentRepo, provRepo, cfg.policy)
	if err != nil {
		return nil, fmt.Errorf("driftd: %w", err)
	}

	return &Client{
		db:         database,
		termSvc:    termuc.New(termrepo.New(database)),
		versionSvc: versionuc.New(versionRepo, adjustmentrepo.New(database)),
		anchorSvc:  anchoruc.New(anchorrepo.New(database)),
		agentSvc:   agentuc.New(agentRepo),
		driftSvc:   driftSvc,
		provSvc:    provuc.New(provRepo),
		obs:        obs,
	}, nil
}

// Close releases the database connection.
func (c *Client) Close() {
	if c.db != nil {
		_ = c.db.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Terms returns the term catalogue service.
func (c *Client) Terms() *TermService {
	return &TermService{svc: c.termSvc, obs: c.obs}
}

// Versions returns the term version service.
func (c *Client) Versions() *VersionService {
	return &VersionService{svc: c.versionSvc, obs: c.obs}
}

// Anchors returns the context anchor service.
func (c *Client) Anchors() *AnchorService {
	return &AnchorService{svc: c.anchorSvc, obs: c.obs}
}

// Agents returns the analysis agent registry service.
func (c *Client) Agents() *AgentService {
	return &AgentService{svc: c.agentSvc, obs: c.obs}
}

// Drift returns the drift activity service.
func (c *Client) Drift() *DriftService {
	return &DriftService{svc: c.driftSvc, obs: c.obs}
}

// Provenance returns the derivation chain service.
func (c *Client) Provenance() *ProvenanceService {
	return &ProvenanceService{svc: c.provSvc, obs: c.obs}
}

// Float returns a pointer to f. Convenience for optional score arguments.
func Float(f float64) *float64 { return &f }

// Int returns a pointer to n. Convenience for optional rank arguments.
func Int(n int) *int { return &n }
