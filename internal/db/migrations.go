package db

import (
	"fmt"
	"strings"
)

// migrationsSQL is the full schema. Provenance entities use TEXT UUID primary
// keys (decentralized writers); the adjustment log uses an integer rowid.
// The partial unique index on term_versions enforces at most one current
// version per term at the storage level.
const migrationsSQL = `
CREATE TABLE IF NOT EXISTS terms (
	id TEXT PRIMARY KEY,
	text TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'active'
		CHECK (status IN ('active','provisional','deprecated')),
	research_domain TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	created_by INTEGER NOT NULL,
	updated_by INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	UNIQUE (text, created_by)
);

CREATE TABLE IF NOT EXISTS term_versions (
	id TEXT PRIMARY KEY,
	term_id TEXT NOT NULL REFERENCES terms(id),
	period TEXT NOT NULL,
	start_year INTEGER,
	end_year INTEGER,
	meaning TEXT NOT NULL,
	fuzziness REAL NOT NULL CHECK (fuzziness BETWEEN 0.0 AND 1.0),
	confidence TEXT NOT NULL CHECK (confidence IN ('high','medium','low')),
	corpus_source TEXT NOT NULL DEFAULT '',
	source_citation TEXT NOT NULL DEFAULT '',
	extraction_method TEXT NOT NULL DEFAULT '',
	generated_at TIMESTAMP NOT NULL,
	derived_from TEXT REFERENCES term_versions(id),
	derivation_type TEXT NOT NULL DEFAULT '',
	version_number INTEGER NOT NULL,
	is_current INTEGER NOT NULL DEFAULT 0,
	neighborhood_overlap REAL CHECK (neighborhood_overlap IS NULL OR neighborhood_overlap BETWEEN 0.0 AND 1.0),
	positional_change REAL CHECK (positional_change IS NULL OR positional_change BETWEEN 0.0 AND 1.0),
	similarity_reduction REAL CHECK (similarity_reduction IS NULL OR similarity_reduction BETWEEN 0.0 AND 1.0),
	created_by INTEGER NOT NULL,
	UNIQUE (term_id, version_number)
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_term_versions_one_current
	ON term_versions(term_id) WHERE is_current = 1;

CREATE INDEX IF NOT EXISTS idx_term_versions_term
	ON term_versions(term_id, version_number);

CREATE TABLE IF NOT EXISTS context_anchors (
	id TEXT PRIMARY KEY,
	text TEXT NOT NULL UNIQUE,
	frequency INTEGER NOT NULL DEFAULT 0 CHECK (frequency >= 0),
	first_used_in TEXT REFERENCES term_versions(id),
	last_used_in TEXT REFERENCES term_versions(id),
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_context_anchors_frequency
	ON context_anchors(frequency DESC);

CREATE TABLE IF NOT EXISTS term_version_anchors (
	version_id TEXT NOT NULL REFERENCES term_versions(id),
	anchor_id TEXT NOT NULL REFERENCES context_anchors(id),
	similarity REAL CHECK (similarity IS NULL OR similarity BETWEEN 0.0 AND 1.0),
	rank INTEGER CHECK (rank IS NULL OR rank >= 1),
	created_at TIMESTAMP NOT NULL,
	PRIMARY KEY (version_id, anchor_id)
);

CREATE TABLE IF NOT EXISTS analysis_agents (
	id TEXT PRIMARY KEY,
	agent_type TEXT NOT NULL
		CHECK (agent_type IN ('person','software_agent','organization')),
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	algorithm TEXT NOT NULL DEFAULT '',
	algorithm_params TEXT NOT NULL DEFAULT '',
	active INTEGER NOT NULL DEFAULT 1,
	user_id INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS drift_activities (
	id TEXT PRIMARY KEY,
	activity_type TEXT NOT NULL,
	used_version TEXT NOT NULL REFERENCES term_versions(id),
	generated_version TEXT REFERENCES term_versions(id),
	agent_id TEXT NOT NULL REFERENCES analysis_agents(id),
	start_period TEXT NOT NULL DEFAULT '',
	end_period TEXT NOT NULL DEFAULT '',
	years TEXT NOT NULL DEFAULT '',
	algorithm TEXT NOT NULL DEFAULT '',
	algorithm_params TEXT NOT NULL DEFAULT '',
	started_at TIMESTAMP NOT NULL,
	ended_at TIMESTAMP,
	status TEXT NOT NULL DEFAULT 'running'
		CHECK (status IN ('running','completed','error','provisional')),
	drift_detected INTEGER NOT NULL DEFAULT 0,
	magnitude REAL CHECK (magnitude IS NULL OR magnitude BETWEEN 0.0 AND 1.0),
	drift_type TEXT NOT NULL DEFAULT '',
	evidence TEXT NOT NULL DEFAULT '',
	created_by INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_drift_activities_status
	ON drift_activities(status, started_at);

CREATE TABLE IF NOT EXISTS provenance_chain (
	id TEXT PRIMARY KEY,
	entity_id TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	was_derived_from TEXT NOT NULL,
	derivation_activity TEXT,
	metadata TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL,
	UNIQUE (entity_id, entity_type, was_derived_from)
);

CREATE INDEX IF NOT EXISTS idx_provenance_entity
	ON provenance_chain(entity_type, entity_id);

CREATE TABLE IF NOT EXISTS fuzziness_adjustments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	version_id TEXT NOT NULL REFERENCES term_versions(id),
	original_score REAL NOT NULL CHECK (original_score BETWEEN 0.0 AND 1.0),
	adjusted_score REAL NOT NULL CHECK (adjusted_score BETWEEN 0.0 AND 1.0),
	reason TEXT NOT NULL,
	adjusted_by INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fuzziness_adjustments_version
	ON fuzziness_adjustments(version_id, created_at);
`

// Migrate applies the embedded schema statements.
func (d *DB) Migrate() error {
	for _, stmt := range strings.Split(migrationsSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := d.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
