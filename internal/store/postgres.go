package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/db"
	"github.com/sells-group/leadgen-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// psql builds queries with $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_run":        `INSERT INTO runs (id, status, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
	"update_run_status": `UPDATE runs SET status = $1, updated_at = $2 WHERE id = $3`,
	"complete_run":      `UPDATE runs SET status = $1, stats = $2, error = $3, updated_at = $4 WHERE id = $5`,
	"get_run":           `SELECT id, status, stats, error, created_at, updated_at FROM runs WHERE id = $1`,
	"get_lead":          pgSelectLeadColumns + ` FROM leads WHERE canonical_domain = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests with
// pgxmock.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS leads (
	canonical_domain    TEXT PRIMARY KEY,
	company_name        TEXT NOT NULL DEFAULT '',
	website             TEXT NOT NULL DEFAULT '',
	linkedin_url        TEXT NOT NULL DEFAULT '',
	location            TEXT NOT NULL DEFAULT '',
	sources             JSONB NOT NULL DEFAULT '[]',
	raw_text_corpus     TEXT NOT NULL DEFAULT '',
	business_model      TEXT NOT NULL DEFAULT '',
	outsourcing_score   INTEGER NOT NULL DEFAULT 0,
	score_justification TEXT NOT NULL DEFAULT '',
	emails              JSONB NOT NULL DEFAULT '[]',
	phones              JSONB NOT NULL DEFAULT '[]',
	contact_found       BOOLEAN NOT NULL DEFAULT false,
	next_action         TEXT NOT NULL DEFAULT '',
	notes               TEXT NOT NULL DEFAULT '',
	first_seen_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	status     TEXT NOT NULL DEFAULT 'queued',
	stats      JSONB,
	error      TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_leads_business_model ON leads(business_model);
CREATE INDEX IF NOT EXISTS idx_leads_score ON leads(outsourcing_score DESC);
CREATE INDEX IF NOT EXISTS idx_leads_sources ON leads USING gin(sources);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
`

const pgSelectLeadColumns = `SELECT canonical_domain, company_name, website,
	linkedin_url, location, sources, raw_text_corpus, business_model,
	outsourcing_score, score_justification, emails, phones,
	contact_found, next_action, notes`

// leadColumns is the insert column order for bulk upserts.
var leadColumns = []string{
	"canonical_domain", "company_name", "website", "linkedin_url",
	"location", "sources", "raw_text_corpus", "business_model",
	"outsourcing_score", "score_justification", "emails", "phones",
	"contact_found", "next_action", "notes", "updated_at",
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, status, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
		id, string(model.RunStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.Run{
		ID:        id,
		Status:    model.RunStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update run status %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, status model.RunStatus, stats model.RunStats, errMsg string) error {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal stats")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, stats = $2, error = $3, updated_at = $4 WHERE id = $5`,
		string(status), statsJSON, errMsg, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	var r model.Run
	var statsJSON []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, status, stats, error, created_at, updated_at FROM runs WHERE id = $1`,
		runID,
	).Scan(&r.ID, &r.Status, &statsJSON, &r.Error, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("run not found: %s", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}

	if len(statsJSON) > 0 {
		if err := json.Unmarshal(statsJSON, &r.Stats); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal stats")
		}
	}
	return &r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	builder := psql.
		Select("id", "status", "stats", "error", "created_at", "updated_at").
		From("runs").
		OrderBy("created_at DESC").
		Limit(uint64(limit))
	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"status": string(filter.Status)})
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, eris.Wrap(err, "postgres: build list runs query")
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		var statsJSON []byte
		if err := rows.Scan(&r.ID, &r.Status, &statsJSON, &r.Error, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		if len(statsJSON) > 0 {
			if err := json.Unmarshal(statsJSON, &r.Stats); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal stats")
			}
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

// UpsertLeads bulk-upserts leads keyed by canonical domain via a temp
// table and COPY. first_seen_at keeps its insert-time value.
func (s *PostgresStore) UpsertLeads(ctx context.Context, leads []*model.Lead) error {
	if len(leads) == 0 {
		return nil
	}

	now := time.Now().UTC()
	rows := make([][]any, 0, len(leads))
	for _, lead := range leads {
		sources, emails, phones, err := marshalLists(lead)
		if err != nil {
			return err
		}
		rows = append(rows, []any{
			lead.CanonicalDomain, lead.CompanyName, lead.Website,
			lead.LinkedInURL, lead.Location, []byte(sources),
			lead.RawTextCorpus, string(lead.BusinessModel),
			lead.OutsourcingScore, lead.ScoreJustification,
			[]byte(emails), []byte(phones), lead.ContactFound,
			lead.NextAction, lead.Notes, now,
		})
	}

	_, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "leads",
		Columns:      leadColumns,
		ConflictKeys: []string{"canonical_domain"},
	}, rows)
	return eris.Wrap(err, "postgres: upsert leads")
}

func (s *PostgresStore) GetLead(ctx context.Context, canonicalDomain string) (*model.Lead, error) {
	row := s.pool.QueryRow(ctx,
		pgSelectLeadColumns+` FROM leads WHERE canonical_domain = $1`,
		canonicalDomain,
	)
	lead, err := scanPgLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return lead, eris.Wrapf(err, "postgres: get lead %s", canonicalDomain)
}

func (s *PostgresStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	builder := psql.
		Select("canonical_domain", "company_name", "website",
			"linkedin_url", "location", "sources", "raw_text_corpus",
			"business_model", "outsourcing_score", "score_justification",
			"emails", "phones", "contact_found", "next_action", "notes").
		From("leads").
		OrderBy("outsourcing_score DESC", "canonical_domain").
		Limit(uint64(limit))

	if filter.BusinessModel != "" {
		builder = builder.Where(sq.Eq{"business_model": string(filter.BusinessModel)})
	}
	if filter.MinScore > 0 {
		builder = builder.Where(sq.GtOrEq{"outsourcing_score": filter.MinScore})
	}
	if filter.ContactFound != nil {
		builder = builder.Where(sq.Eq{"contact_found": *filter.ContactFound})
	}
	if filter.Source != "" {
		sourceJSON, err := json.Marshal([]string{filter.Source})
		if err != nil {
			return nil, eris.Wrap(err, "postgres: marshal source filter")
		}
		builder = builder.Where(sq.Expr("sources @> ?", sourceJSON))
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, eris.Wrap(err, "postgres: build list leads query")
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		lead, err := scanPgLead(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		leads = append(leads, *lead)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: list leads iterate")
}

func scanPgLead(row pgx.Row) (*model.Lead, error) {
	var l model.Lead
	var sources, emails, phones []byte

	err := row.Scan(
		&l.CanonicalDomain, &l.CompanyName, &l.Website, &l.LinkedInURL,
		&l.Location, &sources, &l.RawTextCorpus, &l.BusinessModel,
		&l.OutsourcingScore, &l.ScoreJustification, &emails, &phones,
		&l.ContactFound, &l.NextAction, &l.Notes,
	)
	if err != nil {
		return nil, err
	}

	for _, pair := range []struct {
		raw  []byte
		dest *[]string
	}{
		{sources, &l.Sources},
		{emails, &l.Emails},
		{phones, &l.Phones},
	} {
		if len(pair.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(pair.raw, pair.dest); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal lead list")
		}
	}
	return &l, nil
}
