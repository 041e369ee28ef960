package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS leads (
	canonical_domain    TEXT PRIMARY KEY,
	company_name        TEXT NOT NULL DEFAULT '',
	website             TEXT NOT NULL DEFAULT '',
	linkedin_url        TEXT NOT NULL DEFAULT '',
	location            TEXT NOT NULL DEFAULT '',
	sources             TEXT NOT NULL DEFAULT '[]',
	raw_text_corpus     TEXT NOT NULL DEFAULT '',
	business_model      TEXT NOT NULL DEFAULT '',
	outsourcing_score   INTEGER NOT NULL DEFAULT 0,
	score_justification TEXT NOT NULL DEFAULT '',
	emails              TEXT NOT NULL DEFAULT '[]',
	phones              TEXT NOT NULL DEFAULT '[]',
	contact_found       INTEGER NOT NULL DEFAULT 0,
	next_action         TEXT NOT NULL DEFAULT '',
	notes               TEXT NOT NULL DEFAULT '',
	first_seen_at       DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at          DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	status     TEXT NOT NULL DEFAULT 'queued',
	stats      TEXT,
	error      TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_leads_business_model ON leads(business_model);
CREATE INDEX IF NOT EXISTS idx_leads_score ON leads(outsourcing_score);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, status, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		id, string(model.RunStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.Run{
		ID:        id,
		Status:    model.RunStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run status %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, status model.RunStatus, stats model.RunStats, errMsg string) error {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal stats")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, stats = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(status), string(statsJSON), errMsg, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, status, stats, error, created_at, updated_at FROM runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, status, stats, error, created_at, updated_at FROM runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

const sqliteUpsertLead = `
INSERT INTO leads (
	canonical_domain, company_name, website, linkedin_url, location,
	sources, raw_text_corpus, business_model, outsourcing_score,
	score_justification, emails, phones, contact_found, next_action,
	notes, first_seen_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(canonical_domain) DO UPDATE SET
	company_name        = excluded.company_name,
	website             = excluded.website,
	linkedin_url        = excluded.linkedin_url,
	location            = excluded.location,
	sources             = excluded.sources,
	raw_text_corpus     = excluded.raw_text_corpus,
	business_model      = excluded.business_model,
	outsourcing_score   = excluded.outsourcing_score,
	score_justification = excluded.score_justification,
	emails              = excluded.emails,
	phones              = excluded.phones,
	contact_found       = excluded.contact_found,
	next_action         = excluded.next_action,
	notes               = excluded.notes,
	updated_at          = excluded.updated_at`

// UpsertLeads writes leads in a single transaction, keyed by canonical
// domain. Rerunning the pipeline refreshes existing rows; first_seen_at
// survives the update.
func (s *SQLiteStore) UpsertLeads(ctx context.Context, leads []*model.Lead) error {
	if len(leads) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin upsert tx")
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, lead := range leads {
		sources, emails, phones, err := marshalLists(lead)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, sqliteUpsertLead,
			lead.CanonicalDomain, lead.CompanyName, lead.Website,
			lead.LinkedInURL, lead.Location, sources, lead.RawTextCorpus,
			string(lead.BusinessModel), lead.OutsourcingScore,
			lead.ScoreJustification, emails, phones,
			boolToInt(lead.ContactFound), lead.NextAction, lead.Notes,
			now, now,
		); err != nil {
			return eris.Wrapf(err, "sqlite: upsert lead %s", lead.CanonicalDomain)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit upsert tx")
}

func (s *SQLiteStore) GetLead(ctx context.Context, canonicalDomain string) (*model.Lead, error) {
	row := s.db.QueryRowContext(ctx,
		selectLeadColumns+` FROM leads WHERE canonical_domain = ?`,
		canonicalDomain,
	)
	lead, err := scanLead(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return lead, eris.Wrapf(err, "sqlite: get lead %s", canonicalDomain)
}

func (s *SQLiteStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := selectLeadColumns + ` FROM leads WHERE 1=1`
	var args []any

	if filter.BusinessModel != "" {
		query += ` AND business_model = ?`
		args = append(args, string(filter.BusinessModel))
	}
	if filter.MinScore > 0 {
		query += ` AND outsourcing_score >= ?`
		args = append(args, filter.MinScore)
	}
	if filter.ContactFound != nil {
		query += ` AND contact_found = ?`
		args = append(args, boolToInt(*filter.ContactFound))
	}
	if filter.Source != "" {
		query += ` AND sources LIKE ?`
		args = append(args, `%"`+filter.Source+`"%`)
	}
	query += ` ORDER BY outsourcing_score DESC, canonical_domain`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *lead)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: list leads iterate")
}

// helpers

const selectLeadColumns = `SELECT canonical_domain, company_name, website,
	linkedin_url, location, sources, raw_text_corpus, business_model,
	outsourcing_score, score_justification, emails, phones,
	contact_found, next_action, notes`

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.Run, error) {
	var r model.Run
	var statsJSON sql.NullString

	err := row.Scan(&r.ID, &r.Status, &statsJSON, &r.Error, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("run not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}

	if statsJSON.Valid && statsJSON.String != "" {
		if err := json.Unmarshal([]byte(statsJSON.String), &r.Stats); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal stats")
		}
	}
	return &r, nil
}

func scanLead(row scannable) (*model.Lead, error) {
	var l model.Lead
	var sources, emails, phones string
	var contactFound int

	err := row.Scan(
		&l.CanonicalDomain, &l.CompanyName, &l.Website, &l.LinkedInURL,
		&l.Location, &sources, &l.RawTextCorpus, &l.BusinessModel,
		&l.OutsourcingScore, &l.ScoreJustification, &emails, &phones,
		&contactFound, &l.NextAction, &l.Notes,
	)
	if err != nil {
		return nil, err
	}

	for _, pair := range []struct {
		raw  string
		dest *[]string
	}{
		{sources, &l.Sources},
		{emails, &l.Emails},
		{phones, &l.Phones},
	} {
		if pair.raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(pair.raw), pair.dest); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal lead list")
		}
	}
	l.ContactFound = contactFound != 0
	return &l, nil
}

func marshalLists(lead *model.Lead) (sources, emails, phones string, err error) {
	for _, pair := range []struct {
		list []string
		dest *string
	}{
		{lead.Sources, &sources},
		{lead.Emails, &emails},
		{lead.Phones, &phones},
	} {
		list := pair.list
		if list == nil {
			list = []string{}
		}
		data, marshalErr := json.Marshal(list)
		if marshalErr != nil {
			return "", "", "", eris.Wrapf(marshalErr, "sqlite: marshal lead list for %s", lead.CanonicalDomain)
		}
		*pair.dest = string(data)
	}
	return sources, emails, phones, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
