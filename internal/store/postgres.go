package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/proofpanel/proofpanel/internal/model"
)

// Pool is the subset of pgxpool.Pool used by the store. pgxmock satisfies it
// for unit tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
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

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS respondents (
	hash_id           TEXT PRIMARY KEY,
	first_name        TEXT NOT NULL DEFAULT '',
	last_name         TEXT NOT NULL DEFAULT '',
	email             TEXT NOT NULL DEFAULT '',
	company           TEXT NOT NULL DEFAULT '',
	location          TEXT NOT NULL DEFAULT '',
	employment_status TEXT NOT NULL DEFAULT '',
	job_title         TEXT NOT NULL DEFAULT '',
	job_function      TEXT NOT NULL DEFAULT '',
	company_size      TEXT NOT NULL DEFAULT '',
	industry          TEXT NOT NULL DEFAULT '',
	verified          BOOLEAN NOT NULL DEFAULT false,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_active_at    TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS accounts (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	password_hash BYTEA NOT NULL,
	company_name  TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS studies (
	id               TEXT PRIMARY KEY,
	account_id       TEXT NOT NULL,
	name             TEXT NOT NULL,
	description      TEXT NOT NULL DEFAULT '',
	status           TEXT NOT NULL DEFAULT 'draft',
	target_responses INTEGER NOT NULL DEFAULT 0,
	selected_queries JSONB NOT NULL DEFAULT '[]',
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS attribute_snapshots (
	hash_id           TEXT PRIMARY KEY,
	job_title         TEXT NOT NULL DEFAULT '',
	industry          TEXT NOT NULL DEFAULT '',
	company_size      TEXT NOT NULL DEFAULT '',
	job_function      TEXT NOT NULL DEFAULT '',
	employment_status TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS verification_statuses (
	hash_id        TEXT PRIMARY KEY,
	verified       BOOLEAN NOT NULL DEFAULT false,
	proof_status   TEXT NOT NULL DEFAULT 'Pending',
	verified_at    TIMESTAMPTZ,
	linkedin_name  TEXT NOT NULL DEFAULT '',
	linkedin_email TEXT NOT NULL DEFAULT '',
	auto_verified  BOOLEAN NOT NULL DEFAULT false,
	fail_reason    TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS batch_relationships (
	test_hash_id TEXT NOT NULL,
	mate_hash_id TEXT NOT NULL,
	linked_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (test_hash_id, mate_hash_id)
);

CREATE TABLE IF NOT EXISTS verified_panelists (
	hash_id           TEXT PRIMARY KEY,
	status            TEXT NOT NULL,
	job_title         TEXT NOT NULL DEFAULT '',
	industry          TEXT NOT NULL DEFAULT '',
	company_size      TEXT NOT NULL DEFAULT '',
	job_function      TEXT NOT NULL DEFAULT '',
	employment_status TEXT NOT NULL DEFAULT '',
	verified_at       TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_studies_account_id ON studies(account_id);
CREATE INDEX IF NOT EXISTS idx_respondents_verified ON respondents(verified);
CREATE INDEX IF NOT EXISTS idx_batch_rel_test ON batch_relationships(test_hash_id);
CREATE INDEX IF NOT EXISTS idx_verified_panelists_status ON verified_panelists(status);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// --- Respondents ---

func (s *PostgresStore) UpsertRespondents(ctx context.Context, respondents []model.Respondent) (int, error) {
	if len(respondents) == 0 {
		return 0, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: begin upsert respondents")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	count := 0
	for _, r := range respondents {
		createdAt := r.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO respondents
				(hash_id, first_name, last_name, email, company, location,
				 employment_status, job_title, job_function, company_size, industry,
				 verified, created_at, last_active_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			 ON CONFLICT (hash_id) DO UPDATE SET
				first_name = EXCLUDED.first_name,
				last_name = EXCLUDED.last_name,
				email = EXCLUDED.email,
				company = EXCLUDED.company,
				location = EXCLUDED.location,
				employment_status = EXCLUDED.employment_status,
				job_title = EXCLUDED.job_title,
				job_function = EXCLUDED.job_function,
				company_size = EXCLUDED.company_size,
				industry = EXCLUDED.industry,
				last_active_at = EXCLUDED.last_active_at`,
			r.HashID, r.FirstName, r.LastName, r.Email, r.Company, r.Location,
			r.EmploymentStatus, r.JobTitle, r.JobFunction, r.CompanySize, r.Industry,
			r.Verified, createdAt, r.LastActiveAt,
		); err != nil {
			return 0, eris.Wrapf(err, "postgres: upsert respondent %s", r.HashID)
		}
		count++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "postgres: commit upsert respondents")
	}
	return count, nil
}

const pgRespondentColumns = `hash_id, first_name, last_name, email, company, location,
	employment_status, job_title, job_function, company_size, industry,
	verified, created_at, last_active_at`

func (s *PostgresStore) GetRespondent(ctx context.Context, hashID string) (*model.Respondent, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+pgRespondentColumns+` FROM respondents WHERE hash_id = $1`, hashID)
	r, err := scanPgRespondent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get respondent %s", hashID)
	}
	return r, nil
}

func (s *PostgresStore) ListRespondents(ctx context.Context, filter RespondentFilter) ([]model.Respondent, error) {
	query := `SELECT ` + pgRespondentColumns + ` FROM respondents WHERE true`
	var args []any
	argIdx := 1

	for _, f := range []struct {
		col, val string
	}{
		{"job_title", filter.JobTitle},
		{"industry", filter.Industry},
		{"company_size", filter.CompanySize},
		{"job_function", filter.JobFunction},
		{"employment_status", filter.EmploymentStatus},
	} {
		if f.val != "" {
			query += fmt.Sprintf(` AND %s = $%d`, f.col, argIdx)
			args = append(args, f.val)
			argIdx++
		}
	}
	if filter.Verified != nil {
		query += fmt.Sprintf(` AND verified = $%d`, argIdx)
		args = append(args, *filter.Verified)
		argIdx++
	}
	query += ` ORDER BY created_at DESC, hash_id`

	limit := filter.Limit
	if limit <= 0 {
		limit = 500
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list respondents")
	}
	defer rows.Close()

	var out []model.Respondent
	for rows.Next() {
		r, err := scanPgRespondent(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan respondent")
		}
		out = append(out, *r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list respondents iterate")
}

func (s *PostgresStore) SetRespondentVerified(ctx context.Context, hashID string, verified bool) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE respondents SET verified = $1, last_active_at = $2 WHERE hash_id = $3`,
		verified, time.Now().UTC(), hashID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: set respondent verified %s", hashID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("respondent not found: %s", hashID)
	}
	return nil
}

// --- Accounts ---

func (s *PostgresStore) CreateAccount(ctx context.Context, account model.Account) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO accounts (id, email, password_hash, company_name, created_at) VALUES ($1, $2, $3, $4, $5)`,
		account.ID, account.Email, account.PasswordHash, account.CompanyName, account.CreatedAt,
	)
	return eris.Wrapf(err, "postgres: create account %s", account.Email)
}

func (s *PostgresStore) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	var a model.Account
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, company_name, created_at FROM accounts WHERE email = $1`,
		email,
	).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CompanyName, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get account by email")
	}
	return &a, nil
}

// --- Studies ---

func (s *PostgresStore) CreateStudy(ctx context.Context, study model.Study) error {
	queriesJSON, err := json.Marshal(study.SelectedQueries)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal selected queries")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO studies (id, account_id, name, description, status, target_responses, selected_queries, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		study.ID, study.AccountID, study.Name, study.Description, string(study.Status),
		study.TargetResponses, queriesJSON, study.CreatedAt, study.UpdatedAt,
	)
	return eris.Wrapf(err, "postgres: create study %s", study.ID)
}

func (s *PostgresStore) GetStudy(ctx context.Context, id string) (*model.Study, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, account_id, name, description, status, target_responses, selected_queries, created_at, updated_at
		 FROM studies WHERE id = $1`, id)
	st, err := scanPgStudy(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get study %s", id)
	}
	return st, nil
}

func (s *PostgresStore) ListStudies(ctx context.Context, accountID string) ([]model.Study, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, account_id, name, description, status, target_responses, selected_queries, created_at, updated_at
		 FROM studies WHERE account_id = $1 ORDER BY created_at DESC`, accountID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list studies")
	}
	defer rows.Close()

	var out []model.Study
	for rows.Next() {
		st, err := scanPgStudy(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan study")
		}
		out = append(out, *st)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list studies iterate")
}

func (s *PostgresStore) UpdateStudy(ctx context.Context, study model.Study) error {
	queriesJSON, err := json.Marshal(study.SelectedQueries)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal selected queries")
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE studies SET name = $1, description = $2, status = $3, target_responses = $4, selected_queries = $5, updated_at = $6
		 WHERE id = $7`,
		study.Name, study.Description, string(study.Status), study.TargetResponses,
		queriesJSON, time.Now().UTC(), study.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update study %s", study.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("study not found: %s", study.ID)
	}
	return nil
}

func (s *PostgresStore) DeleteStudy(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM studies WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete study %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("study not found: %s", id)
	}
	return nil
}

// --- Attribute snapshots ---

func (s *PostgresStore) UpsertAttributes(ctx context.Context, rec model.AttributeRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO attribute_snapshots (hash_id, job_title, industry, company_size, job_function, employment_status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (hash_id) DO UPDATE SET
			job_title = EXCLUDED.job_title,
			industry = EXCLUDED.industry,
			company_size = EXCLUDED.company_size,
			job_function = EXCLUDED.job_function,
			employment_status = EXCLUDED.employment_status`,
		rec.HashID, rec.JobTitle, rec.Industry, rec.CompanySize, rec.JobFunction, rec.EmploymentStatus,
	)
	return eris.Wrapf(err, "postgres: upsert attributes %s", rec.HashID)
}

func (s *PostgresStore) GetAttributes(ctx context.Context, hashID string) (*model.AttributeRecord, error) {
	var rec model.AttributeRecord
	err := s.pool.QueryRow(ctx,
		`SELECT hash_id, job_title, industry, company_size, job_function, employment_status
		 FROM attribute_snapshots WHERE hash_id = $1`, hashID,
	).Scan(&rec.HashID, &rec.JobTitle, &rec.Industry, &rec.CompanySize, &rec.JobFunction, &rec.EmploymentStatus)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get attributes %s", hashID)
	}
	return &rec, nil
}

// --- Verification statuses ---

func (s *PostgresStore) UpsertVerificationStatus(ctx context.Context, status model.VerificationStatus) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO verification_statuses
			(hash_id, verified, proof_status, verified_at, linkedin_name, linkedin_email, auto_verified, fail_reason)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (hash_id) DO UPDATE SET
			verified = EXCLUDED.verified,
			proof_status = EXCLUDED.proof_status,
			verified_at = EXCLUDED.verified_at,
			linkedin_name = EXCLUDED.linkedin_name,
			linkedin_email = EXCLUDED.linkedin_email,
			auto_verified = EXCLUDED.auto_verified,
			fail_reason = EXCLUDED.fail_reason`,
		status.HashID, status.Verified, string(status.ProofStatus), status.VerifiedAt,
		status.LinkedInName, status.LinkedInEmail, status.AutoVerified, status.FailReason,
	)
	return eris.Wrapf(err, "postgres: upsert verification status %s", status.HashID)
}

func (s *PostgresStore) GetVerificationStatus(ctx context.Context, hashID string) (*model.VerificationStatus, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT hash_id, verified, proof_status, verified_at, linkedin_name, linkedin_email, auto_verified, fail_reason
		 FROM verification_statuses WHERE hash_id = $1`, hashID)
	st, err := scanPgVerificationStatus(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get verification status %s", hashID)
	}
	return st, nil
}

func (s *PostgresStore) GetVerificationStatuses(ctx context.Context, hashIDs []string) (map[string]model.VerificationStatus, error) {
	out := make(map[string]model.VerificationStatus, len(hashIDs))
	if len(hashIDs) == 0 {
		return out, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT hash_id, verified, proof_status, verified_at, linkedin_name, linkedin_email, auto_verified, fail_reason
		 FROM verification_statuses WHERE hash_id = ANY($1)`, hashIDs)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get verification statuses")
	}
	defer rows.Close()

	for rows.Next() {
		st, err := scanPgVerificationStatus(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan verification status")
		}
		out[st.HashID] = *st
	}
	return out, eris.Wrap(rows.Err(), "postgres: get verification statuses iterate")
}

func (s *PostgresStore) ClearVerificationData(ctx context.Context, hashIDs []string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin clear")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var stmts []string
	var args []any
	if hashIDs == nil {
		stmts = []string{
			`DELETE FROM verification_statuses`,
			`DELETE FROM attribute_snapshots`,
			`DELETE FROM batch_relationships`,
			`UPDATE respondents SET verified = false`,
		}
	} else {
		stmts = []string{
			`DELETE FROM verification_statuses WHERE hash_id = ANY($1)`,
			`DELETE FROM attribute_snapshots WHERE hash_id = ANY($1)`,
			`DELETE FROM batch_relationships WHERE test_hash_id = ANY($1) OR mate_hash_id = ANY($1)`,
			`UPDATE respondents SET verified = false WHERE hash_id = ANY($1)`,
		}
		args = []any{hashIDs}
	}
	for _, q := range stmts {
		if _, err := tx.Exec(ctx, q, args...); err != nil {
			return eris.Wrap(err, "postgres: clear verification data")
		}
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit clear")
}

// --- Batch relationships ---

func (s *PostgresStore) UpsertBatchRelationship(ctx context.Context, anchorHashID, mateHashID string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO batch_relationships (test_hash_id, mate_hash_id) VALUES ($1, $2)
		 ON CONFLICT (test_hash_id, mate_hash_id) DO NOTHING`,
		anchorHashID, mateHashID,
	)
	return eris.Wrapf(err, "postgres: upsert batch relationship %s -> %s", anchorHashID, mateHashID)
}

func (s *PostgresStore) ListMates(ctx context.Context, anchorHashID string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT mate_hash_id FROM batch_relationships WHERE test_hash_id = $1 ORDER BY linked_at, mate_hash_id`,
		anchorHashID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list mates %s", anchorHashID)
	}
	defer rows.Close()

	var mates []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "postgres: scan mate")
		}
		mates = append(mates, id)
	}
	return mates, eris.Wrap(rows.Err(), "postgres: list mates iterate")
}

// --- Verified panelist ledger ---

func (s *PostgresStore) UpsertVerifiedPanelist(ctx context.Context, p model.VerifiedPanelist) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO verified_panelists
			(hash_id, status, job_title, industry, company_size, job_function, employment_status, verified_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (hash_id) DO UPDATE SET
			status = EXCLUDED.status,
			job_title = EXCLUDED.job_title,
			industry = EXCLUDED.industry,
			company_size = EXCLUDED.company_size,
			job_function = EXCLUDED.job_function,
			employment_status = EXCLUDED.employment_status,
			verified_at = EXCLUDED.verified_at`,
		p.HashID, string(p.Status), p.JobTitle, p.Industry, p.CompanySize,
		p.JobFunction, p.EmploymentStatus, p.VerifiedAt,
	)
	return eris.Wrapf(err, "postgres: upsert verified panelist %s", p.HashID)
}

func (s *PostgresStore) ListVerifiedPanelists(ctx context.Context, outcome model.PanelistOutcome) ([]model.VerifiedPanelist, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT hash_id, status, job_title, industry, company_size, job_function, employment_status, verified_at
		 FROM verified_panelists WHERE status = $1 ORDER BY verified_at`, string(outcome))
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list verified panelists")
	}
	defer rows.Close()

	var out []model.VerifiedPanelist
	for rows.Next() {
		var p model.VerifiedPanelist
		if err := rows.Scan(&p.HashID, &p.Status, &p.JobTitle, &p.Industry,
			&p.CompanySize, &p.JobFunction, &p.EmploymentStatus, &p.VerifiedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan verified panelist")
		}
		out = append(out, p)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list verified panelists iterate")
}

func (s *PostgresStore) CountVerifiedPanelists(ctx context.Context, outcome model.PanelistOutcome) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM verified_panelists WHERE status = $1`, string(outcome),
	).Scan(&count)
	return count, eris.Wrap(err, "postgres: count verified panelists")
}

// --- helpers ---

type pgScannable interface {
	Scan(dest ...any) error
}

func scanPgRespondent(row pgScannable) (*model.Respondent, error) {
	var r model.Respondent
	if err := row.Scan(&r.HashID, &r.FirstName, &r.LastName, &r.Email, &r.Company, &r.Location,
		&r.EmploymentStatus, &r.JobTitle, &r.JobFunction, &r.CompanySize, &r.Industry,
		&r.Verified, &r.CreatedAt, &r.LastActiveAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func scanPgStudy(row pgScannable) (*model.Study, error) {
	var st model.Study
	var status string
	var queriesJSON []byte

	if err := row.Scan(&st.ID, &st.AccountID, &st.Name, &st.Description, &status,
		&st.TargetResponses, &queriesJSON, &st.CreatedAt, &st.UpdatedAt); err != nil {
		return nil, err
	}
	st.Status = model.StudyStatus(status)
	if err := json.Unmarshal(queriesJSON, &st.SelectedQueries); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal selected queries")
	}
	return &st, nil
}

func scanPgVerificationStatus(row pgScannable) (*model.VerificationStatus, error) {
	var st model.VerificationStatus
	var proofStatus string

	if err := row.Scan(&st.HashID, &st.Verified, &proofStatus, &st.VerifiedAt,
		&st.LinkedInName, &st.LinkedInEmail, &st.AutoVerified, &st.FailReason); err != nil {
		return nil, err
	}
	st.ProofStatus = model.ProofStatus(proofStatus)
	return &st, nil
}
