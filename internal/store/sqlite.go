package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/proofpanel/proofpanel/internal/model"
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
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
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
	verified          INTEGER NOT NULL DEFAULT 0,
	created_at        DATETIME NOT NULL DEFAULT (datetime('now')),
	last_active_at    DATETIME
);

CREATE TABLE IF NOT EXISTS accounts (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	password_hash BLOB NOT NULL,
	company_name  TEXT NOT NULL DEFAULT '',
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS studies (
	id               TEXT PRIMARY KEY,
	account_id       TEXT NOT NULL,
	name             TEXT NOT NULL,
	description      TEXT NOT NULL DEFAULT '',
	status           TEXT NOT NULL DEFAULT 'draft',
	target_responses INTEGER NOT NULL DEFAULT 0,
	selected_queries TEXT NOT NULL DEFAULT '[]',
	created_at       DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at       DATETIME NOT NULL DEFAULT (datetime('now'))
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
	verified       INTEGER NOT NULL DEFAULT 0,
	proof_status   TEXT NOT NULL DEFAULT 'Pending',
	verified_at    DATETIME,
	linkedin_name  TEXT NOT NULL DEFAULT '',
	linkedin_email TEXT NOT NULL DEFAULT '',
	auto_verified  INTEGER NOT NULL DEFAULT 0,
	fail_reason    TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS batch_relationships (
	test_hash_id TEXT NOT NULL,
	mate_hash_id TEXT NOT NULL,
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
	verified_at       DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_studies_account_id ON studies(account_id);
CREATE INDEX IF NOT EXISTS idx_respondents_verified ON respondents(verified);
CREATE INDEX IF NOT EXISTS idx_batch_rel_test ON batch_relationships(test_hash_id);
CREATE INDEX IF NOT EXISTS idx_verified_panelists_status ON verified_panelists(status);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Respondents ---

func (s *SQLiteStore) UpsertRespondents(ctx context.Context, respondents []model.Respondent) (int, error) {
	if len(respondents) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin upsert respondents")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO respondents
			(hash_id, first_name, last_name, email, company, location,
			 employment_status, job_title, job_function, company_size, industry,
			 verified, created_at, last_active_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(hash_id) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			email = excluded.email,
			company = excluded.company,
			location = excluded.location,
			employment_status = excluded.employment_status,
			job_title = excluded.job_title,
			job_function = excluded.job_function,
			company_size = excluded.company_size,
			industry = excluded.industry,
			last_active_at = excluded.last_active_at`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare upsert respondents")
	}
	defer stmt.Close() //nolint:errcheck

	count := 0
	for _, r := range respondents {
		createdAt := r.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		var lastActive any
		if r.LastActiveAt != nil {
			lastActive = *r.LastActiveAt
		}
		if _, err := stmt.ExecContext(ctx,
			r.HashID, r.FirstName, r.LastName, r.Email, r.Company, r.Location,
			r.EmploymentStatus, r.JobTitle, r.JobFunction, r.CompanySize, r.Industry,
			boolToInt(r.Verified), createdAt, lastActive,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert respondent %s", r.HashID)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit upsert respondents")
	}
	return count, nil
}

const respondentColumns = `hash_id, first_name, last_name, email, company, location,
	employment_status, job_title, job_function, company_size, industry,
	verified, created_at, last_active_at`

func (s *SQLiteStore) GetRespondent(ctx context.Context, hashID string) (*model.Respondent, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+respondentColumns+` FROM respondents WHERE hash_id = ?`, hashID)
	r, err := scanRespondent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get respondent %s", hashID)
	}
	return r, nil
}

func (s *SQLiteStore) ListRespondents(ctx context.Context, filter RespondentFilter) ([]model.Respondent, error) {
	query := `SELECT ` + respondentColumns + ` FROM respondents WHERE 1=1`
	var args []any

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
			query += fmt.Sprintf(` AND %s = ?`, f.col)
			args = append(args, f.val)
		}
	}
	if filter.Verified != nil {
		query += ` AND verified = ?`
		args = append(args, boolToInt(*filter.Verified))
	}
	query += ` ORDER BY created_at DESC, hash_id`

	limit := filter.Limit
	if limit <= 0 {
		limit = 500
	}
	query += ` LIMIT ?`
	args = append(args, limit)
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list respondents")
	}
	defer rows.Close()

	var out []model.Respondent
	for rows.Next() {
		r, err := scanRespondent(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan respondent")
		}
		out = append(out, *r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list respondents iterate")
}

func (s *SQLiteStore) SetRespondentVerified(ctx context.Context, hashID string, verified bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE respondents SET verified = ?, last_active_at = ? WHERE hash_id = ?`,
		boolToInt(verified), time.Now().UTC(), hashID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: set respondent verified %s", hashID)
	}
	return checkRowsAffected(res, "respondent", hashID)
}

// --- Accounts ---

func (s *SQLiteStore) CreateAccount(ctx context.Context, account model.Account) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (id, email, password_hash, company_name, created_at) VALUES (?, ?, ?, ?, ?)`,
		account.ID, account.Email, account.PasswordHash, account.CompanyName, account.CreatedAt,
	)
	return eris.Wrapf(err, "sqlite: create account %s", account.Email)
}

func (s *SQLiteStore) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	var a model.Account
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, company_name, created_at FROM accounts WHERE email = ?`,
		email,
	).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CompanyName, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get account by email")
	}
	return &a, nil
}

// --- Studies ---

func (s *SQLiteStore) CreateStudy(ctx context.Context, study model.Study) error {
	queriesJSON, err := json.Marshal(study.SelectedQueries)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal selected queries")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO studies (id, account_id, name, description, status, target_responses, selected_queries, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		study.ID, study.AccountID, study.Name, study.Description, string(study.Status),
		study.TargetResponses, string(queriesJSON), study.CreatedAt, study.UpdatedAt,
	)
	return eris.Wrapf(err, "sqlite: create study %s", study.ID)
}

func (s *SQLiteStore) GetStudy(ctx context.Context, id string) (*model.Study, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, account_id, name, description, status, target_responses, selected_queries, created_at, updated_at
		 FROM studies WHERE id = ?`, id)
	st, err := scanStudy(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get study %s", id)
	}
	return st, nil
}

func (s *SQLiteStore) ListStudies(ctx context.Context, accountID string) ([]model.Study, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, account_id, name, description, status, target_responses, selected_queries, created_at, updated_at
		 FROM studies WHERE account_id = ? ORDER BY created_at DESC`, accountID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list studies")
	}
	defer rows.Close()

	var out []model.Study
	for rows.Next() {
		st, err := scanStudy(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan study")
		}
		out = append(out, *st)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list studies iterate")
}

func (s *SQLiteStore) UpdateStudy(ctx context.Context, study model.Study) error {
	queriesJSON, err := json.Marshal(study.SelectedQueries)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal selected queries")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE studies SET name = ?, description = ?, status = ?, target_responses = ?, selected_queries = ?, updated_at = ?
		 WHERE id = ?`,
		study.Name, study.Description, string(study.Status), study.TargetResponses,
		string(queriesJSON), time.Now().UTC(), study.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update study %s", study.ID)
	}
	return checkRowsAffected(res, "study", study.ID)
}

func (s *SQLiteStore) DeleteStudy(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM studies WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete study %s", id)
	}
	return checkRowsAffected(res, "study", id)
}

// --- Attribute snapshots ---

func (s *SQLiteStore) UpsertAttributes(ctx context.Context, rec model.AttributeRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attribute_snapshots (hash_id, job_title, industry, company_size, job_function, employment_status)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(hash_id) DO UPDATE SET
			job_title = excluded.job_title,
			industry = excluded.industry,
			company_size = excluded.company_size,
			job_function = excluded.job_function,
			employment_status = excluded.employment_status`,
		rec.HashID, rec.JobTitle, rec.Industry, rec.CompanySize, rec.JobFunction, rec.EmploymentStatus,
	)
	return eris.Wrapf(err, "sqlite: upsert attributes %s", rec.HashID)
}

func (s *SQLiteStore) GetAttributes(ctx context.Context, hashID string) (*model.AttributeRecord, error) {
	var rec model.AttributeRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT hash_id, job_title, industry, company_size, job_function, employment_status
		 FROM attribute_snapshots WHERE hash_id = ?`, hashID,
	).Scan(&rec.HashID, &rec.JobTitle, &rec.Industry, &rec.CompanySize, &rec.JobFunction, &rec.EmploymentStatus)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get attributes %s", hashID)
	}
	return &rec, nil
}

// --- Verification statuses ---

func (s *SQLiteStore) UpsertVerificationStatus(ctx context.Context, status model.VerificationStatus) error {
	var verifiedAt any
	if status.VerifiedAt != nil {
		verifiedAt = *status.VerifiedAt
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO verification_statuses
			(hash_id, verified, proof_status, verified_at, linkedin_name, linkedin_email, auto_verified, fail_reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(hash_id) DO UPDATE SET
			verified = excluded.verified,
			proof_status = excluded.proof_status,
			verified_at = excluded.verified_at,
			linkedin_name = excluded.linkedin_name,
			linkedin_email = excluded.linkedin_email,
			auto_verified = excluded.auto_verified,
			fail_reason = excluded.fail_reason`,
		status.HashID, boolToInt(status.Verified), string(status.ProofStatus), verifiedAt,
		status.LinkedInName, status.LinkedInEmail, boolToInt(status.AutoVerified), status.FailReason,
	)
	return eris.Wrapf(err, "sqlite: upsert verification status %s", status.HashID)
}

func (s *SQLiteStore) GetVerificationStatus(ctx context.Context, hashID string) (*model.VerificationStatus, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT hash_id, verified, proof_status, verified_at, linkedin_name, linkedin_email, auto_verified, fail_reason
		 FROM verification_statuses WHERE hash_id = ?`, hashID)
	st, err := scanVerificationStatus(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get verification status %s", hashID)
	}
	return st, nil
}

func (s *SQLiteStore) GetVerificationStatuses(ctx context.Context, hashIDs []string) (map[string]model.VerificationStatus, error) {
	out := make(map[string]model.VerificationStatus, len(hashIDs))
	if len(hashIDs) == 0 {
		return out, nil
	}

	query := `SELECT hash_id, verified, proof_status, verified_at, linkedin_name, linkedin_email, auto_verified, fail_reason
		 FROM verification_statuses WHERE hash_id IN (` + placeholders(len(hashIDs)) + `)`
	args := make([]any, len(hashIDs))
	for i, id := range hashIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get verification statuses")
	}
	defer rows.Close()

	for rows.Next() {
		st, err := scanVerificationStatus(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan verification status")
		}
		out[st.HashID] = *st
	}
	return out, eris.Wrap(rows.Err(), "sqlite: get verification statuses iterate")
}

func (s *SQLiteStore) ClearVerificationData(ctx context.Context, hashIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin clear")
	}
	defer tx.Rollback() //nolint:errcheck

	if hashIDs == nil {
		for _, q := range []string{
			`DELETE FROM verification_statuses`,
			`DELETE FROM attribute_snapshots`,
			`DELETE FROM batch_relationships`,
			`UPDATE respondents SET verified = 0`,
		} {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				return eris.Wrap(err, "sqlite: clear all verification data")
			}
		}
	} else {
		ph := placeholders(len(hashIDs))
		args := make([]any, len(hashIDs))
		for i, id := range hashIDs {
			args[i] = id
		}
		// The relationship delete binds the id list twice (anchor or mate side).
		doubled := append(append([]any{}, args...), args...)
		stmts := []struct {
			query string
			args  []any
		}{
			{`DELETE FROM verification_statuses WHERE hash_id IN (` + ph + `)`, args},
			{`DELETE FROM attribute_snapshots WHERE hash_id IN (` + ph + `)`, args},
			{`DELETE FROM batch_relationships WHERE test_hash_id IN (` + ph + `) OR mate_hash_id IN (` + ph + `)`, doubled},
			{`UPDATE respondents SET verified = 0 WHERE hash_id IN (` + ph + `)`, args},
		}
		for _, st := range stmts {
			if _, err := tx.ExecContext(ctx, st.query, st.args...); err != nil {
				return eris.Wrap(err, "sqlite: clear verification data")
			}
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit clear")
}

// --- Batch relationships ---

func (s *SQLiteStore) UpsertBatchRelationship(ctx context.Context, anchorHashID, mateHashID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO batch_relationships (test_hash_id, mate_hash_id) VALUES (?, ?)
		 ON CONFLICT(test_hash_id, mate_hash_id) DO NOTHING`,
		anchorHashID, mateHashID,
	)
	return eris.Wrapf(err, "sqlite: upsert batch relationship %s -> %s", anchorHashID, mateHashID)
}

func (s *SQLiteStore) ListMates(ctx context.Context, anchorHashID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT mate_hash_id FROM batch_relationships WHERE test_hash_id = ? ORDER BY rowid`,
		anchorHashID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list mates %s", anchorHashID)
	}
	defer rows.Close()

	var mates []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan mate")
		}
		mates = append(mates, id)
	}
	return mates, eris.Wrap(rows.Err(), "sqlite: list mates iterate")
}

// --- Verified panelist ledger ---

func (s *SQLiteStore) UpsertVerifiedPanelist(ctx context.Context, p model.VerifiedPanelist) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO verified_panelists
			(hash_id, status, job_title, industry, company_size, job_function, employment_status, verified_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(hash_id) DO UPDATE SET
			status = excluded.status,
			job_title = excluded.job_title,
			industry = excluded.industry,
			company_size = excluded.company_size,
			job_function = excluded.job_function,
			employment_status = excluded.employment_status,
			verified_at = excluded.verified_at`,
		p.HashID, string(p.Status), p.JobTitle, p.Industry, p.CompanySize,
		p.JobFunction, p.EmploymentStatus, p.VerifiedAt,
	)
	return eris.Wrapf(err, "sqlite: upsert verified panelist %s", p.HashID)
}

func (s *SQLiteStore) ListVerifiedPanelists(ctx context.Context, outcome model.PanelistOutcome) ([]model.VerifiedPanelist, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT hash_id, status, job_title, industry, company_size, job_function, employment_status, verified_at
		 FROM verified_panelists WHERE status = ? ORDER BY verified_at`, string(outcome))
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list verified panelists")
	}
	defer rows.Close()

	var out []model.VerifiedPanelist
	for rows.Next() {
		var p model.VerifiedPanelist
		if err := rows.Scan(&p.HashID, &p.Status, &p.JobTitle, &p.Industry,
			&p.CompanySize, &p.JobFunction, &p.EmploymentStatus, &p.VerifiedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan verified panelist")
		}
		out = append(out, p)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list verified panelists iterate")
}

func (s *SQLiteStore) CountVerifiedPanelists(ctx context.Context, outcome model.PanelistOutcome) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM verified_panelists WHERE status = ?`, string(outcome),
	).Scan(&count)
	return count, eris.Wrap(err, "sqlite: count verified panelists")
}

// --- helpers ---

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

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	out := make([]byte, 0, n*2)
	for i := 0; i < n; i++ {
		if i > 0 {
			out = append(out, ',')
		}
		out = append(out, '?')
	}
	return string(out)
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRespondent(row scannable) (*model.Respondent, error) {
	var r model.Respondent
	var verified int
	var lastActive sql.NullTime

	err := row.Scan(&r.HashID, &r.FirstName, &r.LastName, &r.Email, &r.Company, &r.Location,
		&r.EmploymentStatus, &r.JobTitle, &r.JobFunction, &r.CompanySize, &r.Industry,
		&verified, &r.CreatedAt, &lastActive)
	if err != nil {
		return nil, err
	}
	r.Verified = verified != 0
	if lastActive.Valid {
		t := lastActive.Time
		r.LastActiveAt = &t
	}
	return &r, nil
}

func scanStudy(row scannable) (*model.Study, error) {
	var st model.Study
	var status, queriesJSON string

	err := row.Scan(&st.ID, &st.AccountID, &st.Name, &st.Description, &status,
		&st.TargetResponses, &queriesJSON, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		return nil, err
	}
	st.Status = model.StudyStatus(status)
	if err := json.Unmarshal([]byte(queriesJSON), &st.SelectedQueries); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal selected queries")
	}
	return &st, nil
}

func scanVerificationStatus(row scannable) (*model.VerificationStatus, error) {
	var st model.VerificationStatus
	var verified, autoVerified int
	var proofStatus string
	var verifiedAt sql.NullTime

	err := row.Scan(&st.HashID, &verified, &proofStatus, &verifiedAt,
		&st.LinkedInName, &st.LinkedInEmail, &autoVerified, &st.FailReason)
	if err != nil {
		return nil, err
	}
	st.Verified = verified != 0
	st.AutoVerified = autoVerified != 0
	st.ProofStatus = model.ProofStatus(proofStatus)
	if verifiedAt.Valid {
		t := verifiedAt.Time
		st.VerifiedAt = &t
	}
	return &st, nil
}
