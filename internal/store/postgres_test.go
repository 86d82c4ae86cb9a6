package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proofpanel/proofpanel/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_GetVerificationStatus_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT hash_id, verified, proof_status`).
		WithArgs("unknown").
		WillReturnError(pgx.ErrNoRows)

	got, err := s.GetVerificationStatus(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetVerificationStatus_Found(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	rows := pgxmock.NewRows([]string{
		"hash_id", "verified", "proof_status", "verified_at",
		"linkedin_name", "linkedin_email", "auto_verified", "fail_reason",
	}).AddRow("r1", true, "Verified", &now, "Alex Smith", "alex@example.com", false, "")

	mock.ExpectQuery(`SELECT hash_id, verified, proof_status`).
		WithArgs("r1").
		WillReturnRows(rows)

	got, err := s.GetVerificationStatus(context.Background(), "r1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Verified)
	assert.Equal(t, model.ProofStatusVerified, got.ProofStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertBatchRelationship(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO batch_relationships`).
		WithArgs("TEST-a", "m1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.UpsertBatchRelationship(context.Background(), "TEST-a", "m1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListMates(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	rows := pgxmock.NewRows([]string{"mate_hash_id"}).AddRow("m1").AddRow("m2")
	mock.ExpectQuery(`SELECT mate_hash_id FROM batch_relationships`).
		WithArgs("TEST-a").
		WillReturnRows(rows)

	mates, err := s.ListMates(context.Background(), "TEST-a")
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, mates)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SetRespondentVerified_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE respondents SET verified`).
		WithArgs(true, pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.SetRespondentVerified(context.Background(), "missing", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ClearVerificationData_All(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM verification_statuses`).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectExec(`DELETE FROM attribute_snapshots`).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectExec(`DELETE FROM batch_relationships`).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec(`UPDATE respondents SET verified = false`).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))
	mock.ExpectCommit()

	require.NoError(t, s.ClearVerificationData(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CountVerifiedPanelists(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	rows := pgxmock.NewRows([]string{"count"}).AddRow(7)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM verified_panelists`).
		WithArgs("failed").
		WillReturnRows(rows)

	count, err := s.CountVerifiedPanelists(context.Background(), model.OutcomeFailed)
	require.NoError(t, err)
	assert.Equal(t, 7, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
