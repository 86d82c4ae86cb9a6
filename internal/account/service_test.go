package account

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proofpanel/proofpanel/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))

	return NewService(st, Options{
		SigningKey: []byte("test-signing-key"),
		SessionTTL: time.Hour,
		BcryptCost: 4, // keep hashing fast in tests
	})
}

func TestSignUp_AndSignIn(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	session, err := svc.SignUp(ctx, "Ops@Insight.example", "hunter2hunter2", "Insight Co")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "ops@insight.example", session.Account.Email)
	assert.Nil(t, session.Account.PasswordHash)

	signedIn, err := svc.SignIn(ctx, "ops@insight.example", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, session.Account.ID, signedIn.Account.ID)
}

func TestSignUp_Validation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "not-an-email", "hunter2hunter2", "Co")
	require.Error(t, err)

	_, err = svc.SignUp(ctx, "ok@example.com", "short", "Co")
	require.Error(t, err)
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "ops@insight.example", "hunter2hunter2", "Co")
	require.NoError(t, err)

	_, err = svc.SignUp(ctx, "ops@insight.example", "otherpassword", "Co")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignIn_InvalidCredentials(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "ops@insight.example", "hunter2hunter2", "Co")
	require.NoError(t, err)

	_, err = svc.SignIn(ctx, "ops@insight.example", "wrongpassword")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown email yields the same error as a wrong password.
	_, err = svc.SignIn(ctx, "nobody@insight.example", "hunter2hunter2")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyToken(t *testing.T) {
	svc := newTestService(t)

	session, err := svc.SignUp(context.Background(), "ops@insight.example", "hunter2hunter2", "Co")
	require.NoError(t, err)

	id, err := svc.VerifyToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.Account.ID, id)

	_, err = svc.VerifyToken("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyToken_Expired(t *testing.T) {
	svc := newTestService(t)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	session, err := svc.SignUp(context.Background(), "ops@insight.example", "hunter2hunter2", "Co")
	require.NoError(t, err)

	_, err = svc.VerifyToken(session.Token)
	require.ErrorIs(t, err, ErrInvalidToken)
}
