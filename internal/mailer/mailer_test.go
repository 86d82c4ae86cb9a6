package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proofpanel/proofpanel/internal/model"
	"github.com/proofpanel/proofpanel/internal/store"
)

type fakeSender struct {
	mu    sync.Mutex
	sent  []string
	errs  map[string]error
	calls map[string]int
}

func newFakeSender() *fakeSender {
	return &fakeSender{errs: map[string]error{}, calls: map[string]int{}}
}

func (f *fakeSender) Send(_ context.Context, to, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[to]++
	if err := f.errs[to]; err != nil {
		return err
	}
	f.sent = append(f.sent, to)
	return nil
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func testOptions() Options {
	return Options{
		FrontendBaseURL: "https://app.example.com",
		RatePerSecond:   1000,
		MaxRetries:      1,
	}
}

func recipient(hashID string) Recipient {
	return Recipient{
		HashID: hashID,
		Email:  hashID + "@example.com",
		Attributes: model.AttributeRecord{
			JobTitle: "Engineer",
			Industry: "Technology",
		},
	}
}

func TestSendVerificationEmails_NoRecipients(t *testing.T) {
	m := New(newTestStore(t), newFakeSender(), testOptions())
	_, err := m.SendVerificationEmails(context.Background(), nil)
	require.Error(t, err)
}

func TestSendVerificationEmails_OnlyAnchorsHitSMTP(t *testing.T) {
	st := newTestStore(t)
	sender := newFakeSender()
	m := New(st, sender, testOptions())

	manifest, err := m.SendVerificationEmails(context.Background(), []Recipient{
		recipient("TEST-a"),
		recipient("r1"),
		recipient("r2"),
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"TEST-a", "r1", "r2"}, manifest.Sent)
	assert.Empty(t, manifest.Failed)
	// Real delivery happened only for the anchor.
	assert.Equal(t, []string{"TEST-a@example.com"}, sender.sent)
}

func TestSendVerificationEmails_SnapshotsAttributes(t *testing.T) {
	st := newTestStore(t)
	m := New(st, newFakeSender(), testOptions())

	_, err := m.SendVerificationEmails(context.Background(), []Recipient{recipient("r1")})
	require.NoError(t, err)

	attrs, err := st.GetAttributes(context.Background(), "r1")
	require.NoError(t, err)
	require.NotNil(t, attrs)
	assert.Equal(t, "Engineer", attrs.JobTitle)
}

func TestSendVerificationEmails_LinksMatesToPrecedingAnchor(t *testing.T) {
	st := newTestStore(t)
	m := New(st, newFakeSender(), testOptions())
	ctx := context.Background()

	_, err := m.SendVerificationEmails(ctx, []Recipient{
		recipient("r0"), // before any anchor: unlinked
		recipient("TEST-a"),
		recipient("r1"),
		recipient("r2"),
		recipient("TEST-b"),
		recipient("r3"),
	})
	require.NoError(t, err)

	matesA, err := st.ListMates(ctx, "TEST-a")
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2"}, matesA)

	matesB, err := st.ListMates(ctx, "TEST-b")
	require.NoError(t, err)
	assert.Equal(t, []string{"r3"}, matesB)
}

func TestSendVerificationEmails_AnchorFailureInManifest(t *testing.T) {
	st := newTestStore(t)
	sender := newFakeSender()
	sender.errs["TEST-a@example.com"] = errors.New("550 mailbox unavailable")
	m := New(st, sender, testOptions())

	manifest, err := m.SendVerificationEmails(context.Background(), []Recipient{
		recipient("TEST-a"),
		recipient("r1"),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"r1"}, manifest.Sent)
	require.Len(t, manifest.Failed, 1)
	assert.Equal(t, "TEST-a", manifest.Failed[0].HashID)
	assert.Contains(t, manifest.Failed[0].Reason, "550")
}

func TestSendVerificationEmails_TransientRetries(t *testing.T) {
	st := newTestStore(t)
	sender := newFakeSender()
	sender.errs["TEST-a@example.com"] = errors.New("421 service not available")

	opts := testOptions()
	opts.MaxRetries = 3
	m := New(st, sender, opts)

	manifest, err := m.SendVerificationEmails(context.Background(), []Recipient{recipient("TEST-a")})
	require.NoError(t, err)
	require.Len(t, manifest.Failed, 1)
	assert.Equal(t, 3, sender.calls["TEST-a@example.com"])
}

type rebindSender struct {
	*fakeSender
	boundEmail    string
	boundPassword string
}

func (r *rebindSender) WithCredentials(email, password string) Sender {
	r.boundEmail = email
	r.boundPassword = password
	return r.fakeSender
}

func TestSendWithCredentials_RebindsSender(t *testing.T) {
	st := newTestStore(t)
	sender := &rebindSender{fakeSender: newFakeSender()}
	m := New(st, sender, testOptions())

	creds := Credentials{Email: "ops@insight.example", Password: "relay-secret"}
	manifest, err := m.SendWithCredentials(context.Background(), creds, []Recipient{recipient("TEST-a")})
	require.NoError(t, err)
	assert.Equal(t, []string{"TEST-a"}, manifest.Sent)
	assert.Equal(t, "ops@insight.example", sender.boundEmail)
	assert.Equal(t, "relay-secret", sender.boundPassword)
}

func TestSendWithCredentials_PlainSenderIgnoresOverride(t *testing.T) {
	st := newTestStore(t)
	sender := newFakeSender()
	m := New(st, sender, testOptions())

	creds := Credentials{Email: "ops@insight.example", Password: "relay-secret"}
	manifest, err := m.SendWithCredentials(context.Background(), creds, []Recipient{recipient("TEST-a")})
	require.NoError(t, err)
	assert.Equal(t, []string{"TEST-a"}, manifest.Sent)
	assert.Equal(t, []string{"TEST-a@example.com"}, sender.sent)
}

func TestSMTPSenderWithCredentials(t *testing.T) {
	base := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", Username: "a", Password: "b", From: "a"})
	derived, ok := base.WithCredentials("c@example.com", "d").(*SMTPSender)
	require.True(t, ok)
	assert.Equal(t, "c@example.com", derived.cfg.Username)
	assert.Equal(t, "d", derived.cfg.Password)
	assert.Equal(t, "c@example.com", derived.cfg.From)
	// The original keeps its configured login.
	assert.Equal(t, "a", base.cfg.Username)
}

func TestManifestSlicesAlwaysNonNil(t *testing.T) {
	st := newTestStore(t)
	sender := newFakeSender()
	sender.errs["TEST-a@example.com"] = errors.New("550 mailbox unavailable")
	m := New(st, sender, testOptions())

	manifest, err := m.SendVerificationEmails(context.Background(), []Recipient{recipient("TEST-a")})
	require.NoError(t, err)
	assert.NotNil(t, manifest.Sent)
	assert.Empty(t, manifest.Sent)

	raw, err := json.Marshal(manifest)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"sent":[]`)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(errors.New("read tcp: i/o timeout")))
	assert.True(t, isTransient(errors.New("450 mailbox busy")))
	assert.False(t, isTransient(errors.New("550 no such user")))
	assert.False(t, isTransient(nil))
}
