package dashboard

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proofpanel/proofpanel/internal/mailer"
	"github.com/proofpanel/proofpanel/internal/model"
)

type fakeBackend struct {
	statuses    map[string]model.VerificationStatus
	statusesErr error
	cleared     [][]string
	manifest    *mailer.Manifest
	sendErr     error
	sent        [][]mailer.Recipient
}

func (f *fakeBackend) Statuses(_ context.Context, hashIDs []string) (map[string]model.VerificationStatus, error) {
	if f.statusesErr != nil {
		return nil, f.statusesErr
	}
	out := map[string]model.VerificationStatus{}
	for _, id := range hashIDs {
		if st, ok := f.statuses[id]; ok {
			out[id] = st
		}
	}
	return out, nil
}

func (f *fakeBackend) ClearStatuses(_ context.Context, hashIDs []string) error {
	f.cleared = append(f.cleared, hashIDs)
	return nil
}

func (f *fakeBackend) SendVerificationEmails(_ context.Context, recipients []mailer.Recipient) (*mailer.Manifest, error) {
	f.sent = append(f.sent, recipients)
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	if f.manifest != nil {
		return f.manifest, nil
	}
	m := &mailer.Manifest{}
	for _, r := range recipients {
		m.Sent = append(m.Sent, r.HashID)
	}
	return m, nil
}

func newTestManager(t *testing.T, backend Backend) *Manager {
	t.Helper()
	cache := NewFileCache(filepath.Join(t.TempDir(), "dashboard.json"))
	return NewManager(backend, cache)
}

func respondents(ids ...string) []model.Respondent {
	out := make([]model.Respondent, len(ids))
	for i, id := range ids {
		out[i] = model.Respondent{HashID: id, Email: id + "@example.com"}
	}
	return out
}

func TestInit_FreshStart(t *testing.T) {
	backend := &fakeBackend{}
	m := newTestManager(t, backend)

	require.NoError(t, m.Init(context.Background(), respondents("r1", "r2"), []string{"jobTitle"}))

	items := m.Items()
	require.Len(t, items, 2)
	assert.Equal(t, EmailPending, items[0].EmailStatus)
	assert.Equal(t, ProofPending, items[0].ProofStatus)
	assert.Equal(t, 1, m.BatchIndex())
	// A config change (or no cache) clears server-side statuses.
	require.Len(t, backend.cleared, 1)
	assert.Equal(t, []string{"r1", "r2"}, backend.cleared[0])
}

func TestInit_UnchangedConfigRestoresProgress(t *testing.T) {
	backend := &fakeBackend{}
	cache := NewFileCache(filepath.Join(t.TempDir(), "dashboard.json"))

	m1 := NewManager(backend, cache)
	require.NoError(t, m1.Init(context.Background(), respondents("r1", "r2"), []string{"jobTitle"}))
	_, err := m1.SendVerificationEmails(context.Background())
	require.NoError(t, err)

	// Same inputs, new session: progress survives, no server clear.
	m2 := NewManager(backend, cache)
	require.NoError(t, m2.Init(context.Background(), respondents("r2", "r1"), []string{"jobTitle"}))

	require.Len(t, backend.cleared, 1) // only the first Init cleared
	for _, item := range m2.Items() {
		assert.Equal(t, EmailSent, item.EmailStatus)
	}
}

func TestInit_ConfigChangeInvalidates(t *testing.T) {
	backend := &fakeBackend{}
	cache := NewFileCache(filepath.Join(t.TempDir(), "dashboard.json"))

	m1 := NewManager(backend, cache)
	require.NoError(t, m1.Init(context.Background(), respondents("r1"), []string{"jobTitle"}))
	_, err := m1.SendVerificationEmails(context.Background())
	require.NoError(t, err)

	m2 := NewManager(backend, cache)
	require.NoError(t, m2.Init(context.Background(), respondents("r1"), []string{"industry"}))

	require.Len(t, backend.cleared, 2)
	assert.Equal(t, EmailPending, m2.Items()[0].EmailStatus)
	assert.Equal(t, 1, m2.BatchIndex())
}

func TestInit_ReconcilesRespondentChurn(t *testing.T) {
	backend := &fakeBackend{}
	cache := NewFileCache(filepath.Join(t.TempDir(), "dashboard.json"))

	m1 := NewManager(backend, cache)
	require.NoError(t, m1.Init(context.Background(), respondents("r1", "r2"), nil))
	_, err := m1.SendVerificationEmails(context.Background())
	require.NoError(t, err)

	// Hash-id set change resets; statuses rebuild from scratch for the new set.
	m2 := NewManager(backend, cache)
	require.NoError(t, m2.Init(context.Background(), respondents("r1", "r3"), nil))

	ids := make([]string, 0, 2)
	for _, item := range m2.Items() {
		ids = append(ids, item.PanelistID)
	}
	assert.ElementsMatch(t, []string{"r1", "r3"}, ids)
}

func TestHasConfigChanged_SetEquality(t *testing.T) {
	m := newTestManager(t, &fakeBackend{})
	require.NoError(t, m.Init(context.Background(), respondents("r1", "r2"), []string{"a", "b"}))

	assert.False(t, m.HasConfigChanged([]string{"r2", "r1"}, []string{"b", "a"}))
	assert.True(t, m.HasConfigChanged([]string{"r1"}, []string{"a", "b"}))
	assert.True(t, m.HasConfigChanged([]string{"r1", "r2"}, []string{"a"}))
}

func TestRefreshStatuses_PromotesAndNeverRegresses(t *testing.T) {
	backend := &fakeBackend{statuses: map[string]model.VerificationStatus{
		"r1": {HashID: "r1", Verified: true, ProofStatus: model.ProofStatusVerified},
	}}
	m := newTestManager(t, backend)
	require.NoError(t, m.Init(context.Background(), respondents("r1", "r2"), nil))

	require.NoError(t, m.RefreshStatuses(context.Background()))
	items := m.Items()
	assert.Equal(t, ProofVerified, items[0].ProofStatus)
	assert.Equal(t, ZKPPass, items[0].ZKPResult)
	assert.Equal(t, EmailVerified, items[0].EmailStatus)
	assert.Equal(t, ProofPending, items[1].ProofStatus)

	// Server no longer reports r1: the item keeps its verified display.
	backend.statuses = map[string]model.VerificationStatus{}
	require.NoError(t, m.RefreshStatuses(context.Background()))
	assert.Equal(t, ProofVerified, m.Items()[0].ProofStatus)
}

func TestLoadMore_GatedOnPendingEmails(t *testing.T) {
	backend := &fakeBackend{}
	m := newTestManager(t, backend)
	ids := []string{"r1", "r2", "r3", "r4", "r5", "r6", "r7"}
	require.NoError(t, m.Init(context.Background(), respondents(ids...), nil))

	assert.Len(t, m.DisplayedItems(), BatchSize)
	assert.True(t, m.HasMoreItems())

	// All displayed emails are still pending.
	require.ErrorIs(t, m.LoadMore(), ErrBatchGate)
	assert.Equal(t, 1, m.BatchIndex())

	_, err := m.SendVerificationEmails(context.Background())
	require.NoError(t, err)

	require.NoError(t, m.LoadMore())
	assert.Equal(t, 2, m.BatchIndex())
	assert.Len(t, m.DisplayedItems(), 7)
	assert.False(t, m.HasMoreItems())

	// At the end LoadMore is a no-op.
	require.NoError(t, m.LoadMore())
	assert.Equal(t, 2, m.BatchIndex())
}

func TestSendVerificationEmails_OnlyDisplayedPending(t *testing.T) {
	backend := &fakeBackend{}
	m := newTestManager(t, backend)
	ids := []string{"r1", "r2", "r3", "r4", "r5", "r6"}
	require.NoError(t, m.Init(context.Background(), respondents(ids...), nil))

	_, err := m.SendVerificationEmails(context.Background())
	require.NoError(t, err)

	require.Len(t, backend.sent, 1)
	assert.Len(t, backend.sent[0], BatchSize) // r6 is off-page

	// Re-sending with nothing pending in view sends nothing.
	_, err = m.SendVerificationEmails(context.Background())
	require.NoError(t, err)
	require.Len(t, backend.sent, 1)
}

func TestSendVerificationEmails_AppliesManifest(t *testing.T) {
	backend := &fakeBackend{manifest: &mailer.Manifest{
		Sent: []string{"r1"},
		Failed: []mailer.FailedRecipient{
			{HashID: "r2", Email: "r2@example.com", Reason: "mailbox full"},
		},
	}}
	m := newTestManager(t, backend)
	require.NoError(t, m.Init(context.Background(), respondents("r1", "r2", "r3"), nil))

	manifest, err := m.SendVerificationEmails(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, manifest.Sent)

	items := m.Items()
	assert.Equal(t, EmailSent, items[0].EmailStatus)
	assert.Equal(t, EmailFailed, items[1].EmailStatus)
	// Not in the manifest: stays pending.
	assert.Equal(t, EmailPending, items[2].EmailStatus)
}

func TestSendVerificationEmails_TransportErrorLeavesState(t *testing.T) {
	backend := &fakeBackend{sendErr: assert.AnError}
	m := newTestManager(t, backend)
	require.NoError(t, m.Init(context.Background(), respondents("r1", "r2"), nil))

	_, err := m.SendVerificationEmails(context.Background())
	require.Error(t, err)
	for _, item := range m.Items() {
		assert.Equal(t, EmailPending, item.EmailStatus)
	}
}

func TestFileCache_CorruptIsMiss(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.json")
	cache := NewFileCache(path)
	require.NoError(t, cache.Save(&State{BatchIndex: 2}))

	loaded, err := cache.Load()
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.BatchIndex)

	require.NoError(t, cache.Clear())
	loaded, err = cache.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
