package dashboard

import (
	"context"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/proofpanel/proofpanel/internal/mailer"
	"github.com/proofpanel/proofpanel/internal/model"
)

// BatchSize is the fixed page size of the dashboard.
const BatchSize = 5

// ErrBatchGate rejects LoadMore while the displayed batch still has
// undispatched emails.
var ErrBatchGate = eris.New("dashboard: displayed batch has pending emails")

// Backend is the server surface the dashboard depends on.
type Backend interface {
	Statuses(ctx context.Context, hashIDs []string) (map[string]model.VerificationStatus, error)
	ClearStatuses(ctx context.Context, hashIDs []string) error
	SendVerificationEmails(ctx context.Context, recipients []mailer.Recipient) (*mailer.Manifest, error)
}

// Manager owns the dashboard state for one session. Not safe for concurrent
// use; the dashboard is single-threaded by design.
type Manager struct {
	backend Backend
	cache   Cache

	state       State
	respondents map[string]model.Respondent
}

// NewManager creates a Manager with the given backend and cache.
func NewManager(backend Backend, cache Cache) *Manager {
	return &Manager{
		backend:     backend,
		cache:       cache,
		state:       State{BatchIndex: 1},
		respondents: map[string]model.Respondent{},
	}
}

// HasConfigChanged reports whether the current inputs differ from the
// cached configuration (set equality on both the hash-id set and the
// selected-query set).
func (m *Manager) HasConfigChanged(hashIDs, selectedQueries []string) bool {
	current := &Config{HashIDs: hashIDs, SelectedQueries: selectedQueries}
	return !current.Equal(m.state.LastConfig)
}

// Init loads cached progress when the configuration is unchanged and
// otherwise starts fresh: cached items are discarded, the batch index
// resets, and the server is asked to clear verification statuses for the
// current respondents.
//
// On an unchanged config the cached items are reconciled against the
// current respondent list: items for departed respondents are dropped,
// fresh Pending items are appended for new ones, and resolved statuses on
// retained items are preserved.
func (m *Manager) Init(ctx context.Context, respondents []model.Respondent, selectedQueries []string) error {
	hashIDs := make([]string, 0, len(respondents))
	m.respondents = make(map[string]model.Respondent, len(respondents))
	for _, r := range respondents {
		hashIDs = append(hashIDs, r.HashID)
		m.respondents[r.HashID] = r
	}
	current := &Config{HashIDs: hashIDs, SelectedQueries: selectedQueries}

	cached, err := m.cache.Load()
	if err != nil {
		// A corrupt cache is a miss, not a failure.
		zap.L().Warn("dashboard cache unreadable, rebuilding", zap.Error(err))
		cached = nil
	}

	if cached == nil || !current.Equal(cached.LastConfig) {
		if err := m.backend.ClearStatuses(ctx, hashIDs); err != nil {
			return eris.Wrap(err, "dashboard: clear server statuses")
		}
		m.state = State{
			Items:      freshItems(respondents),
			BatchIndex: 1,
			LastConfig: current,
		}
	} else {
		m.state = *cached
		m.state.LastConfig = current
		m.reconcile(respondents)
	}

	m.persist()
	return nil
}

// reconcile drops cached items whose respondent is gone and appends Pending
// items for respondents the cache has not seen. Existing statuses are left
// untouched.
func (m *Manager) reconcile(respondents []model.Respondent) {
	known := make(map[string]struct{}, len(m.state.Items))
	retained := m.state.Items[:0]
	for _, item := range m.state.Items {
		if _, ok := m.respondents[item.PanelistID]; ok {
			retained = append(retained, item)
			known[item.PanelistID] = struct{}{}
		}
	}
	m.state.Items = retained

	for _, r := range respondents {
		if _, ok := known[r.HashID]; !ok {
			m.state.Items = append(m.state.Items, newItem(r))
		}
	}
}

// RefreshStatuses pulls verification statuses for every item and promotes
// those reported verified. Items the server does not report stay as they
// are; a Verified item never regresses.
func (m *Manager) RefreshStatuses(ctx context.Context) error {
	if len(m.state.Items) == 0 {
		return nil
	}
	ids := make([]string, len(m.state.Items))
	for i, item := range m.state.Items {
		ids[i] = item.PanelistID
	}

	statuses, err := m.backend.Statuses(ctx, ids)
	if err != nil {
		return eris.Wrap(err, "dashboard: refresh statuses")
	}

	for i := range m.state.Items {
		item := &m.state.Items[i]
		if st, ok := statuses[item.PanelistID]; ok && st.Verified {
			item.ProofStatus = ProofVerified
			item.ZKPResult = ZKPPass
			if item.EmailStatus == EmailSent || item.EmailStatus == EmailPending {
				item.EmailStatus = EmailVerified
			}
		}
	}

	m.persist()
	return nil
}

// DisplayedItems returns the items in view: the first BatchIndex pages.
func (m *Manager) DisplayedItems() []Item {
	end := min(m.state.BatchIndex*BatchSize, len(m.state.Items))
	return m.state.Items[:end]
}

// HasMoreItems reports whether more pages remain beyond the displayed set.
func (m *Manager) HasMoreItems() bool {
	return len(m.DisplayedItems()) < len(m.state.Items)
}

// Items returns a snapshot of all items.
func (m *Manager) Items() []Item {
	return append([]Item(nil), m.state.Items...)
}

// BatchIndex returns the current page count in view.
func (m *Manager) BatchIndex() int {
	return m.state.BatchIndex
}

// LoadMore advances to the next page. It is rejected with ErrBatchGate
// while any displayed item still has a Pending email: every email in view
// must be dispatched (Sent or Failed) before more respondents load.
func (m *Manager) LoadMore() error {
	if !m.HasMoreItems() {
		return nil
	}
	for _, item := range m.DisplayedItems() {
		if item.EmailStatus == EmailPending {
			return ErrBatchGate
		}
	}
	m.state.BatchIndex++
	m.persist()
	return nil
}

// SendVerificationEmails dispatches a verification email for every
// displayed item still Pending. The manifest is applied to the item list
// atomically once the full response is in; a transport error leaves all
// item statuses untouched.
func (m *Manager) SendVerificationEmails(ctx context.Context) (*mailer.Manifest, error) {
	var recipients []mailer.Recipient
	for _, item := range m.DisplayedItems() {
		if item.EmailStatus != EmailPending {
			continue
		}
		r, ok := m.respondents[item.PanelistID]
		if !ok {
			continue
		}
		recipients = append(recipients, mailer.RecipientFromRespondent(r))
	}
	if len(recipients) == 0 {
		return &mailer.Manifest{}, nil
	}

	manifest, err := m.backend.SendVerificationEmails(ctx, recipients)
	if err != nil {
		return nil, eris.Wrap(err, "dashboard: send verification emails")
	}

	sent := make(map[string]struct{}, len(manifest.Sent))
	for _, id := range manifest.Sent {
		sent[id] = struct{}{}
	}
	failed := make(map[string]struct{}, len(manifest.Failed))
	for _, f := range manifest.Failed {
		failed[f.HashID] = struct{}{}
	}

	for i := range m.state.Items {
		item := &m.state.Items[i]
		if item.EmailStatus != EmailPending {
			continue
		}
		if _, ok := sent[item.PanelistID]; ok {
			item.EmailStatus = EmailSent
		} else if _, ok := failed[item.PanelistID]; ok {
			item.EmailStatus = EmailFailed
		}
	}

	m.persist()
	return manifest, nil
}

func (m *Manager) persist() {
	if err := m.cache.Save(&m.state); err != nil {
		zap.L().Warn("dashboard cache save failed", zap.Error(err))
	}
}

func freshItems(respondents []model.Respondent) []Item {
	items := make([]Item, len(respondents))
	for i, r := range respondents {
		items[i] = newItem(r)
	}
	return items
}

func newItem(r model.Respondent) Item {
	return Item{
		ID:          uuid.New().String(),
		PanelistID:  r.HashID,
		Email:       r.Email,
		EmailStatus: EmailPending,
		ProofStatus: ProofPending,
		ZKPResult:   ZKPPending,
	}
}
