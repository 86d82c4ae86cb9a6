package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/proofpanel/proofpanel/internal/mailer"
	"github.com/proofpanel/proofpanel/internal/model"
)

// HTTPBackend drives the dashboard against the verification API.
type HTTPBackend struct {
	http    *http.Client
	baseURL string
}

// NewHTTPBackend creates an HTTPBackend for the API at baseURL.
func NewHTTPBackend(baseURL string, timeout time.Duration) *HTTPBackend {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &HTTPBackend{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// envelope is the response wrapper every API endpoint uses.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Statuses fetches verification statuses for the given hash IDs. The server
// fills absent records with the Pending default.
func (b *HTTPBackend) Statuses(ctx context.Context, hashIDs []string) (map[string]model.VerificationStatus, error) {
	env, err := b.post(ctx, "/api/verification-statuses", map[string]any{"hashIds": hashIDs})
	if err != nil {
		return nil, err
	}
	var statuses map[string]model.VerificationStatus
	if err := json.Unmarshal(env.Data, &statuses); err != nil {
		return nil, eris.Wrap(err, "dashboard: decode statuses")
	}
	return statuses, nil
}

// ClearStatuses wipes server-side verification state for the given hash IDs.
func (b *HTTPBackend) ClearStatuses(ctx context.Context, hashIDs []string) error {
	_, err := b.post(ctx, "/api/clear-verification-statuses", map[string]any{"hashIds": hashIDs})
	return err
}

// SendVerificationEmails runs the bulk send and returns the manifest.
func (b *HTTPBackend) SendVerificationEmails(ctx context.Context, recipients []mailer.Recipient) (*mailer.Manifest, error) {
	env, err := b.post(ctx, "/api/send-verification-emails", map[string]any{"recipients": recipients})
	if err != nil {
		return nil, err
	}
	var manifest mailer.Manifest
	if err := json.Unmarshal(env.Data, &manifest); err != nil {
		return nil, eris.Wrap(err, "dashboard: decode send manifest")
	}
	return &manifest, nil
}

func (b *HTTPBackend) post(ctx context.Context, path string, payload any) (*envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, eris.Wrapf(err, "dashboard: encode %s request", path)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, eris.Wrapf(err, "dashboard: build %s request", path)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "dashboard: call %s", path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, eris.Wrapf(err, "dashboard: read %s response", path)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, eris.Wrapf(err, "dashboard: decode %s response", path)
	}
	if resp.StatusCode != http.StatusOK || !env.Success {
		if env.Message != "" {
			return nil, eris.Errorf("dashboard: %s failed: %s", path, env.Message)
		}
		return nil, eris.Errorf("dashboard: %s failed: http %d", path, resp.StatusCode)
	}
	return &env, nil
}
