package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proofpanel/proofpanel/internal/mailer"
	"github.com/proofpanel/proofpanel/internal/model"
)

func TestHTTPBackend_Statuses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/verification-statuses", r.URL.Path)
		var req struct {
			HashIDs []string `json:"hashIds"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"r1", "r2"}, req.HashIDs)

		_, _ = w.Write([]byte(`{"success":true,"data":{
			"r1":{"hashId":"r1","verified":true,"proofStatus":"Verified"},
			"r2":{"hashId":"r2","verified":false,"proofStatus":"Pending"}
		}}`))
	}))
	defer srv.Close()

	statuses, err := NewHTTPBackend(srv.URL, 0).Statuses(context.Background(), []string{"r1", "r2"})
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.True(t, statuses["r1"].Verified)
	assert.Equal(t, model.ProofStatusPending, statuses["r2"].ProofStatus)
}

func TestHTTPBackend_ClearStatuses(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"success":true,"message":"verification statuses cleared"}`))
	}))
	defer srv.Close()

	err := NewHTTPBackend(srv.URL, 0).ClearStatuses(context.Background(), []string{"r1"})
	require.NoError(t, err)
	assert.Equal(t, "/api/clear-verification-statuses", gotPath)
}

func TestHTTPBackend_SendVerificationEmails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/send-verification-emails", r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true,"message":"verification emails processed",
			"data":{"sent":["r1"],"failed":[{"hashId":"r2","email":"r2@example.com","reason":"mailbox full"}]}}`))
	}))
	defer srv.Close()

	manifest, err := NewHTTPBackend(srv.URL, 0).SendVerificationEmails(context.Background(),
		[]mailer.Recipient{{HashID: "r1"}, {HashID: "r2"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, manifest.Sent)
	require.Len(t, manifest.Failed, 1)
	assert.Equal(t, "r2", manifest.Failed[0].HashID)
}

func TestHTTPBackend_ErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"message":"hashIds is required"}`))
	}))
	defer srv.Close()

	_, err := NewHTTPBackend(srv.URL, 0).Statuses(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hashIds is required")
}

func TestHTTPBackend_DrivesManager(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/clear-verification-statuses":
			_, _ = w.Write([]byte(`{"success":true,"message":"verification statuses cleared"}`))
		case "/api/verification-statuses":
			_, _ = w.Write([]byte(`{"success":true,"data":{"r1":{"hashId":"r1","verified":true,"proofStatus":"Verified"}}}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	m := newTestManager(t, NewHTTPBackend(srv.URL, 0))
	require.NoError(t, m.Init(context.Background(), respondents("r1", "r2"), nil))
	require.NoError(t, m.RefreshStatuses(context.Background()))

	items := m.Items()
	assert.Equal(t, ProofVerified, items[0].ProofStatus)
	assert.Equal(t, ProofPending, items[1].ProofStatus)
}
