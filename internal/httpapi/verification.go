package httpapi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/proofpanel/proofpanel/internal/mailer"
	"github.com/proofpanel/proofpanel/internal/model"
	"github.com/proofpanel/proofpanel/internal/store"
	"github.com/proofpanel/proofpanel/internal/verification"
	"github.com/proofpanel/proofpanel/pkg/linkedin"

	"github.com/go-chi/chi/v5"
)

// handleAuthURL returns the provider authorization URL for one respondent.
func (s *Server) handleAuthURL(w http.ResponseWriter, r *http.Request) {
	hashID := r.URL.Query().Get("hashId")
	if hashID == "" {
		writeError(w, http.StatusBadRequest, "hashId is required")
		return
	}
	u, err := s.authURL.AuthorizeURL(hashID)
	if err != nil {
		zap.L().Error("auth url build failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not build authorization url")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"authUrl": u,
	})
}

// handleCallback completes a verification attempt from the OAuth redirect.
// The hashId field is null when the state token could not be decoded.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code  string `json:"code"`
		State string `json:"state"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.verifier.CompleteVerification(r.Context(), req.Code, req.State)
	if err != nil {
		s.writeVerificationError(w, err)
		return
	}

	var hashID *string
	if result.HashID != "" {
		hashID = &result.HashID
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"hashId":     hashID,
			"linkedin":   result.Profile,
			"attributes": result.Attributes,
			"verified":   result.Verified,
			"verifiedAt": result.VerifiedAt,
		},
	})
}

func (s *Server) writeVerificationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, verification.ErrMissingCode):
		writeError(w, http.StatusBadRequest, "missing authorization code")
	case linkedin.IsAuthExchangeError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case linkedin.IsProfileFetchError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		zap.L().Error("verification failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "verification failed")
	}
}

// handleVerificationStatuses returns statuses for a batch of hash IDs.
// IDs with no stored record come back as the Pending default.
func (s *Server) handleVerificationStatuses(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HashIDs []string `json:"hashIds"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.HashIDs) == 0 {
		writeError(w, http.StatusBadRequest, "hashIds is required")
		return
	}

	stored, err := s.store.GetVerificationStatuses(r.Context(), req.HashIDs)
	if err != nil {
		zap.L().Error("status batch read failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load verification statuses")
		return
	}

	statuses := make(map[string]model.VerificationStatus, len(req.HashIDs))
	for _, id := range req.HashIDs {
		if st, ok := stored[id]; ok {
			statuses[id] = st
		} else {
			statuses[id] = model.NewPendingStatus(id)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    statuses,
	})
}

// handleVerificationStatus returns one respondent's status, defaulting to
// Pending when nothing is stored.
func (s *Server) handleVerificationStatus(w http.ResponseWriter, r *http.Request) {
	hashID := chi.URLParam(r, "hashId")
	st, err := s.store.GetVerificationStatus(r.Context(), hashID)
	if err != nil {
		zap.L().Error("status read failed", zap.String("hash_id", hashID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load verification status")
		return
	}
	if st == nil {
		pending := model.NewPendingStatus(hashID)
		st = &pending
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    st,
	})
}

// handleClearStatuses wipes verification state for the given hash IDs, or
// everything when none are given. The verified-panelist ledger is untouched.
func (s *Server) handleClearStatuses(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HashIDs []string `json:"hashIds"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.store.ClearVerificationData(r.Context(), req.HashIDs); err != nil {
		zap.L().Error("clear verification data failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not clear verification statuses")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "verification statuses cleared",
	})
}

// handleSendEmails runs the bulk verification send and returns the
// per-recipient manifest. Callers may supply their own SMTP login; both
// fields must come together.
func (s *Server) handleSendEmails(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SMTPEmail    string             `json:"smtpEmail"`
		SMTPPassword string             `json:"smtpPassword"`
		Recipients   []mailer.Recipient `json:"recipients"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Recipients) == 0 {
		writeError(w, http.StatusBadRequest, "recipients is required")
		return
	}
	if (req.SMTPEmail == "") != (req.SMTPPassword == "") {
		writeError(w, http.StatusBadRequest, "missing smtp credentials")
		return
	}

	var (
		manifest *mailer.Manifest
		err      error
	)
	if req.SMTPEmail != "" {
		creds := mailer.Credentials{Email: req.SMTPEmail, Password: req.SMTPPassword}
		manifest, err = s.mailer.SendWithCredentials(r.Context(), creds, req.Recipients)
	} else {
		manifest, err = s.mailer.SendVerificationEmails(r.Context(), req.Recipients)
	}
	if err != nil {
		zap.L().Error("bulk send failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not send verification emails")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "verification emails processed",
		"data": map[string]any{
			"sent":   manifest.Sent,
			"failed": manifest.Failed,
		},
	})
}

// handleAggregated returns the attribute frequency rollup over the ledger.
func (s *Server) handleAggregated(w http.ResponseWriter, r *http.Request) {
	agg, err := s.reporter.AggregatedVerifiedAttributes(r.Context())
	if err != nil {
		zap.L().Error("aggregation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not aggregate verified panelists")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    agg,
	})
}

// handleListRespondents returns respondents matching the query filter.
func (s *Server) handleListRespondents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.RespondentFilter{
		JobTitle:         q.Get("jobTitle"),
		Industry:         q.Get("industry"),
		CompanySize:      q.Get("companySize"),
		JobFunction:      q.Get("jobFunction"),
		EmploymentStatus: q.Get("employmentStatus"),
	}
	if v := q.Get("verified"); v != "" {
		verified := v == "true"
		filter.Verified = &verified
	}

	respondents, err := s.store.ListRespondents(r.Context(), filter)
	if err != nil {
		zap.L().Error("respondent list failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list respondents")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"respondents": respondents,
	})
}
