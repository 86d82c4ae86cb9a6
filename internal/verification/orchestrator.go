// Package verification implements the identity-verification core: the OAuth
// callback orchestrator and the batch auto-resolution engine for demo
// anchors.
package verification

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/proofpanel/proofpanel/internal/model"
	"github.com/proofpanel/proofpanel/internal/store"
	"github.com/proofpanel/proofpanel/pkg/linkedin"
)

// Result is the outcome of a completed verification attempt. HashID is empty
// when the state token could not be decoded; the attempt still verifies the
// panelist's identity, it just cannot be correlated to stored attributes.
type Result struct {
	HashID     string                `json:"hashId,omitempty"`
	Profile    linkedin.Profile      `json:"linkedin"`
	Attributes model.AttributeRecord `json:"attributes"`
	Verified   bool                  `json:"verified"`
	VerifiedAt time.Time             `json:"verifiedAt"`
}

// Orchestrator drives a verification attempt from authorization code to
// recorded status. External calls compose sequentially; each step depends on
// the previous one's result.
type Orchestrator struct {
	store    store.Store
	idp      linkedin.Identity
	resolver *Resolver
	now      func() time.Time
}

// NewOrchestrator wires the orchestrator to its stores, identity provider
// and batch resolver.
func NewOrchestrator(st store.Store, idp linkedin.Identity, resolver *Resolver) *Orchestrator {
	return &Orchestrator{
		store:    st,
		idp:      idp,
		resolver: resolver,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CompleteVerification runs the full callback flow:
// exchange the code, resolve the profile, load the attribute snapshot,
// record the verification status and ledger entry, and trigger batch
// auto-resolution when the respondent is a demo anchor.
//
// An undecodable state is a soft failure: the flow continues with no hash ID
// and skips every store write that needs one. Provider rejections propagate
// as their own error kinds; anything else unexpected comes back as a
// FailedError.
func (o *Orchestrator) CompleteVerification(ctx context.Context, code, state string) (*Result, error) {
	if code == "" {
		return nil, ErrMissingCode
	}

	hashID, err := linkedin.DecodeState(state)
	if err != nil {
		zap.L().Warn("undecodable oauth state, continuing without hash id",
			zap.Error(err),
		)
		hashID = ""
	}

	token, err := o.idp.ExchangeCode(ctx, code)
	if err != nil {
		if linkedin.IsAuthExchangeError(err) {
			return nil, err
		}
		return nil, &FailedError{Err: err}
	}

	profile, err := o.idp.ResolveProfile(ctx, token)
	if err != nil {
		if linkedin.IsProfileFetchError(err) {
			return nil, err
		}
		return nil, &FailedError{Err: err}
	}

	now := o.now()
	attrs := model.AttributeRecord{HashID: hashID}

	if hashID != "" {
		if stored, err := o.store.GetAttributes(ctx, hashID); err != nil {
			return nil, &FailedError{Err: err}
		} else if stored != nil {
			attrs = *stored
		}

		status := model.VerificationStatus{
			HashID:        hashID,
			Verified:      true,
			ProofStatus:   model.ProofStatusVerified,
			VerifiedAt:    &now,
			LinkedInName:  profile.Name,
			LinkedInEmail: profile.Email,
		}
		if err := o.store.UpsertVerificationStatus(ctx, status); err != nil {
			return nil, &FailedError{Err: err}
		}
		if err := o.store.UpsertVerifiedPanelist(ctx, ledgerEntry(hashID, model.OutcomeVerified, attrs, now)); err != nil {
			return nil, &FailedError{Err: err}
		}
		// Denormalized convenience flag; the respondent row may not exist
		// when the dataset was reloaded, which is not worth failing over.
		if err := o.store.SetRespondentVerified(ctx, hashID, true); err != nil {
			zap.L().Debug("respondent verified flag not updated",
				zap.String("hash_id", hashID),
				zap.Error(err),
			)
		}

		if model.IsAnchorID(hashID) {
			// Awaited so the demo outcome is settled within this request,
			// but a batch failure never fails the verification itself.
			if err := o.resolver.AutoResolveBatch(ctx, hashID); err != nil {
				zap.L().Error("batch auto-resolution failed",
					zap.String("anchor", hashID),
					zap.Error(err),
				)
			}
		}
	}

	zap.L().Info("verification complete",
		zap.String("hash_id", hashID),
		zap.String("subject", profile.SubjectID),
	)

	return &Result{
		HashID:     hashID,
		Profile:    *profile,
		Attributes: attrs,
		Verified:   true,
		VerifiedAt: now,
	}, nil
}

func ledgerEntry(hashID string, outcome model.PanelistOutcome, attrs model.AttributeRecord, at time.Time) model.VerifiedPanelist {
	return model.VerifiedPanelist{
		HashID:           hashID,
		Status:           outcome,
		JobTitle:         attrs.JobTitle,
		Industry:         attrs.Industry,
		CompanySize:      attrs.CompanySize,
		JobFunction:      attrs.JobFunction,
		EmploymentStatus: attrs.EmploymentStatus,
		VerifiedAt:       at,
	}
}
