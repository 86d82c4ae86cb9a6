package verification

import (
	"context"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/proofpanel/proofpanel/internal/model"
	"github.com/proofpanel/proofpanel/internal/store"
)

// Synthetic identity and fail reason recorded for batch-resolved mates.
const (
	AutoVerifiedName   = "Auto Verified"
	AutoVerifiedEmail  = "auto@verified.com"
	FailReasonMismatch = "Verification failed - attributes mismatch"
)

// Per trigger, at most this many mates are marked verified and this many
// marked failed; the rest stay pending.
const (
	maxAutoVerified = 2
	maxAutoFailed   = 2
)

// Resolver simulates bulk verification outcomes for the mates of a demo
// anchor, so a demo can show mixed results without every mate completing
// real OAuth.
type Resolver struct {
	store   store.Store
	now     func() time.Time
	shuffle func([]string)
}

// NewResolver creates a Resolver using an unbiased random shuffle.
func NewResolver(st store.Store) *Resolver {
	return &Resolver{
		store: st,
		now:   func() time.Time { return time.Now().UTC() },
		shuffle: func(ids []string) {
			rand.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
		},
	}
}

// AutoResolveBatch partitions the anchor's mates into up to two verified and
// up to two failed outcomes, chosen uniformly at random, and records both
// the verification status and the permanent ledger entry for each. Zero
// mates is a no-op. The partition is drawn fresh on every trigger; because
// every write is a keyed upsert, re-processing a mate is safe.
func (r *Resolver) AutoResolveBatch(ctx context.Context, anchorHashID string) error {
	mates, err := r.store.ListMates(ctx, anchorHashID)
	if err != nil {
		return err
	}
	if len(mates) == 0 {
		return nil
	}

	shuffled := append([]string(nil), mates...)
	r.shuffle(shuffled)

	verifyEnd := min(maxAutoVerified, len(shuffled))
	failEnd := min(verifyEnd+maxAutoFailed, len(shuffled))
	toVerify := shuffled[:verifyEnd]
	toFail := shuffled[verifyEnd:failEnd]

	now := r.now()
	for _, id := range toVerify {
		if err := r.resolveMate(ctx, id, model.OutcomeVerified, now); err != nil {
			return err
		}
	}
	for _, id := range toFail {
		if err := r.resolveMate(ctx, id, model.OutcomeFailed, now); err != nil {
			return err
		}
	}

	zap.L().Info("batch auto-resolution complete",
		zap.String("anchor", anchorHashID),
		zap.Int("mates", len(mates)),
		zap.Int("verified", len(toVerify)),
		zap.Int("failed", len(toFail)),
	)
	return nil
}

func (r *Resolver) resolveMate(ctx context.Context, hashID string, outcome model.PanelistOutcome, now time.Time) error {
	status := model.VerificationStatus{
		HashID:       hashID,
		VerifiedAt:   &now,
		AutoVerified: true,
	}
	if outcome == model.OutcomeVerified {
		status.Verified = true
		status.ProofStatus = model.ProofStatusVerified
		status.LinkedInName = AutoVerifiedName
		status.LinkedInEmail = AutoVerifiedEmail
	} else {
		status.ProofStatus = model.ProofStatusFailed
		status.FailReason = FailReasonMismatch
	}

	if err := r.store.UpsertVerificationStatus(ctx, status); err != nil {
		return err
	}

	attrs := model.AttributeRecord{HashID: hashID}
	if stored, err := r.store.GetAttributes(ctx, hashID); err != nil {
		return err
	} else if stored != nil {
		attrs = *stored
	}

	if err := r.store.UpsertVerifiedPanelist(ctx, ledgerEntry(hashID, outcome, attrs, now)); err != nil {
		return err
	}

	if outcome == model.OutcomeVerified {
		if err := r.store.SetRespondentVerified(ctx, hashID, true); err != nil {
			zap.L().Debug("respondent verified flag not updated",
				zap.String("hash_id", hashID),
				zap.Error(err),
			)
		}
	}
	return nil
}
