// Package mailer dispatches verification emails and captures the send-time
// side effects the verification flow depends on: attribute snapshots and
// anchor/mate batch relationships.
package mailer

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/proofpanel/proofpanel/internal/model"
	"github.com/proofpanel/proofpanel/internal/store"
	"github.com/proofpanel/proofpanel/pkg/linkedin"
)

// Recipient is one target of a bulk verification send.
type Recipient struct {
	HashID     string                `json:"hashId"`
	Email      string                `json:"email"`
	FirstName  string                `json:"firstName,omitempty"`
	Attributes model.AttributeRecord `json:"attributes"`
}

// RecipientFromRespondent builds a Recipient carrying the respondent's
// current self-reported attributes.
func RecipientFromRespondent(r model.Respondent) Recipient {
	return Recipient{
		HashID:    r.HashID,
		Email:     r.Email,
		FirstName: r.FirstName,
		Attributes: model.AttributeRecord{
			HashID:           r.HashID,
			JobTitle:         r.JobTitle,
			Industry:         r.Industry,
			CompanySize:      r.CompanySize,
			JobFunction:      r.JobFunction,
			EmploymentStatus: r.EmploymentStatus,
		},
	}
}

// FailedRecipient records a per-recipient delivery failure.
type FailedRecipient struct {
	HashID string `json:"hashId"`
	Email  string `json:"email"`
	Reason string `json:"reason"`
}

// Manifest is the per-recipient outcome of a bulk send. Partial failure is
// not a request-level error; callers react per item.
type Manifest struct {
	Sent   []string          `json:"sent"`
	Failed []FailedRecipient `json:"failed"`
}

// Credentials override the configured relay login for one send.
type Credentials struct {
	Email    string `json:"smtpEmail"`
	Password string `json:"smtpPassword"`
}

// Options tunes the bulk send.
type Options struct {
	FrontendBaseURL string  `yaml:"frontend_base_url" mapstructure:"frontend_base_url"`
	RatePerSecond   float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	MaxConcurrent   int     `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	MaxRetries      int     `yaml:"max_retries" mapstructure:"max_retries"`
}

// Mailer performs the bulk verification send.
type Mailer struct {
	store   store.Store
	sender  Sender
	opts    Options
	limiter *rate.Limiter
}

// New creates a Mailer.
func New(st store.Store, sender Sender, opts Options) *Mailer {
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = 5
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 4
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	return &Mailer{
		store:   st,
		sender:  sender,
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSecond), max(int(opts.RatePerSecond), 1)),
	}
}

// SendVerificationEmails records each recipient's attribute snapshot and
// batch relationship, then dispatches the emails. Real delivery happens
// only for TEST- demo anchors; everyone else is simulated as sent, so a
// demo never spams real panelists.
//
// Relationship capture runs first, in the order given: each non-anchor
// recipient is linked to the nearest preceding anchor in the list. Store
// failures fail the whole request; delivery failures only mark their
// recipient in the manifest.
func (m *Mailer) SendVerificationEmails(ctx context.Context, recipients []Recipient) (*Manifest, error) {
	return m.send(ctx, m.sender, recipients)
}

// SendWithCredentials runs the bulk send through a sender bound to the given
// relay credentials. Senders that cannot rebind use their configured login.
func (m *Mailer) SendWithCredentials(ctx context.Context, creds Credentials, recipients []Recipient) (*Manifest, error) {
	sender := m.sender
	if cs, ok := m.sender.(CredentialedSender); ok {
		sender = cs.WithCredentials(creds.Email, creds.Password)
	}
	return m.send(ctx, sender, recipients)
}

func (m *Mailer) send(ctx context.Context, sender Sender, recipients []Recipient) (*Manifest, error) {
	if len(recipients) == 0 {
		return nil, eris.New("mailer: no recipients")
	}

	var anchor string
	for _, r := range recipients {
		attrs := r.Attributes
		attrs.HashID = r.HashID
		if err := m.store.UpsertAttributes(ctx, attrs); err != nil {
			return nil, eris.Wrapf(err, "mailer: snapshot attributes %s", r.HashID)
		}
		if model.IsAnchorID(r.HashID) {
			anchor = r.HashID
			continue
		}
		if anchor != "" {
			if err := m.store.UpsertBatchRelationship(ctx, anchor, r.HashID); err != nil {
				return nil, eris.Wrapf(err, "mailer: link mate %s", r.HashID)
			}
		}
	}

	var mu sync.Mutex
	// Slices start non-nil so an all-failed or all-sent manifest still
	// serializes as arrays.
	manifest := Manifest{Sent: []string{}, Failed: []FailedRecipient{}}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.MaxConcurrent)

	for _, r := range recipients {
		g.Go(func() error {
			err := m.dispatch(gctx, sender, r)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				manifest.Failed = append(manifest.Failed, FailedRecipient{
					HashID: r.HashID,
					Email:  r.Email,
					Reason: err.Error(),
				})
			} else {
				manifest.Sent = append(manifest.Sent, r.HashID)
			}
			// Per-recipient failures stay in the manifest.
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "mailer: bulk send")
	}

	zap.L().Info("verification emails dispatched",
		zap.Int("sent", len(manifest.Sent)),
		zap.Int("failed", len(manifest.Failed)),
	)
	return &manifest, nil
}

func (m *Mailer) dispatch(ctx context.Context, sender Sender, r Recipient) error {
	if !model.IsAnchorID(r.HashID) {
		// Simulated delivery for non-demo panelists.
		zap.L().Debug("simulated verification email", zap.String("hash_id", r.HashID))
		return nil
	}

	link, err := m.verificationLink(r.HashID)
	if err != nil {
		return err
	}
	body := verificationBody(r.FirstName, link)

	var lastErr error
	for attempt := 0; attempt < m.opts.MaxRetries; attempt++ {
		if err := m.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "mailer: rate limit")
		}
		lastErr = sender.Send(ctx, r.Email, "Verify your professional profile", body)
		if lastErr == nil {
			return nil
		}
		if !isTransient(lastErr) {
			break
		}
		zap.L().Warn("email send failed, retrying",
			zap.String("hash_id", r.HashID),
			zap.Int("attempt", attempt+1),
			zap.Error(lastErr),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoffDelay(attempt)):
		}
	}
	return eris.Wrapf(lastErr, "mailer: send to %s", r.Email)
}

func (m *Mailer) verificationLink(hashID string) (string, error) {
	state, err := linkedin.EncodeState(hashID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/verify?hashId=%s&state=%s",
		m.opts.FrontendBaseURL, url.QueryEscape(hashID), url.QueryEscape(state)), nil
}

func verificationBody(firstName, link string) string {
	greeting := "Hello"
	if firstName != "" {
		greeting = "Hello " + firstName
	}
	return fmt.Sprintf(`<p>%s,</p>
<p>A research study you participate in asks you to verify your professional
profile. Click the link below and sign in with LinkedIn to complete
verification. The process takes under a minute.</p>
<p><a href="%s">Verify my profile</a></p>
<p>If you did not expect this email you can ignore it.</p>`, greeting, link)
}
