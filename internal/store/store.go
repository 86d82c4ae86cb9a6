// Package store provides keyed persistence for respondents, studies,
// accounts and the verification stores. All writes are idempotent upserts;
// repeated application of the same value is a no-op in effect.
package store

import (
	"context"

	"github.com/proofpanel/proofpanel/internal/model"
)

// RespondentFilter narrows ListRespondents. Empty fields are ignored.
type RespondentFilter struct {
	JobTitle         string `json:"jobTitle,omitempty"`
	Industry         string `json:"industry,omitempty"`
	CompanySize      string `json:"companySize,omitempty"`
	JobFunction      string `json:"jobFunction,omitempty"`
	EmploymentStatus string `json:"employmentStatus,omitempty"`
	Verified         *bool  `json:"verified,omitempty"`
	Limit            int    `json:"limit,omitempty"`
	Offset           int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for the verification platform.
//
// Verification status reads return nil for absent records; callers translate
// absence into the implicit Pending default. ClearVerificationData with nil
// ids wipes every status, attribute snapshot and batch relationship; the
// verified-panelist ledger is permanent and is never cleared.
type Store interface {
	// Respondents
	UpsertRespondents(ctx context.Context, respondents []model.Respondent) (int, error)
	GetRespondent(ctx context.Context, hashID string) (*model.Respondent, error)
	ListRespondents(ctx context.Context, filter RespondentFilter) ([]model.Respondent, error)
	SetRespondentVerified(ctx context.Context, hashID string, verified bool) error

	// Accounts
	CreateAccount(ctx context.Context, account model.Account) error
	GetAccountByEmail(ctx context.Context, email string) (*model.Account, error)

	// Studies
	CreateStudy(ctx context.Context, study model.Study) error
	GetStudy(ctx context.Context, id string) (*model.Study, error)
	ListStudies(ctx context.Context, accountID string) ([]model.Study, error)
	UpdateStudy(ctx context.Context, study model.Study) error
	DeleteStudy(ctx context.Context, id string) error

	// Attribute snapshots
	UpsertAttributes(ctx context.Context, rec model.AttributeRecord) error
	GetAttributes(ctx context.Context, hashID string) (*model.AttributeRecord, error)

	// Verification statuses
	UpsertVerificationStatus(ctx context.Context, status model.VerificationStatus) error
	GetVerificationStatus(ctx context.Context, hashID string) (*model.VerificationStatus, error)
	GetVerificationStatuses(ctx context.Context, hashIDs []string) (map[string]model.VerificationStatus, error)
	ClearVerificationData(ctx context.Context, hashIDs []string) error

	// Batch relationships
	UpsertBatchRelationship(ctx context.Context, anchorHashID, mateHashID string) error
	ListMates(ctx context.Context, anchorHashID string) ([]string, error)

	// Verified panelist ledger
	UpsertVerifiedPanelist(ctx context.Context, p model.VerifiedPanelist) error
	ListVerifiedPanelists(ctx context.Context, outcome model.PanelistOutcome) ([]model.VerifiedPanelist, error)
	CountVerifiedPanelists(ctx context.Context, outcome model.PanelistOutcome) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
