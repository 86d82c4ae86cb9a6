// Package study manages research studies owned by insight-company accounts.
package study

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/proofpanel/proofpanel/internal/model"
	"github.com/proofpanel/proofpanel/internal/store"
)

// ErrNotFound is returned when a study does not exist or belongs to another
// account.
var ErrNotFound = eris.New("study: not found")

// verifiableQueries are the attributes the verification flow can proof.
var verifiableQueries = map[string]struct{}{
	"jobTitle":         {},
	"industry":         {},
	"companySize":      {},
	"jobFunction":      {},
	"employmentStatus": {},
}

// Service implements study CRUD with ownership checks.
type Service struct {
	store store.Store
	now   func() time.Time
}

// NewService creates a Service.
func NewService(st store.Store) *Service {
	return &Service{store: st, now: time.Now}
}

// CreateInput is the payload for creating or updating a study.
type CreateInput struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	TargetResponses int      `json:"targetResponses"`
	SelectedQueries []string `json:"selectedQueries"`
}

func (in CreateInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return eris.New("study: name is required")
	}
	if in.TargetResponses < 0 {
		return eris.New("study: target responses must not be negative")
	}
	for _, q := range in.SelectedQueries {
		if _, ok := verifiableQueries[q]; !ok {
			return eris.Errorf("study: unknown verification query %q", q)
		}
	}
	return nil
}

// Create stores a new draft study for the account.
func (s *Service) Create(ctx context.Context, accountID string, in CreateInput) (*model.Study, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	study := model.Study{
		ID:              uuid.New().String(),
		AccountID:       accountID,
		Name:            strings.TrimSpace(in.Name),
		Description:     strings.TrimSpace(in.Description),
		Status:          model.StudyStatusDraft,
		TargetResponses: in.TargetResponses,
		SelectedQueries: in.SelectedQueries,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.CreateStudy(ctx, study); err != nil {
		return nil, eris.Wrap(err, "study: create")
	}
	return &study, nil
}

// Get returns one study owned by the account.
func (s *Service) Get(ctx context.Context, accountID, id string) (*model.Study, error) {
	study, err := s.store.GetStudy(ctx, id)
	if err != nil {
		return nil, eris.Wrap(err, "study: get")
	}
	if study == nil || study.AccountID != accountID {
		return nil, ErrNotFound
	}
	return study, nil
}

// List returns the account's studies.
func (s *Service) List(ctx context.Context, accountID string) ([]model.Study, error) {
	studies, err := s.store.ListStudies(ctx, accountID)
	if err != nil {
		return nil, eris.Wrap(err, "study: list")
	}
	return studies, nil
}

// Update replaces the editable fields of a study the account owns.
func (s *Service) Update(ctx context.Context, accountID, id string, in CreateInput) (*model.Study, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	study, err := s.Get(ctx, accountID, id)
	if err != nil {
		return nil, err
	}
	study.Name = strings.TrimSpace(in.Name)
	study.Description = strings.TrimSpace(in.Description)
	study.TargetResponses = in.TargetResponses
	study.SelectedQueries = in.SelectedQueries
	study.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateStudy(ctx, *study); err != nil {
		return nil, eris.Wrap(err, "study: update")
	}
	return study, nil
}

// SetStatus moves a study through its lifecycle. Draft goes live, live
// closes; other transitions are rejected.
func (s *Service) SetStatus(ctx context.Context, accountID, id string, status model.StudyStatus) (*model.Study, error) {
	study, err := s.Get(ctx, accountID, id)
	if err != nil {
		return nil, err
	}
	switch {
	case study.Status == model.StudyStatusDraft && status == model.StudyStatusLive:
	case study.Status == model.StudyStatusLive && status == model.StudyStatusClosed:
	default:
		return nil, eris.Errorf("study: cannot move from %s to %s", study.Status, status)
	}
	study.Status = status
	study.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateStudy(ctx, *study); err != nil {
		return nil, eris.Wrap(err, "study: set status")
	}
	return study, nil
}

// Delete removes a study the account owns.
func (s *Service) Delete(ctx context.Context, accountID, id string) error {
	if _, err := s.Get(ctx, accountID, id); err != nil {
		return err
	}
	return eris.Wrap(s.store.DeleteStudy(ctx, id), "study: delete")
}
