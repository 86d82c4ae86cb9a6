// Package report builds category-level rollups over the verified panelist
// ledger.
package report

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/proofpanel/proofpanel/internal/model"
	"github.com/proofpanel/proofpanel/internal/store"
)

// Aggregation is the per-attribute frequency report over verified
// panelists, plus the count of failed verifications (no breakdown).
type Aggregation struct {
	JobTitle         map[string]int `json:"jobTitle"`
	Industry         map[string]int `json:"industry"`
	CompanySize      map[string]int `json:"companySize"`
	JobFunction      map[string]int `json:"jobFunction"`
	EmploymentStatus map[string]int `json:"employmentStatus"`
	TotalVerified    int            `json:"totalVerified"`
	TotalFailed      int            `json:"totalFailed"`
}

// Reporter reads the permanent ledger and tallies attribute frequencies.
type Reporter struct {
	store store.Store
}

// NewReporter creates a Reporter over the given store.
func NewReporter(st store.Store) *Reporter {
	return &Reporter{store: st}
}

// AggregatedVerifiedAttributes tallies each categorical attribute across all
// verified ledger entries. Empty values are skipped per field independently:
// a record missing industry still counts toward job title.
func (r *Reporter) AggregatedVerifiedAttributes(ctx context.Context) (*Aggregation, error) {
	verified, err := r.store.ListVerifiedPanelists(ctx, model.OutcomeVerified)
	if err != nil {
		return nil, eris.Wrap(err, "report: list verified panelists")
	}
	failedCount, err := r.store.CountVerifiedPanelists(ctx, model.OutcomeFailed)
	if err != nil {
		return nil, eris.Wrap(err, "report: count failed panelists")
	}

	agg := &Aggregation{
		JobTitle:         map[string]int{},
		Industry:         map[string]int{},
		CompanySize:      map[string]int{},
		JobFunction:      map[string]int{},
		EmploymentStatus: map[string]int{},
		TotalVerified:    len(verified),
		TotalFailed:      failedCount,
	}

	for _, p := range verified {
		tally(agg.JobTitle, p.JobTitle)
		tally(agg.Industry, p.Industry)
		tally(agg.CompanySize, p.CompanySize)
		tally(agg.JobFunction, p.JobFunction)
		tally(agg.EmploymentStatus, p.EmploymentStatus)
	}
	return agg, nil
}

func tally(m map[string]int, value string) {
	if value == "" {
		return
	}
	m[value]++
}
