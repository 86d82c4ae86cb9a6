package model

import "time"

// StudyStatus is the lifecycle state of a study.
type StudyStatus string

const (
	StudyStatusDraft  StudyStatus = "draft"
	StudyStatusLive   StudyStatus = "live"
	StudyStatusClosed StudyStatus = "closed"
)

// Study is a research project owned by an insight company account. The
// selected queries name the verification attributes the company wants
// proofed for its respondents (e.g. "jobTitle", "industry").
type Study struct {
	ID              string      `json:"id"`
	AccountID       string      `json:"accountId"`
	Name            string      `json:"name"`
	Description     string      `json:"description,omitempty"`
	Status          StudyStatus `json:"status"`
	TargetResponses int         `json:"targetResponses,omitempty"`
	SelectedQueries []string    `json:"selectedQueries,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}
