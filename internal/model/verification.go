package model

import "time"

// ProofStatus is the lifecycle state of a respondent's identity verification.
type ProofStatus string

const (
	ProofStatusPending  ProofStatus = "Pending"
	ProofStatusVerified ProofStatus = "Verified"
	ProofStatusFailed   ProofStatus = "Failed"
)

// VerificationStatus is the authoritative record of whether a respondent has
// completed identity verification. Absence of a stored record is equivalent
// to the default returned by NewPendingStatus; pending records are never
// materialized eagerly.
type VerificationStatus struct {
	HashID        string      `json:"hashId"`
	Verified      bool        `json:"verified"`
	ProofStatus   ProofStatus `json:"proofStatus"`
	VerifiedAt    *time.Time  `json:"verifiedAt,omitempty"`
	LinkedInName  string      `json:"linkedinName,omitempty"`
	LinkedInEmail string      `json:"linkedinEmail,omitempty"`
	AutoVerified  bool        `json:"autoVerified,omitempty"`
	FailReason    string      `json:"failReason,omitempty"`
}

// NewPendingStatus returns the implicit default status for a hash ID with no
// stored record.
func NewPendingStatus(hashID string) VerificationStatus {
	return VerificationStatus{HashID: hashID, ProofStatus: ProofStatusPending}
}

// PanelistOutcome is the terminal outcome recorded in the permanent
// verification ledger.
type PanelistOutcome string

const (
	OutcomeVerified PanelistOutcome = "verified"
	OutcomeFailed   PanelistOutcome = "failed"
)

// VerifiedPanelist is a permanent ledger entry feeding attribute
// aggregation. One entry per hash ID; the stored outcome reflects the most
// recent verification result. Entries are never deleted in normal operation.
type VerifiedPanelist struct {
	HashID           string          `json:"hashId"`
	Status           PanelistOutcome `json:"status"`
	JobTitle         string          `json:"jobTitle,omitempty"`
	Industry         string          `json:"industry,omitempty"`
	CompanySize      string          `json:"companySize,omitempty"`
	JobFunction      string          `json:"jobFunction,omitempty"`
	EmploymentStatus string          `json:"employmentStatus,omitempty"`
	VerifiedAt       time.Time       `json:"verifiedAt"`
}

// BatchRelationship links a mate respondent to its demo anchor. Established
// at email-send time: every non-anchor recipient belongs to the nearest
// preceding anchor in send order.
type BatchRelationship struct {
	TestHashID string `json:"testHashId"`
	MateHashID string `json:"mateHashId"`
}
