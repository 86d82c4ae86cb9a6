// Package model defines the core domain types shared across the platform.
package model

import (
	"strings"
	"time"
)

// TestAnchorPrefix marks demo accounts. A respondent whose hash ID carries
// this prefix is an anchor: completing verification for it auto-resolves the
// mates that were linked to it at email-send time.
const TestAnchorPrefix = "TEST-"

// Respondent is a panel member eligible for surveys. The hash ID is the
// stable opaque identifier used in place of PII throughout the verification
// flow; it never changes once assigned.
type Respondent struct {
	HashID           string     `json:"hashId"`
	FirstName        string     `json:"firstName"`
	LastName         string     `json:"lastName"`
	Email            string     `json:"email"`
	Company          string     `json:"company"`
	Location         string     `json:"location"`
	EmploymentStatus string     `json:"employmentStatus"`
	JobTitle         string     `json:"jobTitle"`
	JobFunction      string     `json:"jobFunction"`
	CompanySize      string     `json:"companySize"`
	Industry         string     `json:"industry"`
	Verified         bool       `json:"verified"`
	CreatedAt        time.Time  `json:"createdAt"`
	LastActiveAt     *time.Time `json:"lastActiveAt,omitempty"`
}

// IsAnchor reports whether the respondent is a demo anchor eligible for
// batch auto-verification.
func (r Respondent) IsAnchor() bool {
	return IsAnchorID(r.HashID)
}

// IsAnchorID reports whether a hash ID carries the demo anchor prefix.
func IsAnchorID(hashID string) bool {
	return strings.HasPrefix(hashID, TestAnchorPrefix)
}

// AttributeRecord is the snapshot of a respondent's self-reported
// professional attributes, captured at the moment a verification email is
// dispatched. Keyed uniquely by hash ID; a later send overwrites the
// earlier snapshot.
type AttributeRecord struct {
	HashID           string `json:"hashId"`
	JobTitle         string `json:"jobTitle,omitempty"`
	Industry         string `json:"industry,omitempty"`
	CompanySize      string `json:"companySize,omitempty"`
	JobFunction      string `json:"jobFunction,omitempty"`
	EmploymentStatus string `json:"employmentStatus,omitempty"`
}

// IsZero reports whether no attribute field is populated.
func (a AttributeRecord) IsZero() bool {
	return a.JobTitle == "" && a.Industry == "" && a.CompanySize == "" &&
		a.JobFunction == "" && a.EmploymentStatus == ""
}
