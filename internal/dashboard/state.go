// Package dashboard holds the client-side state for the verification
// dashboard: per-respondent email/verification lifecycle, page batching,
// and a configuration-fingerprinted cache that survives reloads.
package dashboard

// EmailStatus tracks the verification-email lifecycle for one item.
type EmailStatus string

const (
	EmailPending  EmailStatus = "Pending"
	EmailSent     EmailStatus = "Sent"
	EmailVerified EmailStatus = "Verified"
	EmailFailed   EmailStatus = "Failed"
)

// ProofStatus tracks the displayed proof lifecycle for one item.
type ProofStatus string

const (
	ProofPending   ProofStatus = "Pending"
	ProofGenerated ProofStatus = "Generated"
	ProofVerified  ProofStatus = "Verified"
	ProofFailed    ProofStatus = "Failed"
)

// ZKPResult is the displayed proof outcome.
type ZKPResult string

const (
	ZKPPass    ZKPResult = "Pass"
	ZKPFail    ZKPResult = "Fail"
	ZKPPending ZKPResult = "Pending"
)

// Item is the per-respondent dashboard projection. It is derived state,
// reconstructible from the respondent list plus the server-side
// verification statuses.
type Item struct {
	ID          string      `json:"id"`
	PanelistID  string      `json:"panelistId"`
	Email       string      `json:"email"`
	EmailStatus EmailStatus `json:"emailStatus"`
	ProofStatus ProofStatus `json:"proofStatus"`
	ZKPResult   ZKPResult   `json:"zkpResult"`
}

// Config fingerprints the dashboard's inputs. Cached progress is only valid
// while both sets are unchanged; order is irrelevant.
type Config struct {
	HashIDs         []string `json:"hashIds"`
	SelectedQueries []string `json:"selectedQueries"`
}

// Equal compares two configs by set membership in both directions.
func (c *Config) Equal(other *Config) bool {
	if c == nil || other == nil {
		return c == other
	}
	return sameSet(c.HashIDs, other.HashIDs) && sameSet(c.SelectedQueries, other.SelectedQueries)
}

func sameSet(a, b []string) bool {
	seen := make(map[string]struct{}, len(a))
	for _, v := range a {
		seen[v] = struct{}{}
	}
	if len(seen) != uniqueCount(b) {
		return false
	}
	for _, v := range b {
		if _, ok := seen[v]; !ok {
			return false
		}
	}
	return true
}

func uniqueCount(vals []string) int {
	seen := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		seen[v] = struct{}{}
	}
	return len(seen)
}

// State is the persisted dashboard snapshot.
type State struct {
	Items      []Item  `json:"items"`
	BatchIndex int     `json:"batchIndex"`
	LastConfig *Config `json:"lastConfig"`
}
