// Package panelapi pulls respondents from the upstream panel provider. It
// ships a deterministic mock generator for demo and test environments and an
// HTTP client for live panels.
package panelapi

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Vocabulary holds the attribute values the generator draws from. Live
// deployments load their own vocabulary file so demo panels resemble the
// real population under study.
type Vocabulary struct {
	FirstNames         []string `yaml:"first_names"`
	LastNames          []string `yaml:"last_names"`
	Companies          []string `yaml:"companies"`
	Locations          []string `yaml:"locations"`
	JobTitles          []string `yaml:"job_titles"`
	JobFunctions       []string `yaml:"job_functions"`
	Industries         []string `yaml:"industries"`
	CompanySizes       []string `yaml:"company_sizes"`
	EmploymentStatuses []string `yaml:"employment_statuses"`
}

// DefaultVocabulary returns the built-in attribute vocabulary.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		FirstNames: []string{
			"Alex", "Jordan", "Morgan", "Taylor", "Casey", "Riley",
			"Sam", "Jamie", "Avery", "Quinn", "Dana", "Robin",
		},
		LastNames: []string{
			"Smith", "Johnson", "Lee", "Patel", "Garcia", "Chen",
			"Brown", "Davis", "Martinez", "Kim", "Nguyen", "Walker",
		},
		Companies: []string{
			"Acme Analytics", "Northwind Labs", "Globex", "Initech",
			"Umbra Systems", "Vertex Partners", "Blue Harbor Group",
			"Cascade Software", "Pinnacle Health", "Orchard Finance",
		},
		Locations: []string{
			"New York, NY", "San Francisco, CA", "Austin, TX",
			"Chicago, IL", "Seattle, WA", "Boston, MA",
			"Denver, CO", "Atlanta, GA", "Remote",
		},
		JobTitles: []string{
			"Software Engineer", "Product Manager", "Data Analyst",
			"Marketing Manager", "Sales Director", "UX Designer",
			"Operations Manager", "Financial Analyst", "HR Specialist",
			"Customer Success Manager",
		},
		JobFunctions: []string{
			"Engineering", "Product", "Marketing", "Sales",
			"Operations", "Finance", "Human Resources", "Design",
		},
		Industries: []string{
			"Technology", "Healthcare", "Finance", "Retail",
			"Manufacturing", "Education", "Media", "Consulting",
		},
		CompanySizes: []string{
			"1-10", "11-50", "51-200", "201-500", "501-1000", "1000+",
		},
		EmploymentStatuses: []string{
			"Full-time", "Part-time", "Self-employed", "Contract",
		},
	}
}

// LoadVocabulary reads a vocabulary file. Fields left empty in the file keep
// the built-in values.
func LoadVocabulary(path string) (Vocabulary, error) {
	vocab := DefaultVocabulary()
	raw, err := os.ReadFile(path)
	if err != nil {
		return vocab, eris.Wrapf(err, "panelapi: read vocabulary %s", path)
	}
	var loaded Vocabulary
	if err := yaml.Unmarshal(raw, &loaded); err != nil {
		return vocab, eris.Wrapf(err, "panelapi: parse vocabulary %s", path)
	}
	vocab.merge(loaded)
	return vocab, nil
}

func (v *Vocabulary) merge(other Vocabulary) {
	if len(other.FirstNames) > 0 {
		v.FirstNames = other.FirstNames
	}
	if len(other.LastNames) > 0 {
		v.LastNames = other.LastNames
	}
	if len(other.Companies) > 0 {
		v.Companies = other.Companies
	}
	if len(other.Locations) > 0 {
		v.Locations = other.Locations
	}
	if len(other.JobTitles) > 0 {
		v.JobTitles = other.JobTitles
	}
	if len(other.JobFunctions) > 0 {
		v.JobFunctions = other.JobFunctions
	}
	if len(other.Industries) > 0 {
		v.Industries = other.Industries
	}
	if len(other.CompanySizes) > 0 {
		v.CompanySizes = other.CompanySizes
	}
	if len(other.EmploymentStatuses) > 0 {
		v.EmploymentStatuses = other.EmploymentStatuses
	}
}
