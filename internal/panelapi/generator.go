package panelapi

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/proofpanel/proofpanel/internal/model"
)

// Generator produces deterministic mock respondents. The same seed always
// yields the same panel, so demo dashboards keep their cached state across
// restarts.
type Generator struct {
	vocab Vocabulary
	seed  uint64
	now   func() time.Time
}

// NewGenerator creates a Generator over the given vocabulary.
func NewGenerator(vocab Vocabulary, seed uint64) *Generator {
	return &Generator{vocab: vocab, seed: seed, now: time.Now}
}

// Generate returns count respondents. Every anchorEvery-th respondent
// (1-based) is a demo anchor carrying the TEST- prefix; pass 0 to disable
// anchors.
func (g *Generator) Generate(count, anchorEvery int) []model.Respondent {
	rng := rand.New(rand.NewPCG(g.seed, g.seed>>1))
	created := g.now().UTC().Truncate(time.Second)

	respondents := make([]model.Respondent, 0, count)
	for i := 1; i <= count; i++ {
		first := pick(rng, g.vocab.FirstNames)
		last := pick(rng, g.vocab.LastNames)

		hashID := fmt.Sprintf("%08x%08x", rng.Uint32(), rng.Uint32())
		if anchorEvery > 0 && i%anchorEvery == 0 {
			hashID = model.TestAnchorPrefix + hashID
		}

		respondents = append(respondents, model.Respondent{
			HashID:           hashID,
			FirstName:        first,
			LastName:         last,
			Email:            mockEmail(first, last, i),
			Company:          pick(rng, g.vocab.Companies),
			Location:         pick(rng, g.vocab.Locations),
			EmploymentStatus: pick(rng, g.vocab.EmploymentStatuses),
			JobTitle:         pick(rng, g.vocab.JobTitles),
			JobFunction:      pick(rng, g.vocab.JobFunctions),
			CompanySize:      pick(rng, g.vocab.CompanySizes),
			Industry:         pick(rng, g.vocab.Industries),
			CreatedAt:        created,
		})
	}
	return respondents
}

func pick(rng *rand.Rand, vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	return vals[rng.IntN(len(vals))]
}

func mockEmail(first, last string, n int) string {
	return fmt.Sprintf("%s.%s%d@example.com",
		strings.ToLower(first), strings.ToLower(last), n)
}
