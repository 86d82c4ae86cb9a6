package report

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proofpanel/proofpanel/internal/model"
	"github.com/proofpanel/proofpanel/internal/store"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestAggregatedVerifiedAttributes(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	entries := []model.VerifiedPanelist{
		{HashID: "r1", Status: model.OutcomeVerified, JobTitle: "Engineer", Industry: "Technology", VerifiedAt: now},
		{HashID: "r2", Status: model.OutcomeVerified, JobTitle: "Engineer", Industry: "Finance", VerifiedAt: now},
		{HashID: "r3", Status: model.OutcomeVerified, JobTitle: "Designer", VerifiedAt: now},
		{HashID: "r4", Status: model.OutcomeFailed, JobTitle: "Engineer", VerifiedAt: now},
	}
	for _, e := range entries {
		require.NoError(t, st.UpsertVerifiedPanelist(ctx, e))
	}

	agg, err := NewReporter(st).AggregatedVerifiedAttributes(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, agg.TotalVerified)
	assert.Equal(t, 1, agg.TotalFailed)
	assert.Equal(t, map[string]int{"Engineer": 2, "Designer": 1}, agg.JobTitle)
	// r3 has no industry; it is skipped for that field only.
	assert.Equal(t, map[string]int{"Technology": 1, "Finance": 1}, agg.Industry)
	// Failed entries never contribute to attribute tallies.
	assert.NotContains(t, agg.JobTitle, "r4")
	assert.Empty(t, agg.CompanySize)
}

func TestAggregatedVerifiedAttributes_EmptyLedger(t *testing.T) {
	st := newTestStore(t)

	agg, err := NewReporter(st).AggregatedVerifiedAttributes(context.Background())
	require.NoError(t, err)
	assert.Zero(t, agg.TotalVerified)
	assert.Zero(t, agg.TotalFailed)
	assert.Empty(t, agg.JobTitle)
}
