package seed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"plan-dashboard/internal/planning"
	"plan-dashboard/internal/store"
)

var demoToday = time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

func TestLoadDataset(t *testing.T) {
	ds, err := Load()
	require.NoError(t, err)

	assert.Len(t, ds.Thrusts, 12)
	assert.Len(t, ds.Objectives, 4)
	assert.Equal(t, []int{4, 5, 6}, ds.Objectives[1].Thrusts)
	assert.Len(t, ds.ObjectiveThrusts(ds.Objectives[0]), 3)
	assert.Len(t, ds.TierRecords, 3)
	assert.Len(t, ds.InitiativeRecords, 147)
	assert.Len(t, ds.KPIRecords, 6)
	assert.Len(t, ds.Financials.Thrusts, 12)
	assert.NotEmpty(t, ds.Direction.Vision)
	require.Len(t, ds.Stories, 3)
	assert.Equal(t, "Watch Episode 2", ds.Stories[1].ButtonText)

	thrust, ok := ds.Thrust(3)
	require.True(t, ok)
	assert.Equal(t, "Spatial Planning and Regional Connectivity", thrust.Title)
}

func TestParseRejectsEmpty(t *testing.T) {
	_, err := Parse([]byte("direction: {vision: x}\n"))
	assert.Error(t, err)
	_, err = Parse([]byte("thrusts: [\n"))
	assert.Error(t, err)
}

func TestInitiativesSimulatedProgress(t *testing.T) {
	ds, err := Load()
	require.NoError(t, err)

	list := ds.Initiatives(demoToday)
	byID := planning.IndexInitiatives(list)

	// 2025-2026 window is running on the demo date
	pan := byID["I-3.1"]
	assert.Equal(t, "01/01/2025", pan.PlanStart)
	assert.Equal(t, "31/12/2026", pan.PlanEnd)
	assert.Equal(t, 75, pan.Progress)
	assert.Equal(t, pan.PlanStart, pan.ActualStart)
	assert.Empty(t, pan.ActualEnd)

	// 2028-2030 has not started
	future := byID["I-12.3"]
	assert.Zero(t, future.Progress)
	assert.Empty(t, future.ActualStart)

	// every window has finished by 2031
	for _, in := range ds.Initiatives(time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC)) {
		assert.Equal(t, 100, in.Progress, in.ID)
		assert.Equal(t, in.PlanEnd, in.ActualEnd, in.ID)
	}

	assert.Equal(t, "I-1.1", list[0].ID)
	assert.Equal(t, "I-1.2", list[1].ID)
}

func TestKPIsAndTiers(t *testing.T) {
	ds, err := Load()
	require.NoError(t, err)

	kpis := ds.KPIs()
	require.Len(t, kpis, 6)
	assert.Equal(t, "Public Satisfaction Index (PSI)", kpis[2].Name)
	assert.Len(t, kpis[2].History, 4)
	assert.NotNil(t, planning.ComputeTrend(kpis[2].History))

	tiers := ds.Tiers()
	require.Len(t, tiers, 3)
	assert.Equal(t, "Tier 1 (2025-2026): Foundation", tiers[0].Name)
	assert.NotEmpty(t, tiers[2].Milestones)
}

func TestPopulateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	ds, err := Load()
	require.NoError(t, err)
	st := store.NewMemory()

	require.NoError(t, Populate(ctx, st, ds, demoToday, zap.NewNop()))

	in, err := st.GetInitiative(ctx, "I-3.1")
	require.NoError(t, err)
	in.Progress = 99
	require.NoError(t, st.SaveInitiative(ctx, &in))

	require.NoError(t, Populate(ctx, st, ds, demoToday, zap.NewNop()))

	list, err := st.ListInitiatives(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 147)
	got, err := st.GetInitiative(ctx, "I-3.1")
	require.NoError(t, err)
	assert.Equal(t, 99, got.Progress)

	kpis, err := st.ListKPIs(ctx)
	require.NoError(t, err)
	assert.Len(t, kpis, 6)

	fin, err := st.ListFinancials(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2400000000), planning.TotalFinancials(fin).Budget)

	tiers, err := st.ListTiers(ctx)
	require.NoError(t, err)
	assert.Len(t, tiers, 3)

	var linked int
	for _, d := range planning.DeriveAll(kpis, list) {
		if d.IsLinked {
			linked++
		}
	}
	assert.Equal(t, 5, linked)
}

func TestPopulateContentOnce(t *testing.T) {
	ctx := context.Background()
	ds, err := Load()
	require.NoError(t, err)
	st := store.NewMemory()

	require.NoError(t, Populate(ctx, st, ds, demoToday, zap.NewNop()))

	dir, err := st.GetDirection(ctx)
	require.NoError(t, err)
	assert.Equal(t, ds.Direction.Vision, dir.Vision)

	objectives, err := st.ListObjectives(ctx)
	require.NoError(t, err)
	require.Len(t, objectives, 4)
	assert.Equal(t, []int{4, 5, 6}, objectives[1].Thrusts)

	stories, err := st.ListStories(ctx)
	require.NoError(t, err)
	require.Len(t, stories, 3)
	for _, s := range stories {
		require.NoError(t, st.DeleteStory(ctx, s.ID))
	}

	require.NoError(t, Populate(ctx, st, ds, demoToday, zap.NewNop()))
	stories, err = st.ListStories(ctx)
	require.NoError(t, err)
	assert.Empty(t, stories, "deleted stories stay deleted")
}
