package metrics

import (
	"context"
	"strings"
	"testing"
	"time"

	"plan-dashboard/internal/models"
	"plan-dashboard/internal/planning"
	"plan-dashboard/internal/store"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCollector(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	require.NoError(t, st.CreateInitiative(ctx, &models.Initiative{ID: "I-1.1", ThrustID: 1, Name: "Done", Progress: 100}))
	require.NoError(t, st.CreateInitiative(ctx, &models.Initiative{
		ID: "I-1.2", ThrustID: 1, Name: "Later", PlanStart: "01/01/2027", PlanEnd: "31/12/2027",
	}))
	require.NoError(t, st.CreateKPI(ctx, &models.KPI{Name: "I-1.1 Done"}))
	require.NoError(t, st.CreateKPI(ctx, &models.KPI{Name: "Manual", CurrentValue: 25, TargetValue: 100}))

	today := func() time.Time { return time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC) }
	c := NewCollector(st, planning.NewClassifier(planning.DefaultThresholds()), today, zap.NewNop())

	expected := `
# HELP plan_initiatives Initiatives by classified status.
# TYPE plan_initiatives gauge
plan_initiatives{status="at-risk"} 0
plan_initiatives{status="completed"} 1
plan_initiatives{status="not-started"} 1
plan_initiatives{status="on-track"} 0
plan_initiatives{status="overdue"} 0
# HELP plan_kpis KPIs by dashboard card status.
# TYPE plan_kpis gauge
plan_kpis{status="at-risk"} 1
plan_kpis{status="completed"} 1
plan_kpis{status="on-track"} 0
plan_kpis{status="overdue"} 0
# HELP plan_kpi_progress_avg Mean KPI completion percentage.
# TYPE plan_kpi_progress_avg gauge
plan_kpi_progress_avg 62.5
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected)))
}

func TestRegister(t *testing.T) {
	c := NewCollector(store.NewMemory(), planning.NewClassifier(planning.DefaultThresholds()), time.Now, zap.NewNop())
	reg := Register(c)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "plan_initiatives")
	assert.Contains(t, names, "go_goroutines")
}
