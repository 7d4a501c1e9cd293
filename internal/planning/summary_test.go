package planning

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"plan-dashboard/internal/models"
)

func sampleKPIs() []DerivedKPI {
	return []DerivedKPI{
		{Name: "I-3.1: Pan Borneo Highway Completion", ThrustID: 3, Percentage: 100, DueDate: "31/12/2026"},
		{Name: "I-9.4: SHO Posts Creation", ThrustID: 9, Percentage: 40, DueDate: "31/12/2028"},
		{Name: "Public Satisfaction Index (PSI)", Percentage: 96.5, DueDate: "31/12/2030"},
		{Name: "Cost Data Bank Accuracy", Percentage: 92.9, DueDate: "30/06/2026"},
		{Name: "Undated", Percentage: 10},
		{Name: "Due next week", ThrustID: 3, Percentage: 60, DueDate: "05/07/2026"},
		{Name: "Due today", Percentage: 60, DueDate: "01/07/2026"},
	}
}

func TestKPIStatusOf(t *testing.T) {
	today := day(2026, 7, 1)
	k := sampleKPIs()

	assert.Equal(t, KPICompleted, KPIStatusOf(k[0], today))
	assert.Equal(t, KPIAtRisk, KPIStatusOf(k[1], today))
	assert.Equal(t, KPIOnTrack, KPIStatusOf(k[2], today))
	assert.Equal(t, KPIOverdue, KPIStatusOf(k[3], today))
	assert.Equal(t, KPIOnTrack, KPIStatusOf(k[6], today), "due today is not yet overdue")

	done := DerivedKPI{Percentage: 100, DueDate: "01/01/2020"}
	assert.Equal(t, KPICompleted, KPIStatusOf(done, today))
	assert.Equal(t, "On Track", KPIOnTrack.Label())
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleKPIs(), day(2026, 7, 1))
	assert.Equal(t, 7, s.Total)
	assert.Equal(t, 1, s.Completed)
	assert.Equal(t, 1, s.Overdue)
	assert.Equal(t, 3, s.OnTrack)
	assert.Equal(t, 2, s.AtRisk)
	assert.InDelta(t, (100+40+96.5+92.9+10+60+60)/7.0, s.AvgProgress, 1e-9)

	assert.Equal(t, Summary{}, Summarize(nil, day(2026, 7, 1)))
}

func TestFilterKPIs(t *testing.T) {
	today := day(2026, 7, 1)
	names := func(list []DerivedKPI) []string {
		out := []string{}
		for _, k := range list {
			out = append(out, k.Name)
		}
		return out
	}

	all := sampleKPIs()
	assert.Len(t, FilterKPIs(all, KPIFilter{}, today), len(all))

	assert.Equal(t, []string{"I-3.1: Pan Borneo Highway Completion", "Due next week"},
		names(FilterKPIs(all, KPIFilter{ThrustID: 3}, today)))

	assert.Equal(t, []string{"Cost Data Bank Accuracy"},
		names(FilterKPIs(all, KPIFilter{Status: KPIOverdue}, today)))

	assert.Equal(t, []string{"Cost Data Bank Accuracy", "Undated"},
		names(FilterKPIs(all, KPIFilter{Due: DuePast}, today)))

	assert.Equal(t, []string{"Undated", "Due next week", "Due today"},
		names(FilterKPIs(all, KPIFilter{Due: DueWeek}, today)))

	assert.Equal(t, []string{"Undated", "Due today"},
		names(FilterKPIs(all, KPIFilter{Due: DueToday}, today)))

	assert.Equal(t, []string{"I-9.4: SHO Posts Creation"},
		names(FilterKPIs(all, KPIFilter{Search: "  sho "}, today)))
}

func TestFilterInitiatives(t *testing.T) {
	c := NewClassifier(DefaultThresholds())
	views := c.ClassifyAll([]models.Initiative{
		{ID: "I-1.1", ThrustID: 1, Tier: "Tier 2", PlanStart: "01/01/2026", PlanEnd: "31/12/2028", ResponsibleBranch: "Research & Investigation Branch"},
		{ID: "I-1.2", ThrustID: 1, Tier: "Tier 1", PlanStart: "01/01/2025", PlanEnd: "31/12/2026", Progress: 100, ResponsibleBranch: "Training & Competency Branch"},
		{ID: "I-3.1", ThrustID: 3, Tier: "Tier 1", PlanStart: "01/01/2025", PlanEnd: "31/12/2026", Progress: 95, ResponsibleBranch: "Road Branch"},
		{ID: "I-12.3", ThrustID: 12, Tier: "Tier 3", PlanStart: "01/01/2028", PlanEnd: "31/12/2030"},
		{ID: "I-12.4", ThrustID: 12, Tier: "Tier 3"},
	}, day(2026, 7, 1))

	ids := func(list []InitiativeView) []string {
		out := []string{}
		for _, v := range list {
			out = append(out, v.ID)
		}
		return out
	}

	assert.False(t, InitiativeFilter{}.Active())
	assert.Len(t, FilterInitiatives(views, InitiativeFilter{}), 5)
	assert.Equal(t, []string{"I-1.1", "I-1.2", "I-12.3", "I-12.4"}, ids(FilterInitiatives(views, InitiativeFilter{Thrusts: []int{1, 12}})))
	assert.Equal(t, []string{"I-3.1"}, ids(FilterInitiatives(views, InitiativeFilter{Branches: []string{"Road Branch"}})))
	assert.Equal(t, []string{"I-12.3", "I-12.4"}, ids(FilterInitiatives(views, InitiativeFilter{Tier: "Tier 3"})))
	assert.Equal(t, []string{"I-1.2"}, ids(FilterInitiatives(views, InitiativeFilter{Status: StatusCompleted})))
	assert.Equal(t, []string{"I-12.3"}, ids(FilterInitiatives(views, InitiativeFilter{Status: StatusNotStarted})))
	assert.Equal(t, []string{"I-1.1", "I-12.3"}, ids(FilterInitiatives(views, InitiativeFilter{Year: 2028})))
	assert.Equal(t, []string{"I-1.1", "I-12.3"}, ids(FilterInitiatives(views, InitiativeFilter{From: "2027-01-01"})))
	assert.Equal(t, []string{"I-1.2", "I-3.1"}, ids(FilterInitiatives(views, InitiativeFilter{To: "2025-12-31"})))

	assert.Equal(t, []string{"Research & Investigation Branch", "Training & Competency Branch", "Road Branch"}, Branches(views))
}

func TestTotalFinancials(t *testing.T) {
	totals := TotalFinancials([]models.ThrustFinancial{
		{ThrustID: 1, Budget: 200000000, Spending: 65000000},
		{ThrustID: 3, Budget: 450000000, Spending: 180000000},
	})
	assert.Equal(t, int64(650000000), totals.Budget)
	assert.Equal(t, int64(245000000), totals.Spending)
	assert.InDelta(t, 245.0/650.0, totals.Utilisation, 1e-12)

	assert.Zero(t, TotalFinancials(nil).Utilisation)
}
