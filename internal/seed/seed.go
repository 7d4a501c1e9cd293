// Package seed carries the reference plan: strategic direction, thrusts,
// objectives, success stories, roadmap tiers, the initial initiatives and
// KPIs, and the per-thrust budget lines.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"plan-dashboard/internal/models"
	"plan-dashboard/internal/planning"
	"plan-dashboard/internal/store"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed dataset.yaml
var datasetYAML []byte

type initiativeRecord struct {
	ID      string `yaml:"id"`
	Thrust  int    `yaml:"thrust"`
	Name    string `yaml:"name"`
	Tier    string `yaml:"tier"`
	Period  string `yaml:"period"` // "2025-2026"
	Branch  string `yaml:"branch"`
	Outcome string `yaml:"outcome"`
}

type kpiRecord struct {
	Name         string                   `yaml:"name"`
	Target       string                   `yaml:"target"`
	Current      string                   `yaml:"current"`
	TargetValue  float64                  `yaml:"target_value"`
	CurrentValue float64                  `yaml:"current_value"`
	PlanStart    string                   `yaml:"plan_start"`
	PlanEnd      string                   `yaml:"plan_end"`
	ActualStart  string                   `yaml:"actual_start"`
	ActualEnd    string                   `yaml:"actual_end"`
	History      []models.KPIHistoryPoint `yaml:"history"`
}

type tierRecord struct {
	Tier       string   `yaml:"tier"`
	Color      string   `yaml:"color"`
	Milestones []string `yaml:"milestones"`
}

type financialRecord struct {
	Thrust   int   `yaml:"thrust"`
	Budget   int64 `yaml:"budget"`
	Spending int64 `yaml:"spending"`
}

// Dataset is the parsed reference plan.
type Dataset struct {
	Direction  models.Direction      `yaml:"direction"`
	Thrusts    []models.Thrust       `yaml:"thrusts"`
	Objectives []models.Objective    `yaml:"objectives"`
	Stories    []models.SuccessStory `yaml:"stories"`

	TierRecords       []tierRecord       `yaml:"tiers"`
	InitiativeRecords []initiativeRecord `yaml:"initiatives"`
	KPIRecords        []kpiRecord        `yaml:"kpis"`
	Financials        struct {
		Title    string            `yaml:"title"`
		Subtitle string            `yaml:"subtitle"`
		Thrusts  []financialRecord `yaml:"thrusts"`
	} `yaml:"financials"`
}

// Load parses the embedded dataset.
func Load() (*Dataset, error) {
	return Parse(datasetYAML)
}

func Parse(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	if len(ds.Thrusts) == 0 {
		return nil, errors.New("parse dataset: no thrusts")
	}
	return &ds, nil
}

// Thrust looks up a thrust by ID.
func (ds *Dataset) Thrust(id int) (models.Thrust, bool) {
	for _, t := range ds.Thrusts {
		if t.ID == id {
			return t, true
		}
	}
	return models.Thrust{}, false
}

// ObjectiveThrusts resolves the thrusts grouped under an objective.
func (ds *Dataset) ObjectiveThrusts(o models.Objective) []models.Thrust {
	out := make([]models.Thrust, 0, len(o.Thrusts))
	for _, id := range o.Thrusts {
		if t, ok := ds.Thrust(id); ok {
			out = append(out, t)
		}
	}
	return out
}

// Initiatives builds the initial initiatives with progress simulated against
// the reference date.
func (ds *Dataset) Initiatives(today time.Time) []models.Initiative {
	out := make([]models.Initiative, 0, len(ds.InitiativeRecords))
	for _, r := range ds.InitiativeRecords {
		start, end := periodDates(r.Period)
		in := models.Initiative{
			ID:                r.ID,
			ThrustID:          r.Thrust,
			Name:              r.Name,
			Tier:              r.Tier,
			PlanStart:         start,
			PlanEnd:           end,
			ResponsibleBranch: r.Branch,
			ExpectedOutcome:   r.Outcome,
		}
		simulateProgress(&in, today)
		out = append(out, in)
	}
	planning.SortInitiatives(out)
	return out
}

// periodDates turns "2025-2026" into 01/01/2025 and 31/12/2026.
func periodDates(period string) (string, string) {
	from, to, ok := strings.Cut(period, "-")
	if !ok {
		from, to = "2025", "2026"
	}
	return "01/01/" + strings.TrimSpace(from), "31/12/" + strings.TrimSpace(to)
}

// simulateProgress fills progress and actual dates from the plan window:
// finished windows are complete, future ones untouched, running ones get
// the elapsed share bounded to 5..95.
func simulateProgress(in *models.Initiative, today time.Time) {
	start, okS := planning.ParseDisplayDate(in.PlanStart)
	end, okE := planning.ParseDisplayDate(in.PlanEnd)
	if !okS || !okE {
		return
	}
	today = planning.DateOf(today)

	switch {
	case today.After(end):
		in.Progress = 100
		in.ActualStart = in.PlanStart
		in.ActualEnd = in.PlanEnd
	case today.Before(start):
		in.Progress = 0
	default:
		total := end.Sub(start)
		elapsed := today.Sub(start)
		p := int(math.Round(100 * float64(elapsed) / float64(total)))
		in.Progress = min(95, max(5, p))
		in.ActualStart = in.PlanStart
	}
}

func (ds *Dataset) KPIs() []models.KPI {
	out := make([]models.KPI, 0, len(ds.KPIRecords))
	for _, r := range ds.KPIRecords {
		out = append(out, models.KPI{
			Name:         r.Name,
			Target:       r.Target,
			Current:      r.Current,
			TargetValue:  r.TargetValue,
			CurrentValue: r.CurrentValue,
			PlanStart:    r.PlanStart,
			PlanEnd:      r.PlanEnd,
			ActualStart:  r.ActualStart,
			ActualEnd:    r.ActualEnd,
			History:      planning.SortHistory(r.History),
		})
	}
	return out
}

func (ds *Dataset) Tiers() []models.Tier {
	out := make([]models.Tier, 0, len(ds.TierRecords))
	for _, r := range ds.TierRecords {
		t := models.Tier{Name: r.Tier, Color: r.Color}
		for i, text := range r.Milestones {
			t.Milestones = append(t.Milestones, models.Milestone{Text: text, Position: i})
		}
		out = append(out, t)
	}
	return out
}

func (ds *Dataset) ThrustFinancials() []models.ThrustFinancial {
	out := make([]models.ThrustFinancial, 0, len(ds.Financials.Thrusts))
	for _, r := range ds.Financials.Thrusts {
		out = append(out, models.ThrustFinancial{ThrustID: r.Thrust, Budget: r.Budget, Spending: r.Spending})
	}
	return out
}

// Populate seeds an empty store. Each collection is seeded only when it has
// no records yet, so restarts against a database keep edits.
func Populate(ctx context.Context, st store.Store, ds *Dataset, today time.Time, log *zap.Logger) error {
	initiatives, err := st.ListInitiatives(ctx)
	if err != nil {
		return err
	}
	if len(initiatives) == 0 {
		for _, in := range ds.Initiatives(today) {
			if err := st.CreateInitiative(ctx, &in); err != nil {
				return fmt.Errorf("seed initiative %s: %w", in.ID, err)
			}
		}
		log.Info("seeded initiatives", zap.Int("count", len(ds.InitiativeRecords)))
	}

	kpis, err := st.ListKPIs(ctx)
	if err != nil {
		return err
	}
	if len(kpis) == 0 {
		for _, k := range ds.KPIs() {
			if err := st.CreateKPI(ctx, &k); err != nil {
				return fmt.Errorf("seed kpi %q: %w", k.Name, err)
			}
		}
		log.Info("seeded kpis", zap.Int("count", len(ds.KPIRecords)))
	}

	tiers, err := st.ListTiers(ctx)
	if err != nil {
		return err
	}
	if len(tiers) == 0 {
		for _, t := range ds.Tiers() {
			if err := st.CreateTier(ctx, &t); err != nil {
				return fmt.Errorf("seed tier %q: %w", t.Name, err)
			}
		}
		log.Info("seeded roadmap tiers", zap.Int("count", len(ds.TierRecords)))
	}

	fin, err := st.ListFinancials(ctx)
	if err != nil {
		return err
	}
	if len(fin) == 0 {
		for _, f := range ds.ThrustFinancials() {
			if err := st.SaveFinancial(ctx, f); err != nil {
				return err
			}
		}
		log.Info("seeded financials", zap.Int("count", len(ds.Financials.Thrusts)))
	}

	return populateContent(ctx, st, ds, log)
}

// populateContent seeds the editable page text once, keyed on the direction
// record, so deleting every story does not bring them back on restart.
func populateContent(ctx context.Context, st store.Store, ds *Dataset, log *zap.Logger) error {
	_, err := st.GetDirection(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	for _, o := range ds.Objectives {
		if err := st.SaveObjective(ctx, o); err != nil {
			return fmt.Errorf("seed objective %d: %w", o.ID, err)
		}
	}
	for _, story := range ds.Stories {
		if err := st.CreateStory(ctx, &story); err != nil {
			return fmt.Errorf("seed story %q: %w", story.Title, err)
		}
	}
	if err := st.SaveDirection(ctx, ds.Direction); err != nil {
		return fmt.Errorf("seed direction: %w", err)
	}
	log.Info("seeded page content", zap.Int("objectives", len(ds.Objectives)), zap.Int("stories", len(ds.Stories)))
	return nil
}
