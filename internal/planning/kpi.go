package planning

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"plan-dashboard/internal/models"
)

var linkPattern = regexp.MustCompile(`^(I-\d+\.\d+)`)

// ExtractInitiativeID returns the leading I-<n>.<n> token of a KPI name.
func ExtractInitiativeID(name string) (string, bool) {
	m := linkPattern.FindStringSubmatch(name)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// LinkTarget is the initiative a KPI points at: the explicit reference when
// set, otherwise the ID prefix of its name.
func LinkTarget(k models.KPI) string {
	if k.LinkedInitiativeID != nil && *k.LinkedInitiativeID != "" {
		return *k.LinkedInitiativeID
	}
	id, _ := ExtractInitiativeID(k.Name)
	return id
}

// DerivedKPI is the presentation form of a KPI after link resolution.
type DerivedKPI struct {
	ID           uint
	Name         string
	IsLinked     bool
	InitiativeID string // set only when linked

	Current      string
	Target       string
	CurrentValue float64
	TargetValue  float64
	Percentage   float64

	History  []models.KPIHistoryPoint
	ThrustID int // 0 for manual KPIs

	PlanStart   string
	PlanEnd     string
	ActualStart string
	DueDate     string // DD/MM/YYYY, may be empty
}

func (d DerivedKPI) HasThrust() bool { return d.ThrustID > 0 }

// IndexInitiatives keys initiatives by ID.
func IndexInitiatives(list []models.Initiative) map[string]models.Initiative {
	out := make(map[string]models.Initiative, len(list))
	for _, in := range list {
		out[in.ID] = in
	}
	return out
}

// Derive resolves a KPI against the current initiatives. A reference to a
// missing initiative yields a manual KPI.
func Derive(k models.KPI, initiatives map[string]models.Initiative) DerivedKPI {
	d := DerivedKPI{
		ID:          k.ID,
		Name:        k.Name,
		PlanStart:   k.PlanStart,
		PlanEnd:     k.PlanEnd,
		ActualStart: k.ActualStart,
		DueDate:     k.ActualEnd,
	}

	if in, ok := initiatives[LinkTarget(k)]; ok {
		d.IsLinked = true
		d.InitiativeID = in.ID
		d.CurrentValue = float64(in.Progress)
		d.TargetValue = 100
		d.Current = fmt.Sprintf("%d%% Complete", in.Progress)
		d.Target = "100% Complete"
		d.History = []models.KPIHistoryPoint{}
		d.ThrustID = in.ThrustID
		if d.DueDate == "" {
			d.DueDate = in.ActualEnd
		}
	} else {
		d.Current = k.Current
		d.Target = k.Target
		d.CurrentValue = k.CurrentValue
		d.TargetValue = k.TargetValue
		d.History = append([]models.KPIHistoryPoint(nil), k.History...)
	}

	d.Percentage = Percentage(d.CurrentValue, d.TargetValue)
	return d
}

func DeriveAll(kpis []models.KPI, initiatives []models.Initiative) []DerivedKPI {
	idx := IndexInitiatives(initiatives)
	out := make([]DerivedKPI, 0, len(kpis))
	for _, k := range kpis {
		out = append(out, Derive(k, idx))
	}
	return out
}

// Percentage is 100*current/target clamped to [0, 100]; a non-positive
// target gives 0.
func Percentage(current, target float64) float64 {
	if !(target > 0) {
		return 0
	}
	return clamp(100*current/target, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v != v { // NaN
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// NewKPI returns the placeholder record the add form starts from.
func NewKPI() models.KPI {
	return models.KPI{
		Name:         "New KPI",
		Target:       "Set Target",
		Current:      "Set Current",
		TargetValue:  100,
		CurrentValue: 0,
	}
}

var ErrKPINameRequired = errors.New("kpi name is required")

// KPIEdit is what the KPI form submits.
type KPIEdit struct {
	Name string
	// Selected initiative from the link selector; empty lets the name prefix decide.
	LinkedInitiativeID string

	Current      string
	Target       string
	CurrentValue float64
	TargetValue  float64
	History      []models.KPIHistoryPoint

	PlanStart   string
	PlanEnd     string
	ActualStart string
	ActualEnd   string
}

// ResolveLink returns the explicit link to store for a selector value, or nil
// when nothing existing was picked. A name prefix is never stored: LinkTarget
// reads it from the current name so renames keep following it.
func ResolveLink(selected string, initiatives map[string]models.Initiative) *string {
	selected = strings.TrimSpace(selected)
	if _, ok := initiatives[selected]; !ok {
		return nil
	}
	return &selected
}

// ApplyKPIEdit merges a form submission into the stored KPI. While the KPI is
// linked its manual values and history are left as they were, so unlinking
// later brings them back.
func ApplyKPIEdit(stored models.KPI, edit KPIEdit, initiatives map[string]models.Initiative) (models.KPI, error) {
	name := strings.TrimSpace(edit.Name)
	if name == "" {
		return stored, ErrKPINameRequired
	}

	out := stored
	out.Name = name
	out.LinkedInitiativeID = ResolveLink(edit.LinkedInitiativeID, initiatives)
	out.PlanStart = NormalizeDisplayDate(edit.PlanStart)
	out.PlanEnd = NormalizeDisplayDate(edit.PlanEnd)
	out.ActualStart = NormalizeDisplayDate(edit.ActualStart)
	out.ActualEnd = NormalizeDisplayDate(edit.ActualEnd)

	if _, linked := initiatives[LinkTarget(out)]; linked {
		return out, nil
	}

	out.Current = strings.TrimSpace(edit.Current)
	out.Target = strings.TrimSpace(edit.Target)
	out.CurrentValue = edit.CurrentValue
	out.TargetValue = edit.TargetValue
	out.History = SortHistory(cleanHistory(edit.History))
	return out, nil
}

// cleanHistory drops points whose date cannot be parsed and normalizes the rest.
func cleanHistory(h []models.KPIHistoryPoint) []models.KPIHistoryPoint {
	out := make([]models.KPIHistoryPoint, 0, len(h))
	for _, p := range h {
		t, ok := ParseDate(p.Date)
		if !ok {
			continue
		}
		out = append(out, models.KPIHistoryPoint{Date: FormatISODate(t), Value: p.Value})
	}
	return out
}

// SortHistory returns a copy of h ordered by date. Points with equal dates
// keep their relative order.
func SortHistory(h []models.KPIHistoryPoint) []models.KPIHistoryPoint {
	out := append([]models.KPIHistoryPoint(nil), h...)
	sort.SliceStable(out, func(i, j int) bool {
		ti, _ := ParseISODate(out[i].Date)
		tj, _ := ParseISODate(out[j].Date)
		return ti.Before(tj)
	})
	return out
}
