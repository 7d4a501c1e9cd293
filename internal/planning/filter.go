package planning

import (
	"slices"
	"strings"
	"time"
)

// DueWindow narrows KPIs by due date relative to today.
type DueWindow string

const (
	DueAny   DueWindow = ""
	DuePast  DueWindow = "past"
	DueToday DueWindow = "today"
	DueWeek  DueWindow = "week"
	DueMonth DueWindow = "month"
)

type KPIFilter struct {
	ThrustID int // 0 means any
	Status   KPIStatus
	Due      DueWindow
	Search   string
}

func FilterKPIs(list []DerivedKPI, f KPIFilter, today time.Time) []DerivedKPI {
	today = DateOf(today)
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]DerivedKPI, 0, len(list))
	for _, k := range list {
		if f.ThrustID != 0 && k.ThrustID != f.ThrustID {
			continue
		}
		if f.Status != "" && KPIStatusOf(k, today) != f.Status {
			continue
		}
		if !dueMatches(k.DueDate, f.Due, today) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(k.Name), search) {
			continue
		}
		out = append(out, k)
	}
	return out
}

func dueMatches(dueDate string, w DueWindow, today time.Time) bool {
	if w == DueAny || strings.TrimSpace(dueDate) == "" {
		return true
	}
	due, ok := ParseDisplayDate(dueDate)
	if !ok {
		return false
	}
	switch w {
	case DuePast:
		return due.Before(today)
	case DueToday:
		return due.Equal(today)
	case DueWeek:
		return !due.Before(today) && !due.After(today.AddDate(0, 0, 7))
	case DueMonth:
		return !due.Before(today) && !due.After(today.AddDate(0, 0, 30))
	}
	return true
}

// InitiativeFilter mirrors the timeline controls. Zero values match all.
type InitiativeFilter struct {
	Thrusts  []int
	Branches []string
	Tier     string
	Status   Status
	Year     int
	From     string // YYYY-MM-DD
	To       string
}

func (f InitiativeFilter) Active() bool {
	return len(f.Thrusts) > 0 || len(f.Branches) > 0 || f.Tier != "" || f.Status != "" ||
		f.Year != 0 || f.From != "" || f.To != ""
}

func FilterInitiatives(views []InitiativeView, f InitiativeFilter) []InitiativeView {
	from, hasFrom := ParseISODate(f.From)
	to, hasTo := ParseISODate(f.To)

	out := make([]InitiativeView, 0, len(views))
	for _, v := range views {
		if len(f.Thrusts) > 0 && !slices.Contains(f.Thrusts, v.ThrustID) {
			continue
		}
		if len(f.Branches) > 0 && (v.ResponsibleBranch == "" || !slices.Contains(f.Branches, v.ResponsibleBranch)) {
			continue
		}
		if f.Tier != "" && v.Tier != f.Tier {
			continue
		}
		if f.Status != "" && v.Status != f.Status {
			continue
		}

		start, okS := ParseDisplayDate(v.PlanStart)
		end, okE := ParseDisplayDate(v.PlanEnd)
		if f.Year != 0 && (!okS || !okE || f.Year < start.Year() || f.Year > end.Year()) {
			continue
		}
		if hasFrom || hasTo {
			if !okS || !okE {
				continue
			}
			if hasFrom && end.Before(from) {
				continue
			}
			if hasTo && start.After(to) {
				continue
			}
		}
		out = append(out, v)
	}
	return out
}

// Branches lists the distinct responsible branches in first-seen order.
func Branches(views []InitiativeView) []string {
	seen := map[string]bool{}
	var out []string
	for _, v := range views {
		if v.ResponsibleBranch == "" || seen[v.ResponsibleBranch] {
			continue
		}
		seen[v.ResponsibleBranch] = true
		out = append(out, v.ResponsibleBranch)
	}
	return out
}
