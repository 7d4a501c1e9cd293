package planning

import (
	"time"

	"plan-dashboard/internal/models"
)

// KPIStatus is the card status shown on the dashboard.
type KPIStatus string

const (
	KPICompleted KPIStatus = "completed"
	KPIOverdue   KPIStatus = "overdue"
	KPIOnTrack   KPIStatus = "on-track"
	KPIAtRisk    KPIStatus = "at-risk"
)

var KPIStatuses = []KPIStatus{KPIOnTrack, KPIAtRisk, KPICompleted, KPIOverdue}

func (s KPIStatus) Label() string {
	switch s {
	case KPICompleted:
		return "Completed"
	case KPIOverdue:
		return "Overdue"
	case KPIOnTrack:
		return "On Track"
	case KPIAtRisk:
		return "At Risk"
	}
	return string(s)
}

func (d DerivedKPI) overdue(today time.Time) bool {
	due, ok := ParseDisplayDate(d.DueDate)
	return ok && due.Before(DateOf(today)) && d.Percentage < 100
}

// KPIStatusOf classifies a derived KPI: overdue when past its due date and
// unfinished, then completed, on track from 50%, at risk below.
func KPIStatusOf(d DerivedKPI, today time.Time) KPIStatus {
	switch {
	case d.overdue(today):
		return KPIOverdue
	case d.Percentage >= 100:
		return KPICompleted
	case d.Percentage >= 50:
		return KPIOnTrack
	default:
		return KPIAtRisk
	}
}

type Summary struct {
	Total       int
	AvgProgress float64
	OnTrack     int
	AtRisk      int
	Completed   int
	Overdue     int
}

func Summarize(kpis []DerivedKPI, today time.Time) Summary {
	var s Summary
	s.Total = len(kpis)
	if s.Total == 0 {
		return s
	}
	var total float64
	for _, k := range kpis {
		total += k.Percentage
		switch KPIStatusOf(k, today) {
		case KPIOverdue:
			s.Overdue++
		case KPICompleted:
			s.Completed++
		case KPIOnTrack:
			s.OnTrack++
		case KPIAtRisk:
			s.AtRisk++
		}
	}
	s.AvgProgress = total / float64(s.Total)
	return s
}

// FinancialTotals sums budget lines; Utilisation is spending over budget.
type FinancialTotals struct {
	Budget      int64
	Spending    int64
	Utilisation float64
}

func TotalFinancials(lines []models.ThrustFinancial) FinancialTotals {
	var t FinancialTotals
	for _, l := range lines {
		t.Budget += l.Budget
		t.Spending += l.Spending
	}
	if t.Budget > 0 {
		t.Utilisation = float64(t.Spending) / float64(t.Budget)
	}
	return t
}
