package planning

import (
	"strings"
	"time"

	"plan-dashboard/internal/models"
)

type Status string

const (
	StatusCompleted  Status = "Completed"
	StatusOverdue    Status = "Overdue"
	StatusNotStarted Status = "Not Started"
	StatusAtRisk     Status = "At Risk"
	StatusOnTrack    Status = "On Track"
)

// Statuses lists every status in rule precedence order.
var Statuses = []Status{StatusCompleted, StatusOverdue, StatusNotStarted, StatusAtRisk, StatusOnTrack}

// Slug is the filter form of the status, e.g. "not-started".
func (s Status) Slug() string {
	return strings.ReplaceAll(strings.ToLower(string(s)), " ", "-")
}

// Rank is the 1-based precedence of the rule that yields s.
func (s Status) Rank() int {
	for i, st := range Statuses {
		if st == s {
			return i + 1
		}
	}
	return 0
}

func StatusFromSlug(slug string) (Status, bool) {
	for _, st := range Statuses {
		if st.Slug() == slug {
			return st, true
		}
	}
	return "", false
}

// RiskThresholds controls rule 4 of the classifier: an initiative is at risk
// when its progress trails the expected progress by more than Margin points
// or falls below Ratio of it.
type RiskThresholds struct {
	Margin float64
	Ratio  float64
}

func DefaultThresholds() RiskThresholds {
	return RiskThresholds{Margin: 25, Ratio: 0.5}
}

type Classification struct {
	Status Status
	Rank   int
}

type Classifier struct {
	Thresholds RiskThresholds
}

func NewClassifier(t RiskThresholds) Classifier {
	return Classifier{Thresholds: t}
}

// Classify derives the status of an initiative on the given day. The first
// matching rule wins: completed, overdue, not started, at risk, on track.
func (c Classifier) Classify(in models.Initiative, today time.Time) Classification {
	return classification(c.status(in, DateOf(today)))
}

func (c Classifier) status(in models.Initiative, today time.Time) Status {
	if in.Progress >= 100 {
		return StatusCompleted
	}

	start, hasStart := ParseDisplayDate(in.PlanStart)
	end, hasEnd := ParseDisplayDate(in.PlanEnd)

	if hasEnd && end.Before(today) {
		return StatusOverdue
	}
	if hasStart && today.Before(start) {
		return StatusNotStarted
	}

	if hasStart && hasEnd {
		duration := DaysBetween(start, end)
		if duration > 0 {
			expected := 100 * float64(DaysBetween(start, today)) / float64(duration)
			progress := float64(in.Progress)
			if progress < expected-c.Thresholds.Margin || progress < expected*c.Thresholds.Ratio {
				return StatusAtRisk
			}
		}
	}

	return StatusOnTrack
}

func classification(s Status) Classification {
	return Classification{Status: s, Rank: s.Rank()}
}

// InitiativeView pairs an initiative with its classification for rendering.
type InitiativeView struct {
	models.Initiative
	Classification
}

func (c Classifier) ClassifyAll(list []models.Initiative, today time.Time) []InitiativeView {
	out := make([]InitiativeView, 0, len(list))
	for _, in := range list {
		out = append(out, InitiativeView{Initiative: in, Classification: c.Classify(in, today)})
	}
	return out
}

// CountByStatus tallies classified initiatives; every status has an entry.
func CountByStatus(views []InitiativeView) map[Status]int {
	counts := make(map[Status]int, len(Statuses))
	for _, st := range Statuses {
		counts[st] = 0
	}
	for _, v := range views {
		counts[v.Status]++
	}
	return counts
}
