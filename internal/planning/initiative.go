package planning

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"plan-dashboard/internal/models"
)

const (
	ThrustCount = 12

	noteSeparator = "\n-------------------\n"
	resetNote     = "Progress reset to 0% by Admin."
)

var (
	ErrNameRequired      = errors.New("initiative name is required")
	ErrUnknownThrust     = errors.New("unknown strategic thrust")
	ErrPlanDatesRequired = errors.New("planned start and end dates are required")
	ErrPlanOrder         = errors.New("planned end date must be after planned start date")
	ErrActualOrder       = errors.New("actual end date must be after actual start date")
	ErrNoteRequired      = errors.New("a note describing the update is required")
)

// splitID breaks I-<thrust>.<seq> into its numbers.
func splitID(id string) (thrust, seq int, ok bool) {
	rest, found := strings.CutPrefix(id, "I-")
	if !found {
		return 0, 0, false
	}
	t, s, found := strings.Cut(rest, ".")
	if !found {
		return 0, 0, false
	}
	thrust, err := strconv.Atoi(t)
	if err != nil {
		return 0, 0, false
	}
	seq, err = strconv.Atoi(s)
	if err != nil {
		return 0, 0, false
	}
	return thrust, seq, true
}

// NextInitiativeID returns the next free ID in a thrust, one past the
// highest sequence already used there.
func NextInitiativeID(existing []models.Initiative, thrustID int) string {
	maxSeq := 0
	for _, in := range existing {
		if in.ThrustID != thrustID {
			continue
		}
		if _, seq, ok := splitID(in.ID); ok && seq > maxSeq {
			maxSeq = seq
		}
	}
	return fmt.Sprintf("I-%d.%d", thrustID, maxSeq+1)
}

// SortInitiatives orders by thrust then sequence, so I-1.2 precedes I-1.10.
func SortInitiatives(list []models.Initiative) {
	sort.SliceStable(list, func(i, j int) bool {
		ti, si, oki := splitID(list[i].ID)
		tj, sj, okj := splitID(list[j].ID)
		if !oki || !okj {
			return list[i].ID < list[j].ID
		}
		if ti != tj {
			return ti < tj
		}
		return si < sj
	})
}

// ValidateSchedule checks date ordering. Planned dates are mandatory; the
// actual pair is checked only when both are given.
func ValidateSchedule(planStart, planEnd, actualStart, actualEnd string) error {
	ps, okS := ParseDate(planStart)
	pe, okE := ParseDate(planEnd)
	if !okS || !okE {
		return ErrPlanDatesRequired
	}
	if !pe.After(ps) {
		return ErrPlanOrder
	}
	as, okAS := ParseDate(actualStart)
	ae, okAE := ParseDate(actualEnd)
	if okAS && okAE && !ae.After(as) {
		return ErrActualOrder
	}
	return nil
}

func ClampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// NewInitiative is what the add form submits.
type NewInitiative struct {
	ThrustID          int
	Name              string
	Tier              string
	PlanStart         string
	PlanEnd           string
	ActualStart       string
	ActualEnd         string
	Progress          int
	ResponsibleBranch string
	ExpectedOutcome   string
	Remarks           string
	// Note is optional on creation; when given it opens the notes log.
	Note string
}

// BuildInitiative validates an add-form submission and assigns its ID.
func BuildInitiative(existing []models.Initiative, in NewInitiative, now time.Time) (models.Initiative, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Initiative{}, ErrNameRequired
	}
	if in.ThrustID < 1 || in.ThrustID > ThrustCount {
		return models.Initiative{}, ErrUnknownThrust
	}
	if err := ValidateSchedule(in.PlanStart, in.PlanEnd, in.ActualStart, in.ActualEnd); err != nil {
		return models.Initiative{}, err
	}

	out := models.Initiative{
		ID:                NextInitiativeID(existing, in.ThrustID),
		ThrustID:          in.ThrustID,
		Name:              name,
		Tier:              strings.TrimSpace(in.Tier),
		PlanStart:         NormalizeDisplayDate(in.PlanStart),
		PlanEnd:           NormalizeDisplayDate(in.PlanEnd),
		ActualStart:       NormalizeDisplayDate(in.ActualStart),
		ActualEnd:         NormalizeDisplayDate(in.ActualEnd),
		Progress:          ClampProgress(in.Progress),
		ResponsibleBranch: strings.TrimSpace(in.ResponsibleBranch),
		ExpectedOutcome:   strings.TrimSpace(in.ExpectedOutcome),
		Remarks:           strings.TrimSpace(in.Remarks),
	}
	if note := strings.TrimSpace(in.Note); note != "" {
		out.Notes = FormatNote(now, note)
	}
	return out, nil
}

// InitiativeUpdate is what the update form submits. Empty plan dates keep the
// current plan.
type InitiativeUpdate struct {
	Progress          int
	PlanStart         string
	PlanEnd           string
	ActualStart       string
	ActualEnd         string
	ResponsibleBranch string
	ExpectedOutcome   string
	Remarks           string
	Note              string
}

// ApplyUpdate applies a partial update and records its note.
func ApplyUpdate(in models.Initiative, upd InitiativeUpdate, now time.Time) (models.Initiative, error) {
	note := strings.TrimSpace(upd.Note)
	if note == "" {
		return in, ErrNoteRequired
	}

	out := in
	if s := NormalizeDisplayDate(upd.PlanStart); s != "" {
		out.PlanStart = s
	}
	if s := NormalizeDisplayDate(upd.PlanEnd); s != "" {
		out.PlanEnd = s
	}
	out.ActualStart = NormalizeDisplayDate(upd.ActualStart)
	out.ActualEnd = NormalizeDisplayDate(upd.ActualEnd)

	if err := ValidateSchedule(out.PlanStart, out.PlanEnd, out.ActualStart, out.ActualEnd); err != nil {
		return in, err
	}

	out.Progress = ClampProgress(upd.Progress)
	out.ResponsibleBranch = strings.TrimSpace(upd.ResponsibleBranch)
	out.ExpectedOutcome = strings.TrimSpace(upd.ExpectedOutcome)
	out.Remarks = strings.TrimSpace(upd.Remarks)
	out.Notes = PrependNote(out.Notes, FormatNote(now, note))
	return out, nil
}

// FormatNote stamps a note as "[YYYY-MM-DD HH:MM] text".
func FormatNote(now time.Time, text string) string {
	return fmt.Sprintf("[%s] %s", now.Format("2006-01-02 15:04"), strings.TrimSpace(text))
}

// PrependNote puts entry on top of the log.
func PrependNote(existing, entry string) string {
	if strings.TrimSpace(existing) == "" {
		return entry
	}
	return entry + noteSeparator + existing
}

// NoteEntries splits a notes log back into entries, newest first.
func NoteEntries(notes string) []string {
	if strings.TrimSpace(notes) == "" {
		return nil
	}
	return strings.Split(notes, noteSeparator)
}

// ResetProgress zeroes progress and actual dates across the whole list and
// logs the reset on each initiative. The input is left untouched.
func ResetProgress(list []models.Initiative, now time.Time) []models.Initiative {
	out := make([]models.Initiative, len(list))
	entry := FormatNote(now, resetNote)
	for i, in := range list {
		in.Progress = 0
		in.ActualStart = ""
		in.ActualEnd = ""
		in.Notes = PrependNote(in.Notes, entry)
		out[i] = in
	}
	return out
}
