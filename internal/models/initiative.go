package models

import "time"

// Initiative is a tracked work item under a strategic thrust.
// Dates are kept in the DD/MM/YYYY display form they are exchanged in.
type Initiative struct {
	ID       string `gorm:"primaryKey;size:16"` // I-<thrust>.<seq>
	ThrustID int    `gorm:"index;not null"`
	Name     string `gorm:"type:text;not null"`
	Tier     string `gorm:"size:16"`

	PlanStart   string `gorm:"size:10"`
	PlanEnd     string `gorm:"size:10"`
	ActualStart string `gorm:"size:10"`
	ActualEnd   string `gorm:"size:10"`

	Progress int

	ResponsibleBranch string `gorm:"size:255"`
	ExpectedOutcome   string `gorm:"type:text"`
	Remarks           string `gorm:"type:text"`
	Notes             string `gorm:"type:text"` // newest first

	CreatedAt time.Time
	UpdatedAt time.Time
}
