package models

import "time"

type KPI struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"type:text;not null"`

	// explicit link to an initiative; nil means a manually maintained KPI
	LinkedInitiativeID *string `gorm:"size:16;index"`

	Current      string `gorm:"size:255"`
	Target       string `gorm:"size:255"`
	CurrentValue float64
	TargetValue  float64

	History []KPIHistoryPoint `gorm:"constraint:OnDelete:CASCADE"`

	PlanStart   string `gorm:"size:10"`
	PlanEnd     string `gorm:"size:10"`
	ActualStart string `gorm:"size:10"`
	ActualEnd   string `gorm:"size:10"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// KPIHistoryPoint is a dated sample; Date is YYYY-MM-DD.
type KPIHistoryPoint struct {
	ID    uint    `gorm:"primaryKey" json:"-" yaml:"-"`
	KPIID uint    `gorm:"index;not null" json:"-" yaml:"-"`
	Date  string  `gorm:"size:10;not null" json:"date" yaml:"date"`
	Value float64 `json:"value" yaml:"value"`
}
