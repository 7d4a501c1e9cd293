package models

// Thrust is fixed reference data loaded from the embedded dataset.
type Thrust struct {
	ID          int    `yaml:"id"`
	Title       string `yaml:"title"`
	Color       string `yaml:"color"`
	Description string `yaml:"description"`
}

// Objective groups thrusts. Title and description are admin-editable; the
// thrust grouping is fixed.
type Objective struct {
	ID          int    `gorm:"primaryKey;autoIncrement:false" yaml:"id"`
	Title       string `gorm:"size:255;not null" yaml:"title"`
	Description string `gorm:"type:text" yaml:"description"`
	Color       string `gorm:"size:64" yaml:"color"`
	Thrusts     []int  `gorm:"serializer:json" yaml:"thrusts"`
}

// DirectionID is the key of the single strategic direction row.
const DirectionID = 1

type Direction struct {
	ID      uint   `gorm:"primaryKey;autoIncrement:false" yaml:"-"`
	Vision  string `gorm:"type:text" yaml:"vision"`
	Mission string `gorm:"type:text" yaml:"mission"`
	Goal    string `gorm:"type:text" yaml:"goal"`
}

// Tier groups roadmap milestones by implementation phase.
type Tier struct {
	ID         uint   `gorm:"primaryKey"`
	Name       string `gorm:"size:100;uniqueIndex;not null"`
	Color      string `gorm:"size:255"`
	Position   int
	Milestones []Milestone `gorm:"constraint:OnDelete:CASCADE"`
}

type Milestone struct {
	ID       uint   `gorm:"primaryKey"`
	TierID   uint   `gorm:"index;not null"`
	Text     string `gorm:"type:text;not null"`
	Position int
}

// ThrustFinancial is the budget line of one thrust, in ringgit.
type ThrustFinancial struct {
	ThrustID int `gorm:"primaryKey;autoIncrement:false"`
	Budget   int64
	Spending int64
}
