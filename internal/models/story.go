package models

import "time"

// SuccessStory is a showcase card on the stories page.
type SuccessStory struct {
	ID          uint      `gorm:"primaryKey" yaml:"-"`
	Title       string    `gorm:"size:255;not null" yaml:"title"`
	Subtitle    string    `gorm:"size:255" yaml:"subtitle"`
	Description string    `gorm:"type:text" yaml:"description"`
	Gradient    string    `gorm:"size:64" yaml:"gradient"`
	Link        string    `gorm:"size:512" yaml:"link"`
	ButtonText  string    `gorm:"size:100" yaml:"button_text"`
	CreatedAt   time.Time `yaml:"-"`
}
