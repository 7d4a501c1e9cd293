package models

import "time"

type AuditLog struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time

	Actor    string `gorm:"size:50;not null"`
	Entity   string `gorm:"size:50;not null"` // "initiative", "kpi", "milestone", "financial", "media"
	EntityID string `gorm:"size:64"`
	Action   string `gorm:"size:50;not null"` // "create", "update", "delete", "reset"
	Details  string `gorm:"type:text"`
}
