// Package store defines the persistence port for editable plan data.
package store

import (
	"context"
	"errors"

	"plan-dashboard/internal/models"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrExists   = errors.New("record already exists")
)

type InitiativeStore interface {
	ListInitiatives(ctx context.Context) ([]models.Initiative, error)
	GetInitiative(ctx context.Context, id string) (models.Initiative, error)
	CreateInitiative(ctx context.Context, in *models.Initiative) error
	SaveInitiative(ctx context.Context, in *models.Initiative) error
	SaveInitiatives(ctx context.Context, list []models.Initiative) error
	DeleteInitiative(ctx context.Context, id string) error
}

type KPIStore interface {
	ListKPIs(ctx context.Context) ([]models.KPI, error)
	GetKPI(ctx context.Context, id uint) (models.KPI, error)
	CreateKPI(ctx context.Context, k *models.KPI) error
	SaveKPI(ctx context.Context, k *models.KPI) error
	DeleteKPI(ctx context.Context, id uint) error
}

type RoadmapStore interface {
	ListTiers(ctx context.Context) ([]models.Tier, error)
	CreateTier(ctx context.Context, t *models.Tier) error
	AddMilestone(ctx context.Context, tierID uint, text string) (models.Milestone, error)
	UpdateMilestone(ctx context.Context, id uint, text string) error
	DeleteMilestone(ctx context.Context, id uint) error
}

type FinancialStore interface {
	ListFinancials(ctx context.Context) ([]models.ThrustFinancial, error)
	SaveFinancial(ctx context.Context, f models.ThrustFinancial) error
}

type AuditStore interface {
	RecordAudit(ctx context.Context, entry models.AuditLog) error
	ListAudit(ctx context.Context, limit int) ([]models.AuditLog, error)
}

// ContentStore holds the admin-editable page text: the strategic direction,
// objective titles and success stories.
type ContentStore interface {
	// GetDirection returns ErrNotFound until the direction has been seeded.
	GetDirection(ctx context.Context) (models.Direction, error)
	SaveDirection(ctx context.Context, d models.Direction) error
	ListObjectives(ctx context.Context) ([]models.Objective, error)
	GetObjective(ctx context.Context, id int) (models.Objective, error)
	SaveObjective(ctx context.Context, o models.Objective) error
	ListStories(ctx context.Context) ([]models.SuccessStory, error)
	GetStory(ctx context.Context, id uint) (models.SuccessStory, error)
	CreateStory(ctx context.Context, s *models.SuccessStory) error
	SaveStory(ctx context.Context, s *models.SuccessStory) error
	DeleteStory(ctx context.Context, id uint) error
}

// Store is everything the dashboard persists.
type Store interface {
	InitiativeStore
	KPIStore
	RoadmapStore
	FinancialStore
	AuditStore
	ContentStore
}
