package database

import (
	"context"
	"fmt"

	"plan-dashboard/internal/models"
	"plan-dashboard/internal/store"

	"gorm.io/gorm"
)

func (s *Store) ListTiers(ctx context.Context) ([]models.Tier, error) {
	var tiers []models.Tier
	err := s.db.WithContext(ctx).
		Preload("Milestones", func(db *gorm.DB) *gorm.DB { return db.Order("position asc, id asc") }).
		Order("position asc").
		Find(&tiers).Error
	if err != nil {
		return nil, fmt.Errorf("list tiers: %w", err)
	}
	return tiers, nil
}

func (s *Store) CreateTier(ctx context.Context, t *models.Tier) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Tier{}).Count(&count).Error; err != nil {
			return fmt.Errorf("create tier: %w", err)
		}
		var dup int64
		if err := tx.Model(&models.Tier{}).Where("name = ?", t.Name).Count(&dup).Error; err != nil {
			return fmt.Errorf("create tier: %w", err)
		}
		if dup > 0 {
			return fmt.Errorf("tier %q: %w", t.Name, store.ErrExists)
		}
		t.Position = int(count)
		for i := range t.Milestones {
			t.Milestones[i].Position = i
		}
		if err := tx.Create(t).Error; err != nil {
			return fmt.Errorf("create tier %q: %w", t.Name, err)
		}
		return nil
	})
}

func (s *Store) AddMilestone(ctx context.Context, tierID uint, text string) (models.Milestone, error) {
	ms := models.Milestone{TierID: tierID, Text: text}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tier models.Tier
		if err := tx.First(&tier, tierID).Error; err != nil {
			return notFound(err, fmt.Sprintf("tier %d", tierID))
		}
		var count int64
		if err := tx.Model(&models.Milestone{}).Where("tier_id = ?", tierID).Count(&count).Error; err != nil {
			return err
		}
		ms.Position = int(count)
		return tx.Create(&ms).Error
	})
	if err != nil {
		return models.Milestone{}, fmt.Errorf("add milestone: %w", err)
	}
	return ms, nil
}

func (s *Store) UpdateMilestone(ctx context.Context, id uint, text string) error {
	res := s.db.WithContext(ctx).Model(&models.Milestone{}).Where("id = ?", id).Update("text", text)
	if res.Error != nil {
		return fmt.Errorf("update milestone %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("milestone %d: %w", id, store.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteMilestone(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Milestone{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete milestone %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("milestone %d: %w", id, store.ErrNotFound)
	}
	return nil
}
