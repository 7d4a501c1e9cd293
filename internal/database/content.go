package database

import (
	"context"
	"fmt"

	"plan-dashboard/internal/models"
	"plan-dashboard/internal/store"

	"gorm.io/gorm/clause"
)

func (s *Store) GetDirection(ctx context.Context) (models.Direction, error) {
	var d models.Direction
	if err := s.db.WithContext(ctx).First(&d, models.DirectionID).Error; err != nil {
		return models.Direction{}, notFound(err, "direction")
	}
	return d, nil
}

func (s *Store) SaveDirection(ctx context.Context, d models.Direction) error {
	d.ID = models.DirectionID
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&d).Error
	if err != nil {
		return fmt.Errorf("save direction: %w", err)
	}
	return nil
}

func (s *Store) ListObjectives(ctx context.Context) ([]models.Objective, error) {
	var list []models.Objective
	if err := s.db.WithContext(ctx).Order("id asc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list objectives: %w", err)
	}
	return list, nil
}

func (s *Store) GetObjective(ctx context.Context, id int) (models.Objective, error) {
	var o models.Objective
	if err := s.db.WithContext(ctx).First(&o, id).Error; err != nil {
		return models.Objective{}, notFound(err, fmt.Sprintf("objective %d", id))
	}
	return o, nil
}

func (s *Store) SaveObjective(ctx context.Context, o models.Objective) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&o).Error
	if err != nil {
		return fmt.Errorf("save objective %d: %w", o.ID, err)
	}
	return nil
}

func (s *Store) ListStories(ctx context.Context) ([]models.SuccessStory, error) {
	var list []models.SuccessStory
	if err := s.db.WithContext(ctx).Order("id asc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list stories: %w", err)
	}
	return list, nil
}

func (s *Store) GetStory(ctx context.Context, id uint) (models.SuccessStory, error) {
	var st models.SuccessStory
	if err := s.db.WithContext(ctx).First(&st, id).Error; err != nil {
		return models.SuccessStory{}, notFound(err, fmt.Sprintf("story %d", id))
	}
	return st, nil
}

func (s *Store) CreateStory(ctx context.Context, st *models.SuccessStory) error {
	st.ID = 0
	if err := s.db.WithContext(ctx).Create(st).Error; err != nil {
		return fmt.Errorf("create story: %w", err)
	}
	return nil
}

func (s *Store) SaveStory(ctx context.Context, st *models.SuccessStory) error {
	res := s.db.WithContext(ctx).Model(&models.SuccessStory{}).Where("id = ?", st.ID).
		Select("title", "subtitle", "description", "gradient", "link", "button_text").
		Updates(st)
	if res.Error != nil {
		return fmt.Errorf("save story %d: %w", st.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("story %d: %w", st.ID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteStory(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.SuccessStory{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete story %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("story %d: %w", id, store.ErrNotFound)
	}
	return nil
}
