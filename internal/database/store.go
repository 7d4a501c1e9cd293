package database

import (
	"context"
	"errors"
	"fmt"

	"plan-dashboard/internal/models"
	"plan-dashboard/internal/planning"
	"plan-dashboard/internal/store"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store persists plan data in Postgres through gorm.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

var _ store.Store = (*Store)(nil)

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, store.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func (s *Store) exists(ctx context.Context, model any, query string, args ...any) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(model).Where(query, args...).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

//
// initiatives
//

func (s *Store) ListInitiatives(ctx context.Context) ([]models.Initiative, error) {
	var list []models.Initiative
	if err := s.db.WithContext(ctx).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list initiatives: %w", err)
	}
	planning.SortInitiatives(list)
	return list, nil
}

func (s *Store) GetInitiative(ctx context.Context, id string) (models.Initiative, error) {
	var in models.Initiative
	if err := s.db.WithContext(ctx).First(&in, "id = ?", id).Error; err != nil {
		return models.Initiative{}, notFound(err, "initiative "+id)
	}
	return in, nil
}

func (s *Store) CreateInitiative(ctx context.Context, in *models.Initiative) error {
	ok, err := s.exists(ctx, &models.Initiative{}, "id = ?", in.ID)
	if err != nil {
		return fmt.Errorf("create initiative %s: %w", in.ID, err)
	}
	if ok {
		return fmt.Errorf("initiative %s: %w", in.ID, store.ErrExists)
	}
	if err := s.db.WithContext(ctx).Create(in).Error; err != nil {
		return fmt.Errorf("create initiative %s: %w", in.ID, err)
	}
	return nil
}

func (s *Store) SaveInitiative(ctx context.Context, in *models.Initiative) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return saveInitiative(tx, in)
	})
}

func saveInitiative(tx *gorm.DB, in *models.Initiative) error {
	var prev models.Initiative
	if err := tx.Select("id", "created_at").First(&prev, "id = ?", in.ID).Error; err != nil {
		return notFound(err, "initiative "+in.ID)
	}
	in.CreatedAt = prev.CreatedAt
	if err := tx.Save(in).Error; err != nil {
		return fmt.Errorf("save initiative %s: %w", in.ID, err)
	}
	return nil
}

func (s *Store) SaveInitiatives(ctx context.Context, list []models.Initiative) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range list {
			if err := saveInitiative(tx, &list[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) DeleteInitiative(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Initiative{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete initiative %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("initiative %s: %w", id, store.ErrNotFound)
	}
	return nil
}

//
// kpis
//

func withHistory(db *gorm.DB) *gorm.DB {
	return db.Preload("History", func(db *gorm.DB) *gorm.DB {
		return db.Order("date asc, id asc")
	})
}

func (s *Store) ListKPIs(ctx context.Context) ([]models.KPI, error) {
	var list []models.KPI
	if err := withHistory(s.db.WithContext(ctx)).Order("id asc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list kpis: %w", err)
	}
	return list, nil
}

func (s *Store) GetKPI(ctx context.Context, id uint) (models.KPI, error) {
	var k models.KPI
	if err := withHistory(s.db.WithContext(ctx)).First(&k, id).Error; err != nil {
		return models.KPI{}, notFound(err, fmt.Sprintf("kpi %d", id))
	}
	return k, nil
}

func (s *Store) CreateKPI(ctx context.Context, k *models.KPI) error {
	for i := range k.History {
		k.History[i].ID = 0
	}
	if err := s.db.WithContext(ctx).Create(k).Error; err != nil {
		return fmt.Errorf("create kpi: %w", err)
	}
	return nil
}

// SaveKPI rewrites the KPI row and replaces its history.
func (s *Store) SaveKPI(ctx context.Context, k *models.KPI) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var prev models.KPI
		if err := tx.Select("id", "created_at").First(&prev, k.ID).Error; err != nil {
			return notFound(err, fmt.Sprintf("kpi %d", k.ID))
		}
		k.CreatedAt = prev.CreatedAt

		if err := tx.Omit(clause.Associations).Save(k).Error; err != nil {
			return fmt.Errorf("save kpi %d: %w", k.ID, err)
		}
		if err := tx.Where("kpi_id = ?", k.ID).Delete(&models.KPIHistoryPoint{}).Error; err != nil {
			return fmt.Errorf("clear kpi %d history: %w", k.ID, err)
		}
		if len(k.History) == 0 {
			return nil
		}
		for i := range k.History {
			k.History[i].ID = 0
			k.History[i].KPIID = k.ID
		}
		if err := tx.Create(&k.History).Error; err != nil {
			return fmt.Errorf("save kpi %d history: %w", k.ID, err)
		}
		return nil
	})
}

func (s *Store) DeleteKPI(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("kpi_id = ?", id).Delete(&models.KPIHistoryPoint{}).Error; err != nil {
			return fmt.Errorf("delete kpi %d history: %w", id, err)
		}
		res := tx.Delete(&models.KPI{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete kpi %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("kpi %d: %w", id, store.ErrNotFound)
		}
		return nil
	})
}

//
// financials
//

func (s *Store) ListFinancials(ctx context.Context) ([]models.ThrustFinancial, error) {
	var list []models.ThrustFinancial
	if err := s.db.WithContext(ctx).Order("thrust_id asc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list financials: %w", err)
	}
	return list, nil
}

func (s *Store) SaveFinancial(ctx context.Context, f models.ThrustFinancial) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&f).Error
	if err != nil {
		return fmt.Errorf("save financials for thrust %d: %w", f.ThrustID, err)
	}
	return nil
}
