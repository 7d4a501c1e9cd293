package database

import (
	"fmt"
	"time"

	"plan-dashboard/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	maxAttempts  = 10
	retryBackoff = 2 * time.Second
)

// Open connects to Postgres, retrying while the database comes up, and
// migrates the schema.
func Open(dsn string, log *zap.Logger) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	for i := 1; i <= maxAttempts; i++ {
		log.Info("connecting to database", zap.Int("attempt", i), zap.Int("max_attempts", maxAttempts))

		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			log.Info("connected to database")
			break
		}

		log.Warn("database connection failed", zap.Error(err))
		time.Sleep(retryBackoff)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to database after %d attempts: %w", maxAttempts, err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Initiative{},
		&models.KPI{},
		&models.KPIHistoryPoint{},
		&models.Tier{},
		&models.Milestone{},
		&models.ThrustFinancial{},
		&models.AuditLog{},
		&models.Direction{},
		&models.Objective{},
		&models.SuccessStory{},
	)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
