package database

import (
	"context"
	"fmt"

	"plan-dashboard/internal/models"
)

func (s *Store) RecordAudit(ctx context.Context, entry models.AuditLog) error {
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("record audit: %w", err)
	}
	return nil
}

func (s *Store) ListAudit(ctx context.Context, limit int) ([]models.AuditLog, error) {
	q := s.db.WithContext(ctx).Order("created_at desc").Order("id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var logs []models.AuditLog
	if err := q.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list audit: %w", err)
	}
	return logs, nil
}
