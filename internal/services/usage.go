package services

import (
	"context"
	"fmt"

	"github.com/Conceptual-Machines/studybuddy-api/internal/models"
	"gorm.io/gorm"
)

const maxRecentGenerations = 100

// UsageService persists generation summaries
type UsageService struct {
	db *gorm.DB
}

func NewUsageService(db *gorm.DB) *UsageService {
	return &UsageService{db: db}
}

// LogGeneration stores one generation summary
func (s *UsageService) LogGeneration(ctx context.Context, entry *models.GenerationLog) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to log generation: %w", err)
	}
	return nil
}

// RecentGenerations returns a user's latest generations, newest first
func (s *UsageService) RecentGenerations(ctx context.Context, userID string, limit int) ([]models.GenerationLog, error) {
	var logs []models.GenerationLog
	if err := recentQuery(s.db.WithContext(ctx), userID, limit).Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to load generations: %w", err)
	}
	return logs, nil
}

func recentQuery(tx *gorm.DB, userID string, limit int) *gorm.DB {
	if limit <= 0 || limit > maxRecentGenerations {
		limit = maxRecentGenerations
	}
	return tx.Model(&models.GenerationLog{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit)
}
