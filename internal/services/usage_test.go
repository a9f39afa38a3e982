package services

import (
	"context"
	"testing"
	"time"

	"github.com/Conceptual-Machines/studybuddy-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// dryRunDB builds statements without talking to a server
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=test dbname=test sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func TestRecentQuery(t *testing.T) {
	db := dryRunDB(t)

	tests := []struct {
		name      string
		limit     int
		wantLimit string
	}{
		{"explicit limit", 5, "LIMIT 5"},
		{"zero uses max", 0, "LIMIT 100"},
		{"too large uses max", 1000, "LIMIT 100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
				var logs []models.GenerationLog
				return recentQuery(tx, "user-1", tt.limit).Find(&logs)
			})

			assert.Contains(t, sql, `FROM "generation_logs"`)
			assert.Contains(t, sql, "user_id = 'user-1'")
			assert.Contains(t, sql, "ORDER BY created_at DESC")
			assert.Contains(t, sql, tt.wantLimit)
		})
	}
}

func TestLogGeneration_DryRun(t *testing.T) {
	service := NewUsageService(dryRunDB(t))
	req := &models.GenerationRequest{Question: "What is osmosis?"}
	result := &models.GenerationResult{Provider: models.TierSecondary, ProviderName: "openai"}

	entry := models.NewGenerationLog("req-1", "user-1", req, result, 1500*time.Millisecond)
	require.NoError(t, service.LogGeneration(context.Background(), entry))

	assert.Equal(t, "secondary", entry.Provider)
	assert.Equal(t, 1500, entry.DurationMS)
	assert.Equal(t, len("What is osmosis?"), entry.QuestionLength)
}
