package models

import (
	"time"

	"gorm.io/gorm"
)

// GenerationLog is a persisted summary of one chat generation
type GenerationLog struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	CreatedAt       time.Time      `json:"createdAt"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
	RequestID       string         `gorm:"index" json:"requestId"`
	UserID          string         `gorm:"index" json:"userId"`
	Provider        string         `gorm:"index" json:"provider"` // primary, secondary, fallback
	ProviderName    string         `json:"providerName"`
	DurationMS      int            `json:"durationMs"`
	SourceCount     int            `json:"sourceCount"`
	IsSearchRequest bool           `json:"isSearchRequest"`
	AutoSearched    bool           `json:"autoSearched"`
	QuestionLength  int            `json:"questionLength"`
}

// NewGenerationLog summarizes a result for persistence
func NewGenerationLog(requestID, userID string, req *GenerationRequest, result *GenerationResult, duration time.Duration) *GenerationLog {
	return &GenerationLog{
		RequestID:       requestID,
		UserID:          userID,
		Provider:        string(result.Provider),
		ProviderName:    result.ProviderName,
		DurationMS:      int(duration.Milliseconds()),
		SourceCount:     len(result.Sources),
		IsSearchRequest: result.IsSearchRequest,
		AutoSearched:    result.AutoSearched,
		QuestionLength:  len(req.Question),
	}
}
