package search

import (
	"context"
	"errors"

	"github.com/Conceptual-Machines/studybuddy-api/internal/models"
)

const (
	DefaultLimit = 5
	MaxLimit     = 10 // Custom Search caps num at 10
)

// ErrNotConfigured is returned when the search API key or engine id is missing
var ErrNotConfigured = errors.New("web search not configured")

// Provider performs web searches against an external API
type Provider interface {
	Search(ctx context.Context, query string, limit int) ([]models.Source, error)
}

// ClampLimit keeps a requested result count inside what the API accepts
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}
