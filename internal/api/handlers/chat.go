package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Conceptual-Machines/studybuddy-api/internal/api/middleware"
	"github.com/Conceptual-Machines/studybuddy-api/internal/logger"
	"github.com/Conceptual-Machines/studybuddy-api/internal/models"
	"github.com/gin-gonic/gin"
)

// Generator produces exactly one result per request
type Generator interface {
	Generate(ctx context.Context, req *models.GenerationRequest) *models.GenerationResult
}

// UsageStore persists generation summaries
type UsageStore interface {
	LogGeneration(ctx context.Context, entry *models.GenerationLog) error
	RecentGenerations(ctx context.Context, userID string, limit int) ([]models.GenerationLog, error)
}

type ChatHandler struct {
	generator Generator
	store     UsageStore
}

// NewChatHandler creates a chat handler. store may be nil.
func NewChatHandler(generator Generator, store UsageStore) *ChatHandler {
	return &ChatHandler{generator: generator, store: store}
}

// ChatResponse is the generation result plus the request ID
type ChatResponse struct {
	RequestID string `json:"requestId"`
	*models.GenerationResult
}

// Chat answers a student's question. Provider failures still return 200
// with the canned fallback answer.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req models.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "message": err.Error()})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question is required"})
		return
	}

	requestID := c.GetString("request_id")
	fields := logger.WithContext(c)
	fields["search_request"] = req.Flags.IsSearchRequest
	fields["thinking_mode"] = req.Flags.ThinkingMode
	logger.Info("Chat request received", fields)

	start := time.Now()
	result := h.generator.Generate(c.Request.Context(), &req)
	duration := time.Since(start)

	if h.store != nil {
		userID, _ := middleware.GetUserID(c)
		entry := models.NewGenerationLog(requestID, userID, &req, result, duration)
		if err := h.store.LogGeneration(c.Request.Context(), entry); err != nil {
			logger.Error("Failed to persist generation log", err, logger.Fields{"request_id": requestID})
		}
	}

	c.JSON(http.StatusOK, ChatResponse{RequestID: requestID, GenerationResult: result})
}

const defaultHistoryLimit = 20

// History lists the caller's recent generations
func (h *ChatHandler) History(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "History is not available without a database"})
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var query struct {
		Limit int `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
		return
	}
	if query.Limit <= 0 {
		query.Limit = defaultHistoryLimit
	}

	logs, err := h.store.RecentGenerations(c.Request.Context(), userID, query.Limit)
	if err != nil {
		logger.Error("Failed to load generation history", err, logger.WithContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"generations": logs, "count": len(logs)})
}
