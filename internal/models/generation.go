package models

import "time"

// Conversation roles accepted in history
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleModel     = "model"
)

// Message is one turn of prior conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// IsAssistant reports whether the message was produced by the model
func (m Message) IsAssistant() bool {
	return m.Role == RoleAssistant || m.Role == RoleModel
}

// FileContext carries an uploaded document's extracted text
type FileContext struct {
	FileName    string `json:"fileName"`
	FileType    string `json:"fileType"`
	FileContent string `json:"fileContent"`
}

// GenerationFlags toggles optional behavior for a single request
type GenerationFlags struct {
	IsSearchRequest bool `json:"isSearchRequest"`
	ThinkingMode    bool `json:"thinkingMode"`
}

// Personalization describes the student the answer is written for
type Personalization struct {
	UserName        string `json:"userName"`
	LearningProfile string `json:"learningProfile"`
	ResponseStyle   string `json:"responseStyle"`
}

// GenerationRequest is the input to a single generation call.
// It is treated as read-only by everything downstream.
type GenerationRequest struct {
	Question            string          `json:"question"`
	Context             string          `json:"context,omitempty"`
	ConversationHistory []Message       `json:"conversationHistory,omitempty"`
	FileContext         *FileContext    `json:"fileContext,omitempty"`
	Image               string          `json:"image,omitempty"` // base64, raw or data URL
	ImageMIMEType       string          `json:"imageMimeType,omitempty"`
	Flags               GenerationFlags `json:"flags"`
	Personalization     Personalization `json:"personalization"`
}

// HasImage reports whether an inline image was attached
func (r *GenerationRequest) HasImage() bool {
	return r.Image != ""
}

// Source is a citation attached to an answer
type Source struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// ProviderTier identifies which slot of the fallback chain produced the answer
type ProviderTier string

const (
	TierPrimary   ProviderTier = "primary"
	TierSecondary ProviderTier = "secondary"
	TierFallback  ProviderTier = "fallback"
)

// TierForIndex maps a provider's position in the priority order to its tier
func TierForIndex(i int) ProviderTier {
	if i == 0 {
		return TierPrimary
	}
	return TierSecondary
}

// GenerationResult is returned exactly once per GenerationRequest
type GenerationResult struct {
	Answer          string       `json:"answer"`
	Provider        ProviderTier `json:"provider"`
	ProviderName    string       `json:"providerName,omitempty"`
	Sources         []Source     `json:"sources,omitempty"`
	IsSearchRequest bool         `json:"isSearchRequest"`
	AutoSearched    bool         `json:"autoSearched,omitempty"`
}

// ProviderAttempt records the outcome of calling one provider.
// Only used for logging and metrics.
type ProviderAttempt struct {
	ProviderID  string
	Succeeded   bool
	ErrorReason string
	ErrorKind   string
	Duration    time.Duration
}
