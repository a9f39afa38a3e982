package prompt

import (
	"encoding/base64"
	"fmt"
	"log"
	"strings"

	"github.com/Conceptual-Machines/studybuddy-api/internal/llm"
	"github.com/Conceptual-Machines/studybuddy-api/internal/models"
)

const (
	maxFileChars       = 12000
	defaultImageMIME   = "image/jpeg"
	sectionSeparator   = "\n\n"
	dataURLPrefix      = "data:"
	dataURLBase64Token = ";base64,"
)

// Enrichment carries the optional context blocks gathered before generation
type Enrichment struct {
	SearchBlock string
	ScrapeBlock string
}

// Builder builds one prompt bundle per provider from a single request
type Builder struct{}

// NewPromptBuilder creates a new prompt builder
func NewPromptBuilder() *Builder {
	return &Builder{}
}

// Build merges instructions, personalization, history, file content and
// enrichment into a bundle shaped for the provider's capabilities.
func (b *Builder) Build(
	req *models.GenerationRequest,
	caps llm.Capabilities,
	enrichment Enrichment,
	params llm.GenerationParams,
) *llm.PromptBundle {
	system := b.systemPrompt(req)

	var image *llm.ImagePayload
	imageNote := ""
	if req.HasImage() {
		payload, err := DecodeImage(req.Image, req.ImageMIMEType)
		switch {
		case err != nil:
			log.Printf("⚠️  Ignoring undecodable image: %v", err)
			imageNote = imageUnsupportedNote
		case !caps.SupportsImage:
			imageNote = imageUnsupportedNote
		default:
			image = payload
		}
	}

	messages := make([]models.Message, 0, len(req.ConversationHistory)+1)
	for _, msg := range req.ConversationHistory {
		role := models.RoleUser
		if msg.IsAssistant() {
			role = models.RoleAssistant
		}
		messages = append(messages, models.Message{Role: role, Content: msg.Content})
	}
	messages = append(messages, models.Message{
		Role:    models.RoleUser,
		Content: b.userTurn(req, enrichment, imageNote),
	})

	bundle := &llm.PromptBundle{
		System:   system,
		Messages: messages,
		Image:    image,
		Params:   params,
	}

	if !caps.SupportsSystemRole {
		foldSystemIntoFirstUser(bundle)
	}

	return bundle
}

// systemPrompt combines base instructions with personalization
func (b *Builder) systemPrompt(req *models.GenerationRequest) string {
	sections := []string{baseInstructions}

	if p := b.personalization(req.Personalization); p != "" {
		sections = append(sections, p)
	}
	if req.Flags.ThinkingMode {
		sections = append(sections, thinkingInstructions)
	}

	return strings.Join(sections, sectionSeparator)
}

func (b *Builder) personalization(p models.Personalization) string {
	var lines []string
	if name := strings.TrimSpace(p.UserName); name != "" {
		lines = append(lines, fmt.Sprintf("The student's name is %s. Address them by name occasionally.", name))
	}
	if profile := strings.TrimSpace(p.LearningProfile); profile != "" {
		lines = append(lines, "Learning profile: "+profile)
	}

	style, ok := styleInstructions[strings.ToLower(strings.TrimSpace(p.ResponseStyle))]
	if !ok {
		style = defaultStyleInstruction
	}
	lines = append(lines, "Response style: "+style)

	return "STUDENT PROFILE:\n" + strings.Join(lines, "\n")
}

// userTurn assembles the final user message: context blocks first, question last
func (b *Builder) userTurn(req *models.GenerationRequest, enrichment Enrichment, imageNote string) string {
	var sections []string

	if c := strings.TrimSpace(req.Context); c != "" {
		sections = append(sections, "CONTEXT:\n"+c)
	}
	if fc := req.FileContext; fc != nil && strings.TrimSpace(fc.FileContent) != "" {
		sections = append(sections, fmt.Sprintf("UPLOADED FILE (%s, %s):\n%s",
			fc.FileName, fc.FileType, Truncate(fc.FileContent, maxFileChars)))
	}
	if enrichment.SearchBlock != "" {
		sections = append(sections, enrichment.SearchBlock)
	}
	if enrichment.ScrapeBlock != "" {
		sections = append(sections, enrichment.ScrapeBlock)
	}
	if imageNote != "" {
		sections = append(sections, imageNote)
	}

	sections = append(sections, "QUESTION:\n"+strings.TrimSpace(req.Question))
	return strings.Join(sections, sectionSeparator)
}

// foldSystemIntoFirstUser moves the system text into the first user message
func foldSystemIntoFirstUser(bundle *llm.PromptBundle) {
	if bundle.System == "" {
		return
	}
	for i := range bundle.Messages {
		if !bundle.Messages[i].IsAssistant() {
			bundle.Messages[i].Content = bundle.System + sectionSeparator + bundle.Messages[i].Content
			bundle.System = ""
			return
		}
	}
}

// DecodeImage accepts raw base64 or a data URL and returns the decoded payload
func DecodeImage(encoded, mimeType string) (*llm.ImagePayload, error) {
	data := strings.TrimSpace(encoded)

	if strings.HasPrefix(data, dataURLPrefix) {
		idx := strings.Index(data, dataURLBase64Token)
		if idx < 0 {
			return nil, fmt.Errorf("data URL is not base64 encoded")
		}
		mimeType = data[len(dataURLPrefix):idx]
		data = data[idx+len(dataURLBase64Token):]
	}
	if mimeType == "" {
		mimeType = defaultImageMIME
	}

	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if len(decoded) == 0 {
		return nil, fmt.Errorf("image is empty")
	}

	return &llm.ImagePayload{MIMEType: mimeType, Data: decoded}, nil
}

// Truncate bounds s to maxChars runes, marking the cut
func Truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars]) + "…"
}
