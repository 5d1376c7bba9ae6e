package ai

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/aurelius-bot/aurelius/internal/storage"
)

// Embedded default prompts
//
//go:embed prompts/imvu_caption.txt
var defaultIMVUCaptionPrompt string

//go:embed prompts/instagram_caption.txt
var defaultInstagramCaptionPrompt string

//go:embed prompts/item_review.txt
var defaultItemReviewPrompt string

//go:embed prompts/request_format.txt
var defaultRequestFormatPrompt string

// PromptType represents the type of AI prompt
type PromptType string

const (
	PromptTypeIMVUCaption      PromptType = "imvu_caption"
	PromptTypeInstagramCaption PromptType = "instagram_caption"
	PromptTypeItemReview       PromptType = "item_review"
	PromptTypeRequestFormat    PromptType = "request_format"
)

// PromptLoader resolves prompts with 2-tier loading: config file, then the
// embedded default. Parsed templates are cached.
type PromptLoader struct {
	config *storage.Config

	mu    sync.Mutex
	cache map[PromptType]*template.Template
}

// NewPromptLoader creates a new prompt loader. config may be nil.
func NewPromptLoader(config *storage.Config) *PromptLoader {
	return &PromptLoader{
		config: config,
		cache:  make(map[PromptType]*template.Template),
	}
}

// GetPrompt returns the raw prompt text for a type.
// Priority: config file -> embedded default
func (pl *PromptLoader) GetPrompt(promptType PromptType) (string, error) {
	if pl.config != nil {
		var configPrompt string
		switch promptType {
		case PromptTypeIMVUCaption:
			configPrompt = pl.config.Prompts.IMVUCaption
		case PromptTypeInstagramCaption:
			configPrompt = pl.config.Prompts.InstagramCaption
		case PromptTypeItemReview:
			configPrompt = pl.config.Prompts.ItemReview
		case PromptTypeRequestFormat:
			configPrompt = pl.config.Prompts.RequestFormat
		}
		if configPrompt != "" {
			return configPrompt, nil
		}
	}

	switch promptType {
	case PromptTypeIMVUCaption:
		return defaultIMVUCaptionPrompt, nil
	case PromptTypeInstagramCaption:
		return defaultInstagramCaptionPrompt, nil
	case PromptTypeItemReview:
		return defaultItemReviewPrompt, nil
	case PromptTypeRequestFormat:
		return defaultRequestFormatPrompt, nil
	}
	return "", fmt.Errorf("unknown prompt type: %s", promptType)
}

// Render fills the prompt for promptType with data.
func (pl *PromptLoader) Render(promptType PromptType, data any) (string, error) {
	pl.mu.Lock()
	tmpl, ok := pl.cache[promptType]
	pl.mu.Unlock()

	if !ok {
		text, err := pl.GetPrompt(promptType)
		if err != nil {
			return "", err
		}
		tmpl, err = template.New(string(promptType)).Parse(text)
		if err != nil {
			return "", fmt.Errorf("failed to parse prompt template: %w", err)
		}
		pl.mu.Lock()
		pl.cache[promptType] = tmpl
		pl.mu.Unlock()
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}
