// Package ai generates captions, reviews and request messages with a
// hosted or local language model.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/aurelius-bot/aurelius/internal/storage"
)

// ErrNotInitialized is returned by every generator before Initialize succeeds.
var ErrNotInitialized = errors.New("AI service not initialized: set a Gemini API key")

// Generator turns a prompt into text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ItemData describes the item being written about. Unused fields may be
// left empty; the prompts substitute neutral wording.
type ItemData struct {
	ItemName         string
	CreatorName      string
	ItemID           string
	ManufacturerID   string
	AgencyName       string
	CreatorInstagram string
	ItemType         string
	ColorScheme      string
	Style            string
	SpecialFeatures  string
	Rating           int
	IMVULink         string
	InstagramHandle  string
}

// Preferences carries the caller's styling choices.
type Preferences struct {
	CaptionStyle   string
	AdditionalTags string
}

// promptData is what the prompt templates see.
type promptData struct {
	ItemData
	CaptionStyle   string
	AdditionalTags string
}

// Assistant is the single AI entry point. It starts unready; Initialize
// or SetBackend makes it usable.
type Assistant struct {
	prompts    *PromptLoader
	newBackend func(apiKey string) (Generator, error)

	mu      sync.RWMutex
	backend Generator
}

// NewAssistant builds an assistant for the provider named in cfg.
func NewAssistant(cfg *storage.Config) *Assistant {
	a := &Assistant{prompts: NewPromptLoader(cfg)}
	switch cfg.AI.Provider {
	case "ollama":
		a.newBackend = func(string) (Generator, error) {
			return NewOllamaBackend(cfg.AI.OllamaURL, cfg.AI.OllamaModel)
		}
	default:
		a.newBackend = func(apiKey string) (Generator, error) {
			if apiKey == "" {
				return nil, errors.New("gemini API key is required")
			}
			return NewGeminiBackend(cfg.AI.BaseURL, apiKey, cfg.AI.Model), nil
		}
	}
	return a
}

// Initialize creates the backend. On failure the assistant stays unready.
func (a *Assistant) Initialize(apiKey string) error {
	backend, err := a.newBackend(apiKey)
	if err != nil {
		return err
	}
	a.SetBackend(backend)
	return nil
}

// SetBackend installs g directly and marks the assistant ready.
func (a *Assistant) SetBackend(g Generator) {
	a.mu.Lock()
	a.backend = g
	a.mu.Unlock()
}

// Ready reports whether generation calls can be made.
func (a *Assistant) Ready() bool {
	if a == nil {
		return false
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.backend != nil
}

func (a *Assistant) generate(ctx context.Context, promptType PromptType, data promptData, what string) (string, error) {
	a.mu.RLock()
	backend := a.backend
	a.mu.RUnlock()
	if backend == nil {
		return "", ErrNotInitialized
	}

	prompt, err := a.prompts.Render(promptType, data)
	if err != nil {
		return "", err
	}
	text, err := backend.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", what, err)
	}
	return strings.TrimSpace(text), nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// GenerateIMVUCaption writes an IMVU feed caption.
func (a *Assistant) GenerateIMVUCaption(ctx context.Context, item ItemData, prefs Preferences) (string, error) {
	item.AgencyName = orDefault(item.AgencyName, "General")
	return a.generate(ctx, PromptTypeIMVUCaption, promptData{
		ItemData:       item,
		CaptionStyle:   orDefault(prefs.CaptionStyle, "elegant"),
		AdditionalTags: prefs.AdditionalTags,
	}, "IMVU caption")
}

// GenerateInstagramCaption writes an Instagram caption.
func (a *Assistant) GenerateInstagramCaption(ctx context.Context, item ItemData, prefs Preferences) (string, error) {
	item.CreatorInstagram = orDefault(item.CreatorInstagram, "creator")
	return a.generate(ctx, PromptTypeInstagramCaption, promptData{
		ItemData:       item,
		CaptionStyle:   orDefault(prefs.CaptionStyle, "elegant"),
		AdditionalTags: prefs.AdditionalTags,
	}, "Instagram caption")
}

// GenerateItemReview writes a multi-paragraph review.
func (a *Assistant) GenerateItemReview(ctx context.Context, item ItemData) (string, error) {
	item.Style = orDefault(item.Style, "Not specified")
	item.SpecialFeatures = orDefault(item.SpecialFeatures, "None specified")
	return a.generate(ctx, PromptTypeItemReview, promptData{ItemData: item}, "item review")
}

// GenerateRequestFormat writes a stream request addressed to agencyName.
func (a *Assistant) GenerateRequestFormat(ctx context.Context, item ItemData, agencyName string) (string, error) {
	item.AgencyName = agencyName
	item.IMVULink = orDefault(item.IMVULink, "Not provided")
	item.InstagramHandle = orDefault(item.InstagramHandle, "Not provided")
	return a.generate(ctx, PromptTypeRequestFormat, promptData{ItemData: item}, "request format")
}
