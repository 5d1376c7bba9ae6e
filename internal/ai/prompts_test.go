package ai

import (
	"strings"
	"testing"

	"github.com/aurelius-bot/aurelius/internal/storage"
)

func TestGetPrompt_EmbeddedDefault(t *testing.T) {
	pl := NewPromptLoader(nil)

	promptTypes := []PromptType{
		PromptTypeIMVUCaption,
		PromptTypeInstagramCaption,
		PromptTypeItemReview,
		PromptTypeRequestFormat,
	}

	for _, pt := range promptTypes {
		t.Run(string(pt), func(t *testing.T) {
			prompt, err := pl.GetPrompt(pt)
			if err != nil {
				t.Fatalf("GetPrompt(%s) failed: %v", pt, err)
			}
			if prompt == "" {
				t.Errorf("GetPrompt(%s) returned empty string", pt)
			}
		})
	}
}

func TestGetPrompt_ConfigOverride(t *testing.T) {
	config := &storage.Config{}
	config.Prompts.ItemReview = "Review {{.ItemName}} briefly."

	pl := NewPromptLoader(config)

	prompt, err := pl.GetPrompt(PromptTypeItemReview)
	if err != nil {
		t.Fatalf("GetPrompt failed: %v", err)
	}
	if prompt != "Review {{.ItemName}} briefly." {
		t.Errorf("expected config override, got: %q", prompt)
	}

	// Other types should still return embedded defaults
	caption, err := pl.GetPrompt(PromptTypeIMVUCaption)
	if err != nil {
		t.Fatalf("GetPrompt failed: %v", err)
	}
	if caption != defaultIMVUCaptionPrompt {
		t.Error("expected embedded default for imvu caption")
	}
}

func TestGetPrompt_UnknownType(t *testing.T) {
	pl := NewPromptLoader(nil)
	if _, err := pl.GetPrompt("horoscope"); err == nil {
		t.Fatal("expected error for unknown prompt type")
	}
}

func TestRender(t *testing.T) {
	pl := NewPromptLoader(nil)

	out, err := pl.Render(PromptTypeIMVUCaption, promptData{
		ItemData:     ItemData{ItemName: "Silk Gown", CreatorName: "Mira", ItemID: "1", ManufacturerID: "2", AgencyName: "General"},
		CaptionStyle: "elegant",
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	for _, want := range []string{"Item: Silk Gown", "Creator: Mira", "Agency: General", "Style: elegant", "Generate the caption:"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered prompt missing %q:\n%s", want, out)
		}
	}
}

func TestRender_BadTemplate(t *testing.T) {
	config := &storage.Config{}
	config.Prompts.RequestFormat = "{{.Nope"
	pl := NewPromptLoader(config)

	if _, err := pl.Render(PromptTypeRequestFormat, promptData{}); err == nil {
		t.Fatal("expected parse error")
	}
}
