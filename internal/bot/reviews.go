package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/aurelius-bot/aurelius"
	"github.com/aurelius-bot/aurelius/internal/templates"
)

func (h *Handler) review(ctx context.Context, req Request, resp Responder) error {
	switch req.Subcommand {
	case "generate":
		return h.reviewGenerate(ctx, req, resp)
	case "template":
		return h.reviewTemplate(req, resp)
	case "history":
		return h.reviewHistory(req, resp)
	}
	return fmt.Errorf("unknown review subcommand %q", req.Subcommand)
}

func (h *Handler) reviewGenerate(ctx context.Context, req Request, resp Responder) error {
	if h.engine.Assistant().Ready() {
		if err := resp.Defer(); err != nil {
			return err
		}
	}
	rating, _ := req.Int("rating")
	out, rv, err := h.engine.GenerateReview(ctx, aurelius.ReviewInput{
		UserID:          req.UserID,
		ItemName:        req.String("item_name"),
		ItemID:          req.String("item_id"),
		CreatorName:     req.String("creator_name"),
		ItemType:        req.String("item_type"),
		ColorScheme:     req.String("color_scheme"),
		Style:           req.String("style"),
		SpecialFeatures: req.String("special_features"),
		Rating:          int(rating),
	})
	if err != nil {
		return h.fail(resp, "Review Generation Failed", "generating your review", err)
	}

	style := req.String("style")
	if style == "" {
		style = "casual"
	}
	e := h.embed("Review Generated Successfully",
		fmt.Sprintf("Here's your detailed review for **%s**:\n\n%s", rv.ItemName, codeBlock(out.Text)), ColorSuccess)
	addField(e, "Item", rv.ItemName, true)
	addField(e, "Creator", req.String("creator_name"), true)
	addField(e, "Rating", templates.Stars(int(rating)), true)
	addField(e, "Type", templates.Title(req.String("item_type")), true)
	addField(e, "Style", templates.Title(style), true)
	addField(e, "Colors", req.String("color_scheme"), true)
	return h.reply(resp, e)
}

func (h *Handler) reviewTemplate(req Request, resp Responder) error {
	itemType := req.String("item_type")
	t := templates.TemplateFor(itemType)
	e := h.embed(t.Title,
		fmt.Sprintf("Here's a review template for %s items:\n\n%s", itemType, codeBlock(t.Body)), ColorInfo)
	addField(e, "Template Variables", templates.TemplateVariables, false)
	return h.reply(resp, e)
}

func (h *Handler) reviewHistory(req Request, resp Responder) error {
	limit, _ := req.Int("limit")
	reviews, err := h.engine.ReviewHistory(req.UserID, int(limit))
	if err != nil {
		return h.fail(resp, "History Retrieval Failed", "retrieving your review history", err)
	}
	if len(reviews) == 0 {
		return h.reply(resp, h.embed("Review History",
			"You haven't written any reviews yet. Use `/review generate` to create one!", ColorInfo))
	}

	e := h.embed("Review History", fmt.Sprintf("Here are your last %d reviews:", len(reviews)), ColorInfo)
	for _, rv := range reviews {
		var lines []string
		if rv.Rating != nil {
			lines = append(lines, templates.Stars(*rv.Rating))
		}
		if rv.ItemID != "" {
			lines = append(lines, "**Item ID:** "+rv.ItemID)
		}
		lines = append(lines, "**Written:** "+h.date(rv.CreatedAt))
		addField(e, fmt.Sprintf("%s %s", SymbolAccent, rv.ItemName), strings.Join(lines, "\n"), false)
	}
	return h.reply(resp, e)
}
