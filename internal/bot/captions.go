package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/aurelius-bot/aurelius"
	"github.com/aurelius-bot/aurelius/internal/templates"
)

func (h *Handler) caption(ctx context.Context, req Request, resp Responder) error {
	switch req.Subcommand {
	case "imvu", "instagram":
		return h.captionGenerate(ctx, req, resp)
	case "template":
		return h.captionTemplate(req, resp)
	}
	return fmt.Errorf("unknown caption subcommand %q", req.Subcommand)
}

func (h *Handler) captionGenerate(ctx context.Context, req Request, resp Responder) error {
	platform := req.Subcommand
	label := "IMVU"
	if platform == "instagram" {
		label = "Instagram"
	}

	// Model calls can outlast the interaction deadline.
	if h.engine.Assistant().Ready() {
		if err := resp.Defer(); err != nil {
			return err
		}
	}

	out, err := h.engine.GenerateCaption(ctx, aurelius.CaptionInput{
		UserID:           req.UserID,
		Platform:         platform,
		ItemName:         req.String("item_name"),
		CreatorName:      req.String("creator_name"),
		ItemID:           req.String("item_id"),
		ManufacturerID:   req.String("manufacturer_id"),
		AgencyName:       req.String("agency_name"),
		ShopLink:         req.String("shop_link"),
		CreatorInstagram: req.String("creator_instagram"),
		AgencyInstagram:  req.String("agency_instagram"),
		AdditionalTags:   req.String("additional_tags"),
	})
	if err != nil {
		return h.fail(resp, "Caption Generation Failed", "generating your "+label+" caption", err)
	}

	title := label + " Caption Generated"
	intro := fmt.Sprintf("Here's your %s caption:", label)
	if out.AI {
		title += " ✨"
		if platform == "imvu" {
			intro = "Here's your AI-generated IMVU feed caption:"
		} else {
			intro = "Here's your AI-generated Instagram caption:"
		}
	}
	e := h.embed(title, intro+"\n\n"+codeBlock(out.Text), ColorSuccess)
	addField(e, "Item", req.String("item_name"), true)
	addField(e, "Creator", req.String("creator_name"), true)
	addField(e, "Agency Format", req.String("agency_name"), true)
	return h.reply(resp, e)
}

func (h *Handler) captionTemplate(req Request, resp Responder) error {
	agency := req.String("agency_name")
	tmpl, err := h.engine.AgencyTemplate(agency)
	if err != nil {
		return h.fail(resp, "Template Retrieval Failed", "retrieving the template", err)
	}
	if tmpl == nil {
		desc := fmt.Sprintf("No template found for agency: %s", agency)
		if names := h.agencyNames(); names != "" {
			desc += "\n\nAvailable agencies: " + names
		}
		return h.ephemeral(resp, h.embed("Template Not Found", desc, ColorWarning))
	}

	e := h.embed("Caption Template - "+agency, fmt.Sprintf("Here's the caption template for %s:", agency), ColorInfo)
	addField(e, "IMVU Format", codeBlock(tmpl.IMVUCaptionFormat), false)
	addField(e, "Instagram Format", codeBlock(tmpl.InstagramCaptionFormat), false)
	if len(tmpl.RequiredTags) > 0 {
		addField(e, "Required Tags", strings.Join(tmpl.RequiredTags, ", "), false)
	}
	return h.reply(resp, e)
}

func (h *Handler) agencyNames() string {
	all, err := h.engine.AgencyTemplates()
	if err != nil {
		return ""
	}
	names := make([]string, len(all))
	for i, t := range all {
		names[i] = t.AgencyName
	}
	return strings.Join(names, ", ")
}

func (h *Handler) request(ctx context.Context, req Request, resp Responder) error {
	switch req.Subcommand {
	case "format":
		return h.requestFormat(ctx, req, resp)
	case "template":
		return h.requestTemplate(req, resp)
	}
	return fmt.Errorf("unknown request subcommand %q", req.Subcommand)
}

func (h *Handler) requestFormat(ctx context.Context, req Request, resp Responder) error {
	if h.engine.Assistant().Ready() {
		if err := resp.Defer(); err != nil {
			return err
		}
	}
	agency := req.String("agency_name")
	out, err := h.engine.GenerateRequest(ctx, aurelius.RequestInput{
		AgencyName:      agency,
		ItemName:        req.String("item_name"),
		CreatorName:     req.String("creator_name"),
		IMVULink:        req.String("imvu_link"),
		InstagramHandle: req.String("instagram_handle"),
	})
	if err != nil {
		return h.fail(resp, "Request Generation Failed", "generating your request format", err)
	}

	e := h.embed("Request Format Generated",
		fmt.Sprintf("Here's your request format for **%s**:\n\n%s", agency, codeBlock(out.Text)), ColorSuccess)
	addField(e, "Agency", agency, true)
	addField(e, "Item", req.String("item_name"), true)
	addField(e, "Creator", req.String("creator_name"), true)
	addField(e, "💡 Tips", templates.RequestTips, false)
	return h.reply(resp, e)
}

func (h *Handler) requestTemplate(req Request, resp Responder) error {
	agency := req.String("agency_name")
	tmpl, err := h.engine.AgencyTemplate(agency)
	if err != nil {
		return h.fail(resp, "Template Retrieval Failed", "retrieving the template", err)
	}
	if tmpl == nil || tmpl.RequestFormat == "" {
		e := h.embed("Template Not Found",
			fmt.Sprintf("No request template found for agency: %s\n\nI'll use a default format for now.", agency), ColorWarning)
		addField(e, "Default Request Format", codeBlock(templates.RequestPlaceholder.Default()), false)
		return h.reply(resp, e)
	}

	e := h.embed("Request Template - "+agency, fmt.Sprintf("Here's the request template for %s:", agency), ColorInfo)
	addField(e, "Request Format", codeBlock(tmpl.RequestFormat), false)
	if len(tmpl.RequiredTags) > 0 {
		addField(e, "Required Tags", strings.Join(tmpl.RequiredTags, ", "), false)
	}
	return h.reply(resp, e)
}
