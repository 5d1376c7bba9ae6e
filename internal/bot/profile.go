package bot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aurelius-bot/aurelius"
	"github.com/aurelius-bot/aurelius/internal/storage"
	"github.com/aurelius-bot/aurelius/internal/templates"
)

func (h *Handler) profile(req Request, resp Responder) error {
	switch req.Subcommand {
	case "setup":
		return h.profileSetup(req, resp)
	case "view":
		return h.profileView(req, resp)
	case "update":
		return h.profileUpdate(req, resp)
	}
	return fmt.Errorf("unknown profile subcommand %q", req.Subcommand)
}

func bullets(items []string) string {
	lines := make([]string, len(items))
	for i, s := range items {
		lines[i] = SymbolBullet + " " + s
	}
	return strings.Join(lines, "\n")
}

func notSet(s string) string {
	if s == "" {
		return "Not set"
	}
	return s
}

func (h *Handler) profileSetup(req Request, resp Responder) error {
	p, err := h.engine.SetupProfile(aurelius.ProfileInput{
		UserID:            req.UserID,
		IMVUName:          req.String("imvu_name"),
		InstagramHandle:   req.String("instagram_handle"),
		Timezone:          req.String("timezone"),
		PreferredAgencies: req.String("preferred_agencies"),
		CaptionStyle:      req.String("caption_style"),
	})
	if err != nil {
		return h.fail(resp, "Profile Setup Failed", "setting up your profile", err)
	}

	e := h.embed("Profile Setup Complete",
		"Welcome to Aurelius! Your modeling profile has been set up successfully. "+
			"I'll use this information to personalize your experience and help you manage your modeling journey more effectively.",
		ColorSuccess)
	addField(e, "IMVU Name", p.IMVUName, true)
	addField(e, "Instagram", p.InstagramHandle, true)
	addField(e, "Timezone", p.Timezone, true)
	addField(e, "Caption Style", templates.Title(string(p.CaptionStyle)), true)
	if len(p.PreferredAgencies) > 0 {
		addField(e, "Preferred Agencies", bullets(p.PreferredAgencies), false)
	}
	addField(e, "What's Next?", bullets([]string{
		"Use `/stream create` to register your first stream",
		"Use `/schedule weekly` to plan your week",
		"Use `/help` to see all available commands",
		"DM me anytime for personal assistance!",
	}), false)
	return h.reply(resp, e)
}

func (h *Handler) profileView(req Request, resp Responder) error {
	p, err := h.engine.Profile(req.UserID)
	if err != nil {
		return h.fail(resp, "Profile Retrieval Failed", "retrieving your profile", err)
	}
	if p == nil {
		return h.reply(resp, h.embed("No Profile Found",
			"You haven't set up your profile yet! Use `/profile setup` to get started with Aurelius.", ColorInfo))
	}

	tz := p.Timezone
	if tz == "" {
		tz = "UTC"
	}
	e := h.embed("Your Modeling Profile", "Here's your current profile information:", ColorPrimary)
	addField(e, "IMVU Name", notSet(p.IMVUName), true)
	addField(e, "Instagram Handle", notSet(p.InstagramHandle), true)
	addField(e, "Timezone", tz, true)
	addField(e, "Caption Style", templates.Title(string(p.CaptionStyle)), true)
	addField(e, "Profile Created", h.date(p.CreatedAt), true)
	addField(e, "Last Updated", h.date(p.UpdatedAt), true)
	if len(p.PreferredAgencies) > 0 {
		addField(e, "Preferred Agencies", bullets(p.PreferredAgencies), false)
	}

	var active []string
	rs := p.ReminderSettings
	if rs.StreamReminders {
		active = append(active, "Stream reminders")
	}
	if rs.WeeklyReminders {
		active = append(active, "Weekly reminders")
	}
	if rs.DailyCheckIns {
		active = append(active, "Daily check-ins")
	}
	if len(active) > 0 {
		addField(e, "Active Reminders", bullets(active), false)
	}
	return h.reply(resp, e)
}

func (h *Handler) profileUpdate(req Request, resp Responder) error {
	field, value := req.String("field"), req.String("value")
	p, err := h.engine.UpdateProfileField(req.UserID, field, value)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return h.reply(resp, h.embed("No Profile Found",
			"You need to set up your profile first! Use `/profile setup` to get started.", ColorWarning))
	case errors.Is(err, storage.ErrInvalidValue):
		return h.ephemeral(resp, h.embed("Invalid Value",
			fmt.Sprintf("%q is not a valid value for %s.", value, fieldLabel(field)), ColorError))
	case err != nil:
		return h.fail(resp, "Profile Update Failed", "updating your profile", err)
	}

	shown := value
	switch field {
	case "instagram_handle":
		shown = p.InstagramHandle
	case "preferred_agencies":
		shown = strings.Join(p.PreferredAgencies, ", ")
	}
	e := h.embed("Profile Updated Successfully",
		fmt.Sprintf("Your %s has been updated successfully!", fieldLabel(field)), ColorSuccess)
	addField(e, "Updated Field", fmt.Sprintf("%s: %s", templates.Title(fieldLabel(field)), shown), false)
	return h.reply(resp, e)
}

// fieldLabel turns imvu_name into "imvu name". Only the first underscore
// is replaced.
func fieldLabel(field string) string {
	return strings.Replace(field, "_", " ", 1)
}
