package bot

import (
	"github.com/bwmarrin/discordgo"
)

type helpEntry struct{ name, value string }

type helpPage struct {
	title, intro string
	entries      []helpEntry
}

var helpPages = map[string]helpPage{
	"stream": {"Stream Management Help", "Commands to help you track and manage your IMVU modeling streams:", []helpEntry{
		{"/stream create", "Register a new stream with item details, creator info, and due date"},
		{"/stream complete", "Mark a stream as completed when you finish it"},
		{"/stream list", "View all your active streams with status and due dates"},
		{"/stream info", "Get detailed information about a specific stream"},
	}},
	"caption": {"Caption Generation Help", "Commands to generate professional captions for your posts:", []helpEntry{
		{"/caption imvu", "Generate IMVU feed captions with proper formatting and tags"},
		{"/caption instagram", "Generate Instagram captions with agency-specific formats"},
		{"/caption template", "View caption templates for different agencies"},
	}},
	"schedule": {"Schedule Planning Help", "Commands to organize your weekly modeling schedule:", []helpEntry{
		{"/schedule weekly", "Plan your weekly activities and modeling schedule"},
		{"/schedule view", "View your current or past weekly schedules"},
		{"/schedule reminder", "Set up weekly reminders for your activities"},
	}},
	"review": {"Review Writing Help", "Commands to create detailed reviews for IMVU items:", []helpEntry{
		{"/review generate", "Generate detailed, heartfelt reviews for items you've streamed"},
		{"/review template", "View review templates for different item types"},
		{"/review history", "View your past reviews and ratings"},
	}},
}

var helpOverview = []helpEntry{
	{"🌊 Stream Management", "`/stream create` - Register new streams\n`/stream complete` - Mark streams complete\n`/stream list` - View active streams\n`/stream info` - Get stream details"},
	{"📝 Caption Generation", "`/caption imvu` - Generate IMVU captions\n`/caption instagram` - Generate IG captions\n`/caption template` - View agency templates"},
	{"📅 Schedule Planning", "`/schedule weekly` - Plan your week\n`/schedule view` - View schedules\n`/schedule reminder` - Set reminders"},
	{"⭐ Review Writing", "`/review generate` - Create detailed reviews\n`/review template` - View templates\n`/review history` - View past reviews"},
}

const helpTips = "• Use DM me for personal assistance\n• I work in any server you invite me to\n• All your data is private and secure\n• I'll remind you about due dates automatically"

// HelpEmbed renders the help page for category; unknown categories get the
// overview.
func (h *Handler) HelpEmbed(category string) *discordgo.MessageEmbed {
	e := h.embed("Aurelius Help Center",
		"Hello there! I'm "+Name+", your personal IMVU modeling assistant. I'm here to help you manage your streams, "+
			"create captions, organize your schedule, and write detailed reviews.\n\n"+Support,
		ColorInfo)

	if page, ok := helpPages[category]; ok {
		e.Title = "◈ " + page.title
		e.Description = page.intro
		for _, en := range page.entries {
			addField(e, en.name, en.value, false)
		}
	} else {
		for _, en := range helpOverview {
			addField(e, en.name, en.value, true)
		}
		addField(e, "💡 Tips", helpTips, false)
	}

	addField(e, "Need More Help?",
		"Feel free to DM me anytime for personal assistance! I'm here to make your modeling journey smoother and more organized.",
		false)
	return e
}

func (h *Handler) help(req Request, resp Responder) error {
	return h.reply(resp, h.HelpEmbed(req.String("category")))
}

// GreetingEmbed is sent when someone says hello in a direct message.
func (h *Handler) GreetingEmbed() *discordgo.MessageEmbed {
	return h.embed("Welcome to Your Personal Assistant",
		Greeting+" I'm "+Name+", your dedicated IMVU modeling assistant. I'm here to help you manage your streams, "+
			"create captions, organize your schedule, and so much more!\n\n"+
			"• Use `/stream create` to register new streams\n"+
			"• Use `/caption imvu` or `/caption instagram` for caption generation\n"+
			"• Use `/schedule weekly` to plan your week\n"+
			"• Use `/help` to see all available commands\n\n"+Support,
		ColorInfo)
}
