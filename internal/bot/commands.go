package bot

import (
	"github.com/bwmarrin/discordgo"
)

type choice struct{ name, value string }

func stringOpt(name, desc string, required bool, choices ...choice) *discordgo.ApplicationCommandOption {
	o := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: desc,
		Required:    required,
	}
	for _, c := range choices {
		o.Choices = append(o.Choices, &discordgo.ApplicationCommandOptionChoice{Name: c.name, Value: c.value})
	}
	return o
}

func intOpt(name, desc string, required bool, bounds ...float64) *discordgo.ApplicationCommandOption {
	o := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        name,
		Description: desc,
		Required:    required,
	}
	if len(bounds) == 2 {
		o.MinValue = &bounds[0]
		o.MaxValue = bounds[1]
	}
	return o
}

func subcommand(name, desc string, opts ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        name,
		Description: desc,
		Options:     opts,
	}
}

var itemTypes = []choice{
	{"Outfit", "outfit"}, {"Top", "top"}, {"Bottom", "bottom"}, {"Dress", "dress"},
	{"Shoes", "shoes"}, {"Accessories", "accessories"}, {"Hair", "hair"},
	{"Makeup", "makeup"}, {"Bundle", "bundle"},
}

var captionStyles = []choice{
	{"Elegant", "elegant"}, {"Casual", "casual"}, {"Professional", "professional"}, {"Creative", "creative"},
}

// Commands returns the slash command set registered with Discord.
func Commands() []*discordgo.ApplicationCommand {
	dm := true
	return []*discordgo.ApplicationCommand{
		{
			Name:         "stream",
			Description:  "Manage your IMVU modeling streams",
			DMPermission: &dm,
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("create", "Register a new stream",
					stringOpt("item_name", "Name of the IMVU item to stream", true),
					stringOpt("creator_name", "Name of the creator/shop owner", true),
					intOpt("due_days", "Days until due (1-7)", true, 1, 7),
					stringOpt("creator_id", "Creator's IMVU ID (optional)", false),
					stringOpt("agency_name", "Agency name (optional)", false),
					stringOpt("priority", "Priority level", false,
						choice{"Low", "low"}, choice{"Medium", "medium"}, choice{"High", "high"}),
					stringOpt("stream_type", "Type of stream", false,
						choice{"Showcase", "showcase"}, choice{"Sponsored", "sponsored"}, choice{"Open Shop", "open"}),
					stringOpt("notes", "Additional notes (optional)", false),
				),
				subcommand("complete", "Mark a stream as complete",
					intOpt("stream_id", "ID of the stream to complete", true)),
				subcommand("list", "View your active streams",
					stringOpt("status", "Filter by status", false,
						choice{"Active", "active"}, choice{"Completed", "completed"}, choice{"Overdue", "overdue"})),
				subcommand("info", "Get detailed information about a stream",
					intOpt("stream_id", "ID of the stream to view", true)),
			},
		},
		{
			Name:        "caption",
			Description: "Generate captions for your IMVU and Instagram posts",
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("imvu", "Generate IMVU feed caption",
					stringOpt("item_name", "Name of the IMVU item", true),
					stringOpt("creator_name", "Creator's IMVU avatar name", true),
					stringOpt("item_id", "Item ID from product page", true),
					stringOpt("manufacturer_id", "Creator's manufacturer ID", true),
					stringOpt("agency_name", "Agency name for format", true),
					stringOpt("shop_link", "Creator's shop link (optional)", false),
					stringOpt("additional_tags", "Additional tags to include (optional)", false),
				),
				subcommand("instagram", "Generate Instagram caption",
					stringOpt("item_name", "Name of the IMVU item", true),
					stringOpt("creator_name", "Creator's name", true),
					stringOpt("creator_instagram", "Creator's Instagram handle", true),
					stringOpt("agency_instagram", "Agency's Instagram handle", true),
					stringOpt("agency_name", "Agency name for format", true),
					stringOpt("item_id", "Item ID from product page", true),
					stringOpt("additional_tags", "Additional tags to include (optional)", false),
				),
				subcommand("template", "View caption templates for agencies",
					stringOpt("agency_name", "Agency to view template for", true)),
			},
		},
		{
			Name:        "schedule",
			Description: "Manage your weekly modeling schedule",
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("weekly", "Plan your weekly schedule",
					stringOpt("monday", "Monday activities (comma-separated)", false),
					stringOpt("tuesday", "Tuesday activities (comma-separated)", false),
					stringOpt("wednesday", "Wednesday activities (comma-separated)", false),
					stringOpt("thursday", "Thursday activities (comma-separated)", false),
					stringOpt("friday", "Friday activities (comma-separated)", false),
					stringOpt("saturday", "Saturday activities (comma-separated)", false),
					stringOpt("sunday", "Sunday activities (comma-separated)", false),
				),
				subcommand("view", "View your current weekly schedule",
					intOpt("week_offset", "Week to view (0 = current, 1 = next, -1 = previous)", false, -4, 4)),
				subcommand("reminder", "Set up schedule reminders",
					stringOpt("day", "Day of the week", true,
						choice{"Monday", "monday"}, choice{"Tuesday", "tuesday"}, choice{"Wednesday", "wednesday"},
						choice{"Thursday", "thursday"}, choice{"Friday", "friday"}, choice{"Saturday", "saturday"},
						choice{"Sunday", "sunday"}),
					stringOpt("time", "Time for reminder (HH:MM format)", true),
					stringOpt("message", "Custom reminder message", true),
				),
			},
		},
		{
			Name:         "review",
			Description:  "Generate detailed reviews for IMVU items",
			DMPermission: &dm,
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("generate", "Generate a detailed review for an item",
					stringOpt("item_name", "Name of the IMVU item", true),
					stringOpt("item_id", "Item ID from product page", true),
					stringOpt("creator_name", "Creator's name", true),
					stringOpt("item_type", "Type of item", true, itemTypes...),
					stringOpt("color_scheme", "Main colors of the item", true),
					intOpt("rating", "Rating from 1-5 stars", true, 1, 5),
					stringOpt("style", "Style of the item", false,
						choice{"Casual", "casual"}, choice{"Formal", "formal"}, choice{"Party", "party"},
						choice{"Gothic", "gothic"}, choice{"Cute", "cute"}, choice{"Elegant", "elegant"},
						choice{"Streetwear", "streetwear"}, choice{"Vintage", "vintage"}),
					stringOpt("special_features", "Special features or details (optional)", false),
				),
				subcommand("template", "View review templates for different item types",
					stringOpt("item_type", "Type of item to view template for", true, itemTypes...)),
				subcommand("history", "View your review history",
					intOpt("limit", "Number of reviews to show (max 10)", false, 1, 10)),
			},
		},
		{
			Name:        "request",
			Description: "Generate request formats for different agencies",
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("format", "Generate a request format",
					stringOpt("agency_name", "Agency to generate request format for", true),
					stringOpt("item_name", "Name of the item you want to request", true),
					stringOpt("creator_name", "Creator's name", true),
					stringOpt("imvu_link", "Your IMVU avatar link", true),
					stringOpt("instagram_handle", "Your Instagram handle (without @)", true),
				),
				subcommand("template", "View request templates for agencies",
					stringOpt("agency_name", "Agency to view template for", true)),
			},
		},
		{
			Name:        "profile",
			Description: "Manage your modeling profile and preferences",
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("setup", "Set up your modeling profile",
					stringOpt("imvu_name", "Your IMVU avatar name", true),
					stringOpt("instagram_handle", "Your Instagram handle (without @)", true),
					stringOpt("timezone", "Your timezone (e.g., UTC, EST, PST)", true),
					stringOpt("preferred_agencies", "Your preferred agencies (comma-separated)", false),
					stringOpt("caption_style", "Your preferred caption style", false, captionStyles...),
				),
				subcommand("view", "View your current profile"),
				subcommand("update", "Update specific profile information",
					stringOpt("field", "Field to update", true,
						choice{"IMVU Name", "imvu_name"}, choice{"Instagram Handle", "instagram_handle"},
						choice{"Timezone", "timezone"}, choice{"Preferred Agencies", "preferred_agencies"},
						choice{"Caption Style", "caption_style"}),
					stringOpt("value", "New value for the field", true),
				),
			},
		},
		{
			Name:         "help",
			Description:  "Get help with Aurelius commands",
			DMPermission: &dm,
			Options: []*discordgo.ApplicationCommandOption{
				stringOpt("category", "Category to get help for", false,
					choice{"Stream Management", "stream"}, choice{"Caption Generation", "caption"},
					choice{"Schedule Planning", "schedule"}, choice{"Review Writing", "review"},
					choice{"All Commands", "all"}),
			},
		},
	}
}
