package bot

import (
	"github.com/bwmarrin/discordgo"
)

// Request is a slash command invocation with its options flattened.
// Option values are string, int64 or bool.
type Request struct {
	Command    string
	Subcommand string
	UserID     string
	GuildID    string
	Options    map[string]any
}

// String returns a string option, or "" when absent.
func (r Request) String(name string) string {
	s, _ := r.Options[name].(string)
	return s
}

// Int returns an integer option and whether it was given.
func (r Request) Int(name string) (int64, bool) {
	n, ok := r.Options[name].(int64)
	return n, ok
}

// Reply is one embed response.
type Reply struct {
	Embeds    []*discordgo.MessageEmbed
	Ephemeral bool
}

// Responder answers a single interaction. Defer acknowledges it so a slow
// handler can Reply later.
type Responder interface {
	Defer() error
	Reply(r Reply) error
}

// requestFromInteraction flattens a slash command. Only one subcommand
// level is used by the command set.
func requestFromInteraction(i *discordgo.InteractionCreate) Request {
	data := i.ApplicationCommandData()
	req := Request{
		Command: data.Name,
		GuildID: i.GuildID,
		Options: map[string]any{},
	}
	switch {
	case i.Member != nil && i.Member.User != nil:
		req.UserID = i.Member.User.ID
	case i.User != nil:
		req.UserID = i.User.ID
	}

	opts := data.Options
	if len(opts) == 1 && opts[0].Type == discordgo.ApplicationCommandOptionSubCommand {
		req.Subcommand = opts[0].Name
		opts = opts[0].Options
	}
	for _, o := range opts {
		switch o.Type {
		case discordgo.ApplicationCommandOptionString:
			req.Options[o.Name] = o.StringValue()
		case discordgo.ApplicationCommandOptionInteger:
			req.Options[o.Name] = o.IntValue()
		case discordgo.ApplicationCommandOptionBoolean:
			req.Options[o.Name] = o.BoolValue()
		}
	}
	return req
}

// interactionResponder answers through the Discord interaction webhooks.
type interactionResponder struct {
	s        *discordgo.Session
	i        *discordgo.Interaction
	replied  bool
	deferred bool
}

func (r *interactionResponder) Defer() error {
	err := r.s.InteractionRespond(r.i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err == nil {
		r.deferred = true
	}
	return err
}

// replyRoute picks the webhook call for a reply given what the interaction
// has already received.
type replyRoute int

const (
	routeRespond replyRoute = iota
	routeEdit
	routeReplacePlaceholder
	routeFollowup
)

// routeFor maps responder state to a route. An ephemeral reply to a deferred
// interaction cannot reuse the public "thinking" placeholder, so the
// placeholder is deleted and the reply goes out as an ephemeral followup.
func routeFor(replied, deferred, ephemeral bool) replyRoute {
	switch {
	case replied:
		return routeFollowup
	case deferred && ephemeral:
		return routeReplacePlaceholder
	case deferred:
		return routeEdit
	}
	return routeRespond
}

func (r *interactionResponder) Reply(rep Reply) error {
	var flags discordgo.MessageFlags
	if rep.Ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}

	var err error
	switch routeFor(r.replied, r.deferred, rep.Ephemeral) {
	case routeFollowup:
		_, err = r.s.FollowupMessageCreate(r.i, true, &discordgo.WebhookParams{Embeds: rep.Embeds, Flags: flags})
		return err
	case routeReplacePlaceholder:
		if err = r.s.InteractionResponseDelete(r.i); err != nil {
			return err
		}
		_, err = r.s.FollowupMessageCreate(r.i, true, &discordgo.WebhookParams{Embeds: rep.Embeds, Flags: flags})
	case routeEdit:
		embeds := rep.Embeds
		_, err = r.s.InteractionResponseEdit(r.i, &discordgo.WebhookEdit{Embeds: &embeds})
	default:
		err = r.s.InteractionRespond(r.i, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{Embeds: rep.Embeds, Flags: flags},
		})
	}
	if err == nil {
		r.replied = true
	}
	return err
}
