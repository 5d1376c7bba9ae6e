package bot

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/aurelius-bot/aurelius"
	"github.com/aurelius-bot/aurelius/internal/notify"
)

// Handler implements every slash command on top of the engine. It has no
// Discord connection of its own; replies go through a Responder and direct
// messages through a Notifier.
type Handler struct {
	engine   *aurelius.Engine
	notifier notify.Notifier
	// IconURL is shown in embed footers once the bot user is known.
	IconURL string
}

func NewHandler(engine *aurelius.Engine, notifier notify.Notifier) *Handler {
	return &Handler{engine: engine, notifier: notifier}
}

// Handle routes one command invocation.
func (h *Handler) Handle(ctx context.Context, req Request, resp Responder) error {
	switch req.Command {
	case "stream":
		return h.stream(ctx, req, resp)
	case "caption":
		return h.caption(ctx, req, resp)
	case "schedule":
		return h.schedule(req, resp)
	case "review":
		return h.review(ctx, req, resp)
	case "request":
		return h.request(ctx, req, resp)
	case "profile":
		return h.profile(req, resp)
	case "help":
		return h.help(req, resp)
	}
	return fmt.Errorf("no command matching %q", req.Command)
}

func (h *Handler) embed(title, description string, color int) *discordgo.MessageEmbed {
	return NewEmbed(title, description, color, h.IconURL)
}

func (h *Handler) reply(resp Responder, e *discordgo.MessageEmbed) error {
	return resp.Reply(Reply{Embeds: []*discordgo.MessageEmbed{e}})
}

func (h *Handler) ephemeral(resp Responder, e *discordgo.MessageEmbed) error {
	return resp.Reply(Reply{Embeds: []*discordgo.MessageEmbed{e}, Ephemeral: true})
}

// fail logs err and answers with the generic error embed for one action.
func (h *Handler) fail(resp Responder, title, doing string, err error) error {
	log.Printf("aurelius bot: error %s: %v", doing, err)
	return h.ephemeral(resp, h.embed(title,
		fmt.Sprintf("I encountered an error while %s. Please try again later.", doing), ColorError))
}

// genericError is the reply used when a handler fails outright.
func (h *Handler) genericError() Reply {
	return Reply{
		Embeds: []*discordgo.MessageEmbed{h.embed("Something went wrong",
			"I apologize, but I encountered an issue while processing your request. Please try again later.", ColorError)},
		Ephemeral: true,
	}
}

func (h *Handler) dm(ctx context.Context, userID, title, body string) {
	if h.notifier == nil {
		return
	}
	err := h.notifier.Notify(ctx, userID, notify.Message{Title: title, Body: body, Level: notify.LevelInfo})
	if err != nil {
		log.Printf("aurelius bot: could not send DM to user %s: %v", userID, err)
	}
}

func (h *Handler) date(t time.Time) string {
	return t.In(h.engine.Location()).Format("1/2/2006")
}

func (h *Handler) dateTime(t time.Time) string {
	return t.In(h.engine.Location()).Format("1/2/2006, 3:04:05 PM")
}
