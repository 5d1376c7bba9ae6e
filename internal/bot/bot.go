// Package bot connects the engine to Discord: slash commands, the DM
// greeting and direct-message notifications.
package bot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"

	"github.com/aurelius-bot/aurelius"
	"github.com/aurelius-bot/aurelius/internal/notify"
)

// Bot owns the gateway session.
type Bot struct {
	session *discordgo.Session
	handler *Handler
	ready   atomic.Bool
}

// New creates a bot for token. Nothing connects until Open.
func New(engine *aurelius.Engine, token string) (*Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("discord token is required")
	}
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	b := &Bot{session: s}
	b.handler = NewHandler(engine, &DMNotifier{Session: s, IconURL: b.iconURL})

	s.AddHandler(b.onReady)
	s.AddHandler(b.onInteraction)
	s.AddHandler(b.onMessage)
	return b, nil
}

// Open connects to the gateway.
func (b *Bot) Open() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to connect to discord: %w", err)
	}
	return nil
}

func (b *Bot) Close() error {
	b.ready.Store(false)
	return b.session.Close()
}

// Ready reports whether the gateway session has been established.
func (b *Bot) Ready() bool { return b.ready.Load() }

// Session exposes the gateway session for command registration.
func (b *Bot) Session() *discordgo.Session { return b.session }

// Notifier delivers DMs through this bot's session.
func (b *Bot) Notifier() notify.Notifier { return b.handler.notifier }

func (b *Bot) iconURL() string {
	if b.session.State == nil || b.session.State.User == nil {
		return ""
	}
	return b.session.State.User.AvatarURL("")
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.handler.IconURL = r.User.AvatarURL("")
	if err := s.UpdateWatchStatus(0, "your modeling journey"); err != nil {
		log.Printf("aurelius bot: failed to set presence: %v", err)
	}
	b.ready.Store(true)
	log.Printf("aurelius bot: %s is online as %s", Name, r.User.String())
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	req := requestFromInteraction(i)
	resp := &interactionResponder{s: s, i: i.Interaction}
	b.dispatch(context.Background(), req, resp)
}

// dispatch runs one command, turning errors and panics into the generic
// error reply.
func (b *Bot) dispatch(ctx context.Context, req Request, resp Responder) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("aurelius bot: panic executing /%s %s: %v", req.Command, req.Subcommand, r)
			b.replyError(resp)
		}
	}()
	if err := b.handler.Handle(ctx, req, resp); err != nil {
		log.Printf("aurelius bot: error executing /%s %s: %v", req.Command, req.Subcommand, err)
		b.replyError(resp)
	}
}

func (b *Bot) replyError(resp Responder) {
	if err := resp.Reply(b.handler.genericError()); err != nil {
		log.Printf("aurelius bot: failed to send error reply: %v", err)
	}
}

func (b *Bot) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID != "" {
		return
	}
	if !IsGreeting(m.Content) {
		return
	}
	if _, err := s.ChannelMessageSendEmbedReply(m.ChannelID, b.handler.GreetingEmbed(), m.Reference()); err != nil {
		log.Printf("aurelius bot: failed to answer DM greeting: %v", err)
	}
}

// IsGreeting reports whether a direct message should get the welcome reply.
func IsGreeting(content string) bool {
	c := strings.ToLower(content)
	return strings.Contains(c, "hello") || strings.Contains(c, "hi")
}

// DMNotifier sends notifications as direct-message embeds.
type DMNotifier struct {
	Session *discordgo.Session
	// IconURL, when set, supplies the embed footer icon.
	IconURL func() string
}

func (n *DMNotifier) Notify(_ context.Context, userID string, msg notify.Message) error {
	ch, err := n.Session.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("failed to open DM channel: %w", err)
	}
	icon := ""
	if n.IconURL != nil {
		icon = n.IconURL()
	}
	if _, err := n.Session.ChannelMessageSendEmbed(ch.ID, NewEmbed(msg.Title, msg.Body, levelColor(msg.Level), icon)); err != nil {
		return fmt.Errorf("failed to send DM: %w", err)
	}
	return nil
}

// RegisterCommands replaces the application's slash commands. With a
// guild ID the commands are scoped to that guild and appear immediately;
// otherwise they are global.
func RegisterCommands(s *discordgo.Session, appID, guildID string) ([]*discordgo.ApplicationCommand, error) {
	if appID == "" {
		return nil, fmt.Errorf("application id is required")
	}
	cmds, err := s.ApplicationCommandBulkOverwrite(appID, guildID, Commands())
	if err != nil {
		return nil, fmt.Errorf("failed to register commands: %w", err)
	}
	return cmds, nil
}
