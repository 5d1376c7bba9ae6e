package bot

import (
	"math/rand/v2"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/aurelius-bot/aurelius/internal/notify"
)

const Name = "Aurelius"

// Symbols used in embed text.
const (
	SymbolTitle       = "◆"
	SymbolAccent      = "◇"
	SymbolFooter      = "❧"
	SymbolAchievement = "✦"
	SymbolBullet      = "•"
	SymbolHeart       = "♡"
)

// Embed colors.
const (
	ColorPrimary   = 0x6B73FF
	ColorSecondary = 0x9B59B6
	ColorSuccess   = 0x2ECC71
	ColorWarning   = 0xF39C12
	ColorError     = 0xE74C3C
	ColorInfo      = 0x3498DB
)

// Personality lines.
const (
	Greeting      = "Hello there, beautiful!"
	Encouragement = "You're doing amazing work!"
	Support       = "I'm here to help make your modeling journey smoother."
	Farewell      = "Take care and keep shining!"
)

var mottos = []string{
	"In gentle guidance, creativity finds its truest expression.",
	"Every stream is a step toward greater artistry.",
	"Structure and beauty dance together in perfect harmony.",
	"Your dedication transforms dreams into reality.",
	"In the rhythm of creation, magic happens.",
	"Each moment of organization is a gift to your future self.",
	"The path to excellence is paved with careful planning.",
	"Your passion illuminates every project you touch.",
}

func motto() string {
	return mottos[rand.IntN(len(mottos))]
}

// NewEmbed builds the house-style embed: a diamond-prefixed title, the
// current timestamp and a random footer motto.
func NewEmbed(title, description string, color int, iconURL string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       SymbolTitle + " " + title,
		Description: description,
		Color:       color,
		Timestamp:   time.Now().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text:    SymbolFooter + " " + motto(),
			IconURL: iconURL,
		},
	}
}

func addField(e *discordgo.MessageEmbed, name, value string, inline bool) {
	e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: name, Value: value, Inline: inline})
}

func levelColor(l notify.Level) int {
	switch l {
	case notify.LevelSuccess:
		return ColorSuccess
	case notify.LevelWarning:
		return ColorWarning
	}
	return ColorInfo
}

func codeBlock(s string) string {
	return "```" + s + "```"
}

func orNotSpecified(s string) string {
	if s == "" {
		return "Not specified"
	}
	return s
}
