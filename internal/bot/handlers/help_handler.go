package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// helpMessage builds the /help text. The archive link is only included when
// the bot knows its public URL.
func helpMessage(publicURL string) string {
	var sb strings.Builder
	sb.WriteString("I save the largest version of every photo posted in this chat, ")
	sb.WriteString("together with its caption and sender.\n\n")
	sb.WriteString("Commands:\n/start - introduction\n/help - this message")
	if publicURL != "" {
		sb.WriteString("\n\nBrowse the archive: ")
		sb.WriteString(publicURL)
		sb.WriteString("/")
	}
	return sb.String()
}

// NewHelpHandler returns a handler for the /help command.
func NewHelpHandler(deps HandlerDeps) bot.HandlerFunc {
	return helpHandler{deps}.Handle
}

type helpHandler struct {
	deps HandlerDeps
}

func (h helpHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "help")

	if update.Message == nil {
		log.WarnContext(ctx, "Help handler received update without message", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Handling /help command", "chat_id", chatID)

	publicURL := ""
	if h.deps.Config != nil {
		publicURL = h.deps.Config.PublicURL
	}
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: helpMessage(publicURL)})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send help message", "error", err, "chat_id", chatID)
	} else {
		log.DebugContext(ctx, "Sent help message", "chat_id", chatID)
	}
}
