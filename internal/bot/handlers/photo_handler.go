package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/photobot/internal/ingest"
)

// IsPhotoMessage matches new messages carrying at least one photo size.
// Edited messages and channel posts are not matched.
func IsPhotoMessage(update *models.Update) bool {
	return update != nil && update.Message != nil && len(update.Message.Photo) > 0
}

// PhotoEventFromMessage extracts the ingestion input from a Telegram message.
func PhotoEventFromMessage(msg *models.Message) ingest.PhotoEvent {
	ev := ingest.PhotoEvent{
		ChatID:    msg.Chat.ID,
		ChatTitle: msg.Chat.Title,
		Caption:   msg.Caption,
		Variants:  make([]ingest.Variant, 0, len(msg.Photo)),
	}
	if msg.From != nil {
		ev.Sender = ingest.SenderName(msg.From.Username, msg.From.FirstName, msg.From.LastName)
	}
	for _, p := range msg.Photo {
		ev.Variants = append(ev.Variants, ingest.Variant{FileID: p.FileID, Width: p.Width, Height: p.Height})
	}
	return ev
}

// NewPhotoHandler returns the handler that archives posted photos.
func NewPhotoHandler(deps HandlerDeps) bot.HandlerFunc {
	return photoHandler{deps}.Handle
}

type photoHandler struct {
	deps HandlerDeps
}

// Handle runs the pipeline; the outcome is logged by the pipeline and the
// sender gets no reply.
func (h photoHandler) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if !IsPhotoMessage(update) {
		return
	}
	log := h.deps.Logger.With("handler", "photo")
	log.DebugContext(ctx, "Received photo", "chat_id", update.Message.Chat.ID, "message_id", update.Message.ID)

	h.deps.Pipeline.Process(ctx, PhotoEventFromMessage(update.Message))
}
