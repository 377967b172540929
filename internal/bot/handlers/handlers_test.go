package handlers

import (
	"context"
	"io"
	"log/slog"
	"testing"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/photobot/internal/ingest"
)

type recordingProcessor struct {
	events []ingest.PhotoEvent
}

func (r *recordingProcessor) Process(_ context.Context, ev ingest.PhotoEvent) ingest.Outcome {
	r.events = append(r.events, ev)
	return ingest.Outcome{Stage: ingest.StageDone}
}

func testDeps(p PhotoProcessor) HandlerDeps {
	return HandlerDeps{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Pipeline: p,
	}
}

func photoMessage() *models.Message {
	return &models.Message{
		ID:      10,
		Chat:    models.Chat{ID: 555, Type: models.ChatTypeGroup, Title: "Family"},
		From:    &models.User{ID: 1, Username: "mom", FirstName: "Ann"},
		Caption: "hi",
		Photo: []models.PhotoSize{
			{FileID: "s", Width: 90, Height: 67},
			{FileID: "l", Width: 1280, Height: 960},
		},
	}
}

func TestIsPhotoMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		update *models.Update
		want   bool
	}{
		{name: "nil update", update: nil},
		{name: "no message", update: &models.Update{}},
		{name: "text message", update: &models.Update{Message: &models.Message{Text: "hello"}}},
		{name: "photo message", update: &models.Update{Message: photoMessage()}, want: true},
		{name: "edited photo", update: &models.Update{EditedMessage: photoMessage()}},
		{name: "channel photo", update: &models.Update{ChannelPost: photoMessage()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsPhotoMessage(tt.update))
		})
	}
}

func TestPhotoEventFromMessage(t *testing.T) {
	t.Parallel()

	ev := PhotoEventFromMessage(photoMessage())
	assert.Equal(t, int64(555), ev.ChatID)
	assert.Equal(t, "Family", ev.ChatTitle)
	assert.Equal(t, "mom", ev.Sender)
	assert.Equal(t, "hi", ev.Caption)
	require.Len(t, ev.Variants, 2)
	assert.Equal(t, ingest.Variant{FileID: "l", Width: 1280, Height: 960}, ev.Variants[1])

	msg := photoMessage()
	msg.From = &models.User{FirstName: "John", LastName: "Doe"}
	assert.Equal(t, "John Doe", PhotoEventFromMessage(msg).Sender)

	msg.From = nil
	msg.Chat = models.Chat{ID: 42, Type: models.ChatTypePrivate}
	ev = PhotoEventFromMessage(msg)
	assert.Empty(t, ev.Sender)
	assert.Empty(t, ev.ChatTitle)
	assert.Equal(t, "Private", ingest.GroupName(ev.ChatTitle))
}

func TestPhotoHandler_ProcessesEvent(t *testing.T) {
	t.Parallel()

	proc := &recordingProcessor{}
	h := NewPhotoHandler(testDeps(proc))

	h(context.Background(), nil, &models.Update{ID: 1, Message: photoMessage()})
	h(context.Background(), nil, &models.Update{ID: 2, Message: &models.Message{Text: "not a photo"}})

	require.Len(t, proc.events, 1)
	assert.Equal(t, int64(555), proc.events[0].ChatID)
}

func TestRecover(t *testing.T) {
	t.Parallel()

	mw := Recover(testDeps(nil))
	h := mw(func(context.Context, *tgbot.Bot, *models.Update) { panic("boom") })

	assert.NotPanics(t, func() { h(context.Background(), nil, &models.Update{ID: 3}) })
}

func TestRegisterAllHandlers(t *testing.T) {
	t.Parallel()

	handlers := RegisterAllHandlers(testDeps(&recordingProcessor{}))

	require.Contains(t, handlers, "photo")
	require.Contains(t, handlers, "/start")
	require.Contains(t, handlers, "/help")
	assert.NotNil(t, handlers["photo"].Match)
	assert.Equal(t, "start", handlers["/start"].Pattern)
	for name, h := range handlers {
		assert.NotNil(t, h.Handler, name)
	}
}

func TestHelpMessage(t *testing.T) {
	t.Parallel()

	assert.NotContains(t, helpMessage(""), "Browse")
	assert.Contains(t, helpMessage("https://photos.example.com"), "https://photos.example.com/")
}
