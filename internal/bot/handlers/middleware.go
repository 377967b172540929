// Package handlers contains the Telegram handlers, their registration table
// and handler middleware.
package handlers

import (
	"context"
	"runtime/debug"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Recover stops a panicking handler from taking the process down. Handlers
// run on their own goroutines, so an unrecovered panic would be fatal.
func Recover(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			defer func() {
				if r := recover(); r != nil {
					deps.Logger.ErrorContext(ctx, "Handler panicked",
						"middleware", "Recover",
						"update_id", update.ID,
						"panic", r,
						"stack", string(debug.Stack()))
				}
			}()
			next(ctx, bot, update)
		}
	}
}

// NewDefaultHandler logs updates no other handler matched.
func NewDefaultHandler(deps HandlerDeps) tgbot.HandlerFunc {
	log := deps.Logger.With("handler", "default")
	return func(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
		log.DebugContext(ctx, "Ignoring update", "update_id", update.ID)
	}
}
