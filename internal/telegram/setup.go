// Package telegram creates the Telegram client, registers handlers and
// chooses between long polling and webhook delivery.
package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"

	"github.com/edgard/photobot/internal/bot/handlers"
	"github.com/edgard/photobot/internal/config"
	"github.com/edgard/photobot/internal/logger"
)

// NewTelegramBot creates a new Telegram bot instance using the go-telegram/bot library.
func NewTelegramBot(token string, logger *slog.Logger, opts ...bot.Option) (*bot.Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "telegram_bot")

	b, err := bot.New(token, opts...)
	if err != nil {
		log.Error("Failed to create Telegram bot instance", "error", err)
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	log.Info("Telegram bot instance created successfully", "token_prefix", tokenPrefix(token))
	return b, nil
}

// BotOptions returns the client options for cfg: update logging, the
// fallback handler, error logging and, in webhook mode, the secret token.
func BotOptions(cfg *config.Config, log *slog.Logger, deps handlers.HandlerDeps) []bot.Option {
	errLog := log.With("component", "telegram_bot")
	opts := []bot.Option{
		bot.WithMiddlewares(logger.Middleware(log)),
		bot.WithDefaultHandler(handlers.NewDefaultHandler(deps)),
		bot.WithErrorsHandler(func(err error) {
			errLog.Error("Telegram client error", "error", err)
		}),
	}
	if cfg.UseWebhook && cfg.WebhookSecret != "" {
		opts = append(opts, bot.WithWebhookSecretToken(cfg.WebhookSecret))
	}
	return opts
}

// applyMiddleware wraps a handler function with a slice of middleware.
// Middleware are applied in reverse order so the first one in the slice is the outermost.
func applyMiddleware(handler bot.HandlerFunc, mw []bot.Middleware) bot.HandlerFunc {
	for i := len(mw) - 1; i >= 0; i-- {
		handler = mw[i](handler)
	}
	return handler
}

// handlerRegistrar is the registration surface of *bot.Bot.
type handlerRegistrar interface {
	RegisterHandler(handlerType bot.HandlerType, pattern string, matchType bot.MatchType, f bot.HandlerFunc, m ...bot.Middleware) string
	RegisterHandlerMatchFunc(matchFunc bot.MatchFunc, f bot.HandlerFunc, m ...bot.Middleware) string
}

// RegisterHandlers registers the handler table, applying each entry's middleware.
func RegisterHandlers(b handlerRegistrar, logger *slog.Logger, registeredHandlers map[string]handlers.RegisteredHandler) error {
	if b == nil {
		return fmt.Errorf("bot instance cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "handler_registry")

	if len(registeredHandlers) == 0 {
		log.Warn("No handlers provided for registration.")
		return nil
	}

	registered := 0
	for name, regHandler := range registeredHandlers {
		if regHandler.Handler == nil {
			log.Warn("Skipping registration for nil handler", "name", name)
			continue
		}

		finalHandler := applyMiddleware(regHandler.Handler, regHandler.Middleware)
		if regHandler.Match != nil {
			b.RegisterHandlerMatchFunc(regHandler.Match, finalHandler)
		} else {
			b.RegisterHandler(regHandler.HandlerType, regHandler.Pattern, regHandler.MatchType, finalHandler)
		}
		registered++
		log.Debug("Registered handler", "name", name, "match_func", regHandler.Match != nil, "middleware_count", len(regHandler.Middleware))
	}

	log.Info("Registered Telegram handlers", "count", registered)
	return nil
}

// webhookClient is the webhook surface of *bot.Bot.
type webhookClient interface {
	SetWebhook(ctx context.Context, params *bot.SetWebhookParams) (bool, error)
	DeleteWebhook(ctx context.Context, params *bot.DeleteWebhookParams) (bool, error)
}

// ConfigureDelivery points Telegram at the webhook URL in webhook mode, or
// removes any webhook so long polling receives updates.
func ConfigureDelivery(ctx context.Context, b webhookClient, cfg *config.Config, logger *slog.Logger) error {
	log := logger.With("component", "telegram_bot")

	if !cfg.UseWebhook {
		if _, err := b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{}); err != nil {
			return fmt.Errorf("failed to delete webhook: %w", err)
		}
		log.Info("Using long polling")
		return nil
	}

	params := &bot.SetWebhookParams{
		URL:            cfg.WebhookURL(),
		SecretToken:    cfg.WebhookSecret,
		AllowedUpdates: []string{"message"},
	}
	if _, err := b.SetWebhook(ctx, params); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}
	log.Info("Using webhook", "url", params.URL, "secret", cfg.WebhookSecret != "")
	return nil
}

func tokenPrefix(token string) string {
	if len(token) <= 8 {
		return "..."
	}
	return token[:8] + "..."
}
