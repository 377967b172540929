package handlers

import (
	tgbot "github.com/go-telegram/bot"
)

// RegisteredHandler describes one handler registration. When Match is set the
// handler is registered with it and HandlerType, Pattern and MatchType are ignored.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
	Match       tgbot.MatchFunc
}

// RegisterAllHandlers returns the bot's handlers keyed by name.
func RegisterAllHandlers(deps HandlerDeps) map[string]RegisteredHandler {
	handlers := make(map[string]RegisteredHandler)
	recovery := []tgbot.Middleware{Recover(deps)}

	handlers["photo"] = RegisteredHandler{
		Match:      IsPhotoMessage,
		Handler:    NewPhotoHandler(deps),
		Middleware: recovery,
	}
	handlers["/start"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "start",
		Handler:     NewStartHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  recovery,
	}
	handlers["/help"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "help",
		Handler:     NewHelpHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  recovery,
	}

	return handlers
}
