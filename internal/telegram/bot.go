package telegram

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Bot struct {
	api *tgbotapi.BotAPI
	h   *Handlers
}

func NewBot(token, webhookURL string, deps Deps) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	// set webhook
	webhook, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return nil, err
	}
	if _, err := api.Request(webhook); err != nil {
		return nil, err
	}
	log.Info().Str("url", webhookURL).Msg("telegram: webhook set")

	return &Bot{api: api, h: NewHandlers(api, deps)}, nil
}

// Webhook HTTP handler (registered at /telegram/webhook)
func (b *Bot) WebhookHandler(w http.ResponseWriter, r *http.Request) {
	serveUpdate(b.h, w, r)
}

func serveUpdate(h *Handlers, w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "bad update", http.StatusBadRequest)
		return
	}
	switch {
	case update.Message != nil:
		log.Debug().Int64("chat_id", update.Message.Chat.ID).Str("text", update.Message.Text).Msg("webhook: message")
		go h.HandleMessage(update.Message)
	case update.CallbackQuery != nil:
		log.Debug().Str("data", update.CallbackQuery.Data).Msg("webhook: callback")
		go h.HandleCallback(update.CallbackQuery)
	default:
		log.Debug().Msg("webhook: ignored update")
	}
	w.WriteHeader(http.StatusOK)
}
