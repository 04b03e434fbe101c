package telegram

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/B3hnamR/P24-SlotHunter-sub000/internal/notify"
)

// Messenger adapts the bot API to the fan-out's channel interface and maps
// API failures onto the delivery taxonomy.
type Messenger struct {
	bot *tgbotapi.BotAPI
	log *zap.Logger
}

func NewMessenger(bot *tgbotapi.BotAPI, log *zap.Logger) *Messenger {
	return &Messenger{bot: bot, log: log}
}

// Send delivers one text message. The returned error, if any, is a
// *notify.DeliveryError.
func (m *Messenger) Send(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return &notify.DeliveryError{Permanent: false, Err: err}
	}
	_, err := m.bot.Send(tgbotapi.NewMessage(chatID, text))
	if err == nil {
		return nil
	}
	return &notify.DeliveryError{Permanent: isPermanent(err), Err: err}
}

// isPermanent separates "this recipient is gone" from "try again next cycle".
// Blocked bots and deleted chats answer 403 (or a 400 chat-not-found);
// rate limits and platform hiccups do not.
func isPermanent(err error) bool {
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Code {
	case 403:
		return true
	case 400:
		msg := strings.ToLower(apiErr.Message)
		return strings.Contains(msg, "chat not found") || strings.Contains(msg, "user is deactivated")
	default:
		return false
	}
}
