package error_notificator

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Notificator interface {
	// Notify sends a backend fault to the operator chat
	Notify(ctx context.Context, source string, err error, details string) error
}

// Sender: the part of *tgbotapi.BotAPI we use
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}
