package error_notificator

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Infra struct {
	bot    Sender
	chatID int64
}

func NewInfra(bot Sender, chatID int64) *Infra {
	return &Infra{bot: bot, chatID: chatID}
}

// NewTelegramInfra connects to the Bot API with the given token.
func NewTelegramInfra(token string, chatID int64) (*Infra, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	return NewInfra(bot, chatID), nil
}

func (i *Infra) Notify(ctx context.Context, source string, err error, details string) error {
	if i.bot == nil {
		return fmt.Errorf("telegram bot not configured")
	}

	text := fmt.Sprintf(
		"❗ Conversion backend fault (%s)\n\nError: %v\n\nDetails: %s",
		source,
		err,
		details,
	)

	if _, sendErr := i.bot.Send(tgbotapi.NewMessage(i.chatID, text)); sendErr != nil {
		log.Printf("[error_notificator] send fail: %v", sendErr)
		return sendErr
	}
	return nil
}
