package telegram

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
)

// Send delivers one message to each chat via the Telegram Bot API.
func Send(ctx context.Context, token string, chatIDs []int64, text string) error {
	b, err := bot.New(token)
	if err != nil {
		return fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}

	for _, chatID := range chatIDs {
		params := &bot.SendMessageParams{
			ChatID: chatID,
			Text:   text,
		}
		if _, err := b.SendMessage(ctx, params); err != nil {
			return fmt.Errorf("failed to send Telegram message to chat_id %d: %w", chatID, err)
		}
	}
	return nil
}
