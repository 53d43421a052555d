package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	tele "gopkg.in/telebot.v4"
)

// Telegram mirrors reminders to a chat. Send-only: the bot never polls for
// updates.
type Telegram struct {
	bot  *tele.Bot
	chat tele.ChatID
	log  zerolog.Logger
}

func NewTelegram(token string, chatID int64, log zerolog.Logger) (*Telegram, error) {
	bot, err := tele.NewBot(tele.Settings{Token: token})
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &Telegram{bot: bot, chat: tele.ChatID(chatID), log: log}, nil
}

func (t *Telegram) Notify(ctx context.Context, n Notification) error {
	text := fmt.Sprintf("⏰ %s\n%s", n.Summary, n.Body)
	if _, err := t.bot.Send(t.chat, text); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	t.log.Debug().Str("summary", n.Summary).Msg("telegram notification sent")
	return nil
}
