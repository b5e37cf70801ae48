package notifier

import (
	"context"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Apsteward8/market-scanner/pkg/models"
)

// Telegram caps bots at roughly 30 messages/min per chat; space sends out to
// stay under it.
const telegramSendInterval = 2 * time.Second

// TelegramNotifier sends alerts to a Telegram chat.
type TelegramNotifier struct {
	bot          *tgbotapi.BotAPI
	chatID       int64
	sendInterval time.Duration

	mu       sync.Mutex
	lastSend time.Time
}

// NewTelegramNotifier creates a notifier for the given bot token and chat.
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	if _, err := bot.GetMe(); err != nil {
		return nil, fmt.Errorf("failed to verify telegram bot: %w", err)
	}

	return &TelegramNotifier{
		bot:          bot,
		chatID:       chatID,
		sendInterval: telegramSendInterval,
	}, nil
}

// waitTurn blocks until this caller owns the next send slot. The interval is
// re-checked after every wait so concurrent callers cannot both claim the
// same slot.
func (t *TelegramNotifier) waitTurn(ctx context.Context) error {
	for {
		t.mu.Lock()
		wait := t.sendInterval - time.Since(t.lastSend)
		if wait <= 0 {
			t.lastSend = time.Now()
			t.mu.Unlock()
			return nil
		}
		t.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// SendAlert delivers an opportunity alert, pacing sends to respect Telegram's
// per-chat limit.
func (t *TelegramNotifier) SendAlert(ctx context.Context, opp models.Opportunity) error {
	if err := t.waitTurn(ctx); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(t.chatID, formatAlert(opp))
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram alert: %w", err)
	}
	return nil
}
