// Package telegram bridges the wall to Telegram for deployments without an
// SMS gateway. A private chat with the bot acts like a phone: the numeric
// chat ID is the subscriber number, and the first token of each message is
// the destination number.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/mymmrac/telego"

	"smswall/internal/config"
	"smswall/internal/crash"
	"smswall/internal/logger"
	"smswall/internal/models"
	"smswall/internal/sender"
)

// Handler consumes inbound messages. Satisfied by *wall.Wall.
type Handler interface {
	HandleIncoming(msg models.Message, confirmed bool) error
}

// Bridge relays Telegram private messages into the wall and delivers
// outbound messages back over Telegram when the recipient is a chat it has
// seen. Everything else falls through to the wrapped Sender, so SMS
// recipients still get their copies.
type Bridge struct {
	bot      *telego.Bot
	handler  Handler
	fallback sender.Sender

	mu    sync.RWMutex
	chats map[string]int64
}

// NewBridge initializes the bot and verifies the token.
func NewBridge(ctx context.Context, cfg *config.Config) (*Bridge, error) {
	if cfg.Telegram.Token == "" {
		return nil, fmt.Errorf("telegram token is required")
	}

	bot, err := telego.NewBot(cfg.Telegram.Token, telego.WithDefaultDebugLogger())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bot: %w", err)
	}

	botUser, err := bot.GetMe(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get bot info: %w", err)
	}
	logger.Infof("Authorized on account %s", botUser.Username)

	return &Bridge{
		bot:   bot,
		chats: make(map[string]int64),
	}, nil
}

// Start begins long polling and feeding messages to handler. It returns
// once polling is set up; updates are consumed on a background goroutine
// until ctx is cancelled.
func (b *Bridge) Start(ctx context.Context, handler Handler) error {
	b.handler = handler

	updates, err := b.bot.UpdatesViaLongPolling(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to get updates channel: %w", err)
	}

	crash.SafeGoroutine("telegram-bridge", func() {
		for update := range updates {
			if update.Message == nil || update.Message.Chat.Type != "private" {
				continue
			}
			b.handleUpdate(ctx, update.Message)
		}
	})

	return nil
}

func (b *Bridge) handleUpdate(ctx context.Context, tgMsg *telego.Message) {
	chatID := tgMsg.Chat.ID
	number := strconv.FormatInt(chatID, 10)

	b.mu.Lock()
	b.chats[number] = chatID
	b.mu.Unlock()

	text := strings.TrimSpace(tgMsg.Text)
	fields := strings.Fields(text)
	if len(fields) < 2 {
		b.sendTo(ctx, chatID, "Usage: <destination number> <message>. Example: 1000 help")
		return
	}

	msg := models.Message{
		Sender:    number,
		Recipient: fields[0],
		Body:      strings.TrimSpace(strings.TrimPrefix(text, fields[0])),
	}

	if err := b.handler.HandleIncoming(msg, false); err != nil {
		logger.Errorf("Error handling bridged message from chat %d: %v", chatID, err)
		b.sendTo(ctx, chatID, "Something went wrong processing your message. Please try again later.")
	}
}

func (b *Bridge) sendTo(ctx context.Context, chatID int64, text string) {
	_, err := b.bot.SendMessage(ctx, &telego.SendMessageParams{
		ChatID: telego.ChatID{ID: chatID},
		Text:   text,
	})
	if err != nil {
		logger.Warningf("Error sending Telegram message to chat %d: %v", chatID, err)
	}
}

// SendSMS implements sender.Sender. Recipients that map to a known chat get
// the message over Telegram; everyone else goes through the fallback.
func (b *Bridge) SendSMS(from, to, subject, body string) error {
	b.mu.RLock()
	chatID, known := b.chats[to]
	b.mu.RUnlock()

	if !known {
		if b.fallback == nil {
			return fmt.Errorf("no delivery path for recipient %s", to)
		}
		return b.fallback.SendSMS(from, to, subject, body)
	}

	text := fmt.Sprintf("[%s] %s", from, body)
	if subject != "" {
		text = fmt.Sprintf("[%s] %s: %s", from, subject, body)
	}

	_, err := b.bot.SendMessage(context.Background(), &telego.SendMessageParams{
		ChatID: telego.ChatID{ID: chatID},
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("telegram delivery to chat %d failed: %w", chatID, err)
	}
	return nil
}

// WithFallback sets the Sender used for recipients without a known chat.
func (b *Bridge) WithFallback(s sender.Sender) *Bridge {
	b.fallback = s
	return b
}
