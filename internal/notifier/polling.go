package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Update is the part of a Telegram update the bot acts on.
type Update struct {
	UpdateID int
	ChatID   int64
	UserName string
	Text     string
}

// UpdateHandler is called for every text message received.
type UpdateHandler func(ctx context.Context, u Update)

// FromAPI extracts a text message from a raw update. It reports false for
// updates that carry no text message.
func FromAPI(u tgbotapi.Update) (Update, bool) {
	msg := u.Message
	if msg == nil {
		msg = u.ChannelPost
	}
	if msg == nil || msg.Chat == nil || strings.TrimSpace(msg.Text) == "" {
		return Update{}, false
	}
	out := Update{UpdateID: u.UpdateID, ChatID: msg.Chat.ID, Text: msg.Text}
	if msg.From != nil {
		out.UserName = msg.From.UserName
	}
	return out, true
}

// StartPolling long-polls Telegram and dispatches each update to handler in
// its own goroutine. Blocks until ctx is cancelled and in-flight handlers
// have returned.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler UpdateHandler) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := t.api.GetUpdatesChan(cfg)

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			t.api.StopReceivingUpdates()
			t.log.Infof("telegram polling stopped")
			return
		case raw, ok := <-updates:
			if !ok {
				return
			}
			u, ok := FromAPI(raw)
			if !ok {
				continue
			}
			t.log.Debugw("received message", "chat_id", u.ChatID, "text", u.Text)
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer func() {
					if r := recover(); r != nil {
						t.log.Errorw("panic in update handler", "panic", r, "update_id", u.UpdateID)
					}
				}()
				handler(ctx, u)
			}()
		}
	}
}

// HandleWebhook decodes an update delivered by a Telegram webhook. ok is
// false when the update carries no text message.
func HandleWebhook(r *http.Request) (u Update, ok bool, err error) {
	if r.Method != http.MethodPost {
		return Update{}, false, fmt.Errorf("webhook: method %s not allowed", r.Method)
	}
	var raw tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return Update{}, false, fmt.Errorf("decode webhook update: %w", err)
	}
	u, ok = FromAPI(raw)
	return u, ok, nil
}
