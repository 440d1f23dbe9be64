package notifier

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"StockSentinel/internal/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramOptions configures a TelegramNotifier.
type TelegramOptions struct {
	Token   string
	ChatID  int64  // default chat for Send and SendWithRetry
	Proxy   string // optional HTTP(S) proxy URL
	Timeout time.Duration
	// Endpoint overrides tgbotapi.APIEndpoint, e.g. for a local Bot API server.
	Endpoint string
}

// TelegramNotifier sends and edits messages via the Telegram Bot API.
type TelegramNotifier struct {
	api       *tgbotapi.BotAPI
	chatID    int64
	retryBase time.Duration
	log       *logger.Logger
}

// NewTelegramNotifier authorizes the bot token and returns a notifier.
func NewTelegramNotifier(opts TelegramOptions, log *logger.Logger) (*TelegramNotifier, error) {
	if opts.Token == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Endpoint == "" {
		opts.Endpoint = tgbotapi.APIEndpoint
	}
	transport := &http.Transport{}
	if opts.Proxy != "" {
		if u, err := url.Parse(opts.Proxy); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	client := &http.Client{Timeout: opts.Timeout, Transport: transport}

	api, err := tgbotapi.NewBotAPIWithClient(opts.Token, opts.Endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	log = log.Component("telegram")
	log.Infof("authorized on account %s", api.Self.UserName)

	return &TelegramNotifier{
		api:       api,
		chatID:    opts.ChatID,
		retryBase: time.Second,
		log:       log,
	}, nil
}

// Send sends a message to the configured chat.
func (t *TelegramNotifier) Send(text string) error {
	if t.chatID == 0 {
		return fmt.Errorf("no default chat configured")
	}
	_, err := t.SendTo(t.chatID, text)
	return err
}

// SendTo sends a Markdown message to chatID and returns its message id.
func (t *TelegramNotifier) SendTo(chatID int64, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true

	sent, err := t.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("send message: %w", err)
	}
	return sent.MessageID, nil
}

// Edit replaces the text of a previously sent message. Telegram rejects
// edits that do not change the text; those are not treated as errors.
func (t *TelegramNotifier) Edit(chatID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	edit.DisableWebPagePreview = true

	if _, err := t.api.Request(edit); err != nil {
		if strings.Contains(err.Error(), "message is not modified") {
			return nil
		}
		return fmt.Errorf("edit message: %w", err)
	}
	return nil
}

// SendWithRetry sends a message with exponential backoff retry.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if err := t.Send(text); err != nil {
			lastErr = err
			if i == maxRetries {
				break
			}
			backoff := time.Duration(1<<uint(i)) * t.retryBase
			t.log.Warnf("telegram send failed (attempt %d/%d): %v, retrying in %v", i+1, maxRetries+1, err, backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				continue
			}
		}
		return nil
	}
	return fmt.Errorf("all %d retries exhausted: %w", maxRetries+1, lastErr)
}
