package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const telegramAPI = "https://api.telegram.org"

// Telegram delivers payloads to a chat via the Bot API sendMessage call.
type Telegram struct {
	baseURL string
	token   string
	chatID  string
	client  *http.Client
}

// TelegramOption configures Telegram.
type TelegramOption func(*Telegram)

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) TelegramOption {
	return func(t *Telegram) {
		t.client = client
	}
}

// WithBaseURL overrides the Bot API endpoint.
func WithBaseURL(url string) TelegramOption {
	return func(t *Telegram) {
		t.baseURL = url
	}
}

// NewTelegram creates a Telegram notifier.
func NewTelegram(token, chatID string, opts ...TelegramOption) *Telegram {
	t := &Telegram{
		baseURL: telegramAPI,
		token:   token,
		chatID:  chatID,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Compile-time interface check.
var _ Notifier = (*Telegram)(nil)

// Notify sends the payload as one message.
func (t *Telegram) Notify(ctx context.Context, payload string) error {
	body, err := json.Marshal(map[string]string{
		"chat_id":    t.chatID,
		"text":       payload,
		"parse_mode": "Markdown",
	})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
