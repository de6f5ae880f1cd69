// Package telegram sends account events to a Telegram chat via the Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"time"

	"github.com/Miraines/MoonyAndStarry/account-service/internal/notify"
)

const defaultBaseURL = "https://api.telegram.org"

type Notifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
}

type Option func(*Notifier)

// WithBaseURL overrides the Bot API host. Tests point this at httptest.
func WithBaseURL(u string) Option {
	return func(n *Notifier) { n.baseURL = u }
}

func New(botToken, chatID string, opts ...Option) *Notifier {
	n := &Notifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  defaultBaseURL,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Notifier) Registration(ctx context.Context, ev notify.Event) error {
	return n.send(ctx, "New account registered", ev)
}

func (n *Notifier) Login(ctx context.Context, ev notify.Event) error {
	return n.send(ctx, "Login", ev)
}

func (n *Notifier) PasswordReset(ctx context.Context, ev notify.Event) error {
	return n.send(ctx, "Password reset requested", ev)
}

func (n *Notifier) send(ctx context.Context, title string, ev notify.Event) error {
	msg := fmt.Sprintf(
		"<b>%s</b>\nEmail: <code>%s</code>\nName: %s\nAccount: <code>%s</code>\nIP: <code>%s</code>\nLocation: %s\nTime: %s",
		title,
		html.EscapeString(ev.Email),
		html.EscapeString(ev.Name),
		html.EscapeString(ev.AccountID),
		html.EscapeString(ev.ClientIP),
		html.EscapeString(ev.Location),
		ev.At.UTC().Format(time.RFC3339),
	)

	payload, err := json.Marshal(map[string]string{
		"chat_id":    n.chatID,
		"text":       msg,
		"parse_mode": "HTML",
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram sendMessage: status %d", resp.StatusCode)
	}
	return nil
}
