// Package mattermost provides a webhook client for posting contact form
// notices to a Mattermost (or Slack-compatible) channel.
package mattermost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/acesastra/ace-portal/internal/config"
	"github.com/acesastra/ace-portal/internal/models"
	"github.com/acesastra/ace-portal/pkg/logger"
)

const (
	botUsername    = "ACE Portal"
	requestTimeout = 10 * time.Second
	previewLength  = 280
)

// Client handles Mattermost webhook notifications.
type Client struct {
	webhookURL string
	channel    string
	enabled    bool
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a new Mattermost client.
func NewClient(cfg *config.NotifierConfig, log *logger.Logger) *Client {
	return &Client{
		webhookURL: cfg.WebhookURL,
		channel:    cfg.Channel,
		enabled:    cfg.Enabled,
		httpClient: &http.Client{Timeout: requestTimeout},
		log:        log,
	}
}

// Message represents a Mattermost message payload.
type Message struct {
	Channel     string       `json:"channel,omitempty"`
	Username    string       `json:"username,omitempty"`
	Text        string       `json:"text,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment represents a message attachment.
type Attachment struct {
	Fallback   string  `json:"fallback,omitempty"`
	Color      string  `json:"color,omitempty"`
	AuthorName string  `json:"author_name,omitempty"`
	Title      string  `json:"title,omitempty"`
	Text       string  `json:"text,omitempty"`
	Fields     []Field `json:"fields,omitempty"`
	Footer     string  `json:"footer,omitempty"`
}

// Field represents a message field.
type Field struct {
	Short bool   `json:"short"`
	Title string `json:"title"`
	Value string `json:"value"`
}

// Enabled reports whether notices are actually sent.
func (c *Client) Enabled() bool {
	return c.enabled
}

// SendMessage posts a message to the webhook.
func (c *Client) SendMessage(ctx context.Context, msg *Message) error {
	if !c.enabled {
		c.log.Debug().Msg("Notifier is disabled, skipping message")
		return nil
	}

	if msg.Channel == "" {
		msg.Channel = c.channel
	}
	if msg.Username == "" {
		msg.Username = botUsername
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message to webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	c.log.Debug().
		Str("channel", msg.Channel).
		Msg("Sent message to webhook")

	return nil
}

// SendContactNotice announces a new contact form submission.
func (c *Client) SendContactNotice(ctx context.Context, msg *models.ContactMessage) error {
	preview := msg.Message
	if runes := []rune(preview); len(runes) > previewLength {
		preview = strings.TrimSpace(string(runes[:previewLength])) + "…"
	}

	return c.SendMessage(ctx, &Message{
		Text: "📬 New message from the contact form",
		Attachments: []Attachment{{
			Fallback:   fmt.Sprintf("Contact form: %s <%s>", msg.Name, msg.Email),
			Color:      "#2f81f7",
			AuthorName: msg.Name,
			Text:       preview,
			Fields: []Field{
				{Short: true, Title: "Email", Value: msg.Email},
				{Short: true, Title: "Received", Value: msg.CreatedAt.UTC().Format(time.RFC1123)},
			},
			Footer: botUsername,
		}},
	})
}
