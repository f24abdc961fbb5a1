package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/99minutos/users-api/internal/core/ports"
)

const DefaultMailtrapURL = "https://send.api.mailtrap.io/api/send"

type recipient struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type mailtrapRequest struct {
	From     recipient   `json:"from"`
	To       []recipient `json:"to"`
	Subject  string      `json:"subject"`
	Text     string      `json:"text,omitempty"`
	Category string      `json:"category,omitempty"`
}

// MailtrapSender delivers mail through the Mailtrap sending API.
type MailtrapSender struct {
	url    string
	apiKey string
	from   string
	client *http.Client
}

func NewMailtrapSender(url, apiKey, from string, client *http.Client) *MailtrapSender {
	if url == "" {
		url = DefaultMailtrapURL
	}
	if client == nil {
		client = &http.Client{}
	}
	return &MailtrapSender{url: url, apiKey: apiKey, from: from, client: client}
}

func (m *MailtrapSender) Send(ctx context.Context, msg ports.EmailMessage) error {
	payload, err := json.Marshal(mailtrapRequest{
		From:     recipient{Email: m.from},
		To:       []recipient{{Email: msg.To}},
		Subject:  msg.Subject,
		Text:     msg.Body,
		Category: msg.Category,
	})
	if err != nil {
		return fmt.Errorf("marshal mailtrap request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build mailtrap request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("mailtrap send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("mailtrap API returned status: %d", resp.StatusCode)
	}
	return nil
}
