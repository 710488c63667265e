package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"

	"casaleon/server/internal/models"
)

const defaultAPIBase = "https://api.telegram.org"

type Service struct {
	logger  *logrus.Logger
	client  *retryablehttp.Client
	config  *models.TelegramConfig
	apiBase string
}

func NewService(logger *logrus.Logger) *Service {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 0
	rc.HTTPClient.Timeout = 10 * time.Second
	rc.Logger = nil

	return &Service{
		logger:  logger,
		client:  rc,
		config:  &models.TelegramConfig{},
		apiBase: defaultAPIBase,
	}
}

func (s *Service) UpdateConfig(config *models.TelegramConfig) {
	s.config = config
}

// SetAPIBase points the service at another Bot API host
func (s *Service) SetAPIBase(base string) {
	s.apiBase = strings.TrimRight(base, "/")
}

func (s *Service) Name() string { return "telegram" }

func (s *Service) Enabled() bool {
	return s.config != nil && s.config.IsEnabled
}

// SendMessage sends a message to the configured Telegram chat
func (s *Service) SendMessage(ctx context.Context, message string) error {
	if !s.Enabled() {
		return nil
	}

	if s.config.BotToken == "" {
		return errors.New("Telegram bot token is not configured")
	}

	if s.config.ChatID == "" {
		return errors.New("Telegram chat ID is not configured")
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.apiBase, s.config.BotToken)
	payload := map[string]interface{}{
		"chat_id":    s.config.ChatID,
		"text":       message,
		"parse_mode": "HTML",
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message payload: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to build Telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message to Telegram API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return errors.New("invalid bot token - please check your token from @BotFather")
		case http.StatusBadRequest:
			return fmt.Errorf("invalid chat ID or message format: %s", string(body))
		case http.StatusForbidden:
			return errors.New("bot was blocked by the user or chat")
		case http.StatusNotFound:
			return errors.New("bot not found - please check your token from @BotFather")
		default:
			return fmt.Errorf("Telegram API error (status %d): %s", resp.StatusCode, string(body))
		}
	}

	return nil
}

// Notify sends a copy of a lead to the chat
func (s *Service) Notify(ctx context.Context, n models.Notification) error {
	if !s.Enabled() {
		return nil
	}
	return s.SendMessage(ctx, FormatLead(n))
}

// FormatLead renders a lead as a Telegram HTML message
func FormatLead(n models.Notification) string {
	title := "<b>🏠 Nuevo propietario</b>"
	if n.Kind == models.LeadKindVisit {
		title = "<b>📅 Solicitud de visita</b>"
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(html.EscapeString(n.Subject))
	b.WriteString("\n\n")

	keys := make([]string, 0, len(n.Payload))
	for k := range n.Payload {
		if strings.HasPrefix(k, "_") {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := fmt.Sprint(n.Payload[k])
		if v == "" {
			v = "—"
		}
		fmt.Fprintf(&b, "• <b>%s</b>: %s\n", html.EscapeString(k), html.EscapeString(v))
	}

	fmt.Fprintf(&b, "\n🆔 <code>%s</code>", html.EscapeString(n.LeadID))
	return b.String()
}
