// Package notify delivers best-effort Discord webhook notifications when
// content is approved. Failures are logged and never propagated to callers.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/prisonrp/ruleswiki/pkg/config"
	"github.com/prisonrp/ruleswiki/pkg/logging"
	"github.com/prisonrp/ruleswiki/pkg/telemetry"
)

// Notifier announces approved content to an external channel.
type Notifier interface {
	RuleApproved(ctx context.Context, fullCode, title string)
	AnnouncementApproved(ctx context.Context, title string)
}

// New returns a Discord webhook notifier, or a no-op when no webhook is configured.
func New(cfg *config.DiscordConfig) Notifier {
	if cfg.WebhookURL == "" {
		logging.GetLogger().Info("Discord notifications disabled")
		return Noop{}
	}
	return &DiscordWebhook{
		url:    cfg.WebhookURL,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logging.WithComponent("discord-notify"),
	}
}

// Noop discards all notifications.
type Noop struct{}

func (Noop) RuleApproved(context.Context, string, string) {}
func (Noop) AnnouncementApproved(context.Context, string) {}

// DiscordWebhook posts embed payloads to a Discord webhook URL.
type DiscordWebhook struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

type embed struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Color       int    `json:"color"`
}

type webhookPayload struct {
	Content string  `json:"content,omitempty"`
	Embeds  []embed `json:"embeds,omitempty"`
}

// RuleApproved announces a newly approved rule.
func (d *DiscordWebhook) RuleApproved(ctx context.Context, fullCode, title string) {
	d.post(ctx, webhookPayload{
		Embeds: []embed{{
			Title:       fmt.Sprintf("Rule %s approved", fullCode),
			Description: title,
			Color:       0x2ecc71,
		}},
	})
}

// AnnouncementApproved announces a newly approved announcement.
func (d *DiscordWebhook) AnnouncementApproved(ctx context.Context, title string) {
	d.post(ctx, webhookPayload{
		Embeds: []embed{{
			Title:       "New announcement",
			Description: title,
			Color:       0x4f8cff,
		}},
	})
}

func (d *DiscordWebhook) post(ctx context.Context, payload webhookPayload) {
	ctx, span := telemetry.StartSpan(ctx, "discord.webhook_post")
	defer span.End()

	body, err := json.Marshal(payload)
	if err != nil {
		d.logger.Error("Failed to marshal webhook payload", zap.Error(err))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		d.logger.Error("Failed to build webhook request", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.Warn("Discord webhook delivery failed", zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		d.logger.Warn("Discord webhook rejected", zap.Int("status", resp.StatusCode))
	}
}
