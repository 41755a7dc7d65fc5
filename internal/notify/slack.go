package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"uptime-monitor/internal/config"
	"uptime-monitor/internal/model"
)

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type slackAttachment struct {
	Color  string       `json:"color"`
	Fields []slackField `json:"fields"`
	Footer string       `json:"footer"`
	TS     int64        `json:"ts"`
}

type slackPayload struct {
	Text        string            `json:"text"`
	Attachments []slackAttachment `json:"attachments"`
}

// SlackNotifier posts alert events to an incoming webhook.
type SlackNotifier struct {
	client     *resty.Client
	webhookURL string
	logger     zerolog.Logger
}

// NewSlackNotifier creates a Slack webhook transport.
func NewSlackNotifier(cfg config.SlackConfig, logger zerolog.Logger) *SlackNotifier {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json")

	return &SlackNotifier{
		client:     client,
		webhookURL: cfg.WebhookURL,
		logger:     logger.With().Str("component", "slack-notifier").Logger(),
	}
}

// Name implements Notifier.
func (n *SlackNotifier) Name() string {
	return "slack"
}

// Send implements Notifier.
func (n *SlackNotifier) Send(ctx context.Context, event *model.AlertEvent) error {
	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(slackMessage(event)).
		Post(n.webhookURL)
	if err != nil {
		return fmt.Errorf("post slack webhook: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("slack webhook returned %s", resp.Status())
	}
	return nil
}

func slackMessage(event *model.AlertEvent) slackPayload {
	label := alertLabel(event.Kind)

	return slackPayload{
		Text: fmt.Sprintf("🚨 System Monitor Alert: %s", event.MonitorName),
		Attachments: []slackAttachment{{
			Color: alertColor(event.Kind),
			Fields: []slackField{
				{Title: "Monitor", Value: event.MonitorName, Short: true},
				{Title: "Status", Value: strings.ToUpper(label), Short: true},
				{Title: "Time", Value: event.At.UTC().Format("2006-01-02 15:04:05 UTC"), Short: false},
				{Title: "Message", Value: event.Message, Short: false},
			},
			Footer: "System Monitor",
			TS:     event.At.Unix(),
		}},
	}
}
