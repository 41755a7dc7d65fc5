package notify

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"

	"uptime-monitor/internal/config"
	"uptime-monitor/internal/model"
)

const emailTextBody = `System Monitor Alert

Monitor: %s
Status: %s
Time: %s

Message: %s

---
This is an automated alert from System Monitor
`

var emailHTMLTemplate = template.Must(template.New("alert-email").Parse(`<html>
<head></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #ddd; border-radius: 5px;">
        <h2 style="color: {{.Color}}; margin-bottom: 20px;">🚨 System Monitor Alert</h2>
        <table style="width: 100%; border-collapse: collapse;">
            <tr>
                <td style="padding: 10px; border-bottom: 1px solid #eee;"><strong>Monitor:</strong></td>
                <td style="padding: 10px; border-bottom: 1px solid #eee;">{{.Monitor}}</td>
            </tr>
            <tr>
                <td style="padding: 10px; border-bottom: 1px solid #eee;"><strong>Status:</strong></td>
                <td style="padding: 10px; border-bottom: 1px solid #eee; color: {{.Color}}; font-weight: bold;">{{.Status}}</td>
            </tr>
            <tr>
                <td style="padding: 10px; border-bottom: 1px solid #eee;"><strong>Time:</strong></td>
                <td style="padding: 10px; border-bottom: 1px solid #eee;">{{.Time}}</td>
            </tr>
        </table>
        <div style="margin-top: 20px; padding: 15px; background-color: #f5f5f5; border-radius: 4px;">
            <strong>Message:</strong><br>
            {{.Message}}
        </div>
        <p style="margin-top: 20px; font-size: 12px; color: #666;">
            This is an automated alert from System Monitor
        </p>
    </div>
</body>
</html>
`))

// EmailNotifier sends alert events over SMTP as multipart text+HTML mail.
type EmailNotifier struct {
	client *mail.Client
	cfg    config.EmailConfig
	logger zerolog.Logger
}

// NewEmailNotifier creates an SMTP transport. UseTLS selects STARTTLS.
func NewEmailNotifier(cfg config.EmailConfig, logger zerolog.Logger) (*EmailNotifier, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
	}
	if cfg.UseTLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	return &EmailNotifier{
		client: client,
		cfg:    cfg,
		logger: logger.With().Str("component", "email-notifier").Logger(),
	}, nil
}

// Name implements Notifier.
func (n *EmailNotifier) Name() string {
	return "email"
}

// Send implements Notifier.
func (n *EmailNotifier) Send(ctx context.Context, event *model.AlertEvent) error {
	msg := mail.NewMsg()
	if err := msg.From(n.cfg.From); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(n.cfg.To...); err != nil {
		return fmt.Errorf("set recipients: %w", err)
	}

	msg.Subject(emailSubject(event))
	msg.SetBodyString(mail.TypeTextPlain, emailText(event))

	html, err := emailHTML(event)
	if err != nil {
		return fmt.Errorf("render html body: %w", err)
	}
	msg.AddAlternativeString(mail.TypeTextHTML, html)

	if err := n.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send alert mail: %w", err)
	}
	return nil
}

func emailSubject(event *model.AlertEvent) string {
	return fmt.Sprintf("🚨 Alert: %s is %s", event.MonitorName, alertLabel(event.Kind))
}

func emailText(event *model.AlertEvent) string {
	return fmt.Sprintf(emailTextBody,
		event.MonitorName,
		strings.ToUpper(alertLabel(event.Kind)),
		event.At.UTC().Format("2006-01-02 15:04:05 UTC"),
		event.Message)
}

func emailHTML(event *model.AlertEvent) (string, error) {
	data := struct {
		Monitor string
		Status  string
		Time    string
		Message string
		Color   string
	}{
		Monitor: event.MonitorName,
		Status:  strings.ToUpper(alertLabel(event.Kind)),
		Time:    event.At.UTC().Format("2006-01-02 15:04:05 UTC"),
		Message: event.Message,
		Color:   alertColor(event.Kind),
	}

	var sb strings.Builder
	if err := emailHTMLTemplate.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}
