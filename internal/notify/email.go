package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/fleetworks/asset-sentinel/internal/models"
	"github.com/fleetworks/asset-sentinel/internal/settings"
)

// EmailConfig holds SMTP connection parameters.
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// EmailNotifier sends alert emails over SMTP. Each recipient is attempted
// independently; the first error per recipient is collected but does not stop
// the remaining sends.
type EmailNotifier struct {
	cfg EmailConfig
}

// NewEmailNotifier constructs an SMTP-backed notifier.
func NewEmailNotifier(cfg EmailConfig) *EmailNotifier {
	return &EmailNotifier{cfg: cfg}
}

// Name identifies the channel type this notifier serves.
func (n *EmailNotifier) Name() string { return "email" }

// Send delivers the alert to every recipient on the channel.
func (n *EmailNotifier) Send(ctx context.Context, alert models.Alert, channel settings.ChannelConfig) error {
	if n.cfg.Host == "" {
		return fmt.Errorf("smtp host not configured")
	}
	if len(channel.Recipients) == 0 {
		return nil
	}

	subject := fmt.Sprintf("[%s] %s alert for %s", strings.ToUpper(string(alert.Severity)), alert.Type, alert.AssetName)
	body := fmt.Sprintf("%s\r\n\r\nValue: %.2f\r\nThreshold: %.2f\r\nTriggered: %s\r\n",
		alert.Message, alert.Value, alert.Threshold, alert.Timestamp.Format("2006-01-02 15:04:05 MST"))

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	var failures []string
	for _, to := range channel.Recipients {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", n.cfg.From, to, subject, body)
		if err := smtp.SendMail(addr, auth, n.cfg.From, []string{to}, []byte(msg)); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", to, err))
		}
	}
	if len(failures) > 0 {
		return fmt.Errorf("email delivery failed for %d recipient(s): %s", len(failures), strings.Join(failures, "; "))
	}
	return nil
}
