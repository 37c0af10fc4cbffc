// internal/app/system/mailer/mailer.go
package mailer

import (
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

var (
	sgHost     = "https://api.sendgrid.com"
	sgEndpoint = "/v3/mail/send"
)

// Email is a single outbound message.
type Email struct {
	To       string
	ToName   string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer sends notification emails through SendGrid. Notification sends
// are always best-effort: failures are logged and swallowed so they never
// block or revert the state change that triggered them.
type Mailer struct {
	key      string
	from     *sgmail.Email
	siteName string
	log      *zap.Logger
}

// New creates a Mailer. An empty API key yields a disabled mailer that
// logs sends at debug level, which keeps dev environments quiet.
func New(apiKey, fromEmail, fromName string, logger *zap.Logger) *Mailer {
	return &Mailer{
		key:      apiKey,
		from:     sgmail.NewEmail(fromName, fromEmail),
		siteName: fromName,
		log:      logger,
	}
}

// SiteName returns the display name used in email templates.
func (m *Mailer) SiteName() string { return m.siteName }

// Send delivers one email. Errors are returned for the caller to log;
// callers must treat them as non-fatal.
func (m *Mailer) Send(msg Email) error {
	if m.key == "" {
		m.log.Debug("mailer disabled, dropping email",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject))
		return nil
	}

	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	p.AddTos(sgmail.NewEmail(msg.ToName, msg.To))

	v3 := sgmail.NewV3Mail()
	v3.SetFrom(m.from)
	v3.AddPersonalizations(p)
	v3.AddContent(
		sgmail.NewContent("text/plain", msg.TextBody),
		sgmail.NewContent("text/html", msg.HTMLBody),
	)

	req := sendgrid.GetRequest(m.key, sgEndpoint, sgHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(v3)

	res, err := sendgrid.API(req)
	if err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sending email: status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

// SendBestEffort sends and logs any failure instead of returning it.
func (m *Mailer) SendBestEffort(msg Email) {
	if err := m.Send(msg); err != nil {
		m.log.Warn("notification email failed",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.Error(err))
	}
}
