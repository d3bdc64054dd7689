package mailer

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Mailer sends transactional email over SMTP. When no SMTP host is
// configured it degrades to logging the message, which keeps local
// development working without a mail account.
type Mailer struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
	logger   *logrus.Logger
}

// Config holds SMTP settings
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	FromName string
}

// New creates a Mailer. A zero Host enables log-only mode.
func New(cfg Config, logger *logrus.Logger) *Mailer {
	m := &Mailer{
		from:     cfg.User,
		fromName: cfg.FromName,
		logger:   logger,
	}
	if cfg.Host != "" {
		m.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	}
	return m
}

// Send delivers a single HTML message
func (m *Mailer) Send(to, subject, htmlBody string) error {
	if m.dialer == nil {
		m.logger.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Info("SMTP not configured, skipping email")
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, m.fromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	return nil
}

var magicLinkTmpl = template.Must(template.New("magicLink").Parse(`
<p>Hi {{.Name}},</p>
<p>Your reservation {{.Confirmation}} is now linked to an account on our guest portal.</p>
<p><a href="{{.Link}}">Set your password</a> to manage your stay, request extras and check out faster.</p>
<p>The link expires in 24 hours.</p>
`))

// SendMagicLink mails the set-password link to an auto-created account
func (m *Mailer) SendMagicLink(to, name, confirmation, link string) error {
	var buf bytes.Buffer
	err := magicLinkTmpl.Execute(&buf, map[string]string{
		"Name":         name,
		"Confirmation": confirmation,
		"Link":         link,
	})
	if err != nil {
		return fmt.Errorf("failed to render magic link email: %w", err)
	}

	return m.Send(to, "Finish setting up your account", buf.String())
}

var addOnDecisionTmpl = template.Must(template.New("addOnDecision").Parse(`
<p>Hi {{.Name}},</p>
{{if .Confirmed}}
<p>Good news, your request for <strong>{{.AddOn}}</strong> has been confirmed by the hotel.</p>
<p>You can complete the payment from your reservation page.</p>
{{else}}
<p>Unfortunately the hotel could not accommodate your request for <strong>{{.AddOn}}</strong>.</p>
<p>Feel free to reach out to the front desk for alternatives.</p>
{{end}}
`))

// SendAddOnDecision notifies the guest of a staff decision on their add-on
// request
func (m *Mailer) SendAddOnDecision(to, name, addOnName string, confirmed bool) error {
	var buf bytes.Buffer
	err := addOnDecisionTmpl.Execute(&buf, map[string]interface{}{
		"Name":      name,
		"AddOn":     addOnName,
		"Confirmed": confirmed,
	})
	if err != nil {
		return fmt.Errorf("failed to render add-on decision email: %w", err)
	}

	subject := "Your add-on request was confirmed"
	if !confirmed {
		subject = "Update on your add-on request"
	}

	return m.Send(to, subject, buf.String())
}

var reservationTmpl = template.Must(template.New("reservation").Parse(`
<p>Hi {{.Name}},</p>
<p>We found your reservation <strong>{{.Confirmation}}</strong> ({{.RoomType}}, check-in {{.CheckIn}}).</p>
<p><a href="{{.Link}}">Claim your stay</a> to unlock room upgrades and extras before you arrive.</p>
`))

// SendReservationImported invites the guest of an imported reservation to
// claim it
func (m *Mailer) SendReservationImported(to, name, confirmation, roomType, checkIn, link string) error {
	var buf bytes.Buffer
	err := reservationTmpl.Execute(&buf, map[string]string{
		"Name":         name,
		"Confirmation": confirmation,
		"RoomType":     roomType,
		"CheckIn":      checkIn,
		"Link":         link,
	})
	if err != nil {
		return fmt.Errorf("failed to render reservation email: %w", err)
	}

	return m.Send(to, "Your reservation is ready to claim", buf.String())
}
