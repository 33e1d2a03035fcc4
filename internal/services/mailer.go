package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"gopkg.in/gomail.v2"
)

// EmailMessage is one queued email. Data fills the named template.
type EmailMessage struct {
	To       string            `json:"to"`
	Subject  string            `json:"subject"`
	Template string            `json:"template"`
	Data     map[string]string `json:"data"`
}

// Mailer delivers a single email.
type Mailer interface {
	Send(ctx context.Context, msg *EmailMessage) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
	tmpl   *template.Template
}

func NewSMTPMailer(cfg SMTPConfig) Mailer {
	from := cfg.From
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.From)
	}
	return &smtpMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   from,
		tmpl:   emailTemplates,
	}
}

func (m *smtpMailer) Send(ctx context.Context, msg *EmailMessage) error {
	body, err := renderEmail(m.tmpl, msg)
	if err != nil {
		return err
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(gm); err != nil {
		return fmt.Errorf("error sending email: %w", err)
	}
	return nil
}

func renderEmail(tmpl *template.Template, msg *EmailMessage) (string, error) {
	t := tmpl.Lookup(msg.Template)
	if t == nil {
		return "", fmt.Errorf("template '%s' not found", msg.Template)
	}
	data := map[string]string{"Subject": msg.Subject, "Year": fmt.Sprint(time.Now().Year())}
	for k, v := range msg.Data {
		data[k] = v
	}
	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return "", fmt.Errorf("error executing template: %w", err)
	}
	return body.String(), nil
}

const (
	TemplateMemberInvitation  = "member_invitation"
	TemplateMeetingInvitation = "meeting_invitation"
	TemplateMeetingReminder   = "meeting_reminder"
)

const emailLayoutHead = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .button { display: inline-block; padding: 10px 20px; background-color: #2c7be5; color: white; text-decoration: none; border-radius: 4px; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>`

const emailLayoutFoot = `
    <div class="footer"><p>&copy; {{.Year}} AssocHub</p></div>
</body>
</html>`

var emailTemplates = template.Must(template.New("emails").Parse(
	`{{define "member_invitation"}}` + emailLayoutHead + `
    <h2>You're invited to {{.AssociationName}}</h2>
    <p>Hello {{.Name}},</p>
    <p>You have been added to {{.AssociationName}}. Sign in with this email address to join.</p>
    <p><a href="{{.Link}}" class="button">Join association</a></p>` + emailLayoutFoot + `{{end}}` +

		`{{define "meeting_invitation"}}` + emailLayoutHead + `
    <h2>{{.MeetingTitle}}</h2>
    <p>Hello {{.Name}},</p>
    <p>A meeting has been scheduled for {{.ScheduledAt}}{{if .Location}} at {{.Location}}{{end}}.</p>
    <p><a href="{{.Link}}" class="button">View meeting and RSVP</a></p>` + emailLayoutFoot + `{{end}}` +

		`{{define "meeting_reminder"}}` + emailLayoutHead + `
    <h2>Reminder: {{.MeetingTitle}}</h2>
    <p>Hello {{.Name}},</p>
    <p>The meeting starts at {{.ScheduledAt}}{{if .Location}} at {{.Location}}{{end}}.</p>
    <p><a href="{{.Link}}" class="button">View meeting</a></p>` + emailLayoutFoot + `{{end}}`,
))
