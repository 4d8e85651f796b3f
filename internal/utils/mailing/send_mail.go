package mailing

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"

	"recipe-share-api/internal/utils"

	"github.com/pkg/errors"
	"gopkg.in/gomail.v2"
)

type (
	Mailer interface {
		Enabled() bool
		SendMail(toEmail string, subject string, body string) error
		SendWelcome(toEmail, name, username string) error
	}

	MailConfig struct {
		AppName      string
		AppURL       string
		SMTPHost     string
		SMTPPort     string
		SMTPSender   string
		SMTPEmail    string
		SMTPPassword string
	}

	mailer struct {
		cfg MailConfig
	}
)

func LoadMailConfig() MailConfig {
	return MailConfig{
		AppName:      utils.GetConfig("APP_NAME"),
		AppURL:       utils.GetConfig("APP_URL"),
		SMTPHost:     utils.GetConfig("SMTP_HOST"),
		SMTPPort:     utils.GetConfig("SMTP_PORT"),
		SMTPSender:   utils.GetConfig("SMTP_SENDER_NAME"),
		SMTPEmail:    utils.GetConfig("SMTP_AUTH_EMAIL"),
		SMTPPassword: utils.GetConfig("SMTP_AUTH_PASSWORD"),
	}
}

func NewMailer(cfg MailConfig) Mailer {
	return &mailer{cfg: cfg}
}

// Enabled is false when no SMTP host is configured; sends become no-ops.
func (m *mailer) Enabled() bool {
	return m.cfg.SMTPHost != "" && m.cfg.SMTPEmail != ""
}

func (m *mailer) SendMail(toEmail string, subject string, body string) error {
	if !m.Enabled() {
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.cfg.SMTPEmail, m.cfg.SMTPSender)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	port, err := strconv.Atoi(m.cfg.SMTPPort)
	if err != nil {
		return errors.Wrap(err, "invalid SMTP_PORT")
	}
	dialer := gomail.NewDialer(m.cfg.SMTPHost, port, m.cfg.SMTPEmail, m.cfg.SMTPPassword)

	return errors.Wrap(dialer.DialAndSend(msg), "send mail")
}

var welcomeTemplate = template.Must(template.New("welcome").Parse(
	`<p>Hi {{.Name}},</p>
<p>Welcome to {{.App}}! Your username is <b>@{{.Username}}</b>.</p>
<p>Start sharing your recipes at <a href="{{.URL}}">{{.URL}}</a>.</p>`))

func (m *mailer) SendWelcome(toEmail, name, username string) error {
	body, err := RenderWelcome(m.cfg.AppName, m.cfg.AppURL, name, username)
	if err != nil {
		return err
	}
	return m.SendMail(toEmail, fmt.Sprintf("Welcome to %s", m.cfg.AppName), body)
}

func RenderWelcome(app, url, name, username string) (string, error) {
	var buf bytes.Buffer
	err := welcomeTemplate.Execute(&buf, map[string]string{
		"App":      app,
		"URL":      url,
		"Name":     name,
		"Username": username,
	})
	if err != nil {
		return "", errors.Wrap(err, "render welcome mail")
	}
	return buf.String(), nil
}
