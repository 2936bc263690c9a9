// Package notifier delivers issued secret keys to their owners.
package notifier

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"text/template"

	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/rollcall/internal/config"
	"github.com/vncsmyrnk/rollcall/internal/core/domain"
	"github.com/vncsmyrnk/rollcall/internal/core/ports"
)

var logger = logrus.WithField("component", "notifier")

// New returns an SMTP notifier when a host is configured, a logging one
// otherwise.
func New(cfg config.SMTPConfig) ports.KeyNotifier {
	if cfg.Host == "" {
		logger.Warn("SMTP_HOST not set, secret keys will only be logged")
		return &LogNotifier{}
	}
	return NewSMTPNotifier(cfg)
}

// LogNotifier is for local development. It logs the masked recipient and key.
type LogNotifier struct{}

func (n *LogNotifier) SendSecretKey(ctx context.Context, address, key string) error {
	logger.WithFields(logrus.Fields{
		"to":  domain.MaskEmail(address),
		"key": mask(key),
	}).Info("secret key issued")
	return nil
}

func mask(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return key[:2] + strings.Repeat("*", len(key)-4) + key[len(key)-2:]
}

var messageTemplate = template.Must(template.New("key").Parse(`From: {{.From}}
To: {{.To}}
Subject: Your voting key

Your secret voting key is: {{.Key}}
{{if .BaseURL}}
Sign in at {{.BaseURL}}/auth/login with this key.
{{end}}
Anyone holding this key can vote in your name. Do not share it.
`))

type SMTPNotifier struct {
	cfg  config.SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPNotifier(cfg config.SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, send: smtp.SendMail}
}

func (n *SMTPNotifier) SendSecretKey(ctx context.Context, address, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var msg bytes.Buffer
	err := messageTemplate.Execute(&msg, struct {
		From, To, Key, BaseURL string
	}{n.cfg.From, address, key, strings.TrimRight(n.cfg.BaseURL, "/")})
	if err != nil {
		return fmt.Errorf("failed to render message: %w", err)
	}

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	addr := net.JoinHostPort(n.cfg.Host, n.cfg.Port)
	if err := n.send(addr, auth, n.cfg.From, []string{address}, msg.Bytes()); err != nil {
		return fmt.Errorf("failed to send mail via %s: %w", addr, err)
	}
	logger.WithField("to", domain.MaskEmail(address)).Info("secret key mailed")
	return nil
}
