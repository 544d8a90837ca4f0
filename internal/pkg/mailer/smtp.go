package mailer

import (
	"bytes"
	"crypto/tls"
	"errors"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

type impl struct {
	cfg    SMTPConfig
	logger *zap.Logger
}

func New(cfg SMTPConfig, logger *zap.Logger) (Service, error) {
	if cfg.Host == "" || cfg.Port == "" || cfg.Username == "" || cfg.Password == "" || cfg.Address == "" {
		return nil, ErrMissingConfig
	}
	return &impl{cfg: cfg, logger: logger}, nil
}

// loginAuth implements the LOGIN mechanism some servers (Office 365) require instead of PLAIN.
type loginAuth struct {
	username, password string
}

func LoginAuth(username, password string) smtp.Auth {
	return &loginAuth{username, password}
}

func (a *loginAuth) Start(*smtp.ServerInfo) (string, []byte, error) {
	return "LOGIN", []byte{}, nil
}

func (a *loginAuth) Next(fromServer []byte, more bool) ([]byte, error) {
	if !more {
		return nil, nil
	}
	switch string(fromServer) {
	case "Username:":
		return []byte(a.username), nil
	case "Password:":
		return []byte(a.password), nil
	default:
		return nil, errors.New("unknown from server")
	}
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-version: 1.0;\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\";\r\n\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

func (m *impl) SendRaw(to, subject, body string) error {
	msg := buildMessage(m.cfg.Address, to, subject, body)
	addr := fmt.Sprintf("%s:%s", m.cfg.Host, m.cfg.Port)

	var err error
	if m.cfg.Encryption == "tls" {
		err = m.sendWithStartTLS(addr, to, msg)
	} else {
		auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
		err = smtp.SendMail(addr, auth, m.cfg.Address, []string{to}, msg)
	}
	if err != nil {
		m.logger.Warn("send mail failed", zap.String("addr", addr), zap.Error(err))
		return fmt.Errorf("send mail via %s: %w", addr, err)
	}
	return nil
}

func (m *impl) sendWithStartTLS(addr, to string, msg []byte) error {
	c, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("smtp dial error: %w", err)
	}
	defer c.Close()

	if err = c.Hello("localhost"); err != nil {
		return fmt.Errorf("smtp hello error: %w", err)
	}
	if err = c.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
		return fmt.Errorf("smtp starttls error: %w", err)
	}
	if err = c.Auth(LoginAuth(m.cfg.Username, m.cfg.Password)); err != nil {
		return fmt.Errorf("smtp auth error: %w", err)
	}
	if err = c.Mail(m.cfg.Address); err != nil {
		return fmt.Errorf("smtp mail error: %w", err)
	}
	if err = c.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt error: %w", err)
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data error: %w", err)
	}
	if _, err = wc.Write(msg); err != nil {
		_ = wc.Close()
		return fmt.Errorf("smtp write error: %w", err)
	}
	if err = wc.Close(); err != nil {
		return fmt.Errorf("smtp close data error: %w", err)
	}

	// The message is already accepted; a failed QUIT changes nothing.
	_ = c.Quit()
	return nil
}

func (m *impl) SendTemplate(to, subject, tpl string, data any) error {
	body, err := Render(tpl, data)
	if err != nil {
		return err
	}
	return m.SendRaw(to, subject, body)
}

// Render executes an html/template, escaping data.
func Render(tpl string, data any) (string, error) {
	t, err := template.New("email").Parse(tpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
