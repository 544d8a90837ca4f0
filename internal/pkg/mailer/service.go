package mailer

import "errors"

var (
	ErrMailerNotInitialized = errors.New("mailer not initialized")
	ErrMissingConfig        = errors.New("missing required SMTP configuration")
)

type Service interface {
	SendRaw(to, subject, body string) error
	SendTemplate(to, subject, tpl string, data any) error
}

type SMTPConfig struct {
	Host       string
	Port       string
	Username   string
	Password   string
	Encryption string // "tls" for STARTTLS with LOGIN auth, anything else for PLAIN
	Address    string // From:
}
