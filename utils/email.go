package utils

import (
	"gopkg.in/gomail.v2"
)

// SMTPMailer sends HTML mail through a single SMTP account.
type SMTPMailer struct {
	from   string
	dialer *gomail.Dialer
}

func NewSMTPMailer(host string, port int, user, pass string) *SMTPMailer {
	return &SMTPMailer{
		from:   user,
		dialer: gomail.NewDialer(host, port, user, pass),
	}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	return m.dialer.DialAndSend(msg)
}
