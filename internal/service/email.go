package service

import (
	"log"
	"net/smtp"
)

type EmailService interface{ Send(to, subject, body string) error }

type EmailConfig struct {
	Host, Port, From string
}

type smtpEmail struct{ cfg EmailConfig }

// NewEmailService sends through SMTP when a host is configured and only
// logs the message otherwise.
func NewEmailService(cfg EmailConfig) EmailService { return &smtpEmail{cfg: cfg} }

func (s *smtpEmail) Send(to, subject, body string) error {
	if s.cfg.Host == "" {
		log.Printf("email (not sent, SMTP_HOST unset) to=%s subject=%q", to, subject)
		return nil
	}
	addr := s.cfg.Host + ":" + s.cfg.Port

	msg := "From: " + s.cfg.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n" +
		body

	// no auth: the relay is expected to be local (MailHog in development)
	return smtp.SendMail(addr, nil, s.cfg.From, []string{to}, []byte(msg))
}
