package mailer

import (
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendNotification(toEmail, subject, message string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
}

func NewEmailService(host string, port int, username, password, senderEmail, senderName string) IEmailService {
	return &emailService{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: senderEmail,
		senderName:  senderName,
	}
}

func (s *emailService) SendNotification(toEmail, subject, message string) error {
	m := gomail.NewMessage()
	if s.senderName != "" {
		m.SetHeader("From", m.FormatAddress(s.senderEmail, s.senderName))
	} else {
		m.SetHeader("From", s.senderEmail)
	}
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", message)
	m.AddAlternative("text/html", fmt.Sprintf(`<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;"><p>%s</p></div>`, html.EscapeString(message)))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send notification to %s: %w", toEmail, err)
	}
	return nil
}

// noopEmailService is used when SMTP is not configured.
type noopEmailService struct{}

func NewNoopEmailService() IEmailService {
	return noopEmailService{}
}

func (noopEmailService) SendNotification(string, string, string) error {
	return nil
}
