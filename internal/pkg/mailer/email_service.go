package mailer

import (
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

// IEmailService sends operator notifications.
type IEmailService interface {
	SendAlert(subject, body string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
	recipient   string
}

func NewEmailService(host string, port int, username, password, senderEmail, senderName, recipient string) IEmailService {
	return &emailService{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: senderEmail,
		senderName:  senderName,
		recipient:   recipient,
	}
}

func (s *emailService) SendAlert(subject, body string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", s.recipient)
	m.SetHeader("Subject", subject)

	m.SetBody("text/html", fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>%s</h2>
			<pre style="white-space: pre-wrap;">%s</pre>
		</div>
	`, html.EscapeString(subject), html.EscapeString(body)))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send alert to %s: %w", s.recipient, err)
	}
	return nil
}
