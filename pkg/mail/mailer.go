// Package mail defines the outbound mail contract and a plain SMTP sender.
package mail

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Message is one outbound mail: subject, envelope sender, recipients, body.
type Message struct {
	Subject    string   `json:"subject"`
	Sender     string   `json:"sender"`
	Recipients []string `json:"recipients"`
	Body       string   `json:"body"`
}

// Mailer sends a single message and reports success or failure.
type Mailer interface {
	Send(msg Message) error
}

// SMTPMailer delivers messages through an authenticated SMTP relay
// (STARTTLS is negotiated by net/smtp when the server offers it).
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
}

// NewSMTPMailer creates a new SMTPMailer.
func NewSMTPMailer(host string, port int, username, password string) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
	}
}

// Send delivers msg via SMTP.
func (m *SMTPMailer) Send(msg Message) error {
	if len(msg.Recipients) == 0 {
		return fmt.Errorf("mail message has no recipients")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", msg.Sender)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.Recipients, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("\r\n")
	b.WriteString(msg.Body)

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	if err := smtp.SendMail(addr, auth, m.username, msg.Recipients, []byte(b.String())); err != nil {
		return fmt.Errorf("failed to send mail via %s: %w", addr, err)
	}
	return nil
}
