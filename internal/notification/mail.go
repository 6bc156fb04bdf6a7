package notification

import (
	"errors"
	"fmt"
	"net/smtp"
	"net/textproto"
	"strings"
	"time"
)

// MailSender defines the interface for delivering a composed email.
type MailSender interface {
	Send(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

// SMTPSender is a real implementation of MailSender using net/smtp.
type SMTPSender struct{}

// Send delivers the message over a STARTTLS SMTP session.
func (s *SMTPSender) Send(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	return smtp.SendMail(addr, auth, from, to, msg)
}

// classifySendError maps an SMTP failure to a stable category for logs, so
// operators can tell a bad app password from a flaky server.
func classifySendError(err error) string {
	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		switch tpErr.Code {
		case 534, 535:
			return "authentication"
		default:
			return "protocol"
		}
	}
	return "connection"
}

// composeAlarmEmail builds the full RFC 5322 message for a triggered alarm.
func composeAlarmEmail(from string, to []string, location string, notice AlarmNotice) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	b.WriteString("Subject: SECURITY ALERT - Door Alarm Triggered\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString("SECURITY ALERT\r\n\r\n")
	fmt.Fprintf(&b, "The door alarm was triggered at %s.\r\n",
		notice.FiredAt.Format(time.RFC1123))
	fmt.Fprintf(&b, "The door remained open for more than %d seconds.\r\n\r\n",
		int(notice.Duration.Seconds()))
	fmt.Fprintf(&b, "Location: %s\r\n\r\n", location)
	b.WriteString("Please check the premises.\r\n")
	return []byte(b.String())
}
