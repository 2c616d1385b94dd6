package services

import (
	"crypto/tls"
	"net"
	"net/smtp"
	"strings"
)

// SMTPSender delivers transactional mail, currently only the
// password-reset message. Plain SMTP by default, implicit TLS when the
// provider requires it (port 465 style).
type SMTPSender struct {
	Host   string
	Port   string
	User   string
	Pass   string
	From   string
	UseTLS bool
}

func (s *SMTPSender) Send(to string, subject string, body string) error {
	addr := net.JoinHostPort(s.Host, s.Port)
	msg := s.buildMessage(to, subject, body)
	auth := smtp.PlainAuth("", s.User, s.Pass, s.Host)

	if !s.UseTLS {
		return smtp.SendMail(addr, auth, s.From, []string{to}, msg)
	}

	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.Host})
	if err != nil {
		return err
	}
	c, err := smtp.NewClient(conn, s.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Quit()

	if err := c.Auth(auth); err != nil {
		return err
	}
	if err := c.Mail(s.From); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	_, err = w.Write(msg)
	if closeErr := w.Close(); err == nil {
		err = closeErr
	}
	return err
}

func (s *SMTPSender) buildMessage(to, subject, body string) []byte {
	var msg strings.Builder
	msg.WriteString("From: " + s.From + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)
	return []byte(msg.String())
}
