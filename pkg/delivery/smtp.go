package delivery

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"notification-hub/relay/pkg/domain"
)

// ErrHeaderBreak rejects a header value that would start a new header line.
var ErrHeaderBreak = errors.New("line break in mail header")

// sendMailHook allows tests to override SMTP sending behavior.
var sendMailHook = smtp.SendMail

// sendMailTLSHook allows tests to override implicit-TLS sending behavior.
var sendMailTLSHook = sendMailTLS

// SMTP sends the notification directly through a mail server.
type SMTP struct {
	Host   string
	Port   int
	Secure bool // implicit TLS, usually port 465; otherwise STARTTLS when offered
	User   string
	Pass   string
}

func (s *SMTP) Name() string { return "smtp" }

// Deliver sends one message. net/smtp has no context support, so the send
// runs aside and the call returns early when ctx ends.
func (s *SMTP) Deliver(ctx context.Context, env domain.Envelope) error {
	if s.Host == "" || len(env.Recipients) == 0 || env.From == "" {
		return ErrIncomplete
	}
	msg, err := buildMessage(env, time.Now())
	if err != nil {
		return err
	}
	addr := net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
	var auth smtp.Auth
	if s.User != "" {
		auth = smtp.PlainAuth("", s.User, s.Pass, s.Host)
	}
	from := bareAddress(env.From)
	sendPlain, sendTLS := sendMailHook, sendMailTLSHook

	done := make(chan error, 1)
	go func() {
		if s.Secure {
			done <- sendTLS(addr, s.Host, auth, from, env.Recipients, msg)
			return
		}
		done <- sendPlain(addr, auth, from, env.Recipients, msg)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send via %s: %w", addr, err)
		}
		return nil
	}
}

func sendMailTLS(addr, host string, auth smtp.Auth, from string, to []string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12})
	if err != nil {
		return err
	}
	c, err := smtp.NewClient(conn, host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer c.Close()
	if auth != nil {
		if err := c.Auth(auth); err != nil {
			return err
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// buildMessage renders a multipart/alternative message carrying the plain
// text and its HTML twin.
func buildMessage(env domain.Envelope, now time.Time) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	parts := []struct{ ctype, content string }{
		{"text/plain; charset=UTF-8", env.Message.Text},
		{"text/html; charset=UTF-8", env.Message.HTML},
	}
	for _, p := range parts {
		if p.content == "" {
			continue
		}
		pw, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {p.ctype},
			"Content-Transfer-Encoding": {"quoted-printable"},
		})
		if err != nil {
			return nil, err
		}
		qp := quotedprintable.NewWriter(pw)
		if _, err := qp.Write([]byte(p.content)); err != nil {
			return nil, err
		}
		if err := qp.Close(); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var msg bytes.Buffer
	headers := [][2]string{
		{"From", env.From},
		{"To", strings.Join(env.Recipients, ", ")},
		{"Reply-To", env.ReplyTo},
		{"Subject", mime.BEncoding.Encode("UTF-8", env.Message.Subject)},
		{"Date", now.Format(time.RFC1123Z)},
		{"MIME-Version", "1.0"},
		{"Content-Type", "multipart/alternative; boundary=" + mw.Boundary()},
	}
	for _, h := range headers {
		if h[1] == "" {
			continue
		}
		if strings.ContainsAny(h[1], "\r\n") {
			return nil, fmt.Errorf("%s header: %w", h[0], ErrHeaderBreak)
		}
		fmt.Fprintf(&msg, "%s: %s\r\n", h[0], h[1])
	}
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}

func bareAddress(addr string) string {
	if a, err := mail.ParseAddress(addr); err == nil {
		return a.Address
	}
	return addr
}
