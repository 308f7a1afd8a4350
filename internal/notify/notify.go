// Package notify sends single plain-text emails over an authenticated SMTP
// session.
package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/go-ports/stratocrm/internal/config"
	"github.com/go-ports/stratocrm/internal/errs"
	"github.com/go-ports/stratocrm/internal/models"
)

// Sender is the interface email transports implement.
type Sender interface {
	// Send transmits msg once. It does not retry.
	Send(ctx context.Context, msg models.Email) error
}

// DialFunc opens the transport connection to the mail server.
type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// SMTPSender implements Sender over SMTP with an optional STARTTLS upgrade.
type SMTPSender struct {
	cfg  config.SMTPConfig
	dial DialFunc
	now  func() time.Time

	// TLSConfig overrides the STARTTLS client config; nil uses ServerName = Host.
	TLSConfig *tls.Config
}

// NewSMTP creates an SMTPSender from cfg.
func NewSMTP(cfg config.SMTPConfig) *SMTPSender {
	d := &net.Dialer{Timeout: cfg.Timeout}
	return &SMTPSender{
		cfg:  cfg,
		dial: d.DialContext,
		now:  time.Now,
	}
}

// WithDialer replaces the connection dialer. Used by tests.
func (s *SMTPSender) WithDialer(dial DialFunc) *SMTPSender {
	s.dial = dial
	return s
}

// Validate checks that recipient, subject and body are present.
func Validate(msg models.Email) error {
	var missing []string
	if models.Blank(msg.To) {
		missing = append(missing, "recipient")
	}
	if models.Blank(msg.Subject) {
		missing = append(missing, "subject")
	}
	if models.Blank(msg.Body) {
		missing = append(missing, "body")
	}
	if len(missing) > 0 {
		return errs.NewValidation(missing...)
	}
	return nil
}

// Send validates msg and transmits it in one SMTP session. Validation failures
// return *errs.ValidationError before any connection is attempted; every other
// failure is wrapped in *errs.SendError.
func (s *SMTPSender) Send(ctx context.Context, msg models.Email) error {
	if err := Validate(msg); err != nil {
		return err
	}
	msg.To = strings.TrimSpace(msg.To)
	msg.Subject = strings.TrimSpace(msg.Subject)

	if err := s.send(ctx, msg); err != nil {
		return &errs.SendError{Err: err}
	}
	return nil
}

func (s *SMTPSender) send(ctx context.Context, msg models.Email) error {
	if s.cfg.Host == "" {
		return errors.New("smtp host is not configured")
	}
	from := s.cfg.Sender()
	if from == "" {
		return errors.New("sender address is not configured")
	}
	rcpt, err := mail.ParseAddress(msg.To)
	if err != nil {
		return fmt.Errorf("recipient %q: %w", msg.To, err)
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	conn, err := s.dial(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect %s: %w", addr, err)
	}
	if s.cfg.Timeout > 0 {
		_ = conn.SetDeadline(s.now().Add(s.cfg.Timeout))
	}

	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("greeting: %w", err)
	}
	defer c.Close()

	if s.cfg.StartTLS {
		if ok, _ := c.Extension("STARTTLS"); !ok {
			return errors.New("server does not support STARTTLS")
		}
		tlsCfg := s.TLSConfig
		if tlsCfg == nil {
			tlsCfg = &tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}
		}
		if err := c.StartTLS(tlsCfg); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}

	if s.cfg.Username != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("authenticate: %w", err)
		}
	}

	if err := c.Mail(from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := c.Rcpt(rcpt.Address); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}

	body, err := BuildMessage(s.cfg.FromName, from, msg, s.now(), messageID(from))
	if err != nil {
		return fmt.Errorf("build message: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		_ = w.Close()
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finish message: %w", err)
	}
	return c.Quit()
}

// BuildMessage renders a single-part text/plain RFC 5322 message.
func BuildMessage(fromName, from string, msg models.Email, date time.Time, id string) ([]byte, error) {
	fromAddr := (&mail.Address{Name: fromName, Address: from}).String()

	var buf bytes.Buffer
	header := func(k, v string) { fmt.Fprintf(&buf, "%s: %s\r\n", k, v) }
	header("From", fromAddr)
	header("To", msg.To)
	header("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header("Date", date.Format(time.RFC1123Z))
	header("Message-ID", id)
	header("MIME-Version", "1.0")
	header("Content-Type", "text/plain; charset=UTF-8")
	header("Content-Transfer-Encoding", "quoted-printable")
	buf.WriteString("\r\n")

	qp := quotedprintable.NewWriter(&buf)
	if _, err := qp.Write([]byte(msg.Body)); err != nil {
		return nil, err
	}
	if err := qp.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func messageID(from string) string {
	domain := "localhost"
	if at := strings.LastIndex(from, "@"); at >= 0 && at < len(from)-1 {
		domain = from[at+1:]
	}
	return "<" + uuid.NewString() + "@" + domain + ">"
}
