package notifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/jobdigest/internal/digest"
	"github.com/amishk599/jobdigest/internal/model"
)

// Ensure EmailNotifier implements model.Notifier.
var _ model.Notifier = (*EmailNotifier)(nil)

const (
	DefaultSMTPHost = "smtp.gmail.com"
	DefaultSMTPPort = 587
)

// EmailConfig holds SMTP settings for the email notifier.
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string // defaults to From
}

// sendMailFunc matches smtp.SendMail.
type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailNotifier sends the digest as an HTML email over SMTP. The connection
// is upgraded with STARTTLS when the server offers it.
type EmailNotifier struct {
	cfg      EmailConfig
	sendMail sendMailFunc
	logger   *slog.Logger
}

// NewEmailNotifier returns a notifier that emails the rendered digest.
func NewEmailNotifier(cfg EmailConfig, logger *slog.Logger) (*EmailNotifier, error) {
	if cfg.Host == "" {
		cfg.Host = DefaultSMTPHost
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultSMTPPort
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, errors.New("email notifier: from address is required")
	}
	if len(cfg.To) == 0 {
		cfg.To = []string{cfg.From}
	}
	if cfg.Username == "" {
		cfg.Username = cfg.From
	}
	return &EmailNotifier{cfg: cfg, sendMail: smtp.SendMail, logger: logger}, nil
}

// Notify renders the digest and sends one email.
func (n *EmailNotifier) Notify(ctx context.Context, d model.Digest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	html, err := digest.RenderHTML(d)
	if err != nil {
		return err
	}
	subject := digest.Subject(d)
	msg := buildMessage(n.cfg.From, n.cfg.To, subject, html, d.GeneratedAt)

	addr := net.JoinHostPort(n.cfg.Host, strconv.Itoa(n.cfg.Port))
	var auth smtp.Auth
	if n.cfg.Password != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	if err := n.sendMail(addr, auth, n.cfg.From, n.cfg.To, msg); err != nil {
		return fmt.Errorf("send email via %s: %w", addr, err)
	}
	n.logger.Info("email sent", "to", strings.Join(n.cfg.To, ","), "subject", subject, "entries", digest.TotalEntries(d))
	return nil
}

func buildMessage(from string, to []string, subject, html string, date time.Time) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&b, "Date: %s\r\n", date.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(html, "\n", "\r\n"))
	return b.Bytes()
}
