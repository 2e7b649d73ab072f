// Package mail delivers workplace invitation emails. Sends run off the
// request path, so failures are logged by the caller rather than surfaced
// to clients.
package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/workplane-dev/workplane/internal/models"
)

// Mailer implementations must be safe for concurrent use.
type Mailer interface {
	SendInvitation(ctx context.Context, to string, workplaceID models.WorkplaceID, workplaceName string) error
}

// SMTP sends mail through a plain SMTP endpoint, upgrading to STARTTLS
// when the server offers it.
type SMTP struct {
	Host      string
	Port      string
	Username  string
	Password  string
	From      string
	PublicURL string
}

func (s *SMTP) SendInvitation(ctx context.Context, to string, workplaceID models.WorkplaceID, workplaceName string) error {
	link := fmt.Sprintf("%s/workplaces/%s/invitation", strings.TrimRight(s.PublicURL, "/"), workplaceID)

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.From)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: You have been invited to %s\r\n", workplaceName)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "You have been invited to join the workplace %q.\r\n", workplaceName)
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "Open the link below while signed in to accept the invitation:\r\n%s\r\n", link)

	return s.send(ctx, to, []byte(b.String()))
}

// send dials with the caller's context so detached invitation goroutines
// cannot hang past their deadline.
func (s *SMTP) send(ctx context.Context, to string, msg []byte) error {
	addr := net.JoinHostPort(s.Host, s.Port)

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to dial SMTP server: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open SMTP session: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.Host}); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	if s.Username != "" {
		if err := client.Auth(smtp.PlainAuth("", s.Username, s.Password, s.Host)); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err := client.Mail(s.From); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open message body: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish message: %w", err)
	}

	return client.Quit()
}

// Nop logs invitations instead of delivering them. It stands in when no
// SMTP endpoint is configured.
type Nop struct {
	Log zerolog.Logger
}

func (n Nop) SendInvitation(ctx context.Context, to string, workplaceID models.WorkplaceID, workplaceName string) error {
	n.Log.Info().
		Str("to", to).
		Str("workplace", workplaceID.String()).
		Msg("mail disabled; invitation not delivered")
	return nil
}
