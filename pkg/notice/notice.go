// Package notice sends best-effort account notices over SMTP. Delivery
// failures are reported to the caller but must never fail the request that
// triggered them.
package notice

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/wneessen/go-mail"
)

// SMTPConfig holds the SMTP connection settings
type SMTPConfig struct {
	Host     string
	Port     int
	TLS      bool
	Username string
	Password string
	From     string
}

// Notifier delivers account notices to a recipient address
type Notifier interface {
	SendWelcome(ctx context.Context, to, username string) error
}

const welcomeSubject = "Your PBX account"

const welcomeTemplate = `<html><body>
<p>Hello {{.Username}},</p>
<p>An account has been created for you. You can now sign in with your username.</p>
</body></html>`

// EmailNotifier sends notices through an SMTP server using go-mail
type EmailNotifier struct {
	config   SMTPConfig
	client   *mail.Client
	template *template.Template
}

// NewEmailNotifier creates a mail client for the given SMTP configuration
func NewEmailNotifier(config SMTPConfig) (*EmailNotifier, error) {
	opts := []mail.Option{
		mail.WithPort(config.Port),
		mail.WithTimeout(30),
	}

	// Only add authentication if username and password are provided
	if config.Username != "" && config.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(config.Username),
			mail.WithPassword(config.Password),
		)
	}

	if config.TLS {
		opts = append(opts,
			mail.WithTLSConfig(&tls.Config{InsecureSkipVerify: true}),
			mail.WithTLSPolicy(mail.TLSMandatory),
		)
	} else {
		opts = append(opts,
			mail.WithTLSConfig(&tls.Config{InsecureSkipVerify: true}),
			mail.WithTLSPolicy(mail.NoTLS),
		)
	}

	client, err := mail.NewClient(config.Host, opts...)
	if err != nil {
		slog.Error("Failed to create mail client", "err", err)
		return nil, err
	}

	tmpl, err := template.New("welcome").Parse(welcomeTemplate)
	if err != nil {
		return nil, err
	}

	return &EmailNotifier{config: config, client: client, template: tmpl}, nil
}

// SendWelcome sends the welcome notice to a newly created user
func (e *EmailNotifier) SendWelcome(ctx context.Context, to, username string) error {
	if to == "" {
		return fmt.Errorf("welcome notice requires a recipient address")
	}

	var body bytes.Buffer
	if err := e.template.Execute(&body, struct{ Username string }{Username: username}); err != nil {
		return err
	}

	msg := mail.NewMsg()
	if err := msg.From(e.config.From); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(welcomeSubject)
	msg.SetBodyString(mail.TypeTextHTML, body.String())

	if err := e.client.DialAndSendWithContext(ctx, msg); err != nil {
		slog.Error("Failed to send welcome notice", "err", err, "to", to)
		return err
	}

	slog.Info("Welcome notice sent", "to", to, "host", e.config.Host)
	return nil
}
