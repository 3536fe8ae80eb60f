package mail

import (
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"

	"tenderdesk/api/internal/config"
)

// Mailer delivers the verification and password-reset emails over SMTP.
// The plain tokens only ever leave the system through these messages.
type Mailer struct {
	cfg       config.SMTPConfig
	clientURL string
}

func New(cfg config.SMTPConfig, clientURL string) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("smtp from address is required")
	}

	return &Mailer{
		cfg:       cfg,
		clientURL: strings.TrimSuffix(clientURL, "/"),
	}, nil
}

func (m *Mailer) SendVerificationEmail(to string, token string) error {
	link := fmt.Sprintf("%s/verify-email.html?token=%s", m.clientURL, token)
	body := fmt.Sprintf(
		"Welcome!\n\nPlease verify your email address by opening this link:\n\n%s\n\nThe link stays valid until used.\n",
		link,
	)
	return m.send(to, "Verify Your Email", body)
}

func (m *Mailer) SendPasswordResetEmail(to string, token string) error {
	link := fmt.Sprintf("%s/reset-password.html?token=%s", m.clientURL, token)
	body := fmt.Sprintf(
		"You requested a password reset.\n\nOpen this link to choose a new password:\n\n%s\n\nThe link expires in one hour. If you did not request a reset, ignore this message.\n",
		link,
	)
	return m.send(to, "Password Reset Request", body)
}

func (m *Mailer) send(to string, subject string, body string) error {
	msg := mail.NewMsg()

	if m.cfg.FromName != "" {
		if err := msg.FromFormat(m.cfg.FromName, m.cfg.From); err != nil {
			return fmt.Errorf("set from: %w", err)
		}
	} else {
		if err := msg.From(m.cfg.From); err != nil {
			return fmt.Errorf("set from: %w", err)
		}
	}

	if err := msg.To(to); err != nil {
		return fmt.Errorf("set to: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
	}

	if m.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		if m.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if m.cfg.Username != "" && m.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("mail client: %w", err)
	}

	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	return nil
}
