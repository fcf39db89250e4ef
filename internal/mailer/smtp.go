package mailer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/controller/mailserver"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/models"
)

const defaultTimeout = 15 * time.Second

// ErrMailServerIncomplete is returned when mail is enabled without host or sender address.
var ErrMailServerIncomplete = errors.New("mail server settings are incomplete")

// SMTPSender sends notifications through one SMTP server.
type SMTPSender struct {
	Settings mailserver.Settings
	Renderer *Renderer
	Timeout  time.Duration
}

// Send implements alert.Sender.
func (s *SMTPSender) Send(ctx context.Context, n *models.Notification, address, displayName string) error {
	msg, err := s.Message(n, address, displayName)
	if err != nil {
		return err
	}

	client, err := s.client()
	if err != nil {
		return err
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", address, err)
	}

	return nil
}

// Message builds the email of n for address.
func (s *SMTPSender) Message(n *models.Notification, address, displayName string) (*mail.Msg, error) {
	if s.Settings.Host == "" || s.Settings.From == "" {
		return nil, ErrMailServerIncomplete
	}

	msg := mail.NewMsg()

	if err := msg.FromFormat(s.Settings.FromName, s.Settings.From); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}

	if err := msg.AddToFormat(displayName, address); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}

	msg.Subject(n.Title)

	body, err := s.Renderer.HTML(n, displayName)
	if err != nil {
		return nil, err
	}

	msg.SetBodyString(mail.TypeTextPlain, s.Renderer.Text(n, displayName))
	msg.AddAlternativeString(mail.TypeTextHTML, body)

	return msg, nil
}

func (s *SMTPSender) client() (*mail.Client, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	opts := []mail.Option{
		mail.WithTimeout(timeout),
		mail.WithTLSPolicy(tlsPolicy(s.Settings.TLSPolicy)),
	}

	if s.Settings.Port > 0 {
		opts = append(opts, mail.WithPort(s.Settings.Port))
	}

	if s.Settings.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.Settings.Username),
			mail.WithPassword(s.Settings.Password),
		)
	}

	client, err := mail.NewClient(s.Settings.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create mail client: %w", err)
	}

	return client, nil
}

func tlsPolicy(p string) mail.TLSPolicy {
	switch p {
	case mailserver.TLSMandatory:
		return mail.TLSMandatory
	case mailserver.TLSNone:
		return mail.NoTLS
	default:
		return mail.TLSOpportunistic
	}
}
