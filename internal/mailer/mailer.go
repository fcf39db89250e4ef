package mailer

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoAssetAdmin/GoAssetAdmin/internal/config"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/controller/mailserver"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/models"
)

// SettingsFunc returns the mail server settings in effect.
type SettingsFunc func(ctx context.Context) (mailserver.Settings, error)

// DBSettings reads the settings saved by an admin, falling back to the file configuration.
func DBSettings(db *gorm.DB, fallback config.Mail) SettingsFunc {
	return func(ctx context.Context) (mailserver.Settings, error) {
		return mailserver.Resolve(db.WithContext(ctx), fallback)
	}
}

// Mailer sends through SMTP when mail is enabled. Otherwise every send fails with ErrMailDisabled.
type Mailer struct {
	settings SettingsFunc
	renderer *Renderer
	timeout  time.Duration
	disabled LogSender
}

// New returns a Mailer reading its settings from settings on every send.
// timeout bounds one SMTP exchange, zero uses the default.
func New(settings SettingsFunc, renderer *Renderer, timeout time.Duration) *Mailer {
	return &Mailer{settings: settings, renderer: renderer, timeout: timeout}
}

// Send implements alert.Sender.
func (m *Mailer) Send(ctx context.Context, n *models.Notification, address, displayName string) error {
	s, err := m.settings(ctx)
	if err != nil {
		// the fallback settings are still usable
		log.Warn().Err(err).Msg("failed to load mail server settings, using file configuration")
	}

	if !s.Enabled {
		return m.disabled.Send(ctx, n, address, displayName)
	}

	smtp := &SMTPSender{Settings: s, Renderer: m.renderer, Timeout: m.timeout}

	return smtp.Send(ctx, n, address, displayName)
}
