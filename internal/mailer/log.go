package mailer

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/models"
)

// ErrMailDisabled is returned while no mail server is enabled. The notification stays pending.
var ErrMailDisabled = errors.New("mail delivery is disabled")

// LogSender stands in for SMTP while mail is disabled. It logs and never delivers.
type LogSender struct{}

// Send implements alert.Sender. It always returns ErrMailDisabled.
func (LogSender) Send(_ context.Context, n *models.Notification, address, displayName string) error {
	log.Debug().
		Uint64("notification", n.ID).
		Str("to", address).
		Str("name", displayName).
		Str("subject", n.Title).
		Msg("mail disabled, email kept pending")

	return ErrMailDisabled
}
