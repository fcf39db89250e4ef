// Package mailserver stores the SMTP settings edited by an admin.
package mailserver

import (
	"errors"

	"gorm.io/gorm"

	"github.com/GoAssetAdmin/GoAssetAdmin/internal/config"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/controller/setting"
)

const (
	// SettingKeyMailServer is the key used to store the mail server settings in the database.
	SettingKeyMailServer = "mail_server"
)

// TLS policies understood by the mailer.
const (
	TLSMandatory     = "mandatory"
	TLSOpportunistic = "opportunistic"
	TLSNone          = "none"
)

type (
	// Settings represents the SMTP server configuration.
	Settings struct {
		Enabled   bool   `form:"enabled"    json:"enabled"`
		Host      string `form:"host"       json:"host"      validate:"required_if=Enabled true,omitempty,hostname_rfc1123|ip"`
		Port      int    `form:"port"       json:"port"      validate:"required_if=Enabled true,omitempty,min=1,max=65535"`
		Username  string `form:"username"   json:"username"`
		Password  string `form:"password"   json:"password"`
		From      string `form:"from"       json:"from"      validate:"required_if=Enabled true,omitempty,email"`
		FromName  string `form:"from_name"  json:"fromName"`
		TLSPolicy string `form:"tls_policy" json:"tlsPolicy" validate:"omitempty,oneof=mandatory opportunistic none"`
	}
)

// FromConfig converts the file based mail configuration.
func FromConfig(m config.Mail) Settings {
	return Settings{
		Enabled:   m.Enabled,
		Host:      m.Host,
		Port:      m.Port,
		Username:  m.Username,
		Password:  m.Password,
		From:      m.From,
		FromName:  m.FromName,
		TLSPolicy: m.TLSPolicy,
	}
}

// Load loads the mail server settings from the database.
func (s *Settings) Load(db *gorm.DB) error {
	return setting.LoadJSON(db, SettingKeyMailServer, s)
}

// Save saves the mail server settings to the database.
func (s *Settings) Save(db *gorm.DB) error {
	return setting.SaveJSON(db, SettingKeyMailServer, s)
}

// Resolve returns the settings stored in the database, or the file configuration when none were saved.
func Resolve(db *gorm.DB, fallback config.Mail) (Settings, error) {
	var s Settings

	err := s.Load(db)
	switch {
	case err == nil:
		return s, nil
	case errors.Is(err, setting.ErrSettingNotFound):
		return FromConfig(fallback), nil
	default:
		return FromConfig(fallback), err
	}
}
