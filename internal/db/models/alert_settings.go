package models

import (
	"time"

	"gorm.io/datatypes"
)

// DefaultLicenseAlertDays are the day-counts before license expiry that raise an alert by default.
var DefaultLicenseAlertDays = []int{7, 30} //nolint:gochecknoglobals

// DefaultEquipmentAlertDays are the day-counts before equipment obsolescence that raise an alert by default.
var DefaultEquipmentAlertDays = []int{30, 90} //nolint:gochecknoglobals

// AlertSettings holds the per-user alert thresholds and delivery preference.
// There is at most one row per user; it is created with defaults on first access.
type AlertSettings struct {
	// ID is the unique identifier for the row.
	ID uint64 `gorm:"primaryKey" json:"id"`
	// UserID is the owning user. Unique: one settings row per user.
	UserID uint64 `gorm:"not null;uniqueIndex" json:"user_id"`
	// User is the owning user (loaded via foreign key).
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	// LicenseAlertDays are the exact day-counts before a license expiry that trigger a notification.
	LicenseAlertDays datatypes.JSONSlice[int] `json:"license_alert_days"`
	// EquipmentAlertDays are the exact day-counts before an equipment date that trigger a notification.
	EquipmentAlertDays datatypes.JSONSlice[int] `json:"equipment_alert_days"`
	// EmailEnabled tells the dispatcher whether notifications should also be sent by email.
	EmailEnabled bool `gorm:"not null" json:"email_enabled"`
	// CreatedAt is the timestamp when the settings were created (managed by GORM).
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is the timestamp when the settings were last updated (managed by GORM).
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDefaultAlertSettings returns the settings provisioned for a user without a row.
func NewDefaultAlertSettings(userID uint64) *AlertSettings {
	return &AlertSettings{
		UserID:             userID,
		LicenseAlertDays:   append(datatypes.JSONSlice[int]{}, DefaultLicenseAlertDays...),
		EquipmentAlertDays: append(datatypes.JSONSlice[int]{}, DefaultEquipmentAlertDays...),
		EmailEnabled:       true,
	}
}

// HasLicenseAlertDay reports whether days is one of the configured license thresholds.
func (s *AlertSettings) HasLicenseAlertDay(days int) bool {
	return containsDay(s.LicenseAlertDays, days)
}

// HasEquipmentAlertDay reports whether days is one of the configured equipment thresholds.
func (s *AlertSettings) HasEquipmentAlertDay(days int) bool {
	return containsDay(s.EquipmentAlertDays, days)
}

func containsDay(set []int, days int) bool {
	for _, d := range set {
		if d == days {
			return true
		}
	}

	return false
}
