// Package alertsettings persists the per-user alert thresholds.
package alertsettings

import (
	"errors"

	"gorm.io/gorm"

	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/models"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrAlertSettingsNotFound is returned when the user has no settings row yet.
	ErrAlertSettingsNotFound = errors.New("alert settings not found")
	// ErrAlertSettingsAlreadyExists is returned when a settings row for the user exists already.
	ErrAlertSettingsAlreadyExists = errors.New("alert settings already exist")
	// ErrUserIDZero is returned when the settings are not bound to a user.
	ErrUserIDZero = errors.New("alert settings need a user id")
)

// Get retrieves the settings of a user.
func Get(db *gorm.DB, userID uint64) (*models.AlertSettings, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var s models.AlertSettings
	result := db.Where("user_id = ?", userID).First(&s)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrAlertSettingsNotFound
		}
		return nil, result.Error
	}

	return &s, nil
}

// Create inserts the settings row of a user.
// A concurrent insert of the same user surfaces as ErrAlertSettingsAlreadyExists as well.
func Create(db *gorm.DB, s *models.AlertSettings) error {
	if db == nil {
		return ErrDBNil
	}
	if s.UserID == 0 {
		return ErrUserIDZero
	}

	var count int64
	if err := db.Model(&models.AlertSettings{}).Where("user_id = ?", s.UserID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrAlertSettingsAlreadyExists
	}

	if err := db.Create(s).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlertSettingsAlreadyExists
		}
		return err
	}

	return nil
}

// Save writes every field of an existing settings row.
func Save(db *gorm.DB, s *models.AlertSettings) error {
	if db == nil {
		return ErrDBNil
	}
	if s.ID == 0 {
		return ErrAlertSettingsNotFound
	}

	return db.Save(s).Error
}
