// Package asset queries licenses and equipment that are due for an alert.
package asset

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/models"
)

// ErrDBNil is returned when the database connection is nil.
var ErrDBNil = errors.New("database connection is nil")

// LicensesExpiringBetween returns the non-cancelled licenses with from <= expiry_date < to, soonest first.
func LicensesExpiringBetween(db *gorm.DB, from, to time.Time) ([]models.License, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var list []models.License
	result := db.Where("status <> ? AND expiry_date >= ? AND expiry_date < ?",
		models.LicenseStatusCancelled, from.UTC(), to.UTC()).
		Order("expiry_date ASC").
		Order("id ASC").
		Find(&list)
	if result.Error != nil {
		return nil, result.Error
	}

	return list, nil
}

// EquipmentDueBetween returns the units whose obsolescence or end-of-sale date lies in [from, to).
func EquipmentDueBetween(db *gorm.DB, from, to time.Time) ([]models.Equipment, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	from, to = from.UTC(), to.UTC()

	var list []models.Equipment
	result := db.Where(
		"(estimated_obsolescence_date >= ? AND estimated_obsolescence_date < ?) OR (end_of_sale >= ? AND end_of_sale < ?)",
		from, to, from, to).
		Order("id ASC").
		Find(&list)
	if result.Error != nil {
		return nil, result.Error
	}

	return list, nil
}
