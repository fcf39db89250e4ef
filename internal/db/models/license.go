package models

import "time"

// LicenseStatus is the lifecycle state of a software license.
type LicenseStatus string

const (
	// LicenseStatusActive is a license currently in use.
	LicenseStatusActive LicenseStatus = "active"
	// LicenseStatusExpired is a license past its expiry date.
	LicenseStatusExpired LicenseStatus = "expired"
	// LicenseStatusCancelled is a license that will not be renewed and never raises alerts.
	LicenseStatusCancelled LicenseStatus = "cancelled"
)

// License represents a software license owned by a client.
type License struct {
	// ID is the unique identifier for the license.
	ID uint64 `gorm:"primaryKey" json:"id"`
	// ClientID is the owning client.
	ClientID uint64 `gorm:"not null;index" json:"client_id"`
	// Client is the owning client (loaded via foreign key).
	Client Client `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"-"`
	// Name is the product name of the license.
	Name string `gorm:"size:255;not null" json:"name"`
	// Vendor is the software editor.
	Vendor string `gorm:"size:255" json:"vendor"`
	// Seats is the number of seats covered by the license.
	Seats int `json:"seats"`
	// ExpiryDate is the calendar date on which the license expires.
	ExpiryDate time.Time `gorm:"not null;index" json:"expiry_date"`
	// Status is the lifecycle state of the license.
	Status LicenseStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	// CreatedAt is the timestamp when the license was created (managed by GORM).
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is the timestamp when the license was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updated_at"`
}
