package models

import "time"

// Client represents a customer organisation owning licenses and equipment.
type Client struct {
	// ID is the unique identifier for the client.
	ID uint64 `gorm:"primaryKey" json:"id"`
	// Name is the display name of the organisation.
	Name string `gorm:"size:255;not null" json:"name"`
	// ContactEmail is the main contact address of the organisation.
	ContactEmail string `gorm:"size:255" json:"contact_email"`
	// Notes holds free-form comments about the client.
	Notes string `gorm:"type:text" json:"notes"`
	// CreatedAt is the timestamp when the client was created (managed by GORM).
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is the timestamp when the client was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updated_at"`
}
