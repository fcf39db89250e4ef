// Package models contains database model definitions.
package models

import "time"

// Setting represents an application setting stored in the database as an opaque blob.
// Structured settings (mail server, job reports) are stored as JSON documents.
type Setting struct {
	ID        uint64 `gorm:"primaryKey"`
	Name      string `gorm:"unique;size:100;not null"`
	Value     []byte
	UpdatedAt time.Time
}
