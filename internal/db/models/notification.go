package models

import "time"

// NotificationType classifies a notification.
type NotificationType string

const (
	// NotificationLicenseExpiry is raised when a license reaches one of the user's license thresholds.
	NotificationLicenseExpiry NotificationType = "license_expiry"
	// NotificationEquipmentObsolescence is raised when an equipment date reaches one of the user's thresholds.
	NotificationEquipmentObsolescence NotificationType = "equipment_obsolescence"
	// NotificationGeneral is a free-form notification created by an admin.
	NotificationGeneral NotificationType = "general"
	// NotificationNewUnverifiedUser tells admins that an account waits for verification.
	NotificationNewUnverifiedUser NotificationType = "new_unverified_user"
)

// Valid reports whether t is one of the known notification types.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationLicenseExpiry, NotificationEquipmentObsolescence, NotificationGeneral, NotificationNewUnverifiedUser:
		return true
	default:
		return false
	}
}

// Related resource types of a notification.
const (
	RelatedTypeLicense   = "license"
	RelatedTypeEquipment = "equipment"
	RelatedTypeUser      = "user"
)

// Milestone names the asset date that triggered an alert.
type Milestone string

const (
	// MilestoneNone is used for notifications that are not tied to an asset date.
	MilestoneNone Milestone = ""
	// MilestoneExpiry is the license expiry date.
	MilestoneExpiry Milestone = "expiry"
	// MilestoneObsolescence is the estimated obsolescence date of an equipment unit.
	MilestoneObsolescence Milestone = "obsolescence"
	// MilestoneEndOfSale is the end-of-sale date of an equipment unit.
	MilestoneEndOfSale Milestone = "end_of_sale"
)

// Notification is an in-app message for one user, optionally delivered by email.
// Content fields are immutable after creation; only IsRead and EmailSent change.
type Notification struct {
	// ID is the unique identifier for the notification.
	ID uint64 `gorm:"primaryKey" json:"id"`
	// UserID is the recipient.
	UserID uint64 `gorm:"not null;index:idx_notification_dedup,priority:1" json:"user_id"`
	// User is the recipient (loaded via foreign key).
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	// Type classifies the notification.
	Type NotificationType `gorm:"type:varchar(40);not null;index:idx_notification_dedup,priority:2" json:"type"`
	// Title is the short headline.
	Title string `gorm:"size:255;not null" json:"title"`
	// Message is the body text.
	Message string `gorm:"type:text" json:"message"`
	// RelatedID is the identifier of the related resource, if any.
	RelatedID *uint64 `gorm:"index:idx_notification_dedup,priority:3" json:"related_id"`
	// RelatedType is the kind of the related resource ("license", "equipment", "user").
	RelatedType string `gorm:"size:40" json:"related_type"`
	// Milestone is the asset date that triggered the alert, empty otherwise.
	Milestone Milestone `gorm:"type:varchar(20)" json:"milestone"`
	// IsRead is set once the recipient has seen the notification.
	IsRead bool `gorm:"not null;index" json:"is_read"`
	// EmailSent is set once the email was delivered, or skipped because the recipient disabled emails.
	EmailSent bool `gorm:"not null;index" json:"email_sent"`
	// CreatedAt is the creation timestamp (managed by GORM).
	CreatedAt time.Time `gorm:"index:idx_notification_dedup,priority:4" json:"created_at"`
}
