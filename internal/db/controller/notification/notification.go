// Package notification stores and queries in-app notifications.
package notification

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/models"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrNotificationNotFound is returned when a notification does not exist or belongs to another user.
	ErrNotificationNotFound = errors.New("notification not found")
	// ErrNotificationInvalid is returned when a notification misses its recipient, type or title.
	ErrNotificationInvalid = errors.New("notification is invalid")
)

// Create inserts a new notification.
func Create(db *gorm.DB, n *models.Notification) error {
	if db == nil {
		return ErrDBNil
	}
	if n.UserID == 0 || !n.Type.Valid() || n.Title == "" {
		return ErrNotificationInvalid
	}

	return db.Create(n).Error
}

// Get retrieves a notification by its ID.
func Get(db *gorm.DB, id uint64) (*models.Notification, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var n models.Notification
	result := db.First(&n, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, result.Error
	}

	return &n, nil
}

// ExistsSince reports whether a notification for the same user, type, related resource and milestone
// was created at or after since.
func ExistsSince(
	db *gorm.DB,
	userID uint64,
	typ models.NotificationType,
	relatedID uint64,
	milestone models.Milestone,
	since time.Time,
) (bool, error) {
	if db == nil {
		return false, ErrDBNil
	}

	var count int64
	result := db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ? AND related_id = ? AND milestone = ? AND created_at >= ?",
			userID, typ, relatedID, milestone, since.UTC()).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}

// ListUnsent returns up to limit notifications whose email is still pending, oldest first.
func ListUnsent(db *gorm.DB, limit int) ([]models.Notification, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var list []models.Notification
	result := db.Where("email_sent = ?", false).
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&list)
	if result.Error != nil {
		return nil, result.Error
	}

	return list, nil
}

// MarkEmailSent flags the email of a notification as delivered or intentionally skipped.
func MarkEmailSent(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	if _, err := Get(db, id); err != nil {
		return err
	}

	return db.Model(&models.Notification{}).Where("id = ?", id).Update("email_sent", true).Error
}

// ListByUser returns the notifications of a user, newest first.
func ListByUser(db *gorm.DB, userID uint64, unreadOnly bool) ([]models.Notification, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	q := db.Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}

	var list []models.Notification
	if err := q.Order("created_at DESC").Order("id DESC").Find(&list).Error; err != nil {
		return nil, err
	}

	return list, nil
}

// CountUnread returns the number of unread notifications of a user.
func CountUnread(db *gorm.DB, userID uint64) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var count int64
	err := db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error

	return count, err
}

// MarkRead flags one notification of a user as read.
// Notifications of other users are reported as not found.
func MarkRead(db *gorm.DB, userID, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	n, err := Get(db, id)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return ErrNotificationNotFound
	}

	return db.Model(&models.Notification{}).Where("id = ?", id).Update("is_read", true).Error
}

// MarkAllRead flags every notification of a user as read and returns how many changed.
func MarkAllRead(db *gorm.DB, userID uint64) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	result := db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)

	return result.RowsAffected, result.Error
}
