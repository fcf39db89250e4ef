package alert

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/controller/alertsettings"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/controller/asset"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/controller/jobstate"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/controller/notification"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/controller/profile"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/models"
)

// SettingsStore persists alert settings.
// GetAlertSettings returns alertsettings.ErrAlertSettingsNotFound for users without a row and
// CreateAlertSettings returns alertsettings.ErrAlertSettingsAlreadyExists when the row exists.
type SettingsStore interface {
	GetAlertSettings(ctx context.Context, userID uint64) (*models.AlertSettings, error)
	CreateAlertSettings(ctx context.Context, s *models.AlertSettings) error
	SaveAlertSettings(ctx context.Context, s *models.AlertSettings) error
}

// NotificationStore persists notifications.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	RecentNotificationExists(
		ctx context.Context,
		userID uint64,
		typ models.NotificationType,
		relatedID uint64,
		milestone models.Milestone,
		since time.Time,
	) (bool, error)
	ListUnsentNotifications(ctx context.Context, limit int) ([]models.Notification, error)
	MarkEmailSent(ctx context.Context, id uint64) error
}

// AssetStore finds assets with a date inside [from, to).
type AssetStore interface {
	LicensesExpiringBetween(ctx context.Context, from, to time.Time) ([]models.License, error)
	EquipmentDueBetween(ctx context.Context, from, to time.Time) ([]models.Equipment, error)
}

// UserStore reads alert recipients.
type UserStore interface {
	GetUser(ctx context.Context, id uint64) (*models.User, error)
	ActiveStaff(ctx context.Context) ([]models.User, error)
	ActiveAdmins(ctx context.Context) ([]models.User, error)
	ActiveClientUsers(ctx context.Context, clientID uint64) ([]models.User, error)
}

// JobRecorder keeps the report of the last run of a job.
type JobRecorder interface {
	SaveJobReport(ctx context.Context, r jobstate.Report) error
}

// Store is everything the scanner and the worker read and write.
type Store interface {
	SettingsStore
	NotificationStore
	AssetStore
	UserStore
	JobRecorder
}

// GormStore implements Store with the database controllers.
type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

// NewGormStore returns a Store backed by db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// GetAlertSettings implements SettingsStore.
func (s *GormStore) GetAlertSettings(ctx context.Context, userID uint64) (*models.AlertSettings, error) {
	return alertsettings.Get(s.conn(ctx), userID)
}

// CreateAlertSettings implements SettingsStore.
func (s *GormStore) CreateAlertSettings(ctx context.Context, settings *models.AlertSettings) error {
	return alertsettings.Create(s.conn(ctx), settings)
}

// SaveAlertSettings implements SettingsStore.
func (s *GormStore) SaveAlertSettings(ctx context.Context, settings *models.AlertSettings) error {
	return alertsettings.Save(s.conn(ctx), settings)
}

// CreateNotification implements NotificationStore.
func (s *GormStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	return notification.Create(s.conn(ctx), n)
}

// RecentNotificationExists implements NotificationStore.
func (s *GormStore) RecentNotificationExists(
	ctx context.Context,
	userID uint64,
	typ models.NotificationType,
	relatedID uint64,
	milestone models.Milestone,
	since time.Time,
) (bool, error) {
	return notification.ExistsSince(s.conn(ctx), userID, typ, relatedID, milestone, since)
}

// ListUnsentNotifications implements NotificationStore.
func (s *GormStore) ListUnsentNotifications(ctx context.Context, limit int) ([]models.Notification, error) {
	return notification.ListUnsent(s.conn(ctx), limit)
}

// MarkEmailSent implements NotificationStore.
func (s *GormStore) MarkEmailSent(ctx context.Context, id uint64) error {
	return notification.MarkEmailSent(s.conn(ctx), id)
}

// LicensesExpiringBetween implements AssetStore.
func (s *GormStore) LicensesExpiringBetween(ctx context.Context, from, to time.Time) ([]models.License, error) {
	return asset.LicensesExpiringBetween(s.conn(ctx), from, to)
}

// EquipmentDueBetween implements AssetStore.
func (s *GormStore) EquipmentDueBetween(ctx context.Context, from, to time.Time) ([]models.Equipment, error) {
	return asset.EquipmentDueBetween(s.conn(ctx), from, to)
}

// GetUser implements UserStore.
func (s *GormStore) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	return profile.Get(s.conn(ctx), id)
}

// ActiveStaff implements UserStore.
func (s *GormStore) ActiveStaff(ctx context.Context) ([]models.User, error) {
	return profile.ListActiveStaff(s.conn(ctx))
}

// ActiveAdmins implements UserStore.
func (s *GormStore) ActiveAdmins(ctx context.Context) ([]models.User, error) {
	return profile.ListActiveByRole(s.conn(ctx), models.RoleAdmin)
}

// ActiveClientUsers implements UserStore.
func (s *GormStore) ActiveClientUsers(ctx context.Context, clientID uint64) ([]models.User, error) {
	return profile.ListActiveClientUsers(s.conn(ctx), clientID)
}

// SaveJobReport implements JobRecorder.
func (s *GormStore) SaveJobReport(ctx context.Context, r jobstate.Report) error {
	return jobstate.Save(s.conn(ctx), r)
}
