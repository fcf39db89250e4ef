package alert

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GoAssetAdmin/GoAssetAdmin/internal/config"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/dbtest"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/models"
)

type testEnv struct {
	db       *gorm.DB
	store    *GormStore
	resolver *Resolver
	now      time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gdb := dbtest.New(t)
	store := NewGormStore(gdb)

	return &testEnv{
		db:       gdb,
		store:    store,
		resolver: NewResolver(store),
		now:      time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC),
	}
}

func (e *testEnv) scanner(store Store) *Scanner {
	s := NewScanner(store, NewResolver(store), config.Alerts{
		TimeZone:      "UTC",
		LookaheadDays: 366,
		DedupWindow:   24 * time.Hour,
	})
	s.now = func() time.Time { return e.now }

	return s
}

func (e *testEnv) license(t *testing.T, clientID uint64, name string, inDays int, status models.LicenseStatus) models.License {
	t.Helper()

	l := models.License{
		ClientID:   clientID,
		Name:       name,
		ExpiryDate: Today(e.now, time.UTC).AddDate(0, 0, inDays),
		Status:     status,
	}
	require.NoError(t, e.db.Create(&l).Error)

	return l
}

func (e *testEnv) equipment(t *testing.T, clientID uint64, name string, obsolescence, endOfSale *int) models.Equipment {
	t.Helper()

	at := func(days *int) *time.Time {
		if days == nil {
			return nil
		}

		d := Today(e.now, time.UTC).AddDate(0, 0, *days)

		return &d
	}

	eq := models.Equipment{
		ClientID:                  clientID,
		Name:                      name,
		SerialNumber:              "SN-" + name,
		EstimatedObsolescenceDate: at(obsolescence),
		EndOfSale:                 at(endOfSale),
	}
	require.NoError(t, e.db.Create(&eq).Error)

	return eq
}

func (e *testEnv) notificationsOf(t *testing.T, userID uint64) []models.Notification {
	t.Helper()

	var ns []models.Notification
	require.NoError(t, e.db.Where("user_id = ?", userID).Order("id ASC").Find(&ns).Error)

	return ns
}

func intp(v int) *int { return &v }

func boolp(v bool) *bool { return &v }

type sentMail struct {
	NotificationID uint64
	Address        string
	Name           string
}

// recordingSender records every send. Sends to addresses in fail return an error.
type recordingSender struct {
	mu   sync.Mutex
	sent []sentMail
	fail map[string]error
	hook func(ctx context.Context, n *models.Notification)
}

func (r *recordingSender) Send(ctx context.Context, n *models.Notification, address, name string) error {
	if r.hook != nil {
		r.hook(ctx, n)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err, ok := r.fail[address]; ok {
		return err
	}

	r.sent = append(r.sent, sentMail{NotificationID: n.ID, Address: address, Name: name})

	return nil
}

func (r *recordingSender) Sent() []sentMail {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]sentMail(nil), r.sent...)
}
