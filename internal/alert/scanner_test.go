package alert

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/controller/jobstate"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/dbtest"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/models"
)

type scanFixture struct {
	acme, globex        models.Client
	admin, tech         models.User
	acmeUser, globexUsr models.User
}

func newScanFixture(t *testing.T, env *testEnv) scanFixture {
	t.Helper()

	f := scanFixture{
		acme:   dbtest.Client(t, env.db, "Acme"),
		globex: dbtest.Client(t, env.db, "Globex"),
	}
	f.admin = dbtest.User(t, env.db, "admin", models.RoleAdmin, 0)
	f.tech = dbtest.User(t, env.db, "tech", models.RoleTechnician, 0)
	f.acmeUser = dbtest.User(t, env.db, "wile", models.RoleClient, f.acme.ID)
	f.globexUsr = dbtest.User(t, env.db, "hank", models.RoleClient, f.globex.ID)

	return f
}

func TestScanLicensesExactThreshold(t *testing.T) {
	env := newTestEnv(t)
	f := newScanFixture(t, env)
	ctx := context.Background()

	matching := env.license(t, f.acme.ID, "Office Suite", 7, models.LicenseStatusActive)
	env.license(t, f.acme.ID, "Antivirus", 8, models.LicenseStatusActive)
	env.license(t, f.acme.ID, "CAD", 6, models.LicenseStatusActive)

	report, err := env.scanner(env.store).ScanLicenses(ctx)
	require.NoError(t, err)
	assert.Equal(t, ClassReport{Assets: 3, Created: 3}, report)

	for _, u := range []models.User{f.admin, f.tech, f.acmeUser} {
		ns := env.notificationsOf(t, u.ID)
		require.Len(t, ns, 1, u.Username)

		n := ns[0]
		assert.Equal(t, models.NotificationLicenseExpiry, n.Type)
		assert.Equal(t, models.MilestoneExpiry, n.Milestone)
		assert.Equal(t, models.RelatedTypeLicense, n.RelatedType)
		require.NotNil(t, n.RelatedID)
		assert.Equal(t, matching.ID, *n.RelatedID)
		assert.Equal(t, "License expiring in 7 days: Office Suite", n.Title)
		assert.False(t, n.IsRead)
		assert.False(t, n.EmailSent)
		assert.True(t, env.now.Equal(n.CreatedAt), "created at the scan clock")
	}

	assert.Contains(t, env.notificationsOf(t, f.acmeUser.ID)[0].Message, "Contact your administrator")
	assert.NotContains(t, env.notificationsOf(t, f.admin.ID)[0].Message, "Contact your administrator")
	assert.Empty(t, env.notificationsOf(t, f.globexUsr.ID), "users of other clients are not told")
}

func TestScanLicensesSkipsCancelledAndPast(t *testing.T) {
	env := newTestEnv(t)
	f := newScanFixture(t, env)

	env.license(t, f.acme.ID, "Old", 7, models.LicenseStatusCancelled)
	env.license(t, f.acme.ID, "Gone", -7, models.LicenseStatusExpired)

	report, err := env.scanner(env.store).ScanLicenses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ClassReport{}, report)
}

func TestScanSkipsInactiveAndUnverifiedUsers(t *testing.T) {
	env := newTestEnv(t)
	f := newScanFixture(t, env)

	inactive := dbtest.User(t, env.db, "former", models.RoleAdmin, 0)
	require.NoError(t, env.db.Model(&inactive).Update("active", false).Error)

	pending := dbtest.User(t, env.db, "pending", models.RoleUnverified, 0)

	env.license(t, f.acme.ID, "Office Suite", 30, models.LicenseStatusActive)

	report, err := env.scanner(env.store).ScanLicenses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Created)
	assert.Empty(t, env.notificationsOf(t, inactive.ID))
	assert.Empty(t, env.notificationsOf(t, pending.ID))
}

func TestScanDedupWindow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	acme := dbtest.Client(t, env.db, "Acme")
	admin := dbtest.User(t, env.db, "admin", models.RoleAdmin, 0)

	_, err := env.resolver.UpdateSettings(ctx, admin.ID, SettingsPatch{LicenseAlertDays: &[]int{6, 7}})
	require.NoError(t, err)

	env.license(t, acme.ID, "Office Suite", 7, models.LicenseStatusActive)
	s := env.scanner(env.store)

	report, err := s.ScanLicenses(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)

	// same day, one hour later
	env.now = env.now.Add(time.Hour)
	report, err = s.ScanLicenses(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Created)
	assert.Equal(t, 1, report.Duplicates)

	// next day: the 6 day threshold matches and the window has passed
	env.now = env.now.Add(24 * time.Hour)
	report, err = s.ScanLicenses(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 0, report.Duplicates)

	ns := env.notificationsOf(t, admin.ID)
	require.Len(t, ns, 2)
	assert.Equal(t, "License expiring in 7 days: Office Suite", ns[0].Title)
	assert.Equal(t, "License expiring in 6 days: Office Suite", ns[1].Title)
}

func TestScanUsesRecipientSettings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	acme := dbtest.Client(t, env.db, "Acme")
	quiet := dbtest.User(t, env.db, "quiet", models.RoleAdmin, 0)
	custom := dbtest.User(t, env.db, "custom", models.RoleTechnician, 0)

	_, err := env.resolver.UpdateSettings(ctx, quiet.ID, SettingsPatch{EmailEnabled: boolp(false)})
	require.NoError(t, err)
	_, err = env.resolver.UpdateSettings(ctx, custom.ID, SettingsPatch{LicenseAlertDays: &[]int{45}})
	require.NoError(t, err)

	env.license(t, acme.ID, "Office Suite", 30, models.LicenseStatusActive)
	env.license(t, acme.ID, "CAD", 45, models.LicenseStatusActive)

	_, err = env.scanner(env.store).ScanLicenses(ctx)
	require.NoError(t, err)

	ns := env.notificationsOf(t, quiet.ID)
	require.Len(t, ns, 1)
	assert.Contains(t, ns[0].Title, "Office Suite")
	assert.True(t, ns[0].EmailSent, "recipients without email never wait for dispatch")

	ns = env.notificationsOf(t, custom.ID)
	require.Len(t, ns, 1)
	assert.Contains(t, ns[0].Title, "CAD")
	assert.False(t, ns[0].EmailSent)
}

func TestScanEquipmentMilestones(t *testing.T) {
	env := newTestEnv(t)
	f := newScanFixture(t, env)
	ctx := context.Background()

	both := env.equipment(t, f.acme.ID, "Switch", intp(30), intp(90))
	sameDay := env.equipment(t, f.globex.ID, "Laptop", intp(30), intp(30))
	env.equipment(t, f.acme.ID, "Printer", nil, intp(31))
	env.equipment(t, f.acme.ID, "Router", nil, nil)

	report, err := env.scanner(env.store).ScanEquipment(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Assets)
	// admin and technician: 4 each, acme user: 2, globex user: 2
	assert.Equal(t, 12, report.Created)

	acme := env.notificationsOf(t, f.acmeUser.ID)
	require.Len(t, acme, 2)

	for _, n := range acme {
		assert.Equal(t, models.NotificationEquipmentObsolescence, n.Type)
		assert.Equal(t, both.ID, *n.RelatedID)
	}

	assert.ElementsMatch(t,
		[]models.Milestone{models.MilestoneObsolescence, models.MilestoneEndOfSale},
		[]models.Milestone{acme[0].Milestone, acme[1].Milestone})

	globex := env.notificationsOf(t, f.globexUsr.ID)
	require.Len(t, globex, 2, "both dates of one unit alert independently")

	for _, n := range globex {
		assert.Equal(t, sameDay.ID, *n.RelatedID)
	}

	report, err = env.scanner(env.store).ScanEquipment(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Created)
	assert.Equal(t, 12, report.Duplicates)
}

// faultyStore injects failures into an otherwise working store.
type faultyStore struct {
	*GormStore
	failSettingsOf uint64
	failLicenses   bool
	failClientsOf  uint64
	failCreateFor  uint64
}

var errInjected = errors.New("injected failure")

func (s *faultyStore) GetAlertSettings(ctx context.Context, userID uint64) (*models.AlertSettings, error) {
	if userID == s.failSettingsOf {
		return nil, errInjected
	}

	return s.GormStore.GetAlertSettings(ctx, userID)
}

func (s *faultyStore) LicensesExpiringBetween(ctx context.Context, from, to time.Time) ([]models.License, error) {
	if s.failLicenses {
		return nil, errInjected
	}

	return s.GormStore.LicensesExpiringBetween(ctx, from, to)
}

func (s *faultyStore) ActiveClientUsers(ctx context.Context, clientID uint64) ([]models.User, error) {
	if clientID == s.failClientsOf {
		return nil, errInjected
	}

	return s.GormStore.ActiveClientUsers(ctx, clientID)
}

func (s *faultyStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.UserID == s.failCreateFor {
		return errInjected
	}

	return s.GormStore.CreateNotification(ctx, n)
}

func TestScanFailsOpenPerRecipient(t *testing.T) {
	env := newTestEnv(t)
	f := newScanFixture(t, env)

	env.license(t, f.acme.ID, "Office Suite", 7, models.LicenseStatusActive)
	env.license(t, f.globex.ID, "CAD", 7, models.LicenseStatusActive)

	store := &faultyStore{GormStore: env.store, failSettingsOf: f.admin.ID, failCreateFor: f.tech.ID}

	report, err := env.scanner(store).ScanLicenses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Assets)
	assert.Equal(t, 4, report.Errors, "admin and technician fail for both licenses")
	assert.Equal(t, 2, report.Created)

	assert.Len(t, env.notificationsOf(t, f.acmeUser.ID), 1)
	assert.Len(t, env.notificationsOf(t, f.globexUsr.ID), 1)
}

func TestScanClientLookupFailureKeepsStaff(t *testing.T) {
	env := newTestEnv(t)
	f := newScanFixture(t, env)

	env.license(t, f.acme.ID, "Office Suite", 7, models.LicenseStatusActive)

	store := &faultyStore{GormStore: env.store, failClientsOf: f.acme.ID}

	report, err := env.scanner(store).ScanLicenses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Errors)
	assert.Equal(t, 2, report.Created)
	assert.Len(t, env.notificationsOf(t, f.admin.ID), 1)
	assert.Empty(t, env.notificationsOf(t, f.acmeUser.ID))
}

func TestRunAllContinuesAfterClassFailure(t *testing.T) {
	env := newTestEnv(t)
	f := newScanFixture(t, env)

	env.license(t, f.acme.ID, "Office Suite", 7, models.LicenseStatusActive)
	env.equipment(t, f.acme.ID, "Switch", intp(30), nil)

	store := &faultyStore{GormStore: env.store, failLicenses: true}

	report, err := env.scanner(store).RunAll(context.Background())
	require.ErrorIs(t, err, errInjected)
	assert.Equal(t, 0, report.Licenses.Created)
	assert.Equal(t, 3, report.Equipment.Created)
	assert.NotEmpty(t, report.RunID)

	stored, err := jobstate.Load(env.db, jobstate.JobAlertScan)
	require.NoError(t, err)
	assert.Equal(t, report.RunID, stored.RunID)
	assert.Equal(t, 3, stored.Counters["equipment_created"])
	assert.Contains(t, stored.Error, errInjected.Error())
}

func TestScanInConfiguredTimeZone(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	acme := dbtest.Client(t, env.db, "Acme")
	admin := dbtest.User(t, env.db, "admin", models.RoleAdmin, 0)

	// 23:30 UTC is already the next day in Tokyo
	env.now = time.Date(2026, 10, 14, 23, 30, 0, 0, time.UTC)
	env.license(t, acme.ID, "Office Suite", 8, models.LicenseStatusActive)

	s := env.scanner(env.store)
	report, err := s.ScanLicenses(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Created, "8 days left in UTC")

	s.loc, err = time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	report, err = s.ScanLicenses(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created, "7 days left in Tokyo")
	assert.Len(t, env.notificationsOf(t, admin.ID), 1)
}
