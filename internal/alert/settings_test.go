package alert

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/controller/alertsettings"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/dbtest"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/models"
)

func TestGetSettingsProvisionsDefaults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := dbtest.User(t, env.db, "ada", models.RoleTechnician, 0)

	s, err := env.resolver.GetSettings(ctx, u.ID)
	require.NoError(t, err)
	assert.NotZero(t, s.ID)
	assert.Equal(t, []int{7, 30}, []int(s.LicenseAlertDays))
	assert.Equal(t, []int{30, 90}, []int(s.EquipmentAlertDays))
	assert.True(t, s.EmailEnabled)

	again, err := env.resolver.GetSettings(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, again.ID)

	var count int64
	require.NoError(t, env.db.Model(&models.AlertSettings{}).Where("user_id = ?", u.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

// racingStore reports a missing row once, then loses the insert race.
type racingStore struct {
	SettingsStore
	missing bool
	creates int
}

func (r *racingStore) GetAlertSettings(ctx context.Context, userID uint64) (*models.AlertSettings, error) {
	if r.missing {
		r.missing = false
		return nil, alertsettings.ErrAlertSettingsNotFound
	}

	return r.SettingsStore.GetAlertSettings(ctx, userID)
}

func (r *racingStore) CreateAlertSettings(context.Context, *models.AlertSettings) error {
	r.creates++
	return alertsettings.ErrAlertSettingsAlreadyExists
}

func TestGetSettingsLosingCreateRace(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := dbtest.User(t, env.db, "ada", models.RoleTechnician, 0)

	stored := models.NewDefaultAlertSettings(u.ID)
	stored.LicenseAlertDays = []int{14}
	require.NoError(t, env.store.CreateAlertSettings(ctx, stored))

	store := &racingStore{SettingsStore: env.store, missing: true}

	s, err := NewResolver(store).GetSettings(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, store.creates)
	assert.Equal(t, stored.ID, s.ID)
	assert.Equal(t, []int{14}, []int(s.LicenseAlertDays))
}

type brokenSettings struct {
	SettingsStore
}

var errBroken = errors.New("database is gone")

func (brokenSettings) GetAlertSettings(context.Context, uint64) (*models.AlertSettings, error) {
	return nil, errBroken
}

func TestGetSettingsStoreError(t *testing.T) {
	_, err := NewResolver(brokenSettings{}).GetSettings(context.Background(), 1)
	require.ErrorIs(t, err, errBroken)
}

func TestUpdateSettings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := dbtest.User(t, env.db, "ada", models.RoleClient, dbtest.Client(t, env.db, "Acme").ID)

	s, err := env.resolver.UpdateSettings(ctx, u.ID, SettingsPatch{
		LicenseAlertDays: &[]int{60, 7, 30, 7},
		EmailEnabled:     boolp(false),
	})
	require.NoError(t, err)
	assert.Equal(t, []int{7, 30, 60}, []int(s.LicenseAlertDays))
	assert.Equal(t, []int{30, 90}, []int(s.EquipmentAlertDays), "untouched field keeps its value")
	assert.False(t, s.EmailEnabled)

	stored, err := env.resolver.GetSettings(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{7, 30, 60}, []int(stored.LicenseAlertDays))
	assert.False(t, stored.EmailEnabled)

	s, err = env.resolver.UpdateSettings(ctx, u.ID, SettingsPatch{EquipmentAlertDays: &[]int{}})
	require.NoError(t, err)
	assert.Empty(t, s.EquipmentAlertDays, "an empty set disables equipment alerts")
	assert.Equal(t, []int{7, 30, 60}, []int(s.LicenseAlertDays))
}

func TestUpdateSettingsRejectsInvalidDays(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := dbtest.User(t, env.db, "ada", models.RoleAdmin, 0)

	tooMany := make([]int, 65)
	for i := range tooMany {
		tooMany[i] = i + 1
	}

	tests := []struct {
		name  string
		patch SettingsPatch
	}{
		{name: "zero day", patch: SettingsPatch{LicenseAlertDays: &[]int{0, 7}}},
		{name: "negative day", patch: SettingsPatch{EquipmentAlertDays: &[]int{-1}}},
		{name: "beyond a year", patch: SettingsPatch{LicenseAlertDays: &[]int{366}}},
		{name: "too many thresholds", patch: SettingsPatch{EquipmentAlertDays: &tooMany}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.resolver.UpdateSettings(ctx, u.ID, tt.patch)
			require.ErrorIs(t, err, ErrInvalidSettings)
		})
	}

	s, err := env.resolver.GetSettings(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultLicenseAlertDays, []int(s.LicenseAlertDays), "rejected patches change nothing")
}
