package alert

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"gorm.io/datatypes"

	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/controller/alertsettings"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/models"
)

const daySetRule = "max=64,dive,min=1,max=365"

// SettingsPatch is a partial update of alert settings. Nil fields are left unchanged.
type SettingsPatch struct {
	LicenseAlertDays   *[]int `json:"license_alert_days"`
	EquipmentAlertDays *[]int `json:"equipment_alert_days"`
	EmailEnabled       *bool  `json:"email_enabled"`
}

// Resolver returns the alert settings of a user, creating the default row on first access.
type Resolver struct {
	store    SettingsStore
	validate *validator.Validate
}

// NewResolver returns a Resolver reading and writing through store.
func NewResolver(store SettingsStore) *Resolver {
	return &Resolver{
		store:    store,
		validate: validator.New(),
	}
}

// GetSettings returns the settings of userID. A missing row is created with the defaults.
// When a concurrent caller creates the row first, the stored row is returned.
func (r *Resolver) GetSettings(ctx context.Context, userID uint64) (*models.AlertSettings, error) {
	s, err := r.store.GetAlertSettings(ctx, userID)
	if err == nil {
		return s, nil
	}

	if !errors.Is(err, alertsettings.ErrAlertSettingsNotFound) {
		return nil, fmt.Errorf("load alert settings of user %d: %w", userID, err)
	}

	s = models.NewDefaultAlertSettings(userID)

	err = r.store.CreateAlertSettings(ctx, s)
	switch {
	case err == nil:
		return s, nil
	case errors.Is(err, alertsettings.ErrAlertSettingsAlreadyExists):
		return r.store.GetAlertSettings(ctx, userID)
	default:
		return nil, fmt.Errorf("create alert settings of user %d: %w", userID, err)
	}
}

// UpdateSettings applies patch to the settings of userID and returns the stored result.
// Day-sets are sorted and deduplicated before they are saved.
func (r *Resolver) UpdateSettings(ctx context.Context, userID uint64, patch SettingsPatch) (*models.AlertSettings, error) {
	if err := r.validatePatch(patch); err != nil {
		return nil, err
	}

	s, err := r.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	if patch.LicenseAlertDays != nil {
		s.LicenseAlertDays = normalizeDays(*patch.LicenseAlertDays)
	}

	if patch.EquipmentAlertDays != nil {
		s.EquipmentAlertDays = normalizeDays(*patch.EquipmentAlertDays)
	}

	if patch.EmailEnabled != nil {
		s.EmailEnabled = *patch.EmailEnabled
	}

	if err := r.store.SaveAlertSettings(ctx, s); err != nil {
		return nil, fmt.Errorf("save alert settings of user %d: %w", userID, err)
	}

	return s, nil
}

func (r *Resolver) validatePatch(patch SettingsPatch) error {
	days := map[string]*[]int{
		"license_alert_days":   patch.LicenseAlertDays,
		"equipment_alert_days": patch.EquipmentAlertDays,
	}

	for field, set := range days {
		if set == nil {
			continue
		}

		if err := r.validate.Var(*set, daySetRule); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidSettings, field, err) //nolint:errorlint
		}
	}

	return nil
}

func normalizeDays(days []int) datatypes.JSONSlice[int] {
	out := make(datatypes.JSONSlice[int], 0, len(days))
	out = append(out, days...)
	sort.Ints(out)

	n := 0
	for i, d := range out {
		if i > 0 && d == out[n-1] {
			continue
		}

		out[n] = d
		n++
	}

	return out[:n]
}
