package daemon

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/models"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/uniuri"
)

// AdminUsername is the account created on an empty users table.
const AdminUsername = "admin"

// seed creates an admin with a random password when no user exists yet.
// It returns the generated password, empty when nothing was created.
func seed(db *gorm.DB) (string, error) {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return "", fmt.Errorf("count users: %w", err)
	}

	if count > 0 {
		return "", nil
	}

	password, err := uniuri.New()
	if err != nil {
		return "", err
	}

	admin := models.User{
		Username: AdminUsername,
		Email:    "admin@localhost",
		Password: models.HashPassword(password),
		Active:   true,
		Role:     models.RoleAdmin,
	}

	if err = db.Create(&admin).Error; err != nil {
		return "", fmt.Errorf("create admin: %w", err)
	}

	log.Warn().
		Str("username", AdminUsername).
		Str("password", password).
		Msg("created initial admin account, change the password and the email address")

	return password, nil
}
