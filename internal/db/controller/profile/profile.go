// Package profile reads and writes user accounts.
package profile

import (
	"errors"

	"gorm.io/gorm"

	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/models"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrUserNotFound is returned when a user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserAlreadyExists is returned when the username is taken.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrInvalidRole is returned for an unknown role.
	ErrInvalidRole = errors.New("invalid role")
	// ErrClientRequired is returned when a client-role user is not linked to a client.
	ErrClientRequired = errors.New("client role requires a client id")
)

// Get retrieves a user by ID.
func Get(db *gorm.DB, id uint64) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var u models.User
	if err := db.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &u, nil
}

// GetByUsername retrieves a user by username.
func GetByUsername(db *gorm.DB, username string) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var u models.User
	if err := db.Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &u, nil
}

// Create inserts a new user. The username must be unused.
func Create(db *gorm.DB, u *models.User) error {
	if db == nil {
		return ErrDBNil
	}
	if !u.Role.Valid() {
		return ErrInvalidRole
	}

	_, err := GetByUsername(db, u.Username)
	switch {
	case err == nil:
		return ErrUserAlreadyExists
	case !errors.Is(err, ErrUserNotFound):
		return err
	}

	if err = db.Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUserAlreadyExists
		}
		return err
	}

	return nil
}

// ListActiveStaff returns every active admin and technician.
func ListActiveStaff(db *gorm.DB) ([]models.User, error) {
	return listActive(db, "role IN ?", []models.Role{models.RoleAdmin, models.RoleTechnician})
}

// ListActiveByRole returns every active user with the given role.
func ListActiveByRole(db *gorm.DB, role models.Role) ([]models.User, error) {
	return listActive(db, "role = ?", role)
}

// ListActiveClientUsers returns every active client-role user linked to clientID.
func ListActiveClientUsers(db *gorm.DB, clientID uint64) ([]models.User, error) {
	return listActive(db, "role = ? AND client_id = ?", models.RoleClient, clientID)
}

func listActive(db *gorm.DB, query string, args ...any) ([]models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var users []models.User
	if err := db.Where("active = ?", true).Where(query, args...).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

// SetRole changes the role of a user. Client-role users must be linked to a client; staff lose the link.
func SetRole(db *gorm.DB, id uint64, role models.Role, clientID *uint64) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if role == models.RoleClient && (clientID == nil || *clientID == 0) {
		return nil, ErrClientRequired
	}

	u, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	u.Role = role
	u.ClientID = nil
	if role == models.RoleClient {
		u.ClientID = clientID
	}

	if err = db.Model(u).Select("role", "client_id").Updates(u).Error; err != nil {
		return nil, err
	}

	return u, nil
}
