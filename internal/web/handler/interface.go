package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/GoAssetAdmin/GoAssetAdmin/internal/alert"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/auth"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/config"
)

// ErrNilEnv is returned by Init when app or a required dependency is missing.
var ErrNilEnv = errors.New(ErrNilACDFatalLogMsg)

// Env holds the dependencies shared by the handlers.
type Env struct {
	Cfg      *config.Config
	DB       *gorm.DB
	Policy   auth.Policy
	Resolver *alert.Resolver
	Scanner  *alert.Scanner
	Worker   *alert.Worker
}

// Valid reports whether the configuration and the database are set.
func (e *Env) Valid() bool {
	return e != nil && e.Cfg != nil && e.DB != nil
}

// Service is the interface for a web handler service.
type Service interface {
	Init(app *fiber.App, env *Env) error
}
