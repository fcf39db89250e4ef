// Package mailserver lets admins edit the SMTP settings used for alert emails.
package mailserver

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoAssetAdmin/GoAssetAdmin/internal/auth"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/config"
	controller "github.com/GoAssetAdmin/GoAssetAdmin/internal/db/controller/mailserver"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/controller/setting"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/web/handler"
)

const (
	// Path is the path to the mail server settings.
	Path = handler.APIPath + "/admin/mail-server"
)

// View is the settings as shown to admins. The password is never returned.
type View struct {
	controller.Settings
	PasswordSet bool `json:"passwordSet"`
}

func viewOf(s controller.Settings) View {
	v := View{Settings: s, PasswordSet: s.Password != ""}
	v.Password = ""

	return v
}

// Service is the mail server settings handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	validator handler.XValidator
}

// Handler is the mail server settings handler.
var Handler = Service{}

// Init initializes the mail server settings handler.
func (s *Service) Init(app *fiber.App, env *handler.Env) error {
	if app == nil || !env.Valid() {
		return handler.ErrNilEnv
	}

	s.db = env.DB
	s.cfg = env.Cfg
	s.validator = handler.NewValidator()

	// register routes with permission checks
	app.Get(Path, auth.Require(env.Policy, auth.ActionRead, auth.ResourceSettings), s.Get)
	app.Put(Path, auth.Require(env.Policy, auth.ActionUpdate, auth.ResourceSettings), s.Put)

	return nil
}

// Get returns the settings in effect, the file configuration when none were saved.
func (s *Service) Get(c *fiber.Ctx) error {
	settings, err := controller.Resolve(s.db.WithContext(c.UserContext()), s.cfg.Mail)
	if err != nil {
		log.Error().Err(err).Msg("failed to load mail server settings")
		return handler.JSONError(c, fiber.StatusInternalServerError, "failed to load settings")
	}

	return c.JSON(viewOf(settings))
}

// Put validates and stores the settings. An empty password keeps the stored one.
func (s *Service) Put(c *fiber.Ctx) error {
	settings := &controller.Settings{}
	if err := c.BodyParser(settings); err != nil {
		log.Error().Err(err).Msg("failed to parse mail server settings")
		return handler.JSONError(c, fiber.StatusBadRequest, "invalid form data")
	}

	if errs := s.validator.Validate(settings); len(errs) > 0 {
		log.Warn().Int("fields", len(errs)).Msg("validation failed for mail server settings")
		return handler.ValidationFailed(c, errs)
	}

	db := s.db.WithContext(c.UserContext())

	if settings.Password == "" {
		var stored controller.Settings

		err := stored.Load(db)
		switch {
		case err == nil:
			settings.Password = stored.Password
		case errors.Is(err, setting.ErrSettingNotFound):
			settings.Password = s.cfg.Mail.Password
		default:
			log.Error().Err(err).Msg("failed to load mail server settings")
			return handler.JSONError(c, fiber.StatusInternalServerError, "failed to save settings")
		}
	}

	if err := settings.Save(db); err != nil {
		log.Error().Err(err).Msg("failed to save mail server settings")
		return handler.JSONError(c, fiber.StatusInternalServerError, "failed to save settings")
	}

	log.Info().
		Bool("enabled", settings.Enabled).
		Str("host", settings.Host).
		Int("port", settings.Port).
		Msg("mail server settings saved successfully")

	return c.JSON(viewOf(*settings))
}
