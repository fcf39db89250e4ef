// Package alertsettings lets users read and change their alert thresholds.
package alertsettings

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoAssetAdmin/GoAssetAdmin/internal/alert"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/auth"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/web/handler"
)

// Path is the path of the alert settings routes.
const Path = handler.APIPath + "/alert-settings"

// Service is the alert settings handler service.
type Service struct {
	handler.Service
	resolver *alert.Resolver
}

// Handler is the alert settings handler.
var Handler = Service{}

// Init initializes the alert settings handler.
func (s *Service) Init(app *fiber.App, env *handler.Env) error {
	if app == nil || !env.Valid() || env.Resolver == nil {
		return handler.ErrNilEnv
	}

	s.resolver = env.Resolver

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath,
			auth.Require(env.Policy, auth.ActionRead, auth.ResourceAlertSettings, auth.Self), s.Get)
		router.Put(handler.RouterRootPath,
			auth.Require(env.Policy, auth.ActionUpdate, auth.ResourceAlertSettings, auth.Self), s.Put)
	})

	return nil
}

// Get returns the settings of the current user, provisioning the defaults on first access.
func (s *Service) Get(c *fiber.Ctx) error {
	user, _ := auth.CurrentUser(c)

	settings, err := s.resolver.GetSettings(c.UserContext(), user.ID)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", user.ID).Msg("failed to load alert settings")
		return handler.JSONError(c, fiber.StatusInternalServerError, "failed to load alert settings")
	}

	return c.JSON(settings)
}

// Put applies a partial update to the settings of the current user.
func (s *Service) Put(c *fiber.Ctx) error {
	user, _ := auth.CurrentUser(c)

	patch := new(alert.SettingsPatch)
	if err := c.BodyParser(patch); err != nil {
		return handler.JSONError(c, fiber.StatusBadRequest, "invalid form data")
	}

	settings, err := s.resolver.UpdateSettings(c.UserContext(), user.ID, *patch)
	if err != nil {
		if errors.Is(err, alert.ErrInvalidSettings) {
			return handler.JSONError(c, fiber.StatusBadRequest, err.Error())
		}

		log.Error().Err(err).Uint64("user_id", user.ID).Msg("failed to save alert settings")

		return handler.JSONError(c, fiber.StatusInternalServerError, "failed to save alert settings")
	}

	return c.JSON(settings)
}
