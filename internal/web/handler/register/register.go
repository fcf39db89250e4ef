// Package register lets visitors create an account that waits for admin verification.
package register

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoAssetAdmin/GoAssetAdmin/internal/alert"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/auth"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/web/handler"
)

// Path is the path of the registration endpoint.
const Path = handler.RootPath + "register"

// Form is the registration payload.
type Form struct {
	Username  string `form:"username"   json:"username"   validate:"required,min=3,max=100"`
	Email     string `form:"email"      json:"email"      validate:"required,email,max=255"`
	Password  string `form:"password"   json:"password"   validate:"required,min=8,max=200"`
	FirstName string `form:"first_name" json:"first_name" validate:"max=100"`
	LastName  string `form:"last_name"  json:"last_name"  validate:"max=100"`
}

// Service is the registration handler service.
type Service struct {
	handler.Service
	localAuth *auth.LocalProvider
	worker    *alert.Worker
	validator handler.XValidator
}

// Handler is the registration handler.
var Handler = Service{}

// Init initializes the registration handler.
func (s *Service) Init(app *fiber.App, env *handler.Env) error {
	if app == nil || !env.Valid() || env.Worker == nil {
		return handler.ErrNilEnv
	}

	s.localAuth = auth.NewLocalProvider(env.DB)
	s.worker = env.Worker
	s.validator = handler.NewValidator()

	app.Post(Path, s.Post)

	return nil
}

// Post creates an unverified account and tells the admins about it.
func (s *Service) Post(c *fiber.Ctx) error {
	form := new(Form)
	if err := c.BodyParser(form); err != nil {
		return handler.JSONError(c, fiber.StatusBadRequest, "invalid form data")
	}

	if errs := s.validator.Validate(form); len(errs) > 0 {
		return handler.ValidationFailed(c, errs)
	}

	user, err := s.localAuth.Register(form.Username, form.Email, form.Password, form.FirstName, form.LastName)
	if err != nil {
		if errors.Is(err, auth.ErrUserNameOrEmailExists) {
			return handler.JSONError(c, fiber.StatusConflict, err.Error())
		}

		log.Error().Err(err).Str("username", form.Username).Msg("failed to register user")

		return handler.JSONError(c, fiber.StatusInternalServerError, "internal server error")
	}

	// the account exists, a failed admin notification only gets logged
	notified, err := s.worker.NotifyPendingVerification(c.UserContext(), *user)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", user.ID).Msg("failed to notify admins about registration")
	}

	log.Info().Uint64("user_id", user.ID).Int("admins_notified", notified).Msg("user registered")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": user})
}
