// Package user holds the account administration routes.
package user

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoAssetAdmin/GoAssetAdmin/internal/alert"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/auth"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/controller/profile"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/models"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/web/handler"
)

// Path is the path of the user routes.
const Path = handler.APIPath + "/users"

// VerifyForm assigns a role to an account.
type VerifyForm struct {
	Role     models.Role `json:"role"      validate:"required,oneof=admin technician client"`
	ClientID *uint64     `json:"client_id"`
}

// Service is the user administration handler service.
type Service struct {
	handler.Service
	db        *gorm.DB
	worker    *alert.Worker
	validator handler.XValidator
}

// Handler is the user administration handler.
var Handler = Service{}

// Init initializes the user administration handler.
func (s *Service) Init(app *fiber.App, env *handler.Env) error {
	if app == nil || !env.Valid() || env.Worker == nil {
		return handler.ErrNilEnv
	}

	s.db = env.DB
	s.worker = env.Worker
	s.validator = handler.NewValidator()

	app.Route(Path, func(router fiber.Router) {
		router.Post("/:id/verify", auth.Require(env.Policy, auth.ActionVerify, auth.ResourceUser), s.Verify)
	})

	return nil
}

// Verify assigns a role to the account named by :id and tells its owner.
func (s *Service) Verify(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c)
	if !ok {
		return handler.JSONError(c, fiber.StatusBadRequest, "invalid user id")
	}

	form := new(VerifyForm)
	if err := c.BodyParser(form); err != nil {
		return handler.JSONError(c, fiber.StatusBadRequest, "invalid form data")
	}

	if errs := s.validator.Validate(form); len(errs) > 0 {
		return handler.ValidationFailed(c, errs)
	}

	u, err := profile.SetRole(s.db.WithContext(c.UserContext()), id, form.Role, form.ClientID)

	switch {
	case err == nil:
	case errors.Is(err, profile.ErrUserNotFound):
		return handler.JSONError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, profile.ErrClientRequired), errors.Is(err, profile.ErrInvalidRole):
		return handler.JSONError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return handler.JSONError(c, fiber.StatusBadRequest, "unknown client")
	default:
		log.Error().Err(err).Uint64("user_id", id).Msg("failed to verify user")
		return handler.JSONError(c, fiber.StatusInternalServerError, "failed to verify user")
	}

	admin, _ := auth.CurrentUser(c)
	log.Info().Uint64("user_id", u.ID).Uint64("by", admin.ID).Str("role", string(u.Role)).Msg("user verified")

	n := &models.Notification{
		UserID:  u.ID,
		Type:    models.NotificationGeneral,
		Title:   "Your account was verified",
		Message: fmt.Sprintf("An administrator gave your account the %s role.", u.Role),
	}

	if _, err := s.worker.CreateAndSendNotification(c.UserContext(), n); err != nil {
		log.Error().Err(err).Uint64("user_id", u.ID).Msg("failed to notify verified user")
	}

	return c.JSON(fiber.Map{"user": u})
}
