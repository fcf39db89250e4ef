// Package notification serves the in-app notification feed.
package notification

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoAssetAdmin/GoAssetAdmin/internal/alert"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/auth"
	controller "github.com/GoAssetAdmin/GoAssetAdmin/internal/db/controller/notification"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/controller/profile"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/models"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/web/handler"
)

// Path is the path of the notification routes.
const Path = handler.APIPath + "/notifications"

// CreateForm is the payload of an ad-hoc notification sent by an admin.
type CreateForm struct {
	UserID  uint64 `json:"user_id" validate:"required"`
	Title   string `json:"title"   validate:"required,max=255"`
	Message string `json:"message" validate:"max=10000"`
}

// Service is the notification handler service.
type Service struct {
	handler.Service
	db        *gorm.DB
	worker    *alert.Worker
	validator handler.XValidator
}

// Handler is the notification handler.
var Handler = Service{}

// Init initializes the notification handler.
func (s *Service) Init(app *fiber.App, env *handler.Env) error {
	if app == nil || !env.Valid() || env.Worker == nil {
		return handler.ErrNilEnv
	}

	s.db = env.DB
	s.worker = env.Worker
	s.validator = handler.NewValidator()

	p := env.Policy

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, auth.Require(p, auth.ActionList, auth.ResourceNotification), s.List)
		router.Post(handler.RouterRootPath, auth.Require(p, auth.ActionCreate, auth.ResourceNotification), s.Create)
		router.Post("/read-all", auth.Require(p, auth.ActionUpdate, auth.ResourceNotification, auth.Self), s.ReadAll)
		router.Post("/:id/read", auth.Require(p, auth.ActionUpdate, auth.ResourceNotification, s.owner), s.Read)
	})

	return nil
}

// owner builds the snapshot of the notification named by the :id parameter.
func (s *Service) owner(c *fiber.Ctx, _ auth.Subject) (*auth.Snapshot, error) {
	id, ok := handler.ParamID(c)
	if !ok {
		return nil, fiber.ErrBadRequest
	}

	n, err := controller.Get(s.db.WithContext(c.UserContext()), id)
	if errors.Is(err, controller.ErrNotificationNotFound) {
		return nil, fiber.ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	return &auth.Snapshot{OwnerID: n.UserID}, nil
}

// List returns the notifications of the current user, newest first. ?unread=true limits to unread ones.
func (s *Service) List(c *fiber.Ctx) error {
	user, _ := auth.CurrentUser(c)
	db := s.db.WithContext(c.UserContext())

	ns, err := controller.ListByUser(db, user.ID, c.QueryBool("unread"))
	if err != nil {
		log.Error().Err(err).Uint64("user_id", user.ID).Msg("failed to list notifications")
		return handler.JSONError(c, fiber.StatusInternalServerError, "failed to list notifications")
	}

	unread, err := controller.CountUnread(db, user.ID)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", user.ID).Msg("failed to count unread notifications")
		return handler.JSONError(c, fiber.StatusInternalServerError, "failed to list notifications")
	}

	return c.JSON(fiber.Map{
		"notifications": ns,
		"unread":        unread,
	})
}

// Read marks one notification of the current user as read.
func (s *Service) Read(c *fiber.Ctx) error {
	user, _ := auth.CurrentUser(c)
	id, _ := handler.ParamID(c)

	err := controller.MarkRead(s.db.WithContext(c.UserContext()), user.ID, id)
	switch {
	case err == nil:
		return c.SendStatus(fiber.StatusNoContent)
	case errors.Is(err, controller.ErrNotificationNotFound):
		return handler.JSONError(c, fiber.StatusNotFound, err.Error())
	default:
		log.Error().Err(err).Uint64("notification", id).Msg("failed to mark notification read")
		return handler.JSONError(c, fiber.StatusInternalServerError, "failed to update notification")
	}
}

// ReadAll marks every notification of the current user as read.
func (s *Service) ReadAll(c *fiber.Ctx) error {
	user, _ := auth.CurrentUser(c)

	n, err := controller.MarkAllRead(s.db.WithContext(c.UserContext()), user.ID)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", user.ID).Msg("failed to mark notifications read")
		return handler.JSONError(c, fiber.StatusInternalServerError, "failed to update notifications")
	}

	return c.JSON(fiber.Map{"updated": n})
}

// Create stores a general notification for another user and emails it right away.
func (s *Service) Create(c *fiber.Ctx) error {
	form := new(CreateForm)
	if err := c.BodyParser(form); err != nil {
		return handler.JSONError(c, fiber.StatusBadRequest, "invalid form data")
	}

	if errs := s.validator.Validate(form); len(errs) > 0 {
		return handler.ValidationFailed(c, errs)
	}

	if _, err := profile.Get(s.db.WithContext(c.UserContext()), form.UserID); err != nil {
		if errors.Is(err, profile.ErrUserNotFound) {
			return handler.JSONError(c, fiber.StatusNotFound, err.Error())
		}

		return err
	}

	n := &models.Notification{
		UserID:  form.UserID,
		Type:    models.NotificationGeneral,
		Title:   form.Title,
		Message: form.Message,
	}

	outcome, err := s.worker.CreateAndSendNotification(c.UserContext(), n)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", form.UserID).Msg("failed to create notification")
		return handler.JSONError(c, fiber.StatusInternalServerError, "failed to create notification")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"notification": n,
		"email":        outcome,
	})
}
