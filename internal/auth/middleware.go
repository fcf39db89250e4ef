package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/controller/profile"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/models"
	fiberlogger "github.com/GoAssetAdmin/GoAssetAdmin/internal/logger/adapter/fiber"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/web/session"
)

// CurrentUserLocal is the fiber local holding the authenticated models.User.
const CurrentUserLocal = "CurrentUser"

// SnapshotFunc builds the snapshot of the resource a request targets.
type SnapshotFunc func(c *fiber.Ctx, s Subject) (*Snapshot, error)

// Self is a SnapshotFunc for resources owned by the requesting user.
func Self(_ *fiber.Ctx, s Subject) (*Snapshot, error) {
	return &Snapshot{OwnerID: s.ID}, nil
}

// Authenticate resolves the session cookie to the current user record.
// Requests without a valid session are passed on anonymously; Require rejects them.
func Authenticate(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Cookies(session.CookieName)
		if sessionID == "" {
			return c.Next()
		}

		sessData := new(session.Data)
		if err := sessData.Read(sessionID); err != nil || sessData.User.ID == 0 {
			return c.Next()
		}

		// reload, role and active flag may have changed since login
		user, err := profile.Get(db, sessData.User.ID)
		if err != nil {
			if !errors.Is(err, profile.ErrUserNotFound) {
				log.Error().Err(err).Uint64("user_id", sessData.User.ID).Msg("failed to load session user")
			}

			return c.Next()
		}

		if !user.Active {
			return c.Next()
		}

		c.Locals(CurrentUserLocal, *user)
		c.Locals(fiberlogger.UserIDLocal, user.ID)

		return c.Next()
	}
}

// CurrentUser returns the authenticated user of the request.
func CurrentUser(c *fiber.Ctx) (models.User, bool) {
	u, ok := c.Locals(CurrentUserLocal).(models.User)
	return u, ok && u.ID != 0
}

// Require creates Fiber middleware that requires action on resource.
// Without snapshot functions the check is structural; otherwise the first function builds the snapshot.
func Require(policy Policy, action Action, resource Resource, snapshot ...SnapshotFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}

		subject := SubjectOf(user)

		var snap *Snapshot

		if len(snapshot) > 0 && snapshot[0] != nil {
			var err error

			snap, err = snapshot[0](c, subject)
			if err != nil {
				return err
			}
		}

		if !policy.Can(subject, action, resource, snap) {
			log.Warn().Uint64("user_id", user.ID).
				Str("role", string(user.Role)).
				Str("action", string(action)).
				Str("resource", string(resource)).
				Msg("permission denied")

			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
		}

		return c.Next()
	}
}
