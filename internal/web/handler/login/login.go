package login

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoAssetAdmin/GoAssetAdmin/internal/auth"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/config"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/models"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/web/handler"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/web/session"
)

const (
	// Path is the path of the login endpoint.
	Path = "/login"
)

// Credentials is the login form, accepted as JSON or urlencoded form.
type Credentials struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// Service is the login handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	localAuth *auth.LocalProvider
}

// Handler is the login handler.
var Handler = Service{}

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, env *handler.Env) error {
	if app == nil || !env.Valid() {
		return handler.ErrNilEnv
	}

	s.cfg = env.Cfg
	s.localAuth = auth.NewLocalProvider(env.DB)

	// register routes
	app.Route(Path, func(router fiber.Router) {
		router.Post(handler.RouterRootPath, s.Post)
	})

	return nil
}

// authenticate maps provider errors onto the errors shown to the client.
func (s *Service) authenticate(username, password string) (*models.User, error) {
	user, err := s.localAuth.Authenticate(username, password)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, auth.ErrMissingCredentials):
		return nil, ErrInvalidFormData
	case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, auth.ErrInvalidPassword):
		return nil, ErrInvalidCredentials
	case errors.Is(err, auth.ErrUserAccountDisabled):
		return nil, ErrAccountDisabled
	default:
		log.Error().Err(err).Str("username", username).Msg("local authentication failed")
		return nil, ErrInternalServerError
	}
}

// Post handles the login form submission.
func (s *Service) Post(c *fiber.Ctx) error {
	creds := new(Credentials)

	if err := c.BodyParser(creds); err != nil {
		return handler.JSONError(c, fiber.StatusBadRequest, ErrInvalidFormData.Error())
	}

	user, err := s.authenticate(creds.Username, creds.Password)
	if err != nil {
		status := fiber.StatusUnauthorized

		switch {
		case errors.Is(err, ErrInvalidFormData):
			status = fiber.StatusBadRequest
		case errors.Is(err, ErrAccountDisabled):
			status = fiber.StatusForbidden
		case errors.Is(err, ErrInternalServerError):
			status = fiber.StatusInternalServerError
		}

		return handler.JSONError(c, status, err.Error())
	}

	sessionID, err := session.GenerateSessionID()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate session ID")
		return handler.JSONError(c, fiber.StatusInternalServerError, ErrInternalServerError.Error())
	}

	userSession := &session.Data{
		User: *user,
	}

	if err = userSession.Write(sessionID, s.cfg.Webserver.Session.ExpiryTime); err != nil {
		log.Error().Err(err).Msg("failed to write session")
		return handler.JSONError(c, fiber.StatusInternalServerError, ErrInternalServerError.Error())
	}

	// set login cookie
	cookieSettings := &fiber.Cookie{
		Name:     session.CookieName,
		Value:    sessionID,
		MaxAge:   int(s.cfg.Webserver.Session.ExpiryTime.Seconds()),
		Secure:   true,
		HTTPOnly: true,
		SameSite: "Lax",
	}

	if s.cfg.DevMode {
		cookieSettings.Secure = false
	}

	c.Cookie(cookieSettings)

	log.Info().Uint64("user_id", user.ID).Str("role", string(user.Role)).Msg("user logged in")

	return c.JSON(fiber.Map{"user": user})
}
