// Package jobs shows the last run of each background job.
package jobs

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoAssetAdmin/GoAssetAdmin/internal/auth"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/controller/jobstate"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/web/handler"
)

// Path is the path of the job status route.
const Path = handler.APIPath + "/admin/jobs"

// Service is the job status handler service.
type Service struct {
	handler.Service
	db *gorm.DB
}

// Handler is the job status handler.
var Handler = Service{}

// Init initializes the job status handler.
func (s *Service) Init(app *fiber.App, env *handler.Env) error {
	if app == nil || !env.Valid() {
		return handler.ErrNilEnv
	}

	s.db = env.DB

	app.Get(Path, auth.Require(env.Policy, auth.ActionRead, auth.ResourceSettings), s.List)

	return nil
}

// List returns the reports of the jobs that ran at least once.
func (s *Service) List(c *fiber.Ctx) error {
	reports, err := jobstate.LoadAll(s.db.WithContext(c.UserContext()), jobstate.JobAlertScan, jobstate.JobAlertDispatch)
	if err != nil {
		log.Error().Err(err).Msg("failed to load job reports")
		return handler.JSONError(c, fiber.StatusInternalServerError, "failed to load job reports")
	}

	return c.JSON(fiber.Map{"jobs": reports})
}
