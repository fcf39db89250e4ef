// Package cron exposes the alert cycle to external schedulers and admins.
package cron

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoAssetAdmin/GoAssetAdmin/internal/alert"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/auth"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/web/handler"
)

const (
	// Path is the route called by external schedulers.
	Path = "/cron/alerts"
	// RunPath lets an admin start a cycle from the UI.
	RunPath = handler.APIPath + "/admin/alerts/run"
	// HeaderSecret carries the shared scheduler secret.
	HeaderSecret = "X-Cron-Secret"
)

// Result is returned by both routes.
type Result struct {
	Scan     alert.ScanReport    `json:"scan"`
	Dispatch alert.DispatchStats `json:"dispatch"`
	Error    string              `json:"error,omitempty"`
}

// Service is the alert cycle handler service.
type Service struct {
	handler.Service
	secret  []byte
	scanner *alert.Scanner
	worker  *alert.Worker
}

// Handler is the alert cycle handler.
var Handler = Service{}

// Init initializes the alert cycle handler. The scheduler route only exists when a secret is set.
func (s *Service) Init(app *fiber.App, env *handler.Env) error {
	if app == nil || !env.Valid() || env.Scanner == nil || env.Worker == nil {
		return handler.ErrNilEnv
	}

	s.scanner = env.Scanner
	s.worker = env.Worker
	s.secret = []byte(env.Cfg.Cron.Secret)

	if len(s.secret) > 0 {
		app.Post(Path, s.Cron)
	} else {
		log.Info().Msg("cron secret not set, scheduler route disabled")
	}

	app.Post(RunPath, auth.Require(env.Policy, auth.ActionUpdate, auth.ResourceSettings), s.Run)

	return nil
}

// Cron runs one cycle when the request carries the scheduler secret.
func (s *Service) Cron(c *fiber.Ctx) error {
	got := []byte(c.Get(HeaderSecret))
	if subtle.ConstantTimeCompare(got, s.secret) != 1 {
		log.Warn().Str("ip", c.IP()).Msg("cron call with invalid secret")
		return handler.JSONError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	return s.Run(c)
}

// Run scans and dispatches once.
func (s *Service) Run(c *fiber.Ctx) error {
	report, stats, err := alert.RunCycle(c.UserContext(), s.scanner, s.worker)

	res := Result{Scan: report, Dispatch: stats}
	if err != nil {
		log.Error().Err(err).Msg("alert cycle finished with errors")
		res.Error = err.Error()

		return c.Status(fiber.StatusInternalServerError).JSON(res)
	}

	return c.JSON(res)
}
