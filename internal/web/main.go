// Package web wires the HTTP routes of the asset alerting API.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/GoAssetAdmin/GoAssetAdmin/internal/auth"
	fiberlogger "github.com/GoAssetAdmin/GoAssetAdmin/internal/logger/adapter/fiber"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/web/handler"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/web/handler/alertsettings"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/web/handler/cron"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/web/handler/jobs"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/web/handler/login"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/web/handler/logout"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/web/handler/mailserver"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/web/handler/notification"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/web/handler/register"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/web/handler/user"
)

const (
	// CheckAlivePath answers load balancer health checks.
	CheckAlivePath = "/checkalive"
	// MetricsPath serves the prometheus metrics.
	MetricsPath = "/metrics"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	env          *handler.Env
	fastShutDown bool
	alive        atomic.Bool
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	s.alive.Store(true)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown blocks until SIGINT or SIGTERM and stops the server gracefully.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	s.Shutdown()
}

// Shutdown reports the service as dead, waits for the load balancer and stops fiber.
func (s *Service) Shutdown() {
	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.env.Cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.env.Cfg.Webserver.ShutDownTime) * time.Second)
	}

	log.Info().Msg("stopping http server ...")

	if err := s.App.Shutdown(); err != nil {
		log.Error().Err(err).Msg("")
	}

	log.Info().Msg("http server was stopped ... good bye...")
}

// Alive reports whether the service accepts traffic.
func (s *Service) Alive() bool {
	return s.alive.Load()
}

func (s *Service) checkAlive(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}

	return c.SendString("OK")
}

// Services returns the route handlers registered by New.
func Services() []handler.Service {
	return []handler.Service{
		&login.Handler,
		&logout.Handler,
		&register.Handler,
		&notification.Handler,
		&alertsettings.Handler,
		&user.Handler,
		&mailserver.Handler,
		&jobs.Handler,
		&cron.Handler,
	}
}

// New creates the web service over env.
func New(env *handler.Env) (*Service, error) {
	if !env.Valid() {
		return nil, handler.ErrNilEnv
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        env.Cfg.Title,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
		},
	)

	service := &Service{
		App:          app,
		env:          env,
		fastShutDown: env.Cfg.DevMode,
	}
	service.alive.Store(true)

	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:        env.Cfg.Log,
		CheckAliveURI: CheckAlivePath,
	}))

	app.Get(CheckAlivePath, service.checkAlive)
	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	// resolves the session cookie for every route below
	app.Use(auth.Authenticate(env.DB))

	for _, h := range Services() {
		if err := h.Init(app, env); err != nil {
			return nil, err
		}
	}

	return service, nil
}
