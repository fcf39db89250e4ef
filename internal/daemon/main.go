// Package daemon assembles the database, the alert services and the web service of the start command.
package daemon

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/rs/zerolog/log"

	"github.com/GoAssetAdmin/GoAssetAdmin/internal/auth"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/config"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db/dsn"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/web"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/web/handler"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/web/session"
)

const sessionTable = "sessions"

// Daemon represents the main application daemon.
type Daemon struct {
	*Core
	webService *web.Service
}

// Start runs the built-in scheduler and serves http until the listener stops.
func (d *Daemon) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go d.Schedule(ctx, d.Cfg.Alerts.Interval)

	go func() {
		d.webService.WaitShutdown()
		cancel()
	}()

	defer d.Close()

	return d.webService.Start(fmt.Sprintf(":%d", d.Cfg.Webserver.Port))
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) (*Daemon, error) {
	core, err := NewCore(cfg)
	if err != nil {
		return nil, err
	}

	if _, err = seed(core.DB); err != nil {
		core.Close()
		return nil, err
	}

	session.Init(sessionStorage(cfg))

	ws, err := web.New(&handler.Env{
		Cfg:      cfg,
		DB:       core.DB,
		Policy:   auth.DefaultPolicy(),
		Resolver: core.Resolver,
		Scanner:  core.Scanner,
		Worker:   core.Worker,
	})
	if err != nil {
		core.Close()
		return nil, err
	}

	return &Daemon{Core: core, webService: ws}, nil
}

// sessionStorage keeps sessions next to the data. SQLite sessions stay in memory.
func sessionStorage(cfg *config.Config) fiber.Storage {
	switch cfg.DB.GormEngine {
	case config.EnginePostgres:
		return sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         sessionTable,
		})
	case config.EngineSQLite:
		log.Warn().Msg("sqlite engine: sessions are kept in memory")
		return session.NewMemoryStorage()
	default:
		return sessionmysql.New(sessionmysql.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         sessionTable,
		})
	}
}
