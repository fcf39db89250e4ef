package daemon

import (
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoAssetAdmin/GoAssetAdmin/internal/alert"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/config"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/db"
	"github.com/GoAssetAdmin/GoAssetAdmin/internal/mailer"
)

// LockKey is the redis key of the distributed dispatch lock.
const LockKey = "go-asset-admin:dispatch"

// Core holds the alerting services shared by the daemon and the CLI.
type Core struct {
	Cfg      *config.Config
	DB       *gorm.DB
	Resolver *alert.Resolver
	Scanner  *alert.Scanner
	Worker   *alert.Worker
	redis    *redis.Client
}

// NewCore opens and migrates the database and builds the alert services over it.
func NewCore(cfg *config.Config) (*Core, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	gdb, err := db.Open(cfg)
	if err != nil {
		return nil, err
	}

	if err = db.Migrate(gdb); err != nil {
		return nil, err
	}

	return NewCoreWithDB(cfg, gdb)
}

// NewCoreWithDB builds the alert services over an open, migrated database.
func NewCoreWithDB(cfg *config.Config, gdb *gorm.DB) (*Core, error) {
	renderer, err := mailer.NewRenderer(cfg.Webserver.URL)
	if err != nil {
		return nil, err
	}

	store := alert.NewGormStore(gdb)
	resolver := alert.NewResolver(store)
	sender := mailer.New(mailer.DBSettings(gdb, cfg.Mail), renderer, cfg.Mail.Timeout)

	c := &Core{
		Cfg:      cfg,
		DB:       gdb,
		Resolver: resolver,
		Scanner:  alert.NewScanner(store, resolver, cfg.Alerts),
	}

	var guard alert.RunGuard
	if cfg.Dispatch.Lock == config.LockRedis {
		c.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		guard = alert.NewRedisGuard(c.redis, LockKey, cfg.Dispatch.LockTTL)

		log.Info().Str("addr", cfg.Redis.Addr).Msg("dispatch lock uses redis")
	}

	c.Worker = alert.NewWorker(store, resolver, sender, cfg.Dispatch, guard)

	return c, nil
}

// Close releases the database and redis connections.
func (c *Core) Close() {
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close redis client")
		}
	}

	if sqlDB, err := c.DB.DB(); err == nil {
		if err = sqlDB.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}
}
