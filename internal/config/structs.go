package config

import (
	"time"

	"github.com/GoAssetAdmin/GoAssetAdmin/internal/logger"
)

// Dispatch lock implementations.
const (
	LockLocal = "local"
	LockRedis = "redis"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration `toml:"expiryTime"`
}

// Config overall data structure.
type Config struct {
	DevMode   bool       `toml:"devMode"` // enable dev mode for development
	Title     string     `toml:"title"`
	DB        DB         `toml:"db"`
	Log       logger.Log `toml:"log"`
	Webserver Webserver  `toml:"webserver"`
	Alerts    Alerts     `toml:"alerts"`
	Dispatch  Dispatch   `toml:"dispatch"`
	Redis     Redis      `toml:"redis"`
	Mail      Mail       `toml:"mail"`
	Cron      Cron       `toml:"cron"`
}

// Webserver implement webserver settings.
type Webserver struct {
	Port         int     `toml:"port"`         // listening port for the webserver
	ShutDownTime int     `toml:"shutDownTime"` // wait time for shutdown
	URL          string  `toml:"url"`          // base url for the webserver, used for links in emails
	Session      Session `toml:"session"`      // session settings
}

// Alerts holds the scanner settings.
type Alerts struct {
	// Interval between two built-in scan and dispatch runs. Zero disables the built-in scheduler.
	Interval time.Duration `toml:"interval"`
	// TimeZone used to turn instants into calendar days.
	TimeZone string `toml:"timeZone"`
	// LookaheadDays bounds the forward window of candidate assets. It must cover the 365 day threshold.
	LookaheadDays int `toml:"lookaheadDays"`
	// DedupWindow is the lookback during which an identical alert is not created again.
	DedupWindow time.Duration `toml:"dedupWindow"`
}

// Location returns the configured time zone, UTC if it can not be loaded.
func (a Alerts) Location() *time.Location {
	loc, err := time.LoadLocation(a.TimeZone)
	if err != nil || a.TimeZone == "" {
		return time.UTC
	}

	return loc
}

// Dispatch holds the email dispatch worker settings.
type Dispatch struct {
	BatchSize int           `toml:"batchSize"` // notifications per run
	SendDelay time.Duration `toml:"sendDelay"` // pause between two sends
	Lock      string        `toml:"lock"`      // local or redis
	LockTTL   time.Duration `toml:"lockTTL"`   // expiry of the redis lock, raised to MinLockTTL
}

// lockTTLMargin covers the queries around the sends of one batch.
const lockTTLMargin = time.Minute

// MinLockTTL is the time a full batch may take when every send runs into sendTimeout.
func (d Dispatch) MinLockTTL(sendTimeout time.Duration) time.Duration {
	return time.Duration(d.BatchSize)*(sendTimeout+d.SendDelay) + lockTTLMargin
}

// Redis holds the redis connection used by the distributed dispatch lock.
type Redis struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// Mail holds the default SMTP settings. Settings saved by an admin in the database take precedence.
type Mail struct {
	Enabled   bool          `toml:"enabled"` // false keeps emails pending instead of sending them
	Host      string        `toml:"host"`
	Port      int           `toml:"port"`
	Username  string        `toml:"username"`
	Password  string        `toml:"password"`
	From      string        `toml:"from"`
	FromName  string        `toml:"fromName"`
	TLSPolicy string        `toml:"tlsPolicy"` // mandatory, opportunistic or none
	Timeout   time.Duration `toml:"timeout"`   // bound of one SMTP exchange
}

// Cron holds the settings of the external scheduler trigger.
type Cron struct {
	Secret string `toml:"secret"` // shared secret expected in the X-Cron-Secret header, empty disables the route
}
