// Package config handles input from etc/*.toml files
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// EnvConfigJSON is the environment variable holding a JSON document merged over the TOML config.
	EnvConfigJSON = "GO_ASSET_ADMIN_CONFIG_JSON"

	defaultShutDownTime  = 5
	defaultSessionExpiry = 12 * time.Hour
	defaultBatchSize     = 50
	defaultSendDelay     = 200 * time.Millisecond
	defaultLockTTL       = 10 * time.Minute
	defaultDedupWindow   = 24 * time.Hour
	defaultLookaheadDays = 366
	defaultMailTimeout   = 15 * time.Second

	// minLookaheadDays keeps the highest allowed threshold (365 days) inside the window.
	minLookaheadDays = 366
)

// ReadConfig from config file.
func ReadConfig(path string) (Config, error) {
	var (
		c             Config
		JSONConfigEnv string
		err           error
	)

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(path, "main.toml"))
	v.SetConfigType("toml")

	if err = v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	if err = v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode main config file")
	}

	// override it from env
	JSONConfigEnv = os.Getenv(EnvConfigJSON)

	if JSONConfigEnv != "" {
		c, err = decodeAndMergeConfig(c, JSONConfigEnv)
		if err != nil {
			return c, err
		}
	}

	return c, validate(&c)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read json config override")
	}

	return c, nil
}

// DumpConfig config as TOML String.
func DumpConfig(c *Config) (string, error) {
	var buffer bytes.Buffer
	t := toml.NewEncoder(&buffer)

	if err := t.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c *Config) (string, error) {
	var buffer bytes.Buffer
	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// validate checks the settings needed to boot and fills in defaults.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	switch c.DB.GormEngine {
	case "":
		c.DB.GormEngine = EngineMySQL
	case EngineMySQL, EnginePostgres, EngineSQLite:
	default:
		return errors.Wrap(ErrUnknownGormEngine, invalidErrMessage)
	}

	if c.Alerts.TimeZone == "" {
		c.Alerts.TimeZone = "UTC"
	}

	if _, err := time.LoadLocation(c.Alerts.TimeZone); err != nil {
		return errors.Wrap(ErrUnknownTimeZone, invalidErrMessage)
	}

	if c.Alerts.LookaheadDays != 0 && c.Alerts.LookaheadDays < minLookaheadDays {
		return errors.Wrap(ErrLookaheadTooShort, invalidErrMessage)
	}

	switch c.Dispatch.Lock {
	case "":
		c.Dispatch.Lock = LockLocal
	case LockLocal:
	case LockRedis:
		if c.Redis.Addr == "" {
			return errors.Wrap(ErrRedisAddrMissing, invalidErrMessage)
		}
	default:
		return errors.Wrap(ErrUnknownLock, invalidErrMessage)
	}

	applyDefaults(c)

	return nil
}

func applyDefaults(c *Config) {
	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = defaultShutDownTime
	}

	if c.Webserver.Session.ExpiryTime == 0 {
		c.Webserver.Session.ExpiryTime = defaultSessionExpiry
	}

	if c.Alerts.LookaheadDays == 0 {
		c.Alerts.LookaheadDays = defaultLookaheadDays
	}

	if c.Alerts.DedupWindow <= 0 {
		c.Alerts.DedupWindow = defaultDedupWindow
	}

	if c.Dispatch.BatchSize <= 0 {
		c.Dispatch.BatchSize = defaultBatchSize
	}

	if c.Dispatch.SendDelay <= 0 {
		c.Dispatch.SendDelay = defaultSendDelay
	}

	if c.Mail.Timeout <= 0 {
		c.Mail.Timeout = defaultMailTimeout
	}

	if c.Dispatch.LockTTL <= 0 {
		c.Dispatch.LockTTL = defaultLockTTL
	}

	// the redis lock must not expire while a slow batch is still sending
	if minTTL := c.Dispatch.MinLockTTL(c.Mail.Timeout); c.Dispatch.LockTTL < minTTL {
		c.Dispatch.LockTTL = minTTL
	}
}
