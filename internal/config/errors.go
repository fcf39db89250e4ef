package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrUnknownGormEngine error if config db.gormEngine is not supported.
	ErrUnknownGormEngine = errors.New("toml config db.gormEngine must be mysql, postgres or sqlite")

	// ErrUnknownTimeZone error if config alerts.timeZone can not be loaded.
	ErrUnknownTimeZone = errors.New("toml config alerts.timeZone is not a known time zone")

	// ErrLookaheadTooShort error if config alerts.lookaheadDays can not reach the 365 day threshold.
	ErrLookaheadTooShort = errors.New("toml config alerts.lookaheadDays must be 0 (default) or at least 366")

	// ErrUnknownLock error if config dispatch.lock is not supported.
	ErrUnknownLock = errors.New("toml config dispatch.lock must be local or redis")

	// ErrRedisAddrMissing error if the redis lock is selected without redis.addr.
	ErrRedisAddrMissing = errors.New("toml config redis.addr is required when dispatch.lock is redis")
)
