package fiber

import (
	"io"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GoAssetAdmin/GoAssetAdmin/internal/logger"
)

// UserIDLocal is the fiber local holding the authenticated user id, logged when present.
const UserIDLocal = "user_id"

// Config of the access log middleware.
type Config struct {
	// Next skips logging for a request when it returns true.
	Next func(c *fiber.Ctx) bool

	// Config selects the access log targets.
	Config logger.Log

	// CheckAliveURI is not logged when Config.DisableCheckAlive is set.
	CheckAliveURI string
}

// New returns a middleware writing one json line per request to the access log
// targets of cfg.Config. Without any target it only passes the request on.
func New(cfg Config) fiber.Handler {
	out := accessWriter(cfg.Config)
	if out == nil {
		return func(ctx *fiber.Ctx) error { return ctx.Next() }
	}

	access := zerolog.New(out).With().Timestamp().Logger()

	return func(ctx *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(ctx) {
			return ctx.Next()
		}

		started := time.Now()
		chainErr := ctx.Next()
		if chainErr != nil {
			// resolve the final status before logging it
			if err := ctx.App().Config().ErrorHandler(ctx, chainErr); err != nil {
				_ = ctx.SendStatus(fiber.StatusInternalServerError)
			}
		}

		if cfg.Config.DisableCheckAlive && ctx.Path() == cfg.CheckAliveURI {
			return nil
		}

		logAccess(access, ctx, time.Since(started), chainErr)

		return nil
	}
}

func logAccess(l zerolog.Logger, ctx *fiber.Ctx, took time.Duration, chainErr error) {
	ev := l.Log().
		Str("ip", ctx.IP()).
		Str("method", ctx.Method()).
		// fasthttp normalizes duplicate slashes, the raw request uri is logged instead
		Str("uri", ctx.OriginalURL()).
		Int("status", ctx.Response().StatusCode()).
		Dur("took", took).
		Str("user_agent", ctx.Get(fiber.HeaderUserAgent))

	if uid, ok := ctx.Locals(UserIDLocal).(uint64); ok {
		ev = ev.Uint64("user_id", uid)
	}

	if chainErr != nil {
		ev = ev.Err(chainErr)
	}

	ev.Send()
}

// accessWriter returns nil when neither the access file nor console access logging is enabled.
func accessWriter(cfg logger.Log) io.Writer {
	var writers []io.Writer

	if cfg.File.Enabled {
		w, err := logger.NewRollingFile(cfg.File.Path, cfg.File.AccessFile())
		if err != nil {
			log.Error().Err(err).Str("path", cfg.File.Path).Msg("access log file disabled")
		} else {
			writers = append(writers, w)
		}
	}

	if cfg.Console.Enabled && cfg.EnableAccessLogToConsole {
		var console io.Writer = os.Stdout
		if cfg.Console.UseConsoleWriter {
			console = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: zerolog.TimeFieldFormat}
		}

		writers = append(writers, console)
	}

	switch len(writers) {
	case 0:
		return nil
	case 1:
		return writers[0]
	default:
		return io.MultiWriter(writers...)
	}
}
