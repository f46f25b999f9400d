package echoutil

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"go.uber.org/zap"
)

// LogHandler logs requests and responses.
func LogHandler(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			meth := c.Request().Method
			path := c.Request().URL.String()
			BEGIN := time.Now()
			logger.Debug("< request", zap.String("method", meth), zap.String("path", path))

			err := next(c)

			logger.Info(
				"> response",
				zap.String("method", meth),
				zap.String("path", path),
				zap.Int("status", statusOf(c, err)),
				zap.Duration("elapsed", time.Since(BEGIN)),
				zap.Error(err),
			)
			return err
		}
	}
}

// SetLevel sets log level of echo's own logger.
//
// Unknown level falls back to warn.
func SetLevel(e *echo.Echo, loglevel string) {
	switch strings.ToLower(loglevel) {
	case "debug":
		e.Logger.SetLevel(log.DEBUG)
	case "info":
		e.Logger.SetLevel(log.INFO)
	case "warn", "":
		e.Logger.SetLevel(log.WARN)
	case "error":
		e.Logger.SetLevel(log.ERROR)
	case "off":
		e.Logger.SetLevel(log.OFF)
	default:
		e.Logger.SetLevel(log.WARN)
		e.Logger.Warnf("unknown loglevel: %s . fall-backed to warn", loglevel)
	}
}
