package echoutil

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/opst/mlpipe/pkg/metrics"
)

// Metrics counts requests by route, not by raw path.
func Metrics(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			BEGIN := time.Now()
			err := next(c)

			route := c.Path()
			if route == "" {
				route = "unknown"
			}
			m.HTTPRequest(c.Request().Method, route, statusOf(c, err), time.Since(BEGIN))
			return err
		}
	}
}

// statusOf tells the status code to be responded.
//
// When err is not nil, the response is not written yet and the error handler will write it.
func statusOf(c echo.Context, err error) int {
	if err == nil {
		return c.Response().Status
	}
	if herr := new(echo.HTTPError); errors.As(err, &herr) {
		return herr.Code
	}
	return http.StatusInternalServerError
}
