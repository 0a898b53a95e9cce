package http

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// observe records the latency of every request by route template.
func (s *Server) observe(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		started := time.Now()
		err := next(ctx)
		if err != nil {
			ctx.Error(err)
		}

		route := ctx.Path()
		if route == "" {
			route = "unmatched"
		}
		s.metrics.HTTPRequestDuration.
			WithLabelValues(ctx.Request().Method, route, strconv.Itoa(ctx.Response().Status)).
			Observe(time.Since(started).Seconds())

		return nil
	}
}
