package log

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// RequestLogger returns echo middleware that logs one record per request and
// stores a request-scoped logger in the request context.
func RequestLogger(logger *Logger) echo.MiddlewareFunc {
	httpLogger := logger.WithComponent(ComponentHTTP)

	inject := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqLogger := httpLogger.With(FieldRequestID, c.Response().Header().Get(echo.HeaderXRequestID))
			req := c.Request()
			c.SetRequest(req.WithContext(WithContext(req.Context(), reqLogger)))
			return next(c)
		}
	}

	logValues := middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			attrs := []slog.Attr{
				slog.String(FieldMethod, v.Method),
				slog.String(FieldPath, v.URI),
				slog.Int(FieldStatusCode, v.Status),
				slog.Int64(FieldDuration, v.Latency.Milliseconds()),
				slog.String(FieldClientIP, v.RemoteIP),
				slog.String(FieldRequestID, v.RequestID),
			}
			if v.Error != nil {
				level = slog.LevelError
				attrs = append(attrs, slog.String(FieldError, v.Error.Error()))
			} else if v.Status >= 500 {
				level = slog.LevelError
			}
			httpLogger.LogAttrs(context.Background(), level, "request", attrs...)
			return nil
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return logValues(inject(next))
	}
}
