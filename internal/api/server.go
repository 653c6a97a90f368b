package api

import (
	"fmt"

	applog "salesdash/internal/log"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// multipartOverhead is the room left in a request body for the multipart
// framing around an upload of MaxUploadBytes.
const multipartOverhead = 64 << 10

// NewEcho builds the echo instance with middleware and routes registered.
func NewEcho(h *Handler, logger *applog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = JSONSerializer{}

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(logger.WithComponent(applog.ComponentHTTP)))
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dB", h.maxUpload+multipartOverhead)))

	h.RegisterRoutes(e)
	return e
}

func requestLogger(logger *applog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			args := []any{
				applog.FieldMethod, v.Method,
				applog.FieldPath, v.URIPath,
				applog.FieldStatusCode, v.Status,
				applog.FieldDuration, v.Latency.Milliseconds(),
				applog.FieldClientIP, v.RemoteIP,
				applog.FieldRequestID, v.RequestID,
			}
			if v.Error != nil {
				logger.ErrorContext(c.Request().Context(), "Request failed", append(args, applog.FieldError, v.Error)...)
				return nil
			}
			logger.InfoContext(c.Request().Context(), "Request handled", args...)
			return nil
		},
	})
}
