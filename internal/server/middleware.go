package server

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"gdp-chart/internal/infra/log"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// HTTPRecorder is the subset of the metrics recorder used by the middleware.
type HTTPRecorder interface {
	RecordHTTP(route, method string, status int, d time.Duration)
}

// Recover turns panics into 500 responses.
func Recover() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					perr, ok := r.(error)
					if !ok {
						perr = fmt.Errorf("%v", r)
					}
					log.LogError("Panic in HTTP handler",
						zap.String("path", c.Request().URL.Path),
						zap.Error(perr),
						zap.ByteString("stack", debug.Stack()))
					err = echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
				}
			}()
			return next(c)
		}
	}
}

// RequestLogging writes one request/response pair per call to the file log.
func RequestLogging() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			requestID := log.GenerateRequestID()
			start := time.Now()

			log.LogRequest(requestID, req.Method, req.RequestURI, zap.String("remote", c.RealIP()))
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			log.LogResponse(requestID, c.Response().Status, time.Since(start).Milliseconds(),
				zap.Int64("bytes", c.Response().Size))
			return nil
		}
	}
}

// Metrics records route-level request counts and latency.
func Metrics(rec HTTPRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			rec.RecordHTTP(route, c.Request().Method, c.Response().Status, time.Since(start))
			return nil
		}
	}
}
