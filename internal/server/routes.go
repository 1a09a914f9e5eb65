package server

import (
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

func (s *Server) routes() {
	e := s.echo

	e.GET("/", s.overviewPage)
	e.GET("/tables/:name", s.tablePage)
	e.GET("/documents", s.documentsPage)
	e.GET("/documents/:id", s.documentPage)
	e.GET("/upload", s.uploadForm)
	e.POST("/upload", s.upload, middleware.BodyLimit(s.bodyLimit()), s.uploadLimiter())
	e.GET("/export.xlsx", s.exportXLSX)
	e.GET("/export/:file", s.exportCSV)

	api := e.Group("/api")
	api.POST("/extract", s.apiExtract, middleware.BodyLimit(s.bodyLimit()), s.uploadLimiter())
	api.GET("/overview", s.apiOverview)

	e.GET("/healthz", s.healthz)
	if s.deps.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.deps.Metrics.Registry, promhttp.HandlerOpts{})))
	}
}

func (s *Server) bodyLimit() string {
	return fmt.Sprintf("%dB", s.cfg.UploadMaxBytes)
}

// uploadLimiter throttles per client IP. A non-positive rate disables throttling.
func (s *Server) uploadLimiter() echo.MiddlewareFunc {
	if s.cfg.UploadRatePerSec <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	burst := int(math.Ceil(s.cfg.UploadRatePerSec))
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(s.cfg.UploadRatePerSec),
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "client could not be identified")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			s.deps.Metrics.RejectUpload("rate_limited")
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many uploads, slow down")
		},
	})
}
