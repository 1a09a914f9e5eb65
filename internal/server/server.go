package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/business-dashboard/internal/aggregate"
	"github.com/joseph-ayodele/business-dashboard/internal/common"
	"github.com/joseph-ayodele/business-dashboard/internal/core"
	"github.com/joseph-ayodele/business-dashboard/internal/core/async"
	"github.com/joseph-ayodele/business-dashboard/internal/core/extract"
	"github.com/joseph-ayodele/business-dashboard/internal/metrics"
	"github.com/joseph-ayodele/business-dashboard/internal/repository"
	"github.com/joseph-ayodele/business-dashboard/internal/services/export"
)

// Deps are the collaborators behind the dashboard routes.
type Deps struct {
	Records   repository.Source
	Documents repository.DocumentRepository
	Engine    *extract.Extractor
	Processor *core.Processor // persists /api/extract?save=true; nil disables saving
	Queue     async.Queue     // receives uploads; nil disables /upload POST
	Exports   *export.Service
	Metrics   *metrics.Metrics
	Ping      func(ctx context.Context) error
}

// Server is the HTTP dashboard.
type Server struct {
	echo   *echo.Echo
	cfg    common.ServerConfig
	deps   Deps
	money  aggregate.Formatter
	schema *jsonschema.Schema
	logger *slog.Logger
}

// New builds the echo instance and registers every route.
func New(cfg common.ServerConfig, deps Deps, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Records == nil || deps.Documents == nil {
		return nil, errors.New("server: records and documents repositories are required")
	}
	if deps.Engine == nil {
		deps.Engine = extract.NewExtractor(nil, logger)
	}
	if deps.Exports == nil {
		deps.Exports = export.NewService(deps.Records, logger)
	}

	s := &Server{
		cfg:    cfg,
		deps:   deps,
		money:  aggregate.NewFormatter(cfg.Currency),
		logger: logger,
	}

	schema, err := compileExtractSchema()
	if err != nil {
		return nil, err
	}
	s.schema = schema

	tmpl, err := newTemplates(cfg.TemplatesDir, s.templateFuncs())
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = tmpl
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		RequestIDHandler: func(c echo.Context, id string) {
			req := c.Request()
			ctx := common.WithRequestID(req.Context(), id)
			ctx = common.WithLogger(ctx, s.logger.With("request_id", id))
			c.SetRequest(req.WithContext(ctx))
		},
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				s.logger.Warn("request failed", append(attrs, "error", v.Error)...)
				return nil
			}
			s.logger.Info("request", attrs...)
			return nil
		},
	}))

	s.echo = e
	s.routes()
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on addr until Shutdown. A graceful shutdown is not an error.
func (s *Server) Start(addr string) error {
	s.logger.Info("dashboard listening", "addr", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := common.HTTPStatus(err)
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = fmt.Sprint(he.Message)
	}
	if code >= http.StatusInternalServerError {
		common.LoggerFromContext(c.Request().Context(), s.logger).Error("request error", "path", c.Request().URL.Path, "error", err)
		msg = http.StatusText(code)
	}

	var werr error
	switch {
	case c.Request().Method == http.MethodHead:
		werr = c.NoContent(code)
	case strings.HasPrefix(c.Request().URL.Path, "/api/"):
		werr = c.JSON(code, map[string]string{"error": msg})
	default:
		werr = c.String(code, msg)
	}
	if werr != nil {
		s.logger.Error("failed to write error response", "error", werr)
	}
}
