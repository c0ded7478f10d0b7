// Package dashboard serves the aggregated project view over HTTP.
package dashboard

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/comigor/chatlogger-go/internal/aggregate"
	"github.com/comigor/chatlogger-go/internal/config"
	"github.com/comigor/chatlogger-go/internal/logger"
)

const readFailure = "Failed to read project data"

// Aggregator builds the dashboard payload.
type Aggregator interface {
	Aggregate(ctx context.Context) (aggregate.Dashboard, error)
}

// Server provides the dashboard endpoints.
type Server struct {
	echo *echo.Echo
	agg  Aggregator
	addr string
}

// ErrorResponse is the body of a failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// NewServer creates the dashboard server.
func NewServer(agg Aggregator, cfg config.ServerConfig) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			logger.L.Debug("http request",
				"method", c.Request().Method,
				"uri", c.Request().RequestURI,
				"status", c.Response().Status,
				"duration", time.Since(start),
			)
			return err
		}
	})

	s := &Server{echo: e, agg: agg, addr: net.JoinHostPort(cfg.Host, cfg.Port)}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.echo.GET("/api/projects", s.handleProjects)
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler { return s.echo }

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleProjects(c echo.Context) error {
	dash, err := s.agg.Aggregate(c.Request().Context())
	if err != nil {
		logger.L.Error("failed to aggregate project data", "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: readFailure})
	}
	return c.JSON(http.StatusOK, dash)
}

// Start listens until Shutdown is called. http.ErrServerClosed is not
// reported as an error.
func (s *Server) Start() error {
	logger.L.Info("starting dashboard server", "addr", s.addr)
	if err := s.echo.Start(s.addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	logger.L.Info("shutting down dashboard server")
	return s.echo.Shutdown(ctx)
}
