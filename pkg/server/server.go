// Package server provides the HTTP API for granary.
package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/granary-dev/granary/pkg/repository"
	"github.com/granary-dev/granary/pkg/usecase/chat"
	"github.com/granary-dev/granary/pkg/usecase/ingest"
	"github.com/granary-dev/granary/pkg/usecase/search"
	"github.com/granary-dev/granary/pkg/utils/logging"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/m-mizutani/goerr/v2"
)

// Server exposes the search, chat and ingestion operations over HTTP
type Server struct {
	echo   *echo.Echo
	search *search.UseCase
	chat   *chat.UseCase
	ingest *ingest.UseCase
	repo   repository.Repository
	logger *slog.Logger
}

// Input contains the dependencies for a new Server
type Input struct {
	Search *search.UseCase
	Chat   *chat.UseCase
	Ingest *ingest.UseCase
	Repo   repository.Repository
	Logger *slog.Logger
}

// New creates a new HTTP server
func New(input Input) (*Server, error) {
	if input.Search == nil || input.Chat == nil || input.Ingest == nil || input.Repo == nil {
		return nil, goerr.New("search, chat, ingest and repo are required")
	}
	if input.Logger == nil {
		input.Logger = logging.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	s := &Server{
		echo:   e,
		search: input.Search,
		chat:   input.Chat,
		ingest: input.Ingest,
		repo:   input.Repo,
		logger: input.Logger,
	}

	e.Use(s.requestLogger)
	s.registerRoutes()

	return s, nil
}

// requestLogger attaches the server logger to the request context and logs
// one line per request
func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		c.SetRequest(req.WithContext(logging.With(req.Context(), s.logger)))

		start := time.Now()
		err := next(c)

		s.logger.Info("http request",
			"method", req.Method,
			"uri", req.RequestURI,
			"status", c.Response().Status,
			"duration", time.Since(start),
			"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
		)

		return err
	}
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)

	api := s.echo.Group("/api")
	api.POST("/search", s.handleSearch)
	api.POST("/chat", s.handleChat)
	api.GET("/documents", s.handleListDocuments)
	api.POST("/documents", s.handleAddDocument)
	api.POST("/documents/bulk", s.handleBulkAddDocuments)
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start(addr string) error {
	s.logger.Info("starting http server", "addr", addr)
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
