package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/desertthunder/roster/internal/notify"
	"github.com/desertthunder/roster/internal/reconcile"
	"github.com/desertthunder/roster/internal/shared"
)

// StatusSource reports reconciliation progress. [reconcile.Driver] implements it.
type StatusSource interface {
	Gate() reconcile.Gate
	Last() (reconcile.PassReport, bool)
	State() *reconcile.State
}

// Options configures a [Server]. Gateway and Status may be nil.
type Options struct {
	Gateway notify.Gateway
	Status  StatusSource
	Logger  *log.Logger
}

// Server is the HTTP API.
type Server struct {
	echo    *echo.Echo
	gateway notify.Gateway
	status  StatusSource
	logger  *log.Logger
}

// New creates a [Server] with its routes registered.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:    e,
		gateway: opts.Gateway,
		status:  opts.Status,
		logger:  shared.WithLogger(opts.Logger, "component", "server"),
	}

	e.Use(middleware.Recover())
	e.Use(s.requestLogger)

	e.GET("/health", s.health)
	e.GET("/api/status", s.apiStatus)
	e.Any("/api/send-notification", s.sendNotification)
	return s
}

// Handler returns the server as an [http.Handler].
func (s *Server) Handler() http.Handler { return s.echo }

// Start listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.echo.Shutdown(shutdownCtx)
}

func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		s.logger.Debug("request",
			"method", c.Request().Method,
			"path", c.Path(),
			"status", c.Response().Status,
			"took", time.Since(start),
		)
		return nil
	}
}

func (s *Server) health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
