// Package server runs the HTTP listener and the background daemons and ties
// their lifecycles together. A termination signal shuts everything down
// within the configured graceful timeout.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/pamcare/pamcare/config"
)

// Daemon is a long running component tied to the server lifecycle, such as
// the job scheduler.
type Daemon interface {
	Name() string
	Start() error
	Stop(ctx context.Context) error
}

type Server struct {
	configProvider *config.Provider
	handler        http.Handler
	logger         *slog.Logger
	daemons        []Daemon

	// reloadFunc runs on SIGHUP.
	reloadFunc func() error

	// exitFunc is os.Exit, swappable in tests.
	exitFunc func(code int)
}

func NewServer(provider *config.Provider, handler http.Handler, logger *slog.Logger, reloadFunc func() error) *Server {
	return &Server{
		configProvider: provider,
		handler:        handler,
		logger:         logger,
		reloadFunc:     reloadFunc,
		exitFunc:       os.Exit,
	}
}

func (s *Server) AddDaemon(d Daemon) {
	s.daemons = append(s.daemons, d)
}

// Run blocks until a termination signal or a fatal error, then shuts down
// the listener and every daemon and exits the process.
func (s *Server) Run() {
	cfg := s.configProvider.Get().Server

	s.logger.Info("server configuration",
		"addr", cfg.Addr,
		"read_timeout", cfg.ReadTimeout.Duration,
		"read_header_timeout", cfg.ReadHeaderTimeout.Duration,
		"write_timeout", cfg.WriteTimeout.Duration,
		"idle_timeout", cfg.IdleTimeout.Duration,
		"shutdown_timeout", cfg.ShutdownGracefulTimeout.Duration,
	)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.handler,
		ReadTimeout:       cfg.ReadTimeout.Duration,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout.Duration,
		WriteTimeout:      cfg.WriteTimeout.Duration,
		IdleTimeout:       cfg.IdleTimeout.Duration,
	}

	serverError := make(chan error, 1)
	go func() {
		s.logger.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	started, err := s.startDaemons()
	if err != nil {
		s.logger.Error("daemon startup failed", "err", err)
		s.shutdown(srv, started, 1)
		return
	}

	sigHup := make(chan os.Signal, 1)
	signal.Notify(sigHup, syscall.SIGHUP)
	defer signal.Stop(sigHup)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	defer stop()

	for {
		select {
		case <-sigHup:
			s.logger.Info("received SIGHUP, reloading configuration")
			if s.reloadFunc != nil {
				if err := s.reloadFunc(); err != nil {
					s.logger.Error("configuration reload failed", "err", err)
				}
			}
		case <-ctx.Done():
			s.logger.Info("received shutdown signal, gracefully shutting down")
			stop()
			s.shutdown(srv, started, 0)
			return
		case err := <-serverError:
			s.logger.Error("http server error, initiating shutdown", "err", err)
			stop()
			s.shutdown(srv, started, 1)
			return
		}
	}
}

// startDaemons starts daemons in registration order and returns the ones that
// came up. On failure the caller stops the started subset.
func (s *Server) startDaemons() ([]Daemon, error) {
	var started []Daemon
	for _, d := range s.daemons {
		s.logger.Info("starting daemon", "name", d.Name())
		if err := d.Start(); err != nil {
			return started, err
		}
		started = append(started, d)
	}
	return started, nil
}

func (s *Server) shutdown(srv *http.Server, daemons []Daemon, code int) {
	timeout := s.configProvider.Get().Server.ShutdownGracefulTimeout.Duration
	gracefulCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	g, _ := errgroup.WithContext(gracefulCtx)

	g.Go(func() error {
		if err := srv.Shutdown(gracefulCtx); err != nil {
			s.logger.Error("http server shutdown error", "err", err)
			return err
		}
		return nil
	})

	for _, d := range daemons {
		g.Go(func() error {
			s.logger.Info("stopping daemon", "name", d.Name())
			if err := d.Stop(gracefulCtx); err != nil {
				s.logger.Error("daemon shutdown error", "name", d.Name(), "err", err)
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.exitFunc(1)
		return
	}

	s.logger.Info("all systems stopped gracefully")
	s.exitFunc(code)
}
