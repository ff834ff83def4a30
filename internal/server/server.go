package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

type Server struct {
	config   *Config
	server   *http.Server
	services *Services
}

func New(config *Config) (*Server, error) {
	services, err := NewServices()
	if err != nil {
		return nil, err
	}

	return &Server{
		config:   config,
		services: services,
		server: &http.Server{
			Addr:    config.HTTP.Addr,
			Handler: SetupRoutes(services),
		},
	}, nil
}

func (s *Server) Start(ctx context.Context) error {
	slog.Info("papersort server start", "addr", s.config.HTTP.Addr)
	defer slog.Info("papersort server stop")

	go func() {
		if err := s.services.Watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Warn("source watcher stopped", "error", err)
		}
	}()

	if s.config.Folders.Complete() {
		if err := s.loadConfiguredFolders(); err != nil {
			return err
		}
	}

	httpErr := make(chan error, 1)
	go func() {
		httpErr <- s.server.ListenAndServe()
	}()

	select {
	case err := <-httpErr:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil

	case <-ctx.Done():
		slog.Info("papersort shutdown signal")
		if err := s.Stop(context.Background()); err != nil {
			slog.Error("papersort shutdown error", "error", err)
			return err
		}
		return nil
	}
}

func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return s.services.Shutdown(shutdownCtx)
}

// loadConfiguredFolders builds the initial session from --source/--dest1/--dest2.
func (s *Server) loadConfiguredFolders() error {
	f := s.config.Folders
	view, err := s.services.Session.Load(f.Source, f.Dest1, f.Dest2)
	if err != nil {
		return fmt.Errorf("load configured folders: %w", err)
	}
	if err := s.services.Watcher.Watch(view.Source); err != nil {
		slog.Warn("watch source folder", "dir", view.Source, "error", err)
	}

	paths := make([]string, len(view.Entries))
	for i, e := range view.Entries {
		paths[i] = e.Path
	}
	s.services.Preview.Prefetch(paths)
	return nil
}
