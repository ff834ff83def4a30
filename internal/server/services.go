package server

import (
	"context"
	"fmt"

	"github.com/papersort/papersort/internal/preview"
	"github.com/papersort/papersort/internal/server/handlers/events"
	"github.com/papersort/papersort/internal/session"
	"github.com/papersort/papersort/internal/watch"
)

type Services struct {
	Session *session.Service
	Preview *preview.Service
	Watcher *watch.SourceWatcher
	Events  *events.Hub
}

func NewServices() (*Services, error) {
	hub := events.NewHub()

	previewSvc, err := preview.NewService(preview.NewFitzRenderer())
	if err != nil {
		return nil, fmt.Errorf("create preview service: %w", err)
	}

	sessionSvc := session.NewService()
	sessionSvc.SetPublisher(hub)
	sessionSvc.SetPreviewCache(previewSvc)

	watcher, err := watch.New(sessionSvc.NoteFolderChange)
	if err != nil {
		return nil, fmt.Errorf("create source watcher: %w", err)
	}

	return &Services{
		Session: sessionSvc,
		Preview: previewSvc,
		Watcher: watcher,
		Events:  hub,
	}, nil
}

func (s *Services) Shutdown(ctx context.Context) error {
	s.Events.Shutdown(ctx)

	if err := s.Watcher.Close(); err != nil {
		return fmt.Errorf("close source watcher: %w", err)
	}
	if err := s.Session.Close(); err != nil {
		return fmt.Errorf("close session service: %w", err)
	}
	return nil
}
