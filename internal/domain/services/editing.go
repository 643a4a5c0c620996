package services

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/slidekit/slidekit/internal/domain/entities"
	"github.com/slidekit/slidekit/internal/domain/ports"
)

// EditingService binds edit interactions to data paths and applies
// commits. The data path is resolved exactly once, when the interaction
// starts; committing writes content and style through that snapshot so
// a text change can never re-resolve to the wrong field.
type EditingService struct {
	resolver ports.ContentResolver
	notifier ChangeNotifier
	logger   *slog.Logger

	// mu serializes commits: content and style land as one atomic
	// update per commit, with no partial path writes visible.
	mu sync.Mutex
}

// ChangeNotifier receives an event after each successful commit. A nil
// notifier is valid and means no one is listening.
type ChangeNotifier interface {
	NotifyClients(event ports.UpdateEvent) error
}

// NewEditingService creates a new editing service instance
func NewEditingService(resolver ports.ContentResolver, notifier ChangeNotifier, logger *slog.Logger) *EditingService {
	if logger == nil {
		logger = slog.Default()
	}

	return &EditingService{
		resolver: resolver,
		notifier: notifier,
		logger:   logger.With("service", "editing"),
	}
}

// SetNotifier attaches the change notifier after construction. The
// notifier usually wraps the HTTP server, which itself depends on this
// service, so the binding happens late.
func (s *EditingService) SetNotifier(notifier ChangeNotifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifier = notifier
}

// BeginEdit resolves the clicked fragment to its data path and
// snapshots the path and current style override. ok is false when no
// leaf matches: the fragment is renderer-generated output (list
// markers and the like) and is simply not editable.
func (s *EditingService) BeginEdit(deck *entities.Deck, slideID, fragmentID, targetText string) (*entities.EditSession, bool) {
	if deck == nil {
		return nil, false
	}

	deck.RLock()
	defer deck.RUnlock()

	slide := deck.SlideByID(slideID)
	if slide == nil {
		return nil, false
	}

	// A stable fragment identifier beats text matching: duplicate leaf
	// values are indistinguishable by text alone.
	path, ok := s.resolver.ResolveByID(slide.Content, fragmentID)
	if !ok {
		path, ok = s.resolver.Resolve(slide.Content, targetText)
	}
	if !ok {
		s.logger.Debug("fragment not editable",
			slog.String("slide_id", slideID),
			slog.String("target", targetText),
		)
		return nil, false
	}

	original, _ := s.resolver.Get(slide.Content, path)
	style, _ := slide.StyleAt(path)

	return &entities.EditSession{
		DeckID:       deck.ID,
		SlideID:      slideID,
		Path:         path,
		OriginalText: original,
		Style:        style,
		Hidden:       true,
	}, true
}

// CommitEdit applies the content update and, when the style changed,
// the style-map update, both addressed by the path snapshotted at
// BeginEdit. The two writes are atomic from the caller's perspective.
func (s *EditingService) CommitEdit(deck *entities.Deck, session *entities.EditSession, newText string, newStyle *entities.TextStyle) error {
	if deck == nil {
		return errors.New("deck cannot be nil")
	}
	if session == nil {
		return errors.New("edit session cannot be nil")
	}
	if err := session.Validate(); err != nil {
		return fmt.Errorf("invalid edit session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	deck.Lock()
	slide := deck.SlideByID(session.SlideID)
	if slide == nil {
		deck.Unlock()
		return fmt.Errorf("slide %s not found", session.SlideID)
	}

	updated, err := s.resolver.Set(slide.Content, session.Path, newText)
	if err != nil {
		deck.Unlock()
		return fmt.Errorf("writing content at %s: %w", session.Path, err)
	}

	// Both writes land before any render pass can observe either.
	slide.Content = updated
	if newStyle != nil && *newStyle != session.Style {
		slide.SetStyleAt(session.Path, *newStyle)
	}
	deck.Unlock()

	session.Hidden = false

	s.logger.Info("edit committed",
		slog.String("slide_id", session.SlideID),
		slog.String("path", session.Path),
	)

	s.notify(ports.UpdateEvent{
		Type: ports.EventTypeSlideUpdated,
		Data: map[string]interface{}{
			"slideId": session.SlideID,
			"path":    session.Path,
		},
	})

	return nil
}

// Abandon discards an in-flight session without writing back. Safe
// no-op: navigating away mid-edit is not an error.
func (s *EditingService) Abandon(session *entities.EditSession) {
	if session == nil {
		return
	}
	session.Hidden = false
}

// GetStyle returns the style override for a path on a slide
func (s *EditingService) GetStyle(deck *entities.Deck, slideID, path string) (entities.TextStyle, bool) {
	if deck == nil {
		return entities.TextStyle{}, false
	}
	deck.RLock()
	defer deck.RUnlock()

	slide := deck.SlideByID(slideID)
	if slide == nil {
		return entities.TextStyle{}, false
	}
	return slide.StyleAt(path)
}

// SetStyle records a style override for a path on a slide
func (s *EditingService) SetStyle(deck *entities.Deck, slideID, path string, style entities.TextStyle) error {
	if deck == nil {
		return errors.New("deck cannot be nil")
	}
	if path == "" {
		return errors.New("style path cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	deck.Lock()
	slide := deck.SlideByID(slideID)
	if slide == nil {
		deck.Unlock()
		return fmt.Errorf("slide %s not found", slideID)
	}

	slide.SetStyleAt(path, style)
	deck.Unlock()

	s.notify(ports.UpdateEvent{
		Type: ports.EventTypeStyleUpdated,
		Data: map[string]interface{}{
			"slideId": slideID,
			"path":    path,
		},
	})

	return nil
}

func (s *EditingService) notify(event ports.UpdateEvent) {
	if s.notifier == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := s.notifier.NotifyClients(event); err != nil {
		s.logger.Warn("failed to notify clients",
			slog.String("error", err.Error()),
			slog.String("event_type", event.Type),
		)
	}
}
