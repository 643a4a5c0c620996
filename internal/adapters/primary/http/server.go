package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/slidekit/slidekit/internal/domain/entities"
	"github.com/slidekit/slidekit/internal/domain/ports"
)

// HTTPLogger provides leveled logging for the HTTP server
type HTTPLogger struct {
	component string
	level     entities.LogLevel
}

// NewHTTPLogger creates a new HTTP logger instance
func NewHTTPLogger(component string, level entities.LogLevel) *HTTPLogger {
	if level == "" {
		level = entities.LogLevelInfo
	}
	return &HTTPLogger{component: component, level: level}
}

var levelRank = map[entities.LogLevel]int{
	entities.LogLevelDebug: 0,
	entities.LogLevelInfo:  1,
	entities.LogLevelWarn:  2,
	entities.LogLevelError: 3,
}

func (l *HTTPLogger) log(msgLevel entities.LogLevel, tag, msg string, args ...interface{}) {
	if levelRank[msgLevel] < levelRank[l.level] {
		return
	}
	log.Printf("["+tag+"] ["+l.component+"] "+msg, args...)
}

// Debug logs debug messages
func (l *HTTPLogger) Debug(msg string, args ...interface{}) {
	l.log(entities.LogLevelDebug, "DEBUG", msg, args...)
}

// Info logs informational messages
func (l *HTTPLogger) Info(msg string, args ...interface{}) {
	l.log(entities.LogLevelInfo, "INFO", msg, args...)
}

// Warn logs warning messages
func (l *HTTPLogger) Warn(msg string, args ...interface{}) {
	l.log(entities.LogLevelWarn, "WARN", msg, args...)
}

// Error logs error messages
func (l *HTTPLogger) Error(msg string, args ...interface{}) {
	l.log(entities.LogLevelError, "ERROR", msg, args...)
}

// Ensure Server implements ports.HTTPServer
var _ ports.HTTPServer = (*Server)(nil)

// Server exposes the editor over HTTP: rendered deck, render preview,
// edit begin/commit, style read/write, and a websocket change feed.
type Server struct {
	server   *http.Server
	connMgr  *ConnectionManager
	decks    ports.DeckService
	editing  ports.EditingService
	styles   ports.StyleStore
	renderer ports.TextRenderer
	config   *entities.ServerConfig
	logger   *HTTPLogger

	mu      sync.RWMutex
	deck    *entities.Deck
	running bool
}

// NewServer creates a new HTTP server.
// config must not be nil.
func NewServer(decks ports.DeckService, editing ports.EditingService, styles ports.StyleStore, renderer ports.TextRenderer, config *entities.ServerConfig, logging *entities.LoggingConfig) *Server {
	if config == nil {
		panic("server config cannot be nil - provide a valid ServerConfig")
	}

	level := entities.LogLevelInfo
	if logging != nil {
		level = logging.GetLevel()
	}

	return &Server{
		decks:    decks,
		editing:  editing,
		styles:   styles,
		renderer: renderer,
		connMgr:  NewConnectionManager(),
		config:   config,
		logger:   NewHTTPLogger("server", level),
	}
}

// SetDeck sets the deck being edited
func (s *Server) SetDeck(d *entities.Deck) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deck = d
}

// GetDeck returns the deck being edited
func (s *Server) GetDeck() *entities.Deck {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deck
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context, port int, host string) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}

	router := s.setupRoutes()

	c := cors.New(cors.Options{
		AllowedOrigins:   s.config.GetCORSOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           300,
	})
	handler := c.Handler(router)

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      handler,
		ReadTimeout:  s.config.GetReadTimeout(),
		WriteTimeout: s.config.GetWriteTimeout(),
	}
	s.running = true
	s.mu.Unlock()

	go func() {
		s.logger.Info("HTTP server starting on %s:%d", host, port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return errors.New("server not running")
	}

	s.connMgr.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.GetShutdownTimeout())
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.running = false
	return nil
}

// NotifyClients sends an update event to all connected clients
func (s *Server) NotifyClients(event ports.UpdateEvent) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.running {
		return errors.New("server not running")
	}

	s.connMgr.Broadcast(event)
	return nil
}

// IsRunning returns whether the server is currently running
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/ws", s.handleWebSocket).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/deck", s.handleDeck).Methods("GET")
	api.HandleFunc("/render", s.handleRender).Methods("POST")
	api.HandleFunc("/edit/begin", s.handleEditBegin).Methods("POST")
	api.HandleFunc("/edit/commit", s.handleEditCommit).Methods("POST")
	api.HandleFunc("/style", s.handleStyleGet).Methods("GET")
	api.HandleFunc("/style", s.handleStylePut).Methods("PUT")

	var handler http.Handler = router
	handler = securityHeadersMiddleware(handler)
	handler = loggingMiddleware(handler, s.logger)
	handler = recoveryMiddleware(handler, s.logger)

	return handler
}
