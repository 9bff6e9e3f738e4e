// Package server serves demo tabs and sandbox hand-off pages over HTTP and
// pushes a reload notice to connected browsers whenever the source table is
// replaced.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/conneroisu/showcase/internal/config"
	"github.com/conneroisu/showcase/internal/logging"
	"github.com/conneroisu/showcase/internal/registry"
	"github.com/conneroisu/showcase/internal/sandbox"
	"github.com/conneroisu/showcase/internal/services"
)

// Client represents a WebSocket client
type Client struct {
	conn   *websocket.Conn
	send   chan []byte
	server *PreviewServer
}

// PreviewServer serves the demo API with live reload notifications
type PreviewServer struct {
	config   *config.Config
	demos    *services.DemoService
	handoff  *sandbox.FormLauncher
	logger   logging.Logger
	upgrades *websocket.AcceptOptions

	pingPeriod time.Duration

	httpServer  *http.Server
	serverMutex sync.RWMutex

	clients      map[*websocket.Conn]*Client
	clientsMutex sync.RWMutex
	broadcast    chan []byte
	register     chan *Client
	unregister   chan *websocket.Conn
	shutdownOnce sync.Once
}

// UpdateMessage represents a message sent to the browser
type UpdateMessage struct {
	Type      string    `json:"type"`
	Entries   int       `json:"entries,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// MessageSourcesChanged tells browsers to refetch their demo tabs.
const MessageSourcesChanged = "sources-changed"

// New creates a new preview server
func New(cfg *config.Config, demos *services.DemoService, logger logging.Logger) *PreviewServer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.WithComponent("server")

	return &PreviewServer{
		config:     cfg,
		demos:      demos,
		handoff:    sandbox.NewFormLauncher(services.FormConfig(cfg, logger)),
		logger:     logger,
		upgrades:   &websocket.AcceptOptions{OriginPatterns: originPatterns(cfg.Server.AllowedOrigins)},
		pingPeriod: defaultPingPeriod,
		clients:    make(map[*websocket.Conn]*Client),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *websocket.Conn),
	}
}

// Handler returns the HTTP handler with every route and middleware applied.
func (s *PreviewServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /api/demos", s.handleDemos)
	mux.HandleFunc("GET /api/demos/{name}", s.handleDemo)
	mux.HandleFunc("GET /api/demos/{name}/project", s.handleProject)
	mux.HandleFunc("GET /api/demos/{name}/launch", s.handleLaunch)

	return s.addMiddleware(mux)
}

// Run starts the websocket hub and the snapshot relay. It returns when ctx
// is done.
func (s *PreviewServer) Run(ctx context.Context) {
	events := s.demos.Registry().Watch()
	go s.relaySnapshots(ctx, events)
	s.runWebSocketHub(ctx)
}

// Start serves on the configured address until ctx is cancelled or the
// server is shut down.
func (s *PreviewServer) Start(ctx context.Context) error {
	addr := net.JoinHostPort(s.config.Server.Host, fmt.Sprint(s.config.Server.Port))

	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	server := s.httpServer
	s.serverMutex.Unlock()

	go s.Run(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn(shutdownCtx, err, "Server shutdown failed")
		}
	}()

	if s.config.Server.Open {
		go s.openBrowser(ctx, "http://"+addr+"/api/demos")
	}

	s.logger.Info(ctx, "Preview server listening", "addr", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func (s *PreviewServer) openBrowser(ctx context.Context, target string) {
	time.Sleep(100 * time.Millisecond)
	if !sandbox.CurrentHost().CanOpenBrowser() {
		return
	}
	if err := sandbox.OpenBrowser(target); err != nil {
		s.logger.Warn(ctx, err, "Failed to open browser", "url", target)
	}
}

// Shutdown gracefully shuts down the server and closes websocket clients
func (s *PreviewServer) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.logger.Info(ctx, "Shutting down server")

		s.clientsMutex.Lock()
		for conn, client := range s.clients {
			close(client.send)
			conn.Close(websocket.StatusGoingAway, "server shutting down")
		}
		s.clients = make(map[*websocket.Conn]*Client)
		s.clientsMutex.Unlock()

		s.serverMutex.RLock()
		server := s.httpServer
		s.serverMutex.RUnlock()

		if server != nil {
			shutdownErr = server.Shutdown(ctx)
		}
	})

	return shutdownErr
}

func (s *PreviewServer) relaySnapshots(ctx context.Context, events <-chan registry.SnapshotEvent) {
	defer s.demos.Registry().UnWatch(events)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			s.broadcastMessage(ctx, UpdateMessage{
				Type:      MessageSourcesChanged,
				Entries:   event.Entries,
				Timestamp: event.Timestamp,
			})
		}
	}
}

func (s *PreviewServer) broadcastMessage(ctx context.Context, msg UpdateMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to marshal update message")
		return
	}

	select {
	case s.broadcast <- data:
	default:
		s.logger.Warn(ctx, nil, "Broadcast queue full, dropping update", "type", msg.Type)
	}
}

// ClientCount reports the number of connected websocket clients.
func (s *PreviewServer) ClientCount() int {
	s.clientsMutex.RLock()
	defer s.clientsMutex.RUnlock()
	return len(s.clients)
}
