package server

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"
)

const (
	// Time allowed to write a message or ping to the peer.
	writeWait = 10 * time.Second

	// Default interval between pings. A client that misses a pong within
	// writeWait is dropped.
	defaultPingPeriod = 30 * time.Second
)

func (s *PreviewServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.checkOrigin(r) {
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, s.upgrades)
	if err != nil {
		s.logger.Warn(r.Context(), err, "WebSocket upgrade failed")
		return
	}

	client := &Client{
		conn:   conn,
		send:   make(chan []byte, 256),
		server: s,
	}

	select {
	case s.register <- client:
	case <-time.After(writeWait):
		conn.Close(websocket.StatusTryAgainLater, "server busy")
		return
	}

	go client.writePump()
	go client.readPump()
}

// checkOrigin accepts same-origin requests, the configured allowed origins,
// and localhost on the server port.
func (s *PreviewServer) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return false
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if originURL.Scheme != "http" && originURL.Scheme != "https" {
		return false
	}

	if originURL.Host == r.Host {
		return true
	}

	for _, allowed := range s.config.Server.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}

	port := s.config.Server.Port
	for _, host := range []string{"localhost", "127.0.0.1"} {
		if originURL.Hostname() == host && originURL.Port() == portString(port) {
			return true
		}
	}

	return false
}

func (s *PreviewServer) runWebSocketHub(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case client := <-s.register:
			s.clientsMutex.Lock()
			s.clients[client.conn] = client
			count := len(s.clients)
			s.clientsMutex.Unlock()
			s.logger.Debug(ctx, "Client connected", "clients", count)

		case conn := <-s.unregister:
			s.clientsMutex.Lock()
			if client, ok := s.clients[conn]; ok {
				delete(s.clients, conn)
				close(client.send)
			}
			count := len(s.clients)
			s.clientsMutex.Unlock()
			s.logger.Debug(ctx, "Client disconnected", "clients", count)

		case message := <-s.broadcast:
			s.clientsMutex.Lock()
			for conn, client := range s.clients {
				select {
				case client.send <- message:
				default:
					// Slow client, drop it.
					delete(s.clients, conn)
					close(client.send)
				}
			}
			s.clientsMutex.Unlock()
		}
	}
}

// readPump waits for the peer to go away. Browsers never send data frames,
// so reads only serve control frames; liveness comes from writePump's pings.
func (c *Client) readPump() {
	ctx := c.conn.CloseRead(context.Background())
	<-ctx.Done()

	select {
	case c.server.unregister <- c.conn:
	case <-time.After(writeWait):
	}
	c.conn.Close(websocket.StatusNormalClosure, "")
}

// writePump pumps messages to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(c.server.pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				c.server.logger.Debug(context.Background(), "WebSocket write failed", "error", err.Error())
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

// originPatterns turns configured origins into host patterns for the
// websocket handshake check.
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins)+2)
	for _, origin := range origins {
		if u, err := url.Parse(origin); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
		}
	}
	return append(patterns, "localhost:*", "127.0.0.1:*")
}
