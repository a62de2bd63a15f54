// Package monitor provides a small WebSocket server that streams compile
// progress events to attached clients, so a lab frontend can watch long
// script builds and uploads.
package monitor

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"ahmes-go/pkg/errors"
	"ahmes-go/pkg/log"
)

// Event types published by the compiler pipeline.
const (
	EventCompileStart = "compile_start"
	EventScriptDone   = "script_done"
	EventJobDone      = "job_done"
	EventMultiJobDone = "multijob_done"
	EventUpload       = "upload_progress"
	EventError        = "error"
)

// Event is a single progress notification.
type Event struct {
	Type      string    `json:"type"`
	Name      string    `json:"name,omitempty"`
	File      string    `json:"file,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Server broadcasts compile progress events over WebSocket.
type Server struct {
	addr       string
	logger     *log.Logger
	httpServer *http.Server

	upgrader websocket.Upgrader
	clients  map[int64]*wsClient
	clientMu sync.RWMutex
	nextID   int64

	history   []Event
	historyMu sync.RWMutex

	running   atomic.Bool
	startTime time.Time
}

// maxHistory bounds the event replay buffer sent to new clients.
const maxHistory = 256

// New creates a monitor server listening on addr (e.g., ":7130").
func New(addr string) *Server {
	s := &Server{
		addr:      addr,
		logger:    log.Default().WithPrefix("monitor"),
		clients:   make(map[int64]*wsClient),
		startTime: time.Now(),
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true // Local tooling, accept all origins
		},
	}
	return s
}

// Start runs the HTTP server. It blocks until the server stops.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/websocket", s.handleWebSocket)
	mux.HandleFunc("/status", s.handleStatus)

	s.httpServer = &http.Server{
		Addr:    s.addr,
		Handler: s.corsMiddleware(mux),
	}

	s.running.Store(true)
	s.logger.Info("monitor server starting on %s", s.addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, errors.ErrMonitor, "monitor server failed")
	}
	return nil
}

// Stop shuts the server down and disconnects all clients.
func (s *Server) Stop() error {
	s.running.Store(false)

	s.clientMu.Lock()
	for _, c := range s.clients {
		c.close()
	}
	s.clients = make(map[int64]*wsClient)
	s.clientMu.Unlock()

	if s.httpServer != nil {
		return s.httpServer.Close()
	}
	return nil
}

// Publish records an event and broadcasts it to all connected clients.
func (s *Server) Publish(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	s.historyMu.Lock()
	s.history = append(s.history, ev)
	if len(s.history) > maxHistory {
		s.history = s.history[len(s.history)-maxHistory:]
	}
	s.historyMu.Unlock()

	s.clientMu.RLock()
	defer s.clientMu.RUnlock()
	for _, c := range s.clients {
		c.send(ev)
	}
}

// wsClient is one attached WebSocket consumer.
type wsClient struct {
	id     int64
	conn   *websocket.Conn
	server *Server
	sendCh chan Event
	done   chan struct{}
	mu     sync.Mutex
}

func (s *Server) newClient(conn *websocket.Conn) *wsClient {
	id := atomic.AddInt64(&s.nextID, 1)
	return &wsClient{
		id:     id,
		conn:   conn,
		server: s,
		sendCh: make(chan Event, 64),
		done:   make(chan struct{}),
	}
}

func (c *wsClient) send(ev Event) {
	select {
	case c.sendCh <- ev:
	case <-c.done:
	default:
		// Channel full, drop event
		c.server.logger.Warn("dropping event to client %d (channel full)", c.id)
	}
}

func (c *wsClient) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.done:
		return // Already closed
	default:
		close(c.done)
	}

	c.conn.Close()
}

// readPump drains incoming messages so pings and close frames are handled.
func (c *wsClient) readPump() {
	defer func() {
		c.server.removeClient(c)
		c.close()
	}()

	c.conn.SetReadLimit(64 * 1024)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.server.logger.Warn("websocket read error: %v", err)
			}
			return
		}
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case ev := <-c.sendCh:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteJSON(ev); err != nil {
				c.server.logger.Warn("websocket write error: %v", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}

// handleWebSocket upgrades the connection and replays recent history.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade error: %v", err)
		return
	}

	client := s.newClient(conn)

	s.clientMu.Lock()
	s.clients[client.id] = client
	s.clientMu.Unlock()

	s.logger.Info("client %d connected", client.id)

	go client.writePump()

	s.historyMu.RLock()
	for _, ev := range s.history {
		client.send(ev)
	}
	s.historyMu.RUnlock()

	client.readPump() // Blocks until connection closes
}

func (s *Server) removeClient(c *wsClient) {
	s.clientMu.Lock()
	delete(s.clients, c.id)
	s.clientMu.Unlock()

	s.logger.Info("client %d disconnected", c.id)
}

// handleStatus reports server uptime and event counts.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.historyMu.RLock()
	count := len(s.history)
	var last *Event
	if count > 0 {
		ev := s.history[count-1]
		last = &ev
	}
	s.historyMu.RUnlock()

	s.clientMu.RLock()
	clientCount := len(s.clients)
	s.clientMu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"running":    s.running.Load(),
		"uptime":     time.Since(s.startTime).Seconds(),
		"clients":    clientCount,
		"events":     count,
		"last_event": last,
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
