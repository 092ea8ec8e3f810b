package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	qrcode "github.com/skip2/go-qrcode"

	"trivialan/internal/config"
	"trivialan/internal/game/room"
	"trivialan/internal/logger"
	"trivialan/internal/question"
)

// Server ties the HTTP listener, the websocket clients and the room
// registry together.
type Server struct {
	config *config.Config
	rooms  *room.Manager
	pool   *question.Pool

	clients   map[string]*Client
	clientsMu sync.RWMutex
	handler   *Handler

	rateLimiter    *RateLimiter
	originChecker  *OriginChecker
	messageLimiter *MessageRateLimiter

	maxConnections int
	semaphore      chan struct{} // caps concurrent websocket connections

	httpServer *http.Server
	upgrader   websocket.Upgrader
}

// New builds a server around an already loaded question pool.
func New(cfg *config.Config, pool *question.Pool) *Server {
	s := &Server{
		config:         cfg,
		rooms:          room.NewManager(&cfg.Game, pool),
		pool:           pool,
		clients:        make(map[string]*Client),
		rateLimiter:    NewRateLimiter(cfg.Security.ConnectionsPerSecond, time.Minute),
		originChecker:  NewOriginChecker(cfg.Security.AllowedOrigins),
		messageLimiter: NewMessageRateLimiter(cfg.Security.MessagesPerSecond),
		maxConnections: cfg.Security.MaxConnections,
		semaphore:      make(chan struct{}, cfg.Security.MaxConnections),
	}
	s.handler = NewHandler(s)
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.originChecker.Check,
	}
	return s
}

// Rooms exposes the room registry.
func (s *Server) Rooms() *room.Manager {
	return s.rooms
}

// Run starts serving and blocks until the listener fails or Shutdown is
// called.
func (s *Server) Run() error {
	router := httprouter.New()
	router.HandlerFunc(http.MethodGet, "/ws", s.handleWebSocket)
	router.HandlerFunc(http.MethodGet, "/health", s.handleHealth)
	router.GET("/qr/:room", s.handleQR)
	router.ServeFiles("/static/*filepath", http.Dir(s.config.Files.StaticDir))
	router.ServeFiles("/images/*filepath", http.Dir(s.config.Files.ImagesDir))
	router.HandlerFunc(http.MethodGet, "/", s.handleIndex)

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go s.monitorStats()

	logger.LogInfo("listening on %s (%d questions loaded)", addr, s.pool.Len())
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown closes the listener and every client connection.
func (s *Server) Shutdown(ctx context.Context) error {
	s.clientsMu.Lock()
	for _, c := range s.clients {
		c.Close()
	}
	s.clientsMu.Unlock()

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, s.config.Files.StaticDir+"/index.html")
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	clientIP := GetClientIP(r)

	select {
	case s.semaphore <- struct{}{}:
	default:
		logger.LogInfo("connection limit reached (%d), rejecting %s", s.maxConnections, clientIP)
		http.Error(w, "Server Full", http.StatusServiceUnavailable)
		return
	}

	if !s.rateLimiter.Allow(clientIP) {
		<-s.semaphore
		http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		<-s.semaphore
		logger.LogError("websocket upgrade failed for %s: %v", clientIP, err)
		return
	}

	client := NewClient(s, conn)
	client.IP = clientIP
	s.registerClient(client)
	logger.LogInfo("client %s connected from %s", client.ID, clientIP)

	go client.WritePump()
	go func() {
		defer func() { <-s.semaphore }()
		client.ReadPump()
	}()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"rooms":     s.rooms.Count(),
		"clients":   s.clientCount(),
		"questions": s.pool.Len(),
	})
}

// handleQR renders a QR code pointing players' phones at the room.
func (s *Server) handleQR(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	roomID := ps.ByName("room")

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	joinURL := fmt.Sprintf("%s://%s/?room=%s", scheme, r.Host, roomID)

	png, err := qrcode.Encode(joinURL, qrcode.Medium, 256)
	if err != nil {
		http.Error(w, "QR generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(png)
}

func (s *Server) registerClient(c *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[c.ID] = c
}

func (s *Server) unregisterClient(c *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	if _, ok := s.clients[c.ID]; ok {
		delete(s.clients, c.ID)
		logger.LogInfo("client %s disconnected", c.ID)
	}
}

func (s *Server) clientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// monitorStats periodically logs connection and memory numbers.
func (s *Server) monitorStats() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		logger.LogInfo("stats: %d clients, %d rooms, %d goroutines, %dMB heap",
			s.clientCount(), s.rooms.Count(), runtime.NumGoroutine(), m.HeapAlloc/1024/1024)
	}
}
