package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/reforgehelper/reforge/internal/bot"
	"github.com/reforgehelper/reforge/internal/event"
)

const (
	writeWait     = 5 * time.Second
	clientBacklog = 16
)

type StatusProvider interface {
	Status() bot.Status
}

// Message is what websocket clients receive. Status messages carry Status, event messages carry
// the event fields.
type Message struct {
	Type      string      `json:"type"`
	Status    *bot.Status `json:"status,omitempty"`
	Event     string      `json:"event,omitempty"`
	Message   string      `json:"message,omitempty"`
	SessionID string      `json:"sessionID,omitempty"`
	Time      time.Time   `json:"time"`
}

// Server exposes the controller status over HTTP and pushes updates to websocket clients.
type Server struct {
	logger   *slog.Logger
	provider StatusProvider
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]chan []byte
	closed  bool
	wg      sync.WaitGroup
}

func New(logger *slog.Logger, provider StatusProvider) *Server {
	return &Server{
		logger:   logger,
		provider: provider,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients: make(map[*websocket.Conn]chan []byte),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

// Listen serves on addr until ctx is done.
func (s *Server) Listen(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Status server listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), writeWait)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		s.Close()
		<-errCh
		return err
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.provider.Status()); err != nil {
		s.logger.Debug("Failed writing status", slog.Any("error", err))
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection to WebSocket", slog.Any("error", err))
		return
	}

	send := make(chan []byte, clientBacklog)
	if b, err := s.statusMessage(); err == nil {
		send <- b
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Close()
		return
	}
	s.clients[conn] = send
	s.wg.Add(2)
	s.mu.Unlock()

	go s.writePump(conn, send)
	go s.readPump(conn)
}

// readPump discards client messages and unregisters the client once the connection fails.
func (s *Server) readPump(conn *websocket.Conn) {
	defer s.wg.Done()
	defer s.remove(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) writePump(conn *websocket.Conn, send <-chan []byte) {
	defer s.wg.Done()
	for b := range send {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			s.logger.Debug("WebSocket write failed", slog.Any("error", err))
			conn.Close()
			for range send {
			}
			return
		}
	}
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}

func (s *Server) remove(conn *websocket.Conn) {
	s.mu.Lock()
	send, ok := s.clients[conn]
	delete(s.clients, conn)
	s.mu.Unlock()
	if ok {
		close(send)
	}
	conn.Close()
}

// Close disconnects every client and waits for their goroutines.
func (s *Server) Close() {
	s.mu.Lock()
	s.closed = true
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for c := range s.clients {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		s.remove(c)
	}
	s.wg.Wait()
}

func (s *Server) broadcast(b []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, send := range s.clients {
		select {
		case send <- b:
		default:
			s.logger.Debug("WebSocket client is behind, dropping message")
		}
	}
}

func (s *Server) statusMessage() ([]byte, error) {
	st := s.provider.Status()
	return json.Marshal(Message{Type: "status", Status: &st, Time: time.Now()})
}

// HandleEvent is an event.Handler that forwards e and the fresh status to every client.
func (s *Server) HandleEvent(_ context.Context, e event.Event) error {
	b, err := json.Marshal(Message{
		Type:      "event",
		Event:     eventName(e),
		Message:   e.Message(),
		SessionID: e.SessionID(),
		Time:      e.OccurredAt(),
	})
	if err != nil {
		return err
	}
	s.broadcast(b)

	st, err := s.statusMessage()
	if err != nil {
		return err
	}
	s.broadcast(st)
	return nil
}

func eventName(e event.Event) string {
	switch e.(type) {
	case event.SessionStartedEvent:
		return "sessionStarted"
	case event.TripletCompletedEvent:
		return "tripletCompleted"
	case event.SessionFinishedEvent:
		return "sessionFinished"
	case event.BenchFoundEvent:
		return "benchFound"
	case event.BenchLostEvent:
		return "benchLost"
	}
	return "message"
}
