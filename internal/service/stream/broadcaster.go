package stream

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"FraudGuard/internal/domain/models"
	"FraudGuard/pkg/logger"
)

// AlertBroadcaster fans triggered risk assessments out to connected
// websocket subscribers. Slow or dead clients are dropped on write
// failure rather than allowed to stall the detect path.
type AlertBroadcaster struct {
	clients  map[*websocket.Conn]struct{}
	mu       sync.Mutex
	upgrader websocket.Upgrader
	logger   *logger.Logger
}

// NewAlertBroadcaster creates an empty broadcaster.
func NewAlertBroadcaster(log *logger.Logger) *AlertBroadcaster {
	return &AlertBroadcaster{
		clients:  make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		logger:   log,
	}
}

// Broadcast sends the assessment to every connected subscriber.
func (b *AlertBroadcaster) Broadcast(a *models.RiskAssessment) {
	msg, err := json.Marshal(a)
	if err != nil {
		b.logger.Error("marshal alert for broadcast", logger.Error(err))
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for c := range b.clients {
		if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
			b.logger.Warn("drop websocket subscriber", logger.Error(err))
			_ = c.Close()
			delete(b.clients, c)
		}
	}
}

// Subscribers returns the current subscriber count.
func (b *AlertBroadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

// HandleWS upgrades the request and registers the connection. The read
// loop exists only to detect the client going away.
func (b *AlertBroadcaster) HandleWS(c echo.Context) error {
	conn, err := b.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		b.logger.Warn("websocket upgrade", logger.Error(err))
		return err
	}

	b.mu.Lock()
	b.clients[conn] = struct{}{}
	b.mu.Unlock()

	go func() {
		defer func() {
			b.mu.Lock()
			delete(b.clients, conn)
			b.mu.Unlock()
			_ = conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return nil
}

// Close disconnects all subscribers.
func (b *AlertBroadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for c := range b.clients {
		_ = c.Close()
		delete(b.clients, c)
	}
}
