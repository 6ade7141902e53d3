// internal/server/handlers/websocket.go

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"

	"playerpulse/internal/domain/sentiment"
)

// EventSubscriber is the subset of *nats.Conn used to follow analysis events
type EventSubscriber interface {
	Subscribe(subj string, cb nats.MsgHandler) (*nats.Subscription, error)
}

// WebSocketClient represents a connected WebSocket client
type WebSocketClient struct {
	conn         *websocket.Conn
	send         chan []byte
	done         chan struct{}
	closeOnce    sync.Once
	player       string
	subscription *nats.Subscription
	config       WebSocketConfig
	logger       *slog.Logger
}

// WebSocketConfig contains configuration for WebSocket connections
type WebSocketConfig struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer
	PongWait time.Duration

	// Send pings to peer with this period
	PingPeriod time.Duration

	// Maximum message size allowed from peer
	MaxMessageSize int64
}

// DefaultWebSocketConfig returns the default WebSocket configuration
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     (60 * time.Second * 9) / 10,
		MaxMessageSize: 1024 * 1024, // 1MB
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// AnalysisWebSocketHandler streams completed analyses published on subject.
// The optional "player" query parameter limits the feed to one canonical name.
func AnalysisWebSocketHandler(events EventSubscriber, subject string, logger *slog.Logger) http.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("Failed to upgrade to WebSocket", slog.Any("error", err))
			return
		}

		client := &WebSocketClient{
			conn:   conn,
			send:   make(chan []byte, 256),
			done:   make(chan struct{}),
			player: strings.TrimSpace(r.URL.Query().Get("player")),
			config: DefaultWebSocketConfig(),
			logger: logger.With(slog.String("remote", r.RemoteAddr)),
		}

		sub, err := events.Subscribe(subject, client.relay)
		if err != nil {
			client.logger.Error("Failed to subscribe to analysis events", slog.Any("error", err))
			conn.Close()
			return
		}
		client.subscription = sub

		go client.writePump()
		go client.readPump()

		client.logger.Info("New WebSocket connection", slog.String("player", client.player))
	}
}

// relay forwards an analysis event to the client, dropping it if the client is slow
func (c *WebSocketClient) relay(msg *nats.Msg) {
	if c.player != "" {
		var event sentiment.AnalysisEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			c.logger.Warn("Failed to decode analysis event", slog.Any("error", err))
			return
		}
		if !strings.EqualFold(event.Player, c.player) {
			return
		}
	}

	select {
	case <-c.done:
	case c.send <- msg.Data:
	default:
		c.logger.Warn("Dropping analysis event for slow client")
	}
}

// readPump drains the connection so control frames are processed.
// The feed is read-only; client messages are discarded.
func (c *WebSocketClient) readPump() {
	defer c.closeConnection()

	c.conn.SetReadLimit(c.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("WebSocket error", slog.Any("error", err))
			}
			return
		}
	}
}

// writePump pumps events from the send channel to the WebSocket connection
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(c.config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.closeConnection()
	}()

	for {
		select {
		case <-c.done:
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// closeConnection unsubscribes from NATS and closes the WebSocket connection
func (c *WebSocketClient) closeConnection() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.subscription != nil {
			c.subscription.Unsubscribe()
		}
		c.conn.Close()
		c.logger.Info("WebSocket connection closed")
	})
}
