package broadcast

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/fleetworks/asset-sentinel/internal/models"
)

// Message is the tagged envelope pushed to realtime subscribers.
type Message struct {
	Type    string `json:"type"` // alert | alert_cleared
	Payload any    `json:"payload"`
}

// ClearedPayload is the body of an alert_cleared message.
type ClearedPayload struct {
	Key     string `json:"key"`
	Message string `json:"message"`
}

// Hub maintains the set of connected websocket clients and fans alert
// lifecycle messages out to them. Slow clients whose send buffer fills are
// evicted rather than allowed to stall the broadcast.
type Hub struct {
	logger     *slog.Logger
	clients    map[*Client]struct{}
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	closeOnce  sync.Once
}

// NewHub constructs a Hub; call Run in a goroutine to start it.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger:     logger,
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until Close is called.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			return

		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.logger.Debug("websocket client registered", slog.Int("clients", len(h.clients)))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Send buffer full; drop the client instead of blocking.
					close(client.send)
					delete(h.clients, client)
					h.logger.Debug("websocket client evicted, send buffer full")
				}
			}
		}
	}
}

// Close stops the hub loop and disconnects all clients.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// PublishAlert broadcasts a triggered alert.
func (h *Hub) PublishAlert(alert models.Alert) {
	h.publish(Message{Type: "alert", Payload: alert})
}

// PublishAlertCleared broadcasts an alert_cleared event.
func (h *Hub) PublishAlertCleared(key, message string) {
	h.publish(Message{Type: "alert_cleared", Payload: ClearedPayload{Key: key, Message: message}})
}

func (h *Hub) publish(msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Warn("could not marshal broadcast message", slog.Any("error", err))
		return
	}
	select {
	case h.broadcast <- payload:
	case <-h.done:
	default:
		h.logger.Warn("broadcast channel full, dropping message", slog.String("type", msg.Type))
	}
}

// NoopPublisher drops every message; used when realtime broadcast is
// disabled and in tests.
type NoopPublisher struct{}

// PublishAlert discards the alert.
func (NoopPublisher) PublishAlert(models.Alert) {}

// PublishAlertCleared discards the event.
func (NoopPublisher) PublishAlertCleared(string, string) {}
