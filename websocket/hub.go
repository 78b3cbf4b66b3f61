package websocket

import (
	"sync"
	"time"

	"github.com/glisignoli/ai-yt-dlp-web/logging"
	"github.com/glisignoli/ai-yt-dlp-web/types"
)

// Hub fans job progress out to WebSocket clients. Clients subscribe either to
// one job id or to "all" for every update.
type Hub interface {
	Run()
	BroadcastProgress(jobID, msgType, status, title, message string, progress float64)
	RegisterClient(client *Client)
	UnregisterClient(client *Client)
}

// AllJobs is the subscription key for clients that want every update
const AllJobs = "all"

type hub struct {
	// Registered clients keyed by job id
	clients map[string]map[*Client]bool

	broadcast  chan types.ProgressMessage
	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex
}

// NewHub creates a new progress hub
func NewHub() Hub {
	return &hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan types.ProgressMessage, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's event loop
func (h *hub) Run() {
	logger := logging.Component("websocket")

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.jobID] == nil {
				h.clients[client.jobID] = make(map[*Client]bool)
			}
			h.clients[client.jobID][client] = true
			h.mu.Unlock()
			logger.Debug().Str("job", client.jobID).Msg("WebSocket client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.jobID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.clients, client.jobID)
					}
				}
			}
			h.mu.Unlock()
			logger.Debug().Str("job", client.jobID).Msg("WebSocket client disconnected")

		case message := <-h.broadcast:
			h.mu.Lock()
			h.deliver(message.JobID, message)
			h.deliver(AllJobs, message)
			h.mu.Unlock()
		}
	}
}

// deliver sends a message to the subscribers of one key, dropping clients
// whose send buffers are full and pruning the key once no subscriber remains
func (h *hub) deliver(key string, message types.ProgressMessage) {
	clients, ok := h.clients[key]
	if !ok {
		return
	}
	for client := range clients {
		select {
		case client.send <- message:
		default:
			close(client.send)
			delete(clients, client)
		}
	}
	if len(clients) == 0 {
		delete(h.clients, key)
	}
}

// BroadcastProgress queues a progress message for delivery. It never blocks
// the caller; under backpressure the message is dropped.
func (h *hub) BroadcastProgress(jobID, msgType, status, title, message string, progress float64) {
	progressMsg := types.ProgressMessage{
		JobID:     jobID,
		Type:      msgType,
		Status:    status,
		Title:     title,
		Message:   message,
		Progress:  progress,
		Timestamp: time.Now(),
	}

	select {
	case h.broadcast <- progressMsg:
	default:
		logger := logging.Component("websocket")
		logger.Warn().Str("job", jobID).Msg("Broadcast channel full, dropping message")
	}
}

// RegisterClient registers a new client with the hub
func (h *hub) RegisterClient(client *Client) {
	h.register <- client
}

// UnregisterClient unregisters a client from the hub
func (h *hub) UnregisterClient(client *Client) {
	h.unregister <- client
}
