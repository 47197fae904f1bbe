package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// SSEClient represents a connected SSE client
type SSEClient struct {
	ID   string
	Chan chan SSEMessage
	Done chan struct{}
}

// SSEMessage represents a message to be sent to SSE clients
type SSEMessage struct {
	Event string `json:"event"`
	Data  string `json:"data"`
	ID    string `json:"id,omitempty"`
}

// EventStreamHandler pushes domain events to browsers over Server-Sent Events.
// It is registered on the event bus as a handler for every event type.
type EventStreamHandler struct {
	BaseHandler
	logger     *zap.Logger
	clients    sync.Map // map[string]*SSEClient
	ctx        context.Context
	cancel     context.CancelFunc
	heartbeat  time.Duration
	bufferSize int
	maxClients int
	started    bool
	startMu    sync.Mutex
}

// EventStreamOption is a functional option for configuring the handler
type EventStreamOption func(*EventStreamHandler)

// WithSSELogger sets the logger for the handler
func WithSSELogger(logger *zap.Logger) EventStreamOption {
	return func(h *EventStreamHandler) {
		h.logger = logger
	}
}

// WithSSEHeartbeat sets the heartbeat interval
func WithSSEHeartbeat(interval time.Duration) EventStreamOption {
	return func(h *EventStreamHandler) {
		if interval > 0 {
			h.heartbeat = interval
		}
	}
}

// WithSSEClientBuffer sets how many messages may queue per client before new ones are dropped
func WithSSEClientBuffer(size int) EventStreamOption {
	return func(h *EventStreamHandler) {
		if size > 0 {
			h.bufferSize = size
		}
	}
}

// WithSSEMaxClients sets the maximum number of concurrent SSE clients
func WithSSEMaxClients(max int) EventStreamOption {
	return func(h *EventStreamHandler) {
		h.maxClients = max
	}
}

// NewEventStreamHandler creates a new SSE handler
func NewEventStreamHandler(opts ...EventStreamOption) *EventStreamHandler {
	ctx, cancel := context.WithCancel(context.Background())
	h := &EventStreamHandler{
		logger:     zap.NewNop(),
		ctx:        ctx,
		cancel:     cancel,
		heartbeat:  30 * time.Second,
		bufferSize: 100,
		maxClients: 1000,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Start begins sending heartbeats
func (h *EventStreamHandler) Start() error {
	h.startMu.Lock()
	defer h.startMu.Unlock()

	if h.started {
		return fmt.Errorf("SSE handler already started")
	}

	go h.sendHeartbeats()
	h.started = true
	h.logger.Info("event stream started")
	return nil
}

// Stop disconnects every client
func (h *EventStreamHandler) Stop() {
	h.cancel()
	h.logger.Info("event stream stopped")
}

// Handle implements shared.EventHandler by broadcasting the event
func (h *EventStreamHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", event.EventType(), err)
	}

	h.broadcast(SSEMessage{
		Event: event.EventType(),
		Data:  string(data),
		ID:    event.EventID().String(),
	})
	return nil
}

// EventTypes implements shared.EventHandler. The stream carries every event.
func (h *EventStreamHandler) EventTypes() []string {
	return nil
}

// broadcast never blocks; a client whose buffer is full misses the message
func (h *EventStreamHandler) broadcast(msg SSEMessage) {
	h.clients.Range(func(_, value any) bool {
		client, ok := value.(*SSEClient)
		if !ok {
			return true
		}

		select {
		case client.Chan <- msg:
		case <-client.Done:
		default:
			h.logger.Warn("client channel full, dropping message",
				zap.String("client_id", client.ID),
				zap.String("event", msg.Event))
		}
		return true
	})
}

func (h *EventStreamHandler) sendHeartbeats() {
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return
		case <-ticker.C:
			h.broadcast(SSEMessage{
				Event: "heartbeat",
				Data:  fmt.Sprintf(`{"timestamp":%d}`, time.Now().Unix()),
			})
		}
	}
}

// Stream holds the connection open and writes events as they arrive
// @Router /events [get]
func (h *EventStreamHandler) Stream(c *gin.Context) {
	if h.maxClients > 0 && h.ClientCount() >= h.maxClients {
		h.Error(c, http.StatusServiceUnavailable, "ERR_MAX_CONNECTIONS", "Maximum number of SSE connections reached")
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	client := &SSEClient{
		ID:   uuid.New().String(),
		Chan: make(chan SSEMessage, h.bufferSize),
		Done: make(chan struct{}),
	}

	h.clients.Store(client.ID, client)
	defer func() {
		h.clients.Delete(client.ID)
		close(client.Done)
	}()

	h.logger.Info("SSE client connected", zap.String("client_id", client.ID))

	h.sendEvent(c.Writer, SSEMessage{
		Event: "connected",
		Data:  fmt.Sprintf(`{"client_id":%q,"timestamp":%d}`, client.ID, time.Now().Unix()),
	})
	c.Writer.Flush()

	reqCtx := c.Request.Context()
	for {
		select {
		case <-reqCtx.Done():
			h.logger.Info("SSE client disconnected", zap.String("client_id", client.ID))
			return
		case <-h.ctx.Done():
			return
		case msg := <-client.Chan:
			h.sendEvent(c.Writer, msg)
			c.Writer.Flush()
		}
	}
}

func (h *EventStreamHandler) sendEvent(w io.Writer, msg SSEMessage) {
	if msg.Event != "" {
		fmt.Fprintf(w, "event: %s\n", msg.Event)
	}
	if msg.ID != "" {
		fmt.Fprintf(w, "id: %s\n", msg.ID)
	}
	fmt.Fprintf(w, "data: %s\n\n", msg.Data)
}

// ClientCount returns the number of connected SSE clients
func (h *EventStreamHandler) ClientCount() int {
	count := 0
	h.clients.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

var _ shared.EventHandler = (*EventStreamHandler)(nil)
