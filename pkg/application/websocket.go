package application

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/pdnportal/portal/pkg/composables"
)

const (
	ChannelAuthenticated string = "authenticated"
)

// UserChannel names the private channel for a single user's connections.
func UserChannel(userID uuid.UUID) string {
	return fmt.Sprintf("user/%s", userID)
}

// Huber fans messages out to connected websocket clients grouped by channel.
type Huber interface {
	http.Handler
	Broadcast(channel string, message []byte)
	ConnectionCount(channel string) int
}

type HuberOptions struct {
	Logger      *logrus.Logger
	CheckOrigin func(r *http.Request) bool
}

func NewHub(opts *HuberOptions) Huber {
	return &huber{
		logger: opts.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     opts.CheckOrigin,
		},
		channels: make(map[string]map[*wsConnection]struct{}),
	}
}

type huber struct {
	mu       sync.RWMutex
	logger   *logrus.Logger
	upgrader websocket.Upgrader
	channels map[string]map[*wsConnection]struct{}
}

type wsConnection struct {
	conn     *websocket.Conn
	writeMu  sync.Mutex
	channels []string
}

func (c *wsConnection) send(message []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, message)
}

func (h *huber) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Error("failed to upgrade websocket connection")
		return
	}

	wsConn := &wsConnection{conn: conn}
	// Unauthenticated connections stay open but receive no private messages.
	if userID, err := composables.UseUserID(r.Context()); err == nil {
		wsConn.channels = []string{ChannelAuthenticated, UserChannel(userID)}
	}

	h.join(wsConn)
	go h.readLoop(wsConn)
}

func (h *huber) join(c *wsConnection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, channel := range c.channels {
		if h.channels[channel] == nil {
			h.channels[channel] = make(map[*wsConnection]struct{})
		}
		h.channels[channel][c] = struct{}{}
	}
}

func (h *huber) leave(c *wsConnection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, channel := range c.channels {
		delete(h.channels[channel], c)
		if len(h.channels[channel]) == 0 {
			delete(h.channels, channel)
		}
	}
}

// readLoop drains inbound frames so pings are answered and closes are seen.
func (h *huber) readLoop(c *wsConnection) {
	defer func() {
		h.leave(c)
		_ = c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *huber) Broadcast(channel string, message []byte) {
	h.mu.RLock()
	connections := make([]*wsConnection, 0, len(h.channels[channel]))
	for c := range h.channels[channel] {
		connections = append(connections, c)
	}
	h.mu.RUnlock()

	for _, c := range connections {
		if err := c.send(message); err != nil {
			h.logger.WithError(err).Warn("failed to push websocket message")
		}
	}
}

func (h *huber) ConnectionCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}
