package http

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"camlytics/internal/model"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// CORS is already wide open on the REST surface.
		return true
	},
}

type liveMessage struct {
	Type string           `json:"type"`
	Data *model.Detection `json:"data"`
}

type registration struct {
	userID uuid.UUID
	conn   *websocket.Conn
}

type notice struct {
	userID  uuid.UUID
	payload []byte
}

// Hub fans freshly stored detections out to each owner's live websocket
// connections. The client map and every connection write are owned by the
// single Run goroutine; a websocket connection tolerates at most one
// concurrent writer, so request goroutines only ever hand off through
// channels.
type Hub struct {
	clients    map[uuid.UUID]map[*websocket.Conn]bool
	register   chan registration
	unregister chan registration
	notify     chan notice
	log        zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*websocket.Conn]bool),
		register:   make(chan registration),
		unregister: make(chan registration),
		notify:     make(chan notice),
		log:        log,
	}
}

// Run loops forever draining registrations and notifications. Start it
// once, before serving traffic.
func (h *Hub) Run() {
	for {
		select {
		case r := <-h.register:
			if h.clients[r.userID] == nil {
				h.clients[r.userID] = make(map[*websocket.Conn]bool)
			}
			h.clients[r.userID][r.conn] = true
			h.log.Debug().Str("user_id", r.userID.String()).Msg("live feed client connected")

		case r := <-h.unregister:
			h.drop(r.userID, r.conn)

		case n := <-h.notify:
			for conn := range h.clients[n.userID] {
				if err := conn.WriteMessage(websocket.TextMessage, n.payload); err != nil {
					h.log.Warn().Err(err).Msg("dropping dead live feed client")
					h.drop(n.userID, conn)
				}
			}
		}
	}
}

// drop is only ever called from Run.
func (h *Hub) drop(userID uuid.UUID, conn *websocket.Conn) {
	conns, ok := h.clients[userID]
	if !ok {
		return
	}
	if conns[conn] {
		delete(conns, conn)
		conn.Close()
	}
	if len(conns) == 0 {
		delete(h.clients, userID)
	}
}

// Serve upgrades the request and keeps the connection registered until the
// client goes away.
func (h *Hub) Serve(c *gin.Context, userID uuid.UUID) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	h.register <- registration{userID: userID, conn: conn}
	defer func() {
		h.unregister <- registration{userID: userID, conn: conn}
	}()

	// Drain control frames; any read error means the client is gone.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// NotifyDetection implements service.Notifier. Safe to call from any
// number of request goroutines concurrently.
func (h *Hub) NotifyDetection(userID uuid.UUID, detection *model.Detection) {
	message, err := json.Marshal(liveMessage{Type: "detection", Data: detection})
	if err != nil {
		h.log.Error().Err(err).Msg("failed to marshal live message")
		return
	}

	h.notify <- notice{userID: userID, payload: message}
}
