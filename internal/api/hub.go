package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	diag "github.com/LandynMoreno/zolo/internal/diagnostics"
)

const writeWait = 200 * time.Millisecond

type frameMsg struct {
	T       int64  `json:"t"`
	FrameID uint64 `json:"frame_id"`
	RGB     []byte `json:"rgb"`
}

// Hub fans flushed frames and diagnostics out to websocket clients. Publish
// calls never block: when the queue is full the message is dropped.
type Hub struct {
	log zerolog.Logger
	up  websocket.Upgrader

	frames chan frameMsg
	diags  chan diag.Diagnostic

	mu          sync.RWMutex
	clients     map[*websocket.Conn]bool
	diagClients map[*websocket.Conn]bool

	// frame bookkeeping; never held across a socket write
	fmu     sync.Mutex
	frameID uint64
	last    []byte
	dropped uint64
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		log:         log.With().Str("component", "hub").Logger(),
		up:          websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		frames:      make(chan frameMsg, 8),
		diags:       make(chan diag.Diagnostic, 32),
		clients:     map[*websocket.Conn]bool{},
		diagClients: map[*websocket.Conn]bool{},
	}
}

// PublishFrame queues a flushed frame. It is safe to call from the surface
// observer.
func (h *Hub) PublishFrame(rgb []byte) {
	h.fmu.Lock()
	defer h.fmu.Unlock()
	h.frameID++
	h.last = rgb
	select {
	case h.frames <- frameMsg{T: time.Now().UnixNano(), FrameID: h.frameID, RGB: rgb}:
	default:
		h.dropped++
	}
}

func (h *Hub) PushDiag(d diag.Diagnostic) {
	select {
	case h.diags <- d:
	default:
		h.log.Debug().Str("code", d.Code).Msg("diagnostic dropped")
	}
}

// LastFrame returns the most recent frame and its id.
func (h *Hub) LastFrame() ([]byte, uint64) {
	h.fmu.Lock()
	defer h.fmu.Unlock()
	return append([]byte(nil), h.last...), h.frameID
}

// Dropped counts frames discarded because the queue was full.
func (h *Hub) Dropped() uint64 {
	h.fmu.Lock()
	defer h.fmu.Unlock()
	return h.dropped
}

func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients) + len(h.diagClients)
}

// Run writes queued messages to clients until ctx is done, then closes
// every connection. It is the only goroutine writing to client sockets.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case m := <-h.frames:
			h.broadcast(h.clients, m)
		case d := <-h.diags:
			h.broadcast(h.diagClients, d)
		}
	}
}

func (h *Hub) broadcast(set map[*websocket.Conn]bool, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		h.log.Error().Err(err).Msg("encode ws message")
		return
	}
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(set))
	for c := range set {
		conns = append(conns, c)
	}
	h.mu.RUnlock()
	for _, c := range conns {
		c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			h.log.Debug().Err(err).Msg("ws write")
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.Close()
	}
	for c := range h.diagClients {
		c.Close()
	}
}

func (h *Hub) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.clients)
}

func (h *Hub) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.diagClients)
}

func (h *Hub) serve(w http.ResponseWriter, r *http.Request, set map[*websocket.Conn]bool) {
	conn, err := h.up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.mu.Lock()
	set[conn] = true
	h.mu.Unlock()

	go func() {
		defer func() {
			h.mu.Lock()
			delete(set, conn)
			h.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
