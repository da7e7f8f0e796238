package realtime

import (
	"context"
	"sync"

	sonic "github.com/bytedance/sonic"
	"github.com/valyala/bytebufferpool"

	"github.com/mwhitacre/leaguelive/internal/platform/logging"
)

const defaultSendBuffer = 16

// Hub routes encoded events to exactly the connections that joined a given
// room. It holds no domain state. Membership is partitioned per room: the
// outer lock only guards the room and connection maps, so one league's
// fan-out never blocks another's.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[RoomID]*room
	conns  map[string]*conn
	closed bool
	logger *logging.Logger
}

type room struct {
	mu      sync.Mutex
	members map[string]*conn
}

type conn struct {
	id string

	mu     sync.Mutex
	out    chan []byte
	closed bool
}

// send is non-blocking; false means the buffer was full and the caller
// should drop the connection. Sending to an already closed connection is a
// no-op so late fan-outs cannot panic.
func (c *conn) send(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return true
	}
	select {
	case c.out <- payload:
		return true
	default:
		return false
	}
}

func (c *conn) close() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.out)
	}
	c.mu.Unlock()
}

func NewHub(logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Hub{
		rooms:  make(map[RoomID]*room),
		conns:  make(map[string]*conn),
		logger: logger,
	}
}

// Register adds a connection and returns its outbound channel. The channel
// is closed when the connection is unregistered, the hub shuts down, or the
// connection falls too far behind.
func (h *Hub) Register(connID string) (<-chan []byte, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, false
	}
	if _, exists := h.conns[connID]; exists {
		return nil, false
	}

	c := &conn{id: connID, out: make(chan []byte, defaultSendBuffer)}
	h.conns[connID] = c
	return c.out, true
}

// Unregister removes the connection from every room and closes its channel.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	c := h.conns[connID]
	delete(h.conns, connID)
	rooms := make([]*room, 0, len(h.rooms))
	for _, r := range h.rooms {
		rooms = append(rooms, r)
	}
	h.mu.Unlock()

	if c == nil {
		return
	}
	for _, r := range rooms {
		r.mu.Lock()
		delete(r.members, connID)
		r.mu.Unlock()
	}
	c.close()
}

// Join subscribes a registered connection to a room.
func (h *Hub) Join(roomID RoomID, connID string) bool {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return false
	}
	c := h.conns[connID]
	if c == nil {
		h.mu.Unlock()
		return false
	}
	r := h.rooms[roomID]
	if r == nil {
		r = &room{members: make(map[string]*conn)}
		h.rooms[roomID] = r
	}
	h.mu.Unlock()

	r.mu.Lock()
	r.members[connID] = c
	r.mu.Unlock()
	return true
}

// Leave unsubscribes a connection from a room. The connection stays
// registered and keeps receiving events for its other rooms.
func (h *Hub) Leave(roomID RoomID, connID string) {
	h.mu.RLock()
	r := h.rooms[roomID]
	h.mu.RUnlock()
	if r == nil {
		return
	}

	r.mu.Lock()
	delete(r.members, connID)
	r.mu.Unlock()
}

// EmitRoom encodes the event once and delivers it to every member of the
// room. Slow members whose buffers are full are dropped so they cannot
// stall the room.
func (h *Hub) EmitRoom(roomID RoomID, event Event) {
	payload, err := encode(event)
	if err != nil {
		h.logger.Error("encode room event failed", "room", string(roomID), "error", err)
		return
	}

	h.mu.RLock()
	r := h.rooms[roomID]
	h.mu.RUnlock()
	if r == nil {
		return
	}

	var stalled []string
	r.mu.Lock()
	for id, c := range r.members {
		if !c.send(payload) {
			delete(r.members, id)
			stalled = append(stalled, id)
		}
	}
	r.mu.Unlock()

	for _, id := range stalled {
		h.logger.Warn("dropping stalled connection", "conn_id", id, "room", string(roomID))
		h.Unregister(id)
	}
}

// EmitConn delivers an event to a single connection regardless of room
// membership, for auth acks and per-event errors.
func (h *Hub) EmitConn(connID string, event Event) {
	payload, err := encode(event)
	if err != nil {
		h.logger.Error("encode conn event failed", "conn_id", connID, "error", err)
		return
	}

	h.mu.RLock()
	c := h.conns[connID]
	h.mu.RUnlock()
	if c == nil {
		return
	}

	if !c.send(payload) {
		h.logger.Warn("dropping stalled connection", "conn_id", connID)
		h.Unregister(connID)
	}
}

// Shutdown closes every connection channel and rejects further joins.
func (h *Hub) Shutdown(_ context.Context) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	conns := make([]*conn, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.conns = make(map[string]*conn)
	h.rooms = make(map[RoomID]*room)
	h.mu.Unlock()

	for _, c := range conns {
		c.close()
	}
}

func encode(event Event) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(Envelope{
		Type: event.EventType(),
		Data: event,
	}); err != nil {
		return nil, err
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}
