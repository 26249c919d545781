package events

import "sync"

const (
	clientBuffer = 16
	replayLimit  = 64
)

// Hub numbers events and fans them out to SSE clients. It keeps the most
// recent frames so a reconnecting client can resume from Last-Event-ID.
// A client whose buffer is full misses frames instead of blocking Emit.
type Hub struct {
	mu      sync.Mutex
	seq     uint64
	recent  []Frame
	clients map[chan Frame]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[chan Frame]struct{})}
}

// Subscribe registers a client and returns the retained frames numbered
// after lastID. Pass zero for a fresh connection.
func (h *Hub) Subscribe(lastID uint64) (chan Frame, []Frame) {
	ch := make(chan Frame, clientBuffer)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[ch] = struct{}{}
	if lastID == 0 || lastID >= h.seq {
		return ch, nil
	}
	var backlog []Frame
	for _, f := range h.recent {
		if f.ID > lastID {
			backlog = append(backlog, f)
		}
	}
	return ch, backlog
}

func (h *Hub) Unsubscribe(ch chan Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[ch]; ok {
		delete(h.clients, ch)
		close(ch)
	}
}

// Emit numbers, records and broadcasts an event. It returns the event id.
func (h *Hub) Emit(reqID, typ string, data any) uint64 {
	e := newEvent(reqID, typ, data)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.seq++
	e.ID = h.seq
	f := e.frame()

	h.recent = append(h.recent, f)
	if len(h.recent) > replayLimit {
		h.recent = append(h.recent[:0], h.recent[len(h.recent)-replayLimit:]...)
	}
	for ch := range h.clients {
		select {
		case ch <- f:
		default:
		}
	}
	return e.ID
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
