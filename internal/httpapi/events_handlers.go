package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"audittrack-engine/internal/events"
)

// keepalive keeps idle SSE connections open through proxies.
const keepalive = 25 * time.Second

type EventsHandler struct {
	Hub *events.Hub
}

// ServeSSE streams hub events. Clients reconnecting with Last-Event-ID get
// the retained frames they missed before live traffic.
func (h EventsHandler) ServeSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, r, http.StatusInternalServerError, "stream_unsupported", "Streaming unsupported")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	lastID, _ := strconv.ParseUint(strings.TrimSpace(r.Header.Get("Last-Event-ID")), 10, 64)
	ch, backlog := h.Hub.Subscribe(lastID)
	defer h.Hub.Unsubscribe(ch)

	reqID := RequestIDFrom(r.Context())
	writeFrame(w, events.Ping(reqID))
	for _, f := range backlog {
		writeFrame(w, f)
	}
	flusher.Flush()

	tick := time.NewTicker(keepalive)
	defer tick.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-tick.C:
			writeFrame(w, events.Ping(reqID))
			flusher.Flush()
		case f, ok := <-ch:
			if !ok {
				return
			}
			writeFrame(w, f)
			flusher.Flush()
		}
	}
}

func writeFrame(w http.ResponseWriter, f events.Frame) {
	if f.ID != 0 {
		fmt.Fprintf(w, "id: %d\n", f.ID)
	}
	fmt.Fprintf(w, "event: message\ndata: %s\n\n", f.Data)
}
