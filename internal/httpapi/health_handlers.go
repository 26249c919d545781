package httpapi

import (
	"net/http"
)

type HealthHandler struct {
	Deps
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	pending, err := h.Tracker.Pending(r.Context())
	if err != nil {
		WriteJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	cfg := h.config()
	writeJSON(w, map[string]any{
		"ok":          true,
		"store":       cfg.Store.Driver,
		"pending":     pending,
		"sse_clients": h.Hub.Clients(),
	})
}
