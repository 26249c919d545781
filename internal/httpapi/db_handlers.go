package httpapi

import (
	"net"
	"net/http"
)

type DBHandler struct {
	Deps
}

// Checkpoint forces a WAL checkpoint. Only loopback callers are allowed.
func (h DBHandler) Checkpoint(w http.ResponseWriter, r *http.Request) {
	if !isLoopback(r) {
		WriteError(w, r, http.StatusForbidden, "forbidden", "forbidden")
		return
	}
	if h.Deps.Checkpoint == nil {
		WriteError(w, r, http.StatusNotImplemented, "unsupported", "store has no checkpoint")
		return
	}
	if err := h.Deps.Checkpoint(r.Context()); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "checkpoint_failed", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func isLoopback(r *http.Request) bool {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
