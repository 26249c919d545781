package events

import (
	"encoding/json"
	"time"
)

// Event types pushed to SSE clients.
const (
	TypePing             = "ping"
	TypeCompaniesChanged = "companies_changed"
	TypeCompanyDeleted   = "company_deleted"
	TypeDeadlineAlert    = "deadline_alert"
	TypeStoreError       = "store_error"
)

// envelopeVersion is bumped when the Data shape of an existing type changes.
const envelopeVersion = 1

// Event is the JSON envelope carried in every SSE data line. ID is zero for
// pings, which are never replayed.
type Event struct {
	ID        uint64          `json:"id,omitempty"`
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Frame is an encoded Event ready for the wire.
type Frame struct {
	ID   uint64
	Data string
}

func newEvent(reqID, typ string, data any) Event {
	e := Event{
		Type:      typ,
		Version:   envelopeVersion,
		At:        time.Now().UTC(),
		RequestID: reqID,
	}
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			e.Data = b
		}
	}
	return e
}

func (e Event) frame() Frame {
	b, _ := json.Marshal(e)
	return Frame{ID: e.ID, Data: string(b)}
}

// Ping returns an unnumbered keepalive frame.
func Ping(reqID string) Frame {
	return newEvent(reqID, TypePing, nil).frame()
}
