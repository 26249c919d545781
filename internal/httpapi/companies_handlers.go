package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"audittrack-engine/internal/audit"
	"audittrack-engine/internal/domain"
	"audittrack-engine/internal/events"
	"audittrack-engine/internal/tracker"
)

type CompaniesHandler struct {
	Deps
}

func (h CompaniesHandler) List(w http.ResponseWriter, r *http.Request) {
	cs, err := h.Tracker.Companies(r.Context())
	if err != nil {
		writeTrackerError(w, r, err)
		return
	}
	writeJSON(w, viewsOf(cs, h.now()))
}

func (h CompaniesHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.Tracker.Company(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeTrackerError(w, r, err)
		return
	}
	writeJSON(w, viewOf(c, h.now()))
}

func (h CompaniesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCompanyReq
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	in := audit.NewCompanyInput{
		Name:        req.Name,
		Email:       req.Email,
		AuditID:     req.AuditID,
		IsLowVolume: req.IsLowVolume,
	}
	if strings.TrimSpace(req.DischargeType) != "" {
		d, err := domain.ParseDischargeType(req.DischargeType)
		if err != nil {
			WriteError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		in.DischargeType = d
	}
	var err error
	if in.OpeningDate, err = h.parseDate("auditOpeningDate", req.AuditOpeningDate); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if in.DeadlineDate, err = h.parseDate("deadlineDate", req.DeadlineDate); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	c, err := h.Tracker.Create(r.Context(), in)
	if err != nil {
		writeTrackerError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, viewOf(c, h.now()))
}

func (h CompaniesHandler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	var p audit.ContactPatch
	if err := decodeJSON(w, r, &p); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	h.respond(w, r)(h.Tracker.UpdateContact(r.Context(), chi.URLParam(r, "id"), p))
}

func (h CompaniesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.Tracker.Delete(r.Context(), id, tracker.Confirmed(confirmed(r)))
	if errors.Is(err, tracker.ErrNotConfirmed) {
		writeNotConfirmed(w, r, audit.DeletePrompt)
		return
	}
	if err != nil {
		writeTrackerError(w, r, err)
		return
	}
	h.Hub.Emit(RequestIDFrom(r.Context()), events.TypeCompanyDeleted, map[string]string{"id": id})
	w.WriteHeader(http.StatusNoContent)
}

func (h CompaniesHandler) Configure(w http.ResponseWriter, r *http.Request) {
	var req configurationReq
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	d, err := domain.ParseDischargeType(req.DischargeType)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	h.respond(w, r)(h.Tracker.Reconfigure(r.Context(), chi.URLParam(r, "id"), d, req.IsLowVolume))
}

func (h CompaniesHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusReq
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	status, err := domain.ParseCompanyStatus(req.Status)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	h.respond(w, r)(h.Tracker.SetStatus(r.Context(), chi.URLParam(r, "id"), status))
}

func (h CompaniesHandler) SetDeadline(w http.ResponseWriter, r *http.Request) {
	var req deadlineReq
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	deadline, err := h.parseDate("deadline", req.Deadline)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	h.respond(w, r)(h.Tracker.SetDeadline(r.Context(), chi.URLParam(r, "id"), deadline))
}

func (h CompaniesHandler) ExtendDeadline(w http.ResponseWriter, r *http.Request) {
	c, extended, err := h.Tracker.ExtendDeadline(r.Context(), chi.URLParam(r, "id"), tracker.Confirmed(confirmed(r)))
	if errors.Is(err, tracker.ErrNotConfirmed) {
		writeNotConfirmed(w, r, audit.ExtendPrompt)
		return
	}
	if err != nil {
		writeTrackerError(w, r, err)
		return
	}
	writeJSON(w, extendResp{Company: viewOf(c, h.now()), Extended: extended})
}

func (h CompaniesHandler) Terminate(w http.ResponseWriter, r *http.Request) {
	c, err := h.Tracker.ForceTerminate(r.Context(), chi.URLParam(r, "id"), tracker.Confirmed(confirmed(r)))
	if errors.Is(err, tracker.ErrNotConfirmed) {
		writeNotConfirmed(w, r, audit.TerminatePrompt)
		return
	}
	h.respond(w, r)(c, err)
}

func (h CompaniesHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	var p audit.DocumentPatch
	if err := decodeJSON(w, r, &p); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if p.Status != nil && !p.Status.Valid() {
		WriteError(w, r, http.StatusBadRequest, "invalid_request", fmt.Sprintf("invalid document status %q", *p.Status))
		return
	}
	h.respond(w, r)(h.Tracker.UpdateDocument(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "docId"), p))
}

func (h CompaniesHandler) Revisions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.Tracker.Company(r.Context(), id); err != nil {
		writeTrackerError(w, r, err)
		return
	}
	revs, err := h.Deps.Revisions.Revisions(r.Context(), id, 50)
	if err != nil {
		WriteError(w, r, http.StatusBadGateway, "store_unavailable", err.Error())
		return
	}
	writeJSON(w, revs)
}

// respond writes the updated company or the mutation error.
func (h CompaniesHandler) respond(w http.ResponseWriter, r *http.Request) func(domain.Company, error) {
	return func(c domain.Company, err error) {
		if err != nil {
			writeTrackerError(w, r, err)
			return
		}
		writeJSON(w, viewOf(c, h.now()))
	}
}

// parseDate treats nil and "" as unset.
func (h CompaniesHandler) parseDate(field string, s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, ok := domain.ParseDate(*s, h.config().Location())
	if !ok {
		return nil, fmt.Errorf("%s: unrecognized date %q", field, *s)
	}
	return &t, nil
}
