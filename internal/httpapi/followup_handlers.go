package httpapi

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"audittrack-engine/internal/mailbox"
)

type FollowupHandler struct {
	Deps
}

type followupResp struct {
	CompanyID string `json:"companyId"`
	Text      string `json:"text"`
	Subject   string `json:"subject,omitempty"`
	Body      string `json:"body,omitempty"`
	Model     string `json:"model,omitempty"`
	Fallback  bool   `json:"fallback"`
	SavedTo   string `json:"savedTo,omitempty"`
}

// Draft generates a reminder email. With ?save=imap a generated draft is
// also appended to the configured drafts mailbox.
func (h FollowupHandler) Draft(w http.ResponseWriter, r *http.Request) {
	c, err := h.Tracker.Company(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeTrackerError(w, r, err)
		return
	}
	d := h.Followup.Draft(r.Context(), c)
	resp := followupResp{
		CompanyID: d.CompanyID,
		Text:      d.Text,
		Subject:   d.Subject,
		Body:      d.Body,
		Model:     d.Model,
		Fallback:  d.Fallback,
	}

	if r.URL.Query().Get("save") == "imap" && !d.Fallback {
		if h.SaveDraft == nil {
			WriteError(w, r, http.StatusConflict, "email_disabled", mailbox.ErrDisabled.Error())
			return
		}
		err := h.SaveDraft(r.Context(), mailbox.Draft{To: c.Email, Subject: d.Subject, Body: d.Body, Date: h.now()})
		if errors.Is(err, mailbox.ErrDisabled) {
			WriteError(w, r, http.StatusConflict, "email_disabled", err.Error())
			return
		}
		if err != nil {
			log.Printf("level=error msg=\"save draft\" request_id=%s company=%s err=%v", RequestIDFrom(r.Context()), c.ID, err)
			WriteError(w, r, http.StatusBadGateway, "imap_failed", err.Error())
			return
		}
		resp.SavedTo = h.config().Email.DraftsMailbox
	}
	writeJSON(w, resp)
}
