package httpapi

import (
	"net/http"
	"strings"

	"audittrack-engine/internal/analytics"
	"audittrack-engine/internal/audit"
	"audittrack-engine/internal/domain"
	"audittrack-engine/internal/requirements"
)

type option struct {
	Value string `json:"value"`
	Code  string `json:"code,omitempty"`
	Label string `json:"label"`
}

type metaResp struct {
	DischargeTypes      []option                  `json:"dischargeTypes"`
	DocStatuses         []option                  `json:"docStatuses"`
	CompanyStatuses     []option                  `json:"companyStatuses"`
	Requirements        []requirements.Definition `json:"requirements"`
	DefaultDeadlineDays int                       `json:"defaultDeadlineDays"`
	ExtensionDays       int                       `json:"extensionDays"`
	NearDueDays         int                       `json:"nearDueDays"`
}

type MetaHandler struct {
	Deps
}

func (h MetaHandler) Meta(w http.ResponseWriter, r *http.Request) {
	var out metaResp
	for _, d := range domain.DischargeTypes {
		out.DischargeTypes = append(out.DischargeTypes, option{Value: string(d), Code: d.Code(), Label: string(d)})
	}
	for _, s := range []domain.DocStatus{domain.DocPending, domain.DocReceived, domain.DocIssue, domain.DocNA} {
		out.DocStatuses = append(out.DocStatuses, option{Value: string(s), Label: s.Label()})
	}
	for _, s := range []domain.CompanyStatus{domain.StatusNoDocs, domain.StatusMissingShared, domain.StatusReadyToClose, domain.StatusClosed} {
		out.CompanyStatuses = append(out.CompanyStatuses, option{Value: string(s), Label: s.Label()})
	}
	out.Requirements = requirements.Catalog()
	out.DefaultDeadlineDays = h.config().Deadlines.DefaultDays
	out.ExtensionDays = audit.ExtensionDays
	out.NearDueDays = audit.NearDueDays
	writeJSON(w, out)
}

// Requirements previews the checklist for ?type=&low_volume=.
func (h MetaHandler) Requirements(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("type"))
	if raw == "" {
		WriteError(w, r, http.StatusBadRequest, "invalid_request", "type is required")
		return
	}
	d, err := domain.ParseDischargeType(raw)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	writeJSON(w, requirements.Resolve(d, queryBool(r, "low_volume")))
}

func (h MetaHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	cs, err := h.Tracker.Companies(r.Context())
	if err != nil {
		writeTrackerError(w, r, err)
		return
	}
	writeJSON(w, analytics.Summarize(cs, h.config().Location()))
}
