package httpapi

import (
	"time"

	"audittrack-engine/internal/audit"
	"audittrack-engine/internal/domain"
)

// CompanyView is a company as served to clients, with derived fields.
type CompanyView struct {
	domain.Company
	DischargeCode string              `json:"dischargeCode"`
	StatusLabel   string              `json:"statusLabel"`
	Stats         audit.Stats         `json:"stats"`
	Deadline      audit.DeadlineClass `json:"deadline"`
}

func viewOf(c domain.Company, now time.Time) CompanyView {
	return CompanyView{
		Company:       c,
		DischargeCode: c.DischargeType.Code(),
		StatusLabel:   c.Status.Label(),
		Stats:         audit.Summarize(c.Documents),
		Deadline:      audit.ClassifyDeadline(c.DeadlineDate, now),
	}
}

func viewsOf(cs []domain.Company, now time.Time) []CompanyView {
	out := make([]CompanyView, 0, len(cs))
	for _, c := range cs {
		out = append(out, viewOf(c, now))
	}
	return out
}

type createCompanyReq struct {
	Name             string  `json:"name"`
	Email            string  `json:"email"`
	AuditID          string  `json:"auditId"`
	DischargeType    string  `json:"dischargeType"`
	IsLowVolume      bool    `json:"isLowVolume"`
	AuditOpeningDate *string `json:"auditOpeningDate"`
	DeadlineDate     *string `json:"deadlineDate"`
}

type configurationReq struct {
	DischargeType string `json:"dischargeType"`
	IsLowVolume   bool   `json:"isLowVolume"`
}

type statusReq struct {
	Status string `json:"status"`
}

// deadlineReq clears the deadline when Deadline is null or empty.
type deadlineReq struct {
	Deadline *string `json:"deadline"`
}

type extendResp struct {
	Company  CompanyView `json:"company"`
	Extended bool        `json:"extended"`
}
