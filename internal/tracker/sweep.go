package tracker

import (
	"context"

	"audittrack-engine/internal/audit"
	"audittrack-engine/internal/domain"
)

// DeadlineAlert flags an open audit whose deadline is close or past.
type DeadlineAlert struct {
	CompanyID string              `json:"companyId"`
	Name      string              `json:"name"`
	Deadline  audit.DeadlineClass `json:"deadline"`
}

// DeadlineAlerts classifies the deadline of every audit that has not been
// closed or terminated and returns the overdue and near-due ones.
func (t *Tracker) DeadlineAlerts(ctx context.Context) ([]DeadlineAlert, error) {
	companies, err := t.Companies(ctx)
	if err != nil {
		return nil, err
	}
	now := t.now()
	out := []DeadlineAlert{}
	for _, c := range companies {
		if c.Status == domain.StatusClosed || c.AuditClosingDate != nil {
			continue
		}
		dc := audit.ClassifyDeadline(c.DeadlineDate, now)
		if dc.Kind == audit.DeadlineOverdue || dc.Kind == audit.DeadlineNearDue {
			out = append(out, DeadlineAlert{CompanyID: c.ID, Name: c.Name, Deadline: dc})
		}
	}
	return out, nil
}
