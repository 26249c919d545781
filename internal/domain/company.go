package domain

import "time"

// DocumentItem is one required compliance document on a company.
// Title and Description come from the requirement catalog; the remaining
// fields are edited by the auditor.
type DocumentItem struct {
	ID               string    `json:"id"`
	Title            string    `json:"name"`
	Description      string    `json:"description"`
	Status           DocStatus `json:"status"`
	Notes            string    `json:"notes"`
	Finding          string    `json:"finding"`
	CorrectiveAction string    `json:"correctiveAction"`
}

// Company is one audited facility. Values are replaced wholesale on every
// change; use the audit package transitions instead of assigning fields.
type Company struct {
	ID            string         `json:"id"`
	AuditID       string         `json:"auditId,omitempty"`
	Name          string         `json:"name"`
	Email         string         `json:"email"`
	DischargeType DischargeType  `json:"dischargeType"`
	IsLowVolume   bool           `json:"isLowVolume"`
	Status        CompanyStatus  `json:"status"`
	Documents     []DocumentItem `json:"documents"`

	AuditOpeningDate time.Time  `json:"auditOpeningDate"`
	DeadlineDate     *time.Time `json:"deadlineDate,omitempty"`
	AuditClosingDate *time.Time `json:"auditClosingDate,omitempty"`
	LastUpdated      time.Time  `json:"lastUpdated"`
}

// Clone returns a copy that shares no mutable state with c.
func (c Company) Clone() Company {
	out := c
	if c.Documents != nil {
		out.Documents = append([]DocumentItem(nil), c.Documents...)
	}
	out.DeadlineDate = cloneTime(c.DeadlineDate)
	out.AuditClosingDate = cloneTime(c.AuditClosingDate)
	return out
}

// Document returns the document with the given id.
func (c Company) Document(id string) (DocumentItem, int, bool) {
	for i, d := range c.Documents {
		if d.ID == id {
			return d, i, true
		}
	}
	return DocumentItem{}, -1, false
}

// Equal reports whether c and o hold the same record. Times compare by
// instant, so values read back from storage equal the ones written.
func (c Company) Equal(o Company) bool {
	if c.ID != o.ID || c.AuditID != o.AuditID || c.Name != o.Name || c.Email != o.Email ||
		c.DischargeType != o.DischargeType || c.IsLowVolume != o.IsLowVolume || c.Status != o.Status {
		return false
	}
	if !c.AuditOpeningDate.Equal(o.AuditOpeningDate) || !c.LastUpdated.Equal(o.LastUpdated) ||
		!equalTime(c.DeadlineDate, o.DeadlineDate) || !equalTime(c.AuditClosingDate, o.AuditClosingDate) {
		return false
	}
	if len(c.Documents) != len(o.Documents) {
		return false
	}
	for i := range c.Documents {
		if c.Documents[i] != o.Documents[i] {
			return false
		}
	}
	return true
}

func equalTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// TimePtr is a small helper for optional dates.
func TimePtr(t time.Time) *time.Time { return &t }
