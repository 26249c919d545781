package audit

import (
	"errors"
	"fmt"
	"time"

	"audittrack-engine/internal/domain"
	"audittrack-engine/internal/requirements"
)

// Confirmation prompts shown before state-changing actions take effect.
const (
	DeletePrompt    = "Bu firmayı silmek istediğinize emin misiniz?"
	TerminatePrompt = `Süre dolduğu için denetim "Eksik Evrak Paylaşıldı" olarak kapatılacak. Onaylıyor musunuz?`
	ExtendPrompt    = "Denetim süresi 3 gün uzatılacak. Onaylıyor musunuz?"
)

// ExtensionDays is how far ExtendDeadline pushes the deadline.
const ExtensionDays = 3

var ErrUnknownDocument = errors.New("unknown document")

// SetStatus moves the audit to status. Entering CLOSED stamps the closing
// date unless one is already recorded; any other status clears it.
func SetStatus(c domain.Company, status domain.CompanyStatus, now time.Time) (domain.Company, error) {
	if !status.Valid() {
		return c, fmt.Errorf("invalid audit status %q", status)
	}
	out := c.Clone()
	out.Status = status
	if status == domain.StatusClosed {
		if out.AuditClosingDate == nil {
			out.AuditClosingDate = domain.TimePtr(now)
		}
	} else {
		out.AuditClosingDate = nil
	}
	out.LastUpdated = now
	return out, nil
}

// Reconfigure changes the discharge classification and rebuilds the
// checklist, keeping the auditor's work on documents that remain required.
func Reconfigure(c domain.Company, d domain.DischargeType, lowVolume bool, now time.Time) (domain.Company, error) {
	if !d.Valid() {
		return c, fmt.Errorf("invalid discharge type %q", d)
	}
	out := c.Clone()
	out.DischargeType = d
	out.IsLowVolume = lowVolume
	out.Documents = requirements.Reconcile(c.Documents, d, lowVolume)
	out.LastUpdated = now
	return out, nil
}

// DocumentPatch carries the editable document fields; nil fields are left
// unchanged.
type DocumentPatch struct {
	Status           *domain.DocStatus `json:"status,omitempty"`
	Notes            *string           `json:"notes,omitempty"`
	Finding          *string           `json:"finding,omitempty"`
	CorrectiveAction *string           `json:"correctiveAction,omitempty"`
}

func UpdateDocument(c domain.Company, docID string, p DocumentPatch, now time.Time) (domain.Company, error) {
	_, i, ok := c.Document(docID)
	if !ok {
		return c, fmt.Errorf("%w %q", ErrUnknownDocument, docID)
	}
	if p.Status != nil && !p.Status.Valid() {
		return c, fmt.Errorf("invalid document status %q", *p.Status)
	}
	out := c.Clone()
	doc := &out.Documents[i]
	if p.Status != nil {
		doc.Status = *p.Status
	}
	if p.Notes != nil {
		doc.Notes = *p.Notes
	}
	if p.Finding != nil {
		doc.Finding = *p.Finding
	}
	if p.CorrectiveAction != nil {
		doc.CorrectiveAction = *p.CorrectiveAction
	}
	out.LastUpdated = now
	return out, nil
}

// SetDeadline replaces the deadline. A nil or zero deadline clears it.
func SetDeadline(c domain.Company, deadline *time.Time, now time.Time) domain.Company {
	out := c.Clone()
	if domain.ValidDate(deadline) {
		out.DeadlineDate = domain.TimePtr(*deadline)
	} else {
		out.DeadlineDate = nil
	}
	out.LastUpdated = now
	return out
}

// ExtendDeadline adds ExtensionDays calendar days to the deadline. changed is
// false, and c is returned as is, when there is no usable deadline.
func ExtendDeadline(c domain.Company, now time.Time) (out domain.Company, changed bool) {
	if !domain.ValidDate(c.DeadlineDate) {
		return c, false
	}
	out = c.Clone()
	out.DeadlineDate = domain.TimePtr(c.DeadlineDate.AddDate(0, 0, ExtensionDays))
	out.LastUpdated = now
	return out, true
}

// ForceTerminate closes an expired audit with the missing-documents outcome.
func ForceTerminate(c domain.Company, now time.Time) domain.Company {
	out := c.Clone()
	out.Status = domain.StatusMissingShared
	out.AuditClosingDate = domain.TimePtr(now)
	out.LastUpdated = now
	return out
}
