package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"audittrack-engine/internal/domain"
	"audittrack-engine/internal/requirements"
)

// Records are stored as flat JSON documents. Dates are written as ISO-8601
// strings; on read ISO strings, epoch seconds and {"seconds": n} timestamp
// objects are all accepted.

type flexTime struct {
	t  time.Time
	ok bool
}

func (f *flexTime) UnmarshalJSON(b []byte) error {
	*f = flexTime{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err == nil {
			f.t, f.ok = domain.ParseStoredDate(s, time.UTC)
		}
	case '{':
		var ts struct {
			Seconds     *float64 `json:"seconds"`
			AltSeconds  *float64 `json:"_seconds"`
			Nanoseconds float64  `json:"nanoseconds"`
			AltNanosecs float64  `json:"_nanoseconds"`
		}
		if err := json.Unmarshal(b, &ts); err == nil {
			switch {
			case ts.Seconds != nil:
				f.t, f.ok = domain.FromEpochSeconds(*ts.Seconds + ts.Nanoseconds/1e9)
			case ts.AltSeconds != nil:
				f.t, f.ok = domain.FromEpochSeconds(*ts.AltSeconds + ts.AltNanosecs/1e9)
			}
		}
	default:
		var secs float64
		if err := json.Unmarshal(b, &secs); err == nil {
			f.t, f.ok = domain.FromEpochSeconds(secs)
		}
	}
	return nil
}

func (f flexTime) ptr() *time.Time {
	if !f.ok {
		return nil
	}
	return domain.TimePtr(f.t)
}

type recordDoc struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Description      string  `json:"description"`
	Status           string  `json:"status"`
	Notes            string  `json:"notes"`
	Finding          *string `json:"finding"`
	CorrectiveAction *string `json:"correctiveAction"`
}

type recordIn struct {
	ID               string      `json:"id"`
	AuditID          string      `json:"auditId"`
	Name             string      `json:"name"`
	Email            string      `json:"email"`
	DischargeType    *string     `json:"dischargeType"`
	IsLowVolume      *bool       `json:"isLowVolume"`
	Status           *string     `json:"status"`
	Documents        []recordDoc `json:"documents"`
	AuditOpeningDate flexTime    `json:"auditOpeningDate"`
	DeadlineDate     flexTime    `json:"deadlineDate"`
	AuditClosingDate flexTime    `json:"auditClosingDate"`
	LastUpdated      flexTime    `json:"lastUpdated"`
}

// DecodeRecord reads a stored company record, filling defaults for missing
// or unreadable fields. now is the fallback for both the last-updated and
// opening dates.
func DecodeRecord(b []byte, now time.Time) (domain.Company, error) {
	var in recordIn
	if err := json.Unmarshal(b, &in); err != nil {
		return domain.Company{}, fmt.Errorf("decode company record: %w", err)
	}

	c := domain.Company{
		ID:            in.ID,
		AuditID:       in.AuditID,
		Name:          in.Name,
		Email:         in.Email,
		DischargeType: domain.IndirectPre,
		Status:        domain.StatusNoDocs,
	}
	if in.DischargeType != nil {
		if d, err := domain.ParseDischargeType(*in.DischargeType); err == nil {
			c.DischargeType = d
		}
	}
	if in.IsLowVolume != nil {
		c.IsLowVolume = *in.IsLowVolume
	}
	if in.Status != nil {
		if s, err := domain.ParseCompanyStatus(*in.Status); err == nil {
			c.Status = s
		}
	}

	c.LastUpdated = now
	if in.LastUpdated.ok {
		c.LastUpdated = in.LastUpdated.t
	}
	switch {
	case in.AuditOpeningDate.ok:
		c.AuditOpeningDate = in.AuditOpeningDate.t
	case in.LastUpdated.ok:
		c.AuditOpeningDate = in.LastUpdated.t
	default:
		c.AuditOpeningDate = now
	}
	c.DeadlineDate = in.DeadlineDate.ptr()
	c.AuditClosingDate = in.AuditClosingDate.ptr()

	c.Documents = decodeDocuments(in.Documents, c.DischargeType, c.IsLowVolume)
	return c, nil
}

func decodeDocuments(in []recordDoc, d domain.DischargeType, lowVolume bool) []domain.DocumentItem {
	catalog := map[string]domain.DocumentItem{}
	for _, doc := range requirements.Resolve(d, lowVolume) {
		catalog[doc.ID] = doc
	}
	out := make([]domain.DocumentItem, 0, len(in))
	for _, rd := range in {
		doc := domain.DocumentItem{
			ID:          rd.ID,
			Title:       rd.Name,
			Description: rd.Description,
			Status:      domain.DocPending,
			Notes:       rd.Notes,
		}
		if st, err := domain.ParseDocStatus(rd.Status); err == nil {
			doc.Status = st
		}
		if rd.Finding != nil {
			doc.Finding = *rd.Finding
		}
		if rd.CorrectiveAction != nil {
			doc.CorrectiveAction = *rd.CorrectiveAction
		}
		if def, ok := catalog[rd.ID]; ok {
			if strings.TrimSpace(doc.Title) == "" {
				doc.Title = def.Title
			}
			if strings.TrimSpace(doc.Description) == "" {
				doc.Description = def.Description
			}
		}
		out = append(out, doc)
	}
	return out
}

type recordOut struct {
	ID               string                `json:"id"`
	AuditID          string                `json:"auditId"`
	Name             string                `json:"name"`
	Email            string                `json:"email"`
	DischargeType    domain.DischargeType  `json:"dischargeType"`
	IsLowVolume      bool                  `json:"isLowVolume"`
	Status           domain.CompanyStatus  `json:"status"`
	Documents        []domain.DocumentItem `json:"documents"`
	AuditOpeningDate string                `json:"auditOpeningDate"`
	DeadlineDate     *string               `json:"deadlineDate,omitempty"`
	AuditClosingDate *string               `json:"auditClosingDate,omitempty"`
	LastUpdated      string                `json:"lastUpdated"`
}

// EncodeRecord renders c in the stored record shape. Output is indented so
// revision diffs stay line oriented.
func EncodeRecord(c domain.Company) ([]byte, error) {
	out := recordOut{
		ID:               c.ID,
		AuditID:          c.AuditID,
		Name:             c.Name,
		Email:            c.Email,
		DischargeType:    c.DischargeType,
		IsLowVolume:      c.IsLowVolume,
		Status:           c.Status,
		Documents:        c.Documents,
		AuditOpeningDate: isoDate(c.AuditOpeningDate),
		DeadlineDate:     isoDatePtr(c.DeadlineDate),
		AuditClosingDate: isoDatePtr(c.AuditClosingDate),
		LastUpdated:      isoDate(c.LastUpdated),
	}
	if out.Documents == nil {
		out.Documents = []domain.DocumentItem{}
	}
	return json.MarshalIndent(out, "", "  ")
}

func isoDate(t time.Time) string { return t.Format(time.RFC3339Nano) }

func isoDatePtr(t *time.Time) *string {
	if !domain.ValidDate(t) {
		return nil
	}
	s := isoDate(*t)
	return &s
}

// sortKey is a fixed-width UTC timestamp so that string order matches time
// order in the sqlite index.
func sortKey(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z")
}
