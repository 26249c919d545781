package audit

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"

	"audittrack-engine/internal/domain"
	"audittrack-engine/internal/requirements"
)

// DefaultDeadlineDays is the audit window used when no deadline is given.
const DefaultDeadlineDays = 14

var ErrInvalidContact = errors.New("invalid contact")

type NewCompanyInput struct {
	Name          string
	Email         string
	AuditID       string
	DischargeType domain.DischargeType
	IsLowVolume   bool
	OpeningDate   *time.Time
	DeadlineDate  *time.Time
	// DeadlineDays overrides DefaultDeadlineDays when positive.
	DeadlineDays int
}

// NewCompany builds a fresh audit with a generated id and the checklist for
// its configuration.
func NewCompany(in NewCompanyInput, now time.Time) (domain.Company, error) {
	name, email, err := ValidateContact(in.Name, in.Email)
	if err != nil {
		return domain.Company{}, err
	}
	typ := in.DischargeType
	if typ == "" {
		typ = domain.IndirectPre
	}
	if !typ.Valid() {
		return domain.Company{}, fmt.Errorf("invalid discharge type %q", typ)
	}

	opening := now
	if domain.ValidDate(in.OpeningDate) {
		opening = *in.OpeningDate
	}
	days := in.DeadlineDays
	if days <= 0 {
		days = DefaultDeadlineDays
	}
	deadline := opening.AddDate(0, 0, days)
	if domain.ValidDate(in.DeadlineDate) {
		deadline = *in.DeadlineDate
	}

	return domain.Company{
		ID:               uuid.NewString(),
		AuditID:          strings.TrimSpace(in.AuditID),
		Name:             name,
		Email:            email,
		DischargeType:    typ,
		IsLowVolume:      in.IsLowVolume,
		Status:           domain.StatusNoDocs,
		Documents:        requirements.Resolve(typ, in.IsLowVolume),
		AuditOpeningDate: opening,
		DeadlineDate:     &deadline,
		LastUpdated:      now,
	}, nil
}

type ContactPatch struct {
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty"`
	AuditID *string `json:"auditId,omitempty"`
}

func UpdateContact(c domain.Company, p ContactPatch, now time.Time) (domain.Company, error) {
	name, email := c.Name, c.Email
	if p.Name != nil {
		name = *p.Name
	}
	if p.Email != nil {
		email = *p.Email
	}
	name, email, err := ValidateContact(name, email)
	if err != nil {
		return c, err
	}
	out := c.Clone()
	out.Name = name
	out.Email = email
	if p.AuditID != nil {
		out.AuditID = strings.TrimSpace(*p.AuditID)
	}
	out.LastUpdated = now
	return out, nil
}

// ValidateContact trims and checks the company name and email. The email
// domain must end in a known public suffix.
func ValidateContact(name, email string) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", fmt.Errorf("%w: name is required", ErrInvalidContact)
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return "", "", fmt.Errorf("%w: email %q: %v", ErrInvalidContact, email, err)
	}
	at := strings.LastIndexByte(addr.Address, '@')
	host := strings.ToLower(addr.Address[at+1:])
	if _, err := publicsuffix.EffectiveTLDPlusOne(host); err != nil {
		return "", "", fmt.Errorf("%w: email domain %q: %v", ErrInvalidContact, host, err)
	}
	if _, icann := publicsuffix.PublicSuffix(host); !icann {
		return "", "", fmt.Errorf("%w: email domain %q has no registered suffix", ErrInvalidContact, host)
	}
	return name, addr.Address, nil
}
