package tracker

import (
	"context"
	"fmt"
	"time"

	"audittrack-engine/internal/audit"
	"audittrack-engine/internal/domain"
)

// Create adds a new company. The returned company is valid even when the
// error wraps ErrUnsynced.
func (t *Tracker) Create(ctx context.Context, in audit.NewCompanyInput) (domain.Company, error) {
	if in.DeadlineDays <= 0 && t.deadlineDays != nil {
		in.DeadlineDays = t.deadlineDays()
	}
	c, err := audit.NewCompany(in, t.now())
	if err != nil {
		return domain.Company{}, err
	}
	err = t.do(ctx, func(s *state) error {
		return t.persist(ctx, s, c)
	})
	return c, err
}

type change func(c domain.Company, now time.Time) (domain.Company, error)

// mutate applies fn to the current value of company id and stores the result.
func (t *Tracker) mutate(ctx context.Context, id string, fn change) (domain.Company, error) {
	var out domain.Company
	err := t.do(ctx, func(s *state) error {
		cur, ok := s.companies[id]
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		next, err := fn(cur, t.now())
		if err != nil {
			return err
		}
		out = next
		return t.persist(ctx, s, next)
	})
	return out, err
}

func (t *Tracker) UpdateContact(ctx context.Context, id string, p audit.ContactPatch) (domain.Company, error) {
	return t.mutate(ctx, id, func(c domain.Company, now time.Time) (domain.Company, error) {
		return audit.UpdateContact(c, p, now)
	})
}

func (t *Tracker) Reconfigure(ctx context.Context, id string, d domain.DischargeType, lowVolume bool) (domain.Company, error) {
	return t.mutate(ctx, id, func(c domain.Company, now time.Time) (domain.Company, error) {
		return audit.Reconfigure(c, d, lowVolume, now)
	})
}

func (t *Tracker) SetStatus(ctx context.Context, id string, status domain.CompanyStatus) (domain.Company, error) {
	return t.mutate(ctx, id, func(c domain.Company, now time.Time) (domain.Company, error) {
		return audit.SetStatus(c, status, now)
	})
}

func (t *Tracker) UpdateDocument(ctx context.Context, id, docID string, p audit.DocumentPatch) (domain.Company, error) {
	return t.mutate(ctx, id, func(c domain.Company, now time.Time) (domain.Company, error) {
		return audit.UpdateDocument(c, docID, p, now)
	})
}

func (t *Tracker) SetDeadline(ctx context.Context, id string, deadline *time.Time) (domain.Company, error) {
	return t.mutate(ctx, id, func(c domain.Company, now time.Time) (domain.Company, error) {
		return audit.SetDeadline(c, deadline, now), nil
	})
}

// ExtendDeadline pushes the deadline back by audit.ExtensionDays once confirm
// approves. extended is false when the company has no usable deadline; in
// that case nothing is written.
func (t *Tracker) ExtendDeadline(ctx context.Context, id string, confirm Confirm) (c domain.Company, extended bool, err error) {
	if !ask(confirm, audit.ExtendPrompt) {
		return domain.Company{}, false, ErrNotConfirmed
	}
	err = t.do(ctx, func(s *state) error {
		cur, ok := s.companies[id]
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		c, extended = audit.ExtendDeadline(cur, t.now())
		if !extended {
			return nil
		}
		return t.persist(ctx, s, c)
	})
	return c, extended, err
}

// ForceTerminate closes the audit with missing documents once confirm
// approves.
func (t *Tracker) ForceTerminate(ctx context.Context, id string, confirm Confirm) (domain.Company, error) {
	if !ask(confirm, audit.TerminatePrompt) {
		return domain.Company{}, ErrNotConfirmed
	}
	return t.mutate(ctx, id, func(c domain.Company, now time.Time) (domain.Company, error) {
		return audit.ForceTerminate(c, now), nil
	})
}

func (t *Tracker) Delete(ctx context.Context, id string, confirm Confirm) error {
	if !ask(confirm, audit.DeletePrompt) {
		return ErrNotConfirmed
	}
	return t.do(ctx, func(s *state) error {
		if _, ok := s.companies[id]; !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return t.remove(ctx, s, id)
	})
}

func ask(confirm Confirm, prompt string) bool {
	return confirm != nil && confirm(prompt)
}
