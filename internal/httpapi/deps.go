package httpapi

import (
	"context"
	"sync/atomic"
	"time"

	"audittrack-engine/internal/config"
	"audittrack-engine/internal/domain"
	"audittrack-engine/internal/events"
	"audittrack-engine/internal/followup"
	"audittrack-engine/internal/mailbox"
	"audittrack-engine/internal/store"
	"audittrack-engine/internal/tracker"
)

type RevisionLister interface {
	Revisions(ctx context.Context, id string, limit int) ([]store.Revision, error)
}

type Drafter interface {
	Draft(ctx context.Context, c domain.Company) followup.Draft
}

type Deps struct {
	Tracker *tracker.Tracker
	Hub     *events.Hub

	Revisions RevisionLister
	Followup  Drafter
	// SaveDraft uploads a draft to the mail server; nil disables ?save=imap.
	SaveDraft func(ctx context.Context, d mailbox.Draft) error

	// Checkpoint flushes the sqlite WAL; nil for stores without one.
	Checkpoint func(ctx context.Context) error

	// Atomic stores
	CfgVal *atomic.Value // stores config.Config

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	Now func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) config() config.Config {
	if d.CfgVal == nil {
		return config.Default()
	}
	if cfg, ok := d.CfgVal.Load().(config.Config); ok {
		return cfg
	}
	return config.Default()
}
