// Package tracker owns the in-memory company collection. A single goroutine
// (Run) applies store snapshots and user mutations in order; every other
// goroutine talks to it through commands.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"audittrack-engine/internal/domain"
)

// Store is a live document store keyed by company id.
type Store interface {
	Subscribe(onChange func([]domain.Company)) (unsubscribe func())
	Save(ctx context.Context, c domain.Company) error
	Delete(ctx context.Context, id string) error
}

var (
	ErrNotFound     = errors.New("company not found")
	ErrNotConfirmed = errors.New("action not confirmed")
	// ErrUnsynced wraps store failures. The change is kept locally and
	// retried by RetryPending.
	ErrUnsynced = errors.New("change saved locally but not stored")
	ErrStopped  = errors.New("tracker stopped")
)

// Confirm asks the user to approve prompt.
type Confirm func(prompt string) bool

// Confirmed is a Confirm that answers with a decision already taken, such as
// an explicit confirm flag on a request.
func Confirmed(ok bool) Confirm {
	return func(string) bool { return ok }
}

type Options struct {
	Now func() time.Time
	// DeadlineDays returns the default audit window for new companies. It is
	// read on every Create so configuration changes apply without restart.
	DeadlineDays func() int
	// OnStoreError is called from the owner goroutine when a write fails.
	OnStoreError func(companyID string, err error)
}

type Tracker struct {
	store        Store
	now          func() time.Time
	deadlineDays func() int
	onStoreError func(string, error)

	snapshots chan []domain.Company
	cmds      chan command

	readyOnce sync.Once
	ready     chan struct{}
	stopped   chan struct{}
}

type command struct {
	fn   func(*state) error
	done chan error
}

type pendingWrite struct {
	company domain.Company
	deleted bool
}

// echoLimit is how many snapshots may disagree with a stored write before
// the store is taken as authoritative. The feed serializes list+broadcast,
// so at most one listing taken before the write can arrive after it.
const echoLimit = 2

type echo struct {
	pendingWrite
	// missed counts snapshots that did not reflect the write.
	missed int
}

type state struct {
	companies map[string]domain.Company
	// pending holds writes the store rejected.
	pending map[string]pendingWrite
	// echoing holds stored writes not yet seen in a snapshot. An older
	// snapshot may still be in flight and must not undo them.
	echoing map[string]echo
	// applied counts snapshots taken from the store.
	applied int
}

func New(store Store, opts Options) *Tracker {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Tracker{
		store:        store,
		now:          opts.Now,
		deadlineDays: opts.DeadlineDays,
		onStoreError: opts.OnStoreError,
		snapshots:    make(chan []domain.Company, 1),
		cmds:         make(chan command),
		ready:        make(chan struct{}),
		stopped:      make(chan struct{}),
	}
}

// Run subscribes to the store and serves commands until ctx is done. It must
// be called once.
func (t *Tracker) Run(ctx context.Context) error {
	defer close(t.stopped)
	unsubscribe := t.store.Subscribe(t.offerSnapshot)
	defer unsubscribe()

	s := &state{
		companies: make(map[string]domain.Company),
		pending:   make(map[string]pendingWrite),
		echoing:   make(map[string]echo),
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case snap := <-t.snapshots:
			s.apply(snap)
			t.readyOnce.Do(func() { close(t.ready) })
		case cmd := <-t.cmds:
			cmd.done <- cmd.fn(s)
		}
	}
}

// WaitReady blocks until the first store snapshot has been applied.
func (t *Tracker) WaitReady(ctx context.Context) error {
	select {
	case <-t.ready:
		return nil
	case <-t.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// offerSnapshot is the store callback. A newer snapshot replaces one the
// owner has not picked up yet.
func (t *Tracker) offerSnapshot(snap []domain.Company) {
	for {
		select {
		case t.snapshots <- snap:
			return
		default:
		}
		select {
		case <-t.snapshots:
		default:
		}
	}
}

// apply replaces local state with snap, then re-applies local writes the
// snapshot does not reflect yet.
func (s *state) apply(snap []domain.Company) {
	s.companies = make(map[string]domain.Company, len(snap))
	for _, c := range snap {
		s.companies[c.ID] = c
	}
	s.applied++
	for id, e := range s.echoing {
		got, ok := s.companies[id]
		if e.deleted && !ok || !e.deleted && ok && (got.Equal(e.company) || got.LastUpdated.After(e.company.LastUpdated)) {
			delete(s.echoing, id)
			continue
		}
		// another writer changed or removed the record after us
		if e.missed++; e.missed > echoLimit {
			delete(s.echoing, id)
			continue
		}
		s.echoing[id] = e
		s.overlay(id, e.pendingWrite)
	}
	for id, p := range s.pending {
		s.overlay(id, p)
	}
}

func (s *state) overlay(id string, w pendingWrite) {
	if w.deleted {
		delete(s.companies, id)
	} else {
		s.companies[id] = w.company
	}
}

// stored records a write the store accepted.
func (s *state) stored(id string, w pendingWrite) {
	delete(s.pending, id)
	s.echoing[id] = echo{pendingWrite: w}
}

func (t *Tracker) do(ctx context.Context, fn func(*state) error) error {
	cmd := command{fn: fn, done: make(chan error, 1)}
	select {
	case t.cmds <- cmd:
	case <-t.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cmd.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Companies returns a copy of the collection, most recently updated first.
func (t *Tracker) Companies(ctx context.Context) ([]domain.Company, error) {
	var out []domain.Company
	err := t.do(ctx, func(s *state) error {
		out = make([]domain.Company, 0, len(s.companies))
		for _, c := range s.companies {
			out = append(out, c.Clone())
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastUpdated.Equal(out[j].LastUpdated) {
			return out[i].LastUpdated.After(out[j].LastUpdated)
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

func (t *Tracker) Company(ctx context.Context, id string) (domain.Company, error) {
	var out domain.Company
	err := t.do(ctx, func(s *state) error {
		c, ok := s.companies[id]
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		out = c.Clone()
		return nil
	})
	return out, err
}

// Pending lists ids whose latest change has not been stored.
func (t *Tracker) Pending(ctx context.Context) ([]string, error) {
	var out []string
	err := t.do(ctx, func(s *state) error {
		for id := range s.pending {
			out = append(out, id)
		}
		return nil
	})
	sort.Strings(out)
	return out, err
}

// RetryPending re-sends unsynced changes and reports how many are left.
func (t *Tracker) RetryPending(ctx context.Context) (int, error) {
	left := 0
	err := t.do(ctx, func(s *state) error {
		var firstErr error
		for id, p := range s.pending {
			var err error
			if p.deleted {
				err = t.store.Delete(ctx, id)
			} else {
				err = t.store.Save(ctx, p.company)
			}
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			s.stored(id, p)
		}
		left = len(s.pending)
		return firstErr
	})
	return left, err
}

// persist stores c. On failure the local copy stays and is queued.
func (t *Tracker) persist(ctx context.Context, s *state, c domain.Company) error {
	s.companies[c.ID] = c
	if err := t.store.Save(ctx, c); err != nil {
		s.pending[c.ID] = pendingWrite{company: c}
		t.storeFailed(c.ID, err)
		return fmt.Errorf("%w: %w", ErrUnsynced, err)
	}
	s.stored(c.ID, pendingWrite{company: c})
	return nil
}

func (t *Tracker) remove(ctx context.Context, s *state, id string) error {
	delete(s.companies, id)
	if err := t.store.Delete(ctx, id); err != nil {
		s.pending[id] = pendingWrite{deleted: true}
		t.storeFailed(id, err)
		return fmt.Errorf("%w: %w", ErrUnsynced, err)
	}
	s.stored(id, pendingWrite{deleted: true})
	return nil
}

func (t *Tracker) storeFailed(id string, err error) {
	log.Printf("[tracker] store write failed id=%s: %v", id, err)
	if t.onStoreError != nil {
		t.onStoreError(id, err)
	}
}
