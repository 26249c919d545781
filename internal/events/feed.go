package events

import (
	"context"
	"log"
	"sync"
	"time"

	"audittrack-engine/internal/domain"
)

// Repository is the durable company store behind a Feed.
type Repository interface {
	List(ctx context.Context) ([]domain.Company, error)
	Save(ctx context.Context, c domain.Company) error
	Delete(ctx context.Context, id string) error
}

// Feed turns a Repository into a live document store: every successful
// write pushes the full company collection to all subscribers. Each
// subscriber receives snapshots on its own goroutine, newest wins when it
// falls behind.
type Feed struct {
	repo        Repository
	loadTimeout time.Duration

	refreshMu sync.Mutex // serializes list+broadcast

	mu     sync.Mutex
	subs   map[*subscriber]struct{}
	last   []domain.Company
	loaded bool
}

type subscriber struct {
	ch   chan []domain.Company
	done chan struct{}
}

func NewFeed(repo Repository) *Feed {
	return &Feed{
		repo:        repo,
		loadTimeout: 5 * time.Second,
		subs:        make(map[*subscriber]struct{}),
	}
}

// Subscribe registers onChange and delivers the current snapshot to it.
// The returned function stops delivery; it is safe to call more than once.
func (f *Feed) Subscribe(onChange func([]domain.Company)) (unsubscribe func()) {
	s := &subscriber{ch: make(chan []domain.Company, 1), done: make(chan struct{})}
	go func() {
		for {
			select {
			case <-s.done:
				return
			case snap := <-s.ch:
				onChange(snap)
			}
		}
	}()

	f.mu.Lock()
	f.subs[s] = struct{}{}
	loaded, last := f.loaded, f.last
	if loaded {
		s.offer(cloneAll(last))
	}
	f.mu.Unlock()

	if !loaded {
		ctx, cancel := context.WithTimeout(context.Background(), f.loadTimeout)
		if err := f.Refresh(ctx); err != nil {
			log.Printf("[feed] initial load: %v", err)
		}
		cancel()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, s)
			f.mu.Unlock()
			close(s.done)
		})
	}
}

func (f *Feed) Save(ctx context.Context, c domain.Company) error {
	if err := f.repo.Save(ctx, c); err != nil {
		return err
	}
	f.refreshAfterWrite(ctx)
	return nil
}

func (f *Feed) Delete(ctx context.Context, id string) error {
	if err := f.repo.Delete(ctx, id); err != nil {
		return err
	}
	f.refreshAfterWrite(ctx)
	return nil
}

// List reads straight from the repository.
func (f *Feed) List(ctx context.Context) ([]domain.Company, error) {
	return f.repo.List(ctx)
}

// Refresh reloads the collection and pushes it to every subscriber.
func (f *Feed) Refresh(ctx context.Context) error {
	f.refreshMu.Lock()
	defer f.refreshMu.Unlock()

	list, err := f.repo.List(ctx)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.last, f.loaded = list, true
	for s := range f.subs {
		s.offer(cloneAll(list))
	}
	return nil
}

func (f *Feed) refreshAfterWrite(ctx context.Context) {
	// the write already succeeded; a failed reload only delays the push
	if err := f.Refresh(context.WithoutCancel(ctx)); err != nil {
		log.Printf("[feed] refresh after write: %v", err)
	}
}

// offer replaces any undelivered snapshot with snap.
func (s *subscriber) offer(snap []domain.Company) {
	select {
	case s.ch <- snap:
		return
	default:
	}
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- snap:
	default:
	}
}

func cloneAll(in []domain.Company) []domain.Company {
	out := make([]domain.Company, len(in))
	for i, c := range in {
		out[i] = c.Clone()
	}
	return out
}
