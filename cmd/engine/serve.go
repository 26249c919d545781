package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"audittrack-engine/internal/config"
	"audittrack-engine/internal/domain"
	"audittrack-engine/internal/events"
	"audittrack-engine/internal/followup"
	"audittrack-engine/internal/httpapi"
	"audittrack-engine/internal/mailbox"
	"audittrack-engine/internal/scheduler"
	"audittrack-engine/internal/secrets"
	"audittrack-engine/internal/tracker"
)

// resyncInterval is how often a shared (postgres) store is re-read for
// changes made by other engines.
const resyncInterval = 15 * time.Second

func runServe(ctx context.Context) error {
	dir, err := dataDir()
	if err != nil {
		return err
	}

	// One engine per data dir.
	lock := flock.New(filepath.Join(dir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock data dir: %w", err)
	}
	if !locked {
		return fmt.Errorf("another engine is already running in %s", dir)
	}
	defer func() { _ = lock.Unlock() }()

	userCfgPath, loadCfg, err := loadConfig(dir)
	if err != nil {
		return err
	}
	cfg, err := loadCfg()
	if err != nil {
		return err
	}
	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	cfgVal.Store(cfg)

	be, err := openBackend(ctx, cfg, dir)
	if err != nil {
		return err
	}
	defer be.close()

	hub := events.NewHub()
	feed := events.NewFeed(be.repo)
	tr := tracker.New(feed, tracker.Options{
		DeadlineDays: func() int {
			return cfgVal.Load().(config.Config).Deadlines.DefaultDays
		},
		OnStoreError: func(id string, err error) {
			hub.Emit("", events.TypeStoreError, map[string]string{"id": id, "error": err.Error()})
		},
	})
	unsubscribe := feed.Subscribe(func(snap []domain.Company) {
		hub.Emit("", events.TypeCompaniesChanged, map[string]int{"count": len(snap)})
	})
	defer unsubscribe()

	token, err := shutdownToken(dir)
	if err != nil {
		return fmt.Errorf("shutdown token: %w", err)
	}

	ctx, stop := context.WithCancel(ctx)
	defer stop()

	router := httpapi.NewRouter(httpapi.Deps{
		Tracker:     tr,
		Hub:         hub,
		Revisions:   be.revisions,
		Followup:    &drafter{cfgVal: &cfgVal},
		SaveDraft:   saveDraft(&cfgVal),
		Checkpoint:  be.checkpoint,
		CfgVal:      &cfgVal,
		UserCfgPath: userCfgPath,
		LoadCfg:     loadCfg,
	})
	router.Post("/shutdown", shutdownHandler(token, stop))

	addr := net.JoinHostPort(cfg.App.BindHost, strconv.Itoa(cfg.App.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Printf("engine listening on http://%s (store=%s config=%s)", addr, be.name, userCfgPath)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return tr.Run(gctx)
	})
	g.Go(func() error {
		if err := tr.WaitReady(gctx); err != nil {
			return nil
		}
		scheduler.Run(gctx, scheduler.Job{
			Name:     "deadlines",
			Interval: cfgVal.Load().(config.Config).SweepInterval(),
			Timeout:  time.Minute,
			Task:     sweepTask(tr, hub),
		})
		return nil
	})
	if be.shared {
		g.Go(func() error {
			scheduler.Run(gctx, scheduler.Job{Name: "resync", Interval: resyncInterval, Timeout: resyncInterval, Task: feed.Refresh})
			return nil
		})
	}
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	log.Printf("engine stopped")
	return err
}

// sweepTask retries unsynced writes and publishes deadline alerts.
func sweepTask(tr *tracker.Tracker, hub *events.Hub) scheduler.Task {
	return func(ctx context.Context) error {
		if left, err := tr.RetryPending(ctx); err != nil {
			log.Printf("[deadlines] %d unsynced change(s) still pending: %v", left, err)
		}
		alerts, err := tr.DeadlineAlerts(ctx)
		if err != nil {
			return err
		}
		if len(alerts) > 0 {
			hub.Emit("", events.TypeDeadlineAlert, alerts)
		}
		log.Printf("[deadlines] sweep done alerts=%d", len(alerts))
		return nil
	}
}

// drafter rebuilds the follow-up service whenever the generation settings change.
type drafter struct {
	cfgVal *atomic.Value

	mu  sync.Mutex
	key string
	svc *followup.Service
}

func (d *drafter) Draft(ctx context.Context, c domain.Company) followup.Draft {
	return d.service().Draft(ctx, c)
}

func (d *drafter) service() *followup.Service {
	cfg := d.cfgVal.Load().(config.Config)
	gen := cfg.Generation
	key := fmt.Sprintf("%s|%d|%d", gen.Model, gen.RequestsPerMinute, gen.TimeoutSeconds)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.svc == nil || d.key != key {
		d.svc = followup.NewService(followup.Options{
			Model:             gen.Model,
			Keys:              secrets.APIKeys(),
			RequestsPerMinute: gen.RequestsPerMinute,
			Timeout:           cfg.GenerationTimeout(),
		})
		d.key = key
	}
	return d.svc
}

func saveDraft(cfgVal *atomic.Value) func(context.Context, mailbox.Draft) error {
	return func(ctx context.Context, d mailbox.Draft) error {
		cfg := cfgVal.Load().(config.Config)
		client := mailbox.New(cfg.Email, func() (string, error) {
			return secrets.GetIMAPPassword(secrets.IMAPKeyringAccount(cfg.Email))
		})
		return client.SaveDraft(ctx, d)
	}
}
