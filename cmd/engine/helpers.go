package main

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"audittrack-engine/internal/config"
	"audittrack-engine/internal/events"
	"audittrack-engine/internal/httpapi"
	"audittrack-engine/internal/store"
	"audittrack-engine/internal/store/postgres"
)

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// shutdownToken uses AUDITTRACK_SHUTDOWN_TOKEN when set, otherwise generates
// one and writes it next to the data so the launcher can read it.
func shutdownToken(dir string) (string, error) {
	if tok := strings.TrimSpace(os.Getenv("AUDITTRACK_SHUTDOWN_TOKEN")); tok != "" {
		return tok, nil
	}
	tok, err := randomToken(16)
	if err != nil {
		return "", err
	}
	return tok, os.WriteFile(filepath.Join(dir, "shutdown.token"), []byte(tok+"\n"), 0o600)
}

func shutdownHandler(token string, stop context.CancelFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Local-only guard (covers typical desktop usage)
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			// RemoteAddr can sometimes be just a host; fall back safely
			host = r.RemoteAddr
		}
		if ip := net.ParseIP(host); host != "localhost" && (ip == nil || !ip.IsLoopback()) {
			httpapi.WriteError(w, r, http.StatusForbidden, "forbidden", "forbidden")
			return
		}

		// Token guard
		got := r.Header.Get("X-Shutdown-Token")
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			httpapi.WriteError(w, r, http.StatusUnauthorized, "unauthorized", "unauthorized")
			return
		}

		// Respond immediately; the serve group shuts the server down.
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("shutting down\n"))
		log.Printf("[engine] shutdown requested request_id=%s", httpapi.RequestIDFrom(r.Context()))
		stop()
	}
}

// backend is the selected durable store.
type backend struct {
	repo       events.Repository
	revisions  httpapi.RevisionLister
	checkpoint func(ctx context.Context) error
	close      func()
	name       string
	// shared stores can be written by other engines and need polling.
	shared bool
}

func openBackend(ctx context.Context, cfg config.Config, dir string) (backend, error) {
	switch cfg.Store.Driver {
	case "postgres":
		db, err := postgres.Connect(ctx, cfg.Store.PostgresURL)
		if err != nil {
			return backend{}, fmt.Errorf("postgres connect: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return backend{}, fmt.Errorf("postgres migrate: %w", err)
		}
		repo := postgres.NewCompanies(db)
		return backend{repo: repo, revisions: repo, close: db.Close, name: "postgres", shared: true}, nil
	default:
		dbPath := filepath.Join(dir, "audittrack.db")
		db, err := store.Open(ctx, dbPath)
		if err != nil {
			return backend{}, fmt.Errorf("open %s: %w", dbPath, err)
		}
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return backend{}, fmt.Errorf("migrate %s: %w", dbPath, err)
		}
		repo := store.NewCompanies(db)
		return backend{
			repo:       repo,
			revisions:  repo,
			checkpoint: db.Checkpoint,
			close:      func() { _ = db.Close() },
			name:       "sqlite:" + dbPath,
		}, nil
	}
}

// loadConfig reads the user config with .env and environment overrides applied.
func loadConfig(dir string) (cfgPath string, load func() (config.Config, error), err error) {
	if err := config.LoadDotEnv(dir); err != nil {
		return "", nil, fmt.Errorf("load .env: %w", err)
	}
	cfgPath, err = config.EnsureUserConfig(dir)
	if err != nil {
		return "", nil, fmt.Errorf("config bootstrap failed: %w", err)
	}
	load = func() (config.Config, error) {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return cfg, fmt.Errorf("config load failed (%s): %w", cfgPath, err)
		}
		config.OverlayEnv(&cfg)
		cfg, v := config.NormalizeAndValidate(cfg)
		for _, w := range v.Warnings {
			log.Printf("[config] warning: %s", w)
		}
		if !v.OK() {
			return cfg, fmt.Errorf("config invalid (%s):\n- %s", cfgPath, strings.Join(v.Errors, "\n- "))
		}
		return cfg, nil
	}
	return cfgPath, load, nil
}
