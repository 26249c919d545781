// config/overlay.go
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads dataDir/.env into the process environment without
// overriding variables that are already set.
func LoadDotEnv(dataDir string) error {
	err := godotenv.Load(filepath.Join(dataDir, ".env"))
	if err != nil && errors.Is(err, os.ErrNotExist) {
		// Missing .env should not kill startup
		return nil
	}
	return err
}

// OverlayEnv applies AUDITTRACK_* environment overrides on top of cfg.
func OverlayEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("AUDITTRACK_PORT")); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.App.Port = p
		}
	}
	if v := strings.TrimSpace(os.Getenv("AUDITTRACK_STORE")); v != "" {
		cfg.Store.Driver = v
	}
	if v := strings.TrimSpace(os.Getenv("AUDITTRACK_POSTGRES_URL")); v != "" {
		cfg.Store.PostgresURL = v
	}
	if v := strings.TrimSpace(os.Getenv("AUDITTRACK_MODEL")); v != "" {
		cfg.Generation.Model = v
	}
}
