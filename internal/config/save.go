package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

const fileHeader = "# audittrack engine settings. Secrets live in the OS keyring, not here.\n"

// Validate reports every validation error at once.
func Validate(cfg Config) error {
	_, v := NormalizeAndValidate(cfg)
	if v.OK() {
		return nil
	}
	errs := make([]error, 0, len(v.Errors))
	for _, e := range v.Errors {
		errs = append(errs, errors.New(e))
	}
	return fmt.Errorf("config validation failed: %w", errors.Join(errs...))
}

// SaveAtomic validates cfg and replaces the file at path, keeping the
// previous version as path.bak. A sibling lock file serializes writers from
// the API and the CLI. The file may hold a database URL, so it is private.
func SaveAtomic(path string, cfg Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}
	b, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock config: %w", err)
	}
	defer lock.Unlock()

	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	_, err = f.WriteString(fileHeader)
	if err == nil {
		_, err = f.Write(b)
	}
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return err
	}

	bak := path + ".bak"
	_ = os.Remove(bak)
	_ = os.Rename(path, bak)
	return os.Rename(tmp, path)
}
