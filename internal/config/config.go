// engine/internal/config/config.go
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Port     int    `yaml:"port" json:"port"`
		BindHost string `yaml:"bind_host" json:"bind_host"`
		DataDir  string `yaml:"data_dir" json:"data_dir"`
		Timezone string `yaml:"timezone" json:"timezone"`
	} `yaml:"app" json:"app"`

	Store struct {
		Driver      string `yaml:"driver" json:"driver"`
		PostgresURL string `yaml:"postgres_url" json:"postgres_url"`
	} `yaml:"store" json:"store"`

	Generation struct {
		Model             string `yaml:"model" json:"model"`
		RequestsPerMinute int    `yaml:"requests_per_minute" json:"requests_per_minute"`
		TimeoutSeconds    int    `yaml:"timeout_seconds" json:"timeout_seconds"`
	} `yaml:"generation" json:"generation"`

	Deadlines struct {
		DefaultDays  int `yaml:"default_days" json:"default_days"`
		SweepSeconds int `yaml:"sweep_seconds" json:"sweep_seconds"`
	} `yaml:"deadlines" json:"deadlines"`

	Email EmailConfig `yaml:"email" json:"email"`
}

type EmailConfig struct {
	Enabled       bool   `yaml:"enabled" json:"enabled"`
	IMAPHost      string `yaml:"imap_host" json:"imap_host"`
	IMAPPort      int    `yaml:"imap_port" json:"imap_port"`
	Username      string `yaml:"username" json:"username"`
	DraftsMailbox string `yaml:"drafts_mailbox" json:"drafts_mailbox"`
	From          string `yaml:"from" json:"from"`
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return parse(b)
}

func parse(b []byte) (Config, error) {
	var cfg Config
	err := yaml.Unmarshal(b, &cfg)
	return cfg, err
}

// Location resolves app.timezone, falling back to the local zone.
func (c Config) Location() *time.Location {
	if c.App.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c Config) SweepInterval() time.Duration {
	return time.Duration(c.Deadlines.SweepSeconds) * time.Second
}

func (c Config) GenerationTimeout() time.Duration {
	return time.Duration(c.Generation.TimeoutSeconds) * time.Second
}
