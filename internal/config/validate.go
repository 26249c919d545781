package config

import (
	"fmt"
	"strings"
	"time"

	"audittrack-engine/internal/llm"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate fills unset fields from the built-in defaults and
// returns the normalized copy with any problems found.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation
	def := Default()

	out.App.BindHost = strings.TrimSpace(out.App.BindHost)
	if out.App.BindHost == "" {
		out.App.BindHost = def.App.BindHost
	}
	out.Store.Driver = strings.ToLower(strings.TrimSpace(out.Store.Driver))
	if out.Store.Driver == "" {
		out.Store.Driver = def.Store.Driver
	}
	out.Generation.Model = strings.TrimSpace(out.Generation.Model)
	if out.Generation.Model == "" {
		out.Generation.Model = def.Generation.Model
	}
	if out.Generation.RequestsPerMinute == 0 {
		out.Generation.RequestsPerMinute = def.Generation.RequestsPerMinute
	}
	if out.Generation.TimeoutSeconds == 0 {
		out.Generation.TimeoutSeconds = def.Generation.TimeoutSeconds
	}
	if out.Deadlines.DefaultDays == 0 {
		out.Deadlines.DefaultDays = def.Deadlines.DefaultDays
	}
	if out.Deadlines.SweepSeconds == 0 {
		out.Deadlines.SweepSeconds = def.Deadlines.SweepSeconds
	}
	if strings.TrimSpace(out.Email.DraftsMailbox) == "" {
		out.Email.DraftsMailbox = def.Email.DraftsMailbox
	}

	// ---- Validation rules ----

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}
	if out.App.BindHost != "127.0.0.1" && out.App.BindHost != "localhost" && out.App.BindHost != "::1" {
		res.addWarn("app.bind_host is %q; the API has no authentication beyond the shutdown token.", out.App.BindHost)
	}
	if out.App.Timezone != "" {
		if _, err := time.LoadLocation(out.App.Timezone); err != nil {
			res.addErr("app.timezone %q is not a known time zone", out.App.Timezone)
		}
	}

	switch out.Store.Driver {
	case "sqlite":
	case "postgres":
		if strings.TrimSpace(out.Store.PostgresURL) == "" {
			res.addErr("store.postgres_url is required when store.driver=postgres (or set AUDITTRACK_POSTGRES_URL)")
		}
	default:
		res.addErr("store.driver must be sqlite or postgres, got %q", out.Store.Driver)
	}

	if _, _, err := llm.ParseModel(out.Generation.Model); err != nil {
		res.addErr("generation.model: %v", err)
	}
	if out.Generation.RequestsPerMinute < 0 {
		res.addErr("generation.requests_per_minute must be > 0")
	} else if out.Generation.RequestsPerMinute > 60 {
		res.addWarn("generation.requests_per_minute is high (%d) and may exceed provider quotas.", out.Generation.RequestsPerMinute)
	}
	if out.Generation.TimeoutSeconds < 0 {
		res.addErr("generation.timeout_seconds must be > 0")
	}

	if out.Deadlines.DefaultDays < 0 {
		res.addErr("deadlines.default_days must be > 0")
	}
	if out.Deadlines.SweepSeconds < 0 {
		res.addErr("deadlines.sweep_seconds must be > 0")
	} else if out.Deadlines.SweepSeconds < 60 {
		res.addWarn("deadlines.sweep_seconds is very low (%d).", out.Deadlines.SweepSeconds)
	}

	// email required fields if enabled (password not required here; it's in keychain)
	if out.Email.Enabled {
		if strings.TrimSpace(out.Email.IMAPHost) == "" {
			res.addErr("email.imap_host is required when email.enabled=true")
		}
		if out.Email.IMAPPort == 0 {
			res.addErr("email.imap_port is required when email.enabled=true")
		}
		if strings.TrimSpace(out.Email.Username) == "" {
			res.addErr("email.username is required when email.enabled=true")
		}
		if strings.TrimSpace(out.Email.From) == "" {
			res.addWarn("email.from is empty; drafts will use email.username as sender.")
		}
	}

	return out, res
}
