package secrets

import (
	"errors"
	"testing"

	"github.com/zalando/go-keyring"

	"audittrack-engine/internal/config"
)

func TestAPIKeyRoundTrip(t *testing.T) {
	keyring.MockInit()

	if _, err := GetAPIKey("gemini"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := SetAPIKey("gemini", "k-123"); err != nil {
		t.Fatal(err)
	}
	if !HasAPIKey("Gemini") {
		t.Error("provider name should be case-insensitive")
	}
	if got := APIKeys()("gemini"); got != "k-123" {
		t.Errorf("APIKeys = %q", got)
	}
	if err := DeleteAPIKey("gemini"); err != nil {
		t.Fatal(err)
	}
	if err := DeleteAPIKey("gemini"); err != nil {
		t.Errorf("deleting twice should be ok: %v", err)
	}
}

func TestAPIKeys_FallsBackToEnv(t *testing.T) {
	keyring.MockInit()
	t.Setenv("GEMINI_API_KEY", "env-key")
	if got := APIKeys()("gemini"); got != "env-key" {
		t.Errorf("APIKeys = %q", got)
	}
}

func TestSetRejectsEmpty(t *testing.T) {
	keyring.MockInit()
	if err := SetAPIKey("gemini", "  "); err == nil {
		t.Error("empty key accepted")
	}
	if err := SetIMAPPassword("", "pw"); err == nil {
		t.Error("empty account accepted")
	}
}

func TestIMAPKeyringAccount(t *testing.T) {
	got := IMAPKeyringAccount(config.EmailConfig{Username: "a@b.com", IMAPHost: "imap.b.com"})
	if got != "audittrack:imap:a@b.com@imap.b.com" {
		t.Errorf("account = %q", got)
	}
}
