package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"audittrack-engine/internal/config"
	"audittrack-engine/internal/llm"
)

const (
	// “Service” groups the app's secrets in the OS keychain.
	KeyringService = "audittrack"
)

var ErrNotFound = errors.New("secret not found")

// APIKeyAccount is the keychain account holding a generation provider's key.
func APIKeyAccount(provider string) string {
	return "audittrack:generation:" + strings.ToLower(strings.TrimSpace(provider))
}

func IMAPKeyringAccount(cfg config.EmailConfig) string {
	return fmt.Sprintf(
		"audittrack:imap:%s@%s",
		cfg.Username,
		cfg.IMAPHost,
	)
}

func get(account string) (string, error) {
	if strings.TrimSpace(account) == "" {
		return "", errors.New("keyring account name is empty")
	}
	v, err := keyring.Get(KeyringService, account)
	if errors.Is(err, keyring.ErrNotFound) || (err == nil && strings.TrimSpace(v) == "") {
		return "", ErrNotFound
	}
	return v, err
}

func set(account, value string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("secret is empty")
	}
	return keyring.Set(KeyringService, account, value)
}

func del(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	err := keyring.Delete(KeyringService, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

func GetAPIKey(provider string) (string, error)      { return get(APIKeyAccount(provider)) }
func SetAPIKey(provider, key string) error           { return set(APIKeyAccount(provider), key) }
func DeleteAPIKey(provider string) error             { return del(APIKeyAccount(provider)) }
func GetIMAPPassword(account string) (string, error) { return get(account) }
func SetIMAPPassword(account, password string) error { return set(account, password) }
func DeleteIMAPPassword(account string) error        { return del(account) }

func HasAPIKey(provider string) bool {
	_, err := GetAPIKey(provider)
	return err == nil
}

// APIKeys looks a provider key up in the keychain first, then the environment.
func APIKeys() llm.KeySource {
	return func(provider string) string {
		if k, err := GetAPIKey(provider); err == nil {
			return k
		}
		return llm.EnvKey(provider)
	}
}
