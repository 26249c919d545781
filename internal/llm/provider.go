// Package llm talks to hosted text-generation APIs.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// sharedHTTPClient is used by all providers.
var sharedHTTPClient = &http.Client{
	Timeout: 2 * time.Minute,
}

const defaultMaxTokens = 2048

// Request holds the parameters for a completion call.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
	MaxTokens    int
	// Model overrides the provider's configured model when non-empty.
	Model string
}

type Response struct {
	Content string
	Model   string
}

type Provider interface {
	Complete(ctx context.Context, req *Request) (*Response, error)
}

var ErrNoAPIKey = errors.New("api key not configured")

// KeySource returns the API key for a provider name, or "".
type KeySource func(provider string) string

// EnvKey reads GEMINI_API_KEY or ANTHROPIC_API_KEY. GOOGLE_API_KEY is also
// accepted for gemini.
func EnvKey(provider string) string {
	switch provider {
	case "gemini":
		if k := os.Getenv("GEMINI_API_KEY"); k != "" {
			return k
		}
		return os.Getenv("GOOGLE_API_KEY")
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	}
	return ""
}

// NewProvider parses a "provider:model" string, e.g.
// "gemini:gemini-3-flash-preview", and resolves its key through keys.
// A missing key yields an error wrapping ErrNoAPIKey.
func NewProvider(providerModel string, keys KeySource) (Provider, error) {
	name, model, err := ParseModel(providerModel)
	if err != nil {
		return nil, err
	}
	if keys == nil {
		keys = EnvKey
	}
	apiKey := strings.TrimSpace(keys(name))
	if apiKey == "" {
		return nil, fmt.Errorf("%s: %w", name, ErrNoAPIKey)
	}
	switch name {
	case "gemini":
		return &geminiProvider{model: model, apiKey: apiKey}, nil
	case "anthropic":
		return &anthropicProvider{model: model, apiKey: apiKey}, nil
	}
	return nil, fmt.Errorf("unknown provider %q", name)
}

// ParseModel splits and checks a "provider:model" string.
func ParseModel(providerModel string) (provider, model string, err error) {
	parts := strings.SplitN(strings.TrimSpace(providerModel), ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid model format %q: expected provider:model (e.g. gemini:gemini-3-flash-preview)", providerModel)
	}
	switch parts[0] {
	case "gemini", "anthropic":
		return parts[0], parts[1], nil
	}
	return "", "", fmt.Errorf("unknown provider %q: supported providers are gemini, anthropic", parts[0])
}

func maxTokens(req *Request) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return defaultMaxTokens
}

// temperature is nil when unset so the provider default applies.
func temperature(req *Request) *float64 {
	if req.Temperature == 0 {
		return nil
	}
	t := req.Temperature
	return &t
}

// truncate limits a string to maxLen runes, appending "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
