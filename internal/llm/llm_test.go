package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func staticKey(k string) KeySource {
	return func(string) string { return k }
}

func TestParseModel(t *testing.T) {
	cases := []struct {
		in       string
		provider string
		model    string
		wantErr  bool
	}{
		{"gemini:gemini-3-flash-preview", "gemini", "gemini-3-flash-preview", false},
		{"anthropic:claude-sonnet-4-5", "anthropic", "claude-sonnet-4-5", false},
		{"gemini", "", "", true},
		{"gemini:", "", "", true},
		{"openai:gpt-4o", "", "", true},
	}
	for _, tc := range cases {
		p, m, err := ParseModel(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseModel(%q) err = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if p != tc.provider || m != tc.model {
			t.Errorf("ParseModel(%q) = %q, %q", tc.in, p, m)
		}
	}
}

func TestNewProvider_MissingKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	_, err := NewProvider("gemini:gemini-3-flash-preview", nil)
	if !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestEnvKey_GeminiFallsBackToGoogle(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "g-key")
	if got := EnvKey("gemini"); got != "g-key" {
		t.Errorf("EnvKey = %q", got)
	}
}

func TestGemini_Complete(t *testing.T) {
	var gotPath, gotKey string
	var gotBody geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Konu: X\n"},{"text":"Merhaba"}]}}],"modelVersion":"gemini-3-flash-preview"}`))
	}))
	defer srv.Close()
	old := geminiBaseURL
	SetGeminiBaseURL(srv.URL)
	defer SetGeminiBaseURL(old)

	p, err := NewProvider("gemini:gemini-3-flash-preview", staticKey("k1"))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := p.Complete(context.Background(), &Request{SystemPrompt: "sys", UserPrompt: "user"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Content != "Konu: X\nMerhaba" {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.Model != "gemini:gemini-3-flash-preview" {
		t.Errorf("model = %q", resp.Model)
	}
	if gotPath != "/gemini-3-flash-preview:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "k1" {
		t.Errorf("api key header = %q", gotKey)
	}
	if gotBody.SystemInstruction == nil || gotBody.SystemInstruction.Parts[0].Text != "sys" {
		t.Errorf("system instruction not sent: %+v", gotBody.SystemInstruction)
	}
	if gotBody.GenerationConfig.MaxOutputTokens != defaultMaxTokens {
		t.Errorf("max tokens = %d", gotBody.GenerationConfig.MaxOutputTokens)
	}
}

func TestGemini_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`))
	}))
	defer srv.Close()
	old := geminiBaseURL
	SetGeminiBaseURL(srv.URL)
	defer SetGeminiBaseURL(old)

	p, _ := NewProvider("gemini:m", staticKey("bad"))
	_, err := p.Complete(context.Background(), &Request{UserPrompt: "x"})
	if err == nil || !strings.Contains(err.Error(), "PERMISSION_DENIED") {
		t.Fatalf("expected permission error, got %v", err)
	}
}

func TestAnthropic_Complete(t *testing.T) {
	var gotVersion string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotVersion = r.Header.Get("anthropic-version")
		_, _ = w.Write([]byte(`{"model":"claude-x","content":[{"type":"text","text":"ok"}]}`))
	}))
	defer srv.Close()
	old := anthropicAPIURL
	SetAnthropicAPIURL(srv.URL)
	defer SetAnthropicAPIURL(old)

	p, err := NewProvider("anthropic:claude-x", staticKey("k"))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := p.Complete(context.Background(), &Request{UserPrompt: "hi"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Content != "ok" || resp.Model != "anthropic:claude-x" {
		t.Errorf("resp = %+v", resp)
	}
	if gotVersion != anthropicVersion {
		t.Errorf("anthropic-version = %q", gotVersion)
	}
}

func TestAnthropic_ModelOverrideAndErrorEnvelope(t *testing.T) {
	var gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body anthropicRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotModel = body.Model
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer srv.Close()
	old := anthropicAPIURL
	SetAnthropicAPIURL(srv.URL)
	defer SetAnthropicAPIURL(old)

	p, _ := NewProvider("anthropic:claude-x", staticKey("k"))
	_, err := p.Complete(context.Background(), &Request{UserPrompt: "hi", Model: "claude-y"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Code != "rate_limit_error" || apiErr.Message != "slow down" || !apiErr.Retryable() {
		t.Errorf("api error = %+v", apiErr)
	}
	if gotModel != "claude-y" {
		t.Errorf("model sent = %q", gotModel)
	}
}

func TestNonJSONErrorBodyIsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	old := geminiBaseURL
	SetGeminiBaseURL(srv.URL)
	defer SetGeminiBaseURL(old)

	p, _ := NewProvider("gemini:m", staticKey("k"))
	_, err := p.Complete(context.Background(), &Request{UserPrompt: "x"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.HTTPStatus != http.StatusServiceUnavailable || !apiErr.Retryable() {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(apiErr.Message, "upstream down") {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestEmptyContentIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"model":"claude-x","stop_reason":"max_tokens","content":[]}`))
	}))
	defer srv.Close()
	old := anthropicAPIURL
	SetAnthropicAPIURL(srv.URL)
	defer SetAnthropicAPIURL(old)

	p, _ := NewProvider("anthropic:claude-x", staticKey("k"))
	_, err := p.Complete(context.Background(), &Request{UserPrompt: "x"})
	if err == nil || !strings.Contains(err.Error(), "max_tokens") {
		t.Errorf("err = %v", err)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("çğüşöı", 3); got != "çğü..." {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("abc", 5); got != "abc" {
		t.Errorf("truncate = %q", got)
	}
}
