package llm

import (
	"context"
	"fmt"
	"strings"
)

// anthropicAPIURL is a var to allow test overrides via httptest.
var anthropicAPIURL = "https://api.anthropic.com/v1/messages"

func SetAnthropicAPIURL(u string) { anthropicAPIURL = u }

const anthropicVersion = "2023-06-01"

type anthropicProvider struct {
	model  string
	apiKey string
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature *float64           `json:"temperature,omitempty"`
}

type anthropicResponse struct {
	Model      string `json:"model"`
	StopReason string `json:"stop_reason"`
	Content    []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p *anthropicProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}
	body := anthropicRequest{
		Model:       model,
		MaxTokens:   maxTokens(req),
		System:      req.SystemPrompt,
		Messages:    []anthropicMessage{{Role: "user", Content: req.UserPrompt}},
		Temperature: temperature(req),
	}

	var ar anthropicResponse
	err := call{
		provider: "anthropic",
		url:      anthropicAPIURL,
		header:   map[string]string{"x-api-key": p.apiKey, "anthropic-version": anthropicVersion},
		body:     body,
	}.do(ctx, &ar, func() (string, string) {
		if ar.Error == nil {
			return "", ""
		}
		return ar.Error.Type, ar.Error.Message
	})
	if err != nil {
		return nil, err
	}

	var content strings.Builder
	for _, block := range ar.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}
	if content.Len() == 0 {
		return nil, fmt.Errorf("anthropic: no text in response (stop_reason=%q, %d blocks)", ar.StopReason, len(ar.Content))
	}
	used := ar.Model
	if used == "" {
		used = model
	}
	return &Response{Content: content.String(), Model: "anthropic:" + used}, nil
}
