package llm

import (
	"context"
	"fmt"
	"strings"
)

// geminiBaseURL is a var to allow test overrides via httptest.
var geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

func SetGeminiBaseURL(u string) { geminiBaseURL = u }

type geminiProvider struct {
	model  string
	apiKey string
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  struct {
		Temperature     *float64 `json:"temperature,omitempty"`
		MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	ModelVersion string `json:"modelVersion"`
	Error        *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (p *geminiProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}
	var body geminiRequest
	if req.SystemPrompt != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.SystemPrompt}}}
	}
	body.Contents = []geminiContent{{Role: "user", Parts: []geminiPart{{Text: req.UserPrompt}}}}
	body.GenerationConfig.MaxOutputTokens = maxTokens(req)
	body.GenerationConfig.Temperature = temperature(req)

	var gr geminiResponse
	err := call{
		provider: "gemini",
		url:      fmt.Sprintf("%s/%s:generateContent", strings.TrimRight(geminiBaseURL, "/"), model),
		header:   map[string]string{"x-goog-api-key": p.apiKey},
		body:     body,
	}.do(ctx, &gr, func() (string, string) {
		if gr.Error == nil {
			return "", ""
		}
		return gr.Error.Status, gr.Error.Message
	})
	if err != nil {
		return nil, err
	}

	// first candidate with text wins
	var content strings.Builder
	finish := ""
	for _, c := range gr.Candidates {
		for _, part := range c.Content.Parts {
			content.WriteString(part.Text)
		}
		finish = c.FinishReason
		if content.Len() > 0 {
			break
		}
	}
	if content.Len() == 0 {
		return nil, fmt.Errorf("gemini: no text in response (finishReason=%q, %d candidates)", finish, len(gr.Candidates))
	}
	used := gr.ModelVersion
	if used == "" {
		used = model
	}
	return &Response{Content: content.String(), Model: "gemini:" + used}, nil
}
