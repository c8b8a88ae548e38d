package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultGeminiBaseURL is the Generative Language API root.
const DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// defaultGeminiModels is the static catalog for the Gemini backend.
// The API has no authenticated catalog endpoint worth the round trip
// for this use case, so the list is fixed.
var defaultGeminiModels = []ModelInfo{
	{ID: "gemini-3-flash-preview", Name: "Gemini 3 Flash", ContextLength: 1000000, Pricing: ModelPricing{Prompt: "0", Completion: "0"}},
	{ID: "gemini-3-pro-preview", Name: "Gemini 3 Pro", ContextLength: 2000000, Pricing: ModelPricing{Prompt: "0", Completion: "0"}},
	{ID: "gemini-flash-lite-latest", Name: "Gemini Flash Lite", ContextLength: 1000000, Pricing: ModelPricing{Prompt: "0", Completion: "0"}},
}

// Gemini implements Client against the Generative Language API.
//
// Role mapping differs from the OpenAI-compatible wire format: the
// assistant role is renamed to "model", and a leading system message
// is lifted out of the conversation onto the systemInstruction field.
type Gemini struct {
	baseURL string
	httpc   *http.Client
}

// GeminiOption configures Gemini.
type GeminiOption func(*Gemini)

// NewGemini creates a new Gemini client.
func NewGemini(opts ...GeminiOption) *Gemini {
	c := &Gemini{
		baseURL: DefaultGeminiBaseURL,
		httpc:   &http.Client{Timeout: 2 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithGeminiBaseURL overrides the API root. Used in tests.
func WithGeminiBaseURL(url string) GeminiOption {
	return func(c *Gemini) { c.baseURL = url }
}

// WithGeminiHTTPClient sets a custom HTTP client.
func WithGeminiHTTPClient(hc *http.Client) GeminiOption {
	return func(c *Gemini) { c.httpc = hc }
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete implements Client.
func (c *Gemini) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if req.Credential == "" {
		return nil, NewError("complete", ErrMissingCredential, false)
	}

	start := time.Now()
	body := buildGeminiRequest(req.Messages)

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, NewError("complete", fmt.Errorf("encode request: %w", err), false)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		c.baseURL, url.PathEscape(req.Model), url.QueryEscape(req.Credential))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return nil, NewError("complete", fmt.Errorf("build request: %w", err), false)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, NewError("complete", ctx.Err(), false)
		}
		return nil, NewError("complete", err, isRetryableMessage(err.Error()))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewError("complete", fmt.Errorf("read response: %w", err), false)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, NewError("complete", fmt.Errorf("decode response: %w", err), false)
	}

	if resp.StatusCode != http.StatusOK {
		msg := parsed.Error.Message
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		return nil, NewError("complete", fmt.Errorf("%s", msg), retryableStatus(resp.StatusCode))
	}

	out := &CompletionResponse{
		Model:    req.Model,
		Duration: time.Since(start),
		Usage: TokenUsage{
			InputTokens:  parsed.UsageMetadata.PromptTokenCount,
			OutputTokens: parsed.UsageMetadata.CandidatesTokenCount,
			TotalTokens:  parsed.UsageMetadata.TotalTokenCount,
		},
	}
	if len(parsed.Candidates) > 0 {
		cand := parsed.Candidates[0]
		out.FinishReason = cand.FinishReason
		for _, part := range cand.Content.Parts {
			out.Content += part.Text
		}
	}
	return out, nil
}

// buildGeminiRequest maps conversation turns to the Gemini wire format.
func buildGeminiRequest(msgs []Message) geminiRequest {
	var req geminiRequest
	for _, m := range msgs {
		if m.Role == RoleSystem {
			if req.SystemInstruction == nil {
				req.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: m.Content}}}
			}
			continue
		}
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		req.Contents = append(req.Contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: m.Content}},
		})
	}
	return req
}

// Models implements Client. The Gemini catalog is static.
func (c *Gemini) Models(ctx context.Context, credential string) ([]ModelInfo, error) {
	return defaultGeminiModels, nil
}
