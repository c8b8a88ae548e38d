package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultBaseURL is the OpenRouter API root.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// DefaultModels is the static catalog returned when no credential is
// configured or the catalog fetch fails. Keeps the UI usable instead
// of empty.
var DefaultModels = []ModelInfo{
	{ID: "google/gemini-pro", Name: "Google Gemini Pro", ContextLength: 32000, Pricing: ModelPricing{Prompt: "0", Completion: "0"}},
	{ID: "openai/gpt-3.5-turbo", Name: "OpenAI GPT-3.5 Turbo", ContextLength: 16385, Pricing: ModelPricing{Prompt: "0", Completion: "0"}},
	{ID: "mistralai/mistral-7b-instruct", Name: "Mistral 7B Instruct", ContextLength: 32768, Pricing: ModelPricing{Prompt: "0", Completion: "0"}},
}

// OpenRouter implements Client against the OpenRouter HTTP API.
type OpenRouter struct {
	baseURL string
	httpc   *http.Client
	referer string
	title   string
}

// Option configures OpenRouter.
type Option func(*OpenRouter)

// NewOpenRouter creates a new OpenRouter client.
func NewOpenRouter(opts ...Option) *OpenRouter {
	c := &OpenRouter{
		baseURL: DefaultBaseURL,
		httpc:   &http.Client{Timeout: 2 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithBaseURL overrides the API root. Used in tests.
func WithBaseURL(url string) Option {
	return func(c *OpenRouter) { c.baseURL = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *OpenRouter) { c.httpc = hc }
}

// WithTimeout sets the request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *OpenRouter) { c.httpc.Timeout = d }
}

// WithReferer sets the HTTP-Referer and X-Title attribution headers
// OpenRouter uses for app rankings.
func WithReferer(referer, title string) Option {
	return func(c *OpenRouter) {
		c.referer = referer
		c.title = title
	}
}

// wire types for the chat/completions endpoint.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		FinishReason string `json:"finish_reason"`
		Message      struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// Complete implements Client.
func (c *OpenRouter) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if req.Credential == "" {
		return nil, NewError("complete", ErrMissingCredential, false)
	}

	start := time.Now()

	body := chatRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Messages:    buildWireMessages(req.Messages),
	}

	var resp chatResponse
	if err := c.post(ctx, "/chat/completions", req.Credential, body, &resp); err != nil {
		return nil, err
	}

	out := &CompletionResponse{
		Model:    resp.Model,
		Duration: time.Since(start),
		Usage: TokenUsage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}
	// An empty choices list yields an empty reply, not an error.
	if len(resp.Choices) > 0 {
		out.Content = resp.Choices[0].Message.Content
		out.FinishReason = resp.Choices[0].FinishReason
	}
	return out, nil
}

// buildWireMessages maps conversation turns to the wire format.
// A single leading system message is kept first as the instruction
// channel; any other system turns are passed through as-is.
func buildWireMessages(msgs []Message) []wireMessage {
	wire := make([]wireMessage, 0, len(msgs))
	for _, m := range msgs {
		wire = append(wire, wireMessage{Role: string(m.Role), Content: m.Content})
	}
	return wire
}

// Models implements Client.
func (c *OpenRouter) Models(ctx context.Context, credential string) ([]ModelInfo, error) {
	if credential == "" {
		return DefaultModels, nil
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return DefaultModels, nil
	}
	httpReq.Header.Set("Authorization", "Bearer "+credential)

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return DefaultModels, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return DefaultModels, nil
	}

	var payload struct {
		Data []ModelInfo `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return DefaultModels, nil
	}
	if len(payload.Data) == 0 {
		return DefaultModels, nil
	}
	return payload.Data, nil
}

// post issues a JSON POST and decodes the response into out.
func (c *OpenRouter) post(ctx context.Context, path, credential string, in, out any) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return NewError("complete", fmt.Errorf("encode request: %w", err), false)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return NewError("complete", fmt.Errorf("build request: %w", err), false)
	}
	httpReq.Header.Set("Authorization", "Bearer "+credential)
	httpReq.Header.Set("Content-Type", "application/json")
	if c.referer != "" {
		httpReq.Header.Set("HTTP-Referer", c.referer)
		httpReq.Header.Set("X-Title", c.title)
	}

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return NewError("complete", ctx.Err(), false)
		}
		return NewError("complete", err, isRetryableMessage(err.Error()))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return NewError("complete", fmt.Errorf("read response: %w", err), false)
	}

	if resp.StatusCode != http.StatusOK {
		msg := providerMessage(data)
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		return NewError("complete", fmt.Errorf("%s", msg), retryableStatus(resp.StatusCode))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return NewError("complete", fmt.Errorf("decode response: %w", err), false)
	}
	return nil
}

// providerMessage extracts the human-readable message from an error body.
func providerMessage(data []byte) string {
	var er errorResponse
	if err := json.Unmarshal(data, &er); err != nil {
		return ""
	}
	return er.Error.Message
}
