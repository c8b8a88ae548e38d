package llm

import "time"

// CompletionRequest configures a completion call.
type CompletionRequest struct {
	// Credential is the API key presented to the provider.
	Credential string `json:"-"`

	// Model is the provider model identifier (e.g. "google/gemini-pro").
	Model string `json:"model,omitempty"`

	// Messages is the ordered conversation history, including the
	// just-submitted user turn. Provider mapping of system turns is
	// implementation-specific: OpenRouter passes them through in-line,
	// Gemini lifts a leading system message onto its instruction
	// channel.
	Messages []Message `json:"messages"`

	// Generation parameters. Zero values are omitted from the wire.
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// Message is a conversation turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Role identifies the message sender.
type Role string

// Standard message roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// CompletionResponse is the output of a completion call.
type CompletionResponse struct {
	Content      string        `json:"content"`
	Model        string        `json:"model"`
	FinishReason string        `json:"finish_reason"`
	Usage        TokenUsage    `json:"usage"`
	Duration     time.Duration `json:"duration"`
}

// TokenUsage tracks token consumption.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// ModelInfo describes one entry of the provider's model catalog.
type ModelInfo struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	ContextLength int          `json:"context_length"`
	Pricing       ModelPricing `json:"pricing"`
}

// ModelPricing carries per-token prices as decimal strings, matching
// the provider's wire format.
type ModelPricing struct {
	Prompt     string `json:"prompt"`
	Completion string `json:"completion"`
}
