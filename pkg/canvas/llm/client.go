// Package llm provides the completion-provider boundary for the canvas:
// a Client interface, an OpenRouter HTTP implementation, and typed
// errors with retryable classification.
package llm

import "context"

// Client is the completion-provider interface consumed by the canvas.
// Implementations must be safe for concurrent use; the canvas issues
// one in-flight completion per node but many nodes may be in flight
// at once.
type Client interface {
	// Complete sends the conversation to the provider and returns the
	// assistant's reply. The call is the only suspension point in the
	// canvas core; cancellation and deadlines are the caller's concern
	// via ctx.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Models fetches the provider's model catalog. On a missing
	// credential or transport failure it returns a small static
	// default list rather than an error, so callers always have a
	// usable catalog.
	Models(ctx context.Context, credential string) ([]ModelInfo, error)
}
