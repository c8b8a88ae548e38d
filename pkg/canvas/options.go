package canvas

import (
	"log/slog"

	"github.com/randalmurphal/chatcanvas/pkg/canvas/config"
	"github.com/randalmurphal/chatcanvas/pkg/canvas/event"
	"github.com/randalmurphal/chatcanvas/pkg/canvas/observability"
)

// CredentialFunc resolves the completion credential for a user key.
// Returning "" means no credential is configured.
type CredentialFunc func(user string) string

// Option configures a Canvas.
type Option func(*Canvas)

// WithMaxNodes overrides the live-node cap (default 10).
func WithMaxNodes(n int) Option {
	return func(c *Canvas) {
		if n > 0 {
			c.maxNodes = n
		}
	}
}

// WithDefaultModel sets the model assigned to fresh root nodes.
func WithDefaultModel(model string) Option {
	return func(c *Canvas) {
		if model != "" {
			c.defaultModel = model
		}
	}
}

// WithLayout overrides the placement geometry.
func WithLayout(l Layout) Option {
	return func(c *Canvas) { c.layout = l }
}

// WithConfig applies the cap, default model, and layout geometry from
// a loaded configuration. Later options still override.
func WithConfig(cfg config.Config) Option {
	return func(c *Canvas) {
		if cfg.MaxNodes > 0 {
			c.maxNodes = cfg.MaxNodes
		}
		if cfg.DefaultModel != "" {
			c.defaultModel = cfg.DefaultModel
		}
		l := DefaultLayout()
		if cfg.Layout.NodeWidth > 0 {
			l.NodeWidth = cfg.Layout.NodeWidth
		}
		if cfg.Layout.NodeHeight > 0 {
			l.NodeHeight = cfg.Layout.NodeHeight
		}
		if cfg.Layout.Gap > 0 {
			l.Gap = cfg.Layout.Gap
		}
		if cfg.Layout.BranchOffsetX > 0 {
			l.BranchOffsetX = cfg.Layout.BranchOffsetX
		}
		if cfg.Layout.BranchOffsetY > 0 {
			l.BranchOffsetY = cfg.Layout.BranchOffsetY
		}
		if cfg.Layout.ProximityX > 0 {
			l.ProximityX = cfg.Layout.ProximityX
		}
		if cfg.Layout.MaxAttempts > 0 {
			l.MaxAttempts = cfg.Layout.MaxAttempts
		}
		c.layout = l
	}
}

// WithCredentials sets the credential resolver used by Send.
func WithCredentials(fn CredentialFunc) Option {
	return func(c *Canvas) { c.credential = fn }
}

// WithLogger enables structured logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Canvas) { c.logger = logger }
}

// WithMetrics enables metrics recording.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(c *Canvas) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithSpanManager enables tracing.
func WithSpanManager(s observability.SpanManager) Option {
	return func(c *Canvas) {
		if s != nil {
			c.spans = s
		}
	}
}

// WithBus attaches a mutation event bus. Events are published
// synchronously after each mutation, in program order.
func WithBus(b *event.Bus) Option {
	return func(c *Canvas) { c.bus = b }
}
