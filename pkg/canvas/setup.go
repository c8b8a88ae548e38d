package canvas

import (
	"fmt"
	"net/http"

	"github.com/randalmurphal/chatcanvas/pkg/canvas/config"
	"github.com/randalmurphal/chatcanvas/pkg/canvas/llm"
	"github.com/randalmurphal/chatcanvas/pkg/canvas/store"
)

// Open builds a Canvas from configuration: the store selected by
// StorePath (SQLite when set, in-memory otherwise) and the completion
// client selected by Provider. The caller owns the returned store and
// must close it when done.
//
// Extra options are applied after the configuration, so they override it.
func Open(cfg config.Config, opts ...Option) (*Canvas, store.Store, error) {
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	var st store.Store
	if cfg.StorePath != "" {
		sq, err := store.NewSQLiteStore(cfg.StorePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open store: %w", err)
		}
		st = sq
	} else {
		st = store.NewMemoryStore()
	}

	client, err := newClient(cfg)
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	allOpts := append([]Option{WithConfig(cfg)}, opts...)
	return New(st, client, allOpts...), st, nil
}

// newClient builds the completion client for the configured provider.
func newClient(cfg config.Config) (llm.Client, error) {
	httpc := &http.Client{Timeout: cfg.RequestTimeout.Std()}

	switch cfg.Provider {
	case "openrouter":
		opts := []llm.Option{llm.WithHTTPClient(httpc)}
		if cfg.BaseURL != "" {
			opts = append(opts, llm.WithBaseURL(cfg.BaseURL))
		}
		return llm.NewOpenRouter(opts...), nil
	case "gemini":
		opts := []llm.GeminiOption{llm.WithGeminiHTTPClient(httpc)}
		if cfg.BaseURL != "" {
			opts = append(opts, llm.WithGeminiBaseURL(cfg.BaseURL))
		}
		return llm.NewGemini(opts...), nil
	}
	return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
}
