// Package observability provides structured logging, metrics, and
// tracing for the canvas.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds canvas context to a logger.
// Returns a new logger with user and node_id fields.
func EnrichLogger(logger *slog.Logger, user, nodeID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("user", user),
		slog.String("node_id", nodeID),
	)
}

// LogBranch logs a successful branch operation.
func LogBranch(logger *slog.Logger, parentID, childID string, startIndex int) {
	if logger == nil {
		return
	}
	logger.Debug("node branched",
		slog.String("parent_id", parentID),
		slog.String("child_id", childID),
		slog.Int("start_index", startIndex),
	)
}

// LogSendStart logs the start of a send on a node.
func LogSendStart(logger *slog.Logger, nodeID, model string, historyLen int) {
	if logger == nil {
		return
	}
	logger.Debug("send starting",
		slog.String("node_id", nodeID),
		slog.String("model", model),
		slog.Int("history_len", historyLen),
	)
}

// LogSendComplete logs a successful completion exchange.
func LogSendComplete(logger *slog.Logger, nodeID string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("send completed",
		slog.String("node_id", nodeID),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogSendError logs a completion failure.
func LogSendError(logger *slog.Logger, nodeID string, err error) {
	if logger == nil {
		return
	}
	logger.Error("send failed",
		slog.String("node_id", nodeID),
		slog.String("error", err.Error()),
	)
}

// LogSnapshot logs a persisted snapshot.
func LogSnapshot(logger *slog.Logger, user string, sizeBytes, nodeCount int) {
	if logger == nil {
		return
	}
	logger.Debug("snapshot saved",
		slog.String("user", user),
		slog.Int("size_bytes", sizeBytes),
		slog.Int("node_count", nodeCount),
	)
}

// LogSnapshotError logs a persistence failure (non-fatal).
func LogSnapshotError(logger *slog.Logger, user, op string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("snapshot failed",
		slog.String("user", user),
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}

// LogLoadDiscard logs a malformed snapshot being discarded on load.
func LogLoadDiscard(logger *slog.Logger, user string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("discarding malformed snapshot",
		slog.String("user", user),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
