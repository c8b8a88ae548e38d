package observability

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, &buf
}

func TestEnrichLogger(t *testing.T) {
	logger, buf := newTestLogger()

	enriched := EnrichLogger(logger, "alice", "node-1")
	enriched.Info("hello")

	out := buf.String()
	assert.Contains(t, out, "user=alice")
	assert.Contains(t, out, "node_id=node-1")
}

func TestLogBranch(t *testing.T) {
	logger, buf := newTestLogger()

	LogBranch(logger, "root", "child", 4)

	out := buf.String()
	assert.Contains(t, out, "node branched")
	assert.Contains(t, out, "parent_id=root")
	assert.Contains(t, out, "child_id=child")
	assert.Contains(t, out, "start_index=4")
}

func TestLogSendLifecycle(t *testing.T) {
	logger, buf := newTestLogger()

	LogSendStart(logger, "node-1", "google/gemini-pro", 3)
	LogSendComplete(logger, "node-1", 152.4)
	LogSendError(logger, "node-1", errors.New("rate limit"))

	out := buf.String()
	assert.Contains(t, out, "send starting")
	assert.Contains(t, out, "history_len=3")
	assert.Contains(t, out, "send completed")
	assert.Contains(t, out, "send failed")
	assert.Contains(t, out, "rate limit")
}

func TestLogSnapshot(t *testing.T) {
	logger, buf := newTestLogger()

	LogSnapshot(logger, "alice", 512, 3)
	LogSnapshotError(logger, "alice", "save", errors.New("disk full"))
	LogLoadDiscard(logger, "alice", errors.New("bad json"))

	out := buf.String()
	assert.Contains(t, out, "snapshot saved")
	assert.Contains(t, out, "node_count=3")
	assert.Contains(t, out, "snapshot failed")
	assert.Contains(t, out, "discarding malformed snapshot")
}

func TestLoggers_NilSafe(t *testing.T) {
	// Every helper tolerates a nil logger.
	assert.Nil(t, EnrichLogger(nil, "alice", "node-1"))
	LogBranch(nil, "a", "b", 0)
	LogSendStart(nil, "n", "m", 0)
	LogSendComplete(nil, "n", 0)
	LogSendError(nil, "n", errors.New("x"))
	LogSnapshot(nil, "u", 0, 0)
	LogSnapshotError(nil, "u", "save", errors.New("x"))
	LogLoadDiscard(nil, "u", errors.New("x"))
}

func TestTimedOperation(t *testing.T) {
	done := TimedOperation()
	assert.GreaterOrEqual(t, done(), float64(0))
}
