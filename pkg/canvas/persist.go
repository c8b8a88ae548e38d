package canvas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/randalmurphal/chatcanvas/pkg/canvas/observability"
	"github.com/randalmurphal/chatcanvas/pkg/canvas/store"
)

// snapshotKeyPrefix namespaces per-user canvas snapshots in the store.
const snapshotKeyPrefix = "canvasNodes_"

// legacySnapshotKey is the un-namespaced key older snapshots lived
// under; Clear removes it alongside the user's key.
const legacySnapshotKey = "canvasNodes"

// snapshotKey returns the store key for a user's canvas.
func snapshotKey(user string) string {
	return snapshotKeyPrefix + user
}

// encodeNodes serializes the node collection as a JSON array.
func encodeNodes(nodes []*Node) ([]byte, error) {
	if nodes == nil {
		nodes = []*Node{}
	}
	data, err := json.Marshal(nodes)
	if err != nil {
		return nil, fmt.Errorf("encode nodes: %w", err)
	}
	return data, nil
}

// decodeNodes parses a snapshot. IsThinking is reset on every node: a
// reload during a pending request must not leave a permanently
// thinking node.
func decodeNodes(data []byte) ([]*Node, error) {
	var nodes []*Node
	if err := json.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("decode nodes: %w", err)
	}
	for _, n := range nodes {
		if n != nil {
			n.IsThinking = false
		}
	}
	return nodes, nil
}

// persistLocked mirrors the current collection to the store. Called
// with the canvas lock held, synchronously after every mutation, so
// persisted state is never more than one mutation stale.
//
// Persistence failures are logged, never propagated: the in-memory
// collection stays authoritative.
func (c *Canvas) persistLocked(ctx context.Context) {
	if c.user == "" || !c.hasLoaded {
		return
	}

	data, err := encodeNodes(c.nodes)
	if err != nil {
		observability.LogSnapshotError(c.logger, c.user, "encode", err)
		return
	}

	if err := c.store.Save(snapshotKey(c.user), data); err != nil {
		observability.LogSnapshotError(c.logger, c.user, "save", err)
		return
	}

	c.metrics.RecordSnapshot(ctx, c.user, int64(len(data)))
	observability.LogSnapshot(c.logger, c.user, len(data), len(c.nodes))
}

// loadLocked replaces the collection with the stored snapshot for the
// current user. Missing or malformed snapshots reset to empty; a
// malformed value is discarded with a log line, never surfaced.
func (c *Canvas) loadLocked() {
	c.nodes = nil

	data, err := c.store.Load(snapshotKey(c.user))
	if errors.Is(err, store.ErrNotFound) {
		return
	}
	if err != nil {
		observability.LogSnapshotError(c.logger, c.user, "load", err)
		return
	}

	nodes, err := decodeNodes(data)
	if err != nil {
		observability.LogLoadDiscard(c.logger, c.user, err)
		return
	}
	c.nodes = nodes
}
