package canvas

import (
	"github.com/google/uuid"

	"github.com/randalmurphal/chatcanvas/pkg/canvas/llm"
)

// Node is a single branchable conversation thread positioned on the
// canvas. Field names in the JSON form are the persisted snapshot
// layout and must stay stable.
type Node struct {
	// ID uniquely identifies the node. Immutable.
	ID string `json:"id"`

	// ParentID is the node this one was branched from, or "" for a
	// root node. Set once at creation.
	ParentID string `json:"parentId,omitempty"`

	// X, Y are canvas-space coordinates. Mutated only by drag.
	X float64 `json:"x"`
	Y float64 `json:"y"`

	// Model is the selected completion model. Changing it does not
	// affect already-sent messages.
	Model string `json:"model"`

	// Messages is the ordered conversation, append-only. The prefix of
	// length StartIndex is the history copied from the parent at
	// branch time; it is a copy, never shared.
	Messages []llm.Message `json:"messages"`

	// StartIndex is the offset at which this node's own turns begin.
	// 0 for root nodes.
	StartIndex int `json:"startIndex"`

	// IsThinking is true while a completion request is in flight.
	// Transient; reset to false when a snapshot is loaded.
	IsThinking bool `json:"isThinking,omitempty"`
}

// newID allocates a node identifier.
func newID() string {
	return uuid.NewString()
}

// clone returns a deep copy of the node.
func (n *Node) clone() *Node {
	c := *n
	c.Messages = copyMessages(n.Messages)
	return &c
}

// InheritedMessages returns the prefix copied from the parent at
// branch time.
func (n *Node) InheritedMessages() []llm.Message {
	if n.StartIndex > len(n.Messages) {
		return copyMessages(n.Messages)
	}
	return copyMessages(n.Messages[:n.StartIndex])
}

// OwnMessages returns the turns exchanged on this node itself.
func (n *Node) OwnMessages() []llm.Message {
	if n.StartIndex > len(n.Messages) {
		return nil
	}
	return copyMessages(n.Messages[n.StartIndex:])
}

func copyMessages(msgs []llm.Message) []llm.Message {
	if msgs == nil {
		return nil
	}
	out := make([]llm.Message, len(msgs))
	copy(out, msgs)
	return out
}
