// Package event provides mutation notifications for the canvas.
//
// Unlike a general pub/sub bus, delivery is synchronous inside
// Publish: every mutation the canvas makes is observed in program
// order, matching the persistence ordering guarantee. Handlers must
// therefore be fast and must not call back into the canvas.
package event

import (
	"time"

	"github.com/google/uuid"
)

// Event types published by the canvas.
const (
	TypeNodeCreated     = "node.created"
	TypeNodeBranched    = "node.branched"
	TypeNodeDeleted     = "node.deleted"
	TypeModelChanged    = "node.model_changed"
	TypeNodeMoved       = "node.moved"
	TypeMessageAppended = "message.appended"
	TypeThinkingChanged = "node.thinking"
	TypeCanvasLoaded    = "canvas.loaded"
	TypeCanvasCleared   = "canvas.cleared"
)

// Event describes one canvas mutation.
type Event struct {
	// ID uniquely identifies this event.
	ID string
	// Type is one of the Type* constants.
	Type string
	// User is the key the canvas is persisted under.
	User string
	// NodeID is the affected node, if any.
	NodeID string
	// Time is when the mutation happened.
	Time time.Time
}

// New creates an event with a fresh ID and the current time.
func New(eventType, user, nodeID string) Event {
	return Event{
		ID:     uuid.NewString(),
		Type:   eventType,
		User:   user,
		NodeID: nodeID,
		Time:   time.Now().UTC(),
	}
}

// Handler receives published events.
type Handler func(evt Event)
