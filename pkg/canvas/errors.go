package canvas

import (
	"errors"
	"fmt"
)

// Sentinel errors for canvas mutations.
var (
	// ErrRootExists indicates CreateRoot was called on a non-empty canvas.
	ErrRootExists = errors.New("canvas already has nodes")

	// ErrNodeCapReached indicates the live-node cap rejected a branch.
	ErrNodeCapReached = errors.New("maximum number of nodes reached")

	// ErrNodeNotFound indicates an operation referenced a missing node.
	// State is never modified when this is returned.
	ErrNodeNotFound = errors.New("node not found")

	// ErrHasChildren indicates a delete was rejected because the node
	// has branches; deleting it would leave dangling parent references.
	ErrHasChildren = errors.New("node has children")
)

// Sentinel errors for the send protocol.
var (
	// ErrEmptyMessage indicates a blank (after trimming) submission.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrNodeBusy indicates the node already has a completion in
	// flight. The duplicate submission appends nothing.
	ErrNodeBusy = errors.New("node is already thinking")

	// ErrMissingCredential indicates no API key is configured for the
	// current user. Detected before any state transition.
	ErrMissingCredential = errors.New("no api credential configured")
)

// SendError wraps a completion failure with the node it happened on.
// The user's message stays appended; only the thinking flag is cleared.
type SendError struct {
	// NodeID is the node whose completion failed.
	NodeID string
	// Err is the underlying provider error.
	Err error
}

// Error implements the error interface.
func (e *SendError) Error() string {
	return fmt.Sprintf("send on node %s: %v", e.NodeID, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *SendError) Unwrap() error {
	return e.Err
}
