package canvas

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/randalmurphal/chatcanvas/pkg/canvas/event"
	"github.com/randalmurphal/chatcanvas/pkg/canvas/llm"
	"github.com/randalmurphal/chatcanvas/pkg/canvas/observability"
	"github.com/randalmurphal/chatcanvas/pkg/canvas/store"
)

// DefaultMaxNodes is the hard cap on live nodes per canvas.
const DefaultMaxNodes = 10

// DefaultModel is assigned to fresh root nodes unless overridden.
const DefaultModel = "google/gemini-pro"

// Canvas is the single source of truth for the node forest of one
// user's canvas. Every mutation is mirrored to the store synchronously
// and, when a bus is attached, published as an event in program order.
//
// Canvas is safe for concurrent use. Sends on distinct nodes proceed
// independently; a second send on a node that is already thinking is
// rejected without side effects.
type Canvas struct {
	mu sync.Mutex

	nodes     []*Node
	user      string
	hasLoaded bool

	maxNodes     int
	defaultModel string
	layout       Layout

	store      store.Store
	client     llm.Client
	credential CredentialFunc
	bus        *event.Bus

	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager

	models []llm.ModelInfo
}

// New creates a Canvas backed by the given store and completion client.
func New(st store.Store, client llm.Client, opts ...Option) *Canvas {
	c := &Canvas{
		maxNodes:     DefaultMaxNodes,
		defaultModel: DefaultModel,
		layout:       DefaultLayout(),
		store:        st,
		client:       client,
		credential:   func(string) string { return "" },
		metrics:      observability.NoopMetrics{},
		spans:        observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SwitchUser loads the canvas persisted under the given user key. A
// missing or malformed snapshot resets to an empty canvas. Thinking
// flags are cleared on load. An empty user resets the canvas and
// suspends persistence.
func (c *Canvas) SwitchUser(ctx context.Context, user string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.user = user
	if user == "" {
		c.nodes = nil
		c.hasLoaded = false
		return
	}

	c.loadLocked()
	// Writes are gated on hasLoaded so a pre-load empty state never
	// clobbers a stored canvas.
	c.hasLoaded = true
	c.publish(event.TypeCanvasLoaded, "")
}

// User returns the current user key.
func (c *Canvas) User() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

// CreateRoot allocates the initial unparented node with the default
// model and empty history. Returns ErrRootExists when the canvas
// already has nodes; the store is reset-then-created, never additive
// at the root.
func (c *Canvas) CreateRoot(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.nodes) > 0 {
		return "", ErrRootExists
	}

	node := &Node{
		ID:    newID(),
		X:     c.layout.InitialX,
		Y:     c.layout.InitialY,
		Model: c.defaultModel,
	}
	c.nodes = append(c.nodes, node)

	c.metrics.RecordMutation(ctx, "create_root")
	c.persistLocked(ctx)
	c.publish(event.TypeNodeCreated, node.ID)
	return node.ID, nil
}

// Branch forks a new node from the given parent. The child gets a deep
// copy of the parent's messages, StartIndex at the parent's current
// message count, the parent's model, and a position chosen by the
// placement engine.
//
// Returns ErrNodeCapReached when the canvas is at its cap and
// ErrNodeNotFound for an unknown parent; state is unchanged either way.
func (c *Canvas) Branch(ctx context.Context, parentID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.nodes) >= c.maxNodes {
		return "", ErrNodeCapReached
	}

	parent := c.findLocked(parentID)
	if parent == nil {
		return "", ErrNodeNotFound
	}

	positions := make([]Position, len(c.nodes))
	for i, n := range c.nodes {
		positions[i] = Position{X: n.X, Y: n.Y}
	}
	pos := c.layout.PlaceChild(Position{X: parent.X, Y: parent.Y}, positions)

	child := &Node{
		ID:         newID(),
		ParentID:   parent.ID,
		X:          pos.X,
		Y:          pos.Y,
		Model:      parent.Model,
		Messages:   copyMessages(parent.Messages),
		StartIndex: len(parent.Messages),
	}
	c.nodes = append(c.nodes, child)

	c.metrics.RecordMutation(ctx, "branch")
	observability.LogBranch(c.logger, parent.ID, child.ID, child.StartIndex)
	c.persistLocked(ctx)
	c.publish(event.TypeNodeBranched, child.ID)
	return child.ID, nil
}

// Delete removes a node. A node with children cannot be deleted; the
// children would be left referencing a dangling parent.
func (c *Canvas) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := -1
	for i, n := range c.nodes {
		if n.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrNodeNotFound
	}
	if c.hasChildrenLocked(id) {
		return ErrHasChildren
	}

	c.nodes = append(c.nodes[:idx], c.nodes[idx+1:]...)

	c.metrics.RecordMutation(ctx, "delete")
	c.persistLocked(ctx)
	c.publish(event.TypeNodeDeleted, id)
	return nil
}

// UpdateModel replaces a node's selected model. No effect on messages.
func (c *Canvas) UpdateModel(ctx context.Context, id, model string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	node := c.findLocked(id)
	if node == nil {
		return ErrNodeNotFound
	}
	node.Model = model

	c.metrics.RecordMutation(ctx, "update_model")
	c.persistLocked(ctx)
	c.publish(event.TypeModelChanged, id)
	return nil
}

// UpdatePosition moves a node. Used by drag interaction; positions are
// unconstrained, with no collision check.
func (c *Canvas) UpdatePosition(ctx context.Context, id string, x, y float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	node := c.findLocked(id)
	if node == nil {
		return ErrNodeNotFound
	}
	node.X = x
	node.Y = y

	c.metrics.RecordMutation(ctx, "update_position")
	c.persistLocked(ctx)
	c.publish(event.TypeNodeMoved, id)
	return nil
}

// Send runs one completion exchange on a node: append the user turn,
// mark the node thinking, await the provider, then append the reply.
//
// The user's message is appended synchronously and survives provider
// failures; a failure only clears the thinking flag and is returned as
// a *SendError. Submissions on a node that is already thinking are
// rejected with ErrNodeBusy, appending nothing. Sends on other nodes
// are unaffected and may run concurrently.
func (c *Canvas) Send(ctx context.Context, id, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	c.mu.Lock()
	credential := c.credential(c.user)
	if credential == "" {
		c.mu.Unlock()
		return ErrMissingCredential
	}

	node := c.findLocked(id)
	if node == nil {
		c.mu.Unlock()
		return ErrNodeNotFound
	}
	if node.IsThinking {
		c.mu.Unlock()
		return ErrNodeBusy
	}

	node.Messages = append(node.Messages, llm.Message{Role: llm.RoleUser, Content: text})
	node.IsThinking = true
	model := node.Model
	history := copyMessages(node.Messages)

	c.metrics.RecordMutation(ctx, "append_user_message")
	c.persistLocked(ctx)
	c.publish(event.TypeMessageAppended, id)
	c.publish(event.TypeThinkingChanged, id)
	c.mu.Unlock()

	logger := observability.EnrichLogger(c.logger, c.user, id)
	observability.LogSendStart(logger, id, model, len(history))
	done := observability.TimedOperation()

	ctx, span := c.spans.StartSendSpan(ctx, id, model)
	resp, err := c.complete(ctx, credential, model, history)
	c.spans.EndSpanWithError(span, err)

	c.mu.Lock()
	defer c.mu.Unlock()

	// The node may have been deleted while the request was in flight;
	// there is no cancellation, so the result is simply dropped.
	node = c.findLocked(id)

	if err != nil {
		if node != nil {
			node.IsThinking = false
			c.persistLocked(ctx)
			c.publish(event.TypeThinkingChanged, id)
		}
		observability.LogSendError(logger, id, err)
		return &SendError{NodeID: id, Err: err}
	}

	if node != nil {
		node.Messages = append(node.Messages, llm.Message{Role: llm.RoleAssistant, Content: resp.Content})
		node.IsThinking = false
		c.metrics.RecordMutation(ctx, "append_assistant_message")
		c.persistLocked(ctx)
		c.publish(event.TypeMessageAppended, id)
		c.publish(event.TypeThinkingChanged, id)
	}
	observability.LogSendComplete(logger, id, done())
	return nil
}

// complete invokes the provider and records completion metrics.
func (c *Canvas) complete(ctx context.Context, credential, model string, history []llm.Message) (*llm.CompletionResponse, error) {
	ctx, span := c.spans.StartCompletionSpan(ctx, model)
	start := time.Now()

	resp, err := c.client.Complete(ctx, llm.CompletionRequest{
		Credential: credential,
		Model:      model,
		Messages:   history,
	})

	c.spans.EndSpanWithError(span, err)
	c.metrics.RecordCompletion(ctx, model, time.Since(start), err)
	return resp, err
}

// Clear wipes the current user's canvas snapshot (and the legacy
// un-namespaced key) and resets the in-memory collection. Irreversible.
func (c *Canvas) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.user != "" {
		if err := c.store.Delete(snapshotKey(c.user)); err != nil {
			observability.LogSnapshotError(c.logger, c.user, "clear", err)
			return err
		}
	}
	if err := c.store.Delete(legacySnapshotKey); err != nil {
		observability.LogSnapshotError(c.logger, c.user, "clear", err)
	}

	c.nodes = nil
	c.metrics.RecordMutation(ctx, "clear")
	c.publish(event.TypeCanvasCleared, "")
	return nil
}

// RefreshModels fetches the provider's model catalog for the current
// user's credential and caches it. The client guarantees a usable
// fallback catalog, so this never fails.
func (c *Canvas) RefreshModels(ctx context.Context) []llm.ModelInfo {
	c.mu.Lock()
	credential := c.credential(c.user)
	c.mu.Unlock()

	models, err := c.client.Models(ctx, credential)
	if err != nil || len(models) == 0 {
		models = llm.DefaultModels
	}

	c.mu.Lock()
	c.models = models
	c.mu.Unlock()
	return models
}

// Models returns the cached model catalog. Call RefreshModels first to
// populate it.
func (c *Canvas) Models() []llm.ModelInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]llm.ModelInfo, len(c.models))
	copy(out, c.models)
	return out
}

// Node returns a deep copy of the node with the given id.
func (c *Canvas) Node(id string) (Node, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.findLocked(id)
	if n == nil {
		return Node{}, false
	}
	return *n.clone(), true
}

// Nodes returns a deep copy of the whole collection, in creation order.
func (c *Canvas) Nodes() []Node {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Node, len(c.nodes))
	for i, n := range c.nodes {
		out[i] = *n.clone()
	}
	return out
}

// Children returns the ids of nodes branched from the given node.
func (c *Canvas) Children(id string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []string
	for _, n := range c.nodes {
		if n.ParentID == id {
			out = append(out, n.ID)
		}
	}
	return out
}

// HasChildren reports whether any node was branched from the given node.
func (c *Canvas) HasChildren(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasChildrenLocked(id)
}

// Len returns the number of live nodes.
func (c *Canvas) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.nodes)
}

func (c *Canvas) findLocked(id string) *Node {
	for _, n := range c.nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

func (c *Canvas) hasChildrenLocked(id string) bool {
	for _, n := range c.nodes {
		if n.ParentID == id {
			return true
		}
	}
	return false
}

// publish emits a mutation event when a bus is attached.
func (c *Canvas) publish(eventType, nodeID string) {
	if c.bus == nil {
		return
	}
	c.bus.Publish(event.New(eventType, c.user, nodeID))
}
