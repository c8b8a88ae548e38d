// Package canvas implements the state manager for a branching LLM
// conversation canvas: draggable conversation nodes on an infinite
// surface, branched to fork history at a point in the transcript.
//
// The Canvas is the single source of truth for the node forest. Each
// node holds its own ordered message history, a selected model, and a
// position; branching deep-copies the parent's history so parent and
// child evolve independently from the fork point. Every mutation is
// mirrored synchronously to a per-user key in a store.Store, and the
// send protocol tracks one in-flight completion per node.
//
// Basic usage:
//
//	st := store.NewMemoryStore()
//	client := llm.NewOpenRouter()
//	cv := canvas.New(st, client,
//	    canvas.WithCredentials(func(user string) string { return apiKey }),
//	)
//
//	cv.SwitchUser(ctx, "alice@example.com")
//	root, _ := cv.CreateRoot(ctx)
//	_ = cv.Send(ctx, root, "Hello")
//	child, _ := cv.Branch(ctx, root)
package canvas
