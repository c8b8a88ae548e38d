package canvas

import (
	"errors"
	"fmt"
	"sync"
)

// View identifies which top-level surface the UI is showing.
type View int

// The four top-level views.
const (
	ViewLanding View = iota
	ViewLogin
	ViewSignup
	ViewCanvas
)

// String implements fmt.Stringer.
func (v View) String() string {
	switch v {
	case ViewLanding:
		return "landing"
	case ViewLogin:
		return "login"
	case ViewSignup:
		return "signup"
	case ViewCanvas:
		return "canvas"
	}
	return fmt.Sprintf("View(%d)", int(v))
}

// ErrInvalidTransition indicates a view change the state machine
// doesn't allow.
var ErrInvalidTransition = errors.New("invalid view transition")

// allowedTransitions encodes the view state machine. Reaching the
// canvas requires going through login or signup; leaving it means
// logging out back to the landing page.
var allowedTransitions = map[View][]View{
	ViewLanding: {ViewLogin, ViewSignup},
	ViewLogin:   {ViewCanvas, ViewSignup, ViewLanding},
	ViewSignup:  {ViewCanvas, ViewLogin, ViewLanding},
	ViewCanvas:  {ViewLanding},
}

// ViewState is the finite state machine over the four views.
// Safe for concurrent use.
type ViewState struct {
	mu      sync.Mutex
	current View
}

// NewViewState creates the state machine. A restored session starts on
// the canvas, otherwise on the landing page.
func NewViewState(loggedIn bool) *ViewState {
	v := &ViewState{current: ViewLanding}
	if loggedIn {
		v.current = ViewCanvas
	}
	return v
}

// Current returns the active view.
func (s *ViewState) Current() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Transition moves to the given view, rejecting moves the state
// machine doesn't allow.
func (s *ViewState) Transition(to View) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if to == s.current {
		return nil
	}
	for _, allowed := range allowedTransitions[s.current] {
		if to == allowed {
			s.current = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.current, to)
}
