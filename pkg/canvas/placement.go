package canvas

// Position is a point in canvas space.
type Position struct {
	X float64
	Y float64
}

// Layout configures node placement geometry.
//
// BranchOffsetX must exceed the rendered node width plus a margin so
// the connector curve between parent and child stays visually
// unambiguous.
type Layout struct {
	// NodeWidth and NodeHeight are the rendered node dimensions.
	NodeWidth  float64
	NodeHeight float64

	// Gap is the vertical spacing between stacked candidates.
	Gap float64

	// BranchOffsetX and BranchOffsetY offset a child from its parent.
	BranchOffsetX float64
	BranchOffsetY float64

	// ProximityX is the horizontal distance under which two nodes are
	// considered overlapping.
	ProximityX float64

	// MaxAttempts bounds the collision-avoidance loop. After the bound
	// the last candidate is accepted even if it overlaps.
	MaxAttempts int

	// InitialX and InitialY place the first root node.
	InitialX float64
	InitialY float64
}

// DefaultLayout returns the placement geometry used by the reference UI.
func DefaultLayout() Layout {
	return Layout{
		NodeWidth:     576,
		NodeHeight:    400,
		Gap:           25,
		BranchOffsetX: 576 + 50,
		BranchOffsetY: 100,
		ProximityX:    100,
		MaxAttempts:   10,
		InitialX:      100,
		InitialY:      100,
	}
}

// CenterIn returns the root position centering a node in a viewport of
// the given dimensions.
func (l Layout) CenterIn(viewportWidth, viewportHeight float64) Position {
	return Position{
		X: (viewportWidth - l.NodeWidth) / 2,
		Y: (viewportHeight - l.NodeHeight) / 2,
	}
}

// PlaceChild computes the position for a node branched from a parent
// at the given position, avoiding the existing nodes.
//
// The candidate starts at parent + branch offset, then shifts down by
// node height + gap while any existing node lies within the proximity
// threshold, up to MaxAttempts. This is a greedy vertical-stacking
// heuristic: deterministic for a given node set, best-effort once the
// attempt bound is exhausted.
func (l Layout) PlaceChild(parent Position, existing []Position) Position {
	candidate := Position{
		X: parent.X + l.BranchOffsetX,
		Y: parent.Y + l.BranchOffsetY,
	}

	for attempts := 0; attempts < l.MaxAttempts; attempts++ {
		if !l.collides(candidate, existing) {
			break
		}
		candidate.Y += l.NodeHeight + l.Gap
	}
	return candidate
}

// collides reports whether any existing node is within the proximity
// threshold of the candidate.
func (l Layout) collides(candidate Position, existing []Position) bool {
	for _, p := range existing {
		if abs(p.X-candidate.X) < l.ProximityX && abs(p.Y-candidate.Y) < l.NodeHeight {
			return true
		}
	}
	return false
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
