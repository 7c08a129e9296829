package overlay

import "github.com/alexisbeaulieu97/floatkit/internal/domain/geometry"

// State is the lifecycle phase of an overlay, independent of the caller's
// logical open flag.
type State int

const (
	StateClosed State = iota
	StateMeasuring
	StateVisible
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateMeasuring:
		return "measuring"
	case StateVisible:
		return "visible"
	case StateClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// Mounted reports whether the overlay element exists in the host while in
// this state.
func (s State) Mounted() bool {
	return s != StateClosed
}

// Phase is the animation phase handed to the renderer.
type Phase int

const (
	// PhaseNone means nothing is painted: closed, or mounted for measurement only.
	PhaseNone Phase = iota
	PhaseEntering
	PhaseVisible
	PhaseExiting
)

func (p Phase) String() string {
	switch p {
	case PhaseEntering:
		return "entering"
	case PhaseVisible:
		return "visible"
	case PhaseExiting:
		return "exiting"
	default:
		return "none"
	}
}

// Snapshot is the read-only view of a controller that a renderer paints from.
type Snapshot struct {
	State      State
	IsRendered bool
	// HasPosition is false until both rects were measured in the current cycle.
	HasPosition bool
	Position    geometry.Position
	Phase       Phase
	// Progress is the current tween value, 0 hidden and 1 fully shown.
	Progress float64
	// MaxOverlayHeight is passed through from the options untouched.
	MaxOverlayHeight float64
}

// Painted reports whether the renderer should draw the overlay content.
func (s Snapshot) Painted() bool {
	return s.IsRendered && s.HasPosition && s.Phase != PhaseNone
}
