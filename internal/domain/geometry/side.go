package geometry

import (
	"fmt"
	"strings"
)

// Side is the preferred vertical placement of an overlay relative to its
// trigger.
type Side int

const (
	// SideBottom places the overlay below the trigger.
	SideBottom Side = iota
	// SideTop places the overlay at the trigger's top edge.
	SideTop
)

func (s Side) String() string {
	switch s {
	case SideTop:
		return "top"
	case SideBottom:
		return "bottom"
	default:
		return fmt.Sprintf("side(%d)", int(s))
	}
}

// ParseSide converts "top" or "bottom" (case-insensitive) into a Side.
func ParseSide(value string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "top":
		return SideTop, nil
	case "bottom", "":
		return SideBottom, nil
	default:
		return SideBottom, fmt.Errorf("unknown side %q", value)
	}
}
