package widget

import "strings"

// AnchorPoint is one of the nine named positions on a box.
type AnchorPoint int

const (
	TopLeft AnchorPoint = iota
	Top
	TopRight
	Left
	Center
	Right
	BottomLeft
	Bottom
	BottomRight
)

var pointNames = [...]string{
	TopLeft:     "TOPLEFT",
	Top:         "TOP",
	TopRight:    "TOPRIGHT",
	Left:        "LEFT",
	Center:      "CENTER",
	Right:       "RIGHT",
	BottomLeft:  "BOTTOMLEFT",
	Bottom:      "BOTTOM",
	BottomRight: "BOTTOMRIGHT",
}

func (p AnchorPoint) String() string {
	if p < 0 || int(p) >= len(pointNames) {
		return "CENTER"
	}
	return pointNames[p]
}

// ParsePoint resolves a point name case-insensitively.
func ParsePoint(s string) (AnchorPoint, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, name := range pointNames {
		if name == s {
			return AnchorPoint(i), true
		}
	}
	return Center, false
}

// Fractions returns the point's position inside a unit box, with (0,0) the
// top-left corner and (1,1) the bottom-right corner.
func (p AnchorPoint) Fractions() (fx, fy float64) {
	switch p {
	case TopLeft:
		return 0, 0
	case Top:
		return 0.5, 0
	case TopRight:
		return 1, 0
	case Left:
		return 0, 0.5
	case Right:
		return 1, 0.5
	case BottomLeft:
		return 0, 1
	case Bottom:
		return 0.5, 1
	case BottomRight:
		return 1, 1
	default:
		return 0.5, 0.5
	}
}

// Opposite returns the point mirrored through the center.
func (p AnchorPoint) Opposite() AnchorPoint {
	return BottomRight - p
}

// Anchor pins Point of the owning widget to RelativePoint of Relative.
// A Relative of None means the parent, or the screen for a root widget.
//
// Offsets use the host's Y-up convention: a positive Y moves the widget up.
type Anchor struct {
	Point         AnchorPoint
	Relative      ID
	RelativePoint AnchorPoint
	X, Y          float64
}
