package layout

import (
	"math"

	"github.com/addonsim/uisim/pkg/widget"
)

// Rect is an axis-aligned box in screen coordinates, origin top-left, Y down.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 {
	return r.X + r.Width
}

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 {
	return r.Y + r.Height
}

// Point returns the screen position of anchor point p on r.
func (r Rect) Point(p widget.AnchorPoint) (x, y float64) {
	fx, fy := p.Fractions()
	return r.X + fx*r.Width, r.Y + fy*r.Height
}

// Contains reports whether (x, y) lies inside r. The right and bottom edges
// are exclusive.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// IsEmpty reports whether r has no area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

func (r Rect) finite() bool {
	for _, v := range [...]float64{r.X, r.Y, r.Width, r.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Screen is the size of the root coordinate space.
type Screen struct {
	Width  float64
	Height float64
}

// DefaultScreen matches the host's reference resolution.
var DefaultScreen = Screen{Width: 1024, Height: 768}

// Rect returns the screen as a rect at the origin.
func (s Screen) Rect() Rect {
	return Rect{Width: s.Width, Height: s.Height}
}
