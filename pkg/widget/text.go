package widget

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// MeasureText returns the extent of s set in the fixed reference face, one
// line per newline. It approximates the host's label metrics; shaping is not
// modeled.
func MeasureText(s string) (width, height float64) {
	if s == "" {
		return 0, 0
	}
	face := basicfont.Face7x13
	lineHeight := face.Metrics().Height.Ceil()
	lines := strings.Split(s, "\n")
	for _, line := range lines {
		width = max(width, float64(font.MeasureString(face, line).Ceil()))
	}
	return width, float64(lineHeight * len(lines))
}
