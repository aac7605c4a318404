package cmd

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/addonsim/uisim/pkg/widget"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	regionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	hiddenStyle = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// styleLine colors one dump line by widget state.
func styleLine(line string, w *widget.Widget) string {
	switch {
	case !w.Shown:
		return hiddenStyle.Render(line)
	case w.Kind.IsRegion():
		return regionStyle.Render(line)
	default:
		return line
	}
}
