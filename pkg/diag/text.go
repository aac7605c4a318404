package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/addonsim/uisim/pkg/layout"
	"github.com/addonsim/uisim/pkg/widget"
)

// TextOptions controls WriteText.
type TextOptions struct {
	// Root limits the dump to one subtree; None dumps every root.
	Root widget.ID
	// VisibleOnly skips hidden subtrees.
	VisibleOnly bool
	// MaxText truncates label text to this display width; zero means 32.
	MaxText int
	// Style decorates each line, for terminal colors. Nil leaves lines plain.
	Style func(line string, w *widget.Widget) string
}

// WriteText writes an indented dump, one widget per line:
//
//	Name [Kind] key=K (x,y wxh) STRATA:level "text"
func WriteText(out io.Writer, reg *widget.Registry, screen layout.Screen, opts TextOptions) error {
	if opts.MaxText <= 0 {
		opts.MaxText = 32
	}
	rects, _ := layout.ResolveAll(reg, screen)
	roots := reg.Roots()
	if opts.Root != widget.None {
		if !reg.Exists(opts.Root) {
			return fmt.Errorf("diag: widget %d: %w", opts.Root, widget.ErrNotFound)
		}
		roots = []widget.ID{opts.Root}
	}

	var err error
	for _, root := range roots {
		reg.Walk(root, func(w *widget.Widget, depth int) bool {
			if err != nil || depth > maxTreeDepth {
				return false
			}
			if opts.VisibleOnly && !reg.IsVisible(w.ID) {
				return false
			}
			line := formatLine(reg, w, rects[w.ID], opts.MaxText)
			if opts.Style != nil {
				line = opts.Style(line, w)
			}
			_, err = fmt.Fprintf(out, "%s%s\n", strings.Repeat("  ", depth), line)
			return true
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func formatLine(reg *widget.Registry, w *widget.Widget, r layout.Rect, maxText int) string {
	var sb strings.Builder
	name := displayName(reg, w)
	if name == "" {
		name = fmt.Sprintf("(anon #%d)", w.ID)
	}
	sb.WriteString(name)
	fmt.Fprintf(&sb, " [%s]", w.Kind)
	if p, ok := reg.Get(w.Parent); ok {
		if key, ok := p.ChildKeyOf(w.ID); ok {
			fmt.Fprintf(&sb, " key=%s", key)
		}
	}
	fmt.Fprintf(&sb, " (%.0f,%.0f %.0fx%.0f) %s:%d", r.X, r.Y, r.Width, r.Height, w.Strata, w.Level)
	if !w.Shown {
		sb.WriteString(" hidden")
	}
	if r := w.Range; r != nil {
		fmt.Fprintf(&sb, " value=%g [%g,%g] %.0f%%", r.Value, r.Min, r.Max, r.Fraction()*100)
	}
	if w.Text != "" {
		text := strings.ReplaceAll(w.Text, "\n", " ")
		fmt.Fprintf(&sb, " %q", runewidth.Truncate(text, maxText, "…"))
	}
	return sb.String()
}
