package widget

import "strings"

// Strata is the major paint/hit-test category of a widget.
type Strata int

const (
	StrataWorld Strata = iota
	StrataBackground
	StrataLow
	StrataMedium
	StrataHigh
	StrataDialog
	StrataFullscreen
	StrataFullscreenDialog
	StrataTooltip
)

// MaxLevel bounds frame levels, matching the host's clamp.
const MaxLevel = 10000

var strataNames = [...]string{
	StrataWorld:            "WORLD",
	StrataBackground:       "BACKGROUND",
	StrataLow:              "LOW",
	StrataMedium:           "MEDIUM",
	StrataHigh:             "HIGH",
	StrataDialog:           "DIALOG",
	StrataFullscreen:       "FULLSCREEN",
	StrataFullscreenDialog: "FULLSCREEN_DIALOG",
	StrataTooltip:          "TOOLTIP",
}

func (s Strata) String() string {
	if s < 0 || int(s) >= len(strataNames) {
		return "MEDIUM"
	}
	return strataNames[s]
}

// ParseStrata resolves a stratum name case-insensitively.
func ParseStrata(s string) (Strata, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, name := range strataNames {
		if name == s {
			return Strata(i), true
		}
	}
	return StrataMedium, false
}

func clampLevel(n int) int {
	return max(0, min(n, MaxLevel))
}

// SetStrata sets an explicit stratum on id and cascades it to every
// descendant that does not override its own stratum.
func (r *Registry) SetStrata(id ID, s Strata) bool {
	w, ok := r.widgets[id]
	if !ok {
		return false
	}
	w.Strata = s
	w.FixedStrata = true
	r.Propagate(id)
	return true
}

// SetLevel sets an explicit level on id and cascades level+1 to every
// descendant that does not override its own level.
func (r *Registry) SetLevel(id ID, level int) bool {
	w, ok := r.widgets[id]
	if !ok {
		return false
	}
	w.Level = clampLevel(level)
	w.FixedLevel = true
	r.Propagate(id)
	return true
}

// SetFixedStrata toggles whether id keeps its stratum when reparented or when
// an ancestor changes. Clearing the flag re-inherits from the parent.
func (r *Registry) SetFixedStrata(id ID, fixed bool) bool {
	w, ok := r.widgets[id]
	if !ok {
		return false
	}
	w.FixedStrata = fixed
	if !fixed {
		r.inheritOrder(w)
		r.Propagate(id)
	}
	return true
}

// SetFixedLevel is SetFixedStrata for the level.
func (r *Registry) SetFixedLevel(id ID, fixed bool) bool {
	w, ok := r.widgets[id]
	if !ok {
		return false
	}
	w.FixedLevel = fixed
	if !fixed {
		r.inheritOrder(w)
		r.Propagate(id)
	}
	return true
}

// inheritOrder copies the parent's stratum and level+1 into w for every
// value w does not override.
func (r *Registry) inheritOrder(w *Widget) {
	p, ok := r.widgets[w.Parent]
	if !ok {
		return
	}
	if !w.FixedStrata {
		w.Strata = p.Strata
	}
	if !w.FixedLevel {
		w.Level = clampLevel(p.Level + 1)
	}
}

// Propagate re-applies stratum/level inheritance to all descendants of id,
// breadth first. Descendants with overrides keep their own values and pass
// them on to their children.
func (r *Registry) Propagate(id ID) {
	if _, ok := r.widgets[id]; !ok {
		return
	}
	queue := []ID{id}
	seen := map[ID]bool{id: true}
	for len(queue) > 0 {
		cur := r.widgets[queue[0]]
		queue = queue[1:]
		if cur == nil {
			continue
		}
		for _, cid := range cur.Children {
			child, ok := r.widgets[cid]
			if !ok || seen[cid] {
				continue
			}
			seen[cid] = true
			if !child.FixedStrata {
				child.Strata = cur.Strata
			}
			if !child.FixedLevel {
				child.Level = clampLevel(cur.Level + 1)
			}
			queue = append(queue, cid)
		}
	}
}
