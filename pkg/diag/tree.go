// Package diag provides read-only views of a widget registry: JSON trees,
// indented text dumps, paint order snapshots and an HTTP inspection server.
package diag

import (
	"encoding/json"
	"math"

	"github.com/addonsim/uisim/pkg/layout"
	"github.com/addonsim/uisim/pkg/widget"
)

// maxTreeDepth limits recursion depth to prevent stack overflow from malformed trees.
const maxTreeDepth = 500

// SafeFloat wraps a float64 to handle Inf/NaN in JSON encoding.
type SafeFloat float64

func (f SafeFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsInf(v, 1) {
		return []byte(`"Infinity"`), nil
	}
	if math.IsInf(v, -1) {
		return []byte(`"-Infinity"`), nil
	}
	if math.IsNaN(v) {
		return []byte(`"NaN"`), nil
	}
	return json.Marshal(v)
}

// SafeRect is a JSON-safe version of layout.Rect.
type SafeRect struct {
	X      SafeFloat `json:"x"`
	Y      SafeFloat `json:"y"`
	Width  SafeFloat `json:"width"`
	Height SafeFloat `json:"height"`
}

func safeRect(r layout.Rect) SafeRect {
	return SafeRect{
		X:      SafeFloat(r.X),
		Y:      SafeFloat(r.Y),
		Width:  SafeFloat(r.Width),
		Height: SafeFloat(r.Height),
	}
}

// Node is one widget in a serialized tree.
type Node struct {
	ID       uint64   `json:"id"`
	Name     string   `json:"name,omitempty"`
	Kind     string   `json:"kind"`
	Key      string   `json:"key,omitempty"`
	Depth    int      `json:"depth"`
	Shown    bool     `json:"shown"`
	Visible  bool     `json:"visible"`
	Strata   string   `json:"strata"`
	Level    int      `json:"level"`
	Rect     SafeRect `json:"rect"`
	Anchors  int      `json:"anchors,omitempty"`
	Text     string   `json:"text,omitempty"`
	Children []Node   `json:"children,omitempty"`
}

// Tree serializes every root widget and its descendants.
func Tree(reg *widget.Registry, screen layout.Screen) []Node {
	rects, _ := layout.ResolveAll(reg, screen)
	var out []Node
	for _, id := range reg.Roots() {
		out = append(out, serialize(reg, rects, id, "", 0))
	}
	return out
}

// Subtree serializes id and its descendants.
func Subtree(reg *widget.Registry, screen layout.Screen, id widget.ID) (Node, bool) {
	w, ok := reg.Get(id)
	if !ok {
		return Node{}, false
	}
	key := ""
	if p, ok := reg.Get(w.Parent); ok {
		key, _ = p.ChildKeyOf(id)
	}
	rects, _ := layout.ResolveAll(reg, screen)
	return serialize(reg, rects, id, key, reg.Depth(id)), true
}

func serialize(reg *widget.Registry, rects map[widget.ID]layout.Rect, id widget.ID, key string, depth int) Node {
	w, _ := reg.Get(id)
	n := Node{
		ID:      uint64(id),
		Name:    displayName(reg, w),
		Kind:    w.Kind.String(),
		Key:     key,
		Depth:   depth,
		Shown:   w.Shown,
		Visible: reg.IsVisible(id),
		Strata:  w.Strata.String(),
		Level:   w.Level,
		Rect:    safeRect(rects[id]),
		Anchors: len(w.Anchors),
		Text:    w.Text,
	}
	if depth >= maxTreeDepth {
		return n
	}
	for _, cid := range w.Children {
		if !reg.Exists(cid) {
			continue
		}
		childKey, _ := w.ChildKeyOf(cid)
		n.Children = append(n.Children, serialize(reg, rects, cid, childKey, depth+1))
	}
	return n
}

// displayName returns the widget's name if it still owns it.
func displayName(reg *widget.Registry, w *widget.Widget) string {
	if reg.OwnsName(w.ID) {
		return w.Name
	}
	return ""
}

// OrderEntry is one row of a paint order snapshot.
type OrderEntry struct {
	ID     uint64 `json:"id"`
	Name   string `json:"name,omitempty"`
	Strata string `json:"strata"`
	Level  int    `json:"level"`
}

// OrderSnapshot returns the paint order, bottom first.
func OrderSnapshot(reg *widget.Registry) []OrderEntry {
	order := layout.Order(reg)
	out := make([]OrderEntry, 0, len(order))
	for _, id := range order {
		w, _ := reg.Get(id)
		out = append(out, OrderEntry{
			ID:     uint64(id),
			Name:   displayName(reg, w),
			Strata: w.Strata.String(),
			Level:  w.Level,
		})
	}
	return out
}
