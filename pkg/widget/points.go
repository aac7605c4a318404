package widget

// SetPoint anchors id. An anchor whose Point is already set on id replaces
// that entry in place; otherwise the anchor is appended.
//
// Anchoring to self, or to a widget whose anchor chain leads back to id, is
// rejected with ErrAnchorCycle. An unknown Relative yields ErrNotFound.
func (r *Registry) SetPoint(id ID, a Anchor) error {
	w, ok := r.widgets[id]
	if !ok {
		return ErrNotFound
	}
	if a.Relative != None {
		if a.Relative == id {
			return ErrAnchorCycle
		}
		if !r.Exists(a.Relative) {
			return ErrNotFound
		}
		if r.anchorsReach(a.Relative, id) {
			return ErrAnchorCycle
		}
	}
	for i := range w.Anchors {
		if w.Anchors[i].Point == a.Point {
			w.Anchors[i] = a
			return nil
		}
	}
	w.Anchors = append(w.Anchors, a)
	return nil
}

// anchorsReach reports whether target is reachable from start by following
// anchor references. A None relative stands for the anchoring widget's parent.
func (r *Registry) anchorsReach(start, target ID) bool {
	queue := []ID{start}
	seen := map[ID]bool{start: true}
	for len(queue) > 0 {
		w, ok := r.widgets[queue[0]]
		queue = queue[1:]
		if !ok {
			continue
		}
		for _, a := range w.Anchors {
			next := a.Relative
			if next == None {
				next = w.Parent
			}
			if next == None || seen[next] {
				continue
			}
			if next == target {
				return true
			}
			seen[next] = true
			queue = append(queue, next)
		}
	}
	return false
}

// ClearAllPoints removes every anchor from id.
func (r *Registry) ClearAllPoints(id ID) bool {
	w, ok := r.widgets[id]
	if !ok {
		return false
	}
	w.Anchors = nil
	return true
}

// SetAllPoints pins id's top-left and bottom-right corners to the same
// corners of rel (None means the parent), so id fills rel exactly.
func (r *Registry) SetAllPoints(id, rel ID) error {
	w, ok := r.widgets[id]
	if !ok {
		return ErrNotFound
	}
	saved := w.Anchors
	w.Anchors = nil
	for _, p := range []AnchorPoint{TopLeft, BottomRight} {
		if err := r.SetPoint(id, Anchor{Point: p, Relative: rel, RelativePoint: p}); err != nil {
			w.Anchors = saved
			return err
		}
	}
	return nil
}
