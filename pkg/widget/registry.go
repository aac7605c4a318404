package widget

import (
	"maps"
	"slices"
)

// Registry owns every widget of a session by identity.
type Registry struct {
	widgets map[ID]*Widget
	names   map[string]ID
	last    ID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		widgets: make(map[ID]*Widget),
		names:   make(map[string]ID),
	}
}

// Create allocates a fresh identity and a default-initialized widget.
func (r *Registry) Create(kind Kind) ID {
	r.last++
	id := r.last
	r.widgets[id] = newWidget(id, kind)
	return id
}

// Get returns the widget for id. The pointer must not be retained across a
// call into the script host.
func (r *Registry) Get(id ID) (*Widget, bool) {
	w, ok := r.widgets[id]
	return w, ok
}

// Exists reports whether id names a live widget.
func (r *Registry) Exists(id ID) bool {
	_, ok := r.widgets[id]
	return ok
}

// Len returns the number of live widgets.
func (r *Registry) Len() int {
	return len(r.widgets)
}

// IDs returns every live identity in ascending (creation) order.
func (r *Registry) IDs() []ID {
	return slices.Sorted(maps.Keys(r.widgets))
}

// Roots returns the live widgets without a parent, in creation order.
func (r *Registry) Roots() []ID {
	var roots []ID
	for _, id := range r.IDs() {
		if r.widgets[id].Parent == None {
			roots = append(roots, id)
		}
	}
	return roots
}

// RegisterName binds name to id in the global name table. A previous owner
// of name stays alive and keeps its Name field but loses the binding. If id
// owned a different name, that binding is released.
func (r *Registry) RegisterName(id ID, name string) bool {
	w, ok := r.widgets[id]
	if !ok || name == "" {
		return false
	}
	if w.Name != "" && w.Name != name && r.names[w.Name] == id {
		delete(r.names, w.Name)
	}
	r.names[name] = id
	w.Name = name
	return true
}

// ResolveName looks up the widget currently bound to name.
func (r *Registry) ResolveName(name string) (ID, bool) {
	id, ok := r.names[name]
	if !ok {
		return None, false
	}
	if _, live := r.widgets[id]; !live {
		return None, false
	}
	return id, true
}

// OwnsName reports whether id is the current owner of its own Name.
func (r *Registry) OwnsName(id ID) bool {
	w, ok := r.widgets[id]
	if !ok || w.Name == "" {
		return false
	}
	return r.names[w.Name] == id
}

// Names returns the bound global names in sorted order.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.names))
}

// Remove frees id. The widget is detached from its parent, its global
// binding is released if it owns one, and its children become orphans that
// keep their own identity. Returns false if id was not live.
func (r *Registry) Remove(id ID) bool {
	w, ok := r.widgets[id]
	if !ok {
		return false
	}
	r.detach(w)
	if w.Name != "" && r.names[w.Name] == id {
		delete(r.names, w.Name)
	}
	for _, cid := range w.Children {
		if child, ok := r.widgets[cid]; ok && child.Parent == id {
			child.Parent = None
		}
	}
	delete(r.widgets, id)
	return true
}

// detach removes w from its parent's child list, key table and arrays.
func (r *Registry) detach(w *Widget) {
	p, ok := r.widgets[w.Parent]
	if !ok {
		w.Parent = None
		return
	}
	p.Children = removeID(p.Children, w.ID)
	for k, cid := range p.Keys {
		if cid == w.ID {
			delete(p.Keys, k)
		}
	}
	for k, ids := range p.Arrays {
		p.Arrays[k] = removeID(ids, w.ID)
	}
	w.Parent = None
}

// SetParent moves id under parent (None detaches it to the root level).
// Cycles are rejected with ErrParentCycle and leave the tree untouched.
// Stratum and level inheritance is re-applied to the moved subtree.
func (r *Registry) SetParent(id, parent ID) error {
	w, ok := r.widgets[id]
	if !ok {
		return ErrNotFound
	}
	if parent != None {
		if _, ok := r.widgets[parent]; !ok {
			return ErrNotFound
		}
		if r.IsAncestor(id, parent) || id == parent {
			return ErrParentCycle
		}
	}
	if w.Parent == parent {
		return nil
	}
	r.detach(w)
	if parent != None {
		p := r.widgets[parent]
		p.Children = append(p.Children, id)
		w.Parent = parent
		r.inheritOrder(w)
	}
	r.Propagate(id)
	return nil
}

// IsAncestor reports whether ancestor appears on the parent chain of id.
func (r *Registry) IsAncestor(ancestor, id ID) bool {
	seen := make(map[ID]bool)
	for cur := id; cur != None && !seen[cur]; {
		seen[cur] = true
		w, ok := r.widgets[cur]
		if !ok {
			return false
		}
		if w.Parent == ancestor {
			return true
		}
		cur = w.Parent
	}
	return false
}

// SetChildKey stores child under key in parent's access table, replacing any
// previous entry for key.
func (r *Registry) SetChildKey(parent ID, key string, child ID) bool {
	p, ok := r.widgets[parent]
	if !ok || key == "" || !r.Exists(child) {
		return false
	}
	if p.Keys == nil {
		p.Keys = make(map[string]ID)
	}
	p.Keys[key] = child
	return true
}

// ChildByKey resolves a local access key on parent.
func (r *Registry) ChildByKey(parent ID, key string) (ID, bool) {
	p, ok := r.widgets[parent]
	if !ok {
		return None, false
	}
	id, ok := p.Keys[key]
	if !ok || !r.Exists(id) {
		return None, false
	}
	return id, true
}

// AppendToArray appends child to the named array on parent.
func (r *Registry) AppendToArray(parent ID, array string, child ID) bool {
	p, ok := r.widgets[parent]
	if !ok || array == "" || !r.Exists(child) {
		return false
	}
	if p.Arrays == nil {
		p.Arrays = make(map[string][]ID)
	}
	p.Arrays[array] = append(p.Arrays[array], child)
	return true
}

// Depth returns the number of ancestors of id.
func (r *Registry) Depth(id ID) int {
	depth := 0
	seen := make(map[ID]bool)
	for cur := id; !seen[cur]; depth++ {
		seen[cur] = true
		w, ok := r.widgets[cur]
		if !ok || w.Parent == None {
			return depth
		}
		cur = w.Parent
	}
	return depth
}

// Walk visits root and its descendants in pre-order. fn returns false to
// skip a widget's children. fn must not add or remove widgets.
func (r *Registry) Walk(root ID, fn func(w *Widget, depth int) bool) {
	type item struct {
		id    ID
		depth int
	}
	stack := []item{{root, 0}}
	seen := make(map[ID]bool)
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		w, ok := r.widgets[it.id]
		if !ok || seen[it.id] {
			continue
		}
		seen[it.id] = true
		if !fn(w, it.depth) {
			continue
		}
		for i := len(w.Children) - 1; i >= 0; i-- {
			stack = append(stack, item{w.Children[i], it.depth + 1})
		}
	}
}

// Descendants returns every descendant of id in pre-order, excluding id.
func (r *Registry) Descendants(id ID) []ID {
	var out []ID
	r.Walk(id, func(w *Widget, _ int) bool {
		if w.ID != id {
			out = append(out, w.ID)
		}
		return true
	})
	return out
}

// SetSize sets an explicit size on both axes.
func (r *Registry) SetSize(id ID, width, height float64) bool {
	w, ok := r.widgets[id]
	if !ok {
		return false
	}
	w.Width, w.Height = max(width, 0), max(height, 0)
	w.WidthSet, w.HeightSet = true, true
	return true
}

// SetWidth sets an explicit width.
func (r *Registry) SetWidth(id ID, width float64) bool {
	w, ok := r.widgets[id]
	if !ok {
		return false
	}
	w.Width, w.WidthSet = max(width, 0), true
	return true
}

// SetHeight sets an explicit height.
func (r *Registry) SetHeight(id ID, height float64) bool {
	w, ok := r.widgets[id]
	if !ok {
		return false
	}
	w.Height, w.HeightSet = max(height, 0), true
	return true
}

// ClearSize forgets any explicit size so anchors can derive it again.
func (r *Registry) ClearSize(id ID) bool {
	w, ok := r.widgets[id]
	if !ok {
		return false
	}
	w.Width, w.Height = 0, 0
	w.WidthSet, w.HeightSet = false, false
	return true
}

// SetShown sets the widget's own shown flag.
func (r *Registry) SetShown(id ID, shown bool) bool {
	w, ok := r.widgets[id]
	if !ok {
		return false
	}
	w.Shown = shown
	return true
}

// IsShown reports the widget's own shown flag.
func (r *Registry) IsShown(id ID) bool {
	w, ok := r.widgets[id]
	return ok && w.Shown
}

// IsVisible reports whether id and every ancestor are shown.
func (r *Registry) IsVisible(id ID) bool {
	seen := make(map[ID]bool)
	for cur := id; cur != None; {
		if seen[cur] {
			return false
		}
		seen[cur] = true
		w, ok := r.widgets[cur]
		if !ok || !w.Shown {
			return false
		}
		cur = w.Parent
	}
	return id != None
}

// EnableMouse toggles whether id takes part in hit testing.
func (r *Registry) EnableMouse(id ID, enabled bool) bool {
	w, ok := r.widgets[id]
	if !ok {
		return false
	}
	w.MouseEnabled = enabled
	return true
}

// SetAttribute stores an arbitrary script-visible attribute.
func (r *Registry) SetAttribute(id ID, key string, value any) bool {
	w, ok := r.widgets[id]
	if !ok {
		return false
	}
	if w.Attributes == nil {
		w.Attributes = make(map[string]any)
	}
	w.Attributes[key] = value
	return true
}

// Attribute reads an attribute set with SetAttribute.
func (r *Registry) Attribute(id ID, key string) (any, bool) {
	w, ok := r.widgets[id]
	if !ok {
		return nil, false
	}
	v, ok := w.Attributes[key]
	return v, ok
}

// AddMixins records behavior bundles on id, skipping ones already present.
func (r *Registry) AddMixins(id ID, mixins ...string) bool {
	w, ok := r.widgets[id]
	if !ok {
		return false
	}
	for _, m := range mixins {
		if m != "" && !w.HasMixin(m) {
			w.Mixins = append(w.Mixins, m)
		}
	}
	return true
}
