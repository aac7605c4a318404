package template

import (
	"fmt"
	"slices"
	"strings"

	"github.com/addonsim/uisim/pkg/widget"
)

// Expand resolves the template registered under name into a plan.
func (r *Registry) Expand(name string) (*Plan, error) {
	def, ok := r.get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	e := &expansion{reg: r, active: map[string]bool{name: true}, chain: []string{name}}
	return e.definition(def)
}

// ExpandDefinition resolves an unregistered definition, such as an instance
// or the template list passed to CreateFrame.
func (r *Registry) ExpandDefinition(def *Definition) (*Plan, error) {
	if def == nil {
		return &Plan{}, nil
	}
	e := &expansion{reg: r, active: map[string]bool{}}
	return e.definition(def)
}

// ExpandList builds the plan for an anonymous definition inheriting names
// left to right.
func (r *Registry) ExpandList(kind widget.Kind, names ...string) (*Plan, error) {
	return r.ExpandDefinition(&Definition{Kind: kind, Inherits: names})
}

// Info describes a resolved template.
type Info struct {
	Name   string
	Kind   widget.Kind
	Width  float64
	Height float64
}

// Info resolves name and reports its kind and size.
func (r *Registry) Info(name string) (Info, error) {
	p, err := r.Expand(name)
	if err != nil {
		return Info{}, err
	}
	info := Info{Name: name, Kind: p.Kind}
	if p.Width != nil {
		info.Width = *p.Width
	}
	if p.Height != nil {
		info.Height = *p.Height
	}
	return info, nil
}

// expansion holds the in-progress set of one Expand call.
type expansion struct {
	reg    *Registry
	active map[string]bool
	chain  []string
}

func (e *expansion) template(name string) (*Plan, error) {
	if e.active[name] {
		chain := append(slices.Clone(e.chain), name)
		return nil, fmt.Errorf("%w: %s", ErrInheritanceCycle, strings.Join(chain, " -> "))
	}
	def, ok := e.reg.get(name)
	if !ok {
		chain := append(slices.Clone(e.chain), name)
		return nil, fmt.Errorf("%w: %q (via %s)", ErrUnknownTemplate, name, strings.Join(chain, " -> "))
	}
	e.active[name] = true
	e.chain = append(e.chain, name)
	defer func() {
		delete(e.active, name)
		e.chain = e.chain[:len(e.chain)-1]
	}()
	return e.definition(def)
}

func (e *expansion) definition(def *Definition) (*Plan, error) {
	inherited := make([]*Plan, 0, len(def.Inherits))
	for _, name := range def.Inherits {
		if name == "" {
			continue
		}
		p, err := e.template(name)
		if err != nil {
			return nil, err
		}
		inherited = append(inherited, p)
	}

	kind := def.Kind
	for _, p := range inherited {
		if kind != widget.KindNone {
			break
		}
		kind = p.Kind
	}

	plan := defaultsPlan(kind)
	for _, p := range inherited {
		merge(plan, p)
	}
	own, err := e.own(def)
	if err != nil {
		return nil, err
	}
	merge(plan, own)

	plan.Kind = kind
	plan.Name = def.Name
	plan.Key = def.Key
	plan.ParentArray = def.ParentArray
	return plan, nil
}

// own converts the direct declarations of def into a plan, expanding its
// children.
func (e *expansion) own(def *Definition) (*Plan, error) {
	p := &Plan{
		Kind:         def.Kind,
		Mixins:       slices.Clone(def.Mixins),
		KeyValues:    slices.Clone(def.KeyValues),
		Hidden:       clonePtr(def.Hidden),
		SetAllPoints: clonePtr(def.SetAllPoints),
		EnableMouse:  clonePtr(def.EnableMouse),
		Strata:       def.Strata,
		Level:        clonePtr(def.Level),
		Text:         def.Text,
		Texture:      def.Texture,
	}
	if def.Size != nil {
		p.Width = clonePtr(def.Size.Width)
		p.Height = clonePtr(def.Size.Height)
	}
	for _, a := range def.Anchors {
		p.Anchors = setAnchor(p.Anchors, a)
	}
	for _, s := range def.Scripts {
		p.Scripts = bindScript(p.Scripts, Binding{Handler: s.Handler, Chain: []ScriptDef{s}, Mode: s.Inherit})
	}
	for _, c := range def.Children {
		cp, err := e.definition(c)
		if err != nil {
			return nil, fmt.Errorf("child %s: %w", childLabel(c), err)
		}
		p.Children = append(p.Children, cp)
	}
	return p, nil
}

func childLabel(c *Definition) string {
	switch {
	case c.Key != "":
		return c.Key
	case c.Name != "":
		return c.Name
	default:
		return "(anonymous)"
	}
}

// merge applies src on top of dst: later declarations win.
func merge(dst, src *Plan) {
	if src.Width != nil {
		dst.Width = clonePtr(src.Width)
	}
	if src.Height != nil {
		dst.Height = clonePtr(src.Height)
	}
	for _, a := range src.Anchors {
		dst.Anchors = setAnchor(dst.Anchors, a)
	}
	for _, b := range src.Scripts {
		dst.Scripts = bindScript(dst.Scripts, b)
	}
	for _, m := range src.Mixins {
		if !slices.Contains(dst.Mixins, m) {
			dst.Mixins = append(dst.Mixins, m)
		}
	}
	for _, kv := range src.KeyValues {
		dst.KeyValues = setKeyValue(dst.KeyValues, kv)
	}
	for _, c := range src.Children {
		mergeChild(dst, c)
	}
	if src.Hidden != nil {
		dst.Hidden = clonePtr(src.Hidden)
	}
	if src.SetAllPoints != nil {
		dst.SetAllPoints = clonePtr(src.SetAllPoints)
	}
	if src.EnableMouse != nil {
		dst.EnableMouse = clonePtr(src.EnableMouse)
	}
	if src.Strata != "" {
		dst.Strata = src.Strata
	}
	if src.Level != nil {
		dst.Level = clonePtr(src.Level)
	}
	if src.Text != "" {
		dst.Text = src.Text
	}
	if src.Texture != "" {
		dst.Texture = src.Texture
	}
}

// mergeChild merges c into the same-keyed child of dst, or appends a copy.
func mergeChild(dst *Plan, c *Plan) {
	if c.Key != "" {
		if existing, ok := dst.Child(c.Key); ok {
			if c.Name != "" {
				existing.Name = c.Name
			}
			if c.ParentArray != "" {
				existing.ParentArray = c.ParentArray
			}
			if c.Kind != widget.KindNone {
				existing.Kind = c.Kind
			}
			merge(existing, c)
			return
		}
	}
	dst.Children = append(dst.Children, c.clone())
}

func setAnchor(anchors []AnchorDef, a AnchorDef) []AnchorDef {
	for i := range anchors {
		if anchors[i].Point == a.Point {
			anchors[i] = a
			return anchors
		}
	}
	return append(anchors, a)
}

func setKeyValue(kvs []KeyValue, kv KeyValue) []KeyValue {
	for i := range kvs {
		if kvs[i].Key == kv.Key {
			kvs[i] = kv
			return kvs
		}
	}
	return append(kvs, kv)
}

// bindScript merges b into bindings. A recurring handler replaces the chain
// unless b asks to prepend or append to it.
func bindScript(bindings []Binding, b Binding) []Binding {
	for i := range bindings {
		if bindings[i].Handler != b.Handler {
			continue
		}
		switch b.Mode {
		case InheritPrepend:
			bindings[i].Chain = append(slices.Clone(b.Chain), bindings[i].Chain...)
		case InheritAppend:
			bindings[i].Chain = append(bindings[i].Chain, b.Chain...)
		default:
			bindings[i].Chain = slices.Clone(b.Chain)
		}
		bindings[i].Mode = b.Mode
		return bindings
	}
	b.Chain = slices.Clone(b.Chain)
	return append(bindings, b)
}
