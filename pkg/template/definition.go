// Package template stores declarative widget recipes and expands them,
// together with everything they inherit, into construction plans.
package template

import (
	"slices"

	"github.com/addonsim/uisim/pkg/widget"
)

// Script inheritance modes.
const (
	InheritNone    = ""
	InheritPrepend = "prepend"
	InheritAppend  = "append"
)

// Size holds per-axis optional dimensions.
type Size struct {
	Width  *float64
	Height *float64
}

// AnchorDef is an anchor as written in markup. The target is named by
// global name (RelativeTo, with "$parent" substitution) or by a key path
// (RelativeKey, such as "$parent.Title"). Neither means the parent.
type AnchorDef struct {
	Point         widget.AnchorPoint
	RelativeTo    string
	RelativeKey   string
	RelativePoint widget.AnchorPoint
	X, Y          float64
}

// ScriptDef binds a handler name to code. Exactly one of Body, Function and
// Method is normally set.
type ScriptDef struct {
	Handler  string
	Body     string
	Function string
	Method   string
	Inherit  string
	// Source names the file the script came from, for error messages.
	Source string
}

// KeyValue is an attribute assigned to the constructed widget.
type KeyValue struct {
	Key   string
	Value any
}

// Definition is a widget recipe: either a named template (Virtual) or an
// instance to construct.
type Definition struct {
	Name     string
	Kind     widget.Kind
	Inherits []string
	Mixins   []string
	Virtual  bool
	// Parent names the parent of a top-level instance.
	Parent string

	// Key is the local access key of a child ("parentKey").
	Key string
	// ParentArray appends the child to the named array on its parent.
	ParentArray string

	Size         *Size
	Anchors      []AnchorDef
	Scripts      []ScriptDef
	Children     []*Definition
	KeyValues    []KeyValue
	Hidden       *bool
	SetAllPoints *bool
	EnableMouse  *bool
	Strata       string
	Level        *int
	Text         string
	Texture      string
}

// Clone returns a deep copy of d.
func (d *Definition) Clone() *Definition {
	if d == nil {
		return nil
	}
	c := *d
	c.Inherits = slices.Clone(d.Inherits)
	c.Mixins = slices.Clone(d.Mixins)
	c.Size = d.Size.clone()
	c.Anchors = slices.Clone(d.Anchors)
	c.Scripts = slices.Clone(d.Scripts)
	c.KeyValues = slices.Clone(d.KeyValues)
	c.Hidden = clonePtr(d.Hidden)
	c.SetAllPoints = clonePtr(d.SetAllPoints)
	c.EnableMouse = clonePtr(d.EnableMouse)
	c.Level = clonePtr(d.Level)
	if d.Children != nil {
		c.Children = make([]*Definition, len(d.Children))
		for i, child := range d.Children {
			c.Children[i] = child.Clone()
		}
	}
	return &c
}

func (s *Size) clone() *Size {
	if s == nil {
		return nil
	}
	return &Size{Width: clonePtr(s.Width), Height: clonePtr(s.Height)}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Binding is a handler name and the ordered code chain bound to it.
type Binding struct {
	Handler string
	Chain   []ScriptDef
	// Mode is the inherit mode of the most recent declaration.
	Mode string
}

// Plan is a fully merged construction recipe.
type Plan struct {
	Name        string
	Key         string
	ParentArray string
	Kind        widget.Kind

	Width, Height *float64
	// Anchors are unique by Point, in declaration order.
	Anchors []AnchorDef
	// Scripts are unique by Handler, ordered by first appearance.
	Scripts      []Binding
	Mixins       []string
	Children     []*Plan
	KeyValues    []KeyValue
	Hidden       *bool
	SetAllPoints *bool
	EnableMouse  *bool
	Strata       string
	Level        *int
	Text         string
	Texture      string
}

// Script returns the binding for handler.
func (p *Plan) Script(handler string) (Binding, bool) {
	for _, b := range p.Scripts {
		if b.Handler == handler {
			return b, true
		}
	}
	return Binding{}, false
}

// Child returns the child plan stored under key.
func (p *Plan) Child(key string) (*Plan, bool) {
	for _, c := range p.Children {
		if c.Key == key && key != "" {
			return c, true
		}
	}
	return nil, false
}

// KeyValueMap returns the key values as a map.
func (p *Plan) KeyValueMap() map[string]any {
	m := make(map[string]any, len(p.KeyValues))
	for _, kv := range p.KeyValues {
		m[kv.Key] = kv.Value
	}
	return m
}

func (p *Plan) clone() *Plan {
	c := *p
	c.Width = clonePtr(p.Width)
	c.Height = clonePtr(p.Height)
	c.Anchors = slices.Clone(p.Anchors)
	c.Scripts = make([]Binding, len(p.Scripts))
	for i, b := range p.Scripts {
		b.Chain = slices.Clone(b.Chain)
		c.Scripts[i] = b
	}
	c.Mixins = slices.Clone(p.Mixins)
	c.KeyValues = slices.Clone(p.KeyValues)
	c.Hidden = clonePtr(p.Hidden)
	c.SetAllPoints = clonePtr(p.SetAllPoints)
	c.EnableMouse = clonePtr(p.EnableMouse)
	c.Level = clonePtr(p.Level)
	c.Children = make([]*Plan, len(p.Children))
	for i, child := range p.Children {
		c.Children[i] = child.clone()
	}
	return &c
}

// Defaults are the size and behavior bundles a native kind starts with.
type Defaults struct {
	Width, Height float64
	Mixins        []string
}

// KindDefaults lists the native kinds whose instances start with a size or
// behavior bundles before any template applies.
var KindDefaults = map[widget.Kind]Defaults{
	widget.KindCheckButton: {Width: 32, Height: 32},
	widget.KindSlider:      {Width: 144, Height: 17},
}

func defaultsPlan(kind widget.Kind) *Plan {
	p := &Plan{Kind: kind}
	d, ok := KindDefaults[kind]
	if !ok {
		return p
	}
	if d.Width > 0 {
		p.Width = &d.Width
	}
	if d.Height > 0 {
		p.Height = &d.Height
	}
	p.Mixins = slices.Clone(d.Mixins)
	return p
}
