// Package construct instantiates template plans as widget subtrees.
//
// Construction runs in two phases. The structural phase allocates every
// widget of the subtree, wires parents, names and access keys, and only
// then resolves anchors and binds scripts, so anchors and handlers may refer
// to any sibling. The lifecycle phase fires handlers afterwards; a handler
// that constructs more widgets starts an independent construction.
package construct

import (
	"fmt"
	"strings"

	uierrors "github.com/addonsim/uisim/pkg/errors"
	"github.com/addonsim/uisim/pkg/script"
	"github.com/addonsim/uisim/pkg/template"
	"github.com/addonsim/uisim/pkg/widget"
)

// Request names the root widget of a construction.
type Request struct {
	// Name is the global name of the root; empty leaves it unnamed.
	Name string
	// Parent is the root's parent; None makes it a root.
	Parent widget.ID
	// Kind overrides the plan's kind when set.
	Kind widget.Kind
}

// Pipeline constructs widgets from plans.
type Pipeline struct {
	Registry *widget.Registry
	Bindings *script.Bindings
	Runner   *script.Runner
	// Host receives behavior bundles when it implements script.MixinApplier.
	Host script.Host
	// OnConstructed, if set, runs once per Construct call after the
	// descendants' OnLoad handlers and before the root's.
	OnConstructed func(root widget.ID)
}

// node is one widget built by a construction call.
type node struct {
	id       widget.ID
	plan     *template.Plan
	children []*node
}

// Construct builds plan under req and fires its lifecycle handlers.
// Handler failures are reported, not returned; the id is valid as long as
// the structural phase succeeded.
func (p *Pipeline) Construct(plan *template.Plan, req Request) (widget.ID, error) {
	if plan == nil {
		plan = &template.Plan{}
	}
	if req.Parent != widget.None && !p.Registry.Exists(req.Parent) {
		return widget.None, fmt.Errorf("construct: parent %d: %w", req.Parent, widget.ErrNotFound)
	}

	kind := req.Kind
	if kind == widget.KindNone {
		kind = plan.Kind
	}
	root := p.build(plan, req.Name, req.Parent, kind)

	var all []*node
	collect(root, &all)
	for _, n := range all {
		p.anchor(n)
	}
	for _, n := range all {
		p.bind(n)
	}

	p.lifecycle(root, all)
	return root.id, nil
}

func collect(n *node, out *[]*node) {
	*out = append(*out, n)
	for _, c := range n.children {
		collect(c, out)
	}
}

// build allocates the widget for plan and, recursively, its children.
func (p *Pipeline) build(plan *template.Plan, name string, parent widget.ID, kind widget.Kind) *node {
	reg := p.Registry
	if kind == widget.KindNone {
		kind = widget.KindFrame
	}
	id := reg.Create(kind)
	if name != "" {
		reg.RegisterName(id, name)
	}
	if parent != widget.None {
		// The parent is known to exist and id is new, so this cannot fail.
		_ = reg.SetParent(id, parent)
	}
	p.apply(id, plan)

	n := &node{id: id, plan: plan}
	for _, cp := range plan.Children {
		childName := SubstituteParent(cp.Name, name)
		child := p.build(cp, childName, id, cp.Kind)
		p.wireKey(id, child.id, cp)
		n.children = append(n.children, child)
	}
	return n
}

// SubstituteParent replaces "$parent" in a child name with the parent's
// global name. Children of unnamed parents that rely on the substitution
// stay unnamed.
func SubstituteParent(name, parentName string) string {
	if !strings.Contains(name, "$parent") && !strings.Contains(name, "$Parent") {
		return name
	}
	if parentName == "" {
		return ""
	}
	return strings.NewReplacer("$parent", parentName, "$Parent", parentName).Replace(name)
}

func (p *Pipeline) wireKey(parent, child widget.ID, cp *template.Plan) {
	reg := p.Registry
	if cp.Key != "" {
		owner, key := parent, cp.Key
		if rest, ok := strings.CutPrefix(key, "$parent."); ok {
			w, _ := reg.Get(parent)
			owner, key = w.Parent, rest
		}
		reg.SetChildKey(owner, key, child)
	}
	if cp.ParentArray != "" {
		reg.AppendToArray(parent, cp.ParentArray, child)
	}
}

func (p *Pipeline) apply(id widget.ID, plan *template.Plan) {
	reg := p.Registry
	if plan.Width != nil {
		reg.SetWidth(id, *plan.Width)
	}
	if plan.Height != nil {
		reg.SetHeight(id, *plan.Height)
	}
	if len(plan.Mixins) > 0 {
		reg.AddMixins(id, plan.Mixins...)
		if applier, ok := p.Host.(script.MixinApplier); ok {
			if err := applier.ApplyMixins(id, plan.Mixins); err != nil {
				uierrors.Report(&uierrors.KernelError{
					Op:     "construct.ApplyMixins",
					Kind:   uierrors.KindHandler,
					Widget: uint64(id),
					Err:    err,
				})
			}
		}
	}
	for _, kv := range plan.KeyValues {
		reg.SetAttribute(id, kv.Key, kv.Value)
	}
	if plan.Hidden != nil {
		reg.SetShown(id, !*plan.Hidden)
	}
	if plan.Strata != "" {
		if s, ok := widget.ParseStrata(plan.Strata); ok {
			reg.SetStrata(id, s)
		}
	}
	if plan.Level != nil {
		reg.SetLevel(id, *plan.Level)
	}
	if plan.EnableMouse != nil {
		reg.EnableMouse(id, *plan.EnableMouse)
	}
	w, _ := reg.Get(id)
	if plan.Text != "" {
		w.Text = plan.Text
	}
	if plan.Texture != "" {
		w.Texture = plan.Texture
	}
}

// anchor resolves the plan's anchors once the whole subtree exists.
func (p *Pipeline) anchor(n *node) {
	reg := p.Registry
	for _, a := range n.plan.Anchors {
		rel, ok := p.relative(n.id, a)
		if !ok {
			uierrors.Report(&uierrors.KernelError{
				Op:     "construct.SetPoint",
				Kind:   uierrors.KindReference,
				Widget: uint64(n.id),
				Err:    fmt.Errorf("anchor %s: unresolved target %s; using parent", a.Point, describeTarget(a)),
			})
			rel = widget.None
		}
		err := reg.SetPoint(n.id, widget.Anchor{
			Point:         a.Point,
			Relative:      rel,
			RelativePoint: a.RelativePoint,
			X:             a.X,
			Y:             a.Y,
		})
		if err != nil {
			uierrors.Report(&uierrors.KernelError{
				Op:     "construct.SetPoint",
				Kind:   uierrors.KindStructural,
				Widget: uint64(n.id),
				Err:    err,
			})
		}
	}
	if n.plan.SetAllPoints != nil && *n.plan.SetAllPoints {
		if err := reg.SetAllPoints(n.id, widget.None); err != nil {
			uierrors.Report(&uierrors.KernelError{
				Op:     "construct.SetAllPoints",
				Kind:   uierrors.KindStructural,
				Widget: uint64(n.id),
				Err:    err,
			})
		}
	}
}

func describeTarget(a template.AnchorDef) string {
	if a.RelativeKey != "" {
		return "key " + a.RelativeKey
	}
	return fmt.Sprintf("%q", a.RelativeTo)
}

// relative resolves an anchor target to an identity. None means the parent.
func (p *Pipeline) relative(id widget.ID, a template.AnchorDef) (widget.ID, bool) {
	reg := p.Registry
	w, _ := reg.Get(id)
	if a.RelativeKey != "" {
		return ResolveKeyPath(reg, id, a.RelativeKey)
	}
	switch {
	case a.RelativeTo == "":
		return widget.None, true
	case a.RelativeTo == "$parent" || a.RelativeTo == "$Parent":
		return w.Parent, true
	}
	name := a.RelativeTo
	if strings.Contains(name, "$parent") || strings.Contains(name, "$Parent") {
		parentName := ""
		if pw, ok := reg.Get(w.Parent); ok {
			parentName = pw.Name
		}
		name = SubstituteParent(name, parentName)
	}
	return reg.ResolveName(name)
}

// ResolveKeyPath follows a dotted key path such as "$parent.$parent.Title"
// from id. Each "$parent" steps up one level, starting from id's parent;
// other segments descend through access keys.
func ResolveKeyPath(reg *widget.Registry, id widget.ID, path string) (widget.ID, bool) {
	cur := id
	first := true
	for part := range strings.SplitSeq(path, ".") {
		switch part {
		case "":
			continue
		case "$parent", "$Parent", "$parentKey":
			w, ok := reg.Get(cur)
			if !ok || w.Parent == widget.None {
				return widget.None, false
			}
			cur = w.Parent
		default:
			next, ok := reg.ChildByKey(cur, part)
			if !ok {
				return widget.None, false
			}
			cur = next
		}
		first = false
	}
	if first {
		return widget.None, false
	}
	return cur, true
}

// bind installs the plan's script chains exactly as declared.
func (p *Pipeline) bind(n *node) {
	for _, b := range n.plan.Scripts {
		p.Bindings.Clear(n.id, b.Handler)
		for _, sd := range b.Chain {
			p.Bindings.Hook(n.id, b.Handler, script.Handler{
				Body:     sd.Body,
				Function: sd.Function,
				Method:   sd.Method,
				Source:   sd.Source,
			})
		}
	}
}

// lifecycle fires OnLoad for descendants in post-order, then the
// constructed signal and OnLoad for the root, then OnShow for every
// constructed widget that is visible.
func (p *Pipeline) lifecycle(root *node, all []*node) {
	for _, c := range root.children {
		p.loadPostOrder(c)
	}
	if p.OnConstructed != nil && p.Registry.Exists(root.id) {
		func() {
			defer uierrors.Recover("construct.OnConstructed")
			p.OnConstructed(root.id)
		}()
	}
	p.fire(root.id, "OnLoad")
	for _, n := range all {
		if p.Registry.IsVisible(n.id) {
			p.fire(n.id, "OnShow")
		}
	}
}

func (p *Pipeline) loadPostOrder(n *node) {
	for _, c := range n.children {
		p.loadPostOrder(c)
	}
	p.fire(n.id, "OnLoad")
}

func (p *Pipeline) fire(id widget.ID, name string) {
	if p.Runner == nil || !p.Bindings.Has(id, name) {
		return
	}
	p.Runner.Fire(id, name)
}
