// Package markup reads declarative widget definitions from XML documents,
// YAML template packs and addon manifests.
package markup

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	uierrors "github.com/addonsim/uisim/pkg/errors"
	"github.com/addonsim/uisim/pkg/script"
	"github.com/addonsim/uisim/pkg/template"
	"github.com/addonsim/uisim/pkg/widget"
)

// node is a generic XML element. The host's schema is open ended, so
// elements are decoded once and interpreted by tag.
type node struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Nodes   []node     `xml:",any"`
	Text    string     `xml:",chardata"`
}

func (n *node) attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if strings.EqualFold(a.Name.Local, name) {
			return a.Value, true
		}
	}
	return "", false
}

func (n *node) str(name string) string {
	v, _ := n.attr(name)
	return v
}

func (n *node) float(name string) (float64, bool) {
	v, ok := n.attr(name)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func (n *node) boolPtr(name string) *bool {
	v, ok := n.attr(name)
	if !ok {
		return nil
	}
	b := strings.EqualFold(strings.TrimSpace(v), "true")
	return &b
}

func (n *node) child(tag string) *node {
	for i := range n.Nodes {
		if n.Nodes[i].XMLName.Local == tag {
			return &n.Nodes[i]
		}
	}
	return nil
}

// ParseXML reads a UI document and returns its widget definitions in
// document order. Include and Script elements need a file location to
// resolve and are skipped; ParseFile follows them.
func ParseXML(r io.Reader) ([]*template.Definition, error) {
	elems, err := parseDocument(r)
	if err != nil {
		return nil, err
	}
	var defs []*template.Definition
	for _, e := range elems {
		if e.def != nil {
			defs = append(defs, e.def)
		}
	}
	return defs, nil
}

// element is one top-level entry of a UI document. Exactly one field is set.
type element struct {
	def *template.Definition
	// include is another markup file, relative to the document.
	include string
	// script is a script file, relative to the document.
	script string
	// code is inline script source.
	code string
}

func parseDocument(r io.Reader) ([]element, error) {
	var root node
	if err := xml.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSyntax, err)
	}
	var elems []element
	for i := range root.Nodes {
		n := &root.Nodes[i]
		switch n.XMLName.Local {
		case "Include":
			if f := n.str("file"); f != "" {
				elems = append(elems, element{include: f})
			}
			continue
		case "Script":
			if f := n.str("file"); f != "" {
				elems = append(elems, element{script: f})
			} else if code := strings.TrimSpace(n.Text); code != "" {
				elems = append(elems, element{code: code})
			}
			continue
		}
		kind, ok := widget.ParseKind(n.XMLName.Local)
		if !ok {
			continue
		}
		elems = append(elems, element{def: parseFrame(n, kind)})
	}
	return elems, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseFrame(n *node, kind widget.Kind) *template.Definition {
	def := &template.Definition{
		Name:         n.str("name"),
		Kind:         kind,
		Inherits:     splitList(n.str("inherits")),
		Mixins:       splitList(n.str("mixin")),
		Parent:       n.str("parent"),
		Key:          n.str("parentKey"),
		ParentArray:  n.str("parentArray"),
		Hidden:       n.boolPtr("hidden"),
		SetAllPoints: n.boolPtr("setAllPoints"),
		EnableMouse:  n.boolPtr("enableMouse"),
		Strata:       n.str("frameStrata"),
		Text:         n.str("text"),
		Texture:      n.str("file"),
	}
	if v := n.boolPtr("virtual"); v != nil {
		def.Virtual = *v
	}
	if s, ok := n.attr("frameLevel"); ok {
		if lvl, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			def.Level = &lvl
		}
	}
	def.Texture = firstNonEmpty(def.Texture, n.str("atlas"))

	for i := range n.Nodes {
		c := &n.Nodes[i]
		switch c.XMLName.Local {
		case "Size":
			def.Size = parseSize(c)
		case "Anchors":
			for j := range c.Nodes {
				if c.Nodes[j].XMLName.Local == "Anchor" {
					def.Anchors = append(def.Anchors, parseAnchor(&c.Nodes[j]))
				}
			}
		case "Scripts":
			for j := range c.Nodes {
				def.Scripts = append(def.Scripts, parseScript(&c.Nodes[j]))
			}
		case "KeyValues":
			for j := range c.Nodes {
				if c.Nodes[j].XMLName.Local == "KeyValue" {
					def.KeyValues = append(def.KeyValues, parseKeyValue(&c.Nodes[j]))
				}
			}
		case "Frames":
			for j := range c.Nodes {
				if k, ok := widget.ParseKind(c.Nodes[j].XMLName.Local); ok {
					def.Children = append(def.Children, parseFrame(&c.Nodes[j], k))
				}
			}
		case "Layers":
			for j := range c.Nodes {
				layer := &c.Nodes[j]
				for l := range layer.Nodes {
					region := &layer.Nodes[l]
					if k, ok := widget.ParseKind(region.XMLName.Local); ok && k.IsRegion() {
						def.Children = append(def.Children, parseFrame(region, k))
					}
				}
			}
		}
	}
	return def
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// dimension reads x/y from n or from a nested AbsDimension.
func dimension(n *node) (x, y *float64) {
	if abs := n.child("AbsDimension"); abs != nil {
		n = abs
	}
	if v, ok := n.float("x"); ok {
		x = &v
	}
	if v, ok := n.float("y"); ok {
		y = &v
	}
	return x, y
}

func parseSize(n *node) *template.Size {
	w, h := dimension(n)
	return &template.Size{Width: w, Height: h}
}

func parseAnchor(n *node) template.AnchorDef {
	point, _ := widget.ParsePoint(n.str("point"))
	a := template.AnchorDef{
		Point:         point,
		RelativeTo:    n.str("relativeTo"),
		RelativeKey:   n.str("relativeKey"),
		RelativePoint: point,
	}
	if rp, ok := n.attr("relativePoint"); ok {
		if p, ok := widget.ParsePoint(rp); ok {
			a.RelativePoint = p
		}
	}
	src := n
	if off := n.child("Offset"); off != nil {
		src = off
	}
	x, y := dimension(src)
	if x != nil {
		a.X = *x
	}
	if y != nil {
		a.Y = *y
	}
	return a
}

func parseScript(n *node) template.ScriptDef {
	if !script.IsKnownHandler(n.XMLName.Local) {
		uierrors.Report(&uierrors.KernelError{
			Op:   "markup.parseScript",
			Kind: uierrors.KindParsing,
			Err:  fmt.Errorf("unknown script handler %q", n.XMLName.Local),
		})
	}
	return template.ScriptDef{
		Handler:  n.XMLName.Local,
		Body:     strings.TrimSpace(n.Text),
		Function: n.str("function"),
		Method:   n.str("method"),
		Inherit:  strings.ToLower(n.str("inherit")),
	}
}

func parseKeyValue(n *node) template.KeyValue {
	raw := n.str("value")
	kv := template.KeyValue{Key: n.str("key"), Value: raw}
	switch strings.ToLower(n.str("type")) {
	case "number":
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			kv.Value = f
		}
	case "boolean":
		kv.Value = strings.EqualFold(raw, "true")
	}
	return kv
}
