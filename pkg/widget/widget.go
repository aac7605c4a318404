package widget

import (
	"errors"
	"strings"
)

// ID is the stable numeric identity of a widget.
type ID uint64

// None is the zero ID. It never names a widget.
const None ID = 0

// Sentinel errors returned by Registry mutations.
var (
	// ErrNotFound is returned when an ID does not name a live widget.
	ErrNotFound = errors.New("widget: not found")

	// ErrParentCycle is returned when a reparent would make a widget its
	// own ancestor.
	ErrParentCycle = errors.New("widget: parent cycle")

	// ErrAnchorCycle is returned when an anchor would make a widget depend
	// on its own position.
	ErrAnchorCycle = errors.New("widget: anchor cycle")
)

// Kind is the widget type tag.
type Kind int

const (
	// KindNone means "not specified"; Create treats it as KindFrame.
	KindNone Kind = iota
	KindFrame
	KindButton
	KindCheckButton
	KindFontString
	KindTexture
	KindEditBox
	KindScrollFrame
	KindSlider
	KindStatusBar
	KindCooldown
	KindMessageFrame
	KindGameTooltip
	KindModel
)

var kindNames = [...]string{
	KindNone:         "",
	KindFrame:        "Frame",
	KindButton:       "Button",
	KindCheckButton:  "CheckButton",
	KindFontString:   "FontString",
	KindTexture:      "Texture",
	KindEditBox:      "EditBox",
	KindScrollFrame:  "ScrollFrame",
	KindSlider:       "Slider",
	KindStatusBar:    "StatusBar",
	KindCooldown:     "Cooldown",
	KindMessageFrame: "MessageFrame",
	KindGameTooltip:  "GameTooltip",
	KindModel:        "Model",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Unknown"
	}
	return kindNames[k]
}

// IsRegion reports whether the kind is a drawable region rather than a frame.
func (k Kind) IsRegion() bool {
	return k == KindFontString || k == KindTexture
}

// kindAliases maps lower-cased host type names onto kinds. Scripts use both
// PascalCase ("Button") and upper case ("BUTTON").
var kindAliases = map[string]Kind{
	"frame":                 KindFrame,
	"eventframe":            KindFrame,
	"button":                KindButton,
	"itembutton":            KindButton,
	"dropdownbutton":        KindButton,
	"eventbutton":           KindButton,
	"checkbutton":           KindCheckButton,
	"fontstring":            KindFontString,
	"texture":               KindTexture,
	"editbox":               KindEditBox,
	"eventeditbox":          KindEditBox,
	"scrollframe":           KindScrollFrame,
	"slider":                KindSlider,
	"statusbar":             KindStatusBar,
	"cooldown":              KindCooldown,
	"messageframe":          KindMessageFrame,
	"scrollingmessageframe": KindMessageFrame,
	"gametooltip":           KindGameTooltip,
	"model":                 KindModel,
	"playermodel":           KindModel,
	"dressupmodel":          KindModel,
	"modelscene":            KindModel,
}

// ParseKind resolves a host type name case-insensitively.
func ParseKind(s string) (Kind, bool) {
	k, ok := kindAliases[strings.ToLower(strings.TrimSpace(s))]
	return k, ok
}

// Widget is a single node of the UI tree. All references to other widgets
// are IDs owned by the Registry.
type Widget struct {
	ID   ID
	Kind Kind
	// Name is the global name the widget was created or registered with.
	// The binding may since have moved to another widget; see
	// Registry.OwnsName.
	Name string

	Parent   ID
	Children []ID
	// Keys is the child access table ("parentKey" -> child).
	Keys map[string]ID
	// Arrays holds ordered child groups ("parentArray" -> children).
	Arrays map[string][]ID

	Anchors []Anchor

	Width, Height       float64
	WidthSet, HeightSet bool

	Strata      Strata
	Level       int
	FixedStrata bool
	FixedLevel  bool

	Shown        bool
	MouseEnabled bool

	Events    map[string]struct{}
	AllEvents bool

	// Mixins lists the behavior bundles attached to the widget, in the order
	// they were applied. The host resolves methods against them.
	Mixins []string

	Attributes map[string]any

	Text     string
	Texture  string
	Range    *Range
	Messages *MessageLog
}

// HasMixin reports whether name was applied to the widget.
func (w *Widget) HasMixin(name string) bool {
	for _, m := range w.Mixins {
		if m == name {
			return true
		}
	}
	return false
}

// ChildKeyOf returns the local access key under which child is stored.
func (w *Widget) ChildKeyOf(child ID) (string, bool) {
	for k, id := range w.Keys {
		if id == child {
			return k, true
		}
	}
	return "", false
}

func newWidget(id ID, kind Kind) *Widget {
	if kind == KindNone {
		kind = KindFrame
	}
	w := &Widget{
		ID:     id,
		Kind:   kind,
		Strata: StrataMedium,
		Shown:  true,
	}
	switch kind {
	case KindSlider, KindStatusBar:
		w.Range = &Range{Max: 1}
	case KindMessageFrame:
		w.Messages = NewMessageLog()
	}
	return w
}

func removeID(ids []ID, id ID) []ID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return ids
}
