package markup

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/addonsim/uisim/pkg/template"
	"github.com/addonsim/uisim/pkg/widget"
)

var (
	// ErrSyntax wraps decoder failures.
	ErrSyntax = errors.New("markup: syntax error")

	// ErrUnsupportedVersion is returned for packs whose version is not a
	// valid v1 semantic version.
	ErrUnsupportedVersion = errors.New("markup: unsupported pack version")

	// ErrUnknownFormat is returned by ParseFile for unrecognized extensions.
	ErrUnknownFormat = errors.New("markup: unknown file format")
)

// PackMajor is the pack schema major version this package reads.
const PackMajor = "v1"

type yamlPack struct {
	Version   string      `yaml:"version"`
	Templates []yamlFrame `yaml:"templates"`
	Frames    []yamlFrame `yaml:"frames"`
}

type yamlSize struct {
	Width  *float64 `yaml:"width"`
	Height *float64 `yaml:"height"`
}

type yamlAnchor struct {
	Point         string  `yaml:"point"`
	RelativeTo    string  `yaml:"relativeTo"`
	RelativeKey   string  `yaml:"relativeKey"`
	RelativePoint string  `yaml:"relativePoint"`
	X             float64 `yaml:"x"`
	Y             float64 `yaml:"y"`
}

type yamlScript struct {
	Handler  string `yaml:"handler"`
	Body     string `yaml:"body"`
	Function string `yaml:"function"`
	Method   string `yaml:"method"`
	Inherit  string `yaml:"inherit"`
}

type yamlKeyValue struct {
	Key   string `yaml:"key"`
	Value any    `yaml:"value"`
}

type yamlFrame struct {
	Name         string         `yaml:"name"`
	Kind         string         `yaml:"kind"`
	Inherits     []string       `yaml:"inherits"`
	Mixins       []string       `yaml:"mixins"`
	Parent       string         `yaml:"parent"`
	Key          string         `yaml:"key"`
	ParentArray  string         `yaml:"parentArray"`
	Size         *yamlSize      `yaml:"size"`
	Anchors      []yamlAnchor   `yaml:"anchors"`
	Scripts      []yamlScript   `yaml:"scripts"`
	KeyValues    []yamlKeyValue `yaml:"keyValues"`
	Children     []yamlFrame    `yaml:"children"`
	Hidden       *bool          `yaml:"hidden"`
	SetAllPoints *bool          `yaml:"setAllPoints"`
	EnableMouse  *bool          `yaml:"enableMouse"`
	Strata       string         `yaml:"strata"`
	Level        *int           `yaml:"level"`
	Text         string         `yaml:"text"`
	Texture      string         `yaml:"texture"`
}

// ParseYAML reads a template pack. Entries under "templates" are virtual;
// entries under "frames" are instances. Templates come first in the result.
func ParseYAML(r io.Reader) ([]*template.Definition, error) {
	var pack yamlPack
	if err := yaml.NewDecoder(r).Decode(&pack); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrSyntax, err)
	}
	if err := checkVersion(pack.Version); err != nil {
		return nil, err
	}
	var defs []*template.Definition
	for _, f := range pack.Templates {
		def, err := f.definition()
		if err != nil {
			return nil, err
		}
		def.Virtual = true
		defs = append(defs, def)
	}
	for _, f := range pack.Frames {
		def, err := f.definition()
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// checkVersion accepts an empty version or any valid v1.x.y version.
func checkVersion(v string) error {
	if v == "" {
		return nil
	}
	if !semver.IsValid(v) || semver.Major(v) != PackMajor {
		return fmt.Errorf("%w: %q (want %s.x.y)", ErrUnsupportedVersion, v, PackMajor)
	}
	return nil
}

func (f yamlFrame) definition() (*template.Definition, error) {
	def := &template.Definition{
		Name:         f.Name,
		Inherits:     f.Inherits,
		Mixins:       f.Mixins,
		Parent:       f.Parent,
		Key:          f.Key,
		ParentArray:  f.ParentArray,
		Hidden:       f.Hidden,
		SetAllPoints: f.SetAllPoints,
		EnableMouse:  f.EnableMouse,
		Strata:       f.Strata,
		Level:        f.Level,
		Text:         f.Text,
		Texture:      f.Texture,
	}
	if f.Kind != "" {
		kind, ok := widget.ParseKind(f.Kind)
		if !ok {
			return nil, fmt.Errorf("%w: %q has unknown kind %q", ErrSyntax, f.Name, f.Kind)
		}
		def.Kind = kind
	}
	if f.Size != nil {
		def.Size = &template.Size{Width: f.Size.Width, Height: f.Size.Height}
	}
	for _, a := range f.Anchors {
		point, ok := widget.ParsePoint(a.Point)
		if !ok {
			return nil, fmt.Errorf("%w: %q has unknown anchor point %q", ErrSyntax, f.Name, a.Point)
		}
		rel := point
		if a.RelativePoint != "" {
			if rel, ok = widget.ParsePoint(a.RelativePoint); !ok {
				return nil, fmt.Errorf("%w: %q has unknown anchor point %q", ErrSyntax, f.Name, a.RelativePoint)
			}
		}
		def.Anchors = append(def.Anchors, template.AnchorDef{
			Point:         point,
			RelativeTo:    a.RelativeTo,
			RelativeKey:   a.RelativeKey,
			RelativePoint: rel,
			X:             a.X,
			Y:             a.Y,
		})
	}
	for _, s := range f.Scripts {
		def.Scripts = append(def.Scripts, template.ScriptDef{
			Handler:  s.Handler,
			Body:     s.Body,
			Function: s.Function,
			Method:   s.Method,
			Inherit:  s.Inherit,
		})
	}
	for _, kv := range f.KeyValues {
		def.KeyValues = append(def.KeyValues, template.KeyValue{Key: kv.Key, Value: kv.Value})
	}
	for _, c := range f.Children {
		child, err := c.definition()
		if err != nil {
			return nil, err
		}
		def.Children = append(def.Children, child)
	}
	return def, nil
}
