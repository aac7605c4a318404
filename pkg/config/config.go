// Package config loads the optional uisim.yaml or uisim.toml project file
// and resolves defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/addonsim/uisim/pkg/layout"
)

// File names LoadOptional looks for, in order.
const (
	YAMLFile = "uisim.yaml"
	TOMLFile = "uisim.toml"
)

// Script hosts selectable in the config.
const (
	HostGo = "go"
	HostJS = "js"
)

// Config represents the optional project configuration.
type Config struct {
	Addon  AddonConfig  `yaml:"addon" toml:"addon"`
	Screen ScreenConfig `yaml:"screen" toml:"screen"`
	Host   string       `yaml:"host,omitempty" toml:"host,omitempty"`
	Debug  DebugConfig  `yaml:"debug" toml:"debug"`
}

// AddonConfig names what to load.
type AddonConfig struct {
	// TOC is a table-of-contents file listing markup and script files.
	TOC string `yaml:"toc,omitempty" toml:"toc,omitempty"`
	// Files are loaded after the TOC's files.
	Files []string `yaml:"files,omitempty" toml:"files,omitempty"`
}

// ScreenConfig is the root coordinate space.
type ScreenConfig struct {
	Width  float64 `yaml:"width,omitempty" toml:"width,omitempty"`
	Height float64 `yaml:"height,omitempty" toml:"height,omitempty"`
}

// DebugConfig controls diagnostics.
type DebugConfig struct {
	// Port for the inspection server; 0 disables it.
	Port    int  `yaml:"port,omitempty" toml:"port,omitempty"`
	Verbose bool `yaml:"verbose,omitempty" toml:"verbose,omitempty"`
}

// Resolved contains resolved configuration values. Paths are absolute.
type Resolved struct {
	Root      string
	TOC       string
	Files     []string
	Screen    layout.Screen
	Host      string
	DebugPort int
	Verbose   bool
}

// LoadOptional reads uisim.yaml or uisim.toml if present. A missing file
// yields an empty config. Having both is an error.
func LoadOptional(dir string) (*Config, error) {
	var found []string
	for _, name := range []string{YAMLFile, TOMLFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			found = append(found, name)
		}
	}
	switch len(found) {
	case 0:
		return &Config{}, nil
	case 2:
		return nil, fmt.Errorf("both %s and %s present in %s", YAMLFile, TOMLFile, dir)
	}

	name := found[0]
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	var cfg Config
	if name == TOMLFile {
		err = toml.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return &cfg, nil
}

// Resolve loads the config in dir (if present) and resolves defaults.
func Resolve(dir string) (*Resolved, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}
	return cfg.Resolve(dir)
}

// Resolve applies defaults relative to dir and validates the result.
func (c *Config) Resolve(dir string) (*Resolved, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	screen := layout.Screen{Width: c.Screen.Width, Height: c.Screen.Height}
	if screen.Width == 0 && screen.Height == 0 {
		screen = layout.DefaultScreen
	}
	if screen.Width <= 0 || screen.Height <= 0 {
		return nil, fmt.Errorf("screen size must be positive (got %gx%g)", screen.Width, screen.Height)
	}

	host := strings.ToLower(strings.TrimSpace(c.Host))
	if host == "" {
		host = HostGo
	}
	if host != HostGo && host != HostJS {
		return nil, fmt.Errorf("host must be %q or %q (got %q)", HostGo, HostJS, c.Host)
	}

	if c.Debug.Port < 0 || c.Debug.Port > 65535 {
		return nil, fmt.Errorf("debug.port out of range (got %d)", c.Debug.Port)
	}

	toc := strings.TrimSpace(c.Addon.TOC)
	if toc == "" {
		toc = defaultTOC(root)
	} else {
		toc = abs(root, toc)
	}

	files := make([]string, 0, len(c.Addon.Files))
	for _, f := range c.Addon.Files {
		if f = strings.TrimSpace(f); f != "" {
			files = append(files, abs(root, f))
		}
	}

	return &Resolved{
		Root:      root,
		TOC:       toc,
		Files:     files,
		Screen:    screen,
		Host:      host,
		DebugPort: c.Debug.Port,
		Verbose:   c.Debug.Verbose,
	}, nil
}

func abs(root, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(root, filepath.FromSlash(path))
}

// defaultTOC picks the first .toc file in dir, if any.
func defaultTOC(dir string) string {
	matches, _ := filepath.Glob(filepath.Join(dir, "*.toc"))
	if len(matches) == 0 {
		return ""
	}
	slices.Sort(matches)
	return matches[0]
}
