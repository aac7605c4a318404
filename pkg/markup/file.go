package markup

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	uierrors "github.com/addonsim/uisim/pkg/errors"
	"github.com/addonsim/uisim/pkg/template"
)

// Item is one entry of a loaded addon in load order: either a widget
// definition or a script to run.
type Item struct {
	Def *template.Definition
	// Script is the script file to run, or for inline code the markup file
	// that declared it.
	Script string
	// Code is inline script source; empty for script files.
	Code string
}

// Definitions returns the widget definitions among items, in order.
func Definitions(items []Item) []*template.Definition {
	var defs []*template.Definition
	for _, it := range items {
		if it.Def != nil {
			defs = append(defs, it.Def)
		}
	}
	return defs
}

func isMarkup(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml", ".yaml", ".yml":
		return true
	}
	return false
}

func isScript(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".lua":
		return true
	}
	return false
}

// ParseFile reads definitions from an .xml, .yaml or .yml file, following
// Include elements into nested markup files.
func ParseFile(path string) ([]*template.Definition, error) {
	if !isMarkup(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	items, err := LoadFile(path)
	return Definitions(items), err
}

// LoadFile reads a markup or script file. Includes are resolved relative
// to the including file and each file is read at most once, so include
// cycles terminate. Failing includes are reported to the error channel and
// skipped; only a failure of path itself is returned.
func LoadFile(path string) ([]Item, error) {
	l := newLoader()
	err := l.file(path)
	return l.items, err
}

// loader accumulates items across the files of one addon.
type loader struct {
	visited map[string]bool
	items   []Item
}

func newLoader() *loader {
	return &loader{visited: make(map[string]bool)}
}

func (l *loader) file(path string) error {
	key, err := filepath.Abs(path)
	if err != nil {
		key = filepath.Clean(path)
	}
	if l.visited[key] {
		return nil
	}
	l.visited[key] = true

	switch {
	case isScript(path):
		l.items = append(l.items, Item{Script: path})
		return nil
	case !isMarkup(path):
		return fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var elems []element
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		elems, err = parseDocument(f)
	default:
		var defs []*template.Definition
		defs, err = ParseYAML(f)
		for _, d := range defs {
			elems = append(elems, element{def: d})
		}
	}
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for _, e := range elems {
		switch {
		case e.def != nil:
			stampSource(e.def, path)
			l.items = append(l.items, Item{Def: e.def})
		case e.include != "":
			// A broken include drops its own content only.
			if err := l.file(relative(dir, e.include)); err != nil {
				uierrors.Report(&uierrors.KernelError{
					Op:   "markup.Include",
					Kind: uierrors.KindParsing,
					Err:  fmt.Errorf("%s: include %s: %w", path, e.include, err),
				})
			}
		case e.script != "":
			// Scripts are recorded, not read, so this cannot fail.
			_ = l.file(relative(dir, e.script))
		case e.code != "":
			l.items = append(l.items, Item{Script: path, Code: e.code})
		}
	}
	return nil
}

// relative resolves a host path (backslash separated) against dir.
func relative(dir, p string) string {
	p = filepath.FromSlash(strings.ReplaceAll(p, `\`, "/"))
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

func stampSource(d *template.Definition, path string) {
	for i := range d.Scripts {
		if d.Scripts[i].Source == "" {
			d.Scripts[i].Source = path
		}
	}
	for _, c := range d.Children {
		stampSource(c, path)
	}
}

// TOC is an addon manifest: "## Key: Value" metadata and the files to load
// in order.
type TOC struct {
	Dir      string
	Metadata map[string]string
	Files    []string
}

// Title returns the addon title, or the directory name.
func (t *TOC) Title() string {
	if title := t.Metadata["Title"]; title != "" {
		return title
	}
	return filepath.Base(t.Dir)
}

// ParseTOC reads a manifest. File paths use the host's backslash separator
// and are converted to slash form relative to dir. Inline annotations such
// as "[AllowLoadGameType ...]" are dropped.
func ParseTOC(r io.Reader, dir string) (*TOC, error) {
	toc := &TOC{Dir: dir, Metadata: make(map[string]string)}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(line, "##"); ok {
			if key, value, ok := strings.Cut(rest, ":"); ok {
				toc.Metadata[strings.TrimSpace(key)] = strings.TrimSpace(value)
			}
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		if i := strings.Index(line, "["); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" {
			continue
		}
		toc.Files = append(toc.Files, strings.ReplaceAll(line, `\`, "/"))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return toc, nil
}

// LoadTOC parses the manifest at path.
func LoadTOC(path string) (*TOC, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseTOC(f, filepath.Dir(path))
}

// LoadAddon reads every file a manifest lists, in order, following
// includes. Entries that are neither markup nor script are skipped.
func LoadAddon(tocPath string) (*TOC, []Item, error) {
	toc, err := LoadTOC(tocPath)
	if err != nil {
		return nil, nil, err
	}
	l := newLoader()
	for _, file := range toc.Files {
		if !isMarkup(file) && !isScript(file) {
			continue
		}
		if err := l.file(relative(toc.Dir, file)); err != nil {
			return toc, l.items, err
		}
	}
	return toc, l.items, nil
}

// ParseAddon returns the widget definitions of every markup file a manifest
// lists or includes, in load order.
func ParseAddon(tocPath string) (*TOC, []*template.Definition, error) {
	toc, items, err := LoadAddon(tocPath)
	return toc, Definitions(items), err
}
