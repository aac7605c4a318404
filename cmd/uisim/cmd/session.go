package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/addonsim/uisim/pkg/config"
	uierrors "github.com/addonsim/uisim/pkg/errors"
	"github.com/addonsim/uisim/pkg/jshost"
	"github.com/addonsim/uisim/pkg/kernel"
	"github.com/addonsim/uisim/pkg/markup"
	"github.com/addonsim/uisim/pkg/template"
)

// sessionOptions holds the flags shared by every command.
type sessionOptions struct {
	path    string
	host    string
	verbose bool
	port    int
	json    bool
	visible bool
}

func parseSessionArgs(args []string) (sessionOptions, error) {
	var opts sessionOptions
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--verbose":
			opts.verbose = true
		case arg == "--json":
			opts.json = true
		case arg == "--visible":
			opts.visible = true
		case arg == "--host" || arg == "--port":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("%s requires a value", arg)
			}
			if err := opts.set(arg, args[i+1]); err != nil {
				return opts, err
			}
			i++
		case strings.HasPrefix(arg, "--host=") || strings.HasPrefix(arg, "--port="):
			name, value, _ := strings.Cut(arg, "=")
			if err := opts.set(name, value); err != nil {
				return opts, err
			}
		case strings.HasPrefix(arg, "-"):
			return opts, fmt.Errorf("unknown flag %s", arg)
		default:
			if opts.path != "" {
				return opts, fmt.Errorf("unexpected argument %q", arg)
			}
			opts.path = arg
		}
	}
	return opts, nil
}

func (o *sessionOptions) set(flag, value string) error {
	switch flag {
	case "--host":
		o.host = value
	case "--port":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("--port: %w", err)
		}
		o.port = n
	}
	return nil
}

// session is a kernel loaded with an addon.
type session struct {
	cfg    *config.Resolved
	kernel *kernel.Kernel
	js     *jshost.Host
	title  string
}

// openSession resolves the config, builds the kernel and loads the addon
// named by opts.path. The path may be a project directory, a .toc manifest
// or a single markup or script file.
func openSession(opts sessionOptions) (*session, error) {
	dir, target := ".", ""
	if opts.path != "" {
		info, err := os.Stat(opts.path)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			dir = opts.path
		} else {
			dir, target = filepath.Dir(opts.path), opts.path
		}
	}

	cfg, err := config.Resolve(dir)
	if err != nil {
		return nil, err
	}
	if opts.host != "" {
		override := &config.Config{
			Screen: config.ScreenConfig{Width: cfg.Screen.Width, Height: cfg.Screen.Height},
			Host:   opts.host,
		}
		checked, err := override.Resolve(dir)
		if err != nil {
			return nil, err
		}
		cfg.Host = checked.Host
	}
	if opts.verbose {
		cfg.Verbose = true
	}
	if opts.port != 0 {
		cfg.DebugPort = opts.port
	}

	uierrors.SetHandler(&uierrors.LogHandler{Verbose: cfg.Verbose})

	s := &session{cfg: cfg}
	kopts := kernel.Options{Screen: cfg.Screen}
	if cfg.Host == config.HostJS {
		s.kernel, s.js = jshost.NewSession(kopts)
	} else {
		s.kernel = kernel.New(kopts)
	}

	var items []markup.Item
	switch {
	case target != "" && strings.EqualFold(filepath.Ext(target), ".toc"):
		items, err = s.manifest(target)
	case target != "":
		items, err = markup.LoadFile(target)
		s.title = filepath.Base(target)
	case cfg.TOC != "":
		items, err = s.manifest(cfg.TOC)
	}
	if err != nil {
		return nil, err
	}
	for _, f := range cfg.Files {
		more, err := markup.LoadFile(f)
		if err != nil {
			return nil, err
		}
		items = append(items, more...)
	}

	if err := s.run(items); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *session) manifest(path string) ([]markup.Item, error) {
	toc, items, err := markup.LoadAddon(path)
	if err != nil {
		return nil, err
	}
	s.title = toc.Title()
	return items, nil
}

// run applies items in load order. Consecutive definitions are loaded as
// one batch; scripts run only on the JavaScript host and are otherwise
// skipped.
func (s *session) run(items []markup.Item) error {
	var batch []*template.Definition
	flush := func() {
		if len(batch) == 0 {
			return
		}
		// Partial loads are still worth inspecting.
		if err := s.kernel.Load(batch); err != nil {
			log.Printf("load: %v", err)
		}
		batch = nil
	}

	for _, it := range items {
		if it.Def != nil {
			batch = append(batch, it.Def)
			continue
		}
		flush()
		if err := s.script(it); err != nil {
			return err
		}
	}
	flush()
	return nil
}

func (s *session) script(it markup.Item) error {
	inline := it.Code != ""
	if s.js == nil || (!inline && !strings.EqualFold(filepath.Ext(it.Script), ".js")) {
		log.Printf("skipping script %s (host is %s)", it.Script, s.cfg.Host)
		return nil
	}
	if inline {
		return s.js.Run(it.Script, it.Code)
	}
	return s.js.RunFile(it.Script)
}
