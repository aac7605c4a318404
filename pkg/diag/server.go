package diag

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	uierrors "github.com/addonsim/uisim/pkg/errors"
	"github.com/addonsim/uisim/pkg/layout"
	"github.com/addonsim/uisim/pkg/template"
	"github.com/addonsim/uisim/pkg/widget"
)

// Server exposes read-only JSON views of a session over HTTP.
//
// Locking contract: every handler holds Lock while it reads the registry.
// The owner of the session must hold the same lock while mutating it.
type Server struct {
	Registry  *widget.Registry
	Templates *template.Registry
	// Screen reports the current screen size.
	Screen func() layout.Screen
	Lock   sync.Locker

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// Handler returns the request multiplexer.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/widget-tree", s.handleWidgetTree)
	mux.HandleFunc("/order", s.handleOrder)
	mux.HandleFunc("/rect", s.handleRect)
	mux.HandleFunc("/templates", s.handleTemplates)
	mux.HandleFunc("/health", handleHealth)
	return mux
}

// Start listens on addr (":0" picks a free port) and serves in the
// background. Returns the bound port.
func (s *Server) Start(addr string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return s.listener.Addr().(*net.TCPAddr).Port, nil
	}

	// Bind listener first to fail fast on port conflicts
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return 0, fmt.Errorf("debug server listen: %w", err)
	}
	server := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	s.server = server
	s.listener = listener

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.mu.Lock()
			s.server = nil
			s.listener = nil
			s.mu.Unlock()
			log.Printf("debug server error: %v", err)
		}
	}()
	return listener.Addr().(*net.TCPAddr).Port, nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	server := s.server
	s.server = nil
	s.listener = nil
	s.mu.Unlock()

	if server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

// read runs fn while holding Lock. The lock is released even if fn panics;
// the panic is reported and returned as an error.
func (s *Server) read(fn func()) (err error) {
	if s.Lock != nil {
		s.Lock.Lock()
		defer s.Lock.Unlock()
	}
	defer uierrors.RecoverWithCallback("diag.read", func(rec any) {
		err = fmt.Errorf("panic: %v", rec)
	})
	fn()
	return nil
}

func (s *Server) screen() layout.Screen {
	if s.Screen == nil {
		return layout.DefaultScreen
	}
	return s.Screen()
}

func writeJSON(w http.ResponseWriter, v any) {
	// Encode to buffer first so we can catch errors
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, fmt.Sprintf("json encode error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) handleWidgetTree(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var (
		tree  any
		found = true
	)
	err := s.read(func() {
		if q := r.URL.Query().Get("id"); q != "" {
			var id widget.ID
			if id, found = s.lookup(q, ""); found {
				tree, _ = Subtree(s.Registry, s.screen(), id)
			}
			return
		}
		tree = Tree(s.Registry, s.screen())
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "unknown widget", http.StatusNotFound)
		return
	}
	writeJSON(w, tree)
}

func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var order []OrderEntry
	if err := s.read(func() { order = OrderSnapshot(s.Registry) }); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, order)
}

func (s *Server) handleRect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()

	var (
		id       widget.ID
		found    bool
		rect     layout.Rect
		warnings []*uierrors.LayoutWarning
	)
	err := s.read(func() {
		if id, found = s.lookup(q.Get("id"), q.Get("name")); found {
			rect, warnings = layout.Resolve(s.Registry, id, s.screen())
		}
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "unknown widget", http.StatusNotFound)
		return
	}

	resp := struct {
		ID       uint64   `json:"id"`
		Rect     SafeRect `json:"rect"`
		Warnings []string `json:"warnings,omitempty"`
	}{ID: uint64(id), Rect: safeRect(rect)}
	for _, warn := range warnings {
		resp.Warnings = append(resp.Warnings, warn.Error())
	}
	writeJSON(w, resp)
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.Templates == nil {
		http.Error(w, "no template registry", http.StatusServiceUnavailable)
		return
	}
	type entry struct {
		Name   string    `json:"name"`
		Kind   string    `json:"kind,omitempty"`
		Width  SafeFloat `json:"width"`
		Height SafeFloat `json:"height"`
		Error  string    `json:"error,omitempty"`
	}
	var out []entry
	for _, name := range s.Templates.Names() {
		info, err := s.Templates.Info(name)
		e := entry{Name: name, Kind: info.Kind.String(), Width: SafeFloat(info.Width), Height: SafeFloat(info.Height)}
		if err != nil {
			e.Error = err.Error()
		}
		out = append(out, e)
	}
	writeJSON(w, out)
}

// lookup resolves a widget by numeric id or global name. Callers hold the lock.
func (s *Server) lookup(idParam, name string) (widget.ID, bool) {
	if idParam != "" {
		n, err := strconv.ParseUint(idParam, 10, 64)
		if err != nil || !s.Registry.Exists(widget.ID(n)) {
			return widget.None, false
		}
		return widget.ID(n), true
	}
	if name != "" {
		return s.Registry.ResolveName(name)
	}
	return widget.None, false
}

// handleHealth returns a simple health check response.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
