package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/addonsim/uisim/pkg/diag"
	"github.com/addonsim/uisim/pkg/layout"
)

// tickRate is how often serve advances the session clock.
const tickRate = 30

func init() {
	RegisterCommand(&Command{
		Name:  "serve",
		Short: "Serve the inspection API over HTTP",
		Long: `Load an addon and serve read-only JSON views of the session while the
session clock runs (OnUpdate handlers fire and message lines fade).

Endpoints:
  /widget-tree[?id=N]   Widget tree, or one subtree
  /order                Paint order
  /rect?id=N|name=X     Resolved rectangle with layout warnings
  /templates            Registered templates
  /health               Liveness check

Flags:
  --port N    Listen port (default from uisim.yaml debug.port, else 9090)`,
		Usage: "uisim serve [path] [--port N] [--host go|js]",
		Run:   runServe,
	})
}

func runServe(args []string) error {
	opts, err := parseSessionArgs(args)
	if err != nil {
		return err
	}
	s, err := openSession(opts)
	if err != nil {
		return err
	}
	k := s.kernel

	port := s.cfg.DebugPort
	if port == 0 {
		port = 9090
	}

	var mu sync.Mutex
	srv := &diag.Server{
		Registry:  k.Widgets,
		Templates: k.Templates,
		Screen: func() layout.Screen {
			return k.Screen()
		},
		Lock: &mu,
	}
	bound, err := srv.Start(fmt.Sprintf("localhost:%d", port))
	if err != nil {
		return err
	}
	fmt.Println(titleStyle.Render(fmt.Sprintf("Serving on http://localhost:%d", bound)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(time.Second / tickRate)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return srv.Stop(context.Background())
		case now := <-ticker.C:
			mu.Lock()
			k.Tick(now.Sub(last).Seconds())
			mu.Unlock()
			last = now
		}
	}
}
