package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/addonsim/uisim/pkg/diag"
)

func init() {
	RegisterCommand(&Command{
		Name:  "dump",
		Short: "Print the widget tree",
		Long: `Load an addon and print every widget with its resolved rectangle,
stratum and frame level.

Flags:
  --json      Print the tree as JSON instead of text
  --visible   Skip hidden subtrees`,
		Usage: "uisim dump [path] [--json] [--visible] [--host go|js]",
		Run:   runDump,
	})
}

func runDump(args []string) error {
	opts, err := parseSessionArgs(args)
	if err != nil {
		return err
	}
	s, err := openSession(opts)
	if err != nil {
		return err
	}
	k := s.kernel

	if opts.json {
		data, err := json.MarshalIndent(diag.Tree(k.Widgets, k.Screen()), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	if s.title != "" {
		fmt.Println(titleStyle.Render(s.title))
	}
	return diag.WriteText(os.Stdout, k.Widgets, k.Screen(), diag.TextOptions{
		VisibleOnly: opts.visible,
		Style:       styleLine,
	})
}
