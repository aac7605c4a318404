package cmd

import (
	"fmt"

	"github.com/addonsim/uisim/pkg/diag"
)

func init() {
	RegisterCommand(&Command{
		Name:  "order",
		Short: "Print the paint order",
		Long: `Load an addon and print widgets from bottom to top in paint order
(stratum, then frame level, then creation order).`,
		Usage: "uisim order [path] [--host go|js]",
		Run:   runOrder,
	})
}

func runOrder(args []string) error {
	opts, err := parseSessionArgs(args)
	if err != nil {
		return err
	}
	s, err := openSession(opts)
	if err != nil {
		return err
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("%6s  %-18s %6s  %s", "ID", "STRATA", "LEVEL", "NAME")))
	for _, e := range diag.OrderSnapshot(s.kernel.Widgets) {
		name := e.Name
		if name == "" {
			name = regionStyle.Render("(anonymous)")
		}
		fmt.Printf("%6d  %-18s %6d  %s\n", e.ID, e.Strata, e.Level, name)
	}
	return nil
}
