package cmd

import (
	"fmt"
)

func init() {
	RegisterCommand(&Command{
		Name:  "templates",
		Short: "List registered templates",
		Long: `Load an addon and list every virtual template with its resolved kind
and size. Templates that fail to resolve (for example through an
inheritance cycle) are shown with the error.`,
		Usage: "uisim templates [path] [--host go|js]",
		Run:   runTemplates,
	})
}

func runTemplates(args []string) error {
	opts, err := parseSessionArgs(args)
	if err != nil {
		return err
	}
	s, err := openSession(opts)
	if err != nil {
		return err
	}

	reg := s.kernel.Templates
	fmt.Println(headerStyle.Render(fmt.Sprintf("%-32s %-14s %s", "NAME", "KIND", "SIZE")))
	for _, name := range reg.Names() {
		info, err := reg.Info(name)
		if err != nil {
			fmt.Printf("%-32s %s\n", name, errorStyle.Render(err.Error()))
			continue
		}
		fmt.Printf("%-32s %-14s %gx%g\n", name, info.Kind, info.Width, info.Height)
	}
	return nil
}
