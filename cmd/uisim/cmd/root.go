// Package cmd implements the uisim CLI commands.
//
// The command structure follows standard Go CLI patterns with a root command
// that dispatches to subcommands (dump, order, templates, serve).
package cmd

import (
	"fmt"
	"os"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// Command represents a CLI command.
type Command struct {
	Name        string
	Short       string
	Long        string
	Usage       string
	Run         func(args []string) error
	SubCommands []*Command
}

var rootCmd = &Command{
	Name:  "uisim",
	Short: "uisim - headless addon UI simulator",
	Long: `uisim loads addon markup and scripts into a headless UI session and
reports the resulting widget tree, layout and paint order.

Use "uisim <command> --help" for more information about a command.`,
	Usage: "uisim <command> [path] [flags]",
}

// Commands registered with the CLI.
var commands = make(map[string]*Command)

// RegisterCommand adds a command to the CLI.
func RegisterCommand(cmd *Command) {
	commands[cmd.Name] = cmd
	rootCmd.SubCommands = append(rootCmd.SubCommands, cmd)
}

// Execute runs the CLI with os.Args.
func Execute() error {
	return execute(os.Args[1:])
}

func execute(args []string) error {
	if len(args) == 0 {
		printHelp(rootCmd)
		return nil
	}

	switch args[0] {
	case "-h", "--help", "help":
		printHelp(rootCmd)
		return nil
	case "-v", "--version", "version":
		fmt.Printf("uisim version %s (built %s)\n", Version, BuildTime)
		return nil
	}

	// Find and execute the command
	cmdName := args[0]
	cmd, ok := commands[cmdName]
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", cmdName)
		printHelp(rootCmd)
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	// Check for help flag on subcommand
	cmdArgs := args[1:]
	for _, arg := range cmdArgs {
		if arg == "-h" || arg == "--help" || arg == "help" {
			printCommandHelp(cmd)
			return nil
		}
	}

	return cmd.Run(cmdArgs)
}

func printHelp(cmd *Command) {
	fmt.Println(cmd.Long)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Printf("  %s\n", cmd.Usage)
	fmt.Println()
	fmt.Println("Commands:")
	for _, sub := range cmd.SubCommands {
		fmt.Printf("  %-14s %s\n", sub.Name, sub.Short)
	}
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  -h, --help           Show help for a command")
	fmt.Println("  -v, --version        Show version information")
	fmt.Println()
	fmt.Println("Session flags (all commands):")
	fmt.Println("  --host go|js         Script host (default from uisim.yaml, else go)")
	fmt.Println("  --verbose            Print stack traces with reported errors")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  uisim dump MyAddon/MyAddon.toc   Print the widget tree")
	fmt.Println("  uisim order frames.xml           Print the paint order")
	fmt.Println("  uisim serve --port 9090          Serve the inspection API")
}

func printCommandHelp(cmd *Command) {
	fmt.Println(cmd.Long)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Printf("  %s\n", cmd.Usage)
}
