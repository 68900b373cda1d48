package commands

import (
	"errors"
	"fmt"

	"github.com/jessevdk/go-flags"
	"github.com/mitchellh/cli"
)

// HelpCommand handles the help command functionality.
type HelpCommand struct {
	UI cli.Ui
}

// HelpOptions holds command-line options for the help command.
type HelpOptions struct {
	Help bool `short:"h" long:"help" description:"Show this help message"`
}

// commandHelp maps each user-facing command to a one-line description; help
// itself and the underscore-prefixed completion helpers are not listed.
var commandHelp = map[string]string{
	"run":           "Run the hooks resolved for EVENT against the relevant changed files.",
	"lint":          "Resolve and run a single named hook or group against working-directory changes.",
	"validate":      "Load every config reachable from the working directory and report structural problems.",
	"install":       "Install a hook stub into .git/hooks for one or more events.",
	"install-hooks": "Install hook stubs for every event referenced by reachable configs.",
	"uninstall":     "Remove installed hook stubs.",
	"doctor":        "Report repository and configuration health.",
	"completions":   "Print a shell completion script.",
	"version":       "Show the peter-hook version.",
	"license":       "Show the peter-hook license.",
}

// Help returns the help text for the help command.
func (c *HelpCommand) Help() string {
	return `
Show help for a specific command.

Usage: peter-hook help [COMMAND]

If COMMAND is specified, shows detailed help for that command.
If no command is specified, shows general help.
`
}

// Synopsis returns a short description of the help command.
func (c *HelpCommand) Synopsis() string {
	return "Show help for a specific command"
}

// HelpCommandFactory creates a new help command instance.
func HelpCommandFactory() (cli.Command, error) {
	return &HelpCommand{}, nil
}

// Run executes the help command.
func (c *HelpCommand) Run(args []string) int {
	var opts HelpOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[COMMAND]"

	remaining, err := parser.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return 0
		}
		fmt.Printf("Error parsing arguments: %v\n", err)
		return 1
	}

	if len(remaining) == 0 {
		fmt.Print(c.Help())
		return 0
	}

	command := remaining[0]
	if help, exists := commandHelp[command]; exists {
		fmt.Printf("Command: %s\n\n", command)
		fmt.Printf("Description: %s\n\n", help)
		fmt.Printf("For detailed usage information, run:\n")
		fmt.Printf("  peter-hook %s --help\n", command)
		return 0
	}

	fmt.Printf("Unknown command: %s\n\n", command)
	fmt.Println("Available commands:")
	for cmd := range commandHelp {
		fmt.Printf("  %s\n", cmd)
	}
	return 1
}
