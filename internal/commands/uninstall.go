package commands

import (
	"errors"
	"fmt"

	"github.com/jessevdk/go-flags"
	"github.com/mitchellh/cli"

	"github.com/tftio/peter-hook/pkg/gitfacade"
)

// UninstallCommand removes installed hook stubs.
type UninstallCommand struct{}

// UninstallOptions holds command-line options for the uninstall command.
type UninstallOptions struct {
	Help bool `short:"h" long:"help" description:"Show this help message"`
}

// Help returns the help text for the uninstall command.
func (c *UninstallCommand) Help() string {
	var opts UninstallOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[EVENT...] " + OptionsUsage

	formatter := &HelpFormatter{
		Command:     "uninstall",
		Description: "Remove installed hook stubs.",
		Examples: []Example{
			{Command: "peter-hook uninstall pre-commit", Description: "Remove the pre-commit stub"},
			{Command: "peter-hook uninstall", Description: "Remove the default pre-commit stub"},
		},
	}
	return formatter.FormatHelp(parser)
}

// Synopsis returns a short description of the uninstall command.
func (c *UninstallCommand) Synopsis() string {
	return "Remove installed hook stubs"
}

// UninstallCommandFactory creates a new uninstall command instance.
func UninstallCommandFactory() (cli.Command, error) {
	return &UninstallCommand{}, nil
}

// Run executes the uninstall command.
func (c *UninstallCommand) Run(args []string) int {
	var opts UninstallOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[EVENT...] " + OptionsUsage

	events, err := parser.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return 0
		}
		fmt.Printf("Error parsing arguments: %v\n", err)
		return 1
	}
	if len(events) == 0 {
		events = []string{"pre-commit"}
	}

	repo, err := gitfacade.FindRepoRoot(".")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}

	for _, event := range events {
		if err := repo.UninstallHook(event); err != nil {
			fmt.Printf("Error removing %q: %v\n", event, err)
			return 1
		}
		fmt.Printf("Removed %s hook\n", event)
	}
	return 0
}
