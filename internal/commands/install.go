package commands

import (
	"errors"
	"fmt"

	"github.com/jessevdk/go-flags"
	"github.com/mitchellh/cli"

	"github.com/tftio/peter-hook/pkg/gitfacade"
)

// hookStubTemplate is the script body written to .git/hooks/<event>. Git
// invokes it with the event's own argv/stdin convention; peter-hook reads
// whatever it needs (pre-push stdin, GIT_ARGS) back out in `run`.
const hookStubTemplate = `#!/bin/sh
# Installed by peter-hook install. Do not edit; reinstall to regenerate.
exec peter-hook run %s "$@"
`

func hookStubScript(event string) string {
	return fmt.Sprintf(hookStubTemplate, event)
}

// InstallCommand installs a hook stub script for one or more events.
type InstallCommand struct{}

// InstallOptions holds command-line options for the install command.
type InstallOptions struct {
	Force bool `long:"force" description:"Overwrite an existing hook stub" short:"f"`
	Help  bool `long:"help"  description:"Show this help message" short:"h"`
}

// Help returns the help text for the install command.
func (c *InstallCommand) Help() string {
	var opts InstallOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[EVENT...] " + OptionsUsage

	formatter := &HelpFormatter{
		Command:     "install",
		Description: "Install a hook stub into .git/hooks for one or more events.",
		Examples: []Example{
			{Command: "peter-hook install pre-commit", Description: "Install the pre-commit stub"},
			{Command: "peter-hook install pre-commit pre-push", Description: "Install multiple stubs"},
			{Command: "peter-hook install pre-commit --force", Description: "Overwrite an existing stub"},
		},
		Notes: []string{"Defaults to pre-commit when no EVENT is given."},
	}
	return formatter.FormatHelp(parser)
}

// Synopsis returns a short description of the install command.
func (c *InstallCommand) Synopsis() string {
	return "Install a hook stub"
}

// InstallCommandFactory creates a new install command instance.
func InstallCommandFactory() (cli.Command, error) {
	return &InstallCommand{}, nil
}

// Run executes the install command.
func (c *InstallCommand) Run(args []string) int {
	var opts InstallOptions
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

	installed := 0
	for _, event := range events {
		if repo.HasHook(event) && !opts.Force {
			fmt.Printf("Hook %q already installed; use --force to overwrite\n", event)
			continue
		}
		if err := repo.InstallHook(event, hookStubScript(event)); err != nil {
			fmt.Printf("Error installing %q: %v\n", event, err)
			return 1
		}
		fmt.Printf("Installed %s hook\n", event)
		installed++
	}

	if installed == 0 {
		return 1
	}
	return 0
}
