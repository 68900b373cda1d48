package commands

import (
	"fmt"
	"os"

	"github.com/mitchellh/cli"
)

// LintTargetsCommand prints every hook and group name the nearest config
// defines, used for shell completion of `lint`.
type LintTargetsCommand struct{}

// Help returns the help text for the _lint-targets command.
func (c *LintTargetsCommand) Help() string {
	return "usage: peter-hook _lint-targets\n\nPrint completion candidates for `lint`.\n"
}

// Synopsis returns a short description of the _lint-targets command.
func (c *LintTargetsCommand) Synopsis() string {
	return "Print completion candidates for lint (internal)"
}

// LintTargetsCommandFactory creates a new _lint-targets command instance.
func LintTargetsCommandFactory() (cli.Command, error) {
	return &LintTargetsCommand{}, nil
}

// Run executes the _lint-targets command.
func (c *LintTargetsCommand) Run(args []string) int {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	names, err := targetNames(cwd, false)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	for _, n := range names {
		fmt.Println(n)
	}
	return 0
}
