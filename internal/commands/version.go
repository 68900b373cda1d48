package commands

import (
	"errors"
	"fmt"

	"github.com/jessevdk/go-flags"
	"github.com/mitchellh/cli"
)

// Version is set by the build process (GoReleaser ldflags).
var Version = "dev"

// VersionCommand prints the peter-hook version.
type VersionCommand struct{}

// VersionOptions holds command-line options for the version command.
type VersionOptions struct {
	Help bool `short:"h" long:"help" description:"Show this help message"`
}

// Help returns the help text for the version command.
func (c *VersionCommand) Help() string {
	return "usage: peter-hook version\n\nPrint the peter-hook version and exit.\n"
}

// Synopsis returns a short description of the version command.
func (c *VersionCommand) Synopsis() string {
	return "Show the peter-hook version"
}

// VersionCommandFactory creates a new version command instance.
func VersionCommandFactory() (cli.Command, error) {
	return &VersionCommand{}, nil
}

// Run executes the version command. The deprecated-config check is bypassed
// for this command, so it never needs a repository or a config file.
func (c *VersionCommand) Run(args []string) int {
	var opts VersionOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = OptionsUsage

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return 0
		}
		fmt.Printf("Error parsing arguments: %v\n", err)
		return 1
	}

	fmt.Printf("peter-hook %s\n", Version)
	return 0
}
