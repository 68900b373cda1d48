package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/mitchellh/cli"

	"github.com/tftio/peter-hook/pkg/config"
	"github.com/tftio/peter-hook/pkg/gitfacade"
)

// InstallHooksCommand installs stubs for every event referenced by
// reachable configs, rather than a caller-specified list.
type InstallHooksCommand struct{}

// InstallHooksOptions holds command-line options for the install-hooks command.
type InstallHooksOptions struct {
	Force bool `long:"force" description:"Overwrite existing hook stubs" short:"f"`
	Help  bool `long:"help"  description:"Show this help message" short:"h"`
}

// Help returns the help text for the install-hooks command.
func (c *InstallHooksCommand) Help() string {
	var opts InstallHooksOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = OptionsUsage

	formatter := &HelpFormatter{
		Command:     "install-hooks",
		Description: "Install hook stubs for every event referenced by reachable configs.",
		Examples: []Example{
			{Command: "peter-hook install-hooks", Description: "Install a stub for every event found in reachable configs"},
		},
	}
	return formatter.FormatHelp(parser)
}

// Synopsis returns a short description of the install-hooks command.
func (c *InstallHooksCommand) Synopsis() string {
	return "Install stubs for every event in reachable configs"
}

// InstallHooksCommandFactory creates a new install-hooks command instance.
func InstallHooksCommandFactory() (cli.Command, error) {
	return &InstallHooksCommand{}, nil
}

// Run executes the install-hooks command.
func (c *InstallHooksCommand) Run(args []string) int {
	var opts InstallHooksOptions
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

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}

	events, err := eventsAcrossConfigs(cwd)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	if len(events) == 0 {
		fmt.Println("No events found in reachable configs")
		return 0
	}

	repo, err := gitfacade.FindRepoRoot(".")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}

	installed := 0
	for _, event := range events {
		if repo.HasHook(event) && !opts.Force {
			continue
		}
		if err := repo.InstallHook(event, hookStubScript(event)); err != nil {
			fmt.Printf("Error installing %q: %v\n", event, err)
			return 1
		}
		fmt.Printf("Installed %s hook\n", event)
		installed++
	}

	fmt.Printf("Installed %d hook stub(s)\n", installed)
	return 0
}

// eventsAcrossConfigs returns the union of known-event hook/group names
// across every config reachable from root.
func eventsAcrossConfigs(root string) ([]string, error) {
	paths, err := findConfigs(root)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var out []string
	for _, path := range paths {
		cfg, err := config.Load(path, "install-hooks")
		if err != nil {
			return nil, err
		}
		for name := range cfg.Hooks {
			if isKnownEvent(name) && !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
		for name := range cfg.Groups {
			if isKnownEvent(name) && !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out, nil
}
