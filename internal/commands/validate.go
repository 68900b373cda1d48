package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jessevdk/go-flags"
	"github.com/mitchellh/cli"

	"github.com/tftio/peter-hook/pkg/config"
	"github.com/tftio/peter-hook/pkg/constants"
)

// ValidateCommand loads every config reachable from the working directory
// and reports structural errors and requires_files hazards.
type ValidateCommand struct{}

// ValidateOptions holds command-line options for the validate command.
type ValidateOptions struct {
	Help bool `short:"h" long:"help" description:"Show this help message"`
}

// Help returns the help text for the validate command.
func (c *ValidateCommand) Help() string {
	var opts ValidateOptions
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = OptionsUsage

	formatter := &HelpFormatter{
		Command:     "validate",
		Description: "Load every config reachable from the working directory and report structural problems.",
		Examples: []Example{
			{Command: "peter-hook validate", Description: "Validate every .peter-hook.toml under the current directory"},
		},
		Notes: []string{
			"Warns when a hook with requires_files = true is keyed to an event that cannot provide files.",
		},
	}
	return formatter.FormatHelp(parser)
}

// Synopsis returns a short description of the validate command.
func (c *ValidateCommand) Synopsis() string {
	return "Validate reachable .peter-hook.toml configs"
}

// ValidateCommandFactory creates a new validate command instance.
func ValidateCommandFactory() (cli.Command, error) {
	return &ValidateCommand{}, nil
}

// Run executes the validate command.
func (c *ValidateCommand) Run(args []string) int {
	var opts ValidateOptions
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

	paths, err := findConfigs(cwd)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	if len(paths) == 0 {
		fmt.Println("No .peter-hook.toml files found")
		return 0
	}

	failed := false
	for _, path := range paths {
		cfg, loadErr := config.Load(path, "validate")
		if loadErr != nil {
			fmt.Printf("INVALID %s: %v\n", path, loadErr)
			failed = true
			continue
		}
		fmt.Printf("OK %s\n", path)
		for name, hook := range cfg.Hooks {
			if hook.RequiresFiles && !constants.CanProvideFiles(name) {
				fmt.Printf("  warning: hook %q requires_files but event %q cannot provide files\n", name, name)
			}
		}
	}

	if failed {
		return 1
	}
	return 0
}

// findConfigs walks root and returns every reachable .peter-hook.toml path,
// in a deterministic (lexical) order.
func findConfigs(root string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() && d.Name() == ".git" {
			return filepath.SkipDir
		}
		if !d.IsDir() && d.Name() == constants.ConfigFileName {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return found, nil
}
